package records

import (
	"context"
	"strings"
)

// Client is a customer of the business as stored by the records service.
type Client struct {
	ID    int    `json:"id"`
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
	Email string `json:"correo"`
}

// Appointment is a scheduled visit. ClientName is free text; the service does
// not enforce a reference to an existing client.
type Appointment struct {
	ID         int    `json:"id"`
	ClientID   int    `json:"cliente_id,omitempty"`
	ClientName string `json:"nombre"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	Notes      string `json:"notas"`
}

type Payment struct {
	ID         int     `json:"id"`
	ClientID   int     `json:"cliente_id,omitempty"`
	ClientName string  `json:"nombre"`
	Amount     float64 `json:"monto"`
	Date       string  `json:"fecha"`
}

// ReportRow is one line of the per-client summary. Every aggregate is
// computed by the service.
type ReportRow struct {
	ID               int     `json:"id"`
	Name             string  `json:"nombre"`
	Phone            string  `json:"telefono"`
	Email            string  `json:"correo"`
	TotalPaid        float64 `json:"totalPagado"`
	LastPayment      string  `json:"ultimoPago"`
	PaymentCount     int     `json:"cantidadPagos"`
	AppointmentCount int     `json:"cantidadCitas"`
	LastAppointment  string  `json:"ultimaCita"`
	Upcoming         string  `json:"citaProxima"`
}

// HasUpcoming reports whether the service flagged a future appointment.
func (r ReportRow) HasUpcoming() bool {
	switch strings.ToLower(strings.TrimSpace(r.Upcoming)) {
	case "sí", "si", "true", "yes", "1":
		return true
	}
	return false
}

type ClientInput struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
	Email string `json:"correo"`
}

type AppointmentInput struct {
	ClientName string `json:"nombre"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	Notes      string `json:"notas"`
}

type PaymentInput struct {
	ClientName string  `json:"nombre"`
	Amount     float64 `json:"monto"`
	Date       string  `json:"fecha"`
}

// User is the account returned by a successful login.
type User struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Entity names double as the first path segment of every endpoint.
type Entity string

const (
	Clients      Entity = "clientes"
	Appointments Entity = "citas"
	Payments     Entity = "pagos"
)

const reportPath = "/reportes/clientes-resumen"

// Service is the interface the UI depends on.
//
// Keep it narrow: the UI shouldn't know about transport details. Mutations
// return only an error; callers refetch the list to observe the result.
type Service interface {
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, in ClientInput) error
	UpdateClient(ctx context.Context, id int, in ClientInput) error
	DeleteClient(ctx context.Context, id int) error

	ListAppointments(ctx context.Context) ([]Appointment, error)
	CreateAppointment(ctx context.Context, in AppointmentInput) error
	UpdateAppointment(ctx context.Context, id int, in AppointmentInput) error
	DeleteAppointment(ctx context.Context, id int) error

	ListPayments(ctx context.Context) ([]Payment, error)
	CreatePayment(ctx context.Context, in PaymentInput) error
	UpdatePayment(ctx context.Context, id int, in PaymentInput) error
	DeletePayment(ctx context.Context, id int) error

	Report(ctx context.Context) ([]ReportRow, error)

	Login(ctx context.Context, email, password string) (User, error)
	RegisterUser(ctx context.Context, in Registration) error
}

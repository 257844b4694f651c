package records

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockClient is an in-memory Service. It assigns identifiers the way the real
// service does (monotonic, never reused) and computes the report from its own
// data. It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	clients      []Client
	appointments []Appointment
	payments     []Payment
	users        map[string]mockUser

	nextClient      int
	nextAppointment int
	nextPayment     int

	// Now is the clock used to decide whether an appointment is upcoming.
	Now func() time.Time
}

type mockUser struct {
	name     string
	password string
}

// EmptyMockClient returns a mock with no records and no users.
func EmptyMockClient() *MockClient {
	return &MockClient{
		users:           map[string]mockUser{},
		nextClient:      1,
		nextAppointment: 1,
		nextPayment:     1,
		Now:             time.Now,
	}
}

// NewMockClient returns a mock seeded with demo data and one account
// (admin@robles.hn / Robles2024).
func NewMockClient() *MockClient {
	m := EmptyMockClient()
	m.users["admin@robles.hn"] = mockUser{name: "Administrador Robles", password: "Robles2024"}

	seed := []ClientInput{
		{Name: "Ana López", Phone: "+504 9988-7766", Email: "ana@correo.com"},
		{Name: "Carlos Mejía", Phone: "+504 3258-8956", Email: "carlos.mejia@gmail.com"},
		{Name: "María Fernanda Zelaya", Phone: "+504 8877-1122", Email: "mfzelaya@correo.hn"},
		{Name: "Óscar Núñez", Phone: "+504 9512-3344", Email: "oscar@empresa.net"},
		{Name: "Lucía Banegas", Phone: "+504 3190-4455", Email: "lucia.banegas@correo.org"},
		{Name: "José Ramírez", Phone: "+504 9701-2233", Email: "jramirez@correo.com"},
		{Name: "Elena Castillo", Phone: "+504 8899-0011", Email: "elena@castillo.info"},
	}
	for _, c := range seed {
		m.clients = append(m.clients, Client{ID: m.nextClient, Name: c.Name, Phone: c.Phone, Email: c.Email})
		m.nextClient++
	}

	for _, a := range []AppointmentInput{
		{ClientName: "Ana López", Date: "2024-03-12", Time: "09:30", Notes: "Visita al lote 14"},
		{ClientName: "Carlos Mejía", Date: "2024-04-02", Time: "14:00", Notes: "Firma de promesa de venta"},
		{ClientName: "Ana López", Date: "2030-01-15", Time: "10:00", Notes: "Revisión de planos"},
		{ClientName: "Lucía Banegas", Date: "2024-05-20", Time: "16:45"},
		{ClientName: "Óscar Núñez", Date: "2030-06-01", Time: "08:15", Notes: "Entrega de llaves"},
	} {
		m.appointments = append(m.appointments, Appointment{ID: m.nextAppointment, ClientName: a.ClientName, Date: a.Date, Time: a.Time, Notes: a.Notes})
		m.nextAppointment++
	}

	for _, p := range []PaymentInput{
		{ClientName: "Ana López", Amount: 15000, Date: "2024-03-15"},
		{ClientName: "Ana López", Amount: 7500.5, Date: "2024-04-15"},
		{ClientName: "Carlos Mejía", Amount: 250000, Date: "2024-04-02"},
		{ClientName: "María Fernanda Zelaya", Amount: 1200.75, Date: "2024-02-28"},
		{ClientName: "José Ramírez", Amount: 98000, Date: "2024-05-05"},
		{ClientName: "Lucía Banegas", Amount: 3500, Date: "2024-05-21"},
	} {
		m.payments = append(m.payments, Payment{ID: m.nextPayment, ClientName: p.ClientName, Amount: p.Amount, Date: p.Date})
		m.nextPayment++
	}
	return m
}

func (m *MockClient) ListClients(ctx context.Context) ([]Client, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Client, len(m.clients))
	copy(out, m.clients)
	return out, nil
}

func (m *MockClient) CreateClient(ctx context.Context, in ClientInput) error {
	_ = ctx
	if strings.TrimSpace(in.Name) == "" {
		return missingField(http.MethodPost, "/clientes/register", "nombre")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = append(m.clients, Client{ID: m.nextClient, Name: in.Name, Phone: in.Phone, Email: in.Email})
	m.nextClient++
	return nil
}

func (m *MockClient) UpdateClient(ctx context.Context, id int, in ClientInput) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients[i] = Client{ID: id, Name: in.Name, Phone: in.Phone, Email: in.Email}
			return nil
		}
	}
	return fmt.Errorf("client %d: %w", id, ErrNotFound)
}

func (m *MockClient) DeleteClient(ctx context.Context, id int) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("client %d: %w", id, ErrNotFound)
}

func (m *MockClient) ListAppointments(ctx context.Context) ([]Appointment, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Appointment, len(m.appointments))
	copy(out, m.appointments)
	return out, nil
}

func (m *MockClient) CreateAppointment(ctx context.Context, in AppointmentInput) error {
	_ = ctx
	if strings.TrimSpace(in.ClientName) == "" {
		return missingField(http.MethodPost, "/citas/register", "nombre")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments = append(m.appointments, Appointment{
		ID:         m.nextAppointment,
		ClientID:   m.clientIDLocked(in.ClientName),
		ClientName: in.ClientName,
		Date:       in.Date,
		Time:       in.Time,
		Notes:      in.Notes,
	})
	m.nextAppointment++
	return nil
}

func (m *MockClient) UpdateAppointment(ctx context.Context, id int, in AppointmentInput) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			m.appointments[i] = Appointment{
				ID:         id,
				ClientID:   m.clientIDLocked(in.ClientName),
				ClientName: in.ClientName,
				Date:       in.Date,
				Time:       in.Time,
				Notes:      in.Notes,
			}
			return nil
		}
	}
	return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
}

func (m *MockClient) DeleteAppointment(ctx context.Context, id int) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			m.appointments = append(m.appointments[:i], m.appointments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
}

func (m *MockClient) ListPayments(ctx context.Context) ([]Payment, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Payment, len(m.payments))
	copy(out, m.payments)
	return out, nil
}

func (m *MockClient) CreatePayment(ctx context.Context, in PaymentInput) error {
	_ = ctx
	if strings.TrimSpace(in.ClientName) == "" {
		return missingField(http.MethodPost, "/pagos/register", "nombre")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, Payment{
		ID:         m.nextPayment,
		ClientID:   m.clientIDLocked(in.ClientName),
		ClientName: in.ClientName,
		Amount:     in.Amount,
		Date:       in.Date,
	})
	m.nextPayment++
	return nil
}

func (m *MockClient) UpdatePayment(ctx context.Context, id int, in PaymentInput) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID == id {
			m.payments[i] = Payment{
				ID:         id,
				ClientID:   m.clientIDLocked(in.ClientName),
				ClientName: in.ClientName,
				Amount:     in.Amount,
				Date:       in.Date,
			}
			return nil
		}
	}
	return fmt.Errorf("payment %d: %w", id, ErrNotFound)
}

func (m *MockClient) DeletePayment(ctx context.Context, id int) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID == id {
			m.payments = append(m.payments[:i], m.payments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("payment %d: %w", id, ErrNotFound)
}

// Report aggregates payments and appointments per client by name, the same
// join the service performs.
func (m *MockClient) Report(ctx context.Context) ([]ReportRow, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	today := now().UTC()

	rows := make([]ReportRow, 0, len(m.clients))
	for _, c := range m.clients {
		row := ReportRow{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email, Upcoming: "No"}
		for _, p := range m.payments {
			if p.ClientName != c.Name {
				continue
			}
			row.TotalPaid += p.Amount
			row.PaymentCount++
			if p.Date > row.LastPayment {
				row.LastPayment = p.Date
			}
		}
		for _, a := range m.appointments {
			if a.ClientName != c.Name {
				continue
			}
			row.AppointmentCount++
			stamp := a.Date + "T" + a.Time + ":00"
			if stamp > row.LastAppointment {
				row.LastAppointment = stamp
			}
			if t, err := time.Parse("2006-01-02T15:04:05", stamp); err == nil && !t.Before(today) {
				row.Upcoming = "Sí"
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (m *MockClient) Login(ctx context.Context, email, password string) (User, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return User{}, &APIError{
			Method: http.MethodPost, Path: "/users/login", Status: http.StatusUnauthorized,
			Message: "user not found", Fields: map[string]string{"email": "user not found"},
		}
	}
	if u.password != password {
		return User{}, &APIError{
			Method: http.MethodPost, Path: "/users/login", Status: http.StatusUnauthorized,
			Message: "wrong password", Fields: map[string]string{"password": "wrong password"},
		}
	}
	return User{Name: u.name, Email: strings.ToLower(email)}, nil
}

func (m *MockClient) RegisterUser(ctx context.Context, in Registration) error {
	_ = ctx
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "email is required"
	}
	if len(in.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if in.Password != in.ConfirmPassword {
		fields["confirmPassword"] = "passwords do not match"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.users[strings.ToLower(in.Email)]; taken {
		fields["email"] = "email already registered"
	}
	if len(fields) > 0 {
		return &APIError{Method: http.MethodPost, Path: "/users/register", Status: http.StatusBadRequest, Fields: fields}
	}
	m.users[strings.ToLower(in.Email)] = mockUser{name: in.Name, password: in.Password}
	return nil
}

func (m *MockClient) clientIDLocked(name string) int {
	for _, c := range m.clients {
		if c.Name == name {
			return c.ID
		}
	}
	return 0
}

func missingField(method, path, field string) error {
	return &APIError{
		Method: method, Path: path, Status: http.StatusBadRequest,
		Fields: map[string]string{field: field + " is required"},
	}
}

// ParseID is the inverse of the {id} path segment.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

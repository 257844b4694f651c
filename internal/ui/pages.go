package ui

import (
	"context"
	"fmt"
	"strconv"

	"robles/internal/forms"
	"robles/internal/listview"
	"robles/internal/records"
)

func clientsDef(svc records.Service) entityDef[records.Client] {
	return entityDef[records.Client]{
		screen: screenClients,
		title:  "clients",
		noun:   "client",
		spec: listview.Spec[records.Client]{
			ID: func(c records.Client) int { return c.ID },
			Search: []func(records.Client) string{
				func(c records.Client) string { return c.Name },
				func(c records.Client) string { return c.Phone },
				func(c records.Client) string { return c.Email },
			},
			Initial: func(c records.Client) string { return c.Name },
			Fields: []listview.Field[records.Client]{
				{Name: "id", Kind: listview.Number, Number: func(c records.Client) float64 { return float64(c.ID) }},
				{Name: "name", Kind: listview.String, Text: func(c records.Client) string { return c.Name }},
				{Name: "phone", Kind: listview.String, Text: func(c records.Client) string { return c.Phone }},
				{Name: "email", Kind: listview.String, Text: func(c records.Client) string { return c.Email }},
			},
		},
		sortBy:   "name",
		initials: true,
		columns: []column[records.Client]{
			{title: "ID", width: 5, field: "id", render: func(c records.Client) string { return strconv.Itoa(c.ID) }},
			{title: "Name", width: 24, field: "name", render: func(c records.Client) string { return c.Name }},
			{title: "Phone", width: 16, field: "phone", render: func(c records.Client) string { return c.Phone }},
			{title: "Email", width: 26, field: "email", render: func(c records.Client) string { return c.Email }},
		},
		list:   svc.ListClients,
		schema: &forms.ClientSchema,
		values: forms.ClientValues,
		submit: func(ctx context.Context, id int, editing bool, v forms.Values) error {
			if editing {
				return svc.UpdateClient(ctx, id, forms.ClientInput(v))
			}
			return svc.CreateClient(ctx, forms.ClientInput(v))
		},
		remove:   svc.DeleteClient,
		describe: func(c records.Client) string { return fmt.Sprintf("#%d %s (%s)", c.ID, c.Name, c.Email) },
	}
}

func appointmentsDef(svc records.Service) entityDef[records.Appointment] {
	return entityDef[records.Appointment]{
		screen: screenAppointments,
		title:  "appointments",
		noun:   "appointment",
		spec: listview.Spec[records.Appointment]{
			ID: func(a records.Appointment) int { return a.ID },
			Search: []func(records.Appointment) string{
				func(a records.Appointment) string { return a.ClientName },
				func(a records.Appointment) string { return a.Notes },
			},
			Fields: []listview.Field[records.Appointment]{
				{Name: "date", Kind: listview.Date, Text: func(a records.Appointment) string { return a.Date }},
				{Name: "time", Kind: listview.String, Text: func(a records.Appointment) string { return forms.NormalizeClock(a.Time) }},
				{Name: "name", Kind: listview.String, Text: func(a records.Appointment) string { return a.ClientName }},
				{Name: "id", Kind: listview.Number, Number: func(a records.Appointment) float64 { return float64(a.ID) }},
			},
		},
		sortBy: "date",
		columns: []column[records.Appointment]{
			{title: "ID", width: 5, field: "id", render: func(a records.Appointment) string { return strconv.Itoa(a.ID) }},
			{title: "Client", width: 22, field: "name", render: func(a records.Appointment) string { return a.ClientName }},
			{title: "Date", width: 12, field: "date", render: func(a records.Appointment) string { return forms.FormatDate(a.Date) }},
			{title: "Time", width: 10, field: "time", render: func(a records.Appointment) string { return forms.FormatTime12h(a.Time) }},
			{title: "Notes", width: 24, render: func(a records.Appointment) string { return a.Notes }},
		},
		list:   svc.ListAppointments,
		schema: &forms.AppointmentSchema,
		values: forms.AppointmentValues,
		submit: func(ctx context.Context, id int, editing bool, v forms.Values) error {
			if editing {
				return svc.UpdateAppointment(ctx, id, forms.AppointmentInput(v))
			}
			return svc.CreateAppointment(ctx, forms.AppointmentInput(v))
		},
		remove: svc.DeleteAppointment,
		describe: func(a records.Appointment) string {
			return fmt.Sprintf("#%d %s on %s at %s", a.ID, a.ClientName, forms.FormatDate(a.Date), forms.FormatTime12h(a.Time))
		},
		suggest:      clientNames(svc),
		suggestField: "name",
	}
}

// clientNames offers the known clients while typing an appointment.
func clientNames(svc records.Service) func(ctx context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		cs, err := svc.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(cs))
		for _, c := range cs {
			names = append(names, c.Name)
		}
		return names, nil
	}
}

func paymentsDef(svc records.Service) entityDef[records.Payment] {
	return entityDef[records.Payment]{
		screen: screenPayments,
		title:  "payments",
		noun:   "payment",
		spec: listview.Spec[records.Payment]{
			ID: func(p records.Payment) int { return p.ID },
			Search: []func(records.Payment) string{
				func(p records.Payment) string { return p.ClientName },
				func(p records.Payment) string { return p.Date },
			},
			Fields: []listview.Field[records.Payment]{
				{Name: "date", Kind: listview.Date, Text: func(p records.Payment) string { return p.Date }},
				{Name: "amount", Kind: listview.Number, Number: func(p records.Payment) float64 { return p.Amount }},
				{Name: "name", Kind: listview.String, Text: func(p records.Payment) string { return p.ClientName }},
				{Name: "id", Kind: listview.Number, Number: func(p records.Payment) float64 { return float64(p.ID) }},
			},
		},
		sortBy: "date",
		columns: []column[records.Payment]{
			{title: "ID", width: 5, field: "id", render: func(p records.Payment) string { return strconv.Itoa(p.ID) }},
			{title: "Client", width: 24, field: "name", render: func(p records.Payment) string { return p.ClientName }},
			{title: "Amount", width: 16, field: "amount", render: func(p records.Payment) string { return forms.FormatCurrency(p.Amount) }},
			{title: "Date", width: 12, field: "date", render: func(p records.Payment) string { return forms.FormatDate(p.Date) }},
		},
		list:   svc.ListPayments,
		schema: &forms.PaymentSchema,
		values: forms.PaymentValues,
		submit: func(ctx context.Context, id int, editing bool, v forms.Values) error {
			in, err := forms.PaymentInput(v)
			if err != nil {
				return err
			}
			if editing {
				return svc.UpdatePayment(ctx, id, in)
			}
			return svc.CreatePayment(ctx, in)
		},
		remove: svc.DeletePayment,
		describe: func(p records.Payment) string {
			return fmt.Sprintf("#%d %s %s on %s", p.ID, p.ClientName, forms.FormatCurrency(p.Amount), forms.FormatDate(p.Date))
		},
	}
}

func reportsDef(svc records.Service) entityDef[records.ReportRow] {
	return entityDef[records.ReportRow]{
		screen: screenReports,
		title:  "report",
		noun:   "row",
		spec:   ReportSpec(),
		sortBy: "name",
		columns: []column[records.ReportRow]{
			{title: "Client", width: 20, field: "name", render: func(r records.ReportRow) string { return r.Name }},
			{title: "Phone", width: 15, render: func(r records.ReportRow) string { return r.Phone }},
			{title: "Total paid", width: 15, field: "totalPaid", render: func(r records.ReportRow) string { return forms.FormatCurrency(r.TotalPaid) }},
			{title: "Payments", width: 9, field: "paymentCount", render: func(r records.ReportRow) string { return strconv.Itoa(r.PaymentCount) }},
			{title: "Last payment", width: 12, field: "lastPayment", render: func(r records.ReportRow) string { return forms.FormatDate(r.LastPayment) }},
			{title: "Visits", width: 7, field: "appointmentCount", render: func(r records.ReportRow) string { return strconv.Itoa(r.AppointmentCount) }},
			{title: "Last visit", width: 23, field: "lastAppointment", render: func(r records.ReportRow) string { return forms.FormatDateTime(r.LastAppointment) }},
			{title: "Upcoming", width: 9, render: func(r records.ReportRow) string { return Upcoming(r) }},
		},
		list: svc.Report,
	}
}

// ReportSpec is how report rows are searched and sorted, on screen and in
// the headless report command.
func ReportSpec() listview.Spec[records.ReportRow] {
	return listview.Spec[records.ReportRow]{
		ID: func(r records.ReportRow) int { return r.ID },
		Search: []func(records.ReportRow) string{
			func(r records.ReportRow) string { return r.Name },
			func(r records.ReportRow) string { return r.Email },
			func(r records.ReportRow) string { return r.Phone },
		},
		Fields: []listview.Field[records.ReportRow]{
			{Name: "name", Kind: listview.String, Text: func(r records.ReportRow) string { return r.Name }},
			{Name: "totalPaid", Kind: listview.Number, Number: func(r records.ReportRow) float64 { return r.TotalPaid }},
			{Name: "paymentCount", Kind: listview.Number, Number: func(r records.ReportRow) float64 { return float64(r.PaymentCount) }},
			{Name: "lastPayment", Kind: listview.Date, Text: func(r records.ReportRow) string { return r.LastPayment }},
			{Name: "appointmentCount", Kind: listview.Number, Number: func(r records.ReportRow) float64 { return float64(r.AppointmentCount) }},
			{Name: "lastAppointment", Kind: listview.Date, Text: func(r records.ReportRow) string { return r.LastAppointment }},
		},
	}
}

// Upcoming is the report badge for a future appointment.
func Upcoming(r records.ReportRow) string {
	if r.HasUpcoming() {
		return "● Sí"
	}
	return "No"
}

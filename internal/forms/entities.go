package forms

import (
	"strings"

	"robles/internal/records"
)

const (
	msgRequired = "required"
	msgName     = "enter first and last name, each starting with a capital letter"
	msgEmail    = "invalid email address"
	msgPhone    = "invalid format, use +504 3258-8956"
	msgAmount   = "enter a valid amount"
	msgDate     = "use YYYY-MM-DD"
	msgTime     = "use HH:MM (24h)"
	msgPassword = "at least 8 characters and one uppercase letter"
	msgConfirm  = "passwords do not match"
	msgFullName = "enter your full name (first and last)"
)

var ClientSchema = Schema{
	Fields: []Field{
		{Key: "name", Label: "Full name", Placeholder: "Ana López"},
		{Key: "phone", Label: "Phone", Placeholder: "+504 1234-5678", Format: FormatPhone},
		{Key: "email", Label: "Email", Placeholder: "correo@gmail.com"},
	},
	Validate: func(v Values) FieldErrors {
		errs := FieldErrors{}
		if !ValidName(v["name"]) {
			errs["name"] = msgName
		}
		if !ValidEmail(v["email"]) {
			errs["email"] = msgEmail
		}
		if !ValidPhone(v["phone"]) {
			errs["phone"] = msgPhone
		}
		return errs
	},
}

func ClientValues(c records.Client) Values {
	return Values{"name": c.Name, "phone": c.Phone, "email": c.Email}
}

func ClientInput(v Values) records.ClientInput {
	return records.ClientInput{Name: strings.TrimSpace(v["name"]), Phone: v["phone"], Email: strings.TrimSpace(v["email"])}
}

var AppointmentSchema = Schema{
	Fields: []Field{
		{Key: "name", Label: "Client", Placeholder: "select or type the client name"},
		{Key: "date", Label: "Date", Placeholder: "2024-05-31"},
		{Key: "time", Label: "Time", Placeholder: "14:30"},
		{Key: "notes", Label: "Notes", Placeholder: "optional"},
	},
	Validate: func(v Values) FieldErrors {
		errs := FieldErrors{}
		if blank(v["name"]) {
			errs["name"] = msgRequired
		}
		switch {
		case blank(v["date"]):
			errs["date"] = msgRequired
		case !validDate(v["date"]):
			errs["date"] = msgDate
		}
		switch {
		case blank(v["time"]):
			errs["time"] = msgRequired
		case !validClock(v["time"]):
			errs["time"] = msgTime
		}
		return errs
	},
}

func AppointmentValues(a records.Appointment) Values {
	return Values{"name": a.ClientName, "date": dateOnly(a.Date), "time": a.Time, "notes": a.Notes}
}

func AppointmentInput(v Values) records.AppointmentInput {
	return records.AppointmentInput{
		ClientName: strings.TrimSpace(v["name"]),
		Date:       strings.TrimSpace(v["date"]),
		Time:       NormalizeClock(strings.TrimSpace(v["time"])),
		Notes:      strings.TrimSpace(v["notes"]),
	}
}

var PaymentSchema = Schema{
	Fields: []Field{
		{Key: "name", Label: "Client", Placeholder: "Ana López"},
		{Key: "amount", Label: "Amount", Placeholder: "L 0.00", Blur: FormatAmount},
		{Key: "date", Label: "Date", Placeholder: "2024-05-31"},
	},
	Validate: func(v Values) FieldErrors {
		errs := FieldErrors{}
		switch {
		case blank(v["name"]):
			errs["name"] = msgRequired
		case !ValidName(v["name"]):
			errs["name"] = msgName
		}
		if blank(v["amount"]) {
			errs["amount"] = msgRequired
		} else if _, err := ParseAmount(v["amount"]); err != nil {
			errs["amount"] = msgAmount
		}
		switch {
		case blank(v["date"]):
			errs["date"] = msgRequired
		case !validDate(v["date"]):
			errs["date"] = msgDate
		}
		return errs
	},
}

func PaymentValues(p records.Payment) Values {
	return Values{"name": p.ClientName, "amount": FormatCurrency(p.Amount), "date": dateOnly(p.Date)}
}

// PaymentInput parses the amount; call it only after validation passed.
func PaymentInput(v Values) (records.PaymentInput, error) {
	amount, err := ParseAmount(v["amount"])
	if err != nil {
		return records.PaymentInput{}, FieldErrors{"amount": msgAmount}
	}
	return records.PaymentInput{
		ClientName: strings.TrimSpace(v["name"]),
		Amount:     amount,
		Date:       strings.TrimSpace(v["date"]),
	}, nil
}

var LoginSchema = Schema{
	Fields: []Field{
		{Key: "email", Label: "Email", Placeholder: "hola@gmail.com"},
		{Key: "password", Label: "Password", Placeholder: "******", Secret: true},
	},
	Validate: func(v Values) FieldErrors {
		errs := FieldErrors{}
		if blank(v["email"]) {
			errs["email"] = msgRequired
		}
		if v["password"] == "" {
			errs["password"] = msgRequired
		}
		return errs
	},
}

var RegisterSchema = Schema{
	Fields: []Field{
		{Key: "name", Label: "Name", Placeholder: "Karen Díaz"},
		{Key: "email", Label: "Email", Placeholder: "karen123@correo.com"},
		{Key: "password", Label: "Password", Placeholder: "******", Secret: true},
		{Key: "confirmPassword", Label: "Confirm password", Placeholder: "******", Secret: true},
	},
	Validate: func(v Values) FieldErrors {
		errs := FieldErrors{}
		if len(strings.Fields(v["name"])) < 2 {
			errs["name"] = msgFullName
		}
		if !looseEmail.MatchString(v["email"]) {
			errs["email"] = msgEmail
		}
		if !ValidPassword(v["password"]) {
			errs["password"] = msgPassword
		}
		if v["confirmPassword"] != v["password"] {
			errs["confirmPassword"] = msgConfirm
		}
		return errs
	},
}

func Registration(v Values) records.Registration {
	return records.Registration{
		Name:            strings.TrimSpace(v["name"]),
		Email:           strings.TrimSpace(v["email"]),
		Password:        v["password"],
		ConfirmPassword: v["confirmPassword"],
	}
}

// dateOnly trims an ISO timestamp to the date the form edits.
func dateOnly(s string) string {
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}

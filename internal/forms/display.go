package forms

import (
	"strings"
	"time"

	"robles/internal/listview"
)

// FormatDate renders a service date as dd/mm/yyyy. Values that do not parse
// are shown as received.
func FormatDate(s string) string {
	t := listview.ParseDate(s)
	if t.IsZero() {
		return s
	}
	return t.Format("02/01/2006")
}

// NormalizeClock zero-pads a valid clock time ("9:30" becomes "09:30") and
// returns anything else unchanged.
func NormalizeClock(s string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

// FormatTime12h renders "14:05" as "2:05 PM".
func FormatTime12h(s string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("3:04 PM")
}

// FormatDateTime renders a timestamp as "dd/mm/yyyy – hh:mm PM".
func FormatDateTime(s string) string {
	t := listview.ParseDate(s)
	if t.IsZero() {
		return s
	}
	return t.Format("02/01/2006 – 03:04 PM")
}

package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"robles/internal/forms"
	"robles/internal/records"
)

// deps is what every page needs to reach the service.
type deps struct {
	svc     records.Service
	timeout time.Duration
	logger  *zap.Logger
	styles  styles
	keys    keyMap
}

// context bounds one request by the configured timeout; zero means none.
func (d *deps) context() (context.Context, context.CancelFunc) {
	if d.timeout > 0 {
		return context.WithTimeout(context.Background(), d.timeout)
	}
	return context.WithCancel(context.Background())
}

// envelope tags a response with the page instance that asked for it. The
// root model drops envelopes for pages that are no longer showing.
type envelope struct {
	screen screen
	gen    int
	msg    tea.Msg
}

// requester stamps commands for one page instance.
type requester struct {
	screen screen
	gen    int
}

func (r requester) cmd(f func() tea.Msg) tea.Cmd {
	s, g := r.screen, r.gen
	return func() tea.Msg {
		return envelope{screen: s, gen: g, msg: f()}
	}
}

type navigateMsg struct {
	to     screen
	notice notice
}

func navigate(to screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func navigateWith(to screen, n notice) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to, notice: n} }
}

type notice struct {
	text string
	err  bool
}

func success(text string) notice { return notice{text: text} }
func failure(text string) notice { return notice{text: text, err: true} }

func (n notice) view(st styles) string {
	switch {
	case n.text == "":
		return ""
	case n.err:
		return st.Error.Render("✗ " + n.text)
	default:
		return st.Success.Render("✓ " + n.text)
	}
}

// errorNotice turns a service failure into something a user can act on.
func errorNotice(action string, err error) notice {
	var apiErr *records.APIError
	var local forms.FieldErrors
	switch {
	case errors.As(err, &local):
		return failure(action + ": check the highlighted fields")
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return failure(action + ": " + apiErr.Message)
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		return failure(action + ": check the highlighted fields")
	case errors.Is(err, context.DeadlineExceeded):
		return failure(action + ": the server took too long to answer")
	default:
		return failure(action + ": could not reach the server")
	}
}

// wireFields maps service field names onto form keys.
var wireFields = map[string]string{
	"nombre":   "name",
	"telefono": "phone",
	"correo":   "email",
	"fecha":    "date",
	"hora":     "time",
	"notas":    "notes",
	"monto":    "amount",
}

// fieldErrors extracts per-field messages reported by the service.
func fieldErrors(err error) forms.FieldErrors {
	var local forms.FieldErrors
	if errors.As(err, &local) {
		return local
	}
	var apiErr *records.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(forms.FieldErrors, len(apiErr.Fields))
	for k, v := range apiErr.Fields {
		if key, ok := wireFields[k]; ok {
			k = key
		}
		out[k] = v
	}
	return out
}

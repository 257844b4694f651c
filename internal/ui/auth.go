package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"robles/internal/forms"
	"robles/internal/records"
)

type loginResultMsg struct {
	user records.User
	err  error
}

type registerResultMsg struct {
	err error
}

// loggedInMsg reaches the root model, which owns the session.
type loggedInMsg struct {
	user records.User
}

// authPage is the login or the registration form.
type authPage struct {
	register bool
	deps     *deps
	req      requester
	editor   *editor
	busy     bool
	notice   notice
}

func newLoginPage(d *deps, req requester, n notice) *authPage {
	return &authPage{deps: d, req: req, editor: newEditor(forms.LoginSchema, d.styles, d.keys.Complete), notice: n}
}

func newRegisterPage(d *deps, req requester) *authPage {
	return &authPage{register: true, deps: d, req: req, editor: newEditor(forms.RegisterSchema, d.styles, d.keys.Complete)}
}

func (p *authPage) init() tea.Cmd { return p.editor.Focus() }

// Typing goes to the inputs, so q never means back here.
func (p *authPage) capturing() bool { return true }

func (p *authPage) keys() help.KeyMap {
	k := p.deps.keys
	if p.register {
		return bindings{k.NextField, k.Submit, k.Cancel, k.Quit}
	}
	return bindings{k.NextField, k.Submit, k.Register, k.Quit}
}

func (p *authPage) update(msg tea.Msg) tea.Cmd {
	k := p.deps.keys
	switch msg := msg.(type) {
	case loginResultMsg:
		p.busy = false
		if msg.err != nil {
			p.deps.logger.Warn("login failed", zap.Error(msg.err))
			p.notice = failure(loginMessage(msg.err))
			return nil
		}
		user := msg.user
		return func() tea.Msg { return loggedInMsg{user: user} }
	case registerResultMsg:
		p.busy = false
		if msg.err != nil {
			p.deps.logger.Warn("registration failed", zap.Error(msg.err))
			p.editor.form.SetErrors(fieldErrors(msg.err))
			p.notice = errorNotice("could not create the account", msg.err)
			return nil
		}
		return navigateWith(screenLogin, success("account created, you can sign in now"))
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, k.NextField):
			return p.editor.Move(1)
		case key.Matches(msg, k.PrevField):
			return p.editor.Move(-1)
		case key.Matches(msg, k.Submit):
			return p.submit()
		case p.register && key.Matches(msg, k.Cancel):
			return navigate(screenLogin)
		case !p.register && key.Matches(msg, k.Register):
			return navigate(screenRegister)
		}
		return p.editor.Update(msg)
	}
	return nil
}

func (p *authPage) submit() tea.Cmd {
	if p.busy {
		return nil
	}
	p.editor.Flush()
	if !p.editor.form.Validate() {
		p.notice = failure("fix the highlighted fields")
		return nil
	}
	p.busy = true
	v := p.editor.form.Values()
	svc := p.deps.svc
	if p.register {
		p.notice = notice{text: "creating account…"}
		reg := forms.Registration(v)
		return p.req.cmd(func() tea.Msg {
			ctx, cancel := p.deps.context()
			defer cancel()
			return registerResultMsg{err: svc.RegisterUser(ctx, reg)}
		})
	}
	p.notice = notice{text: "signing in…"}
	email, password := strings.TrimSpace(v["email"]), v["password"]
	return p.req.cmd(func() tea.Msg {
		ctx, cancel := p.deps.context()
		defer cancel()
		u, err := svc.Login(ctx, email, password)
		return loginResultMsg{user: u, err: err}
	})
}

// loginMessage shows the service's own wording when it gave one.
func loginMessage(err error) string {
	return strings.TrimPrefix(errorNotice("login failed", err).text, "login failed: ")
}

func (p *authPage) render(w, h int) string {
	st := p.deps.styles
	title := "Sign in"
	hint := st.Muted.Render("no account? press ctrl+r")
	if p.register {
		title = "Create account"
		hint = st.Muted.Render("esc returns to sign in")
	}
	body := p.editor.View(title)
	parts := []string{body, "", hint}
	if n := p.notice.view(st); n != "" {
		parts = append(parts, n)
	}
	return st.Form.Width(min(48, max(20, w-4))).Render(strings.Join(parts, "\n"))
}

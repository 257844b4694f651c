package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"robles/internal/config"
	"robles/internal/records"
	"robles/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
	screenClients
	screenAppointments
	screenPayments
	screenReports
	screenLogout
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "sign in"
	case screenRegister:
		return "create account"
	case screenDashboard:
		return "dashboard"
	case screenClients:
		return "clients"
	case screenAppointments:
		return "appointments"
	case screenPayments:
		return "payments"
	case screenReports:
		return "report"
	case screenLogout:
		return "sign out"
	}
	return "unknown"
}

// protected screens need a session.
func (s screen) protected() bool {
	return s != screenLogin && s != screenRegister && s != screenLogout
}

// page is one screen. Pages are rebuilt on every visit.
type page interface {
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	render(w, h int) string
	// capturing is true while keystrokes belong to a text input or modal.
	capturing() bool
	keys() help.KeyMap
}

// SessionStore persists the signed-in user between runs.
type SessionStore interface {
	Load() (session.Session, error)
	Save(session.Session) error
	Clear() error
}

type Model struct {
	cfg      config.Config
	deps     *deps
	sessions SessionStore
	session  session.Session

	help help.Model

	screen screen
	gen    int
	page   page

	serverLabel string

	width  int
	height int
}

func NewModel(cfg config.Config, svc records.Service, sessions SessionStore, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &deps{
		svc:     svc,
		timeout: cfg.Timeout,
		logger:  logger,
		styles:  newStyles(),
		keys:    newKeyMap(),
	}

	serverLabel := cfg.Server
	if _, ok := svc.(*records.MockClient); ok {
		serverLabel = "mock"
	}

	m := Model{
		cfg:         cfg,
		deps:        d,
		sessions:    sessions,
		help:        help.New(),
		serverLabel: serverLabel,
	}

	s, err := sessions.Load()
	if err != nil {
		logger.Warn("could not read saved session", zap.Error(err))
	}
	m.session = s
	if s.Valid() {
		m.show(screenDashboard, notice{})
	} else {
		m.show(screenLogin, notice{})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.page.init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, m.page.update(msg)

	case envelope:
		if msg.screen != m.screen || msg.gen != m.gen {
			m.deps.logger.Debug("dropping response for a page no longer shown",
				zap.Stringer("screen", msg.screen), zap.Int("gen", msg.gen),
				zap.Stringer("current", m.screen), zap.Int("current_gen", m.gen))
			return m, nil
		}
		return m, m.page.update(msg.msg)

	case navigateMsg:
		return m.open(msg.to, msg.notice)

	case loggedInMsg:
		m.session = session.New(msg.user)
		n := success("signed in as " + msg.user.Email)
		if err := m.sessions.Save(m.session); err != nil {
			m.deps.logger.Warn("could not save session", zap.Error(err))
			n = failure("signed in, but the session could not be saved")
		}
		m.deps.logger.Info("signed in", zap.String("email", msg.user.Email))
		return m.open(screenDashboard, n)

	case tea.KeyMsg:
		k := m.deps.keys
		switch {
		case key.Matches(msg, k.Quit):
			return m, tea.Quit
		case !m.page.capturing() && key.Matches(msg, k.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case !m.page.capturing() && key.Matches(msg, k.Back):
			if m.screen == screenDashboard {
				return m, tea.Quit
			}
			return m.open(screenDashboard, notice{})
		}
		return m, m.page.update(msg)
	}

	// Cursor blinks and other component ticks.
	return m, m.page.update(msg)
}

// open shows a fresh instance of screen to and starts it.
func (m Model) open(to screen, n notice) (tea.Model, tea.Cmd) {
	m.show(to, n)
	return m, m.page.init()
}

// show swaps in a new page. The generation bump makes any response still in
// flight for the previous page land nowhere.
func (m *Model) show(to screen, n notice) {
	if to == screenLogout {
		if err := m.sessions.Clear(); err != nil {
			m.deps.logger.Warn("could not clear session", zap.Error(err))
		}
		m.deps.logger.Info("signed out", zap.String("email", m.session.User.Email))
		m.session = session.Session{}
		to, n = screenLogin, success("signed out")
	}
	if to.protected() && !m.session.Valid() {
		to, n = screenLogin, failure("sign in to continue")
	}

	m.gen++
	m.screen = to
	req := requester{screen: to, gen: m.gen}
	d, svc, sizes := m.deps, m.deps.svc, m.cfg.UI

	switch to {
	case screenLogin:
		m.page = newLoginPage(d, req, n)
	case screenRegister:
		m.page = newRegisterPage(d, req)
	case screenClients:
		m.page = newEntityPage(clientsDef(svc), d, req, sizes.PageSize)
	case screenAppointments:
		m.page = newEntityPage(appointmentsDef(svc), d, req, sizes.PageSize)
	case screenPayments:
		m.page = newEntityPage(paymentsDef(svc), d, req, sizes.PageSize)
	case screenReports:
		m.page = newEntityPage(reportsDef(svc), d, req, sizes.ReportPageSize)
	default:
		m.screen = screenDashboard
		m.page = newDashboardPage(d, m.session.User, n)
	}
	m.deps.logger.Debug("screen", zap.Stringer("screen", m.screen), zap.Int("gen", m.gen))
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	st := m.deps.styles

	left := "Robles de la Laguna · " + m.screen.String()
	right := "server: " + m.serverLabel
	if m.session.Valid() {
		right = m.session.User.Email + "  " + right
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	header := st.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)

	footer := st.HelpBar.Width(m.width).Render(m.help.View(m.page.keys()))

	bodyHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := m.page.render(m.width, bodyHeight)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"robles/internal/config"
	"robles/internal/records"
	"robles/internal/session"
)

type memSessions struct {
	s       session.Session
	loadErr error
	saved   []session.Session
	cleared int
}

func (m *memSessions) Load() (session.Session, error) { return m.s, m.loadErr }

func (m *memSessions) Save(s session.Session) error {
	m.s = s
	m.saved = append(m.saved, s)
	return nil
}

func (m *memSessions) Clear() error {
	m.s = session.Session{}
	m.cleared++
	return nil
}

// countingService records how often the client endpoints are hit.
type countingService struct {
	*records.MockClient

	lists   int
	creates int
	updates int
	deletes int
}

func newCountingService() *countingService {
	return &countingService{MockClient: records.NewMockClient()}
}

func (c *countingService) ListClients(ctx context.Context) ([]records.Client, error) {
	c.lists++
	return c.MockClient.ListClients(ctx)
}

func (c *countingService) CreateClient(ctx context.Context, in records.ClientInput) error {
	c.creates++
	return c.MockClient.CreateClient(ctx, in)
}

func (c *countingService) UpdateClient(ctx context.Context, id int, in records.ClientInput) error {
	c.updates++
	return c.MockClient.UpdateClient(ctx, id, in)
}

func (c *countingService) DeleteClient(ctx context.Context, id int) error {
	c.deletes++
	return c.MockClient.DeleteClient(ctx, id)
}

// brokenLists fails every client listing.
type brokenLists struct {
	*records.MockClient
}

func (brokenLists) ListClients(context.Context) ([]records.Client, error) {
	return nil, errors.New("connection refused")
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEscape}
	ctrlD = tea.KeyMsg{Type: tea.KeyCtrlD}
	ctrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// settle runs cmd and feeds every message it produces back into the model
// until nothing is left to do.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		var next tea.Cmd
		m, next = update(t, m, msg)
		queue = append(queue, next)
	}
	return m
}

// press sends keys one by one, settling after each.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(t, m, k)
		m = settle(t, m, cmd)
	}
	return m
}

func start(t *testing.T, svc records.Service, ss *memSessions) Model {
	t.Helper()
	m := NewModel(config.Default(), svc, ss, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return settle(t, m, m.Init())
}

func signedIn() *memSessions {
	return &memSessions{s: session.New(records.User{Name: "Administrador Robles", Email: "admin@robles.hn"})}
}

func clientsPage(t *testing.T, m Model) *entityPage[records.Client] {
	t.Helper()
	p, ok := m.page.(*entityPage[records.Client])
	if !ok {
		t.Fatalf("expected the clients page, got %T (screen %v)", m.page, m.screen)
	}
	return p
}

func openClients(t *testing.T, svc records.Service) Model {
	t.Helper()
	m := start(t, svc, signedIn())
	m, cmd := update(t, m, navigateMsg{to: screenClients})
	return settle(t, m, cmd)
}

func TestModel_startsOnLoginWithoutSession(t *testing.T) {
	m := start(t, records.NewMockClient(), &memSessions{})
	if m.screen != screenLogin {
		t.Fatalf("expected login, got %v", m.screen)
	}

	m = start(t, records.NewMockClient(), &memSessions{loadErr: errors.New("corrupt")})
	if m.screen != screenLogin {
		t.Fatalf("expected login when the session cannot be read, got %v", m.screen)
	}

	m = start(t, records.NewMockClient(), signedIn())
	if m.screen != screenDashboard {
		t.Fatalf("expected dashboard for a saved session, got %v", m.screen)
	}
}

func TestModel_protectedScreensRedirectToLogin(t *testing.T) {
	for _, to := range []screen{screenDashboard, screenClients, screenAppointments, screenPayments, screenReports} {
		m := start(t, records.NewMockClient(), &memSessions{})
		m, cmd := update(t, m, navigateMsg{to: to})
		m = settle(t, m, cmd)
		if m.screen != screenLogin {
			t.Fatalf("%v: expected redirect to login, got %v", to, m.screen)
		}
		p := m.page.(*authPage)
		if !p.notice.err || p.notice.text == "" {
			t.Fatalf("%v: expected a notice explaining the redirect, got %+v", to, p.notice)
		}
	}
}

func TestModel_loginSavesSessionAndOpensDashboard(t *testing.T) {
	ss := &memSessions{}
	m := start(t, records.NewMockClient(), ss)

	m = press(t, m, runes("admin@robles.hn"), tab, runes("Robles2024"), enter)

	if m.screen != screenDashboard {
		t.Fatalf("expected dashboard after login, got %v", m.screen)
	}
	if len(ss.saved) != 1 || ss.saved[0].User.Email != "admin@robles.hn" || !ss.saved[0].Authenticated {
		t.Fatalf("expected one saved session for admin, got %+v", ss.saved)
	}
	if m.page.(*dashboardPage).user.Name != "Administrador Robles" {
		t.Fatalf("dashboard should greet the signed-in user")
	}
}

func TestModel_loginShowsServiceMessage(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{name: "unknown user", email: "nadie@robles.hn", password: "Robles2024", want: "user not found"},
		{name: "wrong password", email: "admin@robles.hn", password: "Incorrecta1", want: "wrong password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := &memSessions{}
			m := start(t, records.NewMockClient(), ss)
			m = press(t, m, runes(tt.email), tab, runes(tt.password), enter)

			if m.screen != screenLogin {
				t.Fatalf("expected to stay on login, got %v", m.screen)
			}
			p := m.page.(*authPage)
			if p.notice.text != tt.want || !p.notice.err {
				t.Fatalf("notice = %+v, want error %q", p.notice, tt.want)
			}
			if len(ss.saved) != 0 {
				t.Fatalf("failed login must not save a session")
			}
		})
	}
}

func TestModel_loginValidatesLocally(t *testing.T) {
	m := start(t, records.NewMockClient(), &memSessions{})
	m, cmd := update(t, m, enter)
	if cmd != nil {
		t.Fatalf("invalid login form must not reach the service")
	}
	if errs := m.page.(*authPage).editor.form.Errors(); errs["email"] == "" || errs["password"] == "" {
		t.Fatalf("expected email and password errors, got %v", errs)
	}
}

func TestModel_registerThenLogin(t *testing.T) {
	svc := records.NewMockClient()
	m := start(t, svc, &memSessions{})

	m = press(t, m, ctrlR)
	if m.screen != screenRegister {
		t.Fatalf("expected register, got %v", m.screen)
	}
	m = press(t, m,
		runes("Karen Díaz"), tab,
		runes("karen@correo.com"), tab,
		runes("Secreta2024"), tab,
		runes("Secreta2024"), enter,
	)
	if m.screen != screenLogin {
		t.Fatalf("expected login after registering, got %v", m.screen)
	}
	if p := m.page.(*authPage); p.notice.err || p.notice.text == "" {
		t.Fatalf("expected a success notice, got %+v", p.notice)
	}

	m = press(t, m, runes("karen@correo.com"), tab, runes("Secreta2024"), enter)
	if m.screen != screenDashboard {
		t.Fatalf("expected dashboard, got %v", m.screen)
	}
}

func TestModel_registerEscReturnsToLogin(t *testing.T) {
	m := start(t, records.NewMockClient(), &memSessions{})
	m = press(t, m, ctrlR, esc)
	if m.screen != screenLogin {
		t.Fatalf("expected login, got %v", m.screen)
	}
}

func TestModel_logoutClearsSession(t *testing.T) {
	ss := signedIn()
	m := start(t, records.NewMockClient(), ss)

	// Sign out is the last menu entry.
	m = press(t, m, runes("k"), enter)

	if m.screen != screenLogin {
		t.Fatalf("expected login after sign out, got %v", m.screen)
	}
	if ss.cleared != 1 || m.session.Valid() {
		t.Fatalf("expected the session to be cleared, cleared=%d valid=%v", ss.cleared, m.session.Valid())
	}

	m, cmd := update(t, m, navigateMsg{to: screenClients})
	m = settle(t, m, cmd)
	if m.screen != screenLogin {
		t.Fatalf("protected pages must stay closed after sign out, got %v", m.screen)
	}
}

func TestModel_backAndQuit(t *testing.T) {
	m := openClients(t, records.NewMockClient())

	m, cmd := update(t, m, runes("q"))
	m = settle(t, m, cmd)
	if m.screen != screenDashboard {
		t.Fatalf("q should go back to the dashboard, got %v", m.screen)
	}

	_, cmd = update(t, m, runes("q"))
	if cmd == nil {
		t.Fatalf("q on the dashboard should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModel_qIsTextWhileTyping(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	m = press(t, m, runes("/"), runes("q"))
	if m.screen != screenClients {
		t.Fatalf("typing q into the search box must not leave the page")
	}
	if got := clientsPage(t, m).list.Query(); got != "q" {
		t.Fatalf("query = %q, want q", got)
	}
}

func TestModel_dropsResponsesForPagesNoLongerShown(t *testing.T) {
	svc := newCountingService()
	m := start(t, svc, signedIn())

	m, load := update(t, m, navigateMsg{to: screenClients})
	if load == nil {
		t.Fatalf("expected the clients page to load")
	}
	m, cmd := update(t, m, runes("q"))
	m = settle(t, m, cmd)

	// The first visit's response arrives after the user left.
	msg := load()
	env, ok := msg.(envelope)
	if !ok {
		t.Fatalf("expected an envelope, got %T", msg)
	}
	m, cmd = update(t, m, env)
	if cmd != nil {
		t.Fatalf("late response should be ignored")
	}
	if m.screen != screenDashboard {
		t.Fatalf("late response changed the screen to %v", m.screen)
	}

	// A fresh visit is a new page; the old response does not fill it either.
	m, load2 := update(t, m, navigateMsg{to: screenClients})
	m, _ = update(t, m, env)
	if clientsPage(t, m).store.Loaded() {
		t.Fatalf("old response leaked into the new page")
	}
	m = settle(t, m, load2)
	if clientsPage(t, m).store.Len() != 7 {
		t.Fatalf("expected the new page to load its own data")
	}
}

func TestEntityPage_dropsSupersededList(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	p.load()
	p.load()
	stale := loadedMsg[records.Client]{seq: p.seq - 1, items: []records.Client{{ID: 99, Name: "Viejo"}}}
	fresh := loadedMsg[records.Client]{seq: p.seq, items: []records.Client{{ID: 1, Name: "Nuevo"}}}

	p.update(fresh)
	p.update(stale)

	items := p.store.Items()
	if len(items) != 1 || items[0].Name != "Nuevo" {
		t.Fatalf("expected only the latest response to apply, got %+v", items)
	}
}

func TestEntityPage_listFailureKeepsPreviousRows(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	p.load()
	p.update(loadedMsg[records.Client]{seq: p.seq, err: errors.New("connection refused")})

	if p.store.Len() != 7 {
		t.Fatalf("a failed refresh should keep what was shown, got %d rows", p.store.Len())
	}
	if !p.notice.err {
		t.Fatalf("expected an error notice")
	}
}

func TestEntityPage_searchResetsToFirstPage(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	m = press(t, m, runes("l"))
	if got := p.view.Page; got != 2 {
		t.Fatalf("expected page 2, got %d", got)
	}

	m = press(t, m, runes("/"), runes("ana"))
	if p.view.Page != 1 || p.view.Total != 1 {
		t.Fatalf("expected one match on page 1, got page=%d total=%d", p.view.Page, p.view.Total)
	}
	if p.visible[0].Name != "Ana López" {
		t.Fatalf("unexpected match %+v", p.visible[0])
	}

	_ = press(t, m, esc)
	if p.view.Total != 7 || p.list.Query() != "" {
		t.Fatalf("esc should clear the search, total=%d query=%q", p.view.Total, p.list.Query())
	}
}

func TestEntityPage_initialFilter(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	m = press(t, m, runes("i"), runes("m"))
	if p.view.Total != 1 || p.visible[0].Name != "María Fernanda Zelaya" {
		t.Fatalf("expected only María, got %+v", p.visible)
	}

	_ = press(t, m, runes("i"), esc)
	if p.view.Total != 7 {
		t.Fatalf("a non-letter should clear the initial, got %d", p.view.Total)
	}
}

func TestEntityPage_sortKeys(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	if p.visible[0].Name != "Ana López" {
		t.Fatalf("expected name order, got %+v", p.visible[0])
	}
	_ = press(t, m, runes("S"))
	if p.visible[0].Name != "Óscar Núñez" {
		t.Fatalf("expected descending name order, got %+v", p.visible[0])
	}
}

func TestEntityPage_deleteNeedsConfirmation(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, ctrlD)
	if p.focus != focusConfirm {
		t.Fatalf("delete should ask first")
	}
	m = press(t, m, runes("n"))
	if p.focus != focusList || svc.deletes != 0 {
		t.Fatalf("declining must not delete, focus=%v deletes=%d", p.focus, svc.deletes)
	}

	listsBefore := svc.lists
	_ = press(t, m, ctrlD, runes("y"))
	if svc.deletes != 1 {
		t.Fatalf("expected one delete, got %d", svc.deletes)
	}
	if svc.lists != listsBefore+1 {
		t.Fatalf("expected a refetch after delete")
	}
	if p.store.Len() != 6 {
		t.Fatalf("expected 6 clients after delete, got %d", p.store.Len())
	}
	for _, c := range p.store.Items() {
		if c.Name == "Ana López" {
			t.Fatalf("deleted client is still listed")
		}
	}
}

func TestEntityPage_firstRowSelectedAfterLoad(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	if got := p.table.Cursor(); got != 0 {
		t.Fatalf("expected the first row selected, got cursor %d", got)
	}
	m = press(t, m, runes("e"))
	if id, editing := p.editor.form.EditingID(); !editing || id != 1 {
		t.Fatalf("e should edit the first row, got id=%d editing=%v", id, editing)
	}
	m = press(t, m, esc)

	m = press(t, m, runes("/"), runes("zzz"))
	if p.view.Total != 0 {
		t.Fatalf("expected no matches, got %d", p.view.Total)
	}
	m = press(t, m, esc)
	if got := p.table.Cursor(); got != 0 {
		t.Fatalf("clearing an empty search should select the first row, got cursor %d", got)
	}
	_ = press(t, m, ctrlD)
	if p.focus != focusConfirm || p.confirmID != 1 {
		t.Fatalf("delete should ask about the first row, focus=%v id=%d", p.focus, p.confirmID)
	}
}

func TestEntityPage_footerShowsLoadTime(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	want := "updated " + p.store.LoadedAt().Format("15:04:05")
	if out := p.render(140, 40); !strings.Contains(out, want) {
		t.Fatalf("expected %q in footer:\n%s", want, out)
	}
}

func TestEntityPage_failedFirstLoadIsShown(t *testing.T) {
	m := openClients(t, brokenLists{records.NewMockClient()})
	p := clientsPage(t, m)

	if p.store.Err() == nil {
		t.Fatalf("expected the load error to be kept")
	}
	out := p.render(140, 40)
	if !strings.Contains(out, "clients unavailable") {
		t.Fatalf("expected an unavailable message:\n%s", out)
	}
	if strings.Contains(out, "updated ") {
		t.Fatalf("nothing was loaded, footer must not show a time:\n%s", out)
	}
}

func TestEntityPage_createRefetchesAndResetsForm(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, runes("n"), runes("Pedro Pérez"), tab, runes("99112233"), tab, runes("pedro@correo.com"))
	if got := p.editor.form.Value("phone"); got != "+504 9911-2233" {
		t.Fatalf("phone should be formatted while typing, got %q", got)
	}

	listsBefore := svc.lists
	_ = press(t, m, enter)

	if svc.creates != 1 || svc.lists != listsBefore+1 {
		t.Fatalf("expected one create and one refetch, creates=%d lists=%d", svc.creates, svc.lists-listsBefore)
	}
	if p.store.Len() != 8 {
		t.Fatalf("expected 8 clients, got %d", p.store.Len())
	}
	if p.focus != focusList || p.editor.form.Value("name") != "" {
		t.Fatalf("form should reset after a successful create")
	}
}

func TestEntityPage_enterIgnoredWhileSubmitting(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, runes("n"), runes("Pedro Pérez"), tab, runes("99112233"), tab, runes("pedro@correo.com"))

	m, first := update(t, m, enter)
	if first == nil {
		t.Fatalf("expected a submit")
	}
	m, second := update(t, m, enter)
	if second != nil {
		t.Fatalf("second enter while in flight must be ignored")
	}
	_ = settle(t, m, first)

	if svc.creates != 1 || p.store.Len() != 8 {
		t.Fatalf("expected exactly one create, got creates=%d rows=%d", svc.creates, p.store.Len())
	}
}

func TestEntityPage_lateSubmitKeepsNewerDraft(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, runes("n"), runes("Pedro Pérez"), tab, runes("99112233"), tab, runes("pedro@correo.com"))
	m, pending := update(t, m, enter)
	if pending == nil {
		t.Fatalf("expected a submit")
	}

	m = press(t, m, esc, runes("n"), runes("Rosa Díaz"))
	_ = settle(t, m, pending)

	if svc.creates != 1 || p.store.Len() != 8 {
		t.Fatalf("the first draft should still be saved, creates=%d rows=%d", svc.creates, p.store.Len())
	}
	if got := p.editor.form.Value("name"); got != "Rosa Díaz" {
		t.Fatalf("newer draft was cleared, name=%q", got)
	}
	if p.focus != focusForm {
		t.Fatalf("focus should stay on the newer draft, got %v", p.focus)
	}
	if p.submitting {
		t.Fatalf("submit flag should be cleared")
	}
}

func TestEntityPage_invalidFormNeverReachesService(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, runes("n"), runes("P"), tab, runes("123"), tab, runes("nope"))
	_, cmd := update(t, m, enter)
	if cmd != nil {
		t.Fatalf("invalid form must not produce a request")
	}
	errs := p.editor.form.Errors()
	for _, k := range []string{"name", "phone", "email"} {
		if errs[k] == "" {
			t.Fatalf("expected an error for %s, got %v", k, errs)
		}
	}
	if svc.creates != 0 {
		t.Fatalf("service was called")
	}
}

func TestEntityPage_editUpdatesInPlace(t *testing.T) {
	svc := newCountingService()
	m := openClients(t, svc)
	p := clientsPage(t, m)

	m = press(t, m, runes("e"))
	if id, editing := p.editor.form.EditingID(); !editing || id != 1 {
		t.Fatalf("expected to edit client 1, got id=%d editing=%v", id, editing)
	}
	_ = press(t, m, runes(" Reyes"), enter)

	if svc.updates != 1 || svc.creates != 0 {
		t.Fatalf("edit must update, not create: updates=%d creates=%d", svc.updates, svc.creates)
	}
	if p.store.Len() != 7 {
		t.Fatalf("edit must not add a row, got %d", p.store.Len())
	}
	cs, _ := svc.MockClient.ListClients(context.Background())
	if cs[0].Name != "Ana López Reyes" {
		t.Fatalf("expected the name to change, got %q", cs[0].Name)
	}
}

func TestEntityPage_cancelEditReturnsToCreate(t *testing.T) {
	m := openClients(t, records.NewMockClient())
	p := clientsPage(t, m)

	_ = press(t, m, runes("e"), esc)
	if _, editing := p.editor.form.EditingID(); editing {
		t.Fatalf("esc should leave edit mode")
	}
	if p.editor.form.Value("name") != "" {
		t.Fatalf("esc should clear the draft")
	}
}

func TestEntityPage_reportIsReadOnly(t *testing.T) {
	m := start(t, records.NewMockClient(), signedIn())
	m, cmd := update(t, m, navigateMsg{to: screenReports})
	m = settle(t, m, cmd)

	p, ok := m.page.(*entityPage[records.ReportRow])
	if !ok {
		t.Fatalf("expected report page, got %T", m.page)
	}
	if p.store.Len() != 7 {
		t.Fatalf("expected one row per client, got %d", p.store.Len())
	}
	m = press(t, m, runes("n"), ctrlD)
	if p.focus != focusList {
		t.Fatalf("report must not open a form or a confirm dialog")
	}
	if m.View() == "" {
		t.Fatalf("expected the report to render")
	}
}

func TestModel_viewRendersEachScreen(t *testing.T) {
	for _, to := range []screen{screenDashboard, screenClients, screenAppointments, screenPayments, screenReports} {
		m := start(t, records.NewMockClient(), signedIn())
		m, cmd := update(t, m, navigateMsg{to: to})
		m = settle(t, m, cmd)
		if m.View() == "" {
			t.Fatalf("%v rendered nothing", to)
		}
	}
}

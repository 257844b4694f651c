package mockserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"robles/internal/records"
)

func newClient(t *testing.T, svc records.Service) *records.HTTPClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(New(svc, nil))
	t.Cleanup(srv.Close)

	c := records.NewHTTPClient(srv.URL)
	c.HTTP = srv.Client()
	return c
}

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, records.EmptyMockClient())

	list, err := c.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, c.CreateClient(ctx, records.ClientInput{Name: "Ana López", Phone: "+504 9988-7766", Email: "ana@correo.com"}))
	list, err = c.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	ana := list[0]
	assert.Equal(t, "Ana López", ana.Name)
	assert.NotZero(t, ana.ID)

	require.NoError(t, c.UpdateClient(ctx, ana.ID, records.ClientInput{Name: "Ana López", Phone: "+504 3258-8956", Email: "ana@correo.com"}))
	list, err = c.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "edit must not duplicate the record")
	assert.Equal(t, ana.ID, list[0].ID)
	assert.Equal(t, "+504 3258-8956", list[0].Phone)

	require.NoError(t, c.DeleteClient(ctx, ana.ID))
	list, err = c.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = c.DeleteClient(ctx, ana.ID)
	assert.Equal(t, http.StatusNotFound, records.StatusCode(err))
}

func TestAppointmentsAndPayments(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, records.EmptyMockClient())

	require.NoError(t, c.CreateAppointment(ctx, records.AppointmentInput{ClientName: "Ana López", Date: "2024-06-01", Time: "09:30", Notes: "Lote 4"}))
	appts, err := c.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "09:30", appts[0].Time)

	require.NoError(t, c.CreatePayment(ctx, records.PaymentInput{ClientName: "Ana López", Amount: 1500.5, Date: "2024-06-02"}))
	pays, err := c.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, 1500.5, pays[0].Amount)

	require.NoError(t, c.UpdatePayment(ctx, pays[0].ID, records.PaymentInput{ClientName: "Ana López", Amount: 2000, Date: "2024-06-02"}))
	require.NoError(t, c.DeleteAppointment(ctx, appts[0].ID))

	err = c.UpdateAppointment(ctx, 999, records.AppointmentInput{ClientName: "X"})
	assert.Equal(t, http.StatusNotFound, records.StatusCode(err))
}

func TestCreate_rejectedPayloadCarriesFieldErrors(t *testing.T) {
	c := newClient(t, records.EmptyMockClient())
	err := c.CreateClient(context.Background(), records.ClientInput{})
	require.Error(t, err)

	var apiErr *records.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotEmpty(t, apiErr.Fields)
}

func TestReport(t *testing.T) {
	c := newClient(t, records.NewMockClient())
	rows, err := c.Report(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.NotEmpty(t, r.Name)
	}
}

func TestLoginAndRegister(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, records.NewMockClient())

	u, err := c.Login(ctx, "admin@robles.hn", "Robles2024")
	require.NoError(t, err)
	assert.Equal(t, "admin@robles.hn", u.Email)

	_, err = c.Login(ctx, "nadie@robles.hn", "x")
	var apiErr *records.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "user not found", apiErr.Message)

	_, err = c.Login(ctx, "admin@robles.hn", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "wrong password", apiErr.Message)

	err = c.RegisterUser(ctx, records.Registration{Name: "Karen Díaz", Email: "admin@robles.hn", Password: "short", ConfirmPassword: "other"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "email")
	assert.Contains(t, apiErr.Fields, "password")
	assert.Contains(t, apiErr.Fields, "confirmPassword")

	reg := records.Registration{Name: "Karen Díaz", Email: "karen@correo.com", Password: "Robles2025", ConfirmPassword: "Robles2025"}
	require.NoError(t, c.RegisterUser(ctx, reg))
	u, err = c.Login(ctx, reg.Email, reg.Password)
	require.NoError(t, err)
	assert.Equal(t, "Karen Díaz", u.Name)
}

func TestRoutes_badRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(records.NewMockClient(), nil)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPut, "/clientes/edit/abc", `{}`, http.StatusBadRequest},
		{http.MethodDelete, "/pagos/delete/0", "", http.StatusBadRequest},
		{http.MethodPost, "/citas/register", `not json`, http.StatusBadRequest},
		{http.MethodGet, "/nada", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(records.NewMockClient(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, rec.Body.String(), `"total":7`)
}

func TestRun_stopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "127.0.0.1:0", New(records.NewMockClient(), nil), zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package records

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPClient talks to the records service over its JSON API.
//
// List:   GET    /{entity}             -> {data:[...]}
// Create: POST   /{entity}/register
// Update: PUT    /{entity}/edit/{id}
// Delete: DELETE /{entity}/delete/{id}
// Report: GET    /reportes/clientes-resumen
// Auth:   POST   /users/login, /users/register
type HTTPClient struct {
	Server    string
	Timeout   time.Duration
	HTTP      *http.Client
	UserAgent string
	Insecure  bool
	Logger    *zap.Logger
}

func NewHTTPClient(server string) *HTTPClient {
	return &HTTPClient{
		Server:    strings.TrimRight(server, "/"),
		Timeout:   10 * time.Second,
		UserAgent: "robles/0.1.0",
		Logger:    zap.NewNop(),
	}
}

func (c *HTTPClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.Insecure {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // explicit user flag
	}

	return &http.Client{Timeout: c.Timeout, Transport: transport}
}

func (c *HTTPClient) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *HTTPClient) ListClients(ctx context.Context) ([]Client, error) {
	return listJSON[Client](ctx, c, "/"+string(Clients))
}

func (c *HTTPClient) CreateClient(ctx context.Context, in ClientInput) error {
	return c.create(ctx, Clients, in)
}

func (c *HTTPClient) UpdateClient(ctx context.Context, id int, in ClientInput) error {
	return c.update(ctx, Clients, id, in)
}

func (c *HTTPClient) DeleteClient(ctx context.Context, id int) error {
	return c.remove(ctx, Clients, id)
}

func (c *HTTPClient) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return listJSON[Appointment](ctx, c, "/"+string(Appointments))
}

func (c *HTTPClient) CreateAppointment(ctx context.Context, in AppointmentInput) error {
	return c.create(ctx, Appointments, in)
}

func (c *HTTPClient) UpdateAppointment(ctx context.Context, id int, in AppointmentInput) error {
	return c.update(ctx, Appointments, id, in)
}

func (c *HTTPClient) DeleteAppointment(ctx context.Context, id int) error {
	return c.remove(ctx, Appointments, id)
}

func (c *HTTPClient) ListPayments(ctx context.Context) ([]Payment, error) {
	return listJSON[Payment](ctx, c, "/"+string(Payments))
}

func (c *HTTPClient) CreatePayment(ctx context.Context, in PaymentInput) error {
	return c.create(ctx, Payments, in)
}

func (c *HTTPClient) UpdatePayment(ctx context.Context, id int, in PaymentInput) error {
	return c.update(ctx, Payments, id, in)
}

func (c *HTTPClient) DeletePayment(ctx context.Context, id int) error {
	return c.remove(ctx, Payments, id)
}

func (c *HTTPClient) Report(ctx context.Context) ([]ReportRow, error) {
	return listJSON[ReportRow](ctx, c, reportPath)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (User, error) {
	payload := map[string]string{"email": email, "password": password}
	var out struct {
		User *User `json:"user"`
	}
	b, err := c.doJSON(ctx, http.MethodPost, "/users/login", payload)
	if err != nil {
		return User{}, loginError(err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			c.logger().Warn("login response not understood", zap.Error(err))
		}
	}
	if out.User == nil {
		return User{Email: email}, nil
	}
	if out.User.Email == "" {
		out.User.Email = email
	}
	return *out.User, nil
}

// loginError picks the most specific message the service offered: the email
// field, then the password field, then the top-level message.
func loginError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Fields["email"] != "":
		apiErr.Message = apiErr.Fields["email"]
	case apiErr.Fields["password"] != "":
		apiErr.Message = apiErr.Fields["password"]
	case apiErr.Message == "":
		apiErr.Message = "login failed"
	}
	return apiErr
}

func (c *HTTPClient) RegisterUser(ctx context.Context, in Registration) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/users/register", in)
	return err
}

func (c *HTTPClient) create(ctx context.Context, e Entity, payload any) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/"+string(e)+"/register", payload)
	return err
}

func (c *HTTPClient) update(ctx context.Context, e Entity, id int, payload any) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/"+string(e)+"/edit/"+strconv.Itoa(id), payload)
	return err
}

func (c *HTTPClient) remove(ctx context.Context, e Entity, id int) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/"+string(e)+"/delete/"+strconv.Itoa(id), nil)
	return err
}

// listJSON fetches {data:[...]}. Anything other than a decodable array under
// data degrades to an empty list.
func listJSON[T any](ctx context.Context, c *HTTPClient, path string) ([]T, error) {
	b, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		c.logger().Warn("malformed list response", zap.String("path", path), zap.Error(err))
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		c.logger().Warn("list response has no data array", zap.String("path", path), zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	u, err := url.Parse(c.Server)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	logger := c.logger().With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	res, err := c.client().Do(req)
	dur := time.Since(start)
	if err != nil {
		logger.Error("records request failed",
			zap.String("url", u.String()),
			zap.Int64("duration_ms", dur.Milliseconds()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("records request failed: %w", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)

	logger.Debug("records request",
		zap.Int("status", res.StatusCode),
		zap.Int64("duration_ms", dur.Milliseconds()),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, fields := parseErrorBody(b)
		logger.Warn("records non-2xx response",
			zap.Int("status", res.StatusCode),
			zap.String("response", truncate(strings.TrimSpace(string(b)), 500)),
		)
		return nil, &APIError{Method: method, Path: path, Status: res.StatusCode, Message: msg, Fields: fields}
	}
	return b, nil
}

// parseErrorBody understands the two error shapes the service uses:
// {errors:[{path,msg}]} from registration and {errors:{field:{msg}}, message}
// from login. Plain-text bodies become the message.
func parseErrorBody(b []byte) (string, map[string]string) {
	var env struct {
		Errors  json.RawMessage `json:"errors"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return truncate(strings.TrimSpace(string(b)), 500), nil
	}

	msg := env.Message
	if msg == "" {
		msg = env.Error
	}

	fields := map[string]string{}
	var list []struct {
		Path string `json:"path"`
		Msg  string `json:"msg"`
	}
	var byField map[string]struct {
		Msg string `json:"msg"`
	}
	switch {
	case len(env.Errors) == 0:
	case json.Unmarshal(env.Errors, &list) == nil:
		for _, e := range list {
			if e.Path != "" {
				fields[e.Path] = e.Msg
			}
		}
	case json.Unmarshal(env.Errors, &byField) == nil:
		for k, v := range byField {
			fields[k] = v.Msg
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return msg, fields
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "…"
	}
	return s
}

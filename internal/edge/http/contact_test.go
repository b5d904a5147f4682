package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/discoveruz/edge/internal/edge/csrf"
	"github.com/discoveruz/edge/internal/edge/mail"
	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newContactFixture(t *testing.T) (http.Handler, *csrf.Guard, *captureMailer) {
	t.Helper()

	guard, err := csrf.NewGuard([]byte("test-csrf-secret"))
	require.NoError(t, err)

	mailer := &captureMailer{}
	handler := &ContactHandler{
		ContactService: &service.ContactService{
			Mailer:  mailer,
			InboxTo: "inbox@discoveruz.example",
			Log:     slog.New(slog.DiscardHandler),
		},
		Limiter:     ratelimit.New(ratelimit.Config{}, nil, nil),
		EmailSecret: []byte("email-salt"),
	}

	return httpx.Chain(handler, CSRFMiddleware(guard)), guard, mailer
}

func postContact(t *testing.T, handler http.Handler, guard *csrf.Guard, body string, ip string) *http.Response {
	t.Helper()

	token, err := guard.Issue()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrf.HeaderName, token)
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
	req.RemoteAddr = ip + ":1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Result()
}

const validContactBody = `{
	"name": "Aziz Karimov",
	"email": "aziz@example.com",
	"subject": "booking",
	"message": "I would like to book a tour through the Fergana valley."
}`

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestContactHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid submission notifies and succeeds", func(t *testing.T) {
		handler, guard, mailer := newContactFixture(t)

		res := postContact(t, handler, guard, validContactBody, "10.0.0.1")
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody(t, res)
		require.Equal(t, true, body["success"])
		require.Contains(t, body["message"], "Thank you for your message")
		require.Equal(t, 1, mailer.count())
	})

	t.Run("missing csrf token is rejected before anything else", func(t *testing.T) {
		handler, _, mailer := newContactFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(validContactBody))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Result().StatusCode)
		require.Zero(t, mailer.count())
	})

	t.Run("header and cookie must match", func(t *testing.T) {
		handler, guard, _ := newContactFixture(t)

		cookieToken, err := guard.Issue()
		require.NoError(t, err)
		headerToken, err := guard.Issue()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(validContactBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(csrf.HeaderName, headerToken)
		req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: cookieToken})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Result().StatusCode)
		body := decodeBody(t, rec.Result())
		require.Equal(t, "Invalid CSRF token", body["error"])
	})

	t.Run("validation failure reports fields", func(t *testing.T) {
		handler, guard, mailer := newContactFixture(t)

		res := postContact(t, handler, guard,
			`{"name":"A","email":"bad","subject":"nope","message":"short"}`, "10.0.0.2")
		require.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeBody(t, res)
		fields := body["fields"].(map[string]any)
		require.Contains(t, fields, "name")
		require.Contains(t, fields, "email")
		require.Contains(t, fields, "subject")
		require.Contains(t, fields, "message")
		require.Zero(t, mailer.count())
	})

	t.Run("xss in message is caught by the double check", func(t *testing.T) {
		handler, guard, mailer := newContactFixture(t)

		res := postContact(t, handler, guard,
			`{"name":"Aziz Karimov","email":"aziz@example.com","subject":"general",
			  "message":"Nice site, see <img src=x onfocus= \"steal()\"> for details"}`, "10.0.0.3")
		require.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeBody(t, res)
		fields := body["fields"].(map[string]any)
		require.Equal(t, "Invalid characters detected", fields["message"])
		require.Zero(t, mailer.count())
	})

	t.Run("seventh request in a window is rate limited", func(t *testing.T) {
		handler, guard, _ := newContactFixture(t)

		for i := 0; i < 6; i++ {
			res := postContact(t, handler, guard, validContactBody, "10.0.0.4")
			require.Equal(t, http.StatusOK, res.StatusCode, "request %d", i+1)
		}

		res := postContact(t, handler, guard, validContactBody, "10.0.0.4")
		require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
		require.NotEmpty(t, res.Header.Get("Retry-After"))

		body := decodeBody(t, res)
		require.Contains(t, body["error"], "Too many requests")
	})

	t.Run("rate limit applies before validation", func(t *testing.T) {
		handler, guard, _ := newContactFixture(t)

		// Burn the window with invalid submissions from one identity.
		invalid := `{"name":"A","email":"aziz@example.com","subject":"nope","message":"short"}`
		for i := 0; i < 6; i++ {
			res := postContact(t, handler, guard, invalid, "10.0.0.5")
			require.Equal(t, http.StatusBadRequest, res.StatusCode)
		}

		// The valid follow-up still hits the limiter, not validation.
		res := postContact(t, handler, guard, validContactBody, "10.0.0.5")
		require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		handler, guard, mailer := newContactFixture(t)

		big := `{"name":"Aziz","message":"` + strings.Repeat("a", maxContactBodyBytes) + `"}`
		res := postContact(t, handler, guard, big, "10.0.0.6")
		require.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
		require.Zero(t, mailer.count())
	})

	t.Run("malformed json is a 400", func(t *testing.T) {
		handler, guard, _ := newContactFixture(t)

		res := postContact(t, handler, guard, `{"name":`, "10.0.0.7")
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestNewsletterHandler(t *testing.T) {
	t.Parallel()

	guard, err := csrf.NewGuard([]byte("test-csrf-secret"))
	require.NoError(t, err)

	mailer := &captureMailer{}
	handler := httpx.Chain(&NewsletterHandler{
		ContactService: &service.ContactService{
			Mailer:  mailer,
			InboxTo: "inbox@discoveruz.example",
			Log:     slog.New(slog.DiscardHandler),
		},
		Limiter:     ratelimit.New(ratelimit.Config{Window: time.Minute, MaxRequests: 6}, nil, nil),
		EmailSecret: []byte("email-salt"),
	}, CSRFMiddleware(guard))

	t.Run("valid signup succeeds", func(t *testing.T) {
		res := postContact(t, handler, guard, `{"email":"aziz@example.com"}`, "10.1.0.1")
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, 1, mailer.count())
	})

	t.Run("invalid email fails validation", func(t *testing.T) {
		res := postContact(t, handler, guard, `{"email":"nope"}`, "10.1.0.2")
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

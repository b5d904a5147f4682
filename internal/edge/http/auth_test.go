package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/discoveruz/edge/internal/edge/csrf"
	"github.com/discoveruz/edge/internal/edge/ratelimit"
	"github.com/discoveruz/edge/internal/edge/service"
	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthHandler, *csrf.Guard, store.Store, *captureMailer) {
	t.Helper()

	st := newTestStore(t)
	codec, err := jwtx.NewCodec([]byte("test-session-secret"))
	require.NoError(t, err)
	guard, err := csrf.NewGuard([]byte("test-csrf-secret"))
	require.NoError(t, err)

	sessions := &service.SessionService{Store: st, Codec: codec}
	mailer := &captureMailer{}

	h := &AuthHandler{
		Sessions: sessions,
		Users: &service.UserService{
			Store:    st,
			Sessions: sessions,
			Mailer:   mailer,
			BaseURL:  "http://localhost:8080",
			Log:      slog.New(slog.DiscardHandler),
		},
		Limiter:     ratelimit.New(ratelimit.Config{}, nil, nil),
		EmailSecret: []byte("email-salt"),
	}
	return h, guard, st, mailer
}

func withCSRF(h http.HandlerFunc, guard *csrf.Guard) http.Handler {
	return CSRFMiddleware(guard)(h)
}

func postAuth(t *testing.T, h http.HandlerFunc, guard *csrf.Guard, body, ip string) *http.Response {
	t.Helper()

	token, err := guard.Issue()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrf.HeaderName, token)
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
	req.RemoteAddr = ip + ":1234"

	rec := httptest.NewRecorder()
	withCSRF(h, guard).ServeHTTP(rec, req)
	return rec.Result()
}

const signupBody = `{
	"name": "Aziz Karimov",
	"email": "aziz@example.com",
	"password": "Str0ng!pass",
	"confirmPassword": "Str0ng!pass",
	"terms": true
}`

func verifySignupUser(t *testing.T, st store.Store, mailer *captureMailer) {
	t.Helper()
	msg := mailer.sent[len(mailer.sent)-1]
	_, after, found := strings.Cut(msg.Text, "token=")
	require.True(t, found)
	token, _, _ := strings.Cut(after, "\n")

	record, err := st.VerificationTokens().GetVerificationToken(t.Context(), strings.TrimSpace(token))
	require.NoError(t, err)
	require.NoError(t, st.Users().MarkEmailVerified(t.Context(), record.UserID))
}

func TestAuthSignupAndLogin(t *testing.T) {
	t.Parallel()

	h, guard, st, mailer := newAuthFixture(t)

	t.Run("signup creates account and sends verification", func(t *testing.T) {
		res := postAuth(t, h.HandleSignup, guard, signupBody, "10.2.0.1")
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, 1, mailer.count())

		user, err := st.Users().GetUserByEmail(t.Context(), "aziz@example.com")
		require.NoError(t, err)
		require.False(t, user.EmailVerified)
	})

	t.Run("duplicate signup reports the email field", func(t *testing.T) {
		res := postAuth(t, h.HandleSignup, guard, signupBody, "10.2.0.2")
		require.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeBody(t, res)
		fields := body["fields"].(map[string]any)
		require.Contains(t, fields["email"], "already exists")
	})

	t.Run("login before verification is rejected", func(t *testing.T) {
		res := postAuth(t, h.HandleLogin, guard,
			`{"email":"aziz@example.com","password":"Str0ng!pass"}`, "10.2.0.3")
		require.Equal(t, http.StatusUnauthorized, res.StatusCode)

		body := decodeBody(t, res)
		require.Contains(t, body["error"], "verify your email")
	})

	t.Run("login after verification sets the session cookie", func(t *testing.T) {
		verifySignupUser(t, st, mailer)

		res := postAuth(t, h.HandleLogin, guard,
			`{"email":"aziz@example.com","password":"Str0ng!pass"}`, "10.2.0.4")
		require.Equal(t, http.StatusOK, res.StatusCode)

		cookie := findCookie(t, res, SessionCookieName)
		require.NotNil(t, cookie)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		require.NotEmpty(t, cookie.Value)
		require.True(t, cookie.Expires.After(time.Now().Add(23*time.Hour)))
		require.True(t, cookie.Expires.Before(time.Now().Add(25*time.Hour)))
	})

	t.Run("remember me extends the cookie", func(t *testing.T) {
		res := postAuth(t, h.HandleLogin, guard,
			`{"email":"aziz@example.com","password":"Str0ng!pass","remember":true}`, "10.2.0.5")
		require.Equal(t, http.StatusOK, res.StatusCode)

		cookie := findCookie(t, res, SessionCookieName)
		require.NotNil(t, cookie)
		require.True(t, cookie.Expires.After(time.Now().Add(29*24*time.Hour)))
	})

	t.Run("unknown email and wrong password answer identically", func(t *testing.T) {
		resUnknown := postAuth(t, h.HandleLogin, guard,
			`{"email":"nobody@example.com","password":"Str0ng!pass"}`, "10.2.0.6")
		resWrong := postAuth(t, h.HandleLogin, guard,
			`{"email":"aziz@example.com","password":"Wr0ng!pass"}`, "10.2.0.7")

		require.Equal(t, http.StatusUnauthorized, resUnknown.StatusCode)
		require.Equal(t, http.StatusUnauthorized, resWrong.StatusCode)

		var a, b map[string]any
		require.NoError(t, json.NewDecoder(resUnknown.Body).Decode(&a))
		require.NoError(t, json.NewDecoder(resWrong.Body).Decode(&b))
		require.Equal(t, a, b)
	})

	t.Run("repeated login attempts are rate limited", func(t *testing.T) {
		// One identity: same IP and email.
		for i := 0; i < 6; i++ {
			postAuth(t, h.HandleLogin, guard,
				`{"email":"target@example.com","password":"Wr0ng!pass"}`, "10.2.0.8")
		}
		res := postAuth(t, h.HandleLogin, guard,
			`{"email":"target@example.com","password":"Wr0ng!pass"}`, "10.2.0.8")
		require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	})

	t.Run("logout clears the cookie and revokes the session", func(t *testing.T) {
		loginRes := postAuth(t, h.HandleLogin, guard,
			`{"email":"aziz@example.com","password":"Str0ng!pass"}`, "10.2.0.9")
		sessionCookie := findCookie(t, loginRes, SessionCookieName)
		require.NotNil(t, sessionCookie)

		token, err := guard.Issue()
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set(csrf.HeaderName, token)
		req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionCookie.Value})

		rec := httptest.NewRecorder()
		withCSRF(h.HandleLogout, guard).ServeHTTP(rec, req)
		res := rec.Result()

		require.Equal(t, http.StatusOK, res.StatusCode)
		cleared := findCookie(t, res, SessionCookieName)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)

		require.Nil(t, h.Sessions.GetSession(t.Context(), sessionCookie.Value))
	})
}

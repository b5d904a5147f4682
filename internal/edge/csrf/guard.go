// Package csrf implements the double-submit cookie pattern with
// HMAC-signed tokens. Stateless: no store lookups, the signature is the
// proof of origin.
package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/discoveruz/edge/pkg/cryptox"
)

const (
	// CookieName is readable by client code (not httpOnly) because the
	// client must echo the value back on every mutating request.
	CookieName = "__csrf_token"

	// HeaderName is the preferred submission channel.
	HeaderName = "x-csrf-token"

	// FormFieldName is the fallback submission channel for plain form posts.
	FormFieldName = "csrf_token"

	tokenBytes = 32
)

// Validation failures form a closed set so every caller handles each kind
// explicitly. Clients only ever see a generic message; the kind is for
// server-side logs.
var (
	ErrMissingCookie     = errors.New("csrf: token missing from cookie")
	ErrMissingSubmission = errors.New("csrf: token missing from request")
	ErrMismatch          = errors.New("csrf: cookie and submitted token differ")
	ErrBadFormat         = errors.New("csrf: invalid token format")
	ErrBadSignature      = errors.New("csrf: token signature invalid")
)

// Guard issues and validates signed CSRF tokens under a server secret.
type Guard struct {
	secret []byte
}

func NewGuard(secret []byte) (*Guard, error) {
	if len(secret) == 0 {
		return nil, errors.New("csrf: empty signing secret")
	}
	return &Guard{secret: secret}, nil
}

// Issue mints a fresh signed token: random.signature, both parts
// base64url without padding, signature = HMAC-SHA256(secret, random).
func (g *Guard) Issue() (string, error) {
	random, err := cryptox.GenerateToken(tokenBytes)
	if err != nil {
		return "", err
	}
	return random + "." + cryptox.SignHMAC(g.secret, random), nil
}

// Validate checks the double-submit pair. Order matters and each failure
// maps to exactly one kind: cookie present → submission present → values
// byte-equal → signature verifies under the current secret. Fails closed.
func (g *Guard) Validate(cookieToken, submittedToken string) error {
	if cookieToken == "" {
		return ErrMissingCookie
	}
	if submittedToken == "" {
		return ErrMissingSubmission
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submittedToken)) != 1 {
		return ErrMismatch
	}

	random, signature, ok := strings.Cut(cookieToken, ".")
	if !ok || random == "" || signature == "" {
		return ErrBadFormat
	}

	if !cryptox.VerifyHMAC(g.secret, random, signature) {
		return ErrBadSignature
	}
	return nil
}

// Verify reports whether a token on its own is well-formed and signed by
// us. Used by the edge gate to decide whether an existing cookie can be
// reused instead of minting a new one.
func (g *Guard) Verify(token string) bool {
	random, signature, ok := strings.Cut(token, ".")
	if !ok || random == "" || signature == "" {
		return false
	}
	return cryptox.VerifyHMAC(g.secret, random, signature)
}

// RequiresProtection reports whether the method is state-changing.
// Safe methods bypass validation entirely.
func RequiresProtection(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// SubmittedToken extracts the client-echoed token from the request:
// header first, else the hidden form field. ParseForm is safe to call on
// non-form bodies; it simply yields no value.
func SubmittedToken(r *http.Request) string {
	if token := r.Header.Get(HeaderName); token != "" {
		return token
	}

	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "form") {
		if err := r.ParseForm(); err == nil {
			return r.PostFormValue(FormFieldName)
		}
	}
	return ""
}

// CookieToken extracts the cookie half of the pair.
func CookieToken(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

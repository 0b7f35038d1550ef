package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// DefaultSessionName is the cookie name used when none is configured.
const DefaultSessionName = "gatherly-session"

// minKeyLength is the shortest session key accepted with secure cookies.
const minKeyLength = 32

// Cookie value keys.
const (
	keyUserID    = "uid"
	keyEmail     = "email"
	keySessionID = "sid"
)

// ErrWeakSessionKey is returned by NewSessionManager when secure cookies are
// requested with a short or placeholder key.
var ErrWeakSessionKey = errors.New("session key must be at least 32 random characters and not a placeholder")

// ErrNoSessionKey is returned by NewSessionManager for an empty key.
var ErrNoSessionKey = errors.New("session key is empty")

// placeholderKeys are fragments that mark a key as copied from sample config.
var placeholderKeys = []string{
	"dev-only", "change-me", "placeholder", "default", "example",
	"insecure", "test-key", "secret123", "password",
}

// SessionManager issues and reads the signed session cookie and resolves
// callers from bearer tokens. It is the source of the User in each request.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	logger   *zap.Logger
	verifier *TokenVerifier
	admins   AdminList
}

// NewSessionManager builds a cookie-backed session manager. With secure set
// (production), a weak key is an error; otherwise it only logs a warning.
func NewSessionManager(key, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if key == "" {
		return nil, ErrNoSessionKey
	}
	if weakKey(key) {
		if secure {
			return nil, ErrWeakSessionKey
		}
		logger.Warn("weak session key; not acceptable in production", zap.Int("length", len(key)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		// Lax keeps the cookie off cross-site POST, PUT and DELETE.
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager ready",
		zap.String("cookie", name),
		zap.String("domain", domain),
		zap.Bool("secure", secure))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

func weakKey(key string) bool {
	if len(key) < minKeyLength {
		return true
	}
	lower := strings.ToLower(key)
	for _, p := range placeholderKeys {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string { return sm.name }

// SetTokenVerifier enables bearer-token authentication.
func (sm *SessionManager) SetTokenVerifier(v *TokenVerifier) { sm.verifier = v }

// SetAdmins sets the allowlist that decides User.IsAdmin.
func (sm *SessionManager) SetAdmins(a AdminList) { sm.admins = a }

// CreateSession writes u into a fresh session cookie and returns the new
// session id.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, u *User) (string, error) {
	sess, err := sm.store.New(r, sm.name)
	if sess == nil {
		return "", err
	}
	sid, err := newSessionID()
	if err != nil {
		return "", err
	}
	sess.Values = map[any]any{
		keyUserID:    u.ID,
		keyEmail:     u.Email,
		keySessionID: sid,
	}
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return sid, nil
}

// DestroySession expires the session cookie. It is a no-op without one.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, _ := sm.store.Get(r, sm.name)
	if sess == nil {
		return
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("session destroy failed", zap.Error(err))
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// userFromSession returns the user stored in the request's cookie, or nil.
// Unreadable cookies are logged by cause and treated as absent.
func (sm *SessionManager) userFromSession(r *http.Request) *User {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sm.logCookieError(r, err)
	}
	if sess == nil {
		return nil
	}
	id, _ := sess.Values[keyUserID].(string)
	if id == "" {
		return nil
	}
	email, _ := sess.Values[keyEmail].(string)
	sid, _ := sess.Values[keySessionID].(string)
	return &User{
		ID:        id,
		Email:     email,
		IsAdmin:   sm.admins.Contains(email),
		Source:    SourceSession,
		SessionID: sid,
	}
}

// cookieFault names why a session cookie could not be read.
type cookieFault string

const (
	faultExpired  cookieFault = "expired"
	faultTampered cookieFault = "mac_invalid"
	faultCorrupt  cookieFault = "corrupt"
	faultBackend  cookieFault = "backend"
)

func classifyCookieError(err error) cookieFault {
	var sc securecookie.Error
	if !errors.As(err, &sc) || !sc.IsDecode() {
		return faultBackend
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "expired timestamp"):
		return faultExpired
	case strings.Contains(msg, "mac"), strings.Contains(msg, "hash"):
		return faultTampered
	default:
		return faultCorrupt
	}
}

func (sm *SessionManager) logCookieError(r *http.Request, err error) {
	fault := classifyCookieError(err)
	fields := []zap.Field{zap.String("fault", string(fault)), zap.String("path", r.URL.Path)}
	switch fault {
	case faultExpired:
		sm.logger.Debug("session cookie expired", fields...)
	case faultTampered:
		sm.logger.Warn("session cookie failed MAC check",
			append(fields, zap.String("remote_addr", r.RemoteAddr), zap.String("user_agent", r.UserAgent()))...)
	case faultCorrupt:
		sm.logger.Info("session cookie unreadable", fields...)
	default:
		sm.logger.Error("session store error", append(fields, zap.Error(err))...)
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userName    = "user_name"
	userEmail   = "user_email"
	userRole    = "user_role"
	userChurch  = "church_id"
	DefaultName = "iglesiahub-session"
)

// Staff roles carried in provider tokens.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated staff user injected into r.Context().
// Every request it authorizes is scoped to ChurchID.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Role     string
	ChurchID int64
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Handler tests use it to
// skip token and cookie handling.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager authenticates API requests from either a provider bearer
// token or a session cookie minted from one.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	verifier *Verifier
	log      *zap.Logger
}

// NewSessionManager builds the cookie store. An empty sessionKey is only
// tolerated outside production: a random key is generated, so sessions do not
// survive a restart.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, verifier *Verifier, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if verifier == nil {
		return nil, errors.New("auth: token verifier is required")
	}
	key := []byte(sessionKey)
	if len(key) == 0 {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
		}
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("session key not configured; using an ephemeral random key")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}
	if name == "" {
		name = DefaultName
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, verifier: verifier, log: logger}, nil
}

// LoadUser injects the user into context when the request carries a valid
// bearer token or session cookie. It never rejects a request itself.
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			u, err := m.verifier.Verify(tok)
			if err != nil {
				m.log.Debug("bearer token rejected", zap.Error(err))
			} else {
				r = withUser(r, u)
			}
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r, m.name)
		if err == nil {
			if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
				cid, _ := sess.Values[userChurch].(int64)
				r = withUser(r, &SessionUser{
					ID:       getString(sess, userIDKey),
					Name:     getString(sess, userName),
					Email:    getString(sess, userEmail),
					Role:     getString(sess, userRole),
					ChurchID: cid,
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Login verifies a provider token and stores its identity in the session cookie.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, token string) (*SessionUser, error) {
	u, err := m.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	sess.Values[userChurch] = u.ChurchID
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// Logout expires the session cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireSignedIn answers 401 when no user is in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, r, nil, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without a user and 403 when the user's role is not allowed.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, r, nil, apperr.ErrUnauthorized)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				respond.Error(w, r, nil, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

package csrf

import (
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Session is the mutable key-value mapping owned by the host's session
// subsystem. The guard only reads and writes the token string and holds the
// reference for at most the duration of one request. It never creates a
// session, only a token field inside one that already exists.
type Session interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Request carries the pieces of an incoming request the guard inspects: the
// session reference (nil when no session was established) and the request
// headers. The decoded payload, when an operation has one, is passed
// separately.
type Request struct {
	Session Session
	Header  http.Header
}

// Guard issues and validates CSRF tokens bound to a server-side session.
//
// The active configuration lives behind an atomic pointer: Configure
// replaces the whole snapshot in a single swap, so in-flight requests always
// observe either the old or the new field set, never a torn mix of both.
type Guard struct {
	cfg atomic.Pointer[Config]
	log *slog.Logger
}

// New returns a Guard using cfg, with zero fields replaced by the built-in
// defaults.
//
// Params:
// - cfg: initial configuration; the zero value yields a fully default guard.
//
// Returns:
// - a ready-to-use *Guard.
func New(cfg Config) *Guard {
	g := &Guard{log: slog.Default()}
	c := cfg.withDefaults()
	g.cfg.Store(&c)
	return g
}

// SetLogger replaces the guard's logger. slog.Default is used until then.
func (g *Guard) SetLogger(l *slog.Logger) {
	if l != nil {
		g.log = l
	}
}

// Config returns the current configuration snapshot.
func (g *Guard) Config() Config {
	return *g.cfg.Load()
}

// Configure merges a partial option map over the live configuration and
// atomically replaces the snapshot.
//
// Each value is passed through environment expansion first: a string of the
// exact form "${NAME}" becomes the value of that environment variable when
// defined, and stays literal otherwise. Numeric options supplied as strings
// are parsed, falling back to the built-in default on a bad value. The host
// should call Configure once at startup and again on every
// configuration-change notification, handing over the full re-read option
// set.
//
// Params:
// - options: option map from the host's config loader; unknown keys are ignored.
func (g *Guard) Configure(options map[string]any) {
	next := g.Config().merge(options)
	g.cfg.Store(&next)
}

// EnsureToken returns the session's CSRF token, generating and storing a new
// one when the session holds none yet. The token is reused for the life of
// the session; nothing here rotates or expires it.
//
// Params:
// - sess: the request's session.
//
// Returns:
//   - the token; ErrSessionRequired when sess is nil; or the generation error
//     when the platform randomness source is unavailable, which callers must
//     treat as fatal.
func (g *Guard) EnsureToken(sess Session) (string, error) {
	if sess == nil {
		return "", ErrSessionRequired
	}
	cfg := g.Config()
	if tok, ok := sess.Get(cfg.SessionKey); ok && tok != "" {
		return tok, nil
	}
	tok, err := newToken(cfg.TokenLength)
	if err != nil {
		return "", err
	}
	sess.Set(cfg.SessionKey, tok)
	return tok, nil
}

// TokenOf returns the token currently stored in sess, if any. It never
// creates one.
func (g *Guard) TokenOf(sess Session) (string, bool) {
	if sess == nil {
		return "", false
	}
	tok, ok := sess.Get(g.Config().SessionKey)
	return tok, ok && tok != ""
}

// Validate checks the candidate token on req against the session token.
//
// The checks run in strict order:
//  1. no session attached             -> ErrSessionRequired
//  2. no token stored in the session  -> ErrTokenNotFound
//  3. header token present            -> constant-time compare; the body is
//     never consulted once a header value exists, even on a mismatch
//  4. body token present and matching -> the field is deleted from body so
//     downstream consumers never see the token as a data field
//  5. otherwise                       -> ErrInvalidToken
//
// Params:
// - req: session and headers of the incoming request.
// - body: decoded request payload, or nil when the operation carries none.
//
// Returns:
// - nil on success; a *ValidationError with status 403 otherwise.
func (g *Guard) Validate(req *Request, body map[string]any) error {
	if req == nil || req.Session == nil {
		return ErrSessionRequired
	}
	cfg := g.Config()
	want, ok := req.Session.Get(cfg.SessionKey)
	if !ok || want == "" {
		return ErrTokenNotFound
	}
	if got := req.Header.Get(cfg.HeaderName); got != "" {
		if tokenEqual(got, want) {
			return nil
		}
		return ErrInvalidToken
	}
	if got, ok := body[cfg.BodyField].(string); ok && got != "" && tokenEqual(got, want) {
		delete(body, cfg.BodyField)
		return nil
	}
	return ErrInvalidToken
}

// TokenResponse is the payload returned by the token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

// Token implements the read-only token endpoint: it returns the session's
// current token, creating one if absent. ErrSessionRequired propagates
// unchanged when the request carries no session.
func (g *Guard) Token(req *Request) (TokenResponse, error) {
	if req == nil {
		return TokenResponse{}, ErrSessionRequired
	}
	tok, err := g.EnsureToken(req.Session)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{Token: tok}, nil
}

package csrf

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// SessionFunc resolves the session attached to an incoming request. It is
// supplied by the integration layer (cookie store, middleware context, ...)
// and must return nil when the request has no session.
type SessionFunc func(r *http.Request) Session

// Methods that require CSRF validation.
var unsafeMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Protect returns a middleware enforcing CSRF validation on state-changing
// methods.
//
// Behavior:
//   - All methods: when a session exists, ensure it holds a token and inject
//     the token into the request context for downstream handlers.
//   - Safe methods (GET/HEAD/OPTIONS): call next directly.
//   - Unsafe methods (POST/PUT/PATCH/DELETE): validate the header token, or,
//     when no header value is present, the configured field of a JSON body.
//     On a body match the token field is stripped from the payload seen by
//     next. Failures are rendered as a JSON 403 without calling next.
//
// Params:
// - sessions: resolver for the request's session, injected by the host.
//
// Returns:
// - a middleware in the standard func(http.Handler) http.Handler shape.
func (g *Guard) Protect(sessions SessionFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessions(r)

			if sess != nil {
				tok, err := g.EnsureToken(sess)
				if err != nil {
					g.log.Error("csrf token generation failed", "error", err)
					writeError(w, err)
					return
				}
				r = r.WithContext(contextWithToken(r.Context(), tok))
			}

			if !unsafeMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			req := &Request{Session: sess, Header: r.Header}
			body, raw := g.decodeBody(r)

			if err := g.Validate(req, body); err != nil {
				g.log.Debug("csrf validation rejected request",
					"method", r.Method, "path", r.URL.Path, "error", err)
				writeError(w, err)
				return
			}

			restoreBody(r, body, raw)
			next.ServeHTTP(w, r)
		})
	}
}

// decodeBody reads a JSON payload so the configured body field can be
// consulted. It only bothers when no header token is present (the header
// wins regardless) and the request advertises JSON. The raw bytes are kept
// so a payload that did not decode is restored untouched for next.
func (g *Guard) decodeBody(r *http.Request) (map[string]any, []byte) {
	if r.Header.Get(g.Config().HeaderName) != "" {
		return nil, nil
	}
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil || len(raw) == 0 {
		setBody(r, raw)
		return nil, nil
	}
	var body map[string]any
	if json.Unmarshal(raw, &body) != nil {
		setBody(r, raw)
		return nil, nil
	}
	return body, raw
}

// restoreBody hands the (possibly token-stripped) payload back to the
// request so downstream handlers read it as usual.
func restoreBody(r *http.Request, body map[string]any, raw []byte) {
	if body == nil {
		return
	}
	buf, err := json.Marshal(body)
	if err != nil {
		setBody(r, raw)
		return
	}
	setBody(r, buf)
}

func setBody(r *http.Request, buf []byte) {
	r.Body = io.NopCloser(bytes.NewReader(buf))
	r.ContentLength = int64(len(buf))
}

// TokenHandler returns an HTTP handler for the token endpoint. It responds
// with 200 {"token": "<hex>"} for the request's session, creating the token
// if absent, and 403 when no session exists. This is the endpoint SPAs fetch
// before issuing state-changing calls.
//
// The session capability is injected by the integration layer rather than
// resolved from global state, so the same guard serves any host router.
func (g *Guard) TokenHandler(sessions SessionFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := g.Token(&Request{Session: sessions(r), Header: r.Header})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// writeError renders err as the JSON error envelope exposed to clients.
func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	writeJSON(w, status, errorEnvelope{Error: errorBody{StatusCode: status, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package csrf provides session-bound CSRF protection for Go web
// applications.
//
// How it works
//   - A cryptographically random token (hex-encoded) is stored in the
//     server-side session the first time one is needed and reused for the
//     life of the session. A session must already exist; the guard never
//     creates one.
//   - State-changing operations must echo the token back, either in a
//     request header (default "x-csrf-token") or in a field of the JSON
//     payload (default "_csrf"). The header takes precedence: once a header
//     value is present the body is never consulted, even when the header
//     does not match.
//   - Tokens are compared in constant time. A matching body token is
//     stripped from the payload before it reaches the handler.
//
// # Configuration
//
// All behavior is driven by Config. Key fields include:
//   - TokenLength (default: 32 bytes, i.e. 64 hex characters)
//   - HeaderName (default: "x-csrf-token")
//   - BodyField (default: "_csrf")
//   - SessionKey (default: "csrfToken")
//
// Configure accepts the option map of the host's config loader. String
// values of the exact form "${ENV_VAR}" are expanded from the environment,
// and numeric options arriving as strings are parsed with a fallback to the
// defaults. The snapshot is replaced atomically, so it is safe to call
// Configure from a hot-reload notification while requests are in flight.
//
// Typical usage
//
//	g := csrf.New(csrf.Config{})
//	sessions := func(r *http.Request) csrf.Session { /* resolve from your session store */ }
//
//	// Protect an http.Handler (router, mux, etc.)
//	protected := g.Protect(sessions)(appMux)
//	http.ListenAndServe(":8080", protected)
//
// For SPAs, expose the token endpoint:
//
//	mux.Handle("/csrf/token", g.TokenHandler(sessions))
//
// Framework dispatch layers that hand operations around as objects can wrap
// them instead of using the middleware:
//
//	guarded := g.Wrap(csrf.Resource{Create: createNote, Remove: removeNote})
//
// Tokens are deliberately not rotated, expired or marked single-use: one
// token per session keeps the scheme simple, and secrecy of the token is
// what the protection rests on.
package csrf

package csrf

import "context"

type ctxKey string

const tokenKey ctxKey = "csrf_token_ctx"

// contextWithToken returns a derived context that stores the given CSRF token.
func contextWithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey, tok)
}

// TokenFromContext returns the CSRF token stored in ctx by the Protect
// middleware, if present. Handlers can use it to render the token into
// templates or return it from an API.
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	return v, ok
}

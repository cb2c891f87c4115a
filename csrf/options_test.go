package csrf

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("CSRF_TEST_VALUE", "v")

	if got := expandEnv("${CSRF_TEST_VALUE}"); got != "v" {
		t.Fatalf("defined variable: got %v, want %q", got, "v")
	}
	if got := expandEnv("${CSRF_TEST_UNSET_VALUE}"); got != "${CSRF_TEST_UNSET_VALUE}" {
		t.Fatalf("undefined variable must stay literal, got %v", got)
	}
	if got := expandEnv("plain"); got != "plain" {
		t.Fatalf("plain string must pass through, got %v", got)
	}
	if got := expandEnv(42); got != 42 {
		t.Fatalf("non-string must pass through, got %v", got)
	}
	// only a full "${NAME}" wrap is expanded
	if got := expandEnv("prefix ${CSRF_TEST_VALUE}"); got != "prefix ${CSRF_TEST_VALUE}" {
		t.Fatalf("partial wrap must pass through, got %v", got)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	cfg := New(Config{}).Config()
	if cfg.TokenLength != DefaultTokenLength {
		t.Fatalf("tokenLength: got %d, want %d", cfg.TokenLength, DefaultTokenLength)
	}
	if cfg.HeaderName != DefaultHeaderName || cfg.BodyField != DefaultBodyField || cfg.SessionKey != DefaultSessionKey {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigureMergesPartial(t *testing.T) {
	g := New(Config{})
	g.Configure(map[string]any{"headerName": "x-xsrf-token"})

	cfg := g.Config()
	if cfg.HeaderName != "x-xsrf-token" {
		t.Fatalf("headerName: got %q", cfg.HeaderName)
	}
	if cfg.TokenLength != DefaultTokenLength || cfg.BodyField != DefaultBodyField || cfg.SessionKey != DefaultSessionKey {
		t.Fatalf("untouched fields must keep their values: %+v", cfg)
	}

	// a second partial update merges over the previous one
	g.Configure(map[string]any{"bodyField": "_token"})
	cfg = g.Config()
	if cfg.HeaderName != "x-xsrf-token" || cfg.BodyField != "_token" {
		t.Fatalf("merge over previous values failed: %+v", cfg)
	}
}

func TestConfigureNumericCoercion(t *testing.T) {
	g := New(Config{})

	g.Configure(map[string]any{"tokenLength": "64"})
	if got := g.Config().TokenLength; got != 64 {
		t.Fatalf("numeric string: got %d, want 64", got)
	}

	g.Configure(map[string]any{"tokenLength": float64(48)})
	if got := g.Config().TokenLength; got != 48 {
		t.Fatalf("float (JSON number): got %d, want 48", got)
	}

	// unparsable values fall back to the default instead of erroring
	g.Configure(map[string]any{"tokenLength": "not-a-number"})
	if got := g.Config().TokenLength; got != DefaultTokenLength {
		t.Fatalf("bad numeric string: got %d, want default %d", got, DefaultTokenLength)
	}

	g.Configure(map[string]any{"tokenLength": -5})
	if got := g.Config().TokenLength; got != DefaultTokenLength {
		t.Fatalf("non-positive value: got %d, want default %d", got, DefaultTokenLength)
	}
}

func TestConfigureEmptyNameFallsBack(t *testing.T) {
	g := New(Config{})
	g.Configure(map[string]any{"bodyField": ""})
	if got := g.Config().BodyField; got != DefaultBodyField {
		t.Fatalf("empty name must reset to default, got %q", got)
	}
}

func TestConfigureIgnoresUnknownKeys(t *testing.T) {
	g := New(Config{})
	g.Configure(map[string]any{"somethingElse": true})
	if cfg := g.Config(); cfg != New(Config{}).Config() {
		t.Fatalf("unknown keys must not change the config: %+v", cfg)
	}
}

func TestConfigureExpandsEnvironment(t *testing.T) {
	t.Setenv("CSRF_TEST_HEADER", "x-app-token")
	t.Setenv("CSRF_TEST_LENGTH", "16")

	g := New(Config{})
	g.Configure(map[string]any{
		"headerName":  "${CSRF_TEST_HEADER}",
		"tokenLength": "${CSRF_TEST_LENGTH}",
	})

	cfg := g.Config()
	if cfg.HeaderName != "x-app-token" {
		t.Fatalf("headerName: got %q, want %q", cfg.HeaderName, "x-app-token")
	}
	if cfg.TokenLength != 16 {
		t.Fatalf("tokenLength: got %d, want 16", cfg.TokenLength)
	}

	// an unset variable leaves the literal, which fails numeric parsing and
	// lands on the default
	g.Configure(map[string]any{"tokenLength": "${CSRF_TEST_LENGTH_UNSET}"})
	if got := g.Config().TokenLength; got != DefaultTokenLength {
		t.Fatalf("unset env numeric: got %d, want default %d", got, DefaultTokenLength)
	}
}

// Simulates a hot-reload notification bumping the token length: new tokens
// pick up the new size, tokens already stored keep theirs.
func TestReconfigureTokenLength(t *testing.T) {
	g := New(Config{})
	before := newMapSession()
	old, err := g.EnsureToken(before)
	if err != nil {
		t.Fatalf("EnsureToken: %v", err)
	}
	if len(old) != 64 {
		t.Fatalf("pre-reload token length: got %d, want 64", len(old))
	}

	g.Configure(map[string]any{"tokenLength": 64})

	after := newMapSession()
	fresh, err := g.EnsureToken(after)
	if err != nil {
		t.Fatalf("EnsureToken: %v", err)
	}
	if len(fresh) != 128 {
		t.Fatalf("post-reload token length: got %d, want 128", len(fresh))
	}

	// the stored token is not retroactively resized
	again, err := g.EnsureToken(before)
	if err != nil {
		t.Fatalf("EnsureToken: %v", err)
	}
	if again != old {
		t.Fatalf("stored token changed after reconfiguration")
	}
}

// The snapshot is replaced whole: readers racing a reconfiguration must see
// either field set entirely, never a mix.
func TestConfigureAtomicSnapshot(t *testing.T) {
	g := New(Config{})
	a := map[string]any{"tokenLength": 16, "headerName": "x-a-token", "bodyField": "_a", "sessionKey": "aToken"}
	b := map[string]any{"tokenLength": 48, "headerName": "x-b-token", "bodyField": "_b", "sessionKey": "bToken"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				g.Configure(a)
			} else {
				g.Configure(b)
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		cfg := g.Config()
		switch cfg.HeaderName {
		case "x-a-token":
			if cfg.TokenLength != 16 || cfg.BodyField != "_a" || cfg.SessionKey != "aToken" {
				t.Fatalf("torn read: %+v", cfg)
			}
		case "x-b-token":
			if cfg.TokenLength != 48 || cfg.BodyField != "_b" || cfg.SessionKey != "bToken" {
				t.Fatalf("torn read: %+v", cfg)
			}
		case DefaultHeaderName:
			// the initial snapshot may still be visible early on
		default:
			t.Fatalf("unexpected header name %q", cfg.HeaderName)
		}
	}
	<-done
}

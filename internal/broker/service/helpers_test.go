package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeEHR serves a SMART configuration, a token endpoint and a FHIR API from
// one httptest server. Handlers may be swapped between requests.
type fakeEHR struct {
	srv *httptest.Server

	mu     sync.Mutex
	config http.HandlerFunc
	token  http.HandlerFunc
	fhir   http.HandlerFunc
	forms  []url.Values

	configCalls atomic.Int32
	tokenCalls  atomic.Int32
	fhirCalls   atomic.Int32
}

func newFakeEHR(t *testing.T) *fakeEHR {
	t.Helper()

	ehr := &fakeEHR{}
	mux := http.NewServeMux()
	mux.HandleFunc("/fhir/.well-known/smart-configuration", func(w http.ResponseWriter, r *http.Request) {
		ehr.configCalls.Add(1)
		ehr.handler(&ehr.config)(w, r)
	})
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		ehr.tokenCalls.Add(1)
		_ = r.ParseForm()
		ehr.mu.Lock()
		ehr.forms = append(ehr.forms, r.PostForm)
		ehr.mu.Unlock()
		ehr.handler(&ehr.token)(w, r)
	})
	mux.HandleFunc("/fhir/", func(w http.ResponseWriter, r *http.Request) {
		ehr.fhirCalls.Add(1)
		ehr.handler(&ehr.fhir)(w, r)
	})

	ehr.srv = httptest.NewServer(mux)
	t.Cleanup(ehr.srv.Close)

	ehr.setConfig(jsonHandler(http.StatusOK, map[string]any{
		"issuer":                 ehr.FHIRBase(),
		"authorization_endpoint": ehr.srv.URL + "/auth/authorize",
		"token_endpoint":         ehr.srv.URL + "/auth/token",
		"jwks_uri":               ehr.srv.URL + "/auth/jwks",
		"capabilities":           []string{"launch-ehr", "client-public"},
	}))
	ehr.setToken(tokenHandler(map[string]any{
		"access_token":  "at-1",
		"refresh_token": "rt-1",
		"token_type":    "Bearer",
		"expires_in":    3600,
		"patient":       "123",
	}))
	ehr.setFHIR(jsonHandler(http.StatusOK, map[string]any{"resourceType": "Bundle", "total": 0}))
	return ehr
}

func (e *fakeEHR) FHIRBase() string { return e.srv.URL + "/fhir" }

func (e *fakeEHR) handler(h *http.HandlerFunc) http.HandlerFunc {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *h
}

func (e *fakeEHR) setConfig(h http.HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = h
}

func (e *fakeEHR) setToken(h http.HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.token = h
}

func (e *fakeEHR) setFHIR(h http.HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fhir = h
}

func (e *fakeEHR) lastForm() url.Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.forms) == 0 {
		return nil
	}
	return e.forms[len(e.forms)-1]
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func tokenHandler(body map[string]any) http.HandlerFunc {
	return jsonHandler(http.StatusOK, body)
}

// unsignedJWT builds an id_token with alg "none".
func unsignedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return raw
}

type harness struct {
	ehr      *fakeEHR
	sessions *memory.Sessions
	http     *Outbound
	authz    *AuthorizeService
	tokens   *TokenService
	fetcher  *FetchService
	manage   *SessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ehr := newFakeEHR(t)
	sessions := memory.NewSessions()
	out := NewOutbound(ehr.srv.Client(), "")

	tokens := &TokenService{Sessions: sessions, HTTP: out}
	return &harness{
		ehr:      ehr,
		sessions: sessions,
		http:     out,
		authz: &AuthorizeService{
			Sessions:  sessions,
			Discovery: &DiscoveryClient{HTTP: out},
			Claims:    &ClaimsExtractor{},
			HTTP:      out,
			Client: ClientConfig{
				ClientID:    "my_web_app",
				RedirectURI: "http://localhost:9001/callback",
				Scope:       "openid fhirUser patient/*.read",
			},
		},
		tokens:  tokens,
		fetcher: &FetchService{Sessions: sessions, Tokens: tokens, HTTP: out},
		manage:  &SessionService{Sessions: sessions},
	}
}

// authenticated stores an authenticated session against the fake EHR.
func (h *harness) authenticated(t *testing.T, mutate func(*domain.Session)) domain.Session {
	t.Helper()

	now := time.Now()
	s := domain.Session{
		ID:             "sess-" + t.Name(),
		FHIRBase:       h.ehr.FHIRBase(),
		AuthEndpoint:   h.ehr.srv.URL + "/auth/authorize",
		TokenEndpoint:  h.ehr.srv.URL + "/auth/token",
		LaunchContext:  "xyz",
		ClientID:       "my_web_app",
		RedirectURI:    "http://localhost:9001/callback",
		Scope:          "openid fhirUser patient/*.read",
		AccessToken:    "at-0",
		RefreshToken:   "rt-0",
		ExpiresAt:      now.Add(time.Hour),
		PatientID:      "123",
		Status:         domain.StatusAuthenticated,
		StateUsed:      true,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if mutate != nil {
		mutate(&s)
	}
	require.NoError(t, h.sessions.Create(context.Background(), s))
	return s
}

// recorder collects values from server handler goroutines.
type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) add(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return ""
	}
	return r.values[len(r.values)-1]
}

// deadURL returns the address of a server that has already shut down, so
// connections to it are refused.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	return addr
}

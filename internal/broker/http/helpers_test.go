package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store/memory"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testFrontendURL = "http://localhost:3002"

// ehrServer fakes the issuer: SMART configuration, token endpoint and FHIR API.
type ehrServer struct {
	srv *httptest.Server

	mu    sync.Mutex
	token http.HandlerFunc
	fhir  http.HandlerFunc

	tokenCalls atomic.Int32
}

func newEHRServer(t *testing.T) *ehrServer {
	t.Helper()

	ehr := &ehrServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fhir/.well-known/smart-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{
			"issuer":                   ehr.FHIRBase(),
			"authorization_endpoint":   ehr.srv.URL + "/auth/authorize",
			"token_endpoint":           ehr.srv.URL + "/auth/token",
			"response_types_supported": []string{"code"},
			"scopes_supported":         []string{"openid", "launch", "patient/*.read"},
		})
	})
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		ehr.tokenCalls.Add(1)
		ehr.get(&ehr.token)(w, r)
	})
	mux.HandleFunc("/fhir/", func(w http.ResponseWriter, r *http.Request) {
		ehr.get(&ehr.fhir)(w, r)
	})
	mux.HandleFunc("/broken/.well-known/smart-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ehr.srv = httptest.NewServer(mux)
	t.Cleanup(ehr.srv.Close)

	ehr.setToken(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"patient":       "123",
		})
	})
	ehr.setFHIR(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{
			"resourceType": "Bundle",
			"total":        1,
			"entry":        []any{map[string]any{"resource": map[string]any{"id": "x"}}},
		})
	})
	return ehr
}

func (e *ehrServer) FHIRBase() string { return e.srv.URL + "/fhir" }

func (e *ehrServer) get(h *http.HandlerFunc) http.HandlerFunc {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *h
}

func (e *ehrServer) setToken(h http.HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.token = h
}

func (e *ehrServer) setFHIR(h http.HandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fhir = h
}

func writeTestJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type testBroker struct {
	ehr      *ehrServer
	sessions *memory.Sessions
	router   *Router
}

func newTestBroker(t *testing.T) *testBroker {
	t.Helper()

	ehr := newEHRServer(t)
	sessions := memory.NewSessions()
	out := service.NewOutbound(ehr.srv.Client(), "")

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg, sessions.Count)

	discovery := &service.DiscoveryClient{HTTP: out}
	tokens := &service.TokenService{Sessions: sessions, HTTP: out, Metrics: metrics}

	// Generous limits so tests never trip them
	limit := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	limits := httpx.RateLimits{Strict: limit, Moderate: limit, Lenient: limit, Public: limit}

	r := NewRouter(testFrontendURL, "test", []string{testFrontendURL}, limits, sessions, reg, slogx.Discard())
	r.Discovery = discovery
	r.AuthorizeService = &service.AuthorizeService{
		Sessions:  sessions,
		Discovery: discovery,
		Claims:    &service.ClaimsExtractor{},
		HTTP:      out,
		Client: service.ClientConfig{
			ClientID:    "my_web_app",
			RedirectURI: "http://localhost:9001/callback",
			Scope:       "openid fhirUser patient/*.read",
		},
		Metrics: metrics,
	}
	r.SessionService = &service.SessionService{Sessions: sessions}
	r.FetchService = &service.FetchService{Sessions: sessions, Tokens: tokens, HTTP: out, Metrics: metrics}
	r.ApplyRoutes()

	return &testBroker{ehr: ehr, sessions: sessions, router: r}
}

// session stores a session against the fake EHR. Unless mutate says
// otherwise it is authenticated with a token valid for an hour.
func (b *testBroker) session(t *testing.T, mutate func(*domain.Session)) domain.Session {
	t.Helper()

	now := time.Now()
	s := domain.Session{
		ID:             "sess-" + strings.ReplaceAll(t.Name(), "/", "-"),
		FHIRBase:       b.ehr.FHIRBase(),
		AuthEndpoint:   b.ehr.srv.URL + "/auth/authorize",
		TokenEndpoint:  b.ehr.srv.URL + "/auth/token",
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
	require.NoError(t, b.sessions.Create(context.Background(), s))
	return s
}

// launched turns s into a session that has not completed the callback yet.
func launched(s *domain.Session) {
	s.Status = domain.StatusLaunched
	s.StateUsed = false
	s.AccessToken = ""
	s.RefreshToken = ""
	s.ExpiresAt = time.Time{}
	s.PatientID = ""
}

func (b *testBroker) do(t *testing.T, method, target string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	return rec
}

func (b *testBroker) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return b.do(t, http.MethodGet, target, nil)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, code, body.Error)
}

// capture holds a value written from a server handler goroutine.
type capture[T any] struct {
	mu sync.Mutex
	v  T
}

func (c *capture[T]) set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

func (c *capture[T]) get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/smartbroker/api/broker" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	frontendURL  string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.RateLimits
	gatherer     prometheus.Gatherer

	sessions         store.Sessions
	Discovery        service.Discoverer
	AuthorizeService *service.AuthorizeService
	SessionService   *service.SessionService
	FetchService     *service.FetchService
}

func NewRouter(
	frontendURL, buildVersion string,
	allowedOrigins []string,
	limits httpx.RateLimits,
	sessions store.Sessions,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		frontendURL:  frontendURL,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		gatherer:     gatherer,
		sessions:     sessions,
	}

	// Logging wraps CORS so rejected preflights are still logged
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLaunch()
	r.registerSessions()
	r.registerContext()
	r.registerResources()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(),
		httpx.RateLimitByIP(r.limits.Public),
	))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SMART on FHIR Broker API
//	@version		0.1.0
//	@description	Backend for a SMART on FHIR web app. Runs the EHR launch and OAuth2 authorization code flow,
//	@description	keeps each session's tokens fresh and fetches FHIR resources on the session's behalf.
//	@description
//	@description	The front-end only ever holds the opaque session id; access and refresh tokens never leave the broker.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/smartbroker
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:9001
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLaunch() {
	h := &LaunchHandler{
		AuthorizeService: r.AuthorizeService,
		FrontendURL:      r.frontendURL,
	}

	// Launch and callback each cost outbound calls - strict rate limit by IP
	r.Mux.Handle("GET /launch",
		httpx.Chain(http.HandlerFunc(h.HandleLaunch),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("GET /callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	r.Mux.Handle("GET /test-smart-config",
		httpx.Chain(&SmartConfigHandler{Discovery: r.Discovery},
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) sessionHandler() *SessionHandler {
	return &SessionHandler{
		SessionService: r.SessionService,
		FrontendURL:    r.frontendURL,
	}
}

func (r *Router) registerSessions() {
	h := r.sessionHandler()

	// Polled by the front-end - lenient rate limit per session
	r.Mux.Handle("GET /session/status/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitBySession(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /session/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleInfo),
			httpx.RateLimitBySession(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /sessions",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)

	r.Mux.Handle("DELETE /session/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
}

func (r *Router) registerContext() {
	h := r.sessionHandler()

	r.Mux.Handle("GET /reauth-required/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleReauthRequired),
			httpx.RateLimitBySession(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /context-discovery/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleContextDiscovery),
			httpx.RateLimitBySession(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /patient-select/{id}",
		httpx.Chain(http.HandlerFunc(h.HandlePatientSelect),
			httpx.RateLimitBySession(r.limits.Lenient),
		),
	)

	r.Mux.Handle("POST /set-patient/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleSetPatient),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
	r.Mux.Handle("POST /clear-reauth/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleClearReauth),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
}

func (r *Router) registerResources() {
	h := &ResourceHandler{FetchService: r.FetchService}

	// Every call fans out to the FHIR server - moderate rate limit per session
	r.Mux.Handle("GET /patient-data/{id}",
		httpx.Chain(http.HandlerFunc(h.HandlePatientData),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /fhir-resource/{id}/{type}",
		httpx.Chain(http.HandlerFunc(h.HandleResource),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /fhir-search/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			httpx.RateLimitBySession(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}",
		httpx.Chain(http.HandlerFunc(RootHandler),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)

	// Health check endpoints - public rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.sessions),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}),
				httpx.RateLimitByIP(r.limits.Public),
			),
		)
	}
}

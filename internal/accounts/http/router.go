package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 4 << 10

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	RegistrationService *service.RegistrationService
	Attempts            *service.AttemptRegistry
	PassService         *service.PassService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerLogin()
	r.registerHome()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Username and password login completed by an SMS verification code.
//	@description
//	@description				An approved login returns a short-lived EdDSA-signed pass for the home endpoints.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Home pass. Format: "Bearer {pass}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &RegisterHandler{RegistrationService: r.RegistrationService}
	r.Mux.Handle("POST /v1/register", h)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		Attempts:    r.Attempts,
		PassService: r.PassService,
	}

	r.Mux.Handle("POST /v1/login", http.HandlerFunc(h.HandleStart))
	r.Mux.Handle("POST /v1/login/{id}/verify", http.HandlerFunc(h.HandleVerify))
	r.Mux.Handle("DELETE /v1/login/{id}", http.HandlerFunc(h.HandleCancel))
}

func (r *Router) registerHome() {
	h := &HomeHandler{PassService: r.PassService}

	r.Mux.Handle("GET /v1/home",
		httpx.Chain(http.HandlerFunc(h.HandleHome),
			httpx.AuthnMiddleware(r.PassService),
		),
	)
	r.Mux.Handle("POST /v1/signout",
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			httpx.AuthnMiddleware(r.PassService),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.PassService))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.PassService))
}

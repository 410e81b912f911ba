package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/internal/auth/store"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/jwtx"
	"github.com/fairworkhq/payday/pkg/slogx"

	_ "github.com/fairworkhq/payday/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	LoginService *service.LoginService
	MFAService   *service.MFAService
}

func NewRouter(
	signer *jwtx.Signer,
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerEnrollment()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Payday Authentication Service API
//	@version		0.1.0
//	@description	Multi-factor authentication for Payday payroll administrator accounts: password
//	@description	login, authenticator-app and email-code second factors, single-use backup codes.
//	@description
//	@description				Session tokens are Ed25519-signed JWTs with embedded expiry.
//
//	@contact.name				Fairwork Engineering
//	@contact.url				https://github.com/fairworkhq/payday
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
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	loginHandler := &LoginHandler{LoginService: r.LoginService}
	verifyHandler := &VerifyHandler{LoginService: r.LoginService}

	// POST /login - strict rate limit by IP (password guessing)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /mfa/verify - strict rate limit by IP (code guessing; the ticket
	// attempt budget limits per-ticket guesses on top)
	r.Mux.Handle("POST /v1/auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(verifyHandler.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /mfa/challenge/email - strict rate limit by IP (email sending)
	r.Mux.Handle("POST /v1/auth/mfa/challenge/email",
		httpx.Chain(http.HandlerFunc(verifyHandler.HandleEmailChallenge),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerEnrollment() {
	setupHandler := &SetupHandler{MFAService: r.MFAService}
	emailHandler := &EmailSetupHandler{MFAService: r.MFAService}
	disableHandler := &DisableHandler{MFAService: r.MFAService}
	backupHandler := &BackupCodesHandler{MFAService: r.MFAService}

	// POST /mfa/setup - moderate rate limit by account
	r.Mux.Handle("POST /v1/auth/mfa/setup",
		httpx.Chain(http.HandlerFunc(setupHandler.HandleBegin),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// POST /mfa/setup/verify - strict rate limit by account (code guessing)
	r.Mux.Handle("POST /v1/auth/mfa/setup/verify",
		httpx.Chain(http.HandlerFunc(setupHandler.HandleConfirm),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)

	// POST /mfa/email/setup - strict rate limit by account (email sending)
	r.Mux.Handle("POST /v1/auth/mfa/email/setup",
		httpx.Chain(http.HandlerFunc(emailHandler.HandleSend),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)

	// POST /mfa/email/verify - strict rate limit by account (code guessing)
	r.Mux.Handle("POST /v1/auth/mfa/email/verify",
		httpx.Chain(http.HandlerFunc(emailHandler.HandleConfirm),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)

	// POST /mfa/disable - strict rate limit by account (password guessing)
	r.Mux.Handle("POST /v1/auth/mfa/disable",
		httpx.Chain(http.HandlerFunc(disableHandler.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)

	// POST /mfa/backup-codes/regenerate - moderate rate limit by account
	r.Mux.Handle("POST /v1/auth/mfa/backup-codes/regenerate",
		httpx.Chain(http.HandlerFunc(backupHandler.HandleRegenerate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems poll)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"

	_ "github.com/aussiebroadwan/tenancy/api/tenancy" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	denylist     store.Denylist

	// Cookie controls the session cookie attributes.
	Cookie CookieConfig

	Sessions          *service.SessionIssuer
	AuthService       *service.AuthService
	UserService       *service.UserService
	MFAService        *service.MFAService
	CompanyService    *service.CompanyService
	MembershipService *service.MembershipService
	InviteService     *service.InviteService
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	denylist store.Denylist,
	logger *slog.Logger,
	corsOrigins ...string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		denylist:     denylist,
		logger:       logger,
		Cookie:       CookieConfig{Name: "token", TTL: jwtx.DefaultSessionTTL},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins...),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerProfile()
	r.registerCompanies()
	r.registerInvites()
	r.registerMembers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenancy Service API
//	@version		0.1.0
//	@description	Multi-tenant company membership: accounts, companies, roles and email invites.
//	@description
//	@description				Sessions are EdDSA-signed JWTs carried in the "token" cookie or a bearer header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tenancy
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
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed chains the mandatory session check with a per-user limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		RequireSession(r.Sessions, r.Cookie.Name),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:   r.AuthService,
		InviteService: r.InviteService,
		Cookie:        r.Cookie,
	}

	// Credential checks - strict rate limit by IP
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))

	// Logout works with or without a valid session
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			OptionalSession(r.Sessions, r.Cookie.Name),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	me := r.authed(h.HandleMe, httpx.LenientLimit)
	r.Mux.Handle("GET /auth/me", me)
	r.Mux.Handle("POST /auth/me", me)

	// Accept serves both anonymous and signed-in callers
	r.Mux.Handle("POST /auth/accept-invite",
		httpx.Chain(http.HandlerFunc(h.HandleAcceptInvite),
			OptionalSession(r.Sessions, r.Cookie.Name),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /auth/mfa/enroll", r.authed(h.HandleEnroll, httpx.ModerateLimit))
	// Code checks - strict to slow down guessing
	r.Mux.Handle("POST /auth/mfa/confirm", r.authed(h.HandleConfirm, httpx.StrictLimit))
	r.Mux.Handle("DELETE /auth/mfa", r.authed(h.HandleDisable, httpx.StrictLimit))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{UserService: r.UserService}

	r.Mux.Handle("GET /profile", r.authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /profile", r.authed(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /password", r.authed(h.HandleChangePassword, httpx.StrictLimit))
}

func (r *Router) registerCompanies() {
	h := &CompanyHandler{
		CompanyService:    r.CompanyService,
		MembershipService: r.MembershipService,
		Sessions:          r.Sessions,
		Cookie:            r.Cookie,
	}

	r.Mux.Handle("POST /company", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /companies", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /company/{id}", r.authed(h.HandleGet, httpx.LenientLimit))

	update := r.authed(h.HandleUpdate, httpx.ModerateLimit)
	r.Mux.Handle("PATCH /company/{id}", update)
	r.Mux.Handle("PUT /company/{id}", update)

	r.Mux.Handle("POST /company/{id}/select", r.authed(h.HandleSelect, httpx.ModerateLimit))
}

func (r *Router) registerInvites() {
	h := &InviteHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /company/{id}/invite", r.authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /company/{id}/invites", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("DELETE /company/{companyId}/invite/{inviteId}", r.authed(h.HandleCancel, httpx.ModerateLimit))

	// Public lookup by token - moderate by IP, tokens are unguessable
	r.Mux.Handle("GET /invite/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate), httpx.RateLimitByIP(httpx.ModerateLimit)))
}

func (r *Router) registerMembers() {
	h := &MemberHandler{MembershipService: r.MembershipService}

	r.Mux.Handle("PATCH /company/{companyId}/member/{memberId}", r.authed(h.HandleUpdateRole, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /company/{companyId}/member/{memberId}", r.authed(h.HandleRemove, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.denylist, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

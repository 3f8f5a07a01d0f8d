package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/service"
	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	LoginService       *service.LoginService
	EntitlementService *service.EntitlementService
	LinkService        *service.LinkService
	RecordsService     *service.RecordsService
	AdminService       *service.AdminService
	Reconciler         *service.Reconciler

	// AdminPhone receives the prefilled activation-request message.
	AdminPhone string
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
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
	r.registerSession()
	r.registerPlan()
	r.registerLink()
	r.registerRecords()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	loginHandler := &LoginHandler{
		LoginService: r.LoginService,
		Reconciler:   r.Reconciler,
	}

	// POST /login - strict limit keyed by IP + phone to slow enumeration
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "phone"),
		),
	)

	sessionHandler := &SessionHandler{
		LoginService: r.LoginService,
		Reconciler:   r.Reconciler,
	}
	r.Mux.Handle("GET /v1/session",
		httpx.Chain(sessionHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	logoutHandler := &LogoutHandler{LoginService: r.LoginService}
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPlan() {
	planHandler := &PlanHandler{
		LoginService:       r.LoginService,
		EntitlementService: r.EntitlementService,
		Reconciler:         r.Reconciler,
		AdminPhone:         r.AdminPhone,
	}

	r.Mux.Handle("GET /v1/plan",
		httpx.Chain(http.HandlerFunc(planHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/plan/request",
		httpx.Chain(http.HandlerFunc(planHandler.HandleRequest),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Activation-code attempts are credential guesses; strict limit.
	r.Mux.Handle("POST /v1/plan/activate",
		httpx.Chain(http.HandlerFunc(planHandler.HandleActivate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/plan/sync",
		httpx.Chain(http.HandlerFunc(planHandler.HandleSync),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	profileHandler := &ProfileHandler{LoginService: r.LoginService, Store: r.store}
	if r.Reconciler != nil {
		profileHandler.Authority = r.Reconciler.Authority
	}
	r.Mux.Handle("PUT /v1/profile",
		httpx.Chain(profileHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLink() {
	h := &LinkHandler{
		LoginService: r.LoginService,
		LinkService:  r.LinkService,
	}

	r.Mux.Handle("PUT /v1/link/code",
		httpx.Chain(http.HandlerFunc(h.HandleSetCode),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/link/join-url",
		httpx.Chain(http.HandlerFunc(h.HandleJoinURL),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Code redemption is effectively a credential; strict limit by IP.
	r.Mux.Handle("POST /v1/link/redeem",
		httpx.Chain(http.HandlerFunc(h.HandleRedeem),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/link/prepopulate",
		httpx.Chain(http.HandlerFunc(h.HandlePrepopulate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRecords() {
	h := &RecordsHandler{
		LoginService:   r.LoginService,
		RecordsService: r.RecordsService,
	}

	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.LenientLimit))
	}
	write := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.ModerateLimit))
	}

	r.Mux.Handle("GET /v1/students", read(h.HandleListStudents))
	r.Mux.Handle("POST /v1/students", write(h.HandleAddStudent))
	r.Mux.Handle("PUT /v1/students/{id}", write(h.HandleUpdateStudent))
	r.Mux.Handle("DELETE /v1/students/{id}", write(h.HandleDeleteStudent))

	r.Mux.Handle("GET /v1/attendance", read(h.HandleListAttendance))
	r.Mux.Handle("POST /v1/attendance", write(h.HandleRecordAttendance))

	r.Mux.Handle("GET /v1/exams", read(h.HandleListExams))
	r.Mux.Handle("POST /v1/exams", write(h.HandleAddExam))

	r.Mux.Handle("GET /v1/receipts", read(h.HandleListReceipts))
	r.Mux.Handle("POST /v1/receipts", write(h.HandleAddReceipt))

	r.Mux.Handle("GET /v1/expenses", read(h.HandleListExpenses))
	r.Mux.Handle("POST /v1/expenses", write(h.HandleAddExpense))
	r.Mux.Handle("DELETE /v1/expenses/{id}", write(h.HandleDeleteExpense))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		LoginService:       r.LoginService,
		AdminService:       r.AdminService,
		EntitlementService: r.EntitlementService,
		Reconciler:         r.Reconciler,
	}

	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.LenientLimit))
	}
	write := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(httpx.ModerateLimit))
	}

	r.Mux.Handle("GET /v1/admin/stats", read(h.HandleStats))
	r.Mux.Handle("POST /v1/admin/sync", write(h.HandleSync))
	r.Mux.Handle("GET /v1/admin/owners", read(h.HandleListOwners))
	r.Mux.Handle("GET /v1/admin/requests", read(h.HandleListRequests))
	r.Mux.Handle("POST /v1/admin/requests/{id}/accept", write(h.HandleAccept))
	r.Mux.Handle("POST /v1/admin/requests/{id}/decline", write(h.HandleDecline))
	r.Mux.Handle("POST /v1/admin/owners/{phone}/pause", write(h.HandlePause))
	r.Mux.Handle("POST /v1/admin/owners/{phone}/cancel", write(h.HandleCancel))
	r.Mux.Handle("DELETE /v1/admin/owners/{phone}", write(h.HandleDeleteTenant))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.buildVersion, r.startTime),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/whytehoux-projecty/MIS/internal/security"
	"github.com/whytehoux-projecty/MIS/internal/service"
	"github.com/whytehoux-projecty/MIS/internal/storage"
)

type RouterDeps struct {
	Interests   service.InterestService
	Invitations service.InvitationService
	Approver    service.ApproverService
	QRLogin     service.QRLoginService
	Sessions    service.SessionService
	Files       storage.FileStore
	Tokens      security.TokenManager

	// Nil disables rate limiting.
	Redis         *redis.Client
	MaxFileSizeMB int64
}

func NewRouter(deps RouterDeps) *mux.Router {
	interest := NewInterestHandler(deps.Interests)
	admin := NewAdminHandler(deps.Interests, deps.Approver)
	register := NewRegisterHandler(deps.Invitations, deps.Approver)
	qrAuth := NewQRAuthHandler(deps.QRLogin, deps.Sessions)
	upload := NewUploadHandler(deps.Files, deps.MaxFileSizeMB)

	// Public submission and redemption routes share one bucket per client IP:
	// 10 requests, refilling one every 6 seconds.
	limiter := NewRateLimiter(deps.Redis, "mis:ratelimit", 10, 6*time.Second)

	r := mux.NewRouter()
	r.Use(RequestLogging)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public applicant routes
	public := r.NewRoute().Subrouter()
	public.Use(limiter.Middleware)
	public.HandleFunc("/interest", interest.Submit).Methods("POST")
	public.HandleFunc("/interest/status", interest.Status).Methods("GET")
	public.HandleFunc("/interest/{id:[0-9]+}/respond-info", interest.RespondInfo).Methods("POST")

	// Registration flow
	public.HandleFunc("/register/verify", register.Verify).Methods("POST")
	public.HandleFunc("/register/open-link", register.OpenLink).Methods("POST")
	public.HandleFunc("/register/complete", register.Complete).Methods("POST")
	public.HandleFunc("/register/activate", register.Activate).Methods("POST")

	// Cross-device login
	public.HandleFunc("/auth/qr/generate", qrAuth.Generate).Methods("POST")
	public.HandleFunc("/auth/qr/scan", qrAuth.Scan).Methods("POST")
	public.HandleFunc("/auth/pin/verify", qrAuth.VerifyPin).Methods("POST")
	public.HandleFunc("/auth/session", qrAuth.Session).Methods("GET")
	public.HandleFunc("/auth/logout", qrAuth.Logout).Methods("POST")

	// Document uploads
	public.HandleFunc("/files", upload.Upload).Methods("POST")

	// Admin routes
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(AdminAuth(deps.Tokens))
	adminRouter.HandleFunc("/invite", admin.Invite).Methods("POST")
	adminRouter.HandleFunc("/interest", admin.List).Methods("GET")
	adminRouter.HandleFunc("/interest/stats", admin.Stats).Methods("GET")
	adminRouter.HandleFunc("/interest/{id:[0-9]+}", admin.Get).Methods("GET")
	adminRouter.HandleFunc("/interest/{id:[0-9]+}/approve", admin.Approve).Methods("POST")
	adminRouter.HandleFunc("/interest/{id:[0-9]+}/reject", admin.Reject).Methods("POST")
	adminRouter.HandleFunc("/interest/{id:[0-9]+}/request-info", admin.RequestInfo).Methods("POST")

	return r
}

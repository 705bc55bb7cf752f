package httpserver

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"amoria/internal/config"
	"amoria/internal/domain"
	"amoria/internal/security"
	"amoria/internal/service"
	"amoria/internal/store/postgres"
	"amoria/internal/store/sqlite"
	"amoria/internal/ws"
)

// NewRouter constructs the main HTTP router and wires repositories,
// services, and middleware. The store backend is selected by
// cfg.DatabaseDriver; everything above the repository interfaces is
// backend-agnostic.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	hub *ws.Hub,
	tokens *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	var (
		userRepo    domain.UserRepository
		profileRepo domain.ProfileRepository
		msgRepo     domain.MessageRepository
		blockRepo   domain.BlockRepository
		matchRepo   domain.MatchRepository
		reportRepo  domain.ReportRepository
	)
	if cfg.DatabaseDriver == "postgres" {
		userRepo = postgres.NewUserRepo(db)
		profileRepo = postgres.NewProfileRepo(db)
		msgRepo = postgres.NewMessageRepo(db)
		blockRepo = postgres.NewBlockRepo(db)
		matchRepo = postgres.NewMatchRepo(db)
		reportRepo = postgres.NewReportRepo(db)
	} else {
		userRepo = sqlite.NewUserRepo(db)
		profileRepo = sqlite.NewProfileRepo(db)
		msgRepo = sqlite.NewMessageRepo(db)
		blockRepo = sqlite.NewBlockRepo(db)
		matchRepo = sqlite.NewMatchRepo(db)
		reportRepo = sqlite.NewReportRepo(db)
	}

	// Services
	authSvc := service.NewAuthService(userRepo, profileRepo, tokens, passwordHasher)
	profileSvc := service.NewProfileService(profileRepo, userRepo, blockRepo)
	discoverySvc := service.NewDiscoveryService(profileRepo, blockRepo)
	matchSvc := service.NewMatchService(matchRepo, blockRepo, userRepo, profileRepo)
	blockSvc := service.NewBlockService(blockRepo, matchRepo, userRepo)
	reportSvc := service.NewReportService(reportRepo, userRepo)
	userSvc := service.NewUserService(userRepo)
	chatSvc := service.NewChatService(msgRepo, blockRepo, userRepo, encryptor, cfg.MaxMessageChars, cfg.HistoryPageLimit)

	dispatcher := ws.NewDispatcher(hub, chatSvc, log)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": cfg.AppName, "version": "1.0.0"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, 15*time.Minute))

		// Auth routes (no auth required). Credential endpoints get a much
		// tighter per-IP budget than the rest of the API.
		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(5, 15*time.Minute))
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens, userRepo))

			r.Get("/auth/me", handleMe())

			// Own profile
			r.Route("/profile", func(r chi.Router) {
				r.Get("/", handleGetProfile(profileSvc))
				r.Put("/", handleUpdateProfile(profileSvc))
				r.Patch("/", handleUpdateProfile(profileSvc))
				r.Put("/location", handleUpdateLocation(profileSvc))
			})

			// Other users
			r.Get("/users/{userID}", handleGetUser(profileSvc))
			r.Get("/discovery/nearby", handleNearby(discoverySvc))

			// Matches
			r.Route("/matches", func(r chi.Router) {
				r.Post("/", handleCreateMatch(matchSvc))
				r.Get("/", handleListMatches(matchSvc))
			})

			// Blocks
			r.Route("/blocks", func(r chi.Router) {
				r.Post("/", handleCreateBlock(blockSvc))
				r.Get("/", handleListBlocks(blockSvc))
				r.Delete("/{userID}", handleDeleteBlock(blockSvc))
			})

			r.Post("/reports", handleCreateReport(reportSvc))

			// Conversations and messages. Sends are throttled per account
			// so one chatty connection cannot flood the store.
			messageLimiter := httprate.Limit(20, time.Minute,
				httprate.WithKeyFuncs(limitKeyByUser))
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", handleListConversations(chatSvc))
				r.Get("/{partnerID}/messages", handleListMessages(chatSvc))
				r.With(messageLimiter).Post("/{partnerID}/messages", handleCreateMessage(chatSvc, dispatcher))
				r.Post("/{partnerID}/seen", handleMarkConversationSeen(chatSvc))
			})
			r.Post("/messages/{messageID}/seen", handleMarkMessageSeen(chatSvc, dispatcher))

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/users", handleAdminListUsers(userSvc))
				r.Post("/users/{userID}/suspend", handleAdminSuspendUser(userSvc))
				r.Post("/users/{userID}/reinstate", handleAdminReinstateUser(userSvc))
				r.Get("/reports", handleAdminListReports(reportSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, dispatcher, tokens, userRepo, cfg.CORSOrigins, log))

	return r
}

// limitKeyByUser buckets rate limits by the authenticated account, falling
// back to the client IP before auth has run.
func limitKeyByUser(r *http.Request) (string, error) {
	if user := CurrentUser(r); user != nil {
		return strconv.FormatInt(user.ID, 10), nil
	}
	return httprate.KeyByIP(r)
}

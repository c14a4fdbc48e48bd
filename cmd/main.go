package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/app"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/config"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/controllers"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/middleware"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/repositories"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/services"
	"github.com/Lmrocio/DAW2-Proyecto-intermodular/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	tokenService := services.NewTokenService(cfg)
	blacklist := newBlacklist(cfg)
	authService := services.NewAuthService(userRepo, tokenService, blacklist, cfg)
	blacklistCleanupService := services.NewBlacklistCleanupService(blacklist)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(authService)
	userController := controllers.NewUserController(userRepo)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	// /api — every request passes the authentication gateway first; the
	// gateway never rejects, endpoint-level authorization does.
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.Authenticate(tokenService, blacklist, userRepo))

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authController.Register).Methods("POST")
	authRouter.HandleFunc("/login", authController.Login).Methods("POST")
	authRouter.HandleFunc("/me", authController.Me).Methods("GET")
	authRouter.HandleFunc("/logout", authController.Logout).Methods("POST")
	authRouter.HandleFunc("/refresh", authController.Refresh).Methods("POST")
	authRouter.HandleFunc("/validate", authController.Validate).Methods("GET")

	// Admin-only directory endpoints
	usersRouter := apiRouter.PathPrefix("/users").Subrouter()
	usersRouter.Use(middleware.RequireAdmin)
	usersRouter.HandleFunc("", userController.ListUsers).Methods("GET")
	usersRouter.HandleFunc("/{id}", userController.DeactivateUser).Methods("DELETE")

	//----------------------------------------------------------------------
	// Setup daily blacklist sweep via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc("15 3 * * *", func() {
		if e := blacklistCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled blacklist sweep failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule blacklist sweep job")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}

// newBlacklist selects the revocation registry backend. The memory
// backend is process-local; redis shares revocations across instances.
func newBlacklist(cfg *config.Config) services.TokenBlacklist {
	if cfg.BlacklistBackend != config.BlacklistBackendRedis {
		return services.NewMemoryBlacklist()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid REDIS_URL")
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to connect to redis")
	}

	utils.Logger.Info("Using redis-backed token blacklist")
	return services.NewRedisBlacklist(rdb)
}

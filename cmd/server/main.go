package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindclaire/internal/api"
	"mindclaire/internal/app/service"
	"mindclaire/internal/common/security"
	"mindclaire/internal/domain/repository"
	"mindclaire/internal/platform/cache"
	"mindclaire/internal/platform/config"
	"mindclaire/internal/platform/database"
	"mindclaire/internal/platform/mail"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Load Configuration
	cfg := config.Load()
	logger.Info("configuration loaded")

	// 2. Initialize Token Authority
	tokens := security.NewTokenAuthority(cfg.JWTSecret, cfg.SessionTTL)

	// 3. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// 4. Initialize Redis (session revocation list)
	rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// 5. Initialize Mailer
	var mailer mail.Mailer
	if cfg.PostmarkServerToken != "" {
		mailer, err = mail.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail, cfg.BaseURL)
		if err != nil {
			logger.Error("mailer setup failed", "error", err)
			os.Exit(1)
		}
		logger.Info("postmark mailer configured")
	} else {
		mailer = mail.NewLogMailer(cfg.BaseURL, logger)
		logger.Info("no postmark token set, mail goes to the log")
	}

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	sessionRepo := repository.NewRedisSessionRepository(rdb)
	categoryRepo := repository.NewPgCategoryRepository(db)
	blogRepo := repository.NewPgBlogRepository(db)
	commentRepo := repository.NewPgCommentRepository(db)
	likeRepo := repository.NewPgLikeRepository(db)

	// 7. Initialize Services
	authService := service.NewAuthService(
		userRepo, sessionRepo, tokens, mailer, logger,
		cfg.ActionTokenTTL, cfg.PasswordMinLen, cfg.MailTimeout,
	)
	categoryService := service.NewCategoryService(categoryRepo)
	blogService := service.NewBlogService(blogRepo, categoryRepo)
	commentService := service.NewCommentService(commentRepo, blogRepo)
	likeService := service.NewLikeService(likeRepo, blogRepo, commentRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.RouterDeps{
		AuthService:     authService,
		BlogService:     blogService,
		CategoryService: categoryService,
		CommentService:  commentService,
		LikeService:     likeService,
		Tokens:          tokens,
		CookieSecure:    cfg.CookieSecure,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

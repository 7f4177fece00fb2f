package api

import (
	"net/http"
	"time"

	"mindclaire/internal/api/handler"
	"mindclaire/internal/api/middleware"
	"mindclaire/internal/app/service"
	"mindclaire/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type RouterDeps struct {
	AuthService     *service.AuthService
	BlogService     *service.BlogService
	CategoryService *service.CategoryService
	CommentService  *service.CommentService
	LikeService     *service.LikeService
	Tokens          *security.TokenAuthority
	CookieSecure    bool
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the session token from "Authorization: Bearer T" or the jwt
	// cookie and puts the parsed claims in the request context. Routes stay
	// public until the Authenticator gate is applied.
	r.Use(jwtauth.Verifier(deps.Tokens.JWTAuth()))

	authn := middleware.Authenticator(deps.AuthService)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService, deps.CookieSecure, deps.Tokens.TTL())
		v1.Route("/users", func(users chi.Router) {
			authHandler.RegisterPublicRoutes(users)
			users.Group(func(protected chi.Router) {
				protected.Use(authn)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		categoryHandler := handler.NewCategoryHandler(deps.CategoryService)
		v1.Route("/categories", func(categories chi.Router) {
			categoryHandler.RegisterRoutes(categories, authn)
		})

		blogHandler := handler.NewBlogHandler(deps.BlogService, deps.CommentService, deps.LikeService)
		v1.Route("/blogs", func(blogs chi.Router) {
			blogHandler.RegisterRoutes(blogs, authn)
		})

		commentHandler := handler.NewCommentHandler(deps.CommentService, deps.LikeService)
		v1.Route("/comments", func(comments chi.Router) {
			commentHandler.RegisterRoutes(comments, authn)
		})
	})

	return r
}

// Package account wires the account-facing HTTP surface: profile, API
// tokens, account linking, and session login.
package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhub-dev/accountd/internal/apitoken"
	"github.com/streamhub-dev/accountd/internal/authlink"
	"github.com/streamhub-dev/accountd/internal/config"
	"github.com/streamhub-dev/accountd/internal/http/api/account/handlers"
	"github.com/streamhub-dev/accountd/internal/models"
	"github.com/streamhub-dev/accountd/internal/profile"
	"github.com/streamhub-dev/accountd/internal/ratelimit"
	"github.com/streamhub-dev/accountd/internal/session"
	"github.com/streamhub-dev/accountd/internal/subscription"
	"gorm.io/gorm"
)

// Options bundles the configuration the account routes need.
type Options struct {
	JWT       config.JWTConfig
	Profile   config.ProfileConfig
	Providers map[string]config.ProviderConfig
	RateLimit config.RateLimitConfig
}

// RegisterAccountRoutes registers account routes, middleware, and handlers.
func RegisterAccountRoutes(r *gin.Engine, db *gorm.DB, sessions *session.Manager, opts Options) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	subs := subscription.NewService(db)
	profiles := profile.NewService(db, opts.Profile, sessions, subs)
	tokens := apitoken.NewService(db, opts.Profile.AuthTokenLimit)
	links := authlink.NewService(db, authlink.NewRegistry(opts.Providers), sessions)
	limiter := ratelimit.NewManager(func() config.RateLimitConfig { return opts.RateLimit }, nil, nil)

	group := r.Group("/v0")

	authHandler := handlers.NewAuthHandler(db, opts.JWT)
	group.POST("/login", authHandler.Login)

	authed := group.Group("")
	authed.Use(sessionAuthMiddleware(db, opts.JWT, sessions))
	authed.Use(rateLimitMiddleware(limiter))

	profileHandler := handlers.NewProfileHandler(profiles, links, tokens)
	authed.GET("/profile/info", profileHandler.Info)
	authed.GET("/profile", profileHandler.Get)
	authed.POST("/profile", profileHandler.Update)
	authed.GET("/profile/authentication", profileHandler.Authentication)

	tokenHandler := handlers.NewTokenHandler(tokens)
	authed.GET("/profile/authtokens", tokenHandler.List)
	authed.POST("/profile/authtokens", tokenHandler.Create)
	authed.DELETE("/profile/authtokens/:token", tokenHandler.Revoke)

	connectHandler := handlers.NewConnectHandler(links)
	authed.GET("/profile/connect/:provider", connectHandler.Connect)
}

// sessionAuthMiddleware validates session JWTs and loads the session
// credentials into the request context. Sessions flagged stale after a
// username change are refreshed from the database.
func sessionAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := session.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		creds := session.CredentialsFromClaims(claims)

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, creds.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active || user.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}
		if sessions.ConsumeStale(user.ID) || !strings.EqualFold(creds.Username, user.Username) {
			creds.Username = user.Username
		}

		c.Set(handlers.CredentialsContextKey, creds)
		c.Next()
	}
}

// rateLimitMiddleware enforces the per-user request rate limit.
func rateLimitMiddleware(limiter *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.UserKey(handlers.UserIDFromContext(c))
		result, errAllow := limiter.Allow(c.Request.Context(), key)
		if errAllow != nil {
			// The limiter degrades internally; an error here means even
			// the memory backend failed, so let the request through.
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

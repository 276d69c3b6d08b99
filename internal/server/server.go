// Package server assembles the HTTP surface.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/auth"
	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/config"
	"github.com/agenthub/agenthub/internal/handlers"
	"github.com/agenthub/agenthub/internal/metrics"
	"github.com/agenthub/agenthub/internal/services"
)

// Server wires services and handlers into a gin engine. All dependencies
// are constructed explicitly and injected; nothing holds global state.
type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *gin.Engine
}

// New builds the server. The cache may be nil; every operation remains
// correct without it.
func New(cfg *config.Config, db *gorm.DB, c *cache.Cache, responder services.Responder, log zerolog.Logger) *Server {
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, cfg.RefreshTokenTTL)

	accounts := services.NewAccounts(db, tokens, log)
	agents := services.NewAgents(db, c, log)
	conversations := services.NewConversations(db, c, responder, log)
	embed := services.NewEmbed(db, c, conversations, log)
	templates := services.NewTemplates(db, c, agents, log)
	plugins := services.NewPlugins(db, c, log)
	health := services.NewHealth(db, c, cfg.Environment)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handlers.CORS())
	engine.Use(handlers.RequestLogger(log))
	engine.Use(handlers.Metrics(m))
	engine.Use(handlers.Errors(log, cfg.Development()))
	engine.NoRoute(handlers.NotFound)

	authHandler := handlers.NewAuthHandler(accounts)
	userHandler := handlers.NewUserHandler(accounts)
	agentHandler := handlers.NewAgentHandler(agents)
	conversationHandler := handlers.NewConversationHandler(conversations)
	embedHandler := handlers.NewEmbedHandler(embed)
	templateHandler := handlers.NewTemplateHandler(templates)
	pluginHandler := handlers.NewPluginHandler(plugins)
	healthHandler := handlers.NewHealthHandler(health)

	requireAuth := handlers.Authenticate(tokens, accounts)

	api := engine.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.GET("/me", requireAuth, authHandler.Me)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
		}

		agentRoutes := api.Group("/agents", requireAuth)
		{
			agentRoutes.GET("", agentHandler.List)
			agentRoutes.POST("", agentHandler.Create)
			agentRoutes.GET("/:id", agentHandler.Get)
			agentRoutes.PUT("/:id", agentHandler.Update)
			agentRoutes.DELETE("/:id", agentHandler.Delete)
			agentRoutes.POST("/:id/share-token", agentHandler.ShareToken)
		}

		conversationRoutes := api.Group("/conversations", requireAuth)
		{
			conversationRoutes.GET("", conversationHandler.List)
			conversationRoutes.POST("", conversationHandler.Create)
			conversationRoutes.GET("/:id", conversationHandler.Get)
			conversationRoutes.DELETE("/:id", conversationHandler.Delete)
			conversationRoutes.GET("/:id/messages", conversationHandler.ListMessages)
			conversationRoutes.POST("/:id/messages", conversationHandler.SendMessage)
		}

		templateRoutes := api.Group("/templates")
		{
			templateRoutes.GET("", templateHandler.List)
			templateRoutes.GET("/:id", templateHandler.Get)
			templateRoutes.POST("/:id/agents", requireAuth, templateHandler.Instantiate)
		}

		pluginRoutes := api.Group("/plugins")
		{
			pluginRoutes.GET("", pluginHandler.List)
			pluginRoutes.GET("/:id", pluginHandler.Get)
		}
	}

	embedRoutes := engine.Group("/embed", handlers.RateLimit(cfg.EmbedRateLimit, cfg.EmbedRateBurst))
	{
		embedRoutes.GET("/agent/:shareToken", embedHandler.GetAgent)
		embedRoutes.POST("/conversations", embedHandler.CreateConversation)
		embedRoutes.GET("/conversations/:conversationId/messages", embedHandler.ListMessages)
		embedRoutes.POST("/conversations/:conversationId/messages", embedHandler.SendMessage)
	}

	engine.GET("/health", healthHandler.Check)
	engine.GET("/health/ready", healthHandler.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{cfg: cfg, log: log, engine: engine}
}

// Engine returns the underlying gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

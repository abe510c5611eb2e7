// Package router 提供 HTTP 路由配置
package router

import (
	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/interfaces/http/handler"
	"arxiv-digest-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Flashcard *handler.FlashcardHandler
	MindMap   *handler.MindMapHandler
	Ask       *handler.AskHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// 生成类端点限流
	rateLimit := middleware.RateLimit(r.cfg.Security.RateLimit, r.limiter)

	v1 := r.engine.Group("/v1")
	{
		// 闪卡路由
		flashcards := v1.Group("/flashcards")
		{
			flashcards.GET("", rateLimit, r.handlers.Flashcard.List)
			flashcards.DELETE("/expired", r.handlers.Flashcard.CleanupExpired)
		}

		// 论文路由
		papers := v1.Group("/papers")
		{
			papers.GET("/:arxiv_id/mindmap", rateLimit, r.handlers.MindMap.Get)
			papers.DELETE("/:arxiv_id/mindmap", r.handlers.MindMap.Invalidate)
			papers.GET("/:arxiv_id/mindmap/status", r.handlers.MindMap.Status)
			papers.POST("/:arxiv_id/ask", rateLimit, r.handlers.Ask.Ask)
			papers.POST("/:arxiv_id/ask/stream", rateLimit, r.handlers.Ask.AskStream)
		}
	}
}

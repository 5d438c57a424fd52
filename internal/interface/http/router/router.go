package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/middleware"
)

type Handlers struct {
	Health    *handler.HealthHandler
	Proposals *handler.ProposalHandler
	Versions  *handler.VersionHandler
	Templates *handler.TemplateHandler
	Reviews   *handler.ReviewHandler
	WS        *handler.WSHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessTokenParser,
	rateLimitStore limiter.Store,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	// Просмотр предложения клиентом по ссылке.
	review := api.Group("/review/:token")
	review.Use(middleware.RateLimitMiddleware(rateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		review.GET("", h.Reviews.Review)
		review.POST("/sign", h.Reviews.Sign)
		review.POST("/accept", h.Reviews.Accept)
		review.POST("/reject", h.Reviews.Reject)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	proposals := protected.Group("/proposals")
	{
		proposals.POST("", h.Proposals.CreateProposal)
		proposals.GET("", h.Proposals.ListProposals)

		byID := proposals.Group("/:id", middleware.UUIDValidator("id"))
		byID.GET("", h.Proposals.GetProposal)
		byID.PUT("", h.Proposals.UpdateProposal)
		byID.DELETE("", h.Proposals.DeleteProposal)
		byID.PUT("/document", h.Proposals.SaveDocument)
		byID.POST("/send", h.Proposals.SendProposal)
		byID.POST("/duplicate", h.Proposals.DuplicateProposal)
		byID.GET("/preview", h.Reviews.Preview)
		byID.GET("/versions", h.Versions.ListVersions)
		byID.POST("/versions/:versionId/restore", middleware.UUIDValidator("versionId"), h.Versions.RestoreVersion)
	}

	templates := protected.Group("/proposal-templates")
	{
		templates.POST("", h.Templates.CreateTemplate)
		templates.GET("", h.Templates.ListTemplates)
		templates.GET("/:id", middleware.UUIDValidator("id"), h.Templates.GetTemplate)
		templates.PUT("/:id", middleware.UUIDValidator("id"), h.Templates.UpdateTemplate)
		templates.DELETE("/:id", middleware.UUIDValidator("id"), h.Templates.DeleteTemplate)
	}

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/imyashkale/helmwizard/internal/handlers"
	"github.com/imyashkale/helmwizard/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Health      *handlers.HealthHandler
	Connections *handlers.ConnectionHandler
	GitHub      *handlers.GitHubHandler
	Wizard      *handlers.WizardHandler
	Template    *handlers.TemplateHandler
}

// Setup configures and returns the application router
func Setup(h Handlers, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	api := router.Group("/api")

	// Health check is public
	api.GET("/health", h.Health.Check)

	api.Use(auth)

	connections := api.Group("/connections")
	{
		connections.POST("/test", h.Connections.Test)
		connections.POST("", h.Connections.Create)
		connections.GET("", h.Connections.List)
		connections.PATCH("/:id", h.Connections.Update)
		connections.PATCH("/:id/rotate", h.Connections.Rotate)
		connections.DELETE("/:id", h.Connections.Delete)
	}

	github := api.Group("/github")
	{
		github.GET("/orgs", h.GitHub.ListOwners)
		github.GET("/orgs/:org/teams", h.GitHub.ListTeams)
		github.GET("/repos/check", h.GitHub.CheckRepo)
	}

	wizard := api.Group("/wizard")
	{
		wizard.GET("/config", h.Wizard.GetConfig)
		wizard.POST("/config", h.Wizard.SaveConfig)
		wizard.GET("/suggestions", h.Wizard.Suggestions)
		wizard.POST("/variables/import", h.Wizard.ImportVariables)
	}

	template := api.Group("/template")
	{
		template.GET("/variables", h.Template.Variables)
		template.POST("/render", h.Template.Render)
	}

	return router
}

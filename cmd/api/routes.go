package main

import (
	"github.com/gin-gonic/gin"

	"github.com/peptidedeals/peptidedeals_api/internal/handler"
	"github.com/peptidedeals/peptidedeals_api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Catalog    *handler.CatalogHandler
	Calculator *handler.CalculatorHandler
	Stack      *handler.StackHandler
	Session    *handler.SessionHandler
	Admin      *handler.AdminHandler
	SSE        *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, sessionMiddleware *middleware.SessionMiddleware) {
	v1 := router.Group("/v1")
	v1.GET("/health", handlers.Health.GetHealth)

	// Public catalog
	v1.GET("/peptides", handlers.Catalog.ListPeptides)
	v1.GET("/peptides/:id", handlers.Catalog.GetPeptide)
	v1.GET("/peptides/:id/compare", handlers.Catalog.ComparePeptide)
	v1.GET("/peptides/:id/price-history", handlers.Catalog.PriceHistory)
	v1.GET("/categories", handlers.Catalog.GetCategories)
	v1.GET("/retailers", handlers.Catalog.GetRetailers)

	// Tools
	v1.POST("/calculator", handlers.Calculator.Calculate)
	stacks := v1.Group("/stacks")
	{
		stacks.GET("/templates", handlers.Stack.GetTemplates)
		stacks.POST("/recommend", handlers.Stack.Recommend)
		stacks.POST("/estimate", handlers.Stack.Estimate)
	}

	// Sessions
	v1.POST("/session", handlers.Session.Create)
	session := v1.Group("/session")
	session.Use(sessionMiddleware.Handle())
	{
		session.GET("", handlers.Session.Get)
		session.POST("/disclaimer", handlers.Session.AcceptDisclaimer)
	}

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(sessionMiddleware.Handle())
	admin.POST("/login", handlers.Session.Login)
	admin.POST("/logout", handlers.Session.Logout)
	admin.Use(sessionMiddleware.RequireAdmin())
	{
		admin.GET("/peptides", handlers.Admin.ListPeptides)
		admin.POST("/peptides", handlers.Admin.CreatePeptide)
		admin.POST("/peptides/bulk", handlers.Admin.BulkCreate)
		admin.GET("/peptides/export", handlers.Admin.Export)
		admin.POST("/peptides/import", handlers.Admin.Import)
		admin.GET("/peptides/:id", handlers.Admin.GetPeptide)
		admin.PUT("/peptides/:id", handlers.Admin.UpdatePeptide)
		admin.DELETE("/peptides/:id", handlers.Admin.DeletePeptide)

		admin.GET("/events", handlers.SSE.Stream)
	}
}

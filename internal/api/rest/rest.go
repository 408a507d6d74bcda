package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Probes and metrics (no version prefix)
	router.GET("/health", handler.HealthCheck)
	router.GET("/status", handler.GetStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes, all read-only
	v1 := router.Group("/api/v1")
	{
		v1.GET("/contents/:address", handler.GetContent)
		v1.GET("/assets/:id", handler.GetAsset)
		v1.GET("/accounts/:address", handler.GetAccount)
		v1.GET("/orders/:id", handler.GetOrder)
		v1.GET("/tokens/:address", handler.GetToken)
	}
}

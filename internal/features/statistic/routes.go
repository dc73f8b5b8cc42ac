package statistic

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches statistic endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, acAdmin []gin.HandlerFunc) {
	statistics := router.Group("/statistics")

	statistics.GET("", handler.List)
	statistics.GET("/course/:courseId", handler.GetByCourse)
	statistics.POST("/course/:courseId", append(acAdmin, handler.Upsert)...)
	statistics.PUT("/course/:courseId/completion", append(acAdmin, handler.UpdateCompletion)...)
	statistics.POST("/reconcile", append(acAdmin, handler.Reconcile)...)
}

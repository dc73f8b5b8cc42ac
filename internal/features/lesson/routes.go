package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	lessons := router.Group("/lessons")

	lessons.GET("/:lessonId", handler.GetByID)
}

package course

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches course endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, acAdmin []gin.HandlerFunc) {
	courses := router.Group("/courses")

	courses.GET("", handler.List)
	courses.GET("/:courseId", handler.GetByID)
	courses.GET("/:courseId/lessons", handler.Lessons)
	courses.POST("", append(acAdmin, handler.Create)...)
	courses.POST("/:courseId/lessons", append(acAdmin, handler.CreateLesson)...)
}

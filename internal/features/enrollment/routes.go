package enrollment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches enrollment endpoints under /users.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, acAuth []gin.HandlerFunc) {
	users := router.Group("/users")

	users.POST("/enroll/:courseId", append(acAuth, handler.Enroll)...)
	users.POST("/complete-lesson", append(acAuth, handler.CompleteLesson)...)
	users.GET("/me/enrollments", append(acAuth, handler.Mine)...)
}

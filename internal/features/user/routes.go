package user

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches user endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, acAuth, acAdmin []gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", append(acAuth, handler.Me)...)
		users.PUT("/me", append(acAuth, handler.UpdateMe)...)
		users.GET("", append(acAdmin, handler.List)...)
		users.GET("/:userId", append(acAdmin, handler.GetByID)...)
	}
}

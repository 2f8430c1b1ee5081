package routev1

import (
	"facegate.io/application/controller"
	"facegate.io/application/interfaces"
	"facegate.io/infrastructure/events"
	middlewares "facegate.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

// AttemptRouter mounts the audit log and its live WebSocket feed.
func AttemptRouter(router *gin.RouterGroup) {
	attemptRouter := router.Group("/attempts")
	{
		attemptRouter.GET("", middlewares.AdminAuthMiddleware(), func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.ListAttempts(&interfaces.ApplicationContext[any]{
				Ctx:  ctx,
				Keys: appContext.Keys,
				Query: map[string]string{
					"limit":  ctx.Query("limit"),
					"before": ctx.Query("before"),
				},
				DeviceID: appContext.DeviceID,
			})
		})

		attemptRouter.GET("/:id", middlewares.AdminAuthMiddleware(), func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.GetAttempt(&interfaces.ApplicationContext[any]{
				Ctx:  ctx,
				Keys: appContext.Keys,
				Param: map[string]string{
					"id": ctx.Param("id"),
				},
				DeviceID: appContext.DeviceID,
			})
		})

		// Browser WebSocket clients cannot set headers, so the token may
		// arrive as a query parameter instead.
		attemptRouter.GET("/events", func(ctx *gin.Context) {
			if ctx.GetHeader("Authorization") == "" {
				if token := ctx.Query("token"); token != "" {
					ctx.Request.Header.Set("Authorization", "Bearer "+token)
				}
			}
			ctx.Next()
		}, middlewares.AdminAuthMiddleware(), events.ServeWS)
	}
}

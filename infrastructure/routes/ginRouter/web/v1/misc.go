package routev1

import (
	"facegate.io/application/controller"
	"facegate.io/application/interfaces"
	middlewares "facegate.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

func MiscRouter(router *gin.RouterGroup) {
	router.GET("/health", middlewares.AdminAuthMiddleware(), func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		controller.HealthCheck(&interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Keys:     appContext.Keys,
			DeviceID: appContext.DeviceID,
		})
	})
}

package routev1

import (
	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	middlewares "facegate.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

// VerificationRouter mounts the kiosk-facing verification endpoint.
func VerificationRouter(router *gin.RouterGroup) {
	router.POST("/verify", middlewares.DeviceAuthMiddleware(), func(ctx *gin.Context) {
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		var body dto.VerifyFaceDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		controller.VerifyFace(&interfaces.ApplicationContext[dto.VerifyFaceDTO]{
			Ctx:      ctx,
			Body:     &body,
			Keys:     appContext.Keys,
			Header:   appContext.Header,
			DeviceID: appContext.DeviceID,
		})
	})
}

// IdentityRouter mounts the enrollment management surface.
func IdentityRouter(router *gin.RouterGroup) {
	identityRouter := router.Group("/identities", middlewares.AdminAuthMiddleware())
	{
		identityRouter.POST("", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.EnrollIdentityDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.EnrollIdentity(&interfaces.ApplicationContext[dto.EnrollIdentityDTO]{
				Ctx:      ctx,
				Body:     &body,
				Keys:     appContext.Keys,
				Header:   appContext.Header,
				DeviceID: appContext.DeviceID,
			})
		})

		identityRouter.GET("", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.ListIdentities(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})

		identityRouter.DELETE("/:name", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.DeleteIdentity(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				Param:    map[string]string{"name": ctx.Param("name")},
				DeviceID: appContext.DeviceID,
			})
		})
	}
}

// ConfigRouter mounts the runtime threshold controls.
func ConfigRouter(router *gin.RouterGroup) {
	configRouter := router.Group("/config", middlewares.AdminAuthMiddleware())
	{
		configRouter.GET("", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.GetDeviceConfig(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})

		configRouter.PATCH("", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.UpdateDeviceConfigDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.UpdateDeviceConfig(&interfaces.ApplicationContext[dto.UpdateDeviceConfigDTO]{
				Ctx:      ctx,
				Body:     &body,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})
	}
}

package middlewares

import (
	"fmt"

	"facegate.io/application/interfaces"
	"facegate.io/infrastructure/useragent"
	"github.com/gin-gonic/gin"
)

// ClientMiddleware seeds the application context for every request and
// records a readable client name for the attempt log.
func ClientMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		keys := map[string]any{}
		agent := useragent.ParseUserAgent(ctx.Request.UserAgent())
		if agent.Name != "" {
			keys["ClientName"] = fmt.Sprintf("%s on %s %s", agent.Name, agent.OS, agent.OSVersion)
		} else {
			keys["ClientName"] = "unknown client"
		}
		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Keys:     keys,
			Header:   ctx.Request.Header,
			DeviceID: ctx.Request.Header.Get("X-Device-Id"),
		})
		ctx.Next()
	}
}

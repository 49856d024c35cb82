package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerInfo holds swagger metadata for the service
type SwaggerInfo struct {
	Title       string
	Description string
	Version     string
	Host        string
	BasePath    string
}

// SwaggerHostUpdater updates the generated docs host at runtime.
// Pass a function that assigns docs.SwaggerInfo.Host.
type SwaggerHostUpdater func(host string)

// RegisterSwagger registers the swagger UI endpoint with a dynamic host
// taken from each request. The generated docs package must be imported
// for its side effects:
//
//	import (
//	    _ "github.com/Digital-Creators-Team/prize-wheel-module/docs"
//	    "github.com/Digital-Creators-Team/prize-wheel-module/docs"
//	)
//
//	app.RegisterSwagger(server.SwaggerInfo{
//	    Title:       "Prize Wheel API",
//	    Description: "Club roulette service API documentation",
//	    Version:     "1.0",
//	}, func(host string) {
//	    docs.SwaggerInfo.Host = host
//	})
func (a *App) RegisterSwagger(info SwaggerInfo, hostUpdater SwaggerHostUpdater) {
	a.engine.GET("/swagger/*any", func(c *gin.Context) {
		// X-Forwarded-Host wins behind a reverse proxy
		host := c.GetHeader("X-Forwarded-Host")
		if host == "" {
			host = c.Request.Host
		}

		if hostUpdater != nil {
			hostUpdater(host)
		}

		handler := ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.DefaultModelsExpandDepth(-1),
		)
		handler(c)
	})

	a.logger.Info().
		Str("path", "/swagger/index.html").
		Msg("Swagger UI registered with dynamic host")
}

// RegisterSwaggerWithDocs registers swagger with a custom docs handler
func (a *App) RegisterSwaggerWithDocs(docsHandler gin.HandlerFunc) {
	a.engine.GET("/swagger/*any", docsHandler)
	a.logger.Info().
		Str("path", "/swagger/index.html").
		Msg("Swagger UI registered with custom handler")
}

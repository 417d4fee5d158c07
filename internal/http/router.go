package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	sessions *SessionManager,
	loginH *LoginHandler,
	portalH *PortalHandler,
	apiH *APIHandler,
	jwtServ JWTParser,
	apiOrigins []string,
) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(loadTemplates())

	// Middlewares basicos: logging y recovery.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	web := r.Group("", sessions.Middleware())
	web.GET("/", loginH.Index)
	web.GET("/login", loginH.Show)
	web.POST("/login/signin", loginH.SignIn)
	web.POST("/login/signup", loginH.SignUp)
	web.POST("/logout", portalH.Logout)

	portal := web.Group(portalH.portalPath, RequireSession())
	portal.GET("", portalH.Show)
	portal.POST("/recordings", portalH.UploadRecording)

	// Sin secreto no se pueden firmar tokens: el API JSON queda apagado.
	if apiH != nil && jwtServ != nil && jwtServ.Enabled() {
		api := r.Group("/api", jsonContentTypeMiddleware())
		if len(apiOrigins) > 0 {
			api.Use(apiCORSMiddleware(apiOrigins))
			api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		}
		api.POST("/auth/signin", apiH.SignIn)
		api.POST("/auth/signup", apiH.SignUp)
		api.GET("/me", BearerAuth(jwtServ), apiH.Me)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// apiCORSMiddleware habilita el API JSON para clientes web de otros origenes.
func apiCORSMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

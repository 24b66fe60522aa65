package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"quiz-platform/internal/config"
	"quiz-platform/internal/handlers"
	"quiz-platform/internal/metrics"
	"quiz-platform/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var localOrigin = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1)(:[0-9]+)?$`)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Router struct {
	Config *config.Config
	Quiz   *handlers.QuizHandler
	Auth   *middleware.Authenticator
	Health HealthCheck
}

func (r *Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		gin.LoggerWithFormatter(accessLog),
		gin.Recovery(),
		metrics.Middleware(),
		cors.New(corsConfig(r.Config)),
	)

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"activeStatus": true, "message": "Server is active"})
	})
	engine.GET("/health", r.health)
	engine.GET("/metrics", metrics.Handler())

	r.Quiz.RegisterRoutes(engine.Group("/api"), r.Auth.RequireAuth())
	return engine
}

func (r *Router) health(c *gin.Context) {
	status := gin.H{"status": "healthy", "service": r.Config.Server.ServiceName, "storage": r.Config.Storage.Driver}
	if r.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.Health(ctx); err != nil {
			log.Printf("Health check failed: %v", err)
			status["status"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	c.JSON(http.StatusOK, status)
}

func accessLog(param gin.LogFormatterParams) string {
	requestID, _ := param.Keys[middleware.RequestIDKey].(string)
	return fmt.Sprintf("[QUIZ] %v | %3d | %13v | %15s | %-7s %#v | %s\n%s",
		param.TimeStamp.Format("2006/01/02 - 15:04:05"),
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		param.Path,
		requestID,
		param.ErrorMessage,
	)
}

// corsConfig allows any origin outside production. In production only the
// configured origins and local development hosts are accepted.
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if !cfg.IsProduction() {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}

	allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	c.AllowOriginFunc = func(origin string) bool {
		if _, ok := allowed[origin]; ok {
			return true
		}
		if localOrigin.MatchString(origin) {
			return true
		}
		log.Printf("CORS: blocked request from origin %s", origin)
		return false
	}
	return c
}

package http

import (
	"context"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/credentials"
	"github.com/geocoder89/learnhub/internal/gateway"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/gin-gonic/gin"
)

// Base holds what every binary's engine is built from.
type Base struct {
	Config config.Config
	Prom   *observability.Prom
	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error
	// Middleware runs after the shared chain, before every route.
	Middleware []gin.HandlerFunc
	// OwnIndex leaves GET / to the caller.
	OwnIndex bool
}

// NewEngine returns an engine with the shared middleware and the
// endpoints every binary answers: /, /health, /readyz and /metrics.
func NewEngine(base Base) *gin.Engine {
	if base.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(base.Config.ServiceName))
	r.Use(middlewares.SecurityHeaders())
	if base.Config.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(base.Config.MaxBodyBytes))
	}
	if base.Prom != nil {
		r.Use(base.Prom.GinHandleMiddleware())
		r.GET("/metrics", base.Prom.Handler())
	}
	r.Use(base.Middleware...)

	svc := handlers.NewServiceHandler(base.Config.ServiceName, base.Ping)
	r.GET("/health", svc.Health)
	r.GET("/readyz", svc.Readyz)

	if !base.OwnIndex {
		r.GET("/", svc.Home)
	}

	return r
}

func NewUserRouter(base Base, verifier *credentials.Verifier) *gin.Engine {
	r := NewEngine(base)

	h := handlers.NewUsersHandler(verifier, verifier.Users())
	authMW := middlewares.NewAuthMiddleware(verifier, credentials.IsRejected)

	users := r.Group("/users")
	users.POST("/register", middlewares.RequireJSON(), h.Register)
	users.POST("/login", middlewares.RequireJSON(), h.Login)
	users.GET("/list", h.List)
	users.GET("/me", authMW.RequireAuth(), h.Me)

	return r
}

func NewCourseRouter(base Base, repo handlers.CourseStore) *gin.Engine {
	r := NewEngine(base)
	h := handlers.NewCoursesHandler(repo)

	courses := r.Group("/courses")
	courses.POST("/create", middlewares.RequireJSON(), h.Create)
	courses.GET("/list", h.List)
	courses.POST("/upload", h.Upload)
	courses.GET("/:id", h.GetByID)

	return r
}

func NewEnrollmentRouter(base Base, repo handlers.EnrollmentStore) *gin.Engine {
	r := NewEngine(base)
	h := handlers.NewEnrollmentsHandler(repo)

	enrollments := r.Group("/enrollments")
	enrollments.POST("/enroll", middlewares.RequireJSON(), h.Enroll)
	enrollments.GET("/list", h.List)
	enrollments.GET("/:user_id", h.ListByUser)

	return r
}

func NewPaymentRouter(base Base, repo handlers.PaymentStore, notifier handlers.EventNotifier) *gin.Engine {
	r := NewEngine(base)
	h := handlers.NewPaymentsHandler(repo, notifier)

	payments := r.Group("/payments")
	payments.POST("/initiate", middlewares.RequireJSON(), h.Initiate)
	payments.GET("/status/:id", h.Status)
	payments.GET("/list", h.List)

	return r
}

func NewNotificationRouter(base Base, repo handlers.NotificationStore, mailer notifications.Notifier) *gin.Engine {
	r := NewEngine(base)
	h := handlers.NewNotificationsHandler(repo, mailer)

	r.POST("/notify/email", middlewares.RequireJSON(), h.SendEmail)
	r.GET("/notifications/list", h.List)

	return r
}

// NewGatewayRouter mirrors every collaborator route and answers the index,
// aggregate health and docs locally.
func NewGatewayRouter(base Base, registry *gateway.Registry, fwd handlers.Forwarder, checker handlers.HealthChecker) *gin.Engine {
	base.Middleware = append(base.Middleware, middlewares.CORSMiddleware(base.Config.AllowedOrigins))
	base.OwnIndex = true
	r := NewEngine(base)

	h := handlers.NewGatewayHandler(registry.Names(), fwd, checker)
	r.GET("/", h.Index)
	r.GET("/services/health", h.ServicesHealth)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	for _, route := range gateway.Routes {
		r.Handle(route.Method, route.Path, h.Proxy(route.Service))
	}

	return r
}

package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/middleware"
	"github.com/noah-isme/timetable-console/internal/render"
	"github.com/noah-isme/timetable-console/internal/service"
	"github.com/noah-isme/timetable-console/pkg/logger"
	"github.com/noah-isme/timetable-console/pkg/middleware/requestid"
)

// Tokens signs and verifies the console session cookie.
type Tokens interface {
	tokenIssuer
	middleware.TokenParser
}

// RouterDeps wires the web console.
type RouterDeps struct {
	Console       consoleService
	Tokens        Tokens
	Metrics       *service.MetricsService
	Logger        *zap.Logger
	SecureCookies bool
	ExposeMetrics bool
}

// NewRouter builds the web console engine.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	tmpl, err := render.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.SetHTMLTemplate(tmpl)

	authHandler := NewAuthHandler(deps.Console, deps.Tokens, deps.SecureCookies, deps.Logger)
	manageHandler := NewManageHandler(deps.Console, deps.SecureCookies, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.Console, deps.SecureCookies, deps.Logger)
	viewHandler := NewViewHandler(deps.Console, deps.Logger)
	metricsHandler := NewMetricsHandler(deps.Metrics)

	r.GET("/health", metricsHandler.Health)
	if deps.ExposeMetrics {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	loginPath := deps.Console.LoginPath()
	open := r.Group("/", middleware.OptionalSession(deps.Tokens))
	open.GET(loginPath, authHandler.LoginPage)
	open.POST("/login", authHandler.Login)
	open.GET("/register", authHandler.RegisterPage)
	open.POST("/register", authHandler.Register)
	open.GET("/logout", authHandler.Logout)

	pages := r.Group("/", middleware.RequireSession(deps.Tokens, loginPath))
	pages.GET(dashboardPath, dashboardHandler.Page)
	pages.POST(dashboardPath+"/generate", middleware.Audit(deps.Logger, "generate", "timetable"), dashboardHandler.Generate)
	pages.POST(dashboardPath+"/export/:format", middleware.Audit(deps.Logger, "export", "timetable"), dashboardHandler.Export)
	pages.GET("/exports/:name", dashboardHandler.Download)

	pages.GET(managePath, manageHandler.Page)
	pages.POST(managePath+"/assign", middleware.Audit(deps.Logger, "assign", resourceFaculties), manageHandler.Assign)
	pages.POST(managePath+"/:resource", middleware.Audit(deps.Logger, "create", ""), manageHandler.Create)
	pages.GET(managePath+"/:resource/:id/delete", manageHandler.ConfirmDelete)
	pages.POST(managePath+"/:resource/:id/delete", middleware.Audit(deps.Logger, "delete", ""), manageHandler.Delete)

	views := r.Group("/views", middleware.RequireSessionJSON(deps.Tokens), middleware.WithResponseMeta())
	views.GET("/manage", viewHandler.Manage)
	views.GET("/generation", viewHandler.Generation)
	views.POST("/generate", viewHandler.Generate)

	return r, nil
}

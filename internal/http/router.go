package http

import (
	"log/slog"

	"github.com/geocoder89/hrhub/internal/http/handlers"
	"github.com/geocoder89/hrhub/internal/http/middlewares"
	"github.com/geocoder89/hrhub/internal/observability"
	"github.com/geocoder89/hrhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Log         *slog.Logger
	Env         string
	ServiceName string

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	CORSOrigins  []string
	MaxBodyBytes int64
	AuthLimiter  *middlewares.RateLimiter

	Tokens      middlewares.TokenVerifier
	Users       *service.UserService
	Leaves      *service.LeaveService
	Projects    *service.ProjectService
	Departments *service.DepartmentService

	Checks []handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(d.Env == "prod"))
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(d.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authMW := middlewares.NewAuthMiddleware(d.Tokens, d.Users)
	requireAuth := authMW.RequireAuth()
	staff := middlewares.RequireStaff()

	usersHandler := handlers.NewUsersHandler(d.Users, d.Leaves)
	leavesHandler := handlers.NewLeavesHandler(d.Leaves)
	projectsHandler := handlers.NewProjectsHandler(d.Projects)
	departmentsHandler := handlers.NewDepartmentsHandler(d.Departments)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("")
		if d.AuthLimiter != nil {
			limited.Use(d.AuthLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
		}
		limited.POST("/register", usersHandler.Register)
		limited.POST("/login", usersHandler.Login)

		private := authGroup.Group("", requireAuth)
		private.GET("/employee/stats", usersHandler.EmployeeStats)
		private.GET("/employee/profile", usersHandler.Profile)

		admin := private.Group("", staff)
		admin.GET("/users", usersHandler.List)
		admin.POST("/users", usersHandler.Create)
		admin.GET("/users/:id", usersHandler.Get)
		admin.PUT("/users/:id", usersHandler.Update)
		admin.DELETE("/users/:id", usersHandler.Delete)
		admin.GET("/dashboard/stats", usersHandler.DashboardStats)
	}

	leaves := api.Group("/leaves", requireAuth)
	{
		leaves.POST("", leavesHandler.Create)
		leaves.GET("/my-leaves", leavesHandler.ListMine)
		leaves.DELETE("/:id", leavesHandler.Cancel)

		leaves.GET("", staff, leavesHandler.ListAll)
		leaves.GET("/pending", staff, leavesHandler.ListPending)
		leaves.PUT("/:id/status", staff, leavesHandler.UpdateStatus)
		leaves.GET("/employee/:id", staff, leavesHandler.ListByEmployee)
	}

	projects := api.Group("/projects", requireAuth)
	{
		projects.GET("", projectsHandler.List)
		projects.GET("/employee", projectsHandler.ListMine)
		projects.GET("/:id", projectsHandler.Get)

		projects.POST("", staff, projectsHandler.Create)
		projects.GET("/stats", staff, projectsHandler.Stats)
		projects.GET("/employee/:id", staff, projectsHandler.ByEmployee)
		projects.PUT("/:id", staff, projectsHandler.Update)
		projects.DELETE("/:id", staff, projectsHandler.Delete)

		// roster changes are guarded by the service
		projects.POST("/:id/assign/:employeeId", projectsHandler.Assign)
		projects.POST("/:id/remove/:employeeId", projectsHandler.Remove)
	}

	departments := api.Group("/departments", requireAuth)
	{
		departments.GET("", departmentsHandler.List)
		departments.POST("", staff, departmentsHandler.Create)
	}

	return r
}

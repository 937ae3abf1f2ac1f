package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campusdesk/booking-api/internal/handler"
	"github.com/campusdesk/booking-api/internal/middleware"
	"github.com/campusdesk/booking-api/internal/models"
	"github.com/campusdesk/booking-api/internal/service"
	"github.com/campusdesk/booking-api/pkg/config"
	"github.com/campusdesk/booking-api/pkg/logger"
	corsmiddleware "github.com/campusdesk/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdesk/booking-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Slot        *handler.SlotHandler
	Appointment *handler.AppointmentHandler
	Directory   *handler.DirectoryHandler
	Profile     *handler.ProfileHandler
	Admin       *handler.AdminHandler
	Metrics     *handler.MetricsHandler
}

// Deps carries the cross-cutting collaborators the middleware chain needs.
type Deps struct {
	Auth     *service.AuthService
	Metrics  *service.MetricsService
	Students middleware.StudentApprovalLookup
	Logger   *zap.Logger
}

// Setup builds the gin engine with the full route table.
func Setup(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if deps.Logger != nil {
		r.Use(logger.GinMiddleware(deps.Logger))
	}
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.RegisterStudent)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.GET("/me", middleware.OptionalJWT(deps.Auth), h.Auth.Me)
			auth.POST("/logout", middleware.JWT(deps.Auth), h.Auth.Logout)
			auth.POST("/change-password", middleware.JWT(deps.Auth), h.Auth.ChangePassword)
		}

		// Public teacher directory.
		v1.GET("/teachers", h.Directory.Search)
		v1.GET("/teachers/:id", h.Directory.Detail)

		student := v1.Group("/student", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleStudent))
		{
			student.GET("/appointments", h.Appointment.ListForStudent)
			student.POST("/appointments", middleware.ApprovedStudent(deps.Students), h.Appointment.Book)
		}

		teacher := v1.Group("/teacher", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleTeacher))
		{
			teacher.GET("/slots", h.Slot.List)
			teacher.POST("/slots", h.Slot.Create)
			teacher.DELETE("/slots/:id", h.Slot.Delete)

			teacher.GET("/appointments", h.Appointment.ListForTeacher)
			teacher.PATCH("/appointments/:id", h.Appointment.UpdateStatus)

			teacher.GET("/profile", h.Profile.Get)
			teacher.PUT("/profile", h.Profile.Update)
			teacher.PUT("/profile/notifications", h.Profile.UpdateNotifications)
		}

		admin := v1.Group("/admin", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/students", h.Admin.ListStudents)
			admin.PATCH("/students/:id/approval", h.Admin.SetStudentApproval)
			admin.GET("/teachers", h.Admin.ListTeachers)
			admin.POST("/teachers", h.Admin.CreateTeacher)
			admin.GET("/appointments", h.Admin.ListAppointments)
			admin.GET("/appointments/export", h.Admin.ExportAppointments)
		}
	}

	return r
}

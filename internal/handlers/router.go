package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/metrics"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
)

type RouterConfig struct {
	Origins []string
	Tokens  middleware.TokenVerifier
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID(), middleware.Logger(cfg.Logger), middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(cfg.Origins)))

	r.NoRoute(h.NotFound)
	r.NoMethod(h.NotFound)

	r.GET("/health", h.Health)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	authenticated := middleware.Authenticate(cfg.Tokens)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor, models.RoleNurse)
	clinicians := middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor)
	admins := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh", h.Refresh)
		users.GET("/:id", authenticated, h.GetUser)
		users.PUT("/:id", authenticated, h.UpdateUser)
		users.DELETE("/:id", authenticated, h.DeleteUser)
	}

	patients := api.Group("/patients", authenticated)
	{
		patients.POST("", clinicians, h.CreatePatient)
		patients.GET("", staff, h.ListPatients)
		patients.GET("/:id", staff, h.GetPatient)
		patients.PUT("/:id", clinicians, h.UpdatePatient)
		patients.DELETE("/:id", admins, h.DeletePatient)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

package handlers

import (
	"trv_schedule/internal/logger"
	"trv_schedule/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Week timeline stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerScheduleRoutes(api)
		h.registerDragRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerScheduleRoutes(api *gin.RouterGroup) {
	sched := api.Group("/schedule")
	{
		sched.GET("", h.getWeek)
		sched.POST("/flush", h.flushSchedule)
		sched.GET("/:day", h.getDay)
		// Body example: {"text":"00:00/18 06:00/21 22:00/16"}
		sched.PUT("/:day", h.setDayText)
		// Body example: {"time":"06:30","temperature":"21.5"}
		sched.POST("/:day/transitions", h.addTransition)
		sched.PATCH("/:day/transitions/:index", h.setTemperature)
		sched.PUT("/:day/transitions/:index/time", h.moveTransition)
		sched.DELETE("/:day/transitions/:index", h.deleteTransition)
		sched.POST("/:day/transitions/:index/drag", h.beginDrag)
	}
}

func (h *Handler) registerDragRoutes(api *gin.RouterGroup) {
	drag := api.Group("/drag")
	{
		// Body example: {"dx":42,"width":1440}
		drag.PATCH("/:id", h.moveDrag)
		drag.DELETE("/:id", h.endDrag)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

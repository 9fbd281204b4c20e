package handlers

import (
	"net/http"

	"car_market/internal/logger"
	"car_market/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services  *service.Service
	log       *logger.Logger
	uploadDir string
}

// NewHandler constructs a new HTTP handler. uploadDir is where multipart
// image files are staged before they go to the media host.
func NewHandler(services *service.Service, log *logger.Logger, uploadDir string) *Handler {
	return &Handler{services: services, log: log, uploadDir: uploadDir}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerCarRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/login", h.login)

		protected := auth.Group("", h.authMiddleware)
		{
			protected.POST("/logout", h.logout)
			protected.GET("/me", h.me)
		}
	}
}

func (h *Handler) registerCarRoutes(r *gin.Engine) {
	cars := r.Group("/api/cars", h.authMiddleware)
	{
		cars.GET("", h.listCars)
		cars.GET("/search", h.searchCars)
		cars.GET("/:id", h.getCar)
		cars.POST("", h.createCar)
		cars.PUT("/:id", h.updateCar)
		cars.DELETE("/:id", h.deleteCar)
		cars.DELETE("/:id/images", h.removeImage)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

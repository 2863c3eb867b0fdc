package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"weathertrack.app/config"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/export"
	"weathertrack.app/models"
	"weathertrack.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router         *gin.Engine
	db             *gorm.DB
	config         *config.Config
	requestService service.WeatherRequestServiceInterface
	exportService  service.ExportServiceInterface
	mediaService   service.MediaServiceInterface
	renderer       *export.Renderer
}

// NewServer creates and configures a new HTTP server
func NewServer(
	db *gorm.DB,
	config *config.Config,
	requestService service.WeatherRequestServiceInterface,
	exportService service.ExportServiceInterface,
	mediaService service.MediaServiceInterface,
) *Server {
	registerValidations()

	router := gin.Default()
	router.Use(requestIDMiddleware())

	server := &Server{
		router:         router,
		db:             db,
		config:         config,
		requestService: requestService,
		exportService:  exportService,
		mediaService:   mediaService,
		renderer:       export.NewRenderer(),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/weather-requests", s.createWeatherRequest)
		api.GET("/weather-requests", s.listWeatherRequests)
		api.GET("/weather-requests/:id", s.getWeatherRequest)
		api.PUT("/weather-requests/:id", s.updateWeatherRequest)
		api.DELETE("/weather-requests/:id", s.deleteWeatherRequest)
		api.GET("/export", s.exportWeatherRequests)
		api.GET("/media/:locationId", s.getLocationMedia)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// validateDateFormat checks that a bound date field is a real YYYY-MM-DD date
func validateDateFormat(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("dateformat", validateDateFormat); err != nil {
			slog.Warn("Failed to register dateformat validator", "error", err)
		}
	}
}

// bindingErrorMessage names the first field that failed validation so callers
// can tell which part of the payload to fix. Malformed JSON keeps the generic
// message.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return fmt.Sprintf("invalid field %s: failed %s validation", fieldErr.Field(), fieldErr.Tag())
	}
	return "invalid request format"
}

// requestIDMiddleware tags every request with a correlation ID, honoring one
// supplied by the caller
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) createWeatherRequest(c *gin.Context) {
	var input models.CreateWeatherRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, weathererr.NewValidationError(bindingErrorMessage(err)))
		return
	}

	slog.Debug("Creating weather request", "location", input.LocationInput,
		"start", input.StartDate, "end", input.EndDate, "units", input.Units)

	result, err := s.requestService.Create(&input)
	if err != nil {
		slog.Error("Create weather request error", "error", err, "location", input.LocationInput)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) listWeatherRequests(c *gin.Context) {
	filters := models.ListFilters{
		LocationName: c.Query("locationName"),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
		Limit:        intQuery(c, "limit"),
		Offset:       intQuery(c, "offset"),
	}

	items, err := s.requestService.List(filters)
	if err != nil {
		slog.Error("List weather requests error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) getWeatherRequest(c *gin.Context) {
	id, ok := s.idParam(c, "id")
	if !ok {
		return
	}

	result, err := s.requestService.GetByID(id)
	if err != nil {
		slog.Error("Get weather request error", "error", err, "id", id)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) updateWeatherRequest(c *gin.Context) {
	id, ok := s.idParam(c, "id")
	if !ok {
		return
	}

	var input models.UpdateWeatherRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		slog.Error("Request binding error", "error", err, "id", id)
		s.handleError(c, weathererr.NewValidationError(bindingErrorMessage(err)))
		return
	}

	result, err := s.requestService.Update(id, &input)
	if err != nil {
		slog.Error("Update weather request error", "error", err, "id", id)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteWeatherRequest(c *gin.Context) {
	id, ok := s.idParam(c, "id")
	if !ok {
		return
	}

	if err := s.requestService.Delete(id); err != nil {
		slog.Error("Delete weather request error", "error", err, "id", id)
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) exportWeatherRequests(c *gin.Context) {
	// Validate the format before touching the store
	format, err := export.NormalizeFormat(c.Query("format"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	filters := models.ListFilters{
		LocationName: c.Query("locationName"),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
		Limit:        intQuery(c, "limit"),
	}

	records, err := s.exportService.GetExportData(filters)
	if err != nil {
		slog.Error("Export data error", "error", err, "format", format)
		s.handleError(c, err)
		return
	}

	body, err := s.renderer.Render(records, format)
	if err != nil {
		slog.Error("Export render error", "error", err, "format", format)
		s.handleError(c, err)
		return
	}

	contentType, filename := export.ContentTypeAndFilename(format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

func (s *Server) getLocationMedia(c *gin.Context) {
	id, ok := s.idParam(c, "locationId")
	if !ok {
		return
	}

	result, err := s.mediaService.GetMediaForLocation(id)
	if err != nil {
		slog.Error("Location media error", "error", err, "locationId", id)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) idParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		s.handleError(c, weathererr.NewValidationError("invalid id"))
		return 0, false
	}
	return uint(value), true
}

func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *weathererr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case weathererr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case weathererr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case weathererr.LocationNotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case weathererr.UpstreamError:
			statusCode = http.StatusBadGateway
			message = appErr.Message
		case weathererr.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}

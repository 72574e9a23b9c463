package handler

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"employee-management/internal/models"
	"employee-management/internal/service"
)

const welcomeMessage = "Welcome to the Employee Management System"

type EmployeeService interface {
	CreateEmployee(ctx context.Context, in service.EmployeeInput) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, id uint, in service.EmployeeInput) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error
}

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, in service.LeaveRequestInput) (*models.LeaveRequest, error)
	ListLeaveRequests(ctx context.Context, employeeID uint) ([]models.LeaveRequest, error)
	UpdateLeaveRequest(ctx context.Context, id uint, in service.LeaveRequestInput) (*models.LeaveRequest, error)
	DeleteLeaveRequest(ctx context.Context, id uint) error
}

// Pinger reports whether the database is reachable
type Pinger func(ctx context.Context) error

type Handler struct {
	employeeService EmployeeService
	leaveService    LeaveService
	ping            Pinger
	logger          *logrus.Logger
	schemas         map[string]any
}

func NewHandler(
	employeeService EmployeeService,
	leaveService LeaveService,
	ping Pinger,
	logger *logrus.Logger,
) *Handler {
	useJSONFieldNames()
	return &Handler{
		employeeService: employeeService,
		leaveService:    leaveService,
		ping:            ping,
		logger:          logger,
		schemas:         buildSchemas(),
	}
}

// RouterOptions holds the cross-cutting middleware settings
type RouterOptions struct {
	CORSOrigins []string
	RateLimit   float64 // requests per second per client ip, 0 disables
}

// Router wires middleware and all routes. Collection routes answer with and without the trailing slash.
func (h *Handler) Router(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(
		requestID(),
		accessLog(h.logger),
		recovery(h.logger),
		cors.New(corsConfig(opts.CORSOrigins)),
	)
	if opts.RateLimit > 0 {
		h.logger.WithField("rps", opts.RateLimit).Info("Rate limit enabled")
		router.Use(rateLimit(opts.RateLimit))
	}

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/schemas", h.Schemas)

	employees := router.Group("/employees")
	for _, path := range []string{"", "/"} {
		employees.POST(path, h.CreateEmployee)
		employees.GET(path, h.ListEmployees)
	}
	employees.GET("/:id", h.GetEmployee)
	employees.PUT("/:id", h.UpdateEmployee)
	employees.DELETE("/:id", h.DeleteEmployee)

	leaves := router.Group("/leaves")
	for _, path := range []string{"", "/"} {
		leaves.POST(path, h.CreateLeaveRequest)
	}
	// GET takes an employee id, PUT and DELETE a leave request id
	leaves.GET("/:id", h.ListLeaveRequests)
	leaves.PUT("/:id", h.UpdateLeaveRequest)
	leaves.DELETE("/:id", h.DeleteLeaveRequest)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": welcomeMessage})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID parses the :id segment, writing a 422 response when it isn't a positive integer
func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		abortValidation(c, ValidationDetail{Loc: []string{"path", "id"}, Msg: "value is not a valid integer",
			Type: "type_error.integer"})
		return 0, false
	}
	return uint(id), true
}

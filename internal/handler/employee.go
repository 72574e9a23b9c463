package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"employee-management/internal/models"
	"employee-management/internal/service"
)

// employeePayload is the body of POST /employees and PUT /employees/:id
type employeePayload struct {
	Name       string            `json:"name" binding:"required"`
	Email      string            `json:"email" binding:"required"`
	Department models.Department `json:"department" binding:"required" jsonschema:"enum=IT,enum=HR,enum=Finance,enum=Sales,enum=Marketing"`
	Role       models.Role       `json:"role" binding:"required" jsonschema:"enum=Admin,enum=Employee"`
	Salary     *float64          `json:"salary" binding:"required"`
}

func (p employeePayload) input() service.EmployeeInput {
	return service.EmployeeInput{
		Name:       p.Name,
		Email:      p.Email,
		Department: p.Department,
		Role:       p.Role,
		Salary:     *p.Salary,
	}
}

func (h *Handler) CreateEmployee(c *gin.Context) {
	var payload employeePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortValidation(c, bindingDetails(err)...)
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), payload.input())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.employeeService.ListEmployees(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *Handler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	employee, err := h.employeeService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *Handler) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var payload employeePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortValidation(c, bindingDetails(err)...)
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), id, payload.input())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *Handler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"employee-management/internal/models"
)

// buildSchemas reflects JSON Schemas for every payload and record the API speaks
func buildSchemas() map[string]any {
	reflector := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	return map[string]any{
		"EmployeeCreate":     reflector.Reflect(&employeePayload{}),
		"Employee":           reflector.Reflect(&models.Employee{}),
		"LeaveRequestCreate": reflector.Reflect(&leavePayload{}),
		"LeaveRequest":       reflector.Reflect(&models.LeaveRequest{}),
		"ValidationError":    reflector.Reflect(&validationResponse{}),
	}
}

func (h *Handler) Schemas(c *gin.Context) {
	c.JSON(http.StatusOK, h.schemas)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"employee-management/internal/service"
)

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// leavePayload is the body of POST /leaves and PUT /leaves/:id.
// Status is accepted for compatibility and ignored.
type leavePayload struct {
	EmployeeID *uint   `json:"employee_id" binding:"required"`
	StartDate  string  `json:"start_date" binding:"required" jsonschema:"format=date-time"`
	EndDate    string  `json:"end_date" binding:"required" jsonschema:"format=date-time"`
	Reason     string  `json:"reason" binding:"required"`
	Status     *string `json:"status,omitempty" jsonschema:"enum=Pending,enum=Approved,enum=Rejected"`
}

// input parses both dates and reports every malformed one
func (p leavePayload) input() (service.LeaveRequestInput, []ValidationDetail) {
	var details []ValidationDetail

	start, err := parseTimestamp(p.StartDate)
	if err != nil {
		details = append(details, datetimeDetail("start_date"))
	}
	end, err := parseTimestamp(p.EndDate)
	if err != nil {
		details = append(details, datetimeDetail("end_date"))
	}

	return service.LeaveRequestInput{
		EmployeeID: *p.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		Reason:     p.Reason,
	}, details
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func datetimeDetail(field string) ValidationDetail {
	return ValidationDetail{Loc: []string{"body", field}, Msg: "invalid datetime format", Type: "value_error.datetime"}
}

// bindLeave decodes and validates the body, writing a 422 response on failure
func bindLeave(c *gin.Context) (service.LeaveRequestInput, bool) {
	var payload leavePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortValidation(c, bindingDetails(err)...)
		return service.LeaveRequestInput{}, false
	}
	in, details := payload.input()
	if len(details) > 0 {
		abortValidation(c, details...)
		return service.LeaveRequestInput{}, false
	}
	return in, true
}

func (h *Handler) CreateLeaveRequest(c *gin.Context) {
	in, ok := bindLeave(c)
	if !ok {
		return
	}

	request, err := h.leaveService.CreateLeaveRequest(c.Request.Context(), in)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// ListLeaveRequests serves GET /leaves/:id where id is the employee id
func (h *Handler) ListLeaveRequests(c *gin.Context) {
	employeeID, ok := pathID(c)
	if !ok {
		return
	}

	requests, err := h.leaveService.ListLeaveRequests(c.Request.Context(), employeeID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handler) UpdateLeaveRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindLeave(c)
	if !ok {
		return
	}

	request, err := h.leaveService.UpdateLeaveRequest(c.Request.Context(), id, in)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *Handler) DeleteLeaveRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.leaveService.DeleteLeaveRequest(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

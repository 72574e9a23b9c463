package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"employee-management/internal/models"
	"employee-management/internal/service"
)

// ValidationDetail describes one rejected field. Loc starts with "body" or "path".
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type validationResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

type messageResponse struct {
	Detail string `json:"detail"`
}

var registerTagNameOnce sync.Once

// useJSONFieldNames makes validator report json names instead of Go field names
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindingDetails converts whatever ShouldBindJSON returned into field level details
func bindingDetails(err error) []ValidationDetail {
	var (
		validationErrs validator.ValidationErrors
		enumErr        *models.InvalidEnumError
		typeErr        *json.UnmarshalTypeError
		syntaxErr      *json.SyntaxError
	)

	switch {
	case errors.As(err, &validationErrs):
		details := make([]ValidationDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fieldErrorDetail(fe))
		}
		return details
	case errors.As(err, &enumErr):
		return []ValidationDetail{{Loc: []string{"body", enumErr.Field}, Msg: enumErr.Error(), Type: "type_error.enum"}}
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		return []ValidationDetail{{Loc: loc, Msg: fmt.Sprintf("value is not a valid %s", typeErr.Type), Type: "type_error"}}
	case errors.As(err, &syntaxErr):
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "invalid JSON: " + syntaxErr.Error(), Type: "value_error.jsondecode"}}
	case errors.Is(err, io.EOF):
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "field required", Type: "value_error.missing"}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "invalid JSON: unexpected end of input", Type: "value_error.jsondecode"}}
	}
	return []ValidationDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
}

func fieldErrorDetail(fe validator.FieldError) ValidationDetail {
	loc := []string{"body", fe.Field()}
	if fe.Tag() == "required" {
		return ValidationDetail{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	}
	return ValidationDetail{Loc: loc, Msg: fmt.Sprintf("failed on the '%s' rule", fe.Tag()), Type: "value_error." + fe.Tag()}
}

func abortValidation(c *gin.Context, details ...ValidationDetail) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, validationResponse{Detail: details})
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, messageResponse{Detail: msg})
}

// abortWithError maps service errors to responses, unknown errors become 500
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var enumErr *models.InvalidEnumError

	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		abortMessage(c, http.StatusNotFound, "Employee not found")
	case errors.Is(err, service.ErrLeaveRequestNotFound):
		abortMessage(c, http.StatusNotFound, "Leave Request not found")
	case errors.Is(err, service.ErrEmailTaken):
		abortMessage(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrUnknownEmployee):
		abortValidation(c, ValidationDetail{Loc: []string{"body", "employee_id"}, Msg: "employee does not exist",
			Type: "value_error.foreign_key"})
	case errors.As(err, &enumErr):
		abortValidation(c, ValidationDetail{Loc: []string{"body", enumErr.Field}, Msg: enumErr.Error(), Type: "type_error.enum"})
	case errors.Is(err, service.ErrInvalidInput):
		abortValidation(c, ValidationDetail{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"})
	default:
		h.logger.WithFields(logrus.Fields{
			"request_id": requestIDFrom(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		abortMessage(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

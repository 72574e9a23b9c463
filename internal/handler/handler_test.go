package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-management/internal/database"
	"employee-management/internal/models"
	"employee-management/internal/repository"
	"employee-management/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(t *testing.T, opts RouterOptions) *gin.Engine {
	t.Helper()
	logger := testLogger()

	dbURL := "sqlite:///" + filepath.Join(t.TempDir(), "handler.db")
	db, err := database.Open(context.Background(), dbURL, database.Options{}, logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := repository.NewGormStore(db, logger)
	h := NewHandler(
		service.NewEmployeeService(store, logger),
		service.NewLeaveService(store, logger),
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		logger,
	)
	return h.Router(opts)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func employeeBody(email string) map[string]any {
	return map[string]any{
		"name":       "Jane Doe",
		"email":      email,
		"department": "IT",
		"role":       "Admin",
		"salary":     5000.5,
	}
}

func createEmployee(t *testing.T, router http.Handler, email string) models.Employee {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/employees/", employeeBody(email))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Employee](t, rec)
}

func TestRoot(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	rec := do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Welcome to the Employee Management System"}`, rec.Body.String())
}

func TestEmployees_CRUD(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	created := createEmployee(t, router, "jane@example.com")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Equal(t, models.DepartmentIT, created.Department)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.InDelta(t, 5000.5, created.Salary, 0.001)
	assert.False(t, created.CreatedAt.IsZero())

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/employees/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Employee](t, rec)
	assert.Equal(t, created.Email, got.Email)
	assert.NotContains(t, rec.Body.String(), "leave_requests")

	body := employeeBody("jane.doe@example.com")
	body["department"] = "Finance"
	body["role"] = "Employee"
	body["salary"] = 0
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/employees/%d", created.ID), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Employee](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "jane.doe@example.com", updated.Email)
	assert.Equal(t, models.DepartmentFinance, updated.Department)
	assert.Equal(t, models.RoleEmployee, updated.Role)
	assert.Zero(t, updated.Salary)

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/employees/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/employees/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Employee not found"}`, rec.Body.String())

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/employees/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_List(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := do(t, router, http.MethodGet, "/employees/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	first := createEmployee(t, router, "a@example.com")
	second := createEmployee(t, router, "b@example.com")

	for _, path := range []string{"/employees/", "/employees"} {
		rec = do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		list := decode[[]models.Employee](t, rec)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	}
}

func TestEmployees_CreateWithoutTrailingSlash(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	rec := do(t, router, http.MethodPost, "/employees", employeeBody("slash@example.com"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestEmployees_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	createEmployee(t, router, "dup@example.com")

	rec := do(t, router, http.MethodPost, "/employees/", employeeBody("dup@example.com"))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"detail":"Email already registered"}`, rec.Body.String())

	other := createEmployee(t, router, "other@example.com")
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/employees/%d", other.ID), employeeBody("dup@example.com"))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEmployees_Validation(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	tests := []struct {
		name     string
		body     any
		wantLoc  []string
		wantType string
	}{
		{
			name: "unknown department",
			body: func() map[string]any {
				b := employeeBody("x@example.com")
				b["department"] = "Legal"
				return b
			}(),
			wantLoc:  []string{"body", "department"},
			wantType: "type_error.enum",
		},
		{
			name: "unknown role",
			body: func() map[string]any {
				b := employeeBody("x@example.com")
				b["role"] = "admin"
				return b
			}(),
			wantLoc:  []string{"body", "role"},
			wantType: "type_error.enum",
		},
		{
			name: "missing salary",
			body: func() map[string]any {
				b := employeeBody("x@example.com")
				delete(b, "salary")
				return b
			}(),
			wantLoc:  []string{"body", "salary"},
			wantType: "value_error.missing",
		},
		{
			name: "missing email",
			body: func() map[string]any {
				b := employeeBody("x@example.com")
				delete(b, "email")
				return b
			}(),
			wantLoc:  []string{"body", "email"},
			wantType: "value_error.missing",
		},
		{
			name: "salary as text",
			body: func() map[string]any {
				b := employeeBody("x@example.com")
				b["salary"] = "a lot"
				return b
			}(),
			wantLoc:  []string{"body", "salary"},
			wantType: "type_error",
		},
		{name: "empty body", body: nil, wantLoc: []string{"body"}, wantType: "value_error.missing"},
		{name: "broken json", body: `{"name":`, wantLoc: []string{"body"}, wantType: "value_error.jsondecode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/employees/", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			resp := decode[validationResponse](t, rec)
			require.NotEmpty(t, resp.Detail)
			assert.Equal(t, tt.wantLoc, resp.Detail[0].Loc)
			assert.Equal(t, tt.wantType, resp.Detail[0].Type)
		})
	}

	rec := do(t, router, http.MethodGet, "/employees/", nil)
	assert.JSONEq(t, `[]`, rec.Body.String(), "nothing was stored")
}

func TestEmployees_EnumMessageListsAllowedValues(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	body := employeeBody("enum@example.com")
	body["department"] = "Legal"

	rec := do(t, router, http.MethodPost, "/employees/", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[validationResponse](t, rec)
	assert.Contains(t, resp.Detail[0].Msg, "'IT', 'HR', 'Finance', 'Sales', 'Marketing'")
}

func TestEmployees_InvalidPathID(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(t, router, method, "/employees/abc", employeeBody("x@example.com"))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, method)
		resp := decode[validationResponse](t, rec)
		require.Len(t, resp.Detail, 1)
		assert.Equal(t, []string{"path", "id"}, resp.Detail[0].Loc)
	}
}

func TestEmployees_UpdateMissing(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	rec := do(t, router, http.MethodPut, "/employees/42", employeeBody("ghost@example.com"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Employee not found"}`, rec.Body.String())
}

func leaveBody(employeeID uint, reason string) map[string]any {
	return map[string]any{
		"employee_id": employeeID,
		"start_date":  "2025-07-01T09:00:00",
		"end_date":    "2025-07-10T18:00:00Z",
		"reason":      reason,
	}
}

func TestLeaves_CRUD(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	emp := createEmployee(t, router, "leave@example.com")

	rec := do(t, router, http.MethodPost, "/leaves/", leaveBody(emp.ID, "vacation"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[models.LeaveRequest](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, emp.ID, created.EmployeeID)
	assert.Equal(t, models.LeaveStatusPending, created.Status)
	assert.Equal(t, "vacation", created.Reason)
	assert.Equal(t, 9, created.StartDate.UTC().Hour())

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/leaves/%d", emp.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.LeaveRequest](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	body := leaveBody(emp.ID+50, "shorter vacation")
	body["start_date"] = "2025-07-02"
	body["status"] = models.LeaveStatusApproved
	rec = do(t, router, http.MethodPut, fmt.Sprintf("/leaves/%d", created.ID), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.LeaveRequest](t, rec)
	assert.Equal(t, "shorter vacation", updated.Reason)
	assert.Equal(t, 2, updated.StartDate.UTC().Day())
	assert.Equal(t, emp.ID, updated.EmployeeID, "owner is not changed by update")
	assert.Equal(t, models.LeaveStatusPending, updated.Status, "status is not changed by update")

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/leaves/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/leaves/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Leave Request not found"}`, rec.Body.String())

	rec = do(t, router, http.MethodPut, fmt.Sprintf("/leaves/%d", created.ID), leaveBody(emp.ID, "again"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaves_ListIsEmptyNotMissing(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := do(t, router, http.MethodGet, "/leaves/12345", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/leaves/nope", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaves_UnknownEmployee(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := do(t, router, http.MethodPost, "/leaves", leaveBody(999, "ghost"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	resp := decode[validationResponse](t, rec)
	require.Len(t, resp.Detail, 1)
	assert.Equal(t, []string{"body", "employee_id"}, resp.Detail[0].Loc)
}

func TestLeaves_Validation(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	emp := createEmployee(t, router, "dates@example.com")

	body := leaveBody(emp.ID, "trip")
	body["start_date"] = "first of july"
	body["end_date"] = "2025-13-45"
	rec := do(t, router, http.MethodPost, "/leaves/", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[validationResponse](t, rec)
	require.Len(t, resp.Detail, 2)
	assert.Equal(t, []string{"body", "start_date"}, resp.Detail[0].Loc)
	assert.Equal(t, []string{"body", "end_date"}, resp.Detail[1].Loc)
	assert.Equal(t, "value_error.datetime", resp.Detail[0].Type)

	body = leaveBody(emp.ID, "trip")
	delete(body, "employee_id")
	rec = do(t, router, http.MethodPost, "/leaves/", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp = decode[validationResponse](t, rec)
	assert.Equal(t, []string{"body", "employee_id"}, resp.Detail[0].Loc)

	rec = do(t, router, http.MethodPost, "/leaves/", leaveBody(emp.ID, ""))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp = decode[validationResponse](t, rec)
	assert.Equal(t, []string{"body", "reason"}, resp.Detail[0].Loc)
}

func TestLeaves_StartAfterEndAccepted(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	emp := createEmployee(t, router, "backwards@example.com")

	body := leaveBody(emp.ID, "time travel")
	body["start_date"], body["end_date"] = body["end_date"], body["start_date"]
	rec := do(t, router, http.MethodPost, "/leaves/", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDeleteEmployeeRemovesLeaves(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	emp := createEmployee(t, router, "gone@example.com")
	for _, reason := range []string{"one", "two"} {
		rec := do(t, router, http.MethodPost, "/leaves/", leaveBody(emp.ID, reason))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, router, http.MethodDelete, fmt.Sprintf("/employees/%d", emp.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/leaves/%d", emp.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})

	rec := do(t, router, http.MethodGet, "/", nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, RouterOptions{CORSOrigins: []string{"https://hr.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/employees/", http.NoBody)
	req.Header.Set("Origin", "https://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://hr.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, RouterOptions{RateLimit: 1})

	rec := do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"detail":"Too Many Requests"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	rec := do(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	h := NewHandler(&failingEmployees{}, nil, func(context.Context) error { return errors.New("db is down") }, testLogger())
	rec = do(t, h.Router(RouterOptions{}), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSchemas(t *testing.T) {
	router := newTestRouter(t, RouterOptions{})
	rec := do(t, router, http.MethodGet, "/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	schemas := decode[map[string]map[string]any](t, rec)
	for _, name := range []string{"EmployeeCreate", "Employee", "LeaveRequestCreate", "LeaveRequest", "ValidationError"} {
		assert.Contains(t, schemas, name)
	}
	props, ok := schemas["EmployeeCreate"]["properties"].(map[string]any)
	require.True(t, ok)
	department, ok := props["department"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"IT", "HR", "Finance", "Sales", "Marketing"}, department["enum"])
}

type failingEmployees struct{}

func (failingEmployees) CreateEmployee(context.Context, service.EmployeeInput) (*models.Employee, error) {
	return nil, errors.New("connection reset")
}

func (failingEmployees) ListEmployees(context.Context) ([]models.Employee, error) {
	return nil, errors.New("connection reset")
}

func (failingEmployees) GetEmployee(context.Context, uint) (*models.Employee, error) {
	panic("driver exploded")
}

func (failingEmployees) UpdateEmployee(context.Context, uint, service.EmployeeInput) (*models.Employee, error) {
	return nil, errors.New("connection reset")
}

func (failingEmployees) DeleteEmployee(context.Context, uint) error {
	return errors.New("connection reset")
}

func TestUnexpectedErrors(t *testing.T) {
	h := NewHandler(failingEmployees{}, nil, func(context.Context) error { return nil }, testLogger())
	router := h.Router(RouterOptions{})

	rec := do(t, router, http.MethodGet, "/employees/", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/employees/1", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-07-01T09:30:00Z", want: "2025-07-01T09:30:00Z"},
		{in: "2025-07-01T09:30:00+02:00", want: "2025-07-01T07:30:00Z"},
		{in: "2025-07-01T09:30:00", want: "2025-07-01T09:30:00Z"},
		{in: "2025-07-01T09:30:00.250", want: "2025-07-01T09:30:00.25Z"},
		{in: "2025-07-01 09:30:00", want: "2025-07-01T09:30:00Z"},
		{in: "2025-07-01", want: "2025-07-01T00:00:00Z"},
		{in: "07/01/2025", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02T15:04:05.999999999Z07:00"))
		})
	}
}

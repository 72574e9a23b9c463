package service

import (
	"context"
	"errors"
	"fmt"

	"employee-management/internal/models"
	"employee-management/internal/repository"

	"github.com/sirupsen/logrus"
)

// EmployeeInput carries every mutable employee field. Updates replace all of them.
type EmployeeInput struct {
	Name       string
	Email      string
	Department models.Department
	Role       models.Role
	Salary     float64
}

func (in EmployeeInput) apply(e *models.Employee) {
	e.Name = in.Name
	e.Email = in.Email
	e.Department = in.Department
	e.Role = in.Role
	e.Salary = in.Salary
}

type EmployeeService struct {
	store  repository.Store
	logger *logrus.Logger
}

func NewEmployeeService(store repository.Store, logger *logrus.Logger) *EmployeeService {
	return &EmployeeService{store: store, logger: logger}
}

// CreateEmployee stores a new employee. The email must not belong to anyone else.
func (s *EmployeeService) CreateEmployee(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	employee := &models.Employee{}
	in.apply(employee)
	if err := validateEmployee(employee); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		taken, err := tx.Employees().ExistsByEmail(employee.Email, 0)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		return tx.Employees().Create(employee)
	})
	if err != nil {
		return nil, s.classify(err, "create employee")
	}

	s.logger.WithFields(logrus.Fields{
		"id":         employee.ID,
		"department": employee.Department,
		"role":       employee.Role,
	}).Info("Employee created")
	return employee, nil
}

// ListEmployees returns every employee ordered by id
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.store.WithContext(ctx).Employees().GetAll()
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.store.WithContext(ctx).Employees().GetByID(id)
	if err != nil {
		return nil, s.classify(err, "get employee")
	}
	return employee, nil
}

// UpdateEmployee replaces all mutable fields of an existing employee
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uint, in EmployeeInput) (*models.Employee, error) {
	var employee *models.Employee
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		employee, err = tx.Employees().GetByID(id)
		if err != nil {
			return err
		}

		in.apply(employee)
		if err := validateEmployee(employee); err != nil {
			return err
		}

		taken, err := tx.Employees().ExistsByEmail(employee.Email, employee.ID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		return tx.Employees().Update(employee)
	})
	if err != nil {
		return nil, s.classify(err, "update employee")
	}

	s.logger.WithField("id", employee.ID).Info("Employee updated")
	return employee, nil
}

// DeleteEmployee removes the employee together with its leave requests
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id uint) error {
	var removedLeaves int64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Employees().GetByID(id); err != nil {
			return err
		}

		var err error
		removedLeaves, err = tx.LeaveRequests().DeleteByEmployeeID(id)
		if err != nil {
			return fmt.Errorf("delete leave requests: %w", err)
		}
		return tx.Employees().Delete(id)
	})
	if err != nil {
		return s.classify(err, "delete employee")
	}

	s.logger.WithFields(logrus.Fields{
		"id":             id,
		"leave_requests": removedLeaves,
	}).Info("Employee deleted")
	return nil
}

// classify maps repository errors to the service errors handlers know about
func (s *EmployeeService) classify(err error, op string) error {
	switch {
	case errors.Is(err, ErrEmailTaken), errors.Is(err, repository.ErrDuplicateKey):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrEmployeeNotFound
	case errors.Is(err, ErrInvalidInput):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validateEmployee(e *models.Employee) error {
	if e.IsValid() {
		return nil
	}
	if _, err := models.ParseDepartment(string(e.Department)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := models.ParseRole(string(e.Role)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: name and email are required", ErrInvalidInput)
}

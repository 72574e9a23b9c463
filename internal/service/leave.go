package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"employee-management/internal/models"
	"employee-management/internal/repository"

	"github.com/sirupsen/logrus"
)

// LeaveRequestInput is the client supplied part of a leave request.
// EmployeeID is only used on creation, a request never changes owner.
type LeaveRequestInput struct {
	EmployeeID uint
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

type LeaveService struct {
	store  repository.Store
	logger *logrus.Logger
}

func NewLeaveService(store repository.Store, logger *logrus.Logger) *LeaveService {
	return &LeaveService{store: store, logger: logger}
}

// CreateLeaveRequest files a new pending request for an existing employee.
// The dates are stored as given, start after end is accepted.
func (s *LeaveService) CreateLeaveRequest(ctx context.Context, in LeaveRequestInput) (*models.LeaveRequest, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	request := &models.LeaveRequest{
		EmployeeID: in.EmployeeID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Reason:     in.Reason,
		Status:     models.LeaveStatusPending,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Employees().GetByID(in.EmployeeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownEmployee
			}
			return fmt.Errorf("get employee: %w", err)
		}
		return tx.LeaveRequests().Create(request)
	})
	if err != nil {
		return nil, s.classify(err, "create leave request")
	}

	s.logger.WithFields(logrus.Fields{
		"id":          request.ID,
		"employee_id": request.EmployeeID,
	}).Info("Leave request created")
	return request, nil
}

// ListLeaveRequests returns the employee's requests, empty when there are none
func (s *LeaveService) ListLeaveRequests(ctx context.Context, employeeID uint) ([]models.LeaveRequest, error) {
	requests, err := s.store.WithContext(ctx).LeaveRequests().GetByEmployeeID(employeeID)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, nil
}

// UpdateLeaveRequest replaces dates and reason. Status and owner stay as they are.
func (s *LeaveService) UpdateLeaveRequest(ctx context.Context, id uint, in LeaveRequestInput) (*models.LeaveRequest, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	var request *models.LeaveRequest
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.LeaveRequests().GetByID(id)
		if err != nil {
			return err
		}
		request.StartDate = in.StartDate
		request.EndDate = in.EndDate
		request.Reason = in.Reason
		return tx.LeaveRequests().Update(request)
	})
	if err != nil {
		return nil, s.classify(err, "update leave request")
	}

	s.logger.WithField("id", request.ID).Info("Leave request updated")
	return request, nil
}

func (s *LeaveService) DeleteLeaveRequest(ctx context.Context, id uint) error {
	if err := s.store.WithContext(ctx).LeaveRequests().Delete(id); err != nil {
		return s.classify(err, "delete leave request")
	}
	s.logger.WithField("id", id).Info("Leave request deleted")
	return nil
}

func (s *LeaveService) classify(err error, op string) error {
	switch {
	case errors.Is(err, ErrUnknownEmployee), errors.Is(err, repository.ErrForeignKey):
		return ErrUnknownEmployee
	case errors.Is(err, repository.ErrNotFound):
		return ErrLeaveRequestNotFound
	case errors.Is(err, ErrInvalidInput):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

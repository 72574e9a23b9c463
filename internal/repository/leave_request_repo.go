package repository

import (
	"employee-management/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaveRequestRepository interface {
	Create(request *models.LeaveRequest) error
	GetByID(id uint) (*models.LeaveRequest, error)
	GetByEmployeeID(employeeID uint) ([]models.LeaveRequest, error)
	Update(request *models.LeaveRequest) error
	Delete(id uint) error
	DeleteByEmployeeID(employeeID uint) (int64, error)
}

type GormLeaveRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormLeaveRequestRepository(db *gorm.DB, logger *logrus.Logger) *GormLeaveRequestRepository {
	return &GormLeaveRequestRepository{db: db, logger: logger}
}

func (r *GormLeaveRequestRepository) Create(request *models.LeaveRequest) error {
	if request.Status == "" {
		request.Status = models.LeaveStatusPending
	}
	if err := r.db.Create(request).Error; err != nil {
		return translateError(err)
	}
	r.logger.WithFields(logrus.Fields{
		"id":          request.ID,
		"employee_id": request.EmployeeID,
	}).Debug("Leave request created")
	return nil
}

func (r *GormLeaveRequestRepository) GetByID(id uint) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

func (r *GormLeaveRequestRepository) GetByEmployeeID(employeeID uint) ([]models.LeaveRequest, error) {
	requests := []models.LeaveRequest{}
	err := r.db.Where("employee_id = ?", employeeID).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

func (r *GormLeaveRequestRepository) Update(request *models.LeaveRequest) error {
	if request.ID == 0 {
		return ErrNotFound
	}
	if err := r.db.Save(request).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *GormLeaveRequestRepository) Delete(id uint) error {
	result := r.db.Delete(&models.LeaveRequest{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByEmployeeID removes every leave request of an employee and returns how many were removed
func (r *GormLeaveRequestRepository) DeleteByEmployeeID(employeeID uint) (int64, error) {
	result := r.db.Where("employee_id = ?", employeeID).Delete(&models.LeaveRequest{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

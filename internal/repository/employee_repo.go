package repository

import (
	"employee-management/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetAll() ([]models.Employee, error)
	Update(employee *models.Employee) error
	Delete(id uint) error
	ExistsByEmail(email string, excludeID uint) (bool, error)
}

type GormEmployeeRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormEmployeeRepository(db *gorm.DB, logger *logrus.Logger) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db, logger: logger}
}

func (r *GormEmployeeRepository) Create(employee *models.Employee) error {
	if err := r.db.Create(employee).Error; err != nil {
		r.logger.WithError(err).WithField("email", employee.Email).Debug("Failed to create employee")
		return translateError(err)
	}
	r.logger.WithFields(logrus.Fields{
		"id":    employee.ID,
		"email": employee.Email,
	}).Debug("Employee created")
	return nil
}

func (r *GormEmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

func (r *GormEmployeeRepository) GetAll() ([]models.Employee, error) {
	employees := []models.Employee{}
	if err := r.db.Order("id").Find(&employees).Error; err != nil {
		return nil, translateError(err)
	}
	return employees, nil
}

// Update saves every column of an existing employee
func (r *GormEmployeeRepository) Update(employee *models.Employee) error {
	if employee.ID == 0 {
		return ErrNotFound
	}
	if err := r.db.Save(employee).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *GormEmployeeRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Employee{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsByEmail reports whether another employee already uses email.
// excludeID skips the employee being updated, 0 checks all of them.
func (r *GormEmployeeRepository) ExistsByEmail(email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Employee{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

package models

import (
	"time"
)

type Employee struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Department Department `gorm:"type:varchar(20);not null" json:"department"`
	Role       Role       `gorm:"type:varchar(20);not null" json:"role"`
	Salary     float64    `gorm:"not null" json:"salary"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime;not null" json:"updated_at"`

	LeaveRequests []LeaveRequest `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsAdmin reports whether the employee holds the Admin role
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// IsValid checks the fields the database can't check by itself
func (e *Employee) IsValid() bool {
	if e.Name == "" || e.Email == "" {
		return false
	}
	return e.Department.IsValid() && e.Role.IsValid()
}

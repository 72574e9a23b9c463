package models

import "time"

type LeaveRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID uint      `gorm:"not null;index" json:"employee_id"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null" json:"end_date"`
	Reason     string    `gorm:"not null" json:"reason"`
	Status     string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime;not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;not null" json:"updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Leave request statuses. Nothing moves a request out of Pending yet.
const (
	LeaveStatusPending  = "Pending"
	LeaveStatusApproved = "Approved"
	LeaveStatusRejected = "Rejected"
)

// IsPending reports whether the request is still waiting for a decision
func (lr *LeaveRequest) IsPending() bool {
	return lr.Status == LeaveStatusPending
}

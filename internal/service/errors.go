package service

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUnknownEmployee      = errors.New("referenced employee does not exist")
	ErrInvalidInput         = errors.New("invalid input")
)

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForeignKey   = errors.New("foreign key violation")
)

// Store is the persistence handle shared by the process. Transaction hands out
// a Store bound to one transaction, which is the unit of work for a request.
type Store interface {
	Employees() EmployeeRepository
	LeaveRequests() LeaveRequestRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	WithContext(ctx context.Context) Store
}

type GormStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormStore(db *gorm.DB, logger *logrus.Logger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Employees() EmployeeRepository {
	return NewGormEmployeeRepository(s.db, s.logger)
}

func (s *GormStore) LeaveRequests() LeaveRequestRepository {
	return NewGormLeaveRequestRepository(s.db, s.logger)
}

// Transaction runs fn in a single transaction. It commits when fn returns nil,
// rolls back on error or panic, and always releases the connection.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, logger: s.logger})
	})
}

// WithContext returns a Store whose queries are canceled together with ctx
func (s *GormStore) WithContext(ctx context.Context) Store {
	return &GormStore{db: s.db.WithContext(ctx), logger: s.logger}
}

// translateError maps driver and gorm errors to the repository sentinels.
// The string checks cover drivers that gorm can't translate.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "Duplicate entry"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"), strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "a foreign key constraint fails"):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	}
	return err
}

package models

import (
	"fmt"
	"strings"
)

// InvalidEnumError is returned when a value is outside of a closed enumeration.
type InvalidEnumError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("value is not a valid enumeration member; permitted: %s",
		"'"+strings.Join(e.Allowed, "', '")+"'")
}

type Department string

const (
	DepartmentIT        Department = "IT"
	DepartmentHR        Department = "HR"
	DepartmentFinance   Department = "Finance"
	DepartmentSales     Department = "Sales"
	DepartmentMarketing Department = "Marketing"
)

// Departments lists all known departments in declaration order
func Departments() []Department {
	return []Department{DepartmentIT, DepartmentHR, DepartmentFinance, DepartmentSales, DepartmentMarketing}
}

// ParseDepartment matches s exactly against the known departments
func ParseDepartment(s string) (Department, error) {
	for _, d := range Departments() {
		if string(d) == s {
			return d, nil
		}
	}
	allowed := make([]string, 0, len(Departments()))
	for _, d := range Departments() {
		allowed = append(allowed, string(d))
	}
	return "", &InvalidEnumError{Field: "department", Value: s, Allowed: allowed}
}

func (d Department) IsValid() bool {
	_, err := ParseDepartment(string(d))
	return err == nil
}

func (d Department) String() string {
	return string(d)
}

// UnmarshalText rejects unknown departments while decoding requests
func (d *Department) UnmarshalText(text []byte) error {
	v, err := ParseDepartment(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
)

func Roles() []Role {
	return []Role{RoleAdmin, RoleEmployee}
}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", &InvalidEnumError{Field: "role", Value: s, Allowed: []string{string(RoleAdmin), string(RoleEmployee)}}
}

func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

func (r *Role) UnmarshalText(text []byte) error {
	v, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

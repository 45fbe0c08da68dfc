package models

import (
	"fmt"
	"strings"
)

// Role represents the available roles for the RBAC system.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole converts any casing to the canonical role.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Department is the category an admin moderates. It shares the tag set.
type Department string

var departmentAliases = map[string]Tag{
	"roadworks":    TagRoad,
	"roads":        TagRoad,
	"water supply": TagWater,
}

// ParseDepartment accepts tag names in any casing plus the legacy form
// labels "Roadworks" and "Water Supply".
func ParseDepartment(raw string) (Department, error) {
	if tag, err := ParseTag(raw); err == nil {
		return Department(tag), nil
	}
	if tag, ok := departmentAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return Department(tag), nil
	}
	return "", fmt.Errorf("unknown department %q", raw)
}

// Covers reports whether an admin of this department may moderate tag.
func (d Department) Covers(tag Tag) bool {
	return string(d) == string(tag)
}

func (d Department) String() string { return string(d) }

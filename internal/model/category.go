package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a string does not name a known category.
var ErrInvalidCategory = errors.New("invalid category")

// Category is the closed set of task categories. The string value is the
// persisted form.
type Category string

const (
	CategoryStudy    Category = "study"
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryUrgent   Category = "urgent"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryStudy, CategoryPersonal, CategoryWork, CategoryUrgent}
}

// ParseCategory accepts the persisted value in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryStudy, CategoryPersonal, CategoryWork, CategoryUrgent:
		return true
	}
	return false
}

// DisplayName is the human label shown by the UI.
func (c Category) DisplayName() string {
	switch c {
	case CategoryStudy:
		return "Study"
	case CategoryPersonal:
		return "Personal"
	case CategoryWork:
		return "Work"
	case CategoryUrgent:
		return "Urgent"
	}
	return string(c)
}

// Color is an ANSI 256 palette index used to tint the category badge.
func (c Category) Color() string {
	switch c {
	case CategoryStudy:
		return "12" // blue
	case CategoryPersonal:
		return "42" // green
	case CategoryWork:
		return "214" // amber
	case CategoryUrgent:
		return "9" // red
	}
	return "8"
}

func (c Category) String() string { return string(c) }

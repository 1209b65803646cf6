package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAccessLevel = errors.New("invalid access level")

// AccessLevel is the permission strength a user holds on a page.
type AccessLevel string

const (
	AccessRead      AccessLevel = "R"
	AccessReadWrite AccessLevel = "RW"
)

// ReadLevels are the levels that satisfy read-only endpoints.
func ReadLevels() []AccessLevel {
	return []AccessLevel{AccessRead, AccessReadWrite}
}

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessRead, AccessReadWrite:
		return true
	}
	return false
}

func (l AccessLevel) String() string {
	return string(l)
}

// In returns true if the level is a member of the given set.
func (l AccessLevel) In(levels ...AccessLevel) bool {
	for _, candidate := range levels {
		if l == candidate {
			return true
		}
	}
	return false
}

// AccessEntry pairs a page name with the level granted on it. The page name
// is matched case-insensitively against the page registry.
type AccessEntry struct {
	Page  string      `json:"page"`
	Level AccessLevel `json:"level"`
}

func NewAccessEntry(page string, level AccessLevel) (AccessEntry, error) {
	if strings.TrimSpace(page) == "" {
		return AccessEntry{}, errors.New("page name is required")
	}
	if !level.Valid() {
		return AccessEntry{}, fmt.Errorf("%w: %q", ErrInvalidAccessLevel, level)
	}
	return AccessEntry{Page: page, Level: level}, nil
}

// FieldName is the derived column name for the page: lower-cased, spaces
// replaced with underscores ("User Profile" -> "user_profile").
func (e AccessEntry) FieldName() string {
	return NormalizePageField(e.Page)
}

func NormalizePageField(pageName string) string {
	return strings.ReplaceAll(strings.ToLower(pageName), " ", "_")
}

// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// MSSV is a student number issued by the university (mã số sinh viên).
type MSSV string

// Student numbers are 8 digits, e.g. 21520001.
var mssvRegex = regexp.MustCompile(`^\d{8}$`)

// IsValid checks if the student number has the expected format.
func (m MSSV) IsValid() bool {
	return mssvRegex.MatchString(string(m))
}

// String returns the string representation.
func (m MSSV) String() string {
	return string(m)
}

// NewMSSV creates a new MSSV with validation.
func NewMSSV(s string) (MSSV, error) {
	m := MSSV(strings.TrimSpace(s))
	if !m.IsValid() {
		return "", ErrInvalidMSSV
	}
	return m, nil
}

// CourseCode identifies a course, e.g. "IT001" or "NT106.P11".
type CourseCode string

// Normalize returns the upper-cased code without surrounding blanks.
func (c CourseCode) Normalize() CourseCode {
	return CourseCode(strings.ToUpper(strings.TrimSpace(string(c))))
}

// String returns the string representation.
func (c CourseCode) String() string {
	return string(c)
}

// HasPrefix reports whether c starts with prefix. Lab sections share the
// theory section's code as a prefix (NT106.P11 / NT106.P11.1).
func (c CourseCode) HasPrefix(prefix CourseCode) bool {
	return prefix != "" && strings.HasPrefix(string(c), string(prefix))
}

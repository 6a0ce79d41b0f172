// Package timeutil provides timezone utilities for Vietnam time (UTC+7).
// All semester dates are reckoned in the university's local time.
package timeutil

import (
	"time"
)

// VietnamTZ is the Indochina timezone (UTC+7, no DST).
var VietnamTZ = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)

// ToVietnam converts a time to Vietnam timezone.
func ToVietnam(t time.Time) time.Time {
	return t.In(VietnamTZ)
}

// Date creates a time in Vietnam timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, VietnamTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Vietnam timezone.
func EndOfDay(t time.Time) time.Time {
	vn := ToVietnam(t)
	return time.Date(vn.Year(), vn.Month(), vn.Day(), 23, 59, 59, 999999999, VietnamTZ)
}

// ─────────────────────────────────────────────────────────────────────────────
// Academic calendar
// ─────────────────────────────────────────────────────────────────────────────

// SemesterWindow returns the nominal start and end of a semester in an
// academic year starting in yearStart. Semester 1 runs Sep 1 to Jan 15,
// semester 2 Feb 15 to Jun 30, semester 3 (summer) Jul 1 to Aug 31.
// ok is false for unknown semester numbers.
func SemesterWindow(number, yearStart int) (start, end time.Time, ok bool) {
	switch number {
	case 1:
		return Date(yearStart, 9, 1), EndOfDay(Date(yearStart+1, 1, 15)), true
	case 2:
		return Date(yearStart+1, 2, 15), EndOfDay(Date(yearStart+1, 6, 30)), true
	case 3:
		return Date(yearStart+1, 7, 1), EndOfDay(Date(yearStart+1, 8, 31)), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Formatting & parsing
// ─────────────────────────────────────────────────────────────────────────────

// LayoutDate is the date layout used by the portal.
const LayoutDate = "02-01-2006"

// FormatDateStr formats a time as dd-mm-yyyy in Vietnam timezone.
func FormatDateStr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ToVietnam(t).Format(LayoutDate)
}

// ParseDateVN parses a dd-mm-yyyy or dd/mm/yyyy date in Vietnam timezone.
func ParseDateVN(value string) (time.Time, error) {
	t, err := time.ParseInLocation(LayoutDate, value, VietnamTZ)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("02/01/2006", value, VietnamTZ)
}

package ledger

import (
	"math"
	"strconv"
	"strings"
)

// PassThreshold is the minimum total score of a passed course, inclusive.
const PassThreshold = 4.0

// ParseNumber converts cell text to a number. Empty or non-numeric text
// yields nil. A decimal comma is accepted.
func ParseNumber(text string) *float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseCredits converts a credits cell to an integer; missing, negative,
// fractional or malformed values count as 0.
func ParseCredits(text string) int {
	s := strings.TrimSpace(text)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	if v := ParseNumber(s); v != nil && *v >= 0 && *v == math.Trunc(*v) {
		return int(*v)
	}
	return 0
}

// IsExemptText reports whether text is the exemption marker.
func IsExemptText(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), ExemptMarker)
}

// ParseTotalScore reads the total-score cell: the exemption marker, a
// number, or nothing.
func ParseTotalScore(text string) TotalScore {
	if IsExemptText(text) {
		return ExemptScore()
	}
	return TotalScore{Value: ParseNumber(text)}
}

// ClassifyStatus derives a course status from its total-score text.
func ClassifyStatus(scoreText string) Status {
	return ClassifyScore(ParseTotalScore(scoreText))
}

// ClassifyScore derives a course status from a parsed total score.
func ClassifyScore(t TotalScore) Status {
	switch {
	case t.Exempt:
		return StatusCompletedExempt
	case t.Value == nil:
		return StatusNotYetCompleted
	case *t.Value >= PassThreshold:
		return StatusPassed
	default:
		return StatusFailed
	}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }

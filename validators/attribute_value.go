// Package validators checks raw attribute values against declared attribute types.
package validators

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/projectdesk/models"
)

var numericLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// IsNumeric reports whether raw is a plain integer or decimal literal with an
// optional sign and exponent. Surrounding whitespace is ignored.
func IsNumeric(raw string) bool {
	return numericLiteral.MatchString(strings.TrimSpace(raw))
}

// IsDate reports whether raw parses as a calendar date or timestamp.
func IsDate(raw string) bool {
	_, err := ParseDate(raw)
	return err == nil
}

var errNotDate = errors.New("not a date")

// relativeDays are the day keywords accepted besides absolute dates
var relativeDays = map[string]int{
	"today":     0,
	"tomorrow":  1,
	"yesterday": -1,
}

// ParseDate parses a calendar date or timestamp. Slash dates are read month
// first; impossible days such as 2025-02-30 are rejected. Times without a
// zone are taken as UTC.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errNotDate
	}

	keyword := strings.ToLower(trimmed)
	if keyword == "now" {
		return now().UTC(), nil
	}
	if offset, ok := relativeDays[keyword]; ok {
		y, m, d := now().UTC().Date()
		return time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC), nil
	}

	if !strings.ContainsAny(trimmed, "0123456789") {
		return time.Time{}, errNotDate
	}
	return dateparse.ParseIn(trimmed, time.UTC, dateparse.PreferMonthFirst(true))
}

var now = time.Now

// ValidateAttributeValue reports whether raw may be stored for an attribute of
// the given type. Unknown types never validate.
//
// select has no option set to check against, so any non-empty string passes.
func ValidateAttributeValue(typ models.AttributeType, raw string) bool {
	switch typ {
	case models.AttributeTypeNumber:
		return IsNumeric(raw)
	case models.AttributeTypeDate:
		return IsDate(raw)
	case models.AttributeTypeText:
		return true
	case models.AttributeTypeSelect:
		return raw != ""
	default:
		return false
	}
}

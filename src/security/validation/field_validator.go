// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/protrade/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

// Constants for lengths remain here
const (
	DefaultMaxStringLength = 255
	MaxAssetLength         = 20
	MaxStrategyLength      = 255
	MaxLabelLength         = 120
	MaxTitleLength         = 120
	MaxTextValueLength     = 4096
	MaxObservationsLength  = 4096
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// ValidateAlphanumericWithSpaces checks if a string contains only letters, numbers, and spaces.
func ValidateAlphanumericWithSpaces(s, fieldName string) error {
	pattern := regexp.MustCompile(`^[a-zA-Z0-9 ]*$`)
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: o campo '%s' deve conter apenas letras, números e espaços", ErrValidationFailed, fieldName)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateFloatRange checks a float against a closed range.
func ValidateFloatRange(val float64, fieldName string, allowNegative bool, minVal, maxVal float64) error {
	if !allowNegative && val < 0 {
		logger.L.Warn("Negative value not allowed for field", "field", fieldName, "value", val)
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if val < minVal || val > maxVal {
		logger.L.Warn("Float value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return fmt.Errorf("%w: %s must be between %.2f and %.2f, got %.2f", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return nil
}

// ValidateIntRange checks an int against a closed range.
func ValidateIntRange(val int, fieldName string, minVal, maxVal int) error {
	if val < minVal || val > maxVal {
		logger.L.Warn("Integer value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return nil
}

// ValidateScore checks a 0-10 scale (clarity, stress).
func ValidateScore(val int, fieldName string) error {
	return ValidateIntRange(val, fieldName, 0, 10)
}

// ValidatePercentScore checks a 0-100 scale (discipline).
func ValidatePercentScore(val int, fieldName string) error {
	return ValidateIntRange(val, fieldName, 0, 100)
}

// --- Date Validator ---

// ValidateDateString checks if a string is a valid date in "YYYY-MM-DD" format
// (the wire format the frontend stores for trades and mindset entries).
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, fieldName, s, err)
	}
	if t.Format("2006-01-02") != trimmed {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// --- Specific Format Validators ---

var assetRegex = regexp.MustCompile(`^[A-Z0-9]{1,20}$`)

// ValidateAsset checks the ticker symbol format (WINM24, PETR4, BTC...).
func ValidateAsset(s string) error {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if err := ValidateStringNotEmpty(trimmed, "Ativo"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxAssetLength, "Ativo"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, assetRegex, "Ativo", "letters and digits only")
}

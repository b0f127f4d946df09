package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidAreaCode indicates the area code starts with 0 or 1
	ErrInvalidAreaCode = errors.New("area code cannot start with 0 or 1")

	// ErrInvalidExchange indicates the exchange code starts with 0 or 1
	ErrInvalidExchange = errors.New("exchange code cannot start with 0 or 1")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles phone number validation for guardian and driver contacts
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a North American phone number.
// Accepts format: 2125550142, (212) 555-0142, 212.555.0142 or +1 212 555 0142.
// Returns sanitized phone number (digits only) and error if invalid
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if sanitized[0] == '0' || sanitized[0] == '1' {
		return "", ErrInvalidAreaCode
	}

	if sanitized[3] == '0' || sanitized[3] == '1' {
		return "", ErrInvalidExchange
	}

	return sanitized, nil
}

// Sanitize removes separators and the leading country code
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")
	phone = replacer.Replace(phone)

	// Remove country code if present (1)
	if strings.HasPrefix(phone, "1") && len(phone) == 11 {
		phone = phone[1:]
	}

	return phone
}

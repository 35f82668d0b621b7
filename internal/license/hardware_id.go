package license

import (
	"regexp"
	"strings"
)

// HardwareIDLength is the exact length of a customer hardware identifier
const HardwareIDLength = 16

// ValidateHardwareID reports whether id is exactly 16 hexadecimal characters.
// Lowercase letters are accepted; callers normalize before deriving.
func ValidateHardwareID(id string) bool {
	if id == "" || len(id) != HardwareIDLength {
		return false
	}
	for _, c := range strings.ToUpper(id) {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// NormalizeHardwareID trims surrounding whitespace and uppercases the id
func NormalizeHardwareID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

var accessCodePattern = regexp.MustCompile(`^[0-9A-F]{1,4}(-[0-9A-F]{1,4})+$`)

// ValidateAccessCode reports whether code has the shape of a derived access code:
// 8 to 15 characters of uppercase hexadecimal groups joined by '-'.
func ValidateAccessCode(code string) bool {
	if len(code) < minCodeLength || len(code) > maxCodeLength {
		return false
	}
	return accessCodePattern.MatchString(code)
}

// MaskAccessCode hides the middle of an access code for logging
func MaskAccessCode(code string) string {
	if len(code) <= 8 {
		return "****"
	}
	return code[:4] + "-****-" + code[len(code)-4:]
}

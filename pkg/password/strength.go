// Package password classifies password strength. The signup form refuses
// anything below Strong; the server applies the same rule so the contract
// holds even for clients that skip local validation.
package password

import "unicode"

type Tier string

const (
	TierEmpty  Tier = "empty"
	TierWeak   Tier = "weak"
	TierMedium Tier = "medium"
	TierStrong Tier = "strong"
)

// Classify scores a password by the character classes present. Anything
// shorter than 8 runes is weak regardless of classes; 2 classes is medium,
// 3 or more is strong.
func Classify(pw string) Tier {
	if pw == "" {
		return TierEmpty
	}
	if len([]rune(pw)) < 8 {
		return TierWeak
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	score := 0
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if ok {
			score++
		}
	}

	switch {
	case score >= 3:
		return TierStrong
	case score == 2:
		return TierMedium
	default:
		return TierWeak
	}
}

// Package strength scores passwords on a 0-100 scale by summing independent
// bonuses and classifies the score into weak, medium and strong tiers.
package strength

import "unicode/utf16"

// Tier is the coarse classification of a password score.
type Tier string

const (
	TierWeak   Tier = "weak"
	TierMedium Tier = "medium"
	TierStrong Tier = "strong"
)

// Bonus weights. Their sum is exactly MaxScore.
const (
	BonusLength = 30
	BonusUpper  = 20
	BonusLower  = 20
	BonusDigit  = 15
	BonusSymbol = 15

	MinLength = 8
	MaxScore  = 100

	// MediumThreshold is also the minimum score a password needs to be
	// accepted for submission.
	MediumThreshold = 40
	StrongThreshold = 80
)

// PasswordStrength is derived from the password on every change and never
// stored.
type PasswordStrength struct {
	Score int  `json:"score"`
	Tier  Tier `json:"tier"`
}

// Eligible reports whether the password may be submitted (medium or better).
func (p PasswordStrength) Eligible() bool {
	return p.Score >= MediumThreshold
}

// Label returns the pt-BR label shown next to the password field.
func (p PasswordStrength) Label() string {
	return p.Tier.Label()
}

// Label returns the pt-BR label of the tier.
func (t Tier) Label() string {
	switch t {
	case TierStrong:
		return "Senha forte"
	case TierMedium:
		return "Senha média"
	default:
		return "Senha fraca"
	}
}

// Score computes the clamped 0-100 score. Length is counted in UTF-16 code
// units and the letter and digit classes are ASCII only, so any other
// character (accented letters included) counts as a symbol.
func Score(password string) int {
	var upper, lower, digit, symbol bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	score := 0
	if len(utf16.Encode([]rune(password))) >= MinLength {
		score += BonusLength
	}
	if upper {
		score += BonusUpper
	}
	if lower {
		score += BonusLower
	}
	if digit {
		score += BonusDigit
	}
	if symbol {
		score += BonusSymbol
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Classify maps a score to its tier.
func Classify(score int) Tier {
	switch {
	case score < MediumThreshold:
		return TierWeak
	case score < StrongThreshold:
		return TierMedium
	default:
		return TierStrong
	}
}

// Evaluate scores and classifies password.
func Evaluate(password string) PasswordStrength {
	score := Score(password)
	return PasswordStrength{Score: score, Tier: Classify(score)}
}

package password

import (
	"fmt"
	"unicode"
)

// Reason identifies why a candidate password was rejected by the policy.
type Reason string

const (
	// ReasonTooShort indicates the candidate is below the minimum length.
	ReasonTooShort Reason = "too_short"
	// ReasonTooWeak indicates the candidate misses a required character
	// class or contains characters outside the allowed set.
	ReasonTooWeak Reason = "too_weak"
)

// PolicyError reports a password policy violation with a specific reason.
type PolicyError struct {
	Reason    Reason
	MinLength int
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ReasonTooShort:
		return fmt.Sprintf("password must be at least %d characters", e.MinLength)
	default:
		return "password must contain a letter, a digit and a punctuation character"
	}
}

// Policy validates password strength before hashing.
type Policy struct {
	MinLength int
}

// DefaultPolicy returns the policy applied when the caller does not
// override it.
func DefaultPolicy() Policy {
	return Policy{MinLength: 8}
}

// Validate checks the candidate against the policy. It returns a
// *PolicyError describing the first violation, or nil when the candidate
// is acceptable.
//
// A candidate passes when it is at least MinLength runes long, contains at
// least one letter, one digit and one punctuation or symbol character, and
// contains nothing outside those classes.
func (p Policy) Validate(candidate string) error {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = DefaultPolicy().MinLength
	}

	runes := []rune(candidate)
	if len(runes) < minLength {
		return &PolicyError{Reason: ReasonTooShort, MinLength: minLength}
	}

	var hasLetter, hasDigit, hasPunct bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasPunct = true
		default:
			return &PolicyError{Reason: ReasonTooWeak, MinLength: minLength}
		}
	}

	if !hasLetter || !hasDigit || !hasPunct {
		return &PolicyError{Reason: ReasonTooWeak, MinLength: minLength}
	}

	return nil
}

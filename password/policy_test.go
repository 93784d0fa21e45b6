package password

import (
	"errors"
	"testing"
)

func TestPolicyAccepts(t *testing.T) {
	policy := DefaultPolicy()

	for _, candidate := range []string{"password1_", "Str0ng!pass", "a1!bcdef"} {
		if err := policy.Validate(candidate); err != nil {
			t.Fatalf("expected %q to be accepted, got %v", candidate, err)
		}
	}
}

func TestPolicyTooShort(t *testing.T) {
	policy := DefaultPolicy()

	err := policy.Validate("short1!")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if policyErr.Reason != ReasonTooShort {
		t.Fatalf("expected ReasonTooShort, got %q", policyErr.Reason)
	}
}

func TestPolicyTooWeak(t *testing.T) {
	policy := DefaultPolicy()

	cases := []string{
		"password",
		"password1",
		"password_",
		"password1_ with space",
		"PASSWORDS",
		"12345678!",
	}

	for _, candidate := range cases {
		err := policy.Validate(candidate)
		var policyErr *PolicyError
		if !errors.As(err, &policyErr) {
			t.Fatalf("expected PolicyError for %q, got %v", candidate, err)
		}
		if policyErr.Reason != ReasonTooWeak {
			t.Fatalf("expected ReasonTooWeak for %q, got %q", candidate, policyErr.Reason)
		}
	}
}

func TestPolicyZeroValueUsesDefaultMinLength(t *testing.T) {
	var policy Policy

	err := policy.Validate("short1!")
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if policyErr.MinLength != 8 {
		t.Fatalf("expected default min length 8, got %d", policyErr.MinLength)
	}
}

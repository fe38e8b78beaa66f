package gameerrors

import (
	"fmt"
	"testing"
)

func TestIsRuleViolation(t *testing.T) {
	violations := []error{
		ErrInsufficientResource,
		ErrAbilityOnCooldown,
		ErrInvalidTarget,
		ErrInvalidCard,
		ErrNoPendingEvent,
		ErrEventResolved,
		ErrNoChallenge,
	}
	for _, err := range violations {
		if !IsRuleViolation(err) {
			t.Errorf("%v must count as a rule violation", err)
		}
	}

	// Wrapped sentinels still match.
	wrapped := fmt.Errorf("%w: requires 2 treasure", ErrInsufficientResource)
	if !IsRuleViolation(wrapped) {
		t.Error("wrapped rule violation must still match")
	}

	for _, err := range []error{ErrNotYourTurn, ErrMatchNotActive, ErrMatchNotFound, ErrUnauthenticated, ErrDeckExhausted} {
		if IsRuleViolation(err) {
			t.Errorf("%v must not count as a rule violation", err)
		}
	}
}

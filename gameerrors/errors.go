package gameerrors

import "errors"

// Rule-violation and authorization sentinel errors. Shared by the game, ws and
// api packages to avoid circular imports. Rule violations leave match state
// untouched so the acting participant may retry.
var (
	ErrNotYourTurn          = errors.New("not your turn")
	ErrMatchNotActive       = errors.New("match is not active")
	ErrMatchNotFound        = errors.New("match not found")
	ErrInsufficientResource = errors.New("not enough mana")
	ErrAbilityOnCooldown    = errors.New("ability on cooldown")
	ErrInvalidTarget        = errors.New("invalid target")
	ErrInvalidCard          = errors.New("invalid card")
	ErrNoPendingEvent       = errors.New("no event to resolve")
	ErrEventResolved        = errors.New("event already resolved")
	ErrNoChallenge          = errors.New("no challenge in this room")

	// ErrDeckExhausted is fatal for the match: both deck and discard pile are
	// empty, which construction invariants should make unreachable.
	ErrDeckExhausted = errors.New("deck and discard pile exhausted")

	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrNotAuthorizedForMatch  = errors.New("not authorized for this match")
)

// IsRuleViolation reports whether err is a retryable rule violation: the match
// state is unchanged and the turn did not advance.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrInsufficientResource) ||
		errors.Is(err, ErrAbilityOnCooldown) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidCard) ||
		errors.Is(err, ErrNoPendingEvent) ||
		errors.Is(err, ErrEventResolved) ||
		errors.Is(err, ErrNoChallenge)
}

package bigtwo

import "errors"

// ErrorKind is the typed error enum surfaced to RPC callers (spec §6.1,
// §7). It serializes directly as the `error` field of a failed
// PlayCards/PlayerPass response.
type ErrorKind string

// Precondition errors (4xx-class): final, caller must not retry without
// changing input.
const (
	ErrKindRoomNotFound               ErrorKind = "RoomNotFound"
	ErrKindNotAMember                 ErrorKind = "NotAMember"
	ErrKindStateMissing               ErrorKind = "StateMissing"
	ErrKindNotYourTurn                ErrorKind = "NotYourTurn"
	ErrKindGameNotActive              ErrorKind = "GameNotActive"
	ErrKindCardNotInHand              ErrorKind = "CardNotInHand"
	ErrKindInvalidCombination         ErrorKind = "InvalidCombination"
	ErrKindMustLeadWithThreeOfDiamond ErrorKind = "MustLeadWithThreeOfDiamonds"
	ErrKindCannotBeat                 ErrorKind = "CannotBeat"
	ErrKindMustPlayHighestBeating     ErrorKind = "MustPlayHighestBeatingSingle"
	ErrKindCannotPassWhenLeading      ErrorKind = "CannotPassWhenLeading"
)

// Concurrency error.
const ErrKindConcurrentUpdate ErrorKind = "ConcurrentUpdate"

// Transient errors (5xx-class): retried with backoff, surfaced only
// after the retry budget is exhausted.
const (
	ErrKindStoreUnavailable ErrorKind = "StoreUnavailable"
	ErrKindTimeoutExceeded  ErrorKind = "TimeoutExceeded"
)

// Consistency faults: should be unreachable, logged at error severity,
// returned to the caller as opaque internal errors.
const (
	ErrKindStateCorrupt ErrorKind = "StateCorrupt"
	ErrKindSeatMissing  ErrorKind = "SeatMissing"
	ErrKindHandCorrupt  ErrorKind = "HandCorrupt"
)

// GameError pairs an ErrorKind with a human-readable detail and,
// optionally, data the client needs to self-correct (e.g. the card
// required by MustPlayHighestBeatingSingle).
type GameError struct {
	Kind    ErrorKind
	Detail  string
	Card    *Card
	wrapped error
}

func (e *GameError) Error() string {
	if e.Detail != "" {
		return string(e.Kind) + ": " + e.Detail
	}
	return string(e.Kind)
}

func (e *GameError) Unwrap() error {
	return e.wrapped
}

// NewGameError builds a GameError of the given kind with a detail
// message.
func NewGameError(kind ErrorKind, detail string) *GameError {
	return &GameError{Kind: kind, Detail: detail}
}

// NewRequiredCardError builds a MustPlayHighestBeatingSingle error
// naming the card the actor was required to play.
func NewRequiredCardError(required Card) *GameError {
	return &GameError{
		Kind:   ErrKindMustPlayHighestBeating,
		Detail: "must play the highest beating single: " + required.String(),
		Card:   &required,
	}
}

// KindOf extracts the ErrorKind from err, if it is (or wraps) a
// *GameError, which keeps its own kind. Any other error maps to the
// opaque StateCorrupt kind so callers never leak internals to clients.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ErrKindStateCorrupt
}

// ErrConcurrentUpdate is returned by a store's ConditionalUpdateGameState
// when the expected version no longer matches.
var ErrConcurrentUpdate = errors.New("bigtwo: concurrent update, version mismatch")

// ErrLeaseNotAcquired names a failed bot-lease acquisition. The store's
// TryAcquireBotLease does not return it: a lease already held by
// another coordinator is reported as (false, nil).
var ErrLeaseNotAcquired = errors.New("bigtwo: lease not acquired")

// ErrLeaseLost is returned internally when a coordinator detects, via a
// conditional write, that its lease has expired mid-run.
var ErrLeaseLost = errors.New("bigtwo: lease lost mid-run")

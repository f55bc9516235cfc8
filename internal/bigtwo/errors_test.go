package bigtwo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGameError_ErrorIncludesDetailWhenPresent(t *testing.T) {
	err := NewGameError(ErrKindNotYourTurn, "seat 2 acted out of turn")
	require.Equal(t, "NotYourTurn: seat 2 acted out of turn", err.Error())
}

func TestGameError_ErrorOmitsDetailWhenEmpty(t *testing.T) {
	err := NewGameError(ErrKindCannotPassWhenLeading, "")
	require.Equal(t, "CannotPassWhenLeading", err.Error())
}

func TestNewRequiredCardError_CarriesTheCard(t *testing.T) {
	required := NewCard(Four, Diamonds)
	err := NewRequiredCardError(required)
	require.Equal(t, ErrKindMustPlayHighestBeating, err.Kind)
	require.NotNil(t, err.Card)
	require.True(t, err.Card.Equal(required))
}

func TestKindOf_UnwrapsWrappedGameError(t *testing.T) {
	base := NewGameError(ErrKindCardNotInHand, "")
	wrapped := fmt.Errorf("commit failed: %w", base)
	require.Equal(t, ErrKindCardNotInHand, KindOf(wrapped))
}

func TestKindOf_NonGameErrorMapsToStateCorrupt(t *testing.T) {
	require.Equal(t, ErrKindStateCorrupt, KindOf(errors.New("boom")))
}

func TestKindOf_NilErrorMapsToStateCorrupt(t *testing.T) {
	require.Equal(t, ErrKindStateCorrupt, KindOf(nil))
}

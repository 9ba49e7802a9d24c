package dberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByKindIgnoringMessage(t *testing.T) {
	err := New(KindNotFound, "no such table: users")
	require.True(t, errors.Is(err, NotFound))
	require.False(t, errors.Is(err, OutOfSpace))
}

func TestWrap_UnwrapsUnderlyingError(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, "write page", cause)
	require.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(New(KindTypeMismatch, "bad types"))
	require.True(t, ok)
	require.Equal(t, KindTypeMismatch, kind)

	_, ok = KindOf(errors.New("plain error"))
	require.False(t, ok)
}

package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternalErrorUnwraps(t *testing.T) {
	wrapped := &InternalError{Err: io.ErrUnexpectedEOF}
	require.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
}

func TestErrorMessagesCarryKindAndDetail(t *testing.T) {
	require.Contains(t, (&MalformedInputError{Msg: "bad length"}).Error(), "bad length")
	require.Contains(t, (&CriticalUnknownError{SubpacketType: 99}).Error(), "99")
	require.Contains(t, (&UnsupportedAlgorithmError{Algorithm: 42}).Error(), "42")
}

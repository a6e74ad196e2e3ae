package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RETRYMIGRATE - SUCCESS AFTER FAILURES
func TestRetryMigrate_EventualSuccess(t *testing.T) {
	calls := 0
	attempt := func() error {
		calls++
		if calls < 3 {
			return errors.New("db not ready")
		}
		return nil
	}

	err := retryMigrate(attempt, 5, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

// RETRYMIGRATE - OUT OF RETRIES RETURNS LAST ERROR
func TestRetryMigrate_Exhausted(t *testing.T) {
	calls := 0
	lastErr := errors.New("db not ready")
	attempt := func() error {
		calls++
		return lastErr
	}

	err := retryMigrate(attempt, 3, time.Millisecond)
	require.ErrorIs(t, err, lastErr)
	require.Equal(t, 3, calls)
}

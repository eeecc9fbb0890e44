package progress

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempNonTTYFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "progress-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestNoopDoesNothing(t *testing.T) {
	require.NotPanics(t, func() { Noop("discover", "scanning...") })
}

func TestNewSpinnerDetectsNonTTY(t *testing.T) {
	f := tempNonTTYFile(t)
	s := NewSpinner(f)
	require.False(t, s.isTTY, "a plain temp file must never report as a TTY")
}

func TestSpinnerStartStopNoopWhenNotTTY(t *testing.T) {
	f := tempNonTTYFile(t)
	s := NewSpinner(f)

	s.Start("scanning...")
	require.False(t, s.active, "Start must be a no-op on a non-TTY writer")

	s.Stop("done.")
	require.False(t, s.active)

	info, err := f.Stat()
	require.NoError(t, err)
	require.Zero(t, info.Size(), "non-TTY spinner must never write to its writer")
}

func TestSpinnerUpdateChangesMessage(t *testing.T) {
	f := tempNonTTYFile(t)
	s := NewSpinner(f)

	s.Update("extracting...")

	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	require.Equal(t, "extracting...", msg)
}

func TestSpinnerFuncDelegatesToUpdate(t *testing.T) {
	f := tempNonTTYFile(t)
	s := NewSpinner(f)

	fn := s.Func()
	fn("score", "scoring and ranking...")

	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	require.Equal(t, "scoring and ranking...", msg)
}

func TestSpinnerStopBeforeStartIsSafe(t *testing.T) {
	f := tempNonTTYFile(t)
	s := NewSpinner(f)

	require.NotPanics(t, func() { s.Stop("") })
}

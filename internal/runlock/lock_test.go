package runlock

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracertea/photostamp/internal/logging"
)

func TestAcquire_SecondHolderFails(t *testing.T) {
	target := t.TempDir()
	lockDir := t.TempDir()
	logger := logging.Discard()

	first, err := Acquire(target, lockDir, logger)
	require.NoError(t, err)

	_, err = Acquire(target, lockDir, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another photostamp instance")

	first.Close()

	again, err := Acquire(target, lockDir, logger)
	require.NoError(t, err)
	again.Close()
}

func TestAcquire_DifferentDirectoriesDoNotConflict(t *testing.T) {
	lockDir := t.TempDir()
	logger := logging.Discard()

	a, err := Acquire(t.TempDir(), lockDir, logger)
	require.NoError(t, err)
	defer a.Close()

	b, err := Acquire(t.TempDir(), lockDir, logger)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Path(), b.Path())
	assert.Equal(t, lockDir, filepath.Dir(a.Path()))
}

func TestLockFileName(t *testing.T) {
	name := LockFileName("/photos/2020")

	assert.Equal(t, name, LockFileName("/photos/2020"))
	assert.NotEqual(t, name, LockFileName("/photos/2021"))
	assert.True(t, strings.HasPrefix(name, "photostamp-"))
	assert.True(t, strings.HasSuffix(name, ".lock"))
}

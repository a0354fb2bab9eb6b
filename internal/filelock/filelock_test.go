package filelock

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "test.lock"))
	require.NotNil(t, lock)

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestLockPath(t *testing.T) {
	dir := t.TempDir()
	a := LockPath(filepath.Join(dir, "a.bin"))
	b := LockPath(filepath.Join(dir, "b.bin"))

	assert.Equal(t, a, LockPath(filepath.Join(dir, "a.bin")), "lock path must be stable")
	assert.NotEqual(t, a, b)
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(a))
	assert.True(t, strings.HasSuffix(a, ".lock"))
}

func TestAtomicWriteFrom(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.txt")

	require.NoError(t, AtomicWriteFrom(target, strings.NewReader("hello"), 0o640))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestAtomicWriteFrom_Overwrites(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("old content"), 0o644))

	require.NoError(t, AtomicWriteFrom(target, strings.NewReader("new"), 0o644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLockAndWriteFrom_Concurrent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	const writers = 8
	var wg sync.WaitGroup
	for i := range writers {
		wg.Go(func() {
			payload := strings.Repeat(strconv.Itoa(i), 1024)
			assert.NoError(t, LockAndWriteFrom(target, strings.NewReader(payload), 0o644))
		})
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Len(t, data, 1024)
	assert.Equal(t, strings.Repeat(string(data[0]), 1024), string(data), "file must hold exactly one writer's payload")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no lock or temp files beside the target")
}

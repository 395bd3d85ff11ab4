package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecretFrom(t *testing.T) {
	dir := t.TempDir()

	t.Run("Value is trimmed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  s3cret\n"), 0o600))

		got, err := readSecretFrom(dir, "jwt_secret")

		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := readSecretFrom(dir, "no_such_secret")
		assert.Error(t, err)
	})

	t.Run("Empty file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty_secret"), []byte(" \n"), 0o600))

		_, err := readSecretFrom(dir, "empty_secret")
		assert.Error(t, err)
	})
}

package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestDigest(t *testing.T) {
	expected := blake2b.Sum256([]byte("hello"))

	t.Run("computes blake2b", func(t *testing.T) {
		sum, err := Compute(strings.NewReader("hello"))
		require.NoError(t, err)

		assert.Equal(t, "b2:"+base58.Encode(expected[:]), sum)
	})

	t.Run("hashes files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.tar")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		sum, err := File(path)
		require.NoError(t, err)

		algo, b, err := Parse(sum)
		require.NoError(t, err)

		assert.Equal(t, Algo, algo)
		assert.Equal(t, expected[:], b)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := File(filepath.Join(t.TempDir(), "nope"))
		assert.True(t, os.IsNotExist(errors.Cause(err)))
	})

	t.Run("rejects bad strings", func(t *testing.T) {
		for _, s := range []string{"", "deadbeef", ":abc", "b2:", "b2:0OIl"} {
			_, _, err := Parse(s)
			assert.True(t, errors.Is(err, ErrFormat), s)
		}
	})
}

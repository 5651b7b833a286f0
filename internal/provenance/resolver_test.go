package provenance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleIndex = `title,url
File:my art piece.png,https://commons.example.org/wiki/File:My_art_piece.png
File:Great Wave off Kanagawa.jpg,https://commons.example.org/wiki/File:Great_Wave_off_Kanagawa.jpg
File:Great Wave off Kanagawa.jpg,https://commons.example.org/duplicate-should-lose
`

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"underscores become spaces", "my_art_piece.png", "File:my art piece.png"},
		{"url encoding decoded", "Great%20Wave_off%20Kanagawa.jpg", "File:Great Wave off Kanagawa.jpg"},
		{"surrounding whitespace trimmed", "  my_art_piece.png ", "File:my art piece.png"},
		{"existing prefix kept", "File:my_art_piece.png", "File:my art piece.png"},
		{"bad escape left as is", "100%_legit.png", "File:100% legit.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	idx, err := Open(writeIndex(t, sampleIndex))
	require.NoError(t, err)

	u, err := idx.Resolve("my_art_piece.png")
	require.NoError(t, err)
	require.Equal(t, "https://commons.example.org/wiki/File:My_art_piece.png", u)

	// Idempotent: same input, same result.
	again, err := idx.Resolve("my_art_piece.png")
	require.NoError(t, err)
	require.Equal(t, u, again)

	_, err = idx.Resolve("never_uploaded.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveFirstRowWins(t *testing.T) {
	idx, err := Open(writeIndex(t, sampleIndex))
	require.NoError(t, err)

	u, err := idx.Resolve("Great_Wave_off_Kanagawa.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://commons.example.org/wiki/File:Great_Wave_off_Kanagawa.jpg", u)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestOpenMalformedIndex(t *testing.T) {
	t.Run("missing columns", func(t *testing.T) {
		_, err := Open(writeIndex(t, "name,link\na,b\n"))
		require.Error(t, err)
	})
	t.Run("unparseable row", func(t *testing.T) {
		_, err := Open(writeIndex(t, "title,url\n\"unterminated,quote\n"))
		require.Error(t, err)
	})
	t.Run("empty file", func(t *testing.T) {
		_, err := Open(writeIndex(t, ""))
		require.Error(t, err)
	})
}

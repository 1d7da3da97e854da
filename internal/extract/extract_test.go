package extract

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intelliq/internal/apperr"
)

func TestSaveTempWritesFile(t *testing.T) {
	path, err := SaveTemp([]byte("hello"), "notes.txt")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestTextPlainFile(t *testing.T) {
	path, err := SaveTemp([]byte("The mitochondria is the powerhouse of the cell."), "bio.txt")
	require.NoError(t, err)

	text, err := Text(path, "text/plain")
	require.NoError(t, err)
	assert.Contains(t, text, "mitochondria")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after extraction")
}

func TestTextEmptyPlainFile(t *testing.T) {
	path, err := SaveTemp([]byte("   \n\t  "), "empty.txt")
	require.NoError(t, err)

	_, err = Text(path, "text/plain")
	require.Error(t, err)
	assert.Equal(t, apperr.Extraction, apperr.KindOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed after a failed extraction")
}

func TestTextUnsupportedType(t *testing.T) {
	path, err := SaveTemp([]byte{0x89, 0x50, 0x4e, 0x47}, "image.png")
	require.NoError(t, err)

	_, err = Text(path, "image/png")
	require.Error(t, err)
	assert.Equal(t, apperr.UnsupportedType, apperr.KindOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed even for unsupported types")
}

func TestTextCorruptPDF(t *testing.T) {
	path, err := SaveTemp([]byte("definitely not a pdf"), "broken.pdf")
	require.NoError(t, err)

	_, err = Text(path, "application/pdf")
	require.Error(t, err)
	assert.Equal(t, apperr.Extraction, apperr.KindOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

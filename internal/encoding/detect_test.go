package encoding_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/txreport/internal/encoding"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	data, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(data)
}

func TestNewUTF8Reader_PlainUTF8(t *testing.T) {
	in := "2024-03-02T10:00:00,ACC1,-50.00,-20.00,active,ok\n"

	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(in)))
	require.NoError(t, err)
	assert.Equal(t, in, readAll(t, r))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "hello", readAll(t, r))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "ok" as UTF-16 LE with BOM.
	in := []byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "ok", readAll(t, r))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	in := []byte("caf\xe9")

	r, err := encoding.NewUTF8Reader(bytes.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "café", readAll(t, r))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, readAll(t, r))
}

func TestOpenText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\n"), 0o644))

	rc, err := encoding.OpenText(path)
	require.NoError(t, err)

	assert.Equal(t, "line1\nline2\n", readAll(t, rc))
	assert.NoError(t, rc.Close())
}

func TestOpenText_Missing(t *testing.T) {
	_, err := encoding.OpenText(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

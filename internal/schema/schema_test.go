package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/txreport/internal/schema"
)

func TestDefault(t *testing.T) {
	s := schema.Default()

	require.NoError(t, s.Validate())
	assert.Equal(t, ",", s.Delimiter)
	assert.NotEmpty(t, s.TimestampFormats)
	assert.False(t, s.AllowExtraFields)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	content := `delimiter: ";"
allow_extra_fields: true
null_tokens: ["-", "N/A"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := schema.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ";", s.Delimiter)
	assert.True(t, s.AllowExtraFields)
	assert.True(t, s.IsNull("N/A"))
	assert.False(t, s.IsNull("NULL"))
	// Defaults survive for fields the file does not mention.
	assert.Equal(t, schema.Default().TimestampFormats, s.TimestampFormats)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"MultiRuneDelimiter", `delimiter: "||"`},
		{"EmptyDelimiter", `delimiter: ""`},
		{"NoTimestampFormats", `timestamp_formats: []`},
		{"EmptyFormat", `timestamp_formats: [""]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schema.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := schema.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := schema.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestIsNull(t *testing.T) {
	s := schema.Default()

	assert.True(t, s.IsNull(""))
	assert.True(t, s.IsNull("NULL"))
	assert.True(t, s.IsNull("null"))
	assert.False(t, s.IsNull("0"))
	assert.False(t, s.IsNull("0.00"))
}

package schema

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// FieldCount is the number of fields the log-line schema defines:
// timestamp, account_id, amount, balance_after, subscription_status,
// pos_status, in that order. The order is an external contract; changing
// it means changing the parser.
const FieldCount = 6

// Schema describes the wire format of one raw log line. The zero value is
// not usable; start from Default and override via a YAML file if needed.
type Schema struct {
	// Delimiter separates fields. Must be a single rune.
	Delimiter string `yaml:"delimiter"`

	// TimestampFormats are Go time layouts tried in order against the
	// timestamp field. The first that parses wins.
	TimestampFormats []string `yaml:"timestamp_formats"`

	// NullTokens are values that mean "absent" for nullable fields.
	// The empty string is always treated as absent.
	NullTokens []string `yaml:"null_tokens"`

	// AllowExtraFields keeps trailing fields beyond FieldCount instead of
	// rejecting the line.
	AllowExtraFields bool `yaml:"allow_extra_fields"`
}

// Default returns the schema the point-of-sale logs are known to use.
func Default() Schema {
	return Schema{
		Delimiter: ",",
		TimestampFormats: []string{
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		},
		NullTokens: []string{"NULL", "null"},
	}
}

// Load reads a YAML schema file over the defaults and validates the result.
func Load(path string) (Schema, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Schema{}, fmt.Errorf("schema %s: %w", path, err)
	}

	return s, nil
}

// Validate checks the schema is usable by the parser.
func (s Schema) Validate() error {
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}

	if len(s.TimestampFormats) == 0 {
		return fmt.Errorf("at least one timestamp format is required")
	}

	for _, f := range s.TimestampFormats {
		if f == "" {
			return fmt.Errorf("timestamp formats must not be empty")
		}
	}

	return nil
}

// IsNull reports whether a trimmed field value means "absent".
func (s Schema) IsNull(v string) bool {
	if v == "" {
		return true
	}

	for _, t := range s.NullTokens {
		if v == t {
			return true
		}
	}

	return false
}

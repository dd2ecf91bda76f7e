package parsers

import (
	"fmt"
	"strings"
)

// CurrencyPolicy decides what happens when a currency cell cannot be normalized
type CurrencyPolicy string

const (
	// CurrencyFail aborts the load at the first malformed value
	CurrencyFail CurrencyPolicy = "fail"
	// CurrencySkip treats the malformed value as absent and records the error
	CurrencySkip CurrencyPolicy = "skip"
)

// IsValid checks if the policy is supported
func (p CurrencyPolicy) IsValid() bool {
	return p == CurrencyFail || p == CurrencySkip
}

// Supported text encodings for delimited files
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// LoadConfig holds configuration for loading a dataset
type LoadConfig struct {
	Delimiter rune   `json:"delimiter"`
	Encoding  string `json:"encoding"`

	// Sheet selects the worksheet of an XLSX file; empty means the first sheet.
	Sheet string `json:"sheet,omitempty"`

	// RequiredColumns must all be present in the header.
	RequiredColumns []string `json:"required_columns,omitempty"`

	// CurrencyColumns are normalized to decimals at load time.
	CurrencyColumns []string       `json:"currency_columns,omitempty"`
	CurrencyPolicy  CurrencyPolicy `json:"currency_policy"`

	// MaxSkippedErrors stops a skip-policy load once this many values were
	// skipped; zero means no limit.
	MaxSkippedErrors int `json:"max_skipped_errors,omitempty"`

	// ColumnAliases maps header names found in a file to the canonical name.
	// Aliases match case-insensitively when no alias matches exactly.
	ColumnAliases map[string]string `json:"column_aliases,omitempty"`
}

// DefaultLoadConfig returns a configuration with sensible defaults
func DefaultLoadConfig() *LoadConfig {
	return &LoadConfig{
		Delimiter:      ',',
		Encoding:       EncodingUTF8,
		CurrencyPolicy: CurrencyFail,
	}
}

// Validate checks if the load configuration is valid
func (c *LoadConfig) Validate() error {
	if c.Delimiter == 0 || c.Delimiter == '\n' || c.Delimiter == '\r' || c.Delimiter == '"' {
		return fmt.Errorf("invalid delimiter %q", c.Delimiter)
	}

	switch strings.ToLower(c.Encoding) {
	case "", EncodingUTF8, EncodingWindows1252:
	default:
		return fmt.Errorf("unsupported encoding %q (supported: %s, %s)", c.Encoding, EncodingUTF8, EncodingWindows1252)
	}

	if c.CurrencyPolicy != "" && !c.CurrencyPolicy.IsValid() {
		return fmt.Errorf("invalid currency policy %q (supported: fail, skip)", c.CurrencyPolicy)
	}

	if c.MaxSkippedErrors < 0 {
		return fmt.Errorf("max skipped errors cannot be negative")
	}

	for _, col := range c.RequiredColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("required column names cannot be empty")
		}
	}

	return nil
}

// canonical returns the canonical name of a header
func (c *LoadConfig) canonical(header string) string {
	if name, ok := c.ColumnAliases[header]; ok {
		return name
	}
	for alias, name := range c.ColumnAliases {
		if strings.EqualFold(alias, header) {
			return name
		}
	}
	return header
}

func (c *LoadConfig) policy() CurrencyPolicy {
	if c.CurrencyPolicy == "" {
		return CurrencyFail
	}
	return c.CurrencyPolicy
}

// WithColumns returns a copy requiring the given columns in addition to the
// existing ones
func (c *LoadConfig) WithColumns(required ...string) *LoadConfig {
	clone := *c
	clone.RequiredColumns = append(append([]string{}, c.RequiredColumns...), required...)
	return &clone
}

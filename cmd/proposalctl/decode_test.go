package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/proposal-backend/internal/codec"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecode_DoubleEncodedPricing(t *testing.T) {
	out, err := runCLI(t, "", "decode", "--section", "pricing", "--raw", `"{\"amount\":\"1500\"}"`, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Encoding  codec.Encoding `json:"encoding"`
		Canonical map[string]any `json:"canonical"`
		Fallback  bool           `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, codec.EncodingDoubleEncoded, result.Encoding)
	assert.False(t, result.Fallback)
	assert.Equal(t, "flat_fee", result.Canonical["kind"])
	assert.Equal(t, 1500.0, result.Canonical["amount"])
	assert.Equal(t, "USD", result.Canonical["currency"])
}

func TestDecode_ReadsStdin(t *testing.T) {
	out, err := runCLI(t, "[\"Wireframes\",\"Mockups\"]\n", "decode", "-s", "Deliverables")
	require.NoError(t, err)

	var result decodeResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, codec.SectionDeliverables, result.Section)
	assert.Equal(t, codec.EncodingCanonical, result.Encoding)
	assert.Equal(t, []any{"Wireframes", "Mockups"}, result.Canonical)
}

func TestDecode_InvalidFallsBackToDefault(t *testing.T) {
	out, err := runCLI(t, "", "decode", "--section", "pricing", "--raw", `{"amount":-5}`, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Encoding  codec.Encoding `json:"encoding"`
		Canonical map[string]any `json:"canonical"`
		Fallback  bool           `json:"fallback"`
		Error     string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, codec.EncodingInvalid, result.Encoding)
	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, "line_items", result.Canonical["kind"])
}

func TestDecode_Errors(t *testing.T) {
	_, err := runCLI(t, "", "decode", "--section", "budget", "--raw", "1")
	assert.Error(t, err)

	_, err = runCLI(t, "", "decode", "--raw", "1")
	assert.Error(t, err, "секция обязательна")

	_, err = runCLI(t, "", "decode", "--section", "scope_of_work", "--raw", `"x"`, "-o", "xml")
	assert.Error(t, err)
}

package patch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestParseDocument_TopLevelShapes tests that only JSON objects are accepted
func TestParseDocument_TopLevelShapes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		description string
	}{
		{
			name:        "Object_ShouldSucceed",
			input:       `{"a": 1}`,
			expectError: false,
			description: "Top-level object should be accepted",
		},
		{
			name:        "EmptyObject_ShouldSucceed",
			input:       `{}`,
			expectError: false,
			description: "Empty object should be accepted",
		},
		{
			name:        "Array_ShouldFail",
			input:       `[1, 2]`,
			expectError: true,
			description: "Top-level array should be rejected",
		},
		{
			name:        "String_ShouldFail",
			input:       `"hello"`,
			expectError: true,
			description: "Top-level string should be rejected",
		},
		{
			name:        "Number_ShouldFail",
			input:       `42`,
			expectError: true,
			description: "Top-level number should be rejected",
		},
		{
			name:        "Boolean_ShouldFail",
			input:       `true`,
			expectError: true,
			description: "Top-level boolean should be rejected",
		},
		{
			name:        "Null_ShouldFail",
			input:       `null`,
			expectError: true,
			description: "Top-level null should be rejected",
		},
		{
			name:        "Empty_ShouldFail",
			input:       ``,
			expectError: true,
			description: "Empty input should be rejected",
		},
		{
			name:        "Malformed_ShouldFail",
			input:       `{"a": `,
			expectError: true,
			description: "Truncated object should be rejected",
		},
		{
			name:        "TrailingData_ShouldFail",
			input:       `{"a": 1} {"b": 2}`,
			expectError: true,
			description: "Data after the top-level object should be rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.input))

			if tt.expectError {
				assert.Error(t, err, tt.description)
				assert.True(t, errors.Is(err, ErrBadFormat), "Parse errors should map to ErrBadFormat")
				assert.Nil(t, doc, "Document should be nil on error")
			} else {
				assert.NoError(t, err, tt.description)
				assert.NotNil(t, doc, "Document should not be nil on success")
			}
		})
	}
}

// TestParseDocument_PreservesKeyOrder tests that keys keep their file order
func TestParseDocument_PreservesKeyOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, doc.Keys(), "Keys should keep document order, not sort order")
	assert.Equal(t, 3, doc.Len())
}

// TestParseDocument_PreservesValueBytes tests that scalar text is not rewritten
func TestParseDocument_PreservesValueBytes(t *testing.T) {
	input := `{"big": 123456789012345678901234567890, "pi": 3.141592653589793238, "esc": "café"}`

	doc, err := ParseDocument([]byte(input))
	require.NoError(t, err)

	out, err := doc.Encode()
	require.NoError(t, err)

	assert.Contains(t, string(out), "123456789012345678901234567890", "Large integers should keep their exact digits")
	assert.Contains(t, string(out), "3.141592653589793238", "High-precision decimals should keep their exact digits")
	assert.Contains(t, string(out), `café`, "String escapes should survive untouched")
}

// TestParseDocument_DuplicateKeys tests duplicate key handling
func TestParseDocument_DuplicateKeys(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, doc.Keys(), "Duplicate key should keep its first position")

	raw, ok := doc.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", string(raw), "Last value should win for a duplicate key")
}

// TestDocument_Set_ValidatesInput tests Set with valid and invalid values
func TestDocument_Set_ValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		expectError bool
		description string
	}{
		{
			name:        "BoolValue_ShouldSucceed",
			key:         "legacy",
			value:       `true`,
			expectError: false,
			description: "Boolean value should be accepted",
		},
		{
			name:        "ObjectValue_ShouldSucceed",
			key:         "nested",
			value:       `{"x": [1, 2]}`,
			expectError: false,
			description: "Composite value should be accepted",
		},
		{
			name:        "EmptyKey_ShouldFail",
			key:         "",
			value:       `true`,
			expectError: true,
			description: "Empty key should be rejected",
		},
		{
			name:        "InvalidJSON_ShouldFail",
			key:         "bad",
			value:       `not-json`,
			expectError: true,
			description: "Invalid JSON value should be rejected",
		},
		{
			name:        "EmptyValue_ShouldFail",
			key:         "bad",
			value:       ``,
			expectError: true,
			description: "Empty value should be rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(`{"a": 1}`))
			require.NoError(t, err)

			err = doc.Set(tt.key, json.RawMessage(tt.value))

			if tt.expectError {
				assert.Error(t, err, tt.description)
				assert.Equal(t, []string{"a"}, doc.Keys(), "Failed Set should not alter the document")
			} else {
				assert.NoError(t, err, tt.description)
				assert.True(t, doc.Has(tt.key), "Key should be present after Set")

				raw, ok := doc.Get(tt.key)
				require.True(t, ok)
				assert.Equal(t, tt.value, string(raw), "Stored value should match input")
			}
		})
	}
}

// TestDocument_Set_AppendsNewKeysInOrder tests insertion order for new keys
func TestDocument_Set_AppendsNewKeysInOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": 1, "b": 2}`))
	require.NoError(t, err)

	require.NoError(t, doc.Set("c", json.RawMessage(`3`)))
	require.NoError(t, doc.Set("a", json.RawMessage(`99`)))

	assert.Equal(t, []string{"a", "b", "c"}, doc.Keys(), "New key appends, existing key keeps its position")

	raw, ok := doc.Get("a")
	require.True(t, ok)
	assert.Equal(t, "99", string(raw), "Existing key should carry the replacement value")
}

// TestDocument_Get_ReturnsCopy tests that Get hands out independent bytes
func TestDocument_Get_ReturnsCopy(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": 100}`))
	require.NoError(t, err)

	raw, ok := doc.Get("a")
	require.True(t, ok)
	raw[0] = '9'

	again, ok := doc.Get("a")
	require.True(t, ok)
	assert.Equal(t, "100", string(again), "Mutating a returned value should not touch the document")
}

// TestDocument_Encode_TwoSpaceIndent tests the exact output format
func TestDocument_Encode_TwoSpaceIndent(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": 1}`))
	require.NoError(t, err)
	require.NoError(t, doc.Set("legacy", json.RawMessage(`true`)))

	out, err := doc.Encode()
	require.NoError(t, err)

	expected := "{\n  \"a\": 1,\n  \"legacy\": true\n}\n"
	assert.Equal(t, expected, string(out), "Output should use two-space indentation")
}

// TestDocument_Encode_NestedValues tests indentation of composite values
func TestDocument_Encode_NestedValues(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"wrapper": {"inner": [1, 2]}}`))
	require.NoError(t, err)

	out, err := doc.Encode()
	require.NoError(t, err)

	expected := "{\n  \"wrapper\": {\n    \"inner\": [\n      1,\n      2\n    ]\n  }\n}\n"
	assert.Equal(t, expected, string(out), "Nested values should be re-indented consistently")
}

// TestDocument_Encode_EmptyObject tests the empty document output
func TestDocument_Encode_EmptyObject(t *testing.T) {
	doc, err := ParseDocument([]byte(`{}`))
	require.NoError(t, err)

	out, err := doc.Encode()
	require.NoError(t, err)

	assert.Equal(t, "{}\n", string(out))
}

// TestDocument_Encode_NoHTMLEscaping tests that angle brackets stay literal
func TestDocument_Encode_NoHTMLEscaping(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"prompt": "<s>hello</s>"}`))
	require.NoError(t, err)

	out, err := doc.Encode()
	require.NoError(t, err)

	assert.Contains(t, string(out), "<s>hello</s>", "HTML characters should not be escaped")
	assert.NotContains(t, string(out), `\u003c`, "No unicode escaping of angle brackets")
}

// Property-based tests using rapid

// TestDocument_PropertyBased_EncodeIsStable tests that re-encoding a parsed
// document reproduces the same bytes
func TestDocument_PropertyBased_EncodeIsStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := rapid.MapOf(
			rapid.StringMatching(`[a-z_]{1,12}`),
			rapid.OneOf(
				rapid.Int().AsAny(),
				rapid.Bool().AsAny(),
				rapid.StringMatching(`[ -~]{0,16}`).AsAny(),
			),
		).Draw(t, "object")

		data, err := json.Marshal(m)
		require.NoError(t, err)

		doc, err := ParseDocument(data)
		require.NoError(t, err)

		first, err := doc.Encode()
		require.NoError(t, err)

		reparsed, err := ParseDocument(first)
		require.NoError(t, err)

		second, err := reparsed.Encode()
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second), "Encode should be a fixed point after one pass")
		assert.Equal(t, doc.Keys(), reparsed.Keys(), "Key order should survive a round trip")
	})
}

// TestDocument_PropertyBased_SetPreservesOthers tests that Set never disturbs
// unrelated keys
func TestDocument_PropertyBased_SetPreservesOthers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := rapid.MapOf(rapid.StringMatching(`[a-z]{1,8}`), rapid.Int()).Draw(t, "object")
		delete(m, "legacy")

		data, err := json.Marshal(m)
		require.NoError(t, err)

		doc, err := ParseDocument(data)
		require.NoError(t, err)

		before := make(map[string]string, doc.Len())
		for _, key := range doc.Keys() {
			raw, _ := doc.Get(key)
			before[key] = string(raw)
		}

		require.NoError(t, doc.Set("legacy", json.RawMessage(`true`)))

		for key, want := range before {
			raw, ok := doc.Get(key)
			require.True(t, ok, "Key %q should survive Set", key)
			assert.Equal(t, want, string(raw), "Value for %q should be untouched", key)
		}
		assert.Equal(t, len(before)+1, doc.Len(), "Exactly one key should be added")
	})
}

// Benchmark tests for performance validation

func BenchmarkParseDocument(b *testing.B) {
	data := []byte(`{"model": "qwen", "layers": 32, "rope_theta": 1000000.0, "legacy": true, "eos_token": "<|im_end|>"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseDocument(data)
	}
}

func BenchmarkDocument_Encode(b *testing.B) {
	doc, _ := ParseDocument([]byte(`{"model": "qwen", "layers": 32, "rope_theta": 1000000.0, "legacy": true}`))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = doc.Encode()
	}
}

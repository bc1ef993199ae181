package hmac

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_formatNumber(t *testing.T) {
	// Expected values are the output of JSON.stringify(JSON.parse(input))
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"1.0", "1"},
		{"100", "100"},
		{"1e21", "1e+21"},
		{"1e20", "100000000000000000000"},
		{"123456789012345678901", "123456789012345680000"},
		{"12345678901234567890", "12345678901234567000"},
		{"0.000001", "0.000001"},
		{"0.0000001", "1e-7"},
		{"1.5e-7", "1.5e-7"},
		{"-2.5E+3", "-2500"},
		{"5e-324", "5e-324"},
		{"1.7976931348623157e308", "1.7976931348623157e+308"},
		{"1e400", "null"},
		{"0.30000000000000004", "0.30000000000000004"},
		{"3.14159", "3.14159"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parseValue([]byte(tt.input))
			require.NoError(t, err)
			var b strings.Builder
			v.stringify(&b)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func Test_value_text(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"abc"`, "abc"},
		{`1.50`, "1.5"},
		{`true`, "true"},
		{`null`, "null"},
		{`1e400`, "Infinity"},
		{`-1e400`, "-Infinity"},
		{`[1, "a", null, [2, 3]]`, "1,a,,2,3"},
		{`{"x": 1}`, "[object Object]"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parseValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.text())
		})
	}
}

func Test_parseValue(t *testing.T) {
	t.Run("trailing data is rejected", func(t *testing.T) {
		_, err := parseValue([]byte(`{} {}`))
		assert.Error(t, err)
	})
	t.Run("truncated input is rejected", func(t *testing.T) {
		_, err := parseValue([]byte(`[1, 2`))
		assert.Error(t, err)
	})
	t.Run("control characters are escaped in lowercase hex", func(t *testing.T) {
		v, err := parseValue([]byte(`"\u001f\u0008\u000c\r"`))
		require.NoError(t, err)
		var b strings.Builder
		v.stringify(&b)
		assert.Equal(t, `"\u001f\b\f\r"`, b.String())
	})
}

func Test_QueryParams_UnmarshalJSON(t *testing.T) {
	t.Run("non-string values are converted to text", func(t *testing.T) {
		var req RequestDescription
		err := json.Unmarshal([]byte(`{
			"uri": "https://h/p",
			"qs": {"n": 1.50, "t": true, "z": null, "arr": [1, "a", null], "o": {"x": 1}}
		}`), &req)
		require.NoError(t, err)
		assert.Equal(t, QueryParams{
			"n":   "1.5",
			"t":   "true",
			"z":   "null",
			"arr": "1,a,",
			"o":   "[object Object]",
		}, req.Query)

		got, err := Sign(req, "k")
		assert.NoError(t, err)
		assert.Equal(t, "d29d31664985e2573260aa38fff72a86c5c352355de4149ec877b5d526d1012b", got)
	})
	t.Run("null qs is treated as empty", func(t *testing.T) {
		var req RequestDescription
		err := json.Unmarshal([]byte(`{"uri": "https://h/p", "qs": null}`), &req)
		require.NoError(t, err)
		assert.Empty(t, req.Query)
	})
	t.Run("non-object qs is rejected", func(t *testing.T) {
		var req RequestDescription
		err := json.Unmarshal([]byte(`{"uri": "https://h/p", "qs": [1]}`), &req)
		assert.Error(t, err)
	})
}

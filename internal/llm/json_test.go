package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain object", input: `{"a":1}`, want: `{"a":1}`},
		{name: "markdown fence", input: "```json\n{\"a\": {\"b\": 2}}\n```", want: `{"a": {"b": 2}}`},
		{name: "leading prose", input: `Sure! Here it is: {"category":"VPN"} hope it helps`, want: `{"category":"VPN"}`},
		{name: "think tags", input: "<think>{not json}</think>\n{\"x\":true}", want: `{"x":true}`},
		{name: "brace inside string", input: `{"t":"a } b"}`, want: `{"t":"a } b"}`},
		{name: "array", input: `result: [1,2,3]`, want: `[1,2,3]`},
		{name: "no json", input: "nothing here", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type reply struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}

	got, err := ParseJSONResponse[reply]("```\n{\"category\":\"Email\",\"confidence\":0.9}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Email", got.Category)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)

	_, err = ParseJSONResponse[reply](`{"category": 5}`)
	assert.Error(t, err)
}

package sanitize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", "\n{\"a\":1}\n"},
		{"bare fence", "```\n{}\n```", "\n{}\n"},
		{"no fence", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestExtractObject(t *testing.T) {
	got, err := ExtractObject(`Here is your quiz: {"questions": [{"x": {}}]} Enjoy!`)
	require.NoError(t, err)
	assert.Equal(t, `{"questions": [{"x": {}}]}`, got)

	_, err = ExtractObject("no json here")
	assert.True(t, errors.Is(err, ErrNoObject))

	_, err = ExtractObject("} backwards {")
	assert.True(t, errors.Is(err, ErrNoObject))
}

func TestRepairEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latex alpha", `{"t":"$\alpha$"}`, `{"t":"$\\alpha$"}`},
		{"latex frac", `{"t":"\frac{a}{b}"}`, `{"t":"\frac{a}{b}"}`}, // \f is a valid escape
		{"latex sqrt", `{"t":"\sqrt{x}"}`, `{"t":"\\sqrt{x}"}`},
		{"valid newline kept", `{"t":"a\nb"}`, `{"t":"a\nb"}`},
		{"escaped quote kept", `{"t":"say \"hi\""}`, `{"t":"say \"hi\""}`},
		{"escaped backslash kept", `{"t":"a\\b"}`, `{"t":"a\\b"}`},
		{"unicode kept", `{"t":"\u00e9"}`, `{"t":"\u00e9"}`},
		{"trailing backslash", `abc\`, `abc\\`},
		{"no backslash", `{"t":"plain"}`, `{"t":"plain"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairEscapes(tt.in))
		})
	}
}

func TestClean_LatexPayloadDecodes(t *testing.T) {
	raw := "```json\n" + `{"questions":[{"question_text":"Which symbol is $\alpha$ and $\pi$?"}]}` + "\n```"

	payload, err := Clean(raw)
	require.NoError(t, err)

	var out struct {
		Questions []struct {
			QuestionText string `json:"question_text"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	require.Len(t, out.Questions, 1)
	assert.Equal(t, `Which symbol is $\alpha$ and $\pi$?`, out.Questions[0].QuestionText)
}

func TestClean_WithoutRepairTheSamePayloadFails(t *testing.T) {
	raw := `{"t":"$\alpha$"}`
	var v map[string]string
	assert.Error(t, json.Unmarshal([]byte(raw), &v))

	payload, err := Clean(raw)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(payload), &v))
	assert.Equal(t, `$\alpha$`, v["t"])
}

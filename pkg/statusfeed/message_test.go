package statusfeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		typ   string
		text  string
	}{
		{"string body", `{"type":"StatusTypes.STATE","body":"3"}`, TypeState, "3"},
		{"number body", `{"type":"StatusTypes.STATE","body":4}`, TypeState, "4"},
		{"null body", `{"type":"CMDTypes.PING","body":null}`, TypePing, ""},
		{"missing body", `{"type":"CMDTypes.PING"}`, TypePing, ""},
		{"escaped text", `{"type":"LogTypes.INFO","body":"a \"b\"\n"}`, TypeInfo, "a \"b\"\n"},
		{"object body", `{"type":"LogTypes.DEBUG","body":{"a":1}}`, TypeDebug, `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.typ, env.Type)
			assert.Equal(t, tc.text, env.Text())
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, frame := range []string{"", "hello", `{"type":`, `["StatusTypes.STATE", 1]`} {
		_, err := Decode([]byte(frame))
		assert.Error(t, err, frame)
	}
}

func TestEncode(t *testing.T) {
	frame, err := Encode(TypeState, "7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"StatusTypes.STATE","body":"7"}`, string(frame))

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, "7", env.Text())
}

func TestExtractFields(t *testing.T) {
	fields, ok := ExtractFields(`telemetry {"altitude": 12.5, "mode": "AUTO", "armed": true, "gps": [1, 2], "none": null}`)
	require.True(t, ok)
	assert.Equal(t, []Field{
		{"altitude", "12.5"},
		{"armed", "true"},
		{"gps", "[1,2]"},
		{"mode", "AUTO"},
		{"none", ""},
	}, fields)
}

func TestExtractFieldsTrailingText(t *testing.T) {
	fields, ok := ExtractFields(`x {"a": "1"} trailing`)
	require.True(t, ok)
	assert.Equal(t, []Field{{"a", "1"}}, fields)
}

func TestExtractFieldsNone(t *testing.T) {
	for _, text := range []string{"", "plain debug line", "broken {json", `list {"a": }`} {
		fields, ok := ExtractFields(text)
		assert.False(t, ok, text)
		assert.Nil(t, fields)
	}
}

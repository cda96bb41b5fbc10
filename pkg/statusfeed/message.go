// Package statusfeed receives status frames from the ground station: JSON
// envelopes {"type": ..., "body": ...} sent over a websocket.
package statusfeed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Message types sent by the ground station.
const (
	TypeState    = "StatusTypes.STATE"
	TypeInfo     = "LogTypes.INFO"
	TypeDebug    = "LogTypes.DEBUG"
	TypeWarning  = "LogTypes.WARNING"
	TypeCritical = "LogTypes.CRITICAL"
	TypePing     = "CMDTypes.PING"
)

// Envelope is one decoded frame. Body is kept raw because the station sends
// both strings and numbers.
type Envelope struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Decode parses a frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Encode builds a frame with the given type and body.
func Encode(typ string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Body: raw})
}

// Text returns the body as text: JSON strings are unquoted, null or a
// missing body is empty, anything else is the raw JSON.
func (e Envelope) Text() string {
	raw := bytes.TrimSpace(e.Body)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Field is one display value carried in a debug message.
type Field struct {
	Name  string
	Value string
}

// ExtractFields parses the JSON object embedded in a debug message, starting
// at its first '{'. Fields are sorted by name. It reports false when the
// text has no object or the object is malformed.
func ExtractFields(text string) ([]Field, bool) {
	i := strings.IndexByte(text, '{')
	if i < 0 {
		return nil, false
	}

	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(text[i:]))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}

	fields := make([]Field, 0, len(obj))
	for name, v := range obj {
		fields = append(fields, Field{Name: name, Value: formatValue(v)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields, true
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case nil:
		return ""
	case bool:
		return fmt.Sprint(val)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

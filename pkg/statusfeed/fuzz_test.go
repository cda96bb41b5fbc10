package statusfeed

import (
	"io"
	"log/slog"
	"testing"
)

// FuzzDispatch feeds arbitrary frames through the dispatcher. Handlers must
// only ever see bodies of frames that decoded.
func FuzzDispatch(f *testing.F) {
	f.Add([]byte(`{"type":"StatusTypes.STATE","body":"1"}`))
	f.Add([]byte(`{"type":"StatusTypes.STATE","body":1}`))
	f.Add([]byte(`{"type":"LogTypes.DEBUG","body":"pos {\"x\": 1, \"y\": [1,2]}"}`))
	f.Add([]byte(`{"type":"CMDTypes.PING"}`))
	f.Add([]byte(`{"type":null,"body":{}}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(``))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.Fuzz(func(t *testing.T, frame []byte) {
		var calls int
		d := NewDispatcher(map[string]HandlerFunc{
			TypeState: func(string) error { calls++; return nil },
			TypeDebug: func(body string) error {
				calls++
				ExtractFields(body)
				return nil
			},
		}, log)

		ok := d.Dispatch(frame)
		if !ok && calls > 0 {
			t.Fatalf("handler called for undispatched frame %q", frame)
		}
		if calls > 1 {
			t.Fatalf("%d handler calls for one frame", calls)
		}
	})
}

func FuzzExtractFields(f *testing.F) {
	f.Add(`pos {"x": 1}`)
	f.Add(`{"a": null, "b": true, "c": {"d": [1, "e"]}}`)
	f.Add(`{{{`)
	f.Add(`no object`)

	f.Fuzz(func(t *testing.T, text string) {
		fields, ok := ExtractFields(text)
		if !ok && fields != nil {
			t.Fatalf("fields %v returned with ok=false", fields)
		}
		for i := 1; i < len(fields); i++ {
			if fields[i-1].Name > fields[i].Name {
				t.Fatalf("fields not sorted: %v", fields)
			}
		}
	})
}

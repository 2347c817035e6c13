package mock

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Output is text a rule writes to stdout or stderr. In JSON it is either a
// single value or an array of values; arrays are written one entry per line.
// String entries are written as-is, any other entry as its JSON text.
type Output []json.RawMessage

// Text builds an Output from plain lines.
func Text(lines ...string) Output {
	out := make(Output, 0, len(lines))
	for _, line := range lines {
		raw, _ := json.Marshal(line)
		out = append(out, raw)
	}
	return out
}

// String renders the output the way it is written to the stream.
func (o Output) String() string {
	parts := make([]string, 0, len(o))
	for _, raw := range o {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			parts = append(parts, string(raw))
			continue
		}
		parts = append(parts, compact.String())
	}
	return strings.Join(parts, "\n")
}

func (o Output) MarshalJSON() ([]byte, error) {
	switch len(o) {
	case 0:
		return []byte("null"), nil
	case 1:
		return o[0], nil
	default:
		return json.Marshal([]json.RawMessage(o))
	}
}

func (o *Output) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*o = nil
		return nil
	case trimmed[0] == '[':
		var values []json.RawMessage
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*o = values
		return nil
	default:
		*o = Output{append(json.RawMessage(nil), trimmed...)}
		return nil
	}
}

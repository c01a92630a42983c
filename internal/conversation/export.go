package conversation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

var speakerLabels = map[Role]string{
	RoleUser:      "나",
	RoleAssistant: "Tacit",
}

// Markdown renders turns as a readable transcript.
func Markdown(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		label, ok := speakerLabels[t.Role]
		if !ok {
			label = string(t.Role)
		}
		fmt.Fprintf(&b, "**%s**: %s\n\n", label, t.Text)
	}
	return b.String()
}

// WriteJSONL writes one JSON object per turn.
func WriteJSONL(w io.Writer, turns []Turn) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, t := range turns {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding turn %d: %w", i, err)
		}
	}
	return nil
}

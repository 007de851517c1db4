package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// jsonToken matches, in order: a quoted string optionally followed by a colon
// (an object key), a literal, or a number.
var jsonToken = regexp.MustCompile(`("(\\u[a-fA-F0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// HighlightJSON colors keys, strings, literals and numbers in already
// encoded JSON. It returns the input unchanged when colors are off.
func HighlightJSON(src string) string {
	if !Enabled() {
		return src
	}
	return jsonToken.ReplaceAllStringFunc(src, func(tok string) string {
		switch {
		case strings.HasSuffix(tok, ":"):
			return paint(Blue, strings.TrimSuffix(tok, ":")) + ":"
		case strings.HasPrefix(tok, `"`):
			return paint(Green, tok)
		case tok == "true", tok == "false":
			return paint(Yellow, tok)
		case tok == "null":
			return paint(Dim, tok)
		default:
			return paint(Purple, tok)
		}
	})
}

func paint(code, s string) string {
	return code + s + Reset
}

// PrettyFormat indents and highlights v. Raw JSON ([]byte, json.RawMessage or
// string) is re-indented; anything else is marshaled first.
func PrettyFormat(v any) string {
	var raw []byte
	switch t := v.(type) {
	case json.RawMessage:
		raw = t
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%+v", v)
		}
		return HighlightJSON(string(b))
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return HighlightJSON(string(raw))
	}
	return HighlightJSON(buf.String())
}

// Fprint writes the highlighted form of v followed by a newline.
func Fprint(w io.Writer, v any) {
	fmt.Fprintln(w, PrettyFormat(v))
}

// PrettyPrint writes v to stdout.
func PrettyPrint(v any) {
	Fprint(os.Stdout, v)
}

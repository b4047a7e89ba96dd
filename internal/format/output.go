// Package format renders CLI payloads as strict JSON, EDN, or terminal
// tables.
package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write renders v in the requested format: json (the default), edn, or
// table. Table output falls back to pretty JSON for payloads without a
// tabular shape, so the flag is safe on every command.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes one strict-JSON document followed by a newline.
// Anything beyond the payload itself (hints, counts) belongs inside the
// document, not around it: scripts read this output.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN renders v as EDN, covering the shapes our payloads use: maps,
// vectors, strings, numbers, booleans, nil. Structs go through a JSON
// round-trip first so field naming follows the json tags.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var sb strings.Builder
	ednValue(&sb, x, pretty, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

const ednIndent = "  "

func ednValue(sb *strings.Builder, v any, pretty bool, depth int) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case string:
		sb.WriteString(strconv.Quote(t))
	case float64:
		// Decoded JSON numbers are float64; print whole values as ints.
		if t == float64(int64(t)) {
			sb.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case []any:
		ednSeq(sb, '[', ']', len(t), pretty, depth, func(i int) {
			ednValue(sb, t[i], pretty, depth+1)
		})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ednSeq(sb, '{', '}', len(keys), pretty, depth, func(i int) {
			sb.WriteByte(':')
			sb.WriteString(ednKeyword(keys[i]))
			sb.WriteByte(' ')
			ednValue(sb, t[keys[i]], pretty, depth+1)
		})
	default:
		sb.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

// ednSeq writes a delimited sequence, one element per line when pretty,
// space-separated otherwise.
func ednSeq(sb *strings.Builder, left, right byte, n int, pretty bool, depth int, elem func(i int)) {
	sb.WriteByte(left)
	for i := 0; i < n; i++ {
		switch {
		case pretty:
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(ednIndent, depth+1))
		case i > 0:
			sb.WriteByte(' ')
		}
		elem(i)
	}
	if pretty && n > 0 {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(ednIndent, depth))
	}
	sb.WriteByte(right)
}

// ednKeyword keeps json field names usable as keywords.
func ednKeyword(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "-")
}

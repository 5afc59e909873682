package tree

import (
	"encoding/csv"
	"strings"
)

// ListSeparator is used to separate list items in string values.
const ListSeparator = ','

// SplitList converts a comma separated string into its items, honoring
// csv quoting so items may themselves contain the separator.
func SplitList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ListSeparator
	return r.Read()
}

// JoinList returns the input strings as a single csv record.
func JoinList(items ...string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	if len(items) == 1 {
		return items[0], nil
	}
	buf := new(strings.Builder)
	w := csv.NewWriter(buf)
	w.Comma = ListSeparator
	if err := w.Write(items); err != nil {
		return "", err
	}
	w.Flush()
	s := buf.String()

	// Remove the trailing newline.
	return s[:len(s)-1], nil
}

package jsonutil

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// UTF16Len returns the number of UTF-16 code units needed to hold data,
// which is how the catalog's storage measures property size
func UTF16Len(data []byte) int {
	n := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// EncodedLen serializes v as JSON and returns its UTF-16 length
func EncodedLen(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to marshal value")
	}
	return UTF16Len(data), nil
}

// PropertyLens returns the UTF-16 length of every top-level property of v
// once serialized as a JSON object
func PropertyLens(v any) (map[string]int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal value")
	}

	var props map[string]json.RawMessage
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, goerr.Wrap(err, "value is not a JSON object")
	}

	lens := make(map[string]int, len(props))
	for name, raw := range props {
		lens[name] = UTF16Len(raw)
	}
	return lens, nil
}

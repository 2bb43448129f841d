package apiclient

import (
	"bytes"
	"encoding/json"
)

// Keys under which list endpoints have been observed to return their rows.
var listKeys = []string{"entities", "items", "rows", "results"}

// maxEnvelopeDepth bounds how many {success, data} wrappers are peeled.
const maxEnvelopeDepth = 4

// UnwrapList normalizes a list response into its rows and total. Supported
// shapes are a bare array, {entities|items, total} and a {success, data}
// envelope around either. Unknown shapes yield an empty slice and zero; rows
// that do not decode into T are skipped.
func UnwrapList[T any](raw json.RawMessage) ([]T, int) {
	elems, total, ok := locateList(raw, 0)
	items := make([]T, 0, len(elems))
	if !ok {
		return items, 0
	}
	for _, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		items = append(items, v)
	}
	if total < 0 {
		total = len(items)
	}
	return items, total
}

// UnwrapRecord returns the single record carried by raw, peeling a
// {success, data} envelope when present. It reports false when raw does not
// hold an object.
func UnwrapRecord[T any](raw json.RawMessage) (T, bool) {
	var zero T
	obj, ok := objectOf(raw)
	for depth := 0; ok && depth < maxEnvelopeDepth && isEnvelope(obj); depth++ {
		data := bytes.TrimSpace(obj["data"])
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return zero, false
		}
		raw = data
		obj, ok = objectOf(raw)
	}
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

// UnwrapMessage returns the envelope message, if any.
func UnwrapMessage(raw json.RawMessage) string {
	obj, ok := objectOf(raw)
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(obj["message"], &msg); err != nil {
		return ""
	}
	return msg
}

func locateList(raw json.RawMessage, depth int) ([]json.RawMessage, int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > maxEnvelopeDepth {
		return nil, 0, false
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, 0, false
		}
		return elems, -1, true
	case '{':
		obj, ok := objectOf(raw)
		if !ok {
			return nil, 0, false
		}
		total := readTotal(obj)
		for _, key := range listKeys {
			value, present := obj[key]
			if !present {
				continue
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(value, &elems); err != nil {
				continue
			}
			return elems, total, true
		}
		if data, present := obj["data"]; present {
			elems, inner, found := locateList(data, depth+1)
			if !found {
				return nil, 0, false
			}
			if inner < 0 {
				inner = total
			}
			return elems, inner, true
		}
	}
	return nil, 0, false
}

func readTotal(obj map[string]json.RawMessage) int {
	for _, key := range []string{"total", "count", "totalCount"} {
		if n, ok := intOf(obj[key]); ok {
			return n
		}
	}
	if meta, ok := objectOf(obj["meta"]); ok {
		for _, key := range []string{"total", "totalItems", "count"} {
			if n, ok := intOf(meta[key]); ok {
				return n
			}
		}
	}
	return -1
}

func intOf(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0, false
		}
		v = int64(f)
	}
	return int(v), true
}

func objectOf(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// isEnvelope detects {success, data, message} wrappers. A record that merely
// has a "data" field is not an envelope unless it carries envelope markers.
func isEnvelope(obj map[string]json.RawMessage) bool {
	if _, ok := obj["data"]; !ok {
		return false
	}
	if _, ok := obj["success"]; ok {
		return true
	}
	for key := range obj {
		switch key {
		case "data", "message", "statusCode", "status":
		default:
			return false
		}
	}
	return true
}

package backend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ResultsField is the envelope field that holds list payloads.
const ResultsField = "results"

// ErrInvalidJSON is returned when a response body is not JSON at all.
var ErrInvalidJSON = errors.New("backend: invalid JSON response")

// DecodeList extracts a list from either a bare JSON array or an object whose
// field holds the array. Any other shape decodes to an empty list.
func DecodeList[T any](body []byte, field string) ([]T, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}
	res := gjson.ParseBytes(body)

	var raw string
	switch {
	case res.IsArray():
		raw = res.Raw
	case res.IsObject():
		inner := res.Get(gjson.Escape(field))
		if !inner.IsArray() {
			return []T{}, nil
		}
		raw = inner.Raw
	default:
		return []T{}, nil
	}

	out := []T{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// DecodePage reads a paginated envelope ({count, next, previous, results}).
// A bare array becomes a single page.
func DecodePage[T any](body []byte) (Page[T], error) {
	results, err := DecodeList[T](body, ResultsField)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Count: len(results), Results: results}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return page, nil
	}
	if count := res.Get("count"); count.Exists() {
		page.Count = int(count.Int())
	}
	page.Next = res.Get("next").String()
	page.Previous = res.Get("previous").String()
	return page, nil
}

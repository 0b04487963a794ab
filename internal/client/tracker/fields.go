package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ChangedFields returns top-level JSON keys whose values differ between
// prev and next, sorted. An empty prev means every key of next changed.
func ChangedFields(prev, next []byte) ([]string, error) {
	before, err := topLevel(prev)
	if err != nil {
		return nil, fmt.Errorf("failed to decode previous state: %w", err)
	}
	after, err := topLevel(next)
	if err != nil {
		return nil, fmt.Errorf("failed to decode new state: %w", err)
	}

	var fields []string
	for k, v := range after {
		if old, ok := before[k]; !ok || !jsonEqual(old, v) {
			fields = append(fields, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			fields = append(fields, k)
		}
	}

	sort.Strings(fields)
	return fields, nil
}

func topLevel(data []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, a); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Compact(&cb, b); err != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

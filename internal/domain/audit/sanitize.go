package audit

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Redacted replaces the value of every sensitive key.
	Redacted = "[REDACTED]"
	// Truncated replaces containers nested deeper than MaxDepth.
	Truncated = "[TRUNCATED]"
	// MaxDepth bounds the recursive walk.
	MaxDepth = 32
)

var sensitiveFragments = []string{"password", "token", "secret", "apikey"}

// IsSensitiveKey reports whether a key must be redacted. Matching is
// case-insensitive and ignores '_' and '-' so api_key matches apikey.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	k = strings.NewReplacer("_", "", "-", "").Replace(k)
	for _, f := range sensitiveFragments {
		if strings.Contains(k, f) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of v with sensitive keys redacted at every depth.
// Values that are not plain JSON shapes are normalized through encoding/json
// first so typed structs are walked too. The input is never modified.
func Sanitize(v any) any {
	return sanitize(v, 0)
}

func sanitize(v any, depth int) any {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return t
	case map[string]any:
		if depth >= MaxDepth {
			return Truncated
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			out[k] = sanitize(val, depth+1)
		}
		return out
	case map[string]string:
		if depth >= MaxDepth {
			return Truncated
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			if IsSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			out[k] = val
		}
		return out
	case []any:
		if depth >= MaxDepth {
			return Truncated
		}
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val, depth+1)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case json.RawMessage:
		return sanitizeJSON(t, depth)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return Redacted
		}
		return sanitizeJSON(raw, depth)
	}
}

func sanitizeJSON(raw []byte, depth int) any {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return sanitize(decoded, depth)
}

// SanitizeBody decodes a JSON request or response body and sanitizes it.
// Bodies that are not JSON are not stored, only their size.
func SanitizeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Sprintf("[non-JSON body, %d bytes]", len(body))
	}
	return Sanitize(decoded)
}

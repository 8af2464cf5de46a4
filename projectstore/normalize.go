package projectstore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// String formats any non-nil value and trims it. Blank results yield fallback.
func String(v any, fallback string) string {
	var s string
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		s = t
	case *string:
		if t == nil {
			return fallback
		}
		s = *t
	case json.Number:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// Bool passes booleans through, treats numbers as true when non-zero and
// strings as true only when they equal "true" in any case. Anything else
// yields fallback.
func Bool(v any, fallback bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return fallback
		}
		return f != 0
	default:
		return fallback
	}
}

// StringList keeps the string entries of v, trimmed, dropping blanks. Order
// is preserved. The result is never nil.
func StringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, entry := range t {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ExternalURL returns the trimmed value only when it is an http or https URL.
func ExternalURL(v any) *string {
	s := String(v, "")
	if s == "" {
		return nil
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &s
	}
	return nil
}

// Media normalizes a submitted media array. Entries with an unknown type and
// images without a src are dropped; a video may have an empty src.
func Media(v any) []MediaItem {
	out := []MediaItem{}

	var entries []map[string]any
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				entries = append(entries, m)
			}
		}
	case []map[string]any:
		entries = t
	case []MediaItem:
		for _, item := range t {
			entries = append(entries, map[string]any{
				"type": item.Type, "src": item.Src, "alt": item.Alt, "thumb": item.Thumb,
			})
		}
	}

	for _, m := range entries {
		item := MediaItem{
			Type: strings.ToLower(String(m["type"], "")),
			Src:  String(m["src"], ""),
			Alt:  String(m["alt"], ""),
		}
		switch item.Type {
		case MediaImage:
			if item.Src == "" {
				continue
			}
			item.Thumb = firstString(m, "thumb", "thumbnail")
		case MediaVideo:
			item.Thumb = firstString(m, "poster", "thumb", "thumbnail")
		default:
			continue
		}
		out = append(out, item)
	}
	return out
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash    = regexp.MustCompile(`-+`)
)

// Slugify lowercases input and restricts it to [a-z0-9-].
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := String(m[k], ""); s != "" {
			return s
		}
	}
	return ""
}

// field looks a value up under its camelCase key, then its snake_case alias.
func field(input map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := input[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

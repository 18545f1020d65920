// Package media normalizes backend media references to absolute URLs. The
// backend is loose about image shapes: sometimes a bare string, sometimes an
// object carrying one of url/image/src/file. Ref normalizes that shape once,
// at the network boundary; Normalizer turns relative paths into absolute
// URLs against the API origin.
package media

import (
	"encoding/json"
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// Ref is the canonical image reference. Its UnmarshalJSON accepts a string,
// null, or an object, extracting the first present of url, image, src, file.
type Ref struct {
	Path    string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// UnmarshalJSON normalizes the loose backend shapes.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Path = s
		return nil
	}

	var obj struct {
		URL     string `json:"url"`
		Image   string `json:"image"`
		Src     string `json:"src"`
		File    string `json:"file"`
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unresolvable input is "no media", not a decode failure.
		*r = Ref{}
		return nil
	}
	r.Caption = obj.Caption
	for _, candidate := range []string{obj.URL, obj.Image, obj.Src, obj.File} {
		if candidate != "" {
			r.Path = candidate
			return nil
		}
	}
	r.Path = ""
	return nil
}

// IsZero reports whether the reference resolves to no media.
func (r Ref) IsZero() bool { return r.Path == "" }

// Normalizer resolves relative media paths against a fixed origin.
type Normalizer struct {
	origin string
}

// NewNormalizer builds a normalizer for the given origin, typically
// Client.Origin(). Trailing slashes are trimmed.
func NewNormalizer(origin string) Normalizer {
	return Normalizer{origin: strings.TrimRight(origin, "/")}
}

// ToURL maps a raw media reference to an absolute URL. Absolute inputs pass
// through unchanged; relative paths are joined to the origin; anything
// unresolvable yields "" and callers must render a placeholder.
func (n Normalizer) ToURL(raw string) string {
	if raw == "" {
		return ""
	}
	if absoluteURL.MatchString(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return n.origin + raw
	}
	return n.origin + "/" + raw
}

// RefURL resolves a canonical Ref to an absolute URL.
func (n Normalizer) RefURL(r Ref) string {
	return n.ToURL(r.Path)
}

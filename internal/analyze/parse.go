// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// ParseAnalysis reads a model reply. It tries the whole reply as a JSON
// object, then the first brace-delimited substring. When neither parses it
// returns the empty default Analysis and false.
func ParseAnalysis(raw string) (types.Analysis, bool) {
	if a, ok := decodeAnalysis(strings.TrimSpace(raw)); ok {
		return a, true
	}
	if frag := firstObject(raw); frag != "" {
		if a, ok := decodeAnalysis(frag); ok {
			return a, true
		}
	}
	return types.Analysis{}, false
}

func decodeAnalysis(s string) (types.Analysis, bool) {
	if !strings.HasPrefix(s, "{") {
		return types.Analysis{}, false
	}
	var ra rawAnalysis
	if err := json.Unmarshal([]byte(s), &ra); err != nil {
		return types.Analysis{}, false
	}
	return types.Analysis{
		Tags:      []string(ra.Tags),
		Summary:   ra.Summary,
		Score:     float64(ra.Score),
		Reasoning: ra.Reasoning,
	}, true
}

// firstObject returns the first balanced {...} substring of s, honoring
// JSON string quoting. When the braces never balance it falls back to the
// span from the first '{' to the last '}'.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	if end := strings.LastIndexByte(s, '}'); end > start {
		return s[start : end+1]
	}
	return ""
}

// rawAnalysis mirrors the JSON the prompt asks for, with lenient field types.
type rawAnalysis struct {
	Tags      flexTags  `json:"tags"`
	Summary   string    `json:"summary"`
	Score     flexScore `json:"score"`
	Reasoning string    `json:"reasoning"`
}

// flexScore accepts a JSON number or a numeric string such as "4.5" or
// "4/5". Anything else, including NaN and infinities, decodes to 0.
type flexScore float64

func (f *flexScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = finiteScore(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*f = 0
		return nil
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		n = 0
	}
	*f = finiteScore(n)
	return nil
}

func finiteScore(n float64) flexScore {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return flexScore(n)
}

// flexTags accepts an array of strings or a single comma-separated string.
type flexTags []string

func (t *flexTags) UnmarshalJSON(b []byte) error {
	var list []any
	if err := json.Unmarshal(b, &list); err == nil {
		var out []string
		for _, v := range list {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		*t = out
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = nil
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*t = out
	return nil
}

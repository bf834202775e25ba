package reasoning

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonReasoning is the preferred structured form the reasoner is asked to
// produce.
type jsonReasoning struct {
	Analysis    string   `json:"analysis"`
	Limitations string   `json:"limitations"`
	Citations   []string `json:"citations"`
}

// Section headers for the semi-structured fallback form, grounded on the
// teacher's react_parser.go section-extraction regexes (ANALYSIS/
// LIMITATIONS/CITATIONS headings instead of Thought/Action/Final Answer).
var (
	analysisHeaderPattern    = regexp.MustCompile(`(?im)^\s*ANALYSIS\s*:\s*`)
	limitationsHeaderPattern = regexp.MustCompile(`(?im)^\s*LIMITATIONS\s*:\s*`)
	citationsHeaderPattern   = regexp.MustCompile(`(?im)^\s*CITATIONS USED\s*:\s*`)
)

// parsed is the parser's output before being folded into a domain.Reasoning.
type parsed struct {
	analysis    string
	limitations string
	citations   []string
	ok          bool
}

// Parse tries the structured JSON form first, then the semi-structured
// ANALYSIS/LIMITATIONS/CITATIONS USED form, mirroring the teacher's
// forgiving, multi-strategy ParseReActResponse. Returns ok=false when
// neither form could be extracted, at which point the caller degrades to
// the minimal-Reasoning fallback spec.md §4.4 requires.
func Parse(text string) parsed {
	if text == "" {
		return parsed{}
	}

	if r, ok := parseJSON(text); ok {
		return r
	}
	return parseSections(text)
}

func parseJSON(text string) (parsed, bool) {
	trimmed := strings.TrimSpace(text)
	// Tolerate a fenced code block around the JSON, a common LLM habit.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if !strings.HasPrefix(trimmed, "{") {
		return parsed{}, false
	}

	var jr jsonReasoning
	if err := json.Unmarshal([]byte(trimmed), &jr); err != nil {
		return parsed{}, false
	}
	if jr.Analysis == "" {
		return parsed{}, false
	}

	return parsed{
		analysis:    jr.Analysis,
		limitations: jr.Limitations,
		citations:   jr.Citations,
		ok:          true,
	}, true
}

func parseSections(text string) parsed {
	analysisLoc := analysisHeaderPattern.FindStringIndex(text)
	if analysisLoc == nil {
		return parsed{}
	}

	limitationsLoc := limitationsHeaderPattern.FindStringIndex(text)
	citationsLoc := citationsHeaderPattern.FindStringIndex(text)

	analysisEnd := len(text)
	if limitationsLoc != nil && limitationsLoc[0] < analysisEnd {
		analysisEnd = limitationsLoc[0]
	}
	if citationsLoc != nil && citationsLoc[0] < analysisEnd {
		analysisEnd = citationsLoc[0]
	}
	analysis := strings.TrimSpace(text[analysisLoc[1]:analysisEnd])
	if analysis == "" {
		return parsed{}
	}

	var limitations string
	if limitationsLoc != nil {
		limitationsEnd := len(text)
		if citationsLoc != nil && citationsLoc[0] > limitationsLoc[0] {
			limitationsEnd = citationsLoc[0]
		}
		limitations = strings.TrimSpace(text[limitationsLoc[1]:limitationsEnd])
	}

	var citations []string
	if citationsLoc != nil {
		raw := strings.TrimSpace(text[citationsLoc[1]:])
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
			if line != "" {
				citations = append(citations, line)
			}
		}
	}

	return parsed{
		analysis:    analysis,
		limitations: limitations,
		citations:   citations,
		ok:          true,
	}
}

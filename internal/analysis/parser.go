// Package analysis turns raw model output into structured analysis
// records and coordinates the per-document analysis lifecycle.
package analysis

import (
	"errors"
	"regexp"
	"strings"

	"legal-backend/internal/documents"
)

// ErrEmptyAnalysis is returned when the raw analysis text is empty or
// whitespace-only. Any other malformed input degrades to best-effort
// structured output instead of failing, because model output is
// unreliable and partial analysis is still useful.
var ErrEmptyAnalysis = errors.New("analysis text is empty")

// SummaryPlaceholder fills the summary when neither an executive
// summary section nor any unstructured leading content was found.
const SummaryPlaceholder = "No summary could be extracted from the analysis text."

// GeneralClausesTitle names the degraded clause entry produced when a
// clauses section (or a headerless document) has no numbered items.
const GeneralClausesTitle = "General Clauses"

const (
	sectionSummary      = "EXECUTIVE SUMMARY"
	sectionClauses      = "KEY CLAUSES ANALYSIS"
	sectionRisk         = "RISK ASSESSMENT"
	sectionPlainEnglish = "PLAIN ENGLISH EXPLANATION"
)

var recognizedSections = []string{
	sectionSummary,
	sectionClauses,
	sectionRisk,
	sectionPlainEnglish,
}

var clauseMarkerRe = regexp.MustCompile(`^\s*(\d+)[.)]\s*`)

// Parse maps raw model output into a structured analysis record. It is
// a pure function: the same input always yields an identical record.
// Content that does not fit a recognized section is folded into the
// summary rather than dropped.
func Parse(raw string) (documents.Analysis, error) {
	if strings.TrimSpace(raw) == "" {
		return documents.Analysis{}, ErrEmptyAnalysis
	}

	sections, preamble := splitSections(raw)

	out := documents.Analysis{
		Summary:        summaryPoints(preamble, sections[sectionSummary]),
		RiskAssessment: strings.TrimSpace(sections[sectionRisk]),
		PlainEnglish:   strings.TrimSpace(sections[sectionPlainEnglish]),
	}

	clausesText, hasClausesSection := sections[sectionClauses]
	switch {
	case hasClausesSection:
		out.KeyClauses = parseClauses(clausesText)
	case len(sections) == 0:
		// No recognized structure at all. Everything already landed in
		// the summary; keep a single degraded clause entry so callers
		// always have clause content to render.
		out.KeyClauses = []documents.Clause{{
			Index:       1,
			Title:       GeneralClausesTitle,
			Explanation: strings.TrimSpace(raw),
		}}
	}

	if len(out.Summary) == 0 {
		out.Summary = []string{SummaryPlaceholder}
	}
	return out, nil
}

// splitSections walks the text line by line, starting a new section at
// each recognized header. Lines before the first recognized header are
// returned as preamble. Unrecognized headings stay inside whichever
// section they appear in.
func splitSections(raw string) (map[string]string, string) {
	sections := make(map[string]string)
	var preamble, current strings.Builder
	active := ""

	flush := func() {
		if active == "" {
			return
		}
		// Later duplicate headers append to the same section so no
		// content is lost.
		sections[active] += current.String()
		current.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		if name, ok := matchHeader(line); ok {
			flush()
			active = name
			if _, seen := sections[name]; !seen {
				sections[name] = ""
			}
			continue
		}
		if active == "" {
			preamble.WriteString(line)
			preamble.WriteString("\n")
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return sections, preamble.String()
}

// matchHeader reports whether the line is one of the recognized section
// headers, tolerating markdown decoration such as "## ", "**...**" and
// a trailing colon.
func matchHeader(line string) (string, bool) {
	cleaned := strings.TrimSpace(line)
	cleaned = strings.TrimLeft(cleaned, "#*-• \t")
	cleaned = strings.TrimRight(cleaned, "*: \t")
	cleaned = strings.ToUpper(strings.Join(strings.Fields(cleaned), " "))
	for _, name := range recognizedSections {
		if cleaned == name {
			return name, true
		}
	}
	return "", false
}

// summaryPoints builds the summary list from the unstructured preamble
// followed by the executive summary section, one point per non-empty
// line with bullet markers stripped.
func summaryPoints(preamble, section string) []string {
	var points []string
	for _, block := range []string{preamble, section} {
		for _, line := range strings.Split(block, "\n") {
			point := strings.TrimSpace(line)
			point = strings.TrimLeft(point, "-*• \t")
			point = strings.TrimSpace(point)
			if point != "" {
				points = append(points, point)
			}
		}
	}
	return points
}

// parseClauses splits the clauses section at numbered line markers such
// as "1." or "2)". Indices are reassigned contiguously from 1 in order
// of appearance, ignoring the model's own numbering. A section with no
// numbered markers degrades to a single General Clauses entry.
func parseClauses(section string) []documents.Clause {
	trimmed := strings.TrimSpace(section)
	if trimmed == "" {
		return nil
	}

	var bodies []string
	var current strings.Builder
	started := false
	for _, line := range strings.Split(section, "\n") {
		if m := clauseMarkerRe.FindString(line); m != "" {
			if started {
				bodies = append(bodies, current.String())
				current.Reset()
			}
			started = true
			current.WriteString(line[len(m):])
			current.WriteString("\n")
			continue
		}
		if started {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}
	if started {
		bodies = append(bodies, current.String())
	}

	if len(bodies) == 0 {
		return []documents.Clause{{
			Index:       1,
			Title:       GeneralClausesTitle,
			Explanation: trimmed,
		}}
	}

	clauses := make([]documents.Clause, 0, len(bodies))
	for i, body := range bodies {
		title, explanation := splitClauseBody(body)
		clauses = append(clauses, documents.Clause{
			Index:       i + 1,
			Title:       title,
			Explanation: explanation,
		})
	}
	return clauses
}

// splitClauseBody takes the text following a clause number and returns
// the title (up to the first colon, sentence break or line break) and
// the remaining explanation.
func splitClauseBody(body string) (string, string) {
	body = strings.TrimSpace(body)

	cut := len(body)
	skip := 0
	if i := strings.Index(body, ":"); i >= 0 && i < cut {
		cut, skip = i, 1
	}
	if i := strings.Index(body, ". "); i >= 0 && i < cut {
		cut, skip = i, 1
	}
	if i := strings.Index(body, "\n"); i >= 0 && i < cut {
		cut, skip = i, 0
	}

	title := cleanClauseTitle(body[:cut])
	explanation := strings.TrimSpace(body[cut+skip:])
	if title == "" {
		title = GeneralClausesTitle
	}
	return title, explanation
}

func cleanClauseTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(s)
}

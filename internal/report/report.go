// Package report renders a completed analysis into downloadable
// documents.
package report

import (
	"errors"
	"fmt"
	"strings"

	"legal-backend/internal/chat"
	"legal-backend/internal/documents"
)

// Supported export formats.
const (
	FormatDocx = "docx"
	FormatText = "text"
)

// Section names selectable in an export request.
const (
	SectionSummary      = "summary"
	SectionClauses      = "clauses"
	SectionRisk         = "risk"
	SectionPlainEnglish = "plainEnglish"
	SectionQA           = "qa"
)

var allSections = []string{SectionSummary, SectionClauses, SectionRisk, SectionPlainEnglish, SectionQA}

var (
	// ErrNotReady is returned when the document has no completed analysis.
	ErrNotReady = errors.New("analysis is not completed")
	// ErrBadFormat is returned for an unknown export format.
	ErrBadFormat = errors.New("unsupported export format")
	// ErrBadSection is returned for an unknown section name.
	ErrBadSection = errors.New("unknown report section")
)

// Rendered is a finished export ready to stream to the client.
type Rendered struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Render produces the report for the document in the requested format.
// An empty section list selects every section; sections absent from the
// record (or an empty chat history) are skipped silently.
func Render(doc documents.Document, history []chat.Entry, format string, sections []string) (Rendered, error) {
	if doc.AnalysisStatus != documents.StatusCompleted || doc.Analysis == nil {
		return Rendered{}, ErrNotReady
	}

	selected, err := normalizeSections(sections)
	if err != nil {
		return Rendered{}, err
	}

	content := buildContent(doc, history, selected)

	switch format {
	case FormatDocx:
		data, err := renderDocx(content)
		if err != nil {
			return Rendered{}, err
		}
		return Rendered{
			Data:        data,
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			FileName:    exportFileName(doc, "docx"),
		}, nil
	case FormatText:
		return Rendered{
			Data:        renderText(content),
			ContentType: "text/plain; charset=utf-8",
			FileName:    exportFileName(doc, "txt"),
		}, nil
	default:
		return Rendered{}, fmt.Errorf("%w: %q", ErrBadFormat, format)
	}
}

// content is the format-independent report body.
type content struct {
	Title    string
	Sections []section
}

type section struct {
	Heading string
	Blocks  []block
}

// block is one paragraph with an optional risk color derived from risk
// level keywords in the text.
type block struct {
	Text  string
	Color string
}

func buildContent(doc documents.Document, history []chat.Entry, selected []string) content {
	analysis := doc.Analysis
	out := content{Title: "Legal Analysis Report: " + doc.FileName}

	info := section{Heading: "Document Information"}
	info.Blocks = append(info.Blocks, block{Text: "Document: " + doc.FileName})
	info.Blocks = append(info.Blocks, block{Text: "Document ID: " + doc.ID})
	if doc.AnalyzedAt != nil {
		info.Blocks = append(info.Blocks, block{Text: "Analyzed: " + doc.AnalyzedAt.Format("2006-01-02 15:04:05 UTC")})
	}
	out.Sections = append(out.Sections, info)

	for _, name := range selected {
		switch name {
		case SectionSummary:
			if len(analysis.Summary) == 0 {
				continue
			}
			sec := section{Heading: "Executive Summary"}
			for _, point := range analysis.Summary {
				sec.Blocks = append(sec.Blocks, block{Text: cleanText(point)})
			}
			out.Sections = append(out.Sections, sec)
		case SectionClauses:
			if len(analysis.KeyClauses) == 0 {
				continue
			}
			sec := section{Heading: "Key Clauses Analysis"}
			for _, clause := range analysis.KeyClauses {
				sec.Blocks = append(sec.Blocks, block{Text: fmt.Sprintf("%d. %s", clause.Index, cleanText(clause.Title))})
				if explanation := cleanText(clause.Explanation); explanation != "" {
					sec.Blocks = append(sec.Blocks, block{Text: explanation})
				}
			}
			out.Sections = append(out.Sections, sec)
		case SectionRisk:
			if strings.TrimSpace(analysis.RiskAssessment) == "" {
				continue
			}
			sec := section{Heading: "Risk Assessment"}
			for _, line := range splitParagraphs(analysis.RiskAssessment) {
				sec.Blocks = append(sec.Blocks, block{Text: line, Color: riskColor(line)})
			}
			out.Sections = append(out.Sections, sec)
		case SectionPlainEnglish:
			if strings.TrimSpace(analysis.PlainEnglish) == "" {
				continue
			}
			sec := section{Heading: "Plain English Explanation"}
			for _, line := range splitParagraphs(analysis.PlainEnglish) {
				sec.Blocks = append(sec.Blocks, block{Text: line})
			}
			out.Sections = append(out.Sections, sec)
		case SectionQA:
			if len(history) == 0 {
				continue
			}
			sec := section{Heading: "Q&A History"}
			for _, entry := range history {
				sec.Blocks = append(sec.Blocks, block{Text: "Question: " + collapseSpace(cleanText(entry.Question))})
				sec.Blocks = append(sec.Blocks, block{Text: "Answer: " + collapseSpace(cleanText(entry.Answer))})
			}
			out.Sections = append(out.Sections, sec)
		}
	}
	return out
}

func normalizeSections(sections []string) ([]string, error) {
	if len(sections) == 0 {
		return allSections, nil
	}
	seen := make(map[string]bool, len(sections))
	out := make([]string, 0, len(sections))
	for _, name := range sections {
		valid := false
		for _, known := range allSections {
			if name == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("%w: %q", ErrBadSection, name)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if cleaned := cleanText(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Risk highlight colors, darkest for the highest risk.
const (
	colorHighRisk   = "C00000"
	colorMediumRisk = "ED7D31"
	colorLowRisk    = "70AD47"
)

func riskColor(line string) string {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "HIGH-RISK") || strings.Contains(upper, "HIGH RISK"):
		return colorHighRisk
	case strings.Contains(upper, "MEDIUM-RISK") || strings.Contains(upper, "MEDIUM RISK"):
		return colorMediumRisk
	case strings.Contains(upper, "LOW-RISK") || strings.Contains(upper, "LOW RISK"):
		return colorLowRisk
	default:
		return ""
	}
}

func exportFileName(doc documents.Document, ext string) string {
	base := strings.TrimSuffix(doc.FileName, filepathExt(doc.FileName))
	base = strings.TrimSpace(base)
	if base == "" {
		base = doc.ID
	}
	return "legal_analysis_" + base + "." + ext
}

func filepathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

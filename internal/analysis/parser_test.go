package analysis

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"legal-backend/internal/documents"
)

const fullResponse = "Some preamble.\n" +
	"EXECUTIVE SUMMARY\n" +
	"This is a lease.\n" +
	"KEY CLAUSES ANALYSIS\n" +
	"1. Payment Terms: Rent due monthly.\n" +
	"2. Termination: 30 day notice.\n" +
	"RISK ASSESSMENT\n" +
	"Moderate risk."

func TestParseFullResponse(t *testing.T) {
	got, err := Parse(fullResponse)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantSummary := []string{"Some preamble.", "This is a lease."}
	if !reflect.DeepEqual(got.Summary, wantSummary) {
		t.Errorf("Summary = %v, want %v", got.Summary, wantSummary)
	}

	wantClauses := []documents.Clause{
		{Index: 1, Title: "Payment Terms", Explanation: "Rent due monthly."},
		{Index: 2, Title: "Termination", Explanation: "30 day notice."},
	}
	if !reflect.DeepEqual(got.KeyClauses, wantClauses) {
		t.Errorf("KeyClauses = %+v, want %+v", got.KeyClauses, wantClauses)
	}

	if got.RiskAssessment != "Moderate risk." {
		t.Errorf("RiskAssessment = %q, want %q", got.RiskAssessment, "Moderate risk.")
	}
	if got.PlainEnglish != "" {
		t.Errorf("PlainEnglish = %q, want empty", got.PlainEnglish)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	inputs := []string{
		fullResponse,
		"just some text with no structure",
		"KEY CLAUSES ANALYSIS\nno numbers here",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		second, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) second call: %v", in, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Parse(%q) not deterministic:\nfirst  %+v\nsecond %+v", in, first, second)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t  \n"} {
		_, err := Parse(in)
		if !errors.Is(err, ErrEmptyAnalysis) {
			t.Errorf("Parse(%q) err = %v, want ErrEmptyAnalysis", in, err)
		}
	}
}

func TestParseHeaderlessInputDegrades(t *testing.T) {
	in := "The model ignored the formatting instructions entirely.\nBut said something useful."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(got.KeyClauses) != 1 {
		t.Fatalf("KeyClauses length = %d, want 1", len(got.KeyClauses))
	}
	clause := got.KeyClauses[0]
	if clause.Index != 1 || clause.Title != GeneralClausesTitle {
		t.Errorf("clause = %+v, want index 1 titled %q", clause, GeneralClausesTitle)
	}
	if clause.Explanation != strings.TrimSpace(in) {
		t.Errorf("Explanation = %q, want full input text", clause.Explanation)
	}

	joined := strings.Join(got.Summary, "\n")
	if !strings.Contains(joined, "ignored the formatting instructions") {
		t.Errorf("Summary %v does not retain the input content", got.Summary)
	}
}

func TestParsePreambleRetained(t *testing.T) {
	in := "Important note the model added on its own.\nEXECUTIVE SUMMARY\nShort summary."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"Important note the model added on its own.", "Short summary."}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Errorf("Summary = %v, want %v", got.Summary, want)
	}
}

func TestParseClauseIndicesContiguous(t *testing.T) {
	// The model numbered the clauses 3, 7, 7; indices are reassigned.
	in := "KEY CLAUSES ANALYSIS\n" +
		"3. Indemnity: Tenant covers damages.\n" +
		"7) Notices. All notices in writing.\n" +
		"7. Severability\nInvalid terms are severed."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.KeyClauses) != 3 {
		t.Fatalf("KeyClauses length = %d, want 3", len(got.KeyClauses))
	}
	for i, clause := range got.KeyClauses {
		if clause.Index != i+1 {
			t.Errorf("clause %d has index %d, want %d", i, clause.Index, i+1)
		}
	}

	if got.KeyClauses[0].Title != "Indemnity" || got.KeyClauses[0].Explanation != "Tenant covers damages." {
		t.Errorf("clause 1 = %+v", got.KeyClauses[0])
	}
	if got.KeyClauses[1].Title != "Notices" || got.KeyClauses[1].Explanation != "All notices in writing." {
		t.Errorf("clause 2 = %+v", got.KeyClauses[1])
	}
	if got.KeyClauses[2].Title != "Severability" || got.KeyClauses[2].Explanation != "Invalid terms are severed." {
		t.Errorf("clause 3 = %+v", got.KeyClauses[2])
	}
}

func TestParseClausesSectionWithoutNumbers(t *testing.T) {
	in := "EXECUTIVE SUMMARY\nA contract.\nKEY CLAUSES ANALYSIS\nThe document has standard boilerplate throughout."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.KeyClauses) != 1 {
		t.Fatalf("KeyClauses length = %d, want 1", len(got.KeyClauses))
	}
	if got.KeyClauses[0].Title != GeneralClausesTitle {
		t.Errorf("Title = %q, want %q", got.KeyClauses[0].Title, GeneralClausesTitle)
	}
	if got.KeyClauses[0].Explanation != "The document has standard boilerplate throughout." {
		t.Errorf("Explanation = %q", got.KeyClauses[0].Explanation)
	}
}

func TestParseMarkdownDecoratedHeaders(t *testing.T) {
	in := "## EXECUTIVE SUMMARY\n- Point one\n* Point two\n" +
		"**KEY CLAUSES ANALYSIS:**\n1. **Deposit**: Two months rent.\n" +
		"### Risk Assessment\nLow overall.\n" +
		"PLAIN ENGLISH EXPLANATION:\nYou rent, you pay."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantSummary := []string{"Point one", "Point two"}
	if !reflect.DeepEqual(got.Summary, wantSummary) {
		t.Errorf("Summary = %v, want %v", got.Summary, wantSummary)
	}
	if len(got.KeyClauses) != 1 || got.KeyClauses[0].Title != "Deposit" {
		t.Errorf("KeyClauses = %+v, want single Deposit clause", got.KeyClauses)
	}
	if got.KeyClauses[0].Explanation != "Two months rent." {
		t.Errorf("Explanation = %q", got.KeyClauses[0].Explanation)
	}
	if got.RiskAssessment != "Low overall." {
		t.Errorf("RiskAssessment = %q", got.RiskAssessment)
	}
	if got.PlainEnglish != "You rent, you pay." {
		t.Errorf("PlainEnglish = %q", got.PlainEnglish)
	}
}

func TestParseSummaryPlaceholder(t *testing.T) {
	in := "EXECUTIVE SUMMARY\nKEY CLAUSES ANALYSIS\n1. Term: One year."
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{SummaryPlaceholder}
	if !reflect.DeepEqual(got.Summary, want) {
		t.Errorf("Summary = %v, want placeholder", got.Summary)
	}
}

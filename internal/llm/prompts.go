package llm

import (
	"fmt"
	"strings"
)

const (
	maxAnalysisChars = 12000
	maxQuestionChars = 10000

	minAnalyzableChars = 200
	minAskableChars    = 100
)

const analysisPromptTemplate = `You are a senior legal document analysis expert with 20+ years of experience reviewing contracts and legal agreements. Below is the content of a legal document that requires thorough professional analysis.

DOCUMENT CONTENT TO ANALYZE:
%s

CRITICAL REQUIREMENTS:
- Base your ENTIRE analysis on the specific content provided above
- Do NOT provide generic legal advice or templates
- Reference specific text, terms, and clauses from THIS document
- Be precise, professional, and actionable in your analysis

ANALYSIS REQUEST:
Provide a comprehensive structured analysis with these exact section headers:

EXECUTIVE SUMMARY
Provide a detailed executive summary covering the document type and purpose, the key parties and their roles, the core obligations, critical dates and deadlines, financial implications, and an overall risk level (Low/Medium/High).

KEY CLAUSES ANALYSIS
Identify and analyze the most critical clauses or provisions from THIS document's content. Format each clause as a numbered item whose first line is a short clause title, followed by a plain-English explanation of what the clause means, the rights and obligations it creates, and any concerns it raises.

RISK ASSESSMENT
Conduct a thorough risk analysis grouped into HIGH-RISK ISSUES, MEDIUM-RISK CONCERNS, and LOW-RISK ITEMS, followed by specific RECOMMENDATIONS to mitigate the identified risks.

PLAIN ENGLISH EXPLANATION
Transform the complex legal language into clear, accessible explanations: what this document does, what each party must do, what happens if things go wrong, important dates and money matters, and how to get out of the agreement.

FORMATTING REQUIREMENTS:
- Use the exact section headers above, each on its own line
- Use markdown formatting for readability within sections
- Do not use emojis or special characters in headings
- Make the analysis comprehensive yet accessible to non-lawyers`

const insufficientContentPrompt = `I need you to provide a legal document analysis, but the document content could not be properly extracted or is insufficient for detailed analysis. This may be due to file format limitations, reading errors, or the document being too short. Still use the exact section headers EXECUTIVE SUMMARY, KEY CLAUSES ANALYSIS, RISK ASSESSMENT and PLAIN ENGLISH EXPLANATION, and explain under each what would normally be covered and why a full analysis is not possible here.`

const questionPromptTemplate = `You are a legal document analysis expert. Below is the content of a legal document. Please answer the specific question based ONLY on this document's content.

DOCUMENT CONTENT:
%s

QUESTION: %s

IMPORTANT: Base your answer on the specific content provided above. Do not provide generic legal advice - reference the actual text in the document.

Please provide:
1. A direct answer to the question based on THIS document's content
2. Reference to relevant sections of THIS document that support your answer
3. Any important context or implications from THIS document
4. Practical advice based on THIS document's specific terms

Keep your answer accessible to someone without legal training, but make sure it's accurate to this document's actual content.`

const questionFallbackTemplate = `I need to ask a question about a legal document, but the document content could not be properly extracted. This may be due to file format limitations.

Question: %s

Since the specific document content is unavailable, please provide general guidance about this type of question and explain what factors would typically be considered when answering it.`

// AnalysisPrompt builds the full-analysis prompt for the given document text.
func AnalysisPrompt(documentText string) string {
	trimmed := strings.TrimSpace(documentText)
	if len(trimmed) < minAnalyzableChars {
		return insufficientContentPrompt
	}
	return fmt.Sprintf(analysisPromptTemplate, truncate(documentText, maxAnalysisChars))
}

// QuestionPrompt builds the Q&A prompt for the given document text and question.
func QuestionPrompt(documentText, question string) string {
	trimmed := strings.TrimSpace(documentText)
	if len(trimmed) < minAskableChars {
		return fmt.Sprintf(questionFallbackTemplate, question)
	}
	return fmt.Sprintf(questionPromptTemplate, truncate(documentText, maxQuestionChars), question)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

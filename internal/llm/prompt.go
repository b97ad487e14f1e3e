package llm

import (
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// ContextSeparator joins retrieved chunk texts.
const ContextSeparator = "\n\n"

// NotAvailableAnswer is what the model is told to reply when the resume does
// not cover the question.
const NotAvailableAnswer = "This information is not available in my resume."

const promptTemplate = `You are an AI assistant that answers questions strictly based on the provided resume content.
Do not hallucinate or generate information not present in the resume.

Resume Context:
{{.context}}

Question: {{.question}}

Answer the question truthfully and concisely using only the information from the resume.
If the question cannot be answered from the resume, respond with "` + NotAvailableAnswer + `"
`

var resumePrompt = prompts.NewPromptTemplate(promptTemplate, []string{"context", "question"})

// JoinContext concatenates chunk texts with a blank line between them.
func JoinContext(texts []string) string {
	return strings.Join(texts, ContextSeparator)
}

// BuildPrompt renders the grounded answering prompt.
func BuildPrompt(context, question string) (string, error) {
	return resumePrompt.Format(map[string]any{
		"context":  context,
		"question": question,
	})
}

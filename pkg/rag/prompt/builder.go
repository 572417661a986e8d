package prompt

import (
	"strings"

	"docmind-be/internal/constant"
	"docmind-be/pkg/rag/registry"
	"docmind-be/pkg/vectorstore"
)

// ChatBuilder composes the retrieval-augmented chat prompt: persona, retrieved
// context, prior turn history, the user's name and current question, and the
// fixed behavioral instructions.
type ChatBuilder struct {
	displayName string
	query       string
	documents   []vectorstore.Document
	history     []registry.Turn
}

func NewChatBuilder(displayName, query string, documents []vectorstore.Document, history []registry.Turn) *ChatBuilder {
	return &ChatBuilder{
		displayName: displayName,
		query:       query,
		documents:   documents,
		history:     history,
	}
}

func (b *ChatBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString(constant.ChatPersona)
	prompt.WriteString("\n\n")

	b.writeContext(&prompt)
	b.writeHistory(&prompt)
	b.writeQuery(&prompt)

	prompt.WriteString(constant.ChatInstructions)
	prompt.WriteString("\n\nResponse:")

	return prompt.String()
}

func (b *ChatBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("Context from documents:\n")
	if len(b.documents) == 0 {
		prompt.WriteString("(no relevant passages found)\n")
	}
	for _, doc := range b.documents {
		prompt.WriteString(doc.Text)
		if doc.Source != "" {
			prompt.WriteString("\n[source: " + doc.Source + "]")
		}
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("\n")
}

func (b *ChatBuilder) writeHistory(prompt *strings.Builder) {
	prompt.WriteString("Chat History:\n")
	if len(b.history) == 0 {
		prompt.WriteString("(none)\n")
	}
	for _, turn := range b.history {
		prompt.WriteString("Human: " + turn.Question + "\n")
		prompt.WriteString("Assistant: " + turn.Answer + "\n")
	}
	prompt.WriteString("\n")
}

func (b *ChatBuilder) writeQuery(prompt *strings.Builder) {
	prompt.WriteString("Current User: " + b.displayName + "\n")
	prompt.WriteString("Current Message: " + b.query + "\n\n")
}

// SummaryBuilder composes the standalone document summary prompt.
type SummaryBuilder struct {
	content string
}

func NewSummaryBuilder(content string) *SummaryBuilder {
	return &SummaryBuilder{content: content}
}

func (b *SummaryBuilder) Build() string {
	var prompt strings.Builder
	prompt.WriteString("Create a concise summary of the following document extract. Focus on the key points and main ideas.\n\n")
	prompt.WriteString("Document Content:\n")
	prompt.WriteString(b.content)
	prompt.WriteString("\n\n")
	prompt.WriteString(constant.SummaryInstructions)
	prompt.WriteString("\n\nSummary:")
	return prompt.String()
}

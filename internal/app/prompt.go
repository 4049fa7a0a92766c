package app

import (
	"strings"

	"ragchat/internal/ai"
	"ragchat/internal/model"
)

const systemInstruction = "You are a helpful AI assistant for Ritual AI. " +
	"Answer based strictly on provided context. " +
	"Provide step-by-step solutions when appropriate. " +
	"Include exact commands/flags in fenced code blocks when relevant. " +
	"If multiple options exist, list them by likelihood. " +
	"If there's not enough evidence in the context, say so clearly."

const formattingReminder = "Write a concise, step-by-step solution. " +
	"Include exact commands/flags in fenced code blocks. " +
	"If multiple options exist, list them by likelihood. " +
	"If not enough evidence, say so."

// formatEntry renders one Q/A pair the way it appears in the prompt.
func formatEntry(question, answer string) string {
	return "Q: " + question + "\nA: " + answer
}

// BuildContext joins entries in the order the retriever returned them.
func BuildContext(entries []model.RetrievedEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e.Question, e.Answer))
	}
	return strings.Join(lines, "\n")
}

func buildPromptMessages(query, contextBlock string) []ai.ChatMessage {
	var user strings.Builder
	user.WriteString("User question: ")
	user.WriteString(query)
	user.WriteString("\n\nContext:\n")
	user.WriteString(contextBlock)
	user.WriteString("\n\n")
	user.WriteString(formattingReminder)

	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: systemInstruction},
		{Role: ai.RoleUser, Content: user.String()},
	}
}

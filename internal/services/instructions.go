package services

import "strings"

const defaultTaskType = "review"

var taskInstructions = map[string][]string{
	"review": {
		"Thoroughly analyze the document content",
		"Provide a comprehensive summary",
		"Identify key points and main themes",
		"Extract important concepts and their relationships",
		"Create linkages to related topics or concepts",
		"Suggest practical applications or implications",
		"Reference specific sections from the document",
	},
	"analyze": {
		"Perform detailed analysis of the content",
		"Break down complex concepts into understandable parts",
		"Identify patterns and relationships",
		"Provide evidence-based insights",
		"Reference specific parts of the document",
	},
	"summarize": {
		"Create a concise overview of the main points",
		"Highlight key findings and conclusions",
		"Maintain the essential message while condensing content",
		"Structure the summary logically",
	},
}

// instructionsFor returns a fresh copy of the instruction set for taskType.
// Unknown types get the review set.
func instructionsFor(taskType string) []string {
	set, ok := taskInstructions[strings.ToLower(strings.TrimSpace(taskType))]
	if !ok {
		set = taskInstructions[defaultTaskType]
	}
	return append([]string(nil), set...)
}

package driven

// PromptStore provides access to completion prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the embedded
	// default or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptGroundedAnswer is the system prompt for answering from retrieved passages.
	// The template expects one %s placeholder for the context block.
	PromptGroundedAnswer = "grounded_answer"

	// PromptQuestion wraps the user's question.
	// The template expects one %s placeholder for the question.
	PromptQuestion = "question"
)

// DefaultPrompts returns the built-in templates keyed by prompt name.
// Stores fall back to these when no customised file exists.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptGroundedAnswer: `You answer questions using ONLY the passages below, taken from the user's documents.

Rules:
1. If the answer is not in the passages, say that the documents do not contain it.
2. Always cite the pages you used in the form [Page N].
3. Never add information that is not in the passages.
4. If the passages are ambiguous or incomplete, ask the user for more detail.

Passages:
%s`,

		PromptQuestion: `Question: %s`,
	}
}

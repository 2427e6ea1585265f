package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Assembly is the assembler's output for one question.
type Assembly struct {
	Text       string
	Citations  []domain.Citation
	TokensUsed int
}

// Assembler turns gate-accepted passages into a grounded answer.
type Assembler struct {
	completion driven.CompletionService
	prompts    driven.PromptStore
	llm        domain.LLMSettings
}

// NewAssembler creates an assembler. prompts may be nil to use the
// built-in templates. completion is normally a *CompletionGateway.
func NewAssembler(completion driven.CompletionService, prompts driven.PromptStore, llm domain.LLMSettings) *Assembler {
	return &Assembler{
		completion: completion,
		prompts:    prompts,
		llm:        llm,
	}
}

// Assemble answers question from accepted. With no accepted passages it
// returns the refusal without calling the provider.
func (a *Assembler) Assemble(ctx context.Context, question string, accepted []domain.SearchResult) (*Assembly, error) {
	if len(accepted) == 0 {
		return Refusal(), nil
	}
	if a.completion == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrCompletionUnavailable)
	}

	messages, err := a.Messages(question, accepted)
	if err != nil {
		return nil, err
	}

	defer logger.Timed("completion")()
	completion, err := a.completion.Complete(ctx, driven.CompletionRequest{
		Messages:    messages,
		MaxTokens:   a.llm.MaxTokens,
		Temperature: a.llm.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &Assembly{
		Text:       strings.TrimSpace(completion.Text),
		Citations:  Citations(accepted),
		TokensUsed: completion.TokensUsed,
	}, nil
}

// Messages builds the system and user messages for question.
func (a *Assembler) Messages(question string, accepted []domain.SearchResult) ([]driven.ChatMessage, error) {
	system, err := a.template(driven.PromptGroundedAnswer)
	if err != nil {
		return nil, err
	}
	user, err := a.template(driven.PromptQuestion)
	if err != nil {
		return nil, err
	}
	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: fmt.Sprintf(system, BuildContext(accepted))},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, question)},
	}, nil
}

func (a *Assembler) template(name string) (string, error) {
	if a.prompts != nil {
		prompt, err := a.prompts.Load(name)
		if err == nil {
			return prompt, nil
		}
		logger.Warn("Prompt %q unavailable, using built-in: %v", name, err)
	}
	prompt, ok := driven.DefaultPrompts()[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	return prompt, nil
}

// BuildContext renders passages as page-tagged blocks separated by a blank
// line, in the given order.
func BuildContext(accepted []domain.SearchResult) string {
	parts := make([]string, 0, len(accepted))
	for i := range accepted {
		parts = append(parts, fmt.Sprintf("[Passage %d - Page %d]\n%s",
			i+1, accepted[i].Chunk.PageNumber, accepted[i].Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Citations derives citation records from accepted results. The model's
// text is never parsed for citations.
func Citations(accepted []domain.SearchResult) []domain.Citation {
	citations := make([]domain.Citation, 0, len(accepted))
	for i := range accepted {
		citations = append(citations, domain.Citation{
			ChunkID:    accepted[i].Chunk.ID,
			DocumentID: accepted[i].Chunk.DocumentID,
			PageNumber: accepted[i].Chunk.PageNumber,
			Score:      accepted[i].Score,
		})
	}
	return citations
}

// Refusal is the fixed decline returned when nothing clears the gate.
func Refusal() *Assembly {
	return &Assembly{
		Text:      domain.RefusalMessage,
		Citations: []domain.Citation{},
	}
}

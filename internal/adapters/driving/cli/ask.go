package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	askDocument      string
	askTopK          int
	askMinSimilarity float64
	askJSON          bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your documents",
	Long: `Retrieves the passages most similar to the question and asks the
language model to answer using only those passages. Passages scoring below
the relevance threshold are discarded; when none remain the question is
refused without calling the model.

Every answered, refused or failed question is recorded in the query log.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocument, "document", "d", "", "only use passages from this document")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "passages to retrieve (0 = configured top_k)")
	askCmd.Flags().Float64Var(&askMinSimilarity, "min-similarity", 0, "relevance threshold (default: configured min_similarity)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	opts := domain.QueryOptions{
		DocumentID: askDocument,
		TopK:       askTopK,
	}
	if cmd.Flags().Changed("min-similarity") {
		floor := askMinSimilarity
		opts.MinSimilarity = &floor
	}

	answer, err := answerService.Answer(commandContext(cmd), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswer(cmd, answer)
	return nil
}

type answerView struct {
	*domain.Answer
	ElapsedMS int64 `json:"elapsed_ms"`
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}
	data, err := json.MarshalIndent(answerView{Answer: answer, ElapsedMS: answer.ElapsedMS()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	cmd.Println()

	if !answer.IsAnswerable {
		cmd.Printf("No passage cleared the relevance threshold (%d retrieved).\n", answer.RetrievedChunksCount)
		return
	}

	cmd.Println("Sources:")
	for i, c := range answer.Citations {
		cmd.Printf("  [%d] %s page %d (%.3f)\n", i+1, c.DocumentID, c.PageNumber, c.Score)
	}
	cmd.Println()
	cmd.Printf("%d passages retrieved, %d tokens, %dms\n",
		answer.RetrievedChunksCount, answer.TokensUsed, answer.ElapsedMS())
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	logsLimit    int
	logsDocument string
	logsJSON     bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the query log",
	Long: `Lists recorded questions newest first, with their outcome and the
passages each one retrieved.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 20, "maximum number of records")
	logsCmd.Flags().StringVarP(&logsDocument, "document", "d", "", "only show queries scoped to this document")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, _ []string) error {
	if queryLogService == nil {
		return errors.New("query log service not configured")
	}

	logs, err := queryLogService.List(commandContext(cmd), domain.QueryLogFilter{
		DocumentID: logsDocument,
		Limit:      logsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list query logs: %w", err)
	}

	if logsJSON {
		data, err := json.MarshalIndent(logs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal query logs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(logs) == 0 {
		cmd.Println("No queries recorded.")
		return nil
	}

	for i := range logs {
		l := &logs[i]
		cmd.Printf("%s  %-8s  %s\n", l.CreatedAt.Format(timeLayout), l.Outcome, l.QueryText)
		scope := "all documents"
		if l.DocumentID != "" {
			scope = l.DocumentID
		}
		cmd.Printf("    Scope: %s, retrieved %d, accepted %d, %d tokens, %dms\n",
			scope, len(l.Retrieved), len(l.AcceptedChunkIDs()), l.TokensUsed, l.ElapsedMS)
		if l.ErrorDetail != "" {
			cmd.Printf("    Error: %s\n", l.ErrorDetail)
		}
		cmd.Println()
	}
	return nil
}

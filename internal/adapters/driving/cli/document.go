package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `Ingest, list, inspect, or delete documents.`,
}

var documentIngestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Extract, chunk and embed files",
	Long: `Reads each file, extracts its pages, splits them into passages and
embeds every passage. A document becomes searchable once it is ready.

Supported formats: PDF (requires pdftotext), plain text, Markdown and CSV.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentIngest,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:     "get [doc-id]",
	Aliases: []string{"show"},
	Short:   "Show document info",
	Args:    cobra.ExactArgs(1),
	RunE:    runDocumentGet,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its passages",
	Long:  `Removes the document and every passage. Query logs that cited it are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentIngestCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)
	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.Printf("  x %s: %v\n", path, err)
			failed++
			continue
		}

		doc, err := documentService.Ingest(ctx, driving.IngestRequest{Filename: path, Content: content})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("  x %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("  + %s: %s (%d pages, %d chunks)\n", path, doc.ID, doc.PageCount, doc.ChunkCount)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:   %s\n", docs[i].Filename)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		if docs[i].Status == domain.DocumentStatusFailed && docs[i].ErrorDetail != "" {
			cmd.Printf("    Error:  %s\n", docs[i].ErrorDetail)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:     %s\n", doc.Filename)
	cmd.Printf("  Type:     %s\n", doc.MIMEType)
	cmd.Printf("  Size:     %d bytes\n", doc.Size)
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Pages:    %d\n", doc.PageCount)
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format(timeLayout))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format(timeLayout))
	if doc.ErrorDetail != "" {
		cmd.Printf("  Error:    %s\n", doc.ErrorDetail)
	}

	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	for i := range chunks {
		cmd.Printf("--- Chunk %d (page %d, %d words) %s\n",
			chunks[i].Index, chunks[i].PageNumber, chunks[i].WordCount, chunks[i].ID)
		cmd.Println(chunks[i].Content)
		cmd.Println()
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	if err := documentService.Delete(commandContext(cmd), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

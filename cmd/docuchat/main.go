// Package main provides the DocuChat CLI for ingesting and querying
// documents without going through an MCP client.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docuchat/docuchat/internal/chat"
	"github.com/docuchat/docuchat/internal/chunker"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/ingest"
	"github.com/docuchat/docuchat/internal/query"
	"github.com/docuchat/docuchat/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Retrieval-augmented chat over your technical documents",
	Long: `CLI for the DocuChat document store.

Upload pdf, docx, txt, md or image files; ask questions answered with
context retrieved from them.

Environment variables:
  OPENAI_API_KEY       OpenAI API key (required for ingest and ask)
  DOCUCHAT_DB_PATH     SQLite database path (default: XDG data dir)
  DOCUCHAT_CHAT_MODEL  Chat model override (default: gpt-4o)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Extract, chunk, embed and store documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded in stored documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents, newest first",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document and chunk counts",
	RunE:  runStatus,
}

var askImage string

func init() {
	askCmd.Flags().StringVar(&askImage, "image", "", "path to an image to analyze alongside the question")
	rootCmd.AddCommand(ingestCmd, askCmd, listCmd, deleteCmd, statusCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*storage.Store, error) {
	dbPath := os.Getenv("DOCUCHAT_DB_PATH")
	if dbPath == "" {
		dbPath = storage.DefaultDBPath()
	}
	return storage.Open(dbPath)
}

func buildClients() (*embedding.Embedder, *chat.Client, error) {
	client, err := embedding.NewClient()
	if err != nil {
		return nil, nil, err
	}
	embedder := embedding.NewEmbedder(client, 0)
	completer := chat.NewClient(client.Client(), os.Getenv("DOCUCHAT_CHAT_MODEL"))
	return embedder, completer, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	embedder, _, err := buildClients()
	if err != nil {
		return err
	}
	pipeline := ingest.NewPipeline(nil, chunker.NewDefaultChunker(), embedder, store, nil)

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		result, err := pipeline.Ingest(ctx, data, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		fmt.Printf("Ingested %s: id=%s chunks=%d\n", path, result.Document.ID, result.ChunkCount)
		if !result.ChunksPersisted {
			fmt.Printf("  warning: chunk write failed; document stored without per-chunk search\n")
		}
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	embedder, completer, err := buildClients()
	if err != nil {
		return err
	}
	pipeline := query.NewPipeline(embedder, store, completer, nil)

	req := &query.Request{Message: strings.Join(args, " ")}
	if askImage != "" {
		image, err := os.ReadFile(askImage)
		if err != nil {
			return fmt.Errorf("read image %s: %w", askImage, err)
		}
		req.Image = image
		req.ImageMIME = mimeForImage(askImage)
	}

	resp, err := pipeline.Answer(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(resp.Reply)
	if len(resp.ContextDocumentIDs) > 0 {
		fmt.Printf("\n(context: %s)\n", strings.Join(resp.ContextDocumentIDs, ", "))
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	docs, err := store.ListDocuments(context.Background(), 0)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents stored.")
		return nil
	}

	for _, doc := range docs {
		size := int64(0)
		if doc.Metadata != nil {
			size = doc.Metadata.Size
		}
		fmt.Printf("%s  %-6s %8d bytes  %s  %s\n",
			doc.CreatedAt.Format("2006-01-02 15:04"), doc.Type, size, doc.ID, doc.Title)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.DeleteDocument(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	docs, err := store.CountDocuments(ctx)
	if err != nil {
		return err
	}
	chunks, err := store.CountChunks(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database:  %s\nDocuments: %d\nChunks:    %d\n", store.Path(), docs, chunks)
	return nil
}

func mimeForImage(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

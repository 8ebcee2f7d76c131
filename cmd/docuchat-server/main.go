// Package main provides the DocuChat MCP server entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docuchat/docuchat/internal/chat"
	"github.com/docuchat/docuchat/internal/chunker"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/ingest"
	mcpserver "github.com/docuchat/docuchat/internal/mcp"
	"github.com/docuchat/docuchat/internal/query"
	"github.com/docuchat/docuchat/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Configuration from environment
	dbPath := getEnv("DOCUCHAT_DB_PATH", storage.DefaultDBPath())
	port := getEnv("PORT", "8080")
	chatModel := getEnv("DOCUCHAT_CHAT_MODEL", "")

	// Initialize storage
	store, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	// Initialize OpenAI clients
	openaiClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	embedder := embedding.NewEmbedder(openaiClient, 0) // Use default concurrency
	completer := chat.NewClient(openaiClient.Client(), chatModel)

	// Build pipelines
	ingestPipeline := ingest.NewPipeline(nil, chunker.NewDefaultChunker(), embedder, store, nil)
	queryPipeline := query.NewPipeline(embedder, store, completer, nil)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Store:  store,
		Ingest: ingestPipeline,
		Query:  queryPipeline,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()

	// Landing page and health endpoint
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))

	// MCP HTTP endpoint (for remote client connections)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting DocuChat MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

package cmd

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/file_store"
	"github.com/karan3613/ragscope/core/vector_store"
	"github.com/karan3613/ragscope/internal/dao"
	"github.com/karan3613/ragscope/internal/logic/chat"
	"github.com/karan3613/ragscope/internal/logic/index"
	"github.com/karan3613/ragscope/internal/logic/retriever"
)

// init wires up all components before the server starts
func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	err := config.ValidateConfiguration(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}

	// Initialize database
	err = dao.InitDB()
	if err != nil {
		g.Log().Fatalf(ctx, "Database connection initialization failed: %v", err)
	}

	// Initialize storage system
	file_store.InitStorage()

	// Initialize vector database
	_, err = vector_store.GetVectorStore()
	if err != nil {
		g.Log().Fatalf(ctx, "Vector store initialization failed: %v", err)
	}

	// Initialize document indexer
	index.InitDocumentIndexer()

	// Initialize retriever configuration
	retriever.InitRetrieverConfig()

	// Initialize chat handler
	chat.InitChat()

	g.Log().Info(ctx, "✓ All components initialized successfully")
}

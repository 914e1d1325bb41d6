package index

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"

	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/indexer"
	"github.com/karan3613/ragscope/core/vector_store"
)

var docIndexSvr *indexer.DocumentIndexer

func InitDocumentIndexer() {
	ctx := gctx.New()

	vectorStore, err := vector_store.GetVectorStore()
	if err != nil {
		g.Log().Fatalf(ctx, "Failed to get vector store: %v", err)
		return
	}
	if err = vectorStore.CreateDatabaseIfNotExists(ctx); err != nil {
		g.Log().Fatalf(ctx, "Failed to create vector database: %v", err)
		return
	}

	docIndexSvr = &indexer.DocumentIndexer{
		Config:      config.LoadIndexerConfig(ctx),
		VectorStore: vectorStore,
	}

	g.Log().Info(ctx, "DocumentIndexService initialized successfully")
}

// GetDocIndexSvr 获取文档索引服务实例
func GetDocIndexSvr() *indexer.DocumentIndexer {
	return docIndexSvr
}

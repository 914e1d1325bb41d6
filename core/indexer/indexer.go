package indexer

import (
	"context"
	"time"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/vector_store"
)

// vectorIndexer 索引图的落库节点：分块文本向量化后写入 Milvus
type vectorIndexer struct {
	embedder   *VectorStoreEmbedder
	collection string
}

// newIndexer creates the indexer node for the specified collection.
func newIndexer(ctx context.Context, conf *config.Config, store vector_store.VectorStore, collectionName string) (idr indexer.Indexer, err error) {
	if collectionName == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "collection name is required")
	}
	if conf.APIKey == "" || conf.BaseURL == "" || conf.EmbeddingModel == "" {
		return nil, errors.New(errors.ErrModelNotConfigured, "embedding apiKey, baseURL and model are required")
	}

	dim := conf.EmbeddingDim
	if dim <= 0 {
		dim = 1024
	}

	emb, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:     conf.APIKey,
		BaseURL:    conf.BaseURL,
		Model:      conf.EmbeddingModel,
		Dimensions: &dim,
		Timeout:    5 * time.Minute,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "failed to create embedder: %v", err)
	}

	g.Log().Infof(ctx, "Created Milvus indexer: collection='%s', dim=%d", collectionName, dim)
	return &vectorIndexer{
		embedder:   NewVectorStoreEmbedder(emb, store),
		collection: collectionName,
	}, nil
}

// NewIndexer 导出的函数，用于创建索引器节点
func NewIndexer(ctx context.Context, conf *config.Config, store vector_store.VectorStore, collectionName string) (indexer.Indexer, error) {
	return newIndexer(ctx, conf, store, collectionName)
}

// Store 实现 eino 的 indexer.Indexer
func (x *vectorIndexer) Store(ctx context.Context, docs []*schema.Document, opts ...indexer.Option) ([]string, error) {
	return x.embedder.EmbedAndStore(ctx, x.collection, docs)
}

package retriever

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/vector_store"
)

// Retriever 基于向量库的文档检索器
type Retriever struct {
	store vector_store.VectorStore
	conf  *config.RetrieverConfig
}

// New 创建检索器
func New(store vector_store.VectorStore, conf *config.RetrieverConfig) *Retriever {
	return &Retriever{
		store: store,
		conf:  conf,
	}
}

// Retrieve 执行检索（主方法）
func (x *Retriever) Retrieve(ctx context.Context, req *RetrieveReq) ([]*schema.Document, error) {
	if req == nil || req.Query == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "query cannot be empty")
	}
	if req.KnowledgeId == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "knowledge id cannot be empty")
	}

	// 使用配置中的默认值填充请求中未提供的参数
	topK := x.conf.TopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	score := x.conf.Score
	if req.Score != nil {
		score = *req.Score
	}

	g.Log().Infof(ctx, "retrieve query: %v, knowledge: %v, topK: %d", common.TruncateRunes(req.Query, 120), req.KnowledgeId, topK)

	docs, err := x.store.VectorSearch(ctx, x.conf, req.Query, req.KnowledgeId, topK, score)
	if err != nil {
		g.Log().Errorf(ctx, "vector search failed, err=%v", err)
		return nil, errors.Newf(errors.ErrRetrievalFailed, "vector search failed: %v", err)
	}

	g.Log().Infof(ctx, "retrieve returned %d documents", len(docs))
	return docs, nil
}

package retriever

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/vector_store"
)

// fakeStore 仅实现 VectorSearch，其余方法走嵌入接口（不会被调用）
type fakeStore struct {
	vector_store.VectorStore
	searchFn func(ctx context.Context, query, knowledgeId string, topK int, score float64) ([]*schema.Document, error)
}

func (f *fakeStore) VectorSearch(ctx context.Context, _ common.EmbeddingConfig, query string, knowledgeId string, topK int, score float64) ([]*schema.Document, error) {
	return f.searchFn(ctx, query, knowledgeId, topK, score)
}

func TestRetrieve(t *testing.T) {
	conf := &config.RetrieverConfig{TopK: 3, Score: 0.2}

	t.Run("参数校验", func(t *testing.T) {
		r := New(&fakeStore{}, conf)

		_, err := r.Retrieve(context.Background(), &RetrieveReq{KnowledgeId: "kb1"})
		assert.True(t, errors.IsCode(err, errors.ErrInvalidParameter))

		_, err = r.Retrieve(context.Background(), &RetrieveReq{Query: "question"})
		assert.True(t, errors.IsCode(err, errors.ErrInvalidParameter))
	})

	t.Run("使用配置默认TopK", func(t *testing.T) {
		var gotTopK int
		var gotScore float64
		store := &fakeStore{searchFn: func(_ context.Context, _, _ string, topK int, score float64) ([]*schema.Document, error) {
			gotTopK = topK
			gotScore = score
			return []*schema.Document{{ID: "1", Content: "doc"}}, nil
		}}

		r := New(store, conf)
		docs, err := r.Retrieve(context.Background(), &RetrieveReq{Query: "question", KnowledgeId: "kb1"})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, 3, gotTopK)
		assert.Equal(t, 0.2, gotScore)
	})

	t.Run("请求参数覆盖默认值", func(t *testing.T) {
		var gotTopK int
		store := &fakeStore{searchFn: func(_ context.Context, _, _ string, topK int, _ float64) ([]*schema.Document, error) {
			gotTopK = topK
			return nil, nil
		}}

		r := New(store, conf)
		req := &RetrieveReq{Query: "question", KnowledgeId: "kb1", TopK: common.Of(7)}
		_, err := r.Retrieve(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 7, gotTopK)
	})

	t.Run("底层错误包装为检索失败", func(t *testing.T) {
		store := &fakeStore{searchFn: func(_ context.Context, _, _ string, _ int, _ float64) ([]*schema.Document, error) {
			return nil, assert.AnError
		}}

		r := New(store, conf)
		_, err := r.Retrieve(context.Background(), &RetrieveReq{Query: "question", KnowledgeId: "kb1"})
		assert.True(t, errors.IsCode(err, errors.ErrRetrievalFailed))
	})
}

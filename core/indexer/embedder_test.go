package indexer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/vector_store"
)

// fakeEmbedder 可编程的 embedding 实现
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, texts []string) ([][]float64, error)
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(call, texts)
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{0.1, 0.2}
	}
	return vectors, nil
}

// fakeInsertStore 仅实现 InsertVectors，其余方法走嵌入接口（不会被调用）
type fakeInsertStore struct {
	vector_store.VectorStore
	insertFn func(chunks []*schema.Document, vectors [][]float32) ([]string, error)
}

func (f *fakeInsertStore) InsertVectors(_ context.Context, _ string, chunks []*schema.Document, vectors [][]float32) ([]string, error) {
	if f.insertFn != nil {
		return f.insertFn(chunks, vectors)
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids, nil
}

func chunkDocs(n int) []*schema.Document {
	docs := make([]*schema.Document, n)
	for i := range docs {
		docs[i] = &schema.Document{
			ID:      fmt.Sprintf("chunk-%03d", i),
			Content: fmt.Sprintf("内容 %d", i),
		}
	}
	return docs
}

func TestEmbedAndStore(t *testing.T) {
	ctx := context.Background()

	t.Run("空输入直接返回", func(t *testing.T) {
		v := NewVectorStoreEmbedder(&fakeEmbedder{}, &fakeInsertStore{})
		ids, err := v.EmbedAndStore(ctx, "kb1", nil)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("结果按原始顺序组装", func(t *testing.T) {
		// 70 个分块，按每批 30 个切成 3 批并发执行
		v := NewVectorStoreEmbedder(&fakeEmbedder{}, &fakeInsertStore{})
		docs := chunkDocs(70)

		ids, err := v.EmbedAndStore(ctx, "kb1", docs)
		require.NoError(t, err)
		require.Len(t, ids, 70)
		for i, id := range ids {
			assert.Equal(t, fmt.Sprintf("chunk-%03d", i), id)
		}
	})

	t.Run("嵌入失败后重试成功", func(t *testing.T) {
		emb := &fakeEmbedder{fn: func(call int, texts []string) ([][]float64, error) {
			if call == 1 {
				return nil, assert.AnError
			}
			vectors := make([][]float64, len(texts))
			for i := range texts {
				vectors[i] = []float64{0.5}
			}
			return vectors, nil
		}}
		v := NewVectorStoreEmbedder(emb, &fakeInsertStore{})

		ids, err := v.EmbedAndStore(ctx, "kb1", chunkDocs(2))
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Equal(t, 2, emb.calls)
	})

	t.Run("写入失败返回向量插入错误", func(t *testing.T) {
		store := &fakeInsertStore{insertFn: func(_ []*schema.Document, _ [][]float32) ([]string, error) {
			return nil, assert.AnError
		}}
		v := NewVectorStoreEmbedder(&fakeEmbedder{}, store)

		_, err := v.EmbedAndStore(ctx, "kb1", chunkDocs(2))
		assert.True(t, errors.IsCode(err, errors.ErrVectorInsert))
	})

	t.Run("向量数量不匹配视为失败", func(t *testing.T) {
		call := 0
		emb := &fakeEmbedder{fn: func(_ int, texts []string) ([][]float64, error) {
			call++
			if call == 1 {
				return [][]float64{{0.1}}, nil // 数量对不上，触发重试
			}
			vectors := make([][]float64, len(texts))
			for i := range texts {
				vectors[i] = []float64{0.1}
			}
			return vectors, nil
		}}
		v := NewVectorStoreEmbedder(emb, &fakeInsertStore{})

		ids, err := v.EmbedAndStore(ctx, "kb1", chunkDocs(2))
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Equal(t, 2, call)
	})
}

func TestCreateBatches(t *testing.T) {
	v := NewVectorStoreEmbedder(&fakeEmbedder{}, &fakeInsertStore{})

	batches := v.createBatches(chunkDocs(65), 30)
	require.Len(t, batches, 3)
	assert.Equal(t, 30, len(batches[0].Chunks))
	assert.Equal(t, 30, len(batches[1].Chunks))
	assert.Equal(t, 5, len(batches[2].Chunks))
	assert.Equal(t, 60, batches[2].Start)
	assert.Equal(t, 65, batches[2].End)
	assert.Equal(t, batches[1].Chunks[0].Content, batches[1].Texts[0])
}

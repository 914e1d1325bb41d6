package indexer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/vector_store"
)

// VectorStoreEmbedder 向量化并写入向量库，带批处理、并发与重试
type VectorStoreEmbedder struct {
	embedding   embedding.Embedder
	vectorStore vector_store.VectorStore
}

// BatchInfo 批次信息
type BatchInfo struct {
	Index  int
	Start  int
	End    int
	Chunks []*schema.Document
	Texts  []string
}

// BatchResult 批次结果
type BatchResult struct {
	BatchIndex int
	ChunkIds   []string
	Error      error
}

// NewVectorStoreEmbedder 创建向量存储嵌入器
func NewVectorStoreEmbedder(embedder embedding.Embedder, vectorStore vector_store.VectorStore) *VectorStoreEmbedder {
	return &VectorStoreEmbedder{
		embedding:   embedder,
		vectorStore: vectorStore,
	}
}

// EmbedAndStore 嵌入向量并存储，按批并发执行
func (v *VectorStoreEmbedder) EmbedAndStore(ctx context.Context, collectionName string, chunks []*schema.Document) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	const (
		batchSize    = 30               // 每批30个文本（避免API限制）
		concurrency  = 3                // 3个并发（避免API限流）
		maxRetries   = 5                // 最大重试次数
		initialDelay = 1 * time.Second  // 初始延迟
		maxDelay     = 30 * time.Second // 最大延迟
		multiplier   = 2.0              // 指数退避倍数
	)

	g.Log().Infof(ctx, "Starting vectorization of %d chunks (BatchSize: %d, Concurrency: %d)",
		len(chunks), batchSize, concurrency)

	// 1. 分批处理
	batches := v.createBatches(chunks, batchSize)
	g.Log().Infof(ctx, "Split into %d batches", len(batches))

	// 2. 并发处理批次
	resultChan := make(chan BatchResult, len(batches))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(b BatchInfo) {
			defer wg.Done()

			// 获取并发许可
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			vectors, err := v.embedTextsWithRetry(ctx, b.Texts, maxRetries, initialDelay, maxDelay, multiplier)
			if err != nil {
				resultChan <- BatchResult{
					BatchIndex: b.Index,
					Error:      errors.Newf(errors.ErrEmbeddingFailed, "batch %d failed: %v", b.Index, err),
				}
				return
			}

			// 存储到向量数据库
			chunkIds, err := v.vectorStore.InsertVectors(ctx, collectionName, b.Chunks, vectors)
			if err != nil {
				resultChan <- BatchResult{
					BatchIndex: b.Index,
					Error:      errors.Newf(errors.ErrVectorInsert, "batch %d storage failed: %v", b.Index, err),
				}
				return
			}

			resultChan <- BatchResult{
				BatchIndex: b.Index,
				ChunkIds:   chunkIds,
			}

			g.Log().Infof(ctx, "Batch %d completed successfully, chunks: %d", b.Index, len(b.Chunks))
		}(batch)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// 3. 收集结果
	allChunkIds := make([]string, len(chunks))
	batchResults := make([]BatchResult, len(batches))

	for result := range resultChan {
		if result.Error != nil {
			return nil, result.Error
		}
		batchResults[result.BatchIndex] = result
	}

	// 4. 按顺序组装结果
	currentIndex := 0
	for _, batch := range batches {
		result := batchResults[batch.Index]
		copy(allChunkIds[currentIndex:currentIndex+len(result.ChunkIds)], result.ChunkIds)
		currentIndex += len(result.ChunkIds)
	}

	g.Log().Infof(ctx, "Vectorization completed, total chunks: %d", len(allChunkIds))
	return allChunkIds, nil
}

// createBatches 创建批次
func (v *VectorStoreEmbedder) createBatches(chunks []*schema.Document, batchSize int) []BatchInfo {
	var batches []BatchInfo
	batchCount := int(math.Ceil(float64(len(chunks)) / float64(batchSize)))

	for i := 0; i < batchCount; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batchChunks := chunks[start:end]
		texts := make([]string, len(batchChunks))
		for j, chunk := range batchChunks {
			texts[j] = chunk.Content
		}

		batches = append(batches, BatchInfo{
			Index:  i,
			Start:  start,
			End:    end,
			Chunks: batchChunks,
			Texts:  texts,
		})
	}

	return batches
}

// embedTextsWithRetry 带重试的文本向量化
func (v *VectorStoreEmbedder) embedTextsWithRetry(ctx context.Context, texts []string, maxRetries int, initialDelay, maxDelay time.Duration, multiplier float64) ([][]float32, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.Log().Infof(ctx, "Retrying embedding attempt %d/%d after %v delay",
				attempt, maxRetries, delay)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				// 指数退避
				delay = time.Duration(float64(delay) * multiplier)
				if delay > maxDelay {
					delay = maxDelay
				}
			}
		}

		vectors, err := v.embedding.EmbedStrings(ctx, texts)
		if err != nil {
			lastErr = err
			g.Log().Warningf(ctx, "Embedding attempt %d failed: %v", attempt+1, err)
			continue
		}
		if len(vectors) != len(texts) {
			lastErr = errors.Newf(errors.ErrEmbeddingFailed,
				"embedding returned %d vectors for %d texts", len(vectors), len(texts))
			continue
		}

		return float64ToFloat32Batch(vectors), nil
	}

	return nil, errors.Newf(errors.ErrEmbeddingFailed, "embedding failed after %d retries, last error: %v", maxRetries, lastErr)
}

func float64ToFloat32Batch(vectors [][]float64) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, vec := range vectors {
		f32 := make([]float32, len(vec))
		for j, v := range vec {
			f32[j] = float32(v)
		}
		out[i] = f32
	}
	return out
}

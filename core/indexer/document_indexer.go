package indexer

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/document"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/file_store"
	"github.com/karan3613/ragscope/core/vector_store"
)

// DocumentIndexer 文档索引服务，一个知识库对应一个 Milvus collection
type DocumentIndexer struct {
	Config      *config.Config
	VectorStore vector_store.VectorStore
}

// IndexReq Document indexing request parameters
type IndexReq struct {
	KnowledgeId string // 知识库 ID，同时作为 collection 名
	DocumentId  string // 文档 ID，缺省时自动生成
	Source      string // 本地路径、http(s) 链接或 rustfs:// 对象
	ChunkSize   int    // Document chunk size
	OverlapSize int    // Chunk overlap size
	Separator   string // Custom separator
}

// BatchIndexReq Batch indexing request parameters
type BatchIndexReq struct {
	KnowledgeId string
	Sources     []string
	ChunkSize   int
	OverlapSize int
	Separator   string
}

// IndexResult 单个文档的索引结果
type IndexResult struct {
	DocumentId string
	Source     string
	ChunkIds   []string
	Error      error
}

// DocumentIndex 索引单个文档：加载、切分、向量化并写入向量库
func (s *DocumentIndexer) DocumentIndex(ctx context.Context, req *IndexReq) (*IndexResult, error) {
	if req.KnowledgeId == "" || req.Source == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "knowledgeId and source are required")
	}
	// knowledgeId 直接用作 collection 名，需满足 Milvus 命名规则
	if !common.ValidateCollectionName(req.KnowledgeId) {
		return nil, errors.Newf(errors.ErrInvalidParameter, "invalid knowledgeId: %s", req.KnowledgeId)
	}
	if req.ChunkSize <= 0 {
		req.ChunkSize = 1000
	}
	if req.OverlapSize < 0 {
		req.OverlapSize = 0
	}
	documentId := req.DocumentId
	if documentId == "" {
		documentId = uuid.New().String()
	}

	// collection 不存在时按需创建
	exists, err := s.VectorStore.CollectionExists(ctx, req.KnowledgeId)
	if err != nil {
		return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to check collection %s: %v", req.KnowledgeId, err)
	}
	if !exists {
		if err := s.VectorStore.CreateCollection(ctx, req.KnowledgeId); err != nil {
			return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to create collection %s: %v", req.KnowledgeId, err)
		}
		g.Log().Infof(ctx, "Created collection for knowledge base, knowledgeId=%s", req.KnowledgeId)
	}

	rustfs := file_store.GetRustfsConfig()
	runner, err := BuildIndexer(ctx, s.Config, s.VectorStore,
		rustfs.Client, rustfs.BucketName,
		req.KnowledgeId, req.ChunkSize, req.OverlapSize, req.Separator)
	if err != nil {
		return nil, errors.Newf(errors.ErrIndexingFailed, "failed to build indexing graph: %v", err)
	}

	// 落库节点从 ctx 读取归属信息
	runCtx := context.WithValue(ctx, common.DocumentId, documentId)
	runCtx = context.WithValue(runCtx, common.KnowledgeId, req.KnowledgeId)

	chunkIds, err := runner.Invoke(runCtx, document.Source{URI: req.Source})
	if err != nil {
		g.Log().Errorf(ctx, "Document indexing failed, documentId=%s, source=%s, err=%v", documentId, req.Source, err)
		return nil, errors.Newf(errors.ErrIndexingFailed, "indexing failed for %s: %v", req.Source, err)
	}

	g.Log().Infof(ctx, "Document indexed successfully, knowledgeId=%s, documentId=%s, chunks=%d",
		req.KnowledgeId, documentId, len(chunkIds))
	return &IndexResult{
		DocumentId: documentId,
		Source:     req.Source,
		ChunkIds:   chunkIds,
	}, nil
}

// BatchDocumentIndex 批量索引（异步），限制并发数为 5
func (s *DocumentIndexer) BatchDocumentIndex(ctx context.Context, req *BatchIndexReq) error {
	if req.KnowledgeId == "" || len(req.Sources) == 0 {
		return errors.New(errors.ErrInvalidParameter, "knowledgeId and sources are required")
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5)
	results := make(chan IndexResult, len(req.Sources))

	for _, source := range req.Sources {
		wg.Add(1)
		source := source // 捕获循环变量
		common.SafeGo(ctx, fmt.Sprintf("IndexDoc-%s", source), func() {
			defer wg.Done()

			// 获取并发许可
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res, err := s.DocumentIndex(ctx, &IndexReq{
				KnowledgeId: req.KnowledgeId,
				Source:      source,
				ChunkSize:   req.ChunkSize,
				OverlapSize: req.OverlapSize,
				Separator:   req.Separator,
			})
			if err != nil {
				results <- IndexResult{Source: source, Error: err}
				return
			}
			results <- *res
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// 统计结果
	go func() {
		successCount := 0
		failCount := 0
		for result := range results {
			if result.Error != nil {
				failCount++
			} else {
				successCount++
			}
		}
		g.Log().Infof(ctx, "Batch document indexing completed: success=%d, failed=%d, total=%d",
			successCount, failCount, len(req.Sources))
	}()

	return nil
}

package ragscope

import (
	"context"
	"fmt"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/file_store"
	"github.com/karan3613/ragscope/core/indexer"
	"github.com/karan3613/ragscope/internal/logic/index"
)

// Indexer 单文档入库接口：同步执行切分、向量化和写入
func (c *ControllerV1) Indexer(ctx context.Context, req *v1.IndexerReq) (res *v1.IndexerRes, err error) {
	// Log request parameters
	g.Log().Infof(ctx, "Indexer request received - URL: %s, KnowledgeId: %s, ChunkSize: %d, OverlapSize: %d, Separator: '%s'",
		req.URL, req.KnowledgeId, req.ChunkSize, req.OverlapSize, req.Separator)

	source, rustfsKey, err := c.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := index.GetDocIndexSvr().DocumentIndex(ctx, &indexer.IndexReq{
		KnowledgeId: req.KnowledgeId,
		Source:      source,
		ChunkSize:   req.ChunkSize,
		OverlapSize: req.OverlapSize,
		Separator:   req.Separator,
	})
	if err != nil {
		// 本次上传产生的对象随失败的入库一起清理
		if rustfsKey != "" {
			rustfsConfig := file_store.GetRustfsConfig()
			if delErr := file_store.DeleteObject(ctx, rustfsConfig.Client, rustfsConfig.BucketName, rustfsKey); delErr != nil {
				g.Log().Warningf(ctx, "failed to clean up uploaded object %s: %v", rustfsKey, delErr)
			}
		}
		return nil, err
	}

	return &v1.IndexerRes{
		DocumentId: result.DocumentId,
		ChunkCount: len(result.ChunkIds),
		Status:     "completed",
	}, nil
}

// BatchIndexer 批量入库接口：任务异步执行，立即返回
func (c *ControllerV1) BatchIndexer(ctx context.Context, req *v1.BatchIndexerReq) (res *v1.BatchIndexerRes, err error) {
	g.Log().Infof(ctx, "BatchIndexer request received - KnowledgeId: %s, Sources: %d", req.KnowledgeId, len(req.Sources))

	if len(req.Sources) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "sources must not be empty")
	}

	docIndexSvr := index.GetDocIndexSvr()
	batchReq := &indexer.BatchIndexReq{
		KnowledgeId: req.KnowledgeId,
		Sources:     req.Sources,
		ChunkSize:   req.ChunkSize,
		OverlapSize: req.OverlapSize,
		Separator:   req.Separator,
	}

	asyncCtx := context.Background()
	common.SafeGo(asyncCtx, "batch_document_index", func() {
		if err := docIndexSvr.BatchDocumentIndex(asyncCtx, batchReq); err != nil {
			g.Log().Errorf(asyncCtx, "batch document index failed, err=%v", err)
		}
	})

	return &v1.BatchIndexerRes{
		Message: fmt.Sprintf("indexing task started for %d sources", len(req.Sources)),
	}, nil
}

// DocumentDelete 删除知识库中某文档的全部分块
func (c *ControllerV1) DocumentDelete(ctx context.Context, req *v1.DocumentDeleteReq) (res *v1.DocumentDeleteRes, err error) {
	g.Log().Infof(ctx, "DocumentDelete request received - KnowledgeId: %s, DocumentId: %s", req.KnowledgeId, req.DocumentId)

	if err = index.GetDocIndexSvr().DeleteDocument(ctx, req.KnowledgeId, req.DocumentId); err != nil {
		return nil, err
	}
	return &v1.DocumentDeleteRes{Message: "document deleted"}, nil
}

// resolveSource 把上传文件或 URL 归一化为索引源
// 上传文件按配置的存储类型落盘；RustFS 存储返回 rustfs:// 地址和对象 key
func (c *ControllerV1) resolveSource(ctx context.Context, req *v1.IndexerReq) (source string, rustfsKey string, err error) {
	if req.File == nil {
		if req.URL == "" {
			return "", "", errors.New(errors.ErrInvalidParameter, "either file or url is required")
		}
		return req.URL, "", nil
	}

	file, err := req.File.Open()
	if err != nil {
		return "", "", errors.Newf(errors.ErrFileUploadFailed, "failed to open uploaded file: %v", err)
	}
	defer file.Close()

	if file_store.GetStorageType() == file_store.StorageTypeRustFS {
		rustfsConfig := file_store.GetRustfsConfig()
		_, rustfsKey, err := file_store.SaveFileToRustFS(ctx, rustfsConfig.Client, rustfsConfig.BucketName,
			req.KnowledgeId, req.File.Filename, file)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("rustfs://%s/%s", rustfsConfig.BucketName, rustfsKey), rustfsKey, nil
	}

	localPath, err := file_store.SaveFileToLocal(ctx, req.KnowledgeId, req.File.Filename, file)
	if err != nil {
		return "", "", err
	}
	return localPath, "", nil
}

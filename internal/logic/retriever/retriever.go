package retriever

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/retriever"
	"github.com/karan3613/ragscope/core/vector_store"
)

var retrieverSvr *retriever.Retriever

func InitRetrieverConfig() {
	ctx := gctx.New()
	vectorStore, err := vector_store.GetVectorStore()
	if err != nil {
		g.Log().Fatalf(ctx, "Failed to get vector store: %v", err)
		return
	}
	retrieverSvr = retriever.New(vectorStore, config.LoadRetrieverConfig(ctx))
}

// GetRetriever 获取检索服务实例
func GetRetriever() *retriever.Retriever {
	return retrieverSvr
}

// ProcessRetrieval 处理检索请求
func ProcessRetrieval(ctx context.Context, req *v1.RetrieverReq) (*v1.RetrieverRes, error) {
	g.Log().Infof(ctx, "retrieveReq: question=%s, knowledgeId=%s, topK=%d, score=%f",
		req.Question, req.KnowledgeId, req.TopK, req.Score)

	// 构建内部请求，只传递必需参数和显式指定的可选参数
	retrieveReq := &retriever.RetrieveReq{
		Query:       req.Question,
		KnowledgeId: req.KnowledgeId,
	}

	// 只有当请求中明确提供了参数时才覆盖配置默认值
	if req.TopK != 0 {
		retrieveReq.TopK = &req.TopK
	}
	if req.Score != 0 {
		retrieveReq.Score = &req.Score
	}

	docs, err := retrieverSvr.Retrieve(ctx, retrieveReq)
	if err != nil {
		return nil, err
	}
	return &v1.RetrieverRes{Document: docs}, nil
}

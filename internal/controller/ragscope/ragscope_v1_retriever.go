package ragscope

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/internal/logic/retriever"
)

func (c *ControllerV1) Retriever(ctx context.Context, req *v1.RetrieverReq) (res *v1.RetrieverRes, err error) {
	// Log request parameters
	g.Log().Infof(ctx, "Retriever request received - Question: %s, KnowledgeId: %s, TopK: %d, Score: %f",
		req.Question, req.KnowledgeId, req.TopK, req.Score)

	return retriever.ProcessRetrieval(ctx, req)
}

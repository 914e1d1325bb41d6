package ragscope

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/internal/logic/chat"
)

func (c *ControllerV1) Chat(ctx context.Context, req *v1.ChatReq) (res *v1.ChatRes, err error) {
	// Log request parameters
	g.Log().Infof(ctx, "Chat request received - ConvID: %s, Question: %s, KnowledgeId: %s, Strategy: %s, TopK: %d, Score: %f",
		req.ConvID, req.Question, req.KnowledgeId, req.Strategy, req.TopK, req.Score)

	return chat.GetChat().ProcessChat(ctx, req)
}

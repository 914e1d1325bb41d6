package ragscope

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/internal/logic/conversation"
)

// ConversationList 会话列表接口
func (c *ControllerV1) ConversationList(ctx context.Context, req *v1.ConversationListReq) (res *v1.ConversationListRes, err error) {
	g.Log().Infof(ctx, "ConversationList request received - Page: %d, PageSize: %d", req.Page, req.PageSize)

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, total, err := conversation.NewManager().ListConversations(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &v1.ConversationListRes{
		Conversations: items,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// ConversationDetail 会话详情接口
func (c *ControllerV1) ConversationDetail(ctx context.Context, req *v1.ConversationDetailReq) (res *v1.ConversationDetailRes, err error) {
	g.Log().Infof(ctx, "ConversationDetail request received - ConvID: %s", req.ConvID)

	return conversation.NewManager().GetConversationDetail(ctx, req.ConvID)
}

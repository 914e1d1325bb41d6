package conversation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/internal/dao"
	"github.com/karan3613/ragscope/internal/history"
	gormModel "github.com/karan3613/ragscope/internal/model/gorm"
)

// Manager 会话管理器
type Manager struct {
	historyManager *history.Manager
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	return &Manager{
		historyManager: history.NewManager(),
	}
}

// ListConversations 获取会话列表
func (m *Manager) ListConversations(ctx context.Context, page, pageSize int) ([]*v1.ConversationItem, int64, error) {
	conversations, total, err := dao.Conversation.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*v1.ConversationItem, 0, len(conversations))
	for _, conv := range conversations {
		items = append(items, m.toConversationItem(ctx, conv))
	}
	return items, total, nil
}

// GetConversationDetail 获取会话详情，包含全部消息
func (m *Manager) GetConversationDetail(ctx context.Context, convID string) (*v1.ConversationDetailRes, error) {
	conv, err := dao.Conversation.GetByConvID(ctx, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errors.Newf(errors.ErrConversationNotFound, "conversation not found: %s", convID)
	}

	messages, err := m.historyManager.GetConversationMessages(ctx, convID)
	if err != nil {
		g.Log().Warningf(ctx, "failed to load conversation messages: %v", err)
		messages = nil
	}

	messageItems := make([]*v1.MessageItem, 0, len(messages))
	for _, msg := range messages {
		item := &v1.MessageItem{
			MsgID:      msg.MsgID,
			Role:       msg.Role,
			Content:    msg.Content,
			CreateTime: formatTime(msg.CreateTime),
		}
		if len(msg.Metadata) > 0 {
			var metadata map[string]any
			if err := json.Unmarshal(msg.Metadata, &metadata); err != nil {
				g.Log().Warningf(ctx, "failed to parse message metadata: %v", err)
			} else {
				item.Metadata = metadata
			}
		}
		messageItems = append(messageItems, item)
	}

	return &v1.ConversationDetailRes{
		ConvID:       conv.ConvID,
		Title:        conv.Title,
		Strategy:     conv.Strategy,
		Status:       conv.Status,
		MessageCount: len(messageItems),
		Messages:     messageItems,
		CreateTime:   formatTime(conv.CreateTime),
		UpdateTime:   formatTime(conv.UpdateTime),
	}, nil
}

// toConversationItem 转换为列表项，消息数查询失败时置0
func (m *Manager) toConversationItem(ctx context.Context, conv *gormModel.Conversation) *v1.ConversationItem {
	count, err := dao.Message.CountByConvID(ctx, conv.ConvID)
	if err != nil {
		g.Log().Warningf(ctx, "failed to count messages for %s: %v", conv.ConvID, err)
		count = 0
	}
	return &v1.ConversationItem{
		ConvID:       conv.ConvID,
		Title:        conv.Title,
		Strategy:     conv.Strategy,
		Status:       conv.Status,
		MessageCount: count,
		CreateTime:   formatTime(conv.CreateTime),
		UpdateTime:   formatTime(conv.UpdateTime),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

// ConversationListReq 会话列表请求
type ConversationListReq struct {
	g.Meta   `path:"/v1/conversations" method:"get" tags:"conversation"`
	Page     int `json:"page" d:"1"`       // 页码，默认1
	PageSize int `json:"page_size" d:"20"` // 每页数量，默认20
}

// ConversationListRes 会话列表响应
type ConversationListRes struct {
	g.Meta        `mime:"application/json"`
	Conversations []*ConversationItem `json:"conversations"`
	Total         int64               `json:"total"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"page_size"`
}

// ConversationItem 会话列表项
type ConversationItem struct {
	ConvID       string `json:"conv_id"`
	Title        string `json:"title"`
	Strategy     string `json:"strategy"`
	Status       string `json:"status"`
	MessageCount int64  `json:"message_count"`
	CreateTime   string `json:"create_time"`
	UpdateTime   string `json:"update_time"`
}

// ConversationDetailReq 会话详情请求
type ConversationDetailReq struct {
	g.Meta `path:"/v1/conversations/:conv_id" method:"get" tags:"conversation"`
	ConvID string `json:"conv_id" v:"required"`
}

// ConversationDetailRes 会话详情响应
type ConversationDetailRes struct {
	g.Meta       `mime:"application/json"`
	ConvID       string         `json:"conv_id"`
	Title        string         `json:"title"`
	Strategy     string         `json:"strategy"`
	Status       string         `json:"status"`
	MessageCount int            `json:"message_count"`
	Messages     []*MessageItem `json:"messages"`
	CreateTime   string         `json:"create_time"`
	UpdateTime   string         `json:"update_time"`
}

// MessageItem 消息项
type MessageItem struct {
	MsgID      string         `json:"msg_id"`
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"` // 策略、重试次数、引用条数等
	CreateTime string         `json:"create_time"`
}

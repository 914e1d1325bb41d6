package v1

import (
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type ChatReq struct {
	g.Meta      `path:"/v1/chat" method:"post" tags:"chat"`
	Question    string  `json:"question" v:"required"`
	KnowledgeId string  `json:"knowledge_id" v:"required"`
	Strategy    string  `json:"strategy" d:"adaptive"` // basic/corrective/self/adaptive
	ConvID      string  `json:"conv_id"`               // 会话id（可选，传入则保存历史）
	TopK        int     `json:"top_k"`                 // 默认为3
	Score       float64 `json:"score"`                 // 默认为0，按相似度排名截断
}

type ChatRes struct {
	g.Meta     `mime:"application/json"`
	Answer     string             `json:"answer"`
	Question   string             `json:"question"` // 最终使用的问题（可能被改写过）
	Strategy   string             `json:"strategy"`
	References []*schema.Document `json:"references"`
	RetryCount int                `json:"retry_count"`
	Degraded   bool               `json:"degraded"` // 是否发生过降级
	Trace      []TraceStep        `json:"trace,omitempty"`
}

// TraceStep 流程执行轨迹中的一步
type TraceStep struct {
	Step     string `json:"step"`
	Note     string `json:"note,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

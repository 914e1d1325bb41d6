package v1

import (
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type RetrieverReq struct {
	g.Meta      `path:"/v1/retriever" method:"post" tags:"retriever"`
	Question    string  `json:"question" v:"required"`
	KnowledgeId string  `json:"knowledge_id" v:"required"`
	TopK        int     `json:"top_k"` // Default is 3
	Score       float64 `json:"score"` // Default is 0
}

type RetrieverRes struct {
	g.Meta   `mime:"application/json"`
	Document []*schema.Document `json:"document"`
}

package retriever

// RetrieveReq 检索请求参数
// Query 和 KnowledgeId 是必需的
// 其他参数是可选的，如果不提供则使用 RetrieverConfig 中的默认值
type RetrieveReq struct {
	Query       string // 检索关键词（必需）
	KnowledgeId string // 知识库ID（必需）

	// 以下参数可选，使用指针类型表示可选
	// 如果为 nil，则使用 RetrieverConfig 中的默认值
	TopK  *int     // 检索结果数量（可选）
	Score *float64 // 分数阀值（可选，0-1范围）
}

// Copy 创建请求的副本
func (r *RetrieveReq) Copy() *RetrieveReq {
	return &RetrieveReq{
		Query:       r.Query,
		KnowledgeId: r.KnowledgeId,
		TopK:        r.TopK,
		Score:       r.Score,
	}
}

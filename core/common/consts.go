package common

// Milvus collection 字段名
const (
	FieldContent       = "text"
	FieldContentVector = "vector"
	FieldMetadata      = "metadata"
	DocumentId         = "document_id"

	KnowledgeId = "_knowledge_id"
	SourceURI   = "_source"
)

// Markdown 标题切分层级
const (
	Title1 = "h1"
	Title2 = "h2"
	Title3 = "h3"
)

// 聊天策略名称，对应 /v1/chat 的 strategy 参数
const (
	StrategyBasic      = "basic"
	StrategyCorrective = "corrective"
	StrategySelf       = "self"
	StrategyAdaptive   = "adaptive"
)

package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrInternalError    ErrCode = 1002 // 内部错误
	ErrNotFound         ErrCode = 1003 // 资源未找到
	ErrAlreadyExists    ErrCode = 1004 // 资源已存在
	ErrOperationFailed  ErrCode = 1005 // 操作失败

	// 模型相关 2000-2999
	ErrModelNotConfigured ErrCode = 2001 // 模型未配置
	ErrEmbeddingFailed    ErrCode = 2002 // Embedding失败
	ErrLLMCallFailed      ErrCode = 2003 // LLM调用失败

	// 流程相关 3000-3999
	ErrRetrievalFailed      ErrCode = 3001 // 检索失败
	ErrGenerationFailed     ErrCode = 3002 // 生成失败
	ErrClassificationFailed ErrCode = 3003 // 分类（评分）失败
	ErrRewriteFailed        ErrCode = 3004 // 查询重写失败
	ErrStepLimitExceeded    ErrCode = 3005 // 状态机步数超限
	ErrWebSearchFailed      ErrCode = 3006 // 网络搜索失败

	// 知识库/文档相关 4000-4999
	ErrKBNotFound          ErrCode = 4001 // 知识库未找到
	ErrDocumentParseFailed ErrCode = 4002 // 文档解析失败
	ErrFileUploadFailed    ErrCode = 4003 // 文件上传失败
	ErrFileReadFailed      ErrCode = 4004 // 文件读取失败
	ErrIndexingFailed      ErrCode = 4005 // 索引失败
	ErrFileDeleteFailed    ErrCode = 4006 // 文件删除失败

	// 向量数据库 5000-5999
	ErrVectorStoreInit ErrCode = 5001 // 向量库初始化失败
	ErrVectorSearch    ErrCode = 5002 // 向量搜索失败
	ErrVectorInsert    ErrCode = 5003 // 向量插入失败
	ErrVectorDelete    ErrCode = 5004 // 向量删除失败

	// 数据库相关 6000-6999
	ErrDatabaseQuery  ErrCode = 6001 // 数据库查询失败
	ErrDatabaseInsert ErrCode = 6002 // 数据库插入失败
	ErrDatabaseInit   ErrCode = 6003 // 数据库初始化失败

	// 对话相关 7000-7999
	ErrConversationNotFound ErrCode = 7001 // 对话未找到
	ErrChatFailed           ErrCode = 7002 // 聊天失败
)

package vector_store

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/karan3613/ragscope/core/common"
)

// VectorStoreType 向量数据库类型
type VectorStoreType string

const (
	VectorStoreTypeMilvus VectorStoreType = "milvus"
	// 未来可以扩展其他类型
	// VectorStoreTypeChroma VectorStoreType = "chroma"
	// VectorStoreTypeWeaviate VectorStoreType = "weaviate"
)

// VectorStoreConfig 向量数据库配置
type VectorStoreConfig struct {
	Type     VectorStoreType // 向量数据库类型
	Client   interface{}     // 客户端实例
	Database string          // 数据库名称
	// 可以根据需要添加其他配置项
	MetricType string            // 距离度量类型（如 L2, COSINE, IP）
	Extra      map[string]string // 额外配置
}

// VectorStore 向量数据库接口
type VectorStore interface {
	// CreateCollection 创建集合
	CreateCollection(ctx context.Context, collectionName string) error

	// CollectionExists 检查集合是否存在
	CollectionExists(ctx context.Context, collectionName string) (bool, error)

	// DeleteCollection 删除集合
	DeleteCollection(ctx context.Context, collectionName string) error

	// InsertVectors 插入向量数据
	InsertVectors(ctx context.Context, collectionName string, chunks []*schema.Document, vectors [][]float32) ([]string, error)

	// DeleteByDocumentID 根据文档ID删除所有相关chunks
	DeleteByDocumentID(ctx context.Context, collectionName string, documentID string) error

	// DeleteByChunkID 根据chunkID删除单个chunk
	DeleteByChunkID(ctx context.Context, collectionName string, chunkID string) error

	// CreateDatabaseIfNotExists 创建数据库（如果不存在）
	CreateDatabaseIfNotExists(ctx context.Context) error

	// GetMilvusClient 获取底层客户端实例
	GetMilvusClient() *milvusclient.Client

	// NewRetriever 创建检索器实例
	NewRetriever(ctx context.Context, conf common.EmbeddingConfig, collectionName string) (Retriever, error)

	// VectorSearch 向量相似度搜索，去重，排序，并按分数过滤结果
	VectorSearch(ctx context.Context, conf common.EmbeddingConfig, query string, knowledgeId string, topK int, score float64) ([]*schema.Document, error)
}

// Retriever 向量检索器接口
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts ...Option) ([]*schema.Document, error)
}

// Options 检索选项
type Options struct {
	TopK           *int
	ScoreThreshold *float64
	Filter         string
	Partition      string
}

// Option 检索选项设置函数
type Option func(o *Options)

// WithTopK 设置返回结果数量
func WithTopK(topK int) Option {
	return func(o *Options) {
		o.TopK = &topK
	}
}

// WithScoreThreshold 设置分数阈值
func WithScoreThreshold(threshold float64) Option {
	return func(o *Options) {
		o.ScoreThreshold = &threshold
	}
}

// WithFilter 设置Milvus过滤表达式
func WithFilter(filter string) Option {
	return func(o *Options) {
		o.Filter = filter
	}
}

// WithPartition 设置检索分区
func WithPartition(partition string) Option {
	return func(o *Options) {
		o.Partition = partition
	}
}

// GetCommonOptions 应用选项到默认值之上
func GetCommonOptions(base *Options, opts ...Option) *Options {
	if base == nil {
		base = &Options{}
	}
	for _, opt := range opts {
		opt(base)
	}
	return base
}

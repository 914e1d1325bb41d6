package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
)

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证 Milvus 配置
	milvusAddress := g.Cfg().MustGet(ctx, "milvus.address", "").String()
	if milvusAddress == "" {
		missingConfigs = append(missingConfigs, "milvus.address")
	}

	// 验证 Embedding 配置
	if g.Cfg().MustGet(ctx, "embedding.apiKey", "").String() == "" {
		missingConfigs = append(missingConfigs, "embedding.apiKey")
	}
	if g.Cfg().MustGet(ctx, "embedding.baseURL", "").String() == "" {
		missingConfigs = append(missingConfigs, "embedding.baseURL")
	}
	if g.Cfg().MustGet(ctx, "embedding.model", "").String() == "" {
		missingConfigs = append(missingConfigs, "embedding.model")
	}

	// 验证 Chat 配置
	if g.Cfg().MustGet(ctx, "chat.apiKey", "").String() == "" {
		warnings = append(warnings, "chat.apiKey is not set")
	}
	if g.Cfg().MustGet(ctx, "chat.baseURL", "").String() == "" {
		warnings = append(warnings, "chat.baseURL is not set")
	}
	if g.Cfg().MustGet(ctx, "chat.model", "").String() == "" {
		missingConfigs = append(missingConfigs, "chat.model")
	}

	// 网络搜索是 adaptive 策略的后备路径，缺配置时降级而非拒绝启动
	if g.Cfg().MustGet(ctx, "websearch.apiKey", "").String() == "" {
		warnings = append(warnings, "websearch.apiKey is not set, adaptive web-search route will return empty results")
	}

	// 验证数据库配置（会话历史）
	if g.Cfg().MustGet(ctx, "database.default.host", "").String() == "" {
		missingConfigs = append(missingConfigs, "database.default.host")
	}
	if g.Cfg().MustGet(ctx, "database.default.port", "").String() == "" {
		missingConfigs = append(missingConfigs, "database.default.port")
	}
	if g.Cfg().MustGet(ctx, "database.default.user", "").String() == "" {
		missingConfigs = append(missingConfigs, "database.default.user")
	}
	if g.Cfg().MustGet(ctx, "database.default.name", "").String() == "" {
		missingConfigs = append(missingConfigs, "database.default.name")
	}

	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}

// Config 索引侧配置
type Config struct {
	Database string
	// embedding 时使用
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	EmbeddingDim   int
	ChatModel      string
	// Milvus 配置
	MetricType string // 向量相似度度量类型，如 "COSINE", "L2", "IP" 等，默认 "COSINE"
}

// RetrieverConfig Retriever专用配置
type RetrieverConfig struct {
	MetricType     string  // 向量相似度度量类型
	APIKey         string  // API密钥（用于调用embedding服务）
	BaseURL        string  // API基础URL（用于调用embedding服务）
	EmbeddingModel string  // Embedding模型名称
	EmbeddingDim   int     // 向量维度
	TopK           int     // 默认返回结果数量（默认 3）
	Score          float64 // 默认分数阈值（默认 0，按相似度排名截断）
}

// FlowConfig 检索流程调参
// 各默认值与自省循环的终止性约束绑定，改小会更早放弃，改大会更晚收敛
type FlowConfig struct {
	MaxSteps               int // 状态机步数上限（默认 15）
	LenientGradeAfter      int // 重试达到该值后跳过相关性过滤（默认 2）
	ForceGenerateAfter     int // 重试达到该值后即使无文档也强制生成（默认 3）
	AggressiveRewriteAfter int // 重试达到该值后改用激进重写（默认 2）
	SkipCheckAfter         int // 重试达到该值后不再校验生成结果（默认 2）
	WebSearchMaxResults    int // 网络搜索返回条数（默认 3）
}

// DefaultFlowConfig 返回与原始行为一致的默认调参
func DefaultFlowConfig() *FlowConfig {
	return &FlowConfig{
		MaxSteps:               15,
		LenientGradeAfter:      2,
		ForceGenerateAfter:     3,
		AggressiveRewriteAfter: 2,
		SkipCheckAfter:         2,
		WebSearchMaxResults:    3,
	}
}

// LoadFlowConfig 从配置文件读取流程调参，缺省回落到默认值
func LoadFlowConfig(ctx context.Context) *FlowConfig {
	def := DefaultFlowConfig()
	return &FlowConfig{
		MaxSteps:               g.Cfg().MustGet(ctx, "flow.maxSteps", def.MaxSteps).Int(),
		LenientGradeAfter:      g.Cfg().MustGet(ctx, "flow.lenientGradeAfter", def.LenientGradeAfter).Int(),
		ForceGenerateAfter:     g.Cfg().MustGet(ctx, "flow.forceGenerateAfter", def.ForceGenerateAfter).Int(),
		AggressiveRewriteAfter: g.Cfg().MustGet(ctx, "flow.aggressiveRewriteAfter", def.AggressiveRewriteAfter).Int(),
		SkipCheckAfter:         g.Cfg().MustGet(ctx, "flow.skipCheckAfter", def.SkipCheckAfter).Int(),
		WebSearchMaxResults:    g.Cfg().MustGet(ctx, "flow.webSearchMaxResults", def.WebSearchMaxResults).Int(),
	}
}

// LoadIndexerConfig 从配置文件读取索引侧配置
func LoadIndexerConfig(ctx context.Context) *Config {
	return &Config{
		Database:       g.Cfg().MustGet(ctx, "milvus.database", "default").String(),
		APIKey:         g.Cfg().MustGet(ctx, "embedding.apiKey", "").String(),
		BaseURL:        g.Cfg().MustGet(ctx, "embedding.baseURL", "").String(),
		EmbeddingModel: g.Cfg().MustGet(ctx, "embedding.model", "").String(),
		EmbeddingDim:   g.Cfg().MustGet(ctx, "milvus.dim", 1024).Int(),
		ChatModel:      g.Cfg().MustGet(ctx, "chat.model", "").String(),
		MetricType:     g.Cfg().MustGet(ctx, "milvus.metricType", "COSINE").String(),
	}
}

// LoadRetrieverConfig 从配置文件读取检索配置
func LoadRetrieverConfig(ctx context.Context) *RetrieverConfig {
	return &RetrieverConfig{
		MetricType:     g.Cfg().MustGet(ctx, "milvus.metricType", "COSINE").String(),
		APIKey:         g.Cfg().MustGet(ctx, "embedding.apiKey", "").String(),
		BaseURL:        g.Cfg().MustGet(ctx, "embedding.baseURL", "").String(),
		EmbeddingModel: g.Cfg().MustGet(ctx, "embedding.model", "").String(),
		EmbeddingDim:   g.Cfg().MustGet(ctx, "milvus.dim", 1024).Int(),
		TopK:           g.Cfg().MustGet(ctx, "retriever.topK", 3).Int(),
		Score:          g.Cfg().MustGet(ctx, "retriever.score", 0.0).Float64(),
	}
}

// Config 实现 embedding config 接口
func (c *Config) GetAPIKey() string         { return c.APIKey }
func (c *Config) GetBaseURL() string        { return c.BaseURL }
func (c *Config) GetEmbeddingModel() string { return c.EmbeddingModel }

// RetrieverConfig 实现 embedding config 接口
func (c *RetrieverConfig) GetAPIKey() string         { return c.APIKey }
func (c *RetrieverConfig) GetBaseURL() string        { return c.BaseURL }
func (c *RetrieverConfig) GetEmbeddingModel() string { return c.EmbeddingModel }

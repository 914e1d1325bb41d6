package flow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// Retriever 文档检索
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]*schema.Document, error)
}

// Generator 基于上下文的回答生成
type Generator interface {
	Generate(ctx context.Context, question string, docs []*schema.Document) (string, error)
}

// Grader 二元评分
type Grader interface {
	// GradeRelevance 宽松判定文档与问题的相关性
	GradeRelevance(ctx context.Context, question string, document string) (bool, error)
	// GradeRelevanceStrict 严格判定文档与问题的相关性
	GradeRelevanceStrict(ctx context.Context, question string, document string) (bool, error)
	// GradeHallucination 判定生成内容是否被文档支撑
	GradeHallucination(ctx context.Context, docs []*schema.Document, generation string) (bool, error)
	// GradeAnswer 判定生成内容是否回答了问题
	GradeAnswer(ctx context.Context, question string, generation string) (bool, error)
}

// Rewriter 问题改写
type Rewriter interface {
	Rewrite(ctx context.Context, question string, aggressive bool) (string, error)
	RewriteForWeb(ctx context.Context, question string) (string, error)
}

// Datasource 路由目标
type Datasource string

const (
	// DatasourceVectorStore 走知识库检索
	DatasourceVectorStore Datasource = "vectorstore"
	// DatasourceWebSearch 走网络搜索
	DatasourceWebSearch Datasource = "web-search"
)

// Router 问题路由
type Router interface {
	Route(ctx context.Context, question string) (Datasource, error)
}

// SearchResult 单条网络搜索结果
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// WebSearcher 网络搜索
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// 各类降级回答文案。问题原文始终保留在文案中，方便排查
// 注意这些文本同时是对外行为的一部分，修改会改变接口语义

// NoDocumentsFallback 无可用文档时的兜底回答
func NoDocumentsFallback(question string) string {
	return fmt.Sprintf("I don't have specific information in my knowledge base about: '%s'. This question may require information that's not available in my current documents.", question)
}

// GenerationErrorFallback 生成失败时的兜底回答
func GenerationErrorFallback(question string) string {
	return fmt.Sprintf("I encountered an error while generating a response for: '%s'", question)
}

// TechnicalIssueFallback 自省流程整体失败时的兜底回答
func TechnicalIssueFallback(question string) string {
	return fmt.Sprintf("I apologize, but I encountered a technical issue while processing your question: '%s'. This may be due to the question being outside my knowledge base or a system limitation.", question)
}

// SelfRAGIssueFallback 自适应流程调用自省流程失败时的兜底回答
func SelfRAGIssueFallback(question string) string {
	return fmt.Sprintf("I encountered an issue processing your question about: %s", question)
}

// WebAnswerFallback 网络搜索结果生成失败时的兜底回答
func WebAnswerFallback(question string) string {
	return fmt.Sprintf("I couldn't generate a proper answer for: %s", question)
}

// ProcessingErrorFallback 自适应流程整体失败时的兜底回答
func ProcessingErrorFallback(question string) string {
	return fmt.Sprintf("I encountered an error processing your question: %s", question)
}

package grader

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

// verdict 大模型二元评分的结构化输出
type verdict struct {
	BinaryScore string `json:"binary_score"`
}

const verdictInstruction = "Respond with a JSON object: {\"binary_score\": \"yes\"} or {\"binary_score\": \"no\"}. Do not include any other text."

// Grader 二元评分器，封装相关性、幻觉与答案质量三类判定
type Grader struct {
	model einoModel.BaseChatModel
}

// New 创建评分器
func New(model einoModel.BaseChatModel) *Grader {
	return &Grader{model: model}
}

// GradeRelevance 宽松模式判定文档与问题的相关性
// 倾向保留文档，只有完全无关时才拒绝
func (x *Grader) GradeRelevance(ctx context.Context, question string, document string) (bool, error) {
	prompt := fmt.Sprintf(`You are a grader assessing relevance of a retrieved document to a user question.
Be LENIENT and GENEROUS in your assessment. The goal is to keep potentially useful documents.
If the document contains ANY keywords, concepts, or semantic meaning that could be REMOTELY related to the user question, grade it as relevant.
Even if the connection is indirect or tangential, still mark it as relevant.
Only reject documents that are completely unrelated or contain no useful information at all.
When in doubt, choose 'yes'.
Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question.
%s

Retrieved document:

%s

User question: %s`, verdictInstruction, document, question)

	return x.grade(ctx, prompt)
}

// GradeRelevanceStrict 严格模式判定文档与问题的相关性
// 纠偏检索使用，拒绝不含相关关键词或语义的文档
func (x *Grader) GradeRelevanceStrict(ctx context.Context, question string, document string) (bool, error) {
	prompt := fmt.Sprintf(`You are a grader assessing relevance of a retrieved document to a user question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question.
%s

Retrieved document:

%s

User question: %s`, verdictInstruction, document, question)

	return x.grade(ctx, prompt)
}

// GradeHallucination 判定生成内容是否有事实依据
// 返回 true 表示生成内容被检索到的文档支撑
func (x *Grader) GradeHallucination(ctx context.Context, docs []*schema.Document, generation string) (bool, error) {
	prompt := fmt.Sprintf(`You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts.
Give a binary score 'yes' or 'no'. 'Yes' means that the answer is grounded in / supported by the set of facts.
%s

Set of facts:

%s

LLM generation: %s`, verdictInstruction, formatFacts(docs), generation)

	return x.grade(ctx, prompt)
}

// GradeAnswer 判定生成内容是否回答了问题
func (x *Grader) GradeAnswer(ctx context.Context, question string, generation string) (bool, error) {
	prompt := fmt.Sprintf(`You are a grader assessing whether an answer addresses / resolves a question.
Give a binary score 'yes' or 'no'. 'Yes' means that the answer resolves the question.
%s

User question:

%s

LLM generation: %s`, verdictInstruction, question, generation)

	return x.grade(ctx, prompt)
}

func (x *Grader) grade(ctx context.Context, prompt string) (bool, error) {
	resp, err := x.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return false, errors.Newf(errors.ErrClassificationFailed, "grader model call failed: %v", err)
	}
	return parseVerdict(ctx, resp.Content), nil
}

// parseVerdict 解析模型的二元评分输出
// 优先解析JSON，失败则回退到文本匹配
func parseVerdict(ctx context.Context, content string) bool {
	trimmed := strings.TrimSpace(content)

	// 去掉可能的markdown代码块包裹
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var v verdict
	if err := sonic.UnmarshalString(trimmed, &v); err == nil && v.BinaryScore != "" {
		return strings.EqualFold(strings.TrimSpace(v.BinaryScore), "yes")
	}

	g.Log().Debugf(ctx, "verdict is not valid JSON, falling back to text match: %s", trimmed)
	return strings.Contains(strings.ToLower(trimmed), "yes")
}

// formatFacts 将文档列表拼接为评分用的事实集合
func formatFacts(docs []*schema.Document) string {
	var builder strings.Builder
	for i, doc := range docs {
		builder.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, doc.Content))
	}
	return builder.String()
}

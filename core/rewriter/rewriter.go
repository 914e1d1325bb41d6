package rewriter

import (
	"context"
	"fmt"
	"strings"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/errors"
)

// Rewriter 基于大模型的问题改写器
type Rewriter struct {
	model einoModel.BaseChatModel
}

// New 创建改写器
func New(model einoModel.BaseChatModel) *Rewriter {
	return &Rewriter{model: model}
}

// Rewrite 改写问题以提升向量检索命中率
// aggressive 为 true 时生成更简单宽泛的版本，用于多次检索失败后的兜底
func (x *Rewriter) Rewrite(ctx context.Context, question string, aggressive bool) (string, error) {
	var prompt string
	if aggressive {
		prompt = fmt.Sprintf(`You are a question re-writer that converts an input question to a much simpler and broader version
for vectorstore retrieval. Make the question more general and use common keywords that are likely to match documents.
Remove specific details and focus on the core concepts.
Here is the initial question:

%s

Formulate a much simpler, broader question using basic keywords.`, question)
	} else {
		prompt = fmt.Sprintf(`You are a question re-writer that converts an input question to a better version that is optimized
for vectorstore retrieval. Look at the input and try to reason about the underlying semantic intent / meaning.
Use different keywords and rephrase to improve matching with stored documents.
Here is the initial question:

%s

Formulate an improved question.`, question)
	}

	return x.rewrite(ctx, question, prompt)
}

// RewriteForWeb 改写问题以适配网络搜索
func (x *Rewriter) RewriteForWeb(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(`You are a question re-writer that converts an input question to a better version that is optimized
for web search. Look at the input and try to reason about the underlying semantic intent / meaning.
Here is the initial question:

%s

Formulate an improved question for web search.`, question)

	return x.rewrite(ctx, question, prompt)
}

func (x *Rewriter) rewrite(ctx context.Context, question string, prompt string) (string, error) {
	resp, err := x.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", errors.Newf(errors.ErrRewriteFailed, "rewrite model call failed: %v", err)
	}

	better := strings.TrimSpace(resp.Content)
	if better == "" {
		return "", errors.New(errors.ErrRewriteFailed, "rewrite model returned empty question")
	}

	g.Log().Infof(ctx, "rewrote question %q -> %q", common.TruncateRunes(question, 80), common.TruncateRunes(better, 80))
	return better, nil
}

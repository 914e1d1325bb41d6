package generate

import (
	"context"
	"fmt"
	"strings"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

// Generator 基于检索上下文的回答生成器
type Generator struct {
	model einoModel.BaseChatModel
}

// New 创建生成器
func New(model einoModel.BaseChatModel) *Generator {
	return &Generator{model: model}
}

// createTemplate 创建并返回一个配置好的问答模板
func createTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage("You are an assistant for question-answering tasks. "+
			"Use the following pieces of retrieved context to answer the question. "+
			"If you don't know the answer, just say that you don't know. "+
			"Use three sentences maximum and keep the answer concise.\n\n"+
			"Context:\n{context}"),
		schema.UserMessage("Question: {question}"),
	)
}

// formatContext 格式化文档列表为上下文字符串
func formatContext(docs []*schema.Document) string {
	var builder strings.Builder
	for i, doc := range docs {
		builder.WriteString(fmt.Sprintf("【参考资料 %d】\n", i+1))
		builder.WriteString(doc.Content)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// Generate 基于检索到的文档生成回答
func (x *Generator) Generate(ctx context.Context, question string, docs []*schema.Document) (string, error) {
	template := createTemplate()
	messages, err := template.Format(ctx, map[string]any{
		"context":  formatContext(docs),
		"question": question,
	})
	if err != nil {
		return "", errors.Newf(errors.ErrGenerationFailed, "failed to format prompt: %v", err)
	}

	resp, err := x.model.Generate(ctx, messages)
	if err != nil {
		return "", errors.Newf(errors.ErrGenerationFailed, "generation model call failed: %v", err)
	}

	g.Log().Debugf(ctx, "generated %d chars for question: %s", len(resp.Content), question)
	return resp.Content, nil
}

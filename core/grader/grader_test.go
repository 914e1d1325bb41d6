package grader

import (
	"context"
	"testing"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/errors"
)

// scriptedModel 按固定脚本返回回复的假模型
type scriptedModel struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	if len(input) > 0 {
		m.prompts = append(m.prompts, input[len(input)-1].Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	reply := m.replies[m.calls%len(m.replies)]
	m.calls++
	return schema.AssistantMessage(reply, nil), nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, assert.AnError
}

func TestParseVerdict(t *testing.T) {
	ctx := context.Background()

	t.Run("标准JSON输出", func(t *testing.T) {
		assert.True(t, parseVerdict(ctx, `{"binary_score": "yes"}`))
		assert.False(t, parseVerdict(ctx, `{"binary_score": "no"}`))
	})

	t.Run("大小写不敏感", func(t *testing.T) {
		assert.True(t, parseVerdict(ctx, `{"binary_score": "Yes"}`))
	})

	t.Run("markdown代码块包裹", func(t *testing.T) {
		assert.True(t, parseVerdict(ctx, "```json\n{\"binary_score\": \"yes\"}\n```"))
	})

	t.Run("非JSON回退到文本匹配", func(t *testing.T) {
		assert.True(t, parseVerdict(ctx, "Yes, the document is relevant."))
		assert.False(t, parseVerdict(ctx, "No, it is unrelated."))
	})
}

func TestGrader(t *testing.T) {
	ctx := context.Background()

	t.Run("相关性判定", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"binary_score": "yes"}`}}
		g := New(m)

		relevant, err := g.GradeRelevance(ctx, "what is an agent", "agents are llm programs")
		require.NoError(t, err)
		assert.True(t, relevant)
		assert.Contains(t, m.prompts[0], "LENIENT")
	})

	t.Run("严格相关性判定使用不同提示词", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"binary_score": "no"}`}}
		g := New(m)

		relevant, err := g.GradeRelevanceStrict(ctx, "what is an agent", "cooking recipes")
		require.NoError(t, err)
		assert.False(t, relevant)
		assert.NotContains(t, m.prompts[0], "LENIENT")
	})

	t.Run("幻觉判定包含全部文档", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"binary_score": "yes"}`}}
		g := New(m)

		docs := []*schema.Document{{Content: "fact one"}, {Content: "fact two"}}
		grounded, err := g.GradeHallucination(ctx, docs, "the answer")
		require.NoError(t, err)
		assert.True(t, grounded)
		assert.Contains(t, m.prompts[0], "fact one")
		assert.Contains(t, m.prompts[0], "fact two")
	})

	t.Run("答案判定", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"binary_score": "no"}`}}
		g := New(m)

		useful, err := g.GradeAnswer(ctx, "question", "irrelevant answer")
		require.NoError(t, err)
		assert.False(t, useful)
	})

	t.Run("模型错误包装为判定失败", func(t *testing.T) {
		m := &scriptedModel{err: assert.AnError}
		g := New(m)

		_, err := g.GradeRelevance(ctx, "q", "d")
		assert.True(t, errors.IsCode(err, errors.ErrClassificationFailed))
	})
}

func TestRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("路由到知识库", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"datasource": "vectorstore"}`}}
		r := NewRouter(m, "agents, prompt engineering, and adversarial attacks")

		target, err := r.Route(ctx, "what is prompt engineering")
		require.NoError(t, err)
		assert.Equal(t, RouteVectorStore, target)
		assert.Contains(t, m.prompts[0], "adversarial attacks")
	})

	t.Run("路由到网络搜索", func(t *testing.T) {
		m := &scriptedModel{replies: []string{`{"datasource": "web-search"}`}}
		r := NewRouter(m, "agents")

		target, err := r.Route(ctx, "latest news today")
		require.NoError(t, err)
		assert.Equal(t, RouteWebSearch, target)
	})

	t.Run("无法解析时回落到知识库", func(t *testing.T) {
		m := &scriptedModel{replies: []string{"I think the vectorstore fits best"}}
		r := NewRouter(m, "agents")

		target, err := r.Route(ctx, "question")
		require.NoError(t, err)
		assert.Equal(t, RouteVectorStore, target)
	})

	t.Run("模型错误返回判定失败", func(t *testing.T) {
		m := &scriptedModel{err: assert.AnError}
		r := NewRouter(m, "agents")

		_, err := r.Route(ctx, "question")
		assert.True(t, errors.IsCode(err, errors.ErrClassificationFailed))
	})
}

package flow

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/errors"
)

func TestSelfFlowHappyPath(t *testing.T) {
	ctx := context.Background()

	f := NewSelfFlow(
		retrieverReturning(doc("agents are llm programs"), doc("prompt engineering basics")),
		generatorReturning("agents are programs driven by llms"),
		graderAlwaysYes(),
		rewriterReturning("unused"),
		nil,
	)

	res, err := f.Run(ctx, "what is an agent")
	require.NoError(t, err)

	assert.Equal(t, "what is an agent", res.Question)
	assert.Equal(t, "agents are programs driven by llms", res.Generation)
	assert.Len(t, res.Documents, 2)
	assert.Equal(t, 0, res.RetryCount)
	assert.False(t, res.Degraded)
	assert.True(t, hasStep(res.Trace, StepRetrieve))
	assert.True(t, hasStep(res.Trace, StepGradeDocuments))
	assert.True(t, hasStep(res.Trace, StepGenerate))
	assert.True(t, hasStep(res.Trace, StepCheckGeneration))
	assert.True(t, hasStep(res.Trace, StepAccept))
}

func TestSelfFlowTransformOnIrrelevantDocs(t *testing.T) {
	ctx := context.Background()

	// 第一轮检索到的文档全部被拒绝，改写后第二轮通过
	round := 0
	retriever := &fakeRetriever{fn: func(_ context.Context, question string) ([]*schema.Document, error) {
		round++
		if round == 1 {
			assert.Equal(t, "original question", question)
			return []*schema.Document{doc("cooking recipes")}, nil
		}
		assert.Equal(t, "improved question", question)
		return []*schema.Document{doc("relevant content")}, nil
	}}

	grader := graderAlwaysYes()
	grader.relevanceFn = func(_ string, document string) (bool, error) {
		return document == "relevant content", nil
	}

	var sawAggressive []bool
	rewriter := &fakeRewriter{fn: func(question string, aggressive bool) (string, error) {
		sawAggressive = append(sawAggressive, aggressive)
		return "improved question", nil
	}}

	f := NewSelfFlow(retriever, generatorReturning("the answer"), grader, rewriter, nil)

	res, err := f.Run(ctx, "original question")
	require.NoError(t, err)

	assert.Equal(t, "improved question", res.Question)
	assert.Equal(t, "the answer", res.Generation)
	assert.Equal(t, 1, res.RetryCount)
	assert.Equal(t, 2, round)
	// 第一次改写使用普通提示词
	assert.Equal(t, []bool{false}, sawAggressive)
}

func TestSelfFlowGradingFaultKeepsDocument(t *testing.T) {
	ctx := context.Background()

	grader := graderAlwaysYes()
	grader.relevanceFn = func(string, string) (bool, error) {
		return false, assert.AnError
	}

	f := NewSelfFlow(
		retrieverReturning(doc("content")),
		generatorReturning("the answer"),
		grader,
		rewriterReturning("unused"),
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)

	// 评分失败的文档被保留，结果标记为降级
	assert.Len(t, res.Documents, 1)
	assert.True(t, res.Degraded)
	assert.Equal(t, "the answer", res.Generation)
}

func TestSelfFlowEmptyRetrievalEscalation(t *testing.T) {
	ctx := context.Background()

	retrieveCalls := 0
	retriever := &fakeRetriever{fn: func(context.Context, string) ([]*schema.Document, error) {
		retrieveCalls++
		return nil, nil
	}}

	generatorCalled := false
	generator := &fakeGenerator{fn: func(context.Context, string, []*schema.Document) (string, error) {
		generatorCalled = true
		return "should not be used", nil
	}}

	var sawAggressive []bool
	rewriter := &fakeRewriter{fn: func(question string, aggressive bool) (string, error) {
		sawAggressive = append(sawAggressive, aggressive)
		return question, nil
	}}

	f := NewSelfFlow(retriever, generator, graderAlwaysYes(), rewriter, nil)

	res, err := f.Run(ctx, "unknown topic")
	require.NoError(t, err)

	// 三次改写后第四轮强制生成，无文档走兜底文案
	assert.Equal(t, 3, res.RetryCount)
	assert.Equal(t, 4, retrieveCalls)
	assert.False(t, generatorCalled)
	assert.Equal(t, NoDocumentsFallback("unknown topic"), res.Generation)
	assert.True(t, res.Degraded)
	assert.Empty(t, res.Documents)
	// 第二次改写起使用激进提示词
	assert.Equal(t, []bool{false, true, true}, sawAggressive)
}

func TestSelfFlowRegenerateWhenNotGrounded(t *testing.T) {
	ctx := context.Background()

	generateCalls := 0
	generator := &fakeGenerator{fn: func(context.Context, string, []*schema.Document) (string, error) {
		generateCalls++
		return "attempt", nil
	}}

	hallucinationCalls := 0
	grader := graderAlwaysYes()
	grader.hallucinationFn = func([]*schema.Document, string) (bool, error) {
		hallucinationCalls++
		// 第一次判定无依据，第二次通过
		return hallucinationCalls > 1, nil
	}

	f := NewSelfFlow(retrieverReturning(doc("content")), generator, grader, rewriterReturning("unused"), nil)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)
	assert.Equal(t, 2, generateCalls)
	assert.Equal(t, 0, res.RetryCount)
	assert.Equal(t, "attempt", res.Generation)
}

func TestSelfFlowTransformWhenNotUseful(t *testing.T) {
	ctx := context.Background()

	answerCalls := 0
	grader := graderAlwaysYes()
	grader.answerFn = func(string, string) (bool, error) {
		answerCalls++
		// 第一次判定没有回答问题，第二次通过
		return answerCalls > 1, nil
	}

	f := NewSelfFlow(
		retrieverReturning(doc("content")),
		generatorReturning("the answer"),
		grader,
		rewriterReturning("improved question"),
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RetryCount)
	assert.Equal(t, "improved question", res.Question)
}

func TestSelfFlowCheckFaultAcceptsGeneration(t *testing.T) {
	ctx := context.Background()

	grader := graderAlwaysYes()
	grader.hallucinationFn = func([]*schema.Document, string) (bool, error) {
		return false, assert.AnError
	}

	f := NewSelfFlow(
		retrieverReturning(doc("content")),
		generatorReturning("the answer"),
		grader,
		rewriterReturning("unused"),
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)
	assert.Equal(t, "the answer", res.Generation)
	assert.True(t, res.Degraded)
}

func TestSelfFlowGenerationFaultSubstitutesFallback(t *testing.T) {
	ctx := context.Background()

	generator := &fakeGenerator{fn: func(context.Context, string, []*schema.Document) (string, error) {
		return "", assert.AnError
	}}

	f := NewSelfFlow(retrieverReturning(doc("content")), generator, graderAlwaysYes(), rewriterReturning("unused"), nil)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)
	assert.Equal(t, GenerationErrorFallback("question"), res.Generation)
	assert.True(t, res.Degraded)
}

func TestSelfFlowRewriteFaultKeepsQuestion(t *testing.T) {
	ctx := context.Background()

	round := 0
	retriever := &fakeRetriever{fn: func(_ context.Context, question string) ([]*schema.Document, error) {
		round++
		assert.Equal(t, "original question", question)
		if round == 1 {
			return nil, nil
		}
		return []*schema.Document{doc("content")}, nil
	}}

	rewriter := &fakeRewriter{fn: func(string, bool) (string, error) {
		return "", assert.AnError
	}}

	f := NewSelfFlow(retriever, generatorReturning("the answer"), graderAlwaysYes(), rewriter, nil)

	res, err := f.Run(ctx, "original question")
	require.NoError(t, err)
	// 改写失败沿用原问题，重试计数照常递增
	assert.Equal(t, "original question", res.Question)
	assert.Equal(t, 1, res.RetryCount)
	assert.True(t, res.Degraded)
}

func TestSelfFlowSkipsGradingAfterRetries(t *testing.T) {
	ctx := context.Background()

	relevanceCalls := 0
	grader := graderAlwaysYes()
	grader.relevanceFn = func(string, string) (bool, error) {
		relevanceCalls++
		return false, nil
	}

	f := NewSelfFlow(
		retrieverReturning(doc("always returned")),
		generatorReturning("the answer"),
		grader,
		rewriterReturning("rewritten"),
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)

	// 前两轮各评分一次，第三轮（retryCount=2）跳过评分直接保留文档
	assert.Equal(t, 2, relevanceCalls)
	assert.Equal(t, 2, res.RetryCount)
	assert.Len(t, res.Documents, 1)
	// 校验同样因重试上限被跳过
	assert.True(t, res.Degraded)
	assert.Equal(t, "the answer", res.Generation)
}

func TestSelfFlowRetrievalErrorPropagates(t *testing.T) {
	ctx := context.Background()

	retriever := &fakeRetriever{fn: func(context.Context, string) ([]*schema.Document, error) {
		return nil, assert.AnError
	}}

	f := NewSelfFlow(retriever, generatorReturning("unused"), graderAlwaysYes(), rewriterReturning("unused"), nil)

	_, err := f.Run(ctx, "question")
	assert.True(t, errors.IsCode(err, errors.ErrRetrievalFailed))
}

func TestSelfFlowStepLimit(t *testing.T) {
	ctx := context.Background()

	// 幻觉判定永远失败，生成与校验互相往复直到步数耗尽
	grader := graderAlwaysYes()
	grader.hallucinationFn = func([]*schema.Document, string) (bool, error) {
		return false, nil
	}

	f := NewSelfFlow(
		retrieverReturning(doc("content")),
		generatorReturning("attempt"),
		grader,
		rewriterReturning("unused"),
		nil,
	)

	_, err := f.Run(ctx, "question")
	assert.True(t, errors.IsCode(err, errors.ErrStepLimitExceeded))
}

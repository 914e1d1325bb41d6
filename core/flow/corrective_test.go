package flow

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/errors"
)

func TestCorrectiveFlowAllRelevant(t *testing.T) {
	ctx := context.Background()

	webCalled := false
	web := &fakeWebSearcher{fn: func(string, int) ([]SearchResult, error) {
		webCalled = true
		return nil, nil
	}}

	f := NewCorrectiveFlow(
		retrieverReturning(doc("relevant one"), doc("relevant two")),
		generatorReturning("the answer"),
		graderAlwaysYes(),
		rewriterReturning("unused"),
		web,
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)

	// 全部相关时不触发网络搜索
	assert.False(t, webCalled)
	assert.Equal(t, "question", res.Question)
	assert.Len(t, res.Documents, 2)
	assert.False(t, hasStep(res.Trace, StepWebSearch))
}

func TestCorrectiveFlowRejectionTriggersWebSearch(t *testing.T) {
	ctx := context.Background()

	grader := graderAlwaysYes()
	grader.strictFn = func(_ string, document string) (bool, error) {
		return document == "relevant", nil
	}

	var searchedQuery string
	web := &fakeWebSearcher{fn: func(query string, maxResults int) ([]SearchResult, error) {
		searchedQuery = query
		assert.Equal(t, 3, maxResults)
		return []SearchResult{
			{Content: "web snippet one", URL: "https://a.example"},
			{Content: "web snippet two", URL: "https://b.example"},
		}, nil
	}}

	var gotDocs []*schema.Document
	generator := &fakeGenerator{fn: func(_ context.Context, _ string, docs []*schema.Document) (string, error) {
		gotDocs = docs
		return "corrected answer", nil
	}}

	f := NewCorrectiveFlow(
		retrieverReturning(doc("relevant"), doc("unrelated")),
		generator,
		grader,
		rewriterReturning("web friendly question"),
		web,
		nil,
	)

	res, err := f.Run(ctx, "question")
	require.NoError(t, err)

	assert.Equal(t, "web friendly question", res.Question)
	assert.Equal(t, "web friendly question", searchedQuery)
	assert.Equal(t, "corrected answer", res.Generation)

	// 被拒绝的文档被剔除，网络结果合并为一个文档追加在后
	require.Len(t, gotDocs, 2)
	assert.Equal(t, "relevant", gotDocs[0].Content)
	assert.Equal(t, "web snippet one\nweb snippet two", gotDocs[1].Content)
	assert.True(t, hasStep(res.Trace, StepWebSearch))
}

func TestCorrectiveFlowErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("评分错误上抛", func(t *testing.T) {
		grader := graderAlwaysYes()
		grader.strictFn = func(string, string) (bool, error) {
			return false, assert.AnError
		}

		f := NewCorrectiveFlow(
			retrieverReturning(doc("content")),
			generatorReturning("unused"),
			grader,
			rewriterReturning("unused"),
			&fakeWebSearcher{fn: func(string, int) ([]SearchResult, error) { return nil, nil }},
			nil,
		)

		_, err := f.Run(ctx, "question")
		assert.Error(t, err)
	})

	t.Run("网络搜索错误上抛", func(t *testing.T) {
		grader := graderAlwaysYes()
		grader.strictFn = func(string, string) (bool, error) { return false, nil }

		web := &fakeWebSearcher{fn: func(string, int) ([]SearchResult, error) {
			return nil, assert.AnError
		}}

		f := NewCorrectiveFlow(
			retrieverReturning(doc("content")),
			generatorReturning("unused"),
			grader,
			rewriterReturning("rewritten"),
			web,
			nil,
		)

		_, err := f.Run(ctx, "question")
		assert.True(t, errors.IsCode(err, errors.ErrWebSearchFailed))
	})

	t.Run("改写错误上抛", func(t *testing.T) {
		grader := graderAlwaysYes()
		grader.strictFn = func(string, string) (bool, error) { return false, nil }

		rewriter := &fakeRewriter{webFn: func(string) (string, error) {
			return "", assert.AnError
		}}

		f := NewCorrectiveFlow(
			retrieverReturning(doc("content")),
			generatorReturning("unused"),
			grader,
			rewriter,
			&fakeWebSearcher{fn: func(string, int) ([]SearchResult, error) { return nil, nil }},
			nil,
		)

		_, err := f.Run(ctx, "question")
		assert.Error(t, err)
	})
}

package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/core/flow"
	"github.com/karan3613/ragscope/core/grader"
)

func TestBoundRetriever(t *testing.T) {
	c := &Chat{}

	t.Run("未指定可选参数时不覆盖默认值", func(t *testing.T) {
		r := c.boundRetriever(&v1.ChatReq{Question: "q", KnowledgeId: "kb1"})
		kr, ok := r.(knowledgeRetriever)
		require.True(t, ok)
		assert.Equal(t, "kb1", kr.knowledgeId)
		assert.Nil(t, kr.topK)
		assert.Nil(t, kr.score)
	})

	t.Run("显式参数绑定为指针覆盖", func(t *testing.T) {
		r := c.boundRetriever(&v1.ChatReq{Question: "q", KnowledgeId: "kb1", TopK: 5, Score: 0.3})
		kr, ok := r.(knowledgeRetriever)
		require.True(t, ok)
		require.NotNil(t, kr.topK)
		require.NotNil(t, kr.score)
		assert.Equal(t, 5, *kr.topK)
		assert.InDelta(t, 0.3, *kr.score, 1e-9)
	})
}

func TestToTraceSteps(t *testing.T) {
	steps := toTraceSteps([]flow.Transition{
		{Step: flow.StepRetrieve, Note: "retrieved 3 documents"},
		{Step: flow.StepWebSearch, Note: "web search failed, continuing with empty context", Degraded: true},
	})
	require.Len(t, steps, 2)
	assert.Equal(t, "retrieve", steps[0].Step)
	assert.False(t, steps[0].Degraded)
	assert.Equal(t, "web_search", steps[1].Step)
	assert.True(t, steps[1].Degraded)
}

type fakeRouteDecider struct {
	target grader.RouteTarget
	err    error
}

func (f fakeRouteDecider) Route(_ context.Context, _ string) (grader.RouteTarget, error) {
	return f.target, f.err
}

// 路由适配器必须满足流程的 Router 接口
var _ flow.Router = routerAdapter{}

func TestRouterAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("知识库目标映射", func(t *testing.T) {
		ds, err := routerAdapter{router: fakeRouteDecider{target: grader.RouteVectorStore}}.Route(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, flow.DatasourceVectorStore, ds)
	})

	t.Run("网络搜索目标映射", func(t *testing.T) {
		ds, err := routerAdapter{router: fakeRouteDecider{target: grader.RouteWebSearch}}.Route(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, flow.DatasourceWebSearch, ds)
	})

	t.Run("未知目标回退知识库", func(t *testing.T) {
		assert.Equal(t, flow.DatasourceVectorStore, toDatasource(grader.RouteTarget("something-else")))
	})

	t.Run("路由错误透传", func(t *testing.T) {
		_, err := routerAdapter{router: fakeRouteDecider{err: assert.AnError}}.Route(ctx, "q")
		assert.Error(t, err)
	})
}

func TestUnavailableSearcher(t *testing.T) {
	_, err := unavailableSearcher{}.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
}

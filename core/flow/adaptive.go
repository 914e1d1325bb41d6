package flow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/config"
)

// AdaptiveFlow 自适应检索流程
// 先判断问题属于知识库范围还是需要实时信息：
// 知识库问题交给自省流程处理，其余问题改写后走网络搜索直接生成
type AdaptiveFlow struct {
	router      Router
	selfFlow    *SelfFlow
	rewriter    Rewriter
	webSearcher WebSearcher
	generator   Generator
	conf        *config.FlowConfig
}

// NewAdaptiveFlow 创建自适应检索流程
func NewAdaptiveFlow(router Router, selfFlow *SelfFlow, rewriter Rewriter, webSearcher WebSearcher, generator Generator, conf *config.FlowConfig) *AdaptiveFlow {
	if conf == nil {
		conf = config.DefaultFlowConfig()
	}
	return &AdaptiveFlow{
		router:      router,
		selfFlow:    selfFlow,
		rewriter:    rewriter,
		webSearcher: webSearcher,
		generator:   generator,
		conf:        conf,
	}
}

// Run 执行自适应检索流程
// 整个流程不向调用方抛错，所有故障都替换为兜底回答并在轨迹中标记
func (x *AdaptiveFlow) Run(ctx context.Context, question string) (*Result, error) {
	tr := &trace{}

	target, err := x.router.Route(ctx, question)
	if err != nil {
		g.Log().Errorf(ctx, "routing failed: %v", err)
		tr.addDegraded(StepRouteQuery, "routing failed, substituted fallback answer")
		return x.fallbackResult(question, ProcessingErrorFallback(question), tr), nil
	}
	tr.add(StepRouteQuery, string(target))

	if target == DatasourceVectorStore {
		return x.runSelfRAG(ctx, question, tr)
	}
	return x.runWebPath(ctx, question, tr)
}

// runSelfRAG 知识库路径，委托自省流程
func (x *AdaptiveFlow) runSelfRAG(ctx context.Context, question string, tr *trace) (*Result, error) {
	res, err := x.selfFlow.Run(ctx, question)
	if err != nil {
		g.Log().Errorf(ctx, "self flow failed: %v", err)
		tr.addDegraded(StepCallSelfRAG, "self flow failed, substituted fallback answer")
		return x.fallbackResult(question, SelfRAGIssueFallback(question), tr), nil
	}
	tr.add(StepCallSelfRAG, "")

	// 前置路由轨迹拼接到自省流程轨迹之前
	res.Trace = append(tr.transitions, res.Trace...)
	res.Degraded = res.Degraded || tr.degraded
	return res, nil
}

// runWebPath 网络搜索路径：改写、搜索、生成的线性编排
func (x *AdaptiveFlow) runWebPath(ctx context.Context, question string, tr *trace) (*Result, error) {
	chain := compose.NewChain[*State, *State]()

	chain.AppendLambda(compose.InvokableLambda(func(ctx context.Context, state *State) (*State, error) {
		better, err := x.rewriter.RewriteForWeb(ctx, state.Question)
		if err != nil {
			return nil, err
		}
		state.Question = better
		tr.add(StepTransformQuery, "")
		return state, nil
	}))

	chain.AppendLambda(compose.InvokableLambda(func(ctx context.Context, state *State) (*State, error) {
		results, err := x.webSearcher.Search(ctx, state.Question, x.conf.WebSearchMaxResults)
		if err != nil {
			// 搜索失败时降级为空上下文
			g.Log().Errorf(ctx, "web search failed: %v", err)
			tr.addDegraded(StepWebSearch, "web search failed, continuing with empty context")
			state.Documents = []*schema.Document{{Content: ""}}
			return state, nil
		}
		state.Documents = []*schema.Document{webResultsDocument(results)}
		tr.add(StepWebSearch, fmt.Sprintf("found %d web results", len(results)))
		return state, nil
	}))

	chain.AppendLambda(compose.InvokableLambda(func(ctx context.Context, state *State) (*State, error) {
		generation, err := x.generator.Generate(ctx, state.Question, state.Documents)
		if err != nil {
			g.Log().Errorf(ctx, "web answer generation failed: %v", err)
			tr.addDegraded(StepGenerate, "generation failed, substituted fallback answer")
			state.Generation = WebAnswerFallback(state.Question)
			return state, nil
		}
		state.Generation = generation
		tr.add(StepGenerate, "")
		return state, nil
	}))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("adaptive_web_path"))
	if err != nil {
		g.Log().Errorf(ctx, "failed to compile web path: %v", err)
		tr.addDegraded(StepTransformQuery, "web path compilation failed, substituted fallback answer")
		return x.fallbackResult(question, ProcessingErrorFallback(question), tr), nil
	}

	state, err := runnable.Invoke(ctx, &State{Question: question, OriginalQuestion: question})
	if err != nil {
		// 改写失败会走到这里，原始问题保留在兜底文案里
		g.Log().Errorf(ctx, "web path failed: %v", err)
		tr.addDegraded(StepTransformQuery, "web path failed, substituted fallback answer")
		return x.fallbackResult(question, ProcessingErrorFallback(question), tr), nil
	}

	tr.add(StepAccept, "")
	return &Result{
		Question:   state.Question,
		Generation: state.Generation,
		Documents:  state.Documents,
		Degraded:   tr.degraded,
		Trace:      tr.transitions,
	}, nil
}

func (x *AdaptiveFlow) fallbackResult(question string, generation string, tr *trace) *Result {
	return &Result{
		Question:   question,
		Generation: generation,
		Degraded:   true,
		Trace:      tr.transitions,
	}
}

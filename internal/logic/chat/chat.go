package chat

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"

	v1 "github.com/karan3613/ragscope/api/ragscope/v1"
	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	coreErrors "github.com/karan3613/ragscope/core/errors"
	"github.com/karan3613/ragscope/core/flow"
	"github.com/karan3613/ragscope/core/generate"
	"github.com/karan3613/ragscope/core/grader"
	coreRetriever "github.com/karan3613/ragscope/core/retriever"
	"github.com/karan3613/ragscope/core/rewriter"
	"github.com/karan3613/ragscope/core/vector_store"
	"github.com/karan3613/ragscope/core/websearch"
	"github.com/karan3613/ragscope/internal/dao"
	"github.com/karan3613/ragscope/internal/history"
)

var chatInstance *Chat

// Chat 问答服务，持有各策略流程共享的组件
type Chat struct {
	retriever   *coreRetriever.Retriever
	generator   *generate.Generator
	grader      *grader.Grader
	rewriter    *rewriter.Rewriter
	router      flow.Router
	webSearcher flow.WebSearcher
	flowConf    *config.FlowConfig
	history     *history.Manager
}

// GetChat 获取问答服务单例
func GetChat() *Chat {
	return chatInstance
}

// InitChat 初始化问答服务，模型或配置缺失时直接 Fatal
func InitChat() {
	ctx := gctx.New()
	g.Log().Info(ctx, "Initializing chat service...")

	chatModel, err := common.GetChatModel(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "failed to init chat model: %v", err)
	}
	graderModel, err := common.GetGraderModel(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "failed to init grader model: %v", err)
	}
	rewriteModel, err := common.GetRewriteModel(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "failed to init rewrite model: %v", err)
	}
	routerModel, err := common.GetRouterModel(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "failed to init router model: %v", err)
	}

	store, err := vector_store.GetVectorStore()
	if err != nil {
		g.Log().Fatalf(ctx, "failed to get vector store: %v", err)
	}

	// 路由器需要知识库主题描述来判定问题归属
	domains := g.Cfg().MustGet(ctx, "router.domains", "the indexed knowledge base documents").String()

	var webSearcher flow.WebSearcher
	tavily, err := websearch.NewTavilyClientFromConfig(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "web search unavailable, flows will degrade on web path: %v", err)
		webSearcher = unavailableSearcher{}
	} else {
		webSearcher = tavilySearcher{client: tavily}
	}

	chatInstance = &Chat{
		retriever:   coreRetriever.New(store, config.LoadRetrieverConfig(ctx)),
		generator:   generate.New(chatModel),
		grader:      grader.New(graderModel),
		rewriter:    rewriter.New(rewriteModel),
		router:      routerAdapter{router: grader.NewRouter(routerModel, domains)},
		webSearcher: webSearcher,
		flowConf:    config.LoadFlowConfig(ctx),
		history:     history.NewManager(),
	}

	g.Log().Info(ctx, "Chat service initialized successfully")
}

// ProcessChat 按策略执行一次问答，并在给定会话时异步保存历史
func (x *Chat) ProcessChat(ctx context.Context, req *v1.ChatReq) (*v1.ChatRes, error) {
	start := time.Now()

	ret := x.boundRetriever(req)

	strategy := req.Strategy
	if strategy == "" {
		strategy = common.StrategyAdaptive
	}

	var (
		result *flow.Result
		err    error
	)
	switch strategy {
	case common.StrategyBasic:
		result, err = flow.NewBasicFlow(ret, x.generator).Run(ctx, req.Question)
	case common.StrategyCorrective:
		result, err = flow.NewCorrectiveFlow(ret, x.generator, x.grader, x.rewriter, x.webSearcher, x.flowConf).Run(ctx, req.Question)
	case common.StrategySelf:
		result, err = flow.NewSelfFlow(ret, x.generator, x.grader, x.rewriter, x.flowConf).Run(ctx, req.Question)
		if err != nil {
			// 自省流程的失败不暴露给调用方，替换为兜底回答
			g.Log().Errorf(ctx, "self flow failed: %v", err)
			result = &flow.Result{
				Question:   req.Question,
				Generation: flow.TechnicalIssueFallback(req.Question),
				Degraded:   true,
			}
			err = nil
		}
	case common.StrategyAdaptive:
		selfFlow := flow.NewSelfFlow(ret, x.generator, x.grader, x.rewriter, x.flowConf)
		result, err = flow.NewAdaptiveFlow(x.router, selfFlow, x.rewriter, x.webSearcher, x.generator, x.flowConf).Run(ctx, req.Question)
	default:
		return nil, coreErrors.Newf(coreErrors.ErrInvalidParameter, "unknown strategy: %s", strategy)
	}
	if err != nil {
		return nil, coreErrors.Newf(coreErrors.ErrChatFailed, "chat failed with strategy %s: %v", strategy, err)
	}

	res := &v1.ChatRes{
		Answer:     result.Generation,
		Question:   result.Question,
		Strategy:   strategy,
		References: result.Documents,
		RetryCount: result.RetryCount,
		Degraded:   result.Degraded,
		Trace:      toTraceSteps(result.Trace),
	}

	if req.ConvID != "" {
		x.saveHistory(ctx, req, res, time.Since(start))
	}
	return res, nil
}

// boundRetriever 将请求中的知识库与检索参数绑定到检索器上
func (x *Chat) boundRetriever(req *v1.ChatReq) flow.Retriever {
	r := knowledgeRetriever{
		retriever:   x.retriever,
		knowledgeId: req.KnowledgeId,
	}
	if req.TopK > 0 {
		topK := req.TopK
		r.topK = &topK
	}
	if req.Score > 0 {
		score := req.Score
		r.score = &score
	}
	return r
}

// saveHistory 异步保存一轮问答到会话历史
func (x *Chat) saveHistory(ctx context.Context, req *v1.ChatReq, res *v1.ChatRes, latency time.Duration) {
	if !dao.Initialized() {
		g.Log().Debug(ctx, "database not initialized, skip saving chat history")
		return
	}

	x.history.SaveRecordAsync(&history.MessageRecord{
		Message: schema.UserMessage(req.Question),
	}, req.ConvID)

	x.history.SaveRecordAsync(&history.MessageRecord{
		Message: schema.AssistantMessage(res.Answer, nil),
		Metadata: map[string]interface{}{
			"strategy":    res.Strategy,
			"retry_count": res.RetryCount,
			"degraded":    res.Degraded,
			"documents":   len(res.References),
		},
		LatencyMs: int(latency.Milliseconds()),
	}, req.ConvID)
}

func toTraceSteps(transitions []flow.Transition) []v1.TraceStep {
	steps := make([]v1.TraceStep, 0, len(transitions))
	for _, t := range transitions {
		steps = append(steps, v1.TraceStep{
			Step:     string(t.Step),
			Note:     t.Note,
			Degraded: t.Degraded,
		})
	}
	return steps
}

// knowledgeRetriever 把知识库ID和检索参数固定下来，适配流程检索接口
type knowledgeRetriever struct {
	retriever   *coreRetriever.Retriever
	knowledgeId string
	topK        *int
	score       *float64
}

func (r knowledgeRetriever) Retrieve(ctx context.Context, question string) ([]*schema.Document, error) {
	return r.retriever.Retrieve(ctx, &coreRetriever.RetrieveReq{
		Query:       question,
		KnowledgeId: r.knowledgeId,
		TopK:        r.topK,
		Score:       r.score,
	})
}

// routeDecider 是 grader.Router 的路由能力
type routeDecider interface {
	Route(ctx context.Context, question string) (grader.RouteTarget, error)
}

// routerAdapter 把路由器的判定结果翻译成流程数据源
type routerAdapter struct {
	router routeDecider
}

func (a routerAdapter) Route(ctx context.Context, question string) (flow.Datasource, error) {
	target, err := a.router.Route(ctx, question)
	if err != nil {
		return "", err
	}
	return toDatasource(target), nil
}

// toDatasource 未知目标兜底到知识库检索
func toDatasource(target grader.RouteTarget) flow.Datasource {
	if target == grader.RouteWebSearch {
		return flow.DatasourceWebSearch
	}
	return flow.DatasourceVectorStore
}

// tavilySearcher 适配 Tavily 客户端到流程搜索接口
type tavilySearcher struct {
	client *websearch.TavilyClient
}

func (s tavilySearcher) Search(ctx context.Context, query string, maxResults int) ([]flow.SearchResult, error) {
	results, err := s.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	out := make([]flow.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, flow.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return out, nil
}

// unavailableSearcher 未配置搜索服务时的占位实现，让流程走既有的降级路径
type unavailableSearcher struct{}

func (unavailableSearcher) Search(ctx context.Context, query string, maxResults int) ([]flow.SearchResult, error) {
	return nil, coreErrors.New(coreErrors.ErrWebSearchFailed, "web search is not configured")
}

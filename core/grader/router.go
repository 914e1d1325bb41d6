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

// RouteTarget 路由目标
type RouteTarget string

const (
	// RouteVectorStore 走知识库检索
	RouteVectorStore RouteTarget = "vectorstore"
	// RouteWebSearch 走网络搜索
	RouteWebSearch RouteTarget = "web-search"
)

// routeDecision 路由判定的结构化输出
type routeDecision struct {
	Datasource string `json:"datasource"`
}

// Router 基于大模型的问题路由器
type Router struct {
	model einoModel.BaseChatModel
	// 知识库内容描述，用于提示模型判断问题归属
	domains string
}

// NewRouter 创建路由器
// domains 描述知识库覆盖的主题范围
func NewRouter(model einoModel.BaseChatModel, domains string) *Router {
	return &Router{model: model, domains: domains}
}

// Route 将问题路由到知识库或网络搜索
func (x *Router) Route(ctx context.Context, question string) (RouteTarget, error) {
	prompt := fmt.Sprintf(`You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains documents related to %s.
Use the vectorstore for questions on these topics. Otherwise, use web-search.
Respond with a JSON object: {"datasource": "vectorstore"} or {"datasource": "web-search"}. Do not include any other text.

%s`, x.domains, question)

	resp, err := x.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", errors.Newf(errors.ErrClassificationFailed, "router model call failed: %v", err)
	}

	target := parseRoute(ctx, resp.Content)
	g.Log().Infof(ctx, "question routed to: %s", target)
	return target, nil
}

// parseRoute 解析路由判定，默认回落到知识库检索
func parseRoute(ctx context.Context, content string) RouteTarget {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var d routeDecision
	if err := sonic.UnmarshalString(trimmed, &d); err == nil {
		if strings.EqualFold(strings.TrimSpace(d.Datasource), string(RouteWebSearch)) {
			return RouteWebSearch
		}
		return RouteVectorStore
	}

	g.Log().Debugf(ctx, "route decision is not valid JSON, falling back to text match: %s", trimmed)
	if strings.Contains(strings.ToLower(trimmed), "web") {
		return RouteWebSearch
	}
	return RouteVectorStore
}

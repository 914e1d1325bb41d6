package common

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

var (
	chatModel    einoModel.BaseChatModel
	graderModel  einoModel.BaseChatModel
	rewriteModel einoModel.BaseChatModel
	routerModel  einoModel.BaseChatModel
)

// GetChatModel 获取答案生成模型（单例）
func GetChatModel(ctx context.Context) (einoModel.BaseChatModel, error) {
	if chatModel != nil {
		return chatModel, nil
	}
	cm, err := newChatModelFromConfig(ctx, "chat")
	if err != nil {
		return nil, err
	}
	chatModel = cm
	return cm, nil
}

// GetGraderModel 获取评分模型（单例）
// 未单独配置 grader 段时复用 chat 模型
func GetGraderModel(ctx context.Context) (einoModel.BaseChatModel, error) {
	if graderModel != nil {
		return graderModel, nil
	}
	section := "grader"
	if g.Cfg().MustGet(ctx, "grader.model", "").String() == "" {
		section = "chat"
	}
	cm, err := newChatModelFromConfig(ctx, section)
	if err != nil {
		return nil, err
	}
	graderModel = cm
	return cm, nil
}

// GetRewriteModel 获取查询重写模型（单例）
func GetRewriteModel(ctx context.Context) (einoModel.BaseChatModel, error) {
	if rewriteModel != nil {
		return rewriteModel, nil
	}
	section := "rewriter"
	if g.Cfg().MustGet(ctx, "rewriter.model", "").String() == "" {
		section = "chat"
	}
	cm, err := newChatModelFromConfig(ctx, section)
	if err != nil {
		return nil, err
	}
	rewriteModel = cm
	return cm, nil
}

// GetRouterModel 获取问题路由模型（单例）
func GetRouterModel(ctx context.Context) (einoModel.BaseChatModel, error) {
	if routerModel != nil {
		return routerModel, nil
	}
	section := "router"
	if g.Cfg().MustGet(ctx, "router.model", "").String() == "" {
		section = "chat"
	}
	cm, err := newChatModelFromConfig(ctx, section)
	if err != nil {
		return nil, err
	}
	routerModel = cm
	return cm, nil
}

// newChatModelFromConfig 根据配置段创建 ChatModel
// provider 支持 openai（默认，任何 OpenAI 兼容端点）和 qwen（DashScope）
func newChatModelFromConfig(ctx context.Context, section string) (einoModel.BaseChatModel, error) {
	var (
		provider = g.Cfg().MustGet(ctx, section+".provider", "openai").String()
		apiKey   = g.Cfg().MustGet(ctx, section+".apiKey", "").String()
		baseURL  = g.Cfg().MustGet(ctx, section+".baseURL", "").String()
		model    = g.Cfg().MustGet(ctx, section+".model", "").String()
	)
	if model == "" {
		return nil, errors.Newf(errors.ErrModelNotConfigured, "%s.model is not configured", section)
	}

	switch provider {
	case "qwen":
		cm, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
		if err != nil {
			return nil, errors.Newf(errors.ErrModelNotConfigured, "failed to create qwen chat model for %s: %v", section, err)
		}
		return cm, nil
	default:
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
		if err != nil {
			return nil, errors.Newf(errors.ErrModelNotConfigured, "failed to create openai chat model for %s: %v", section, err)
		}
		return cm, nil
	}
}

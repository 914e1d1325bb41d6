package flow

import (
	"context"
	"fmt"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

// BasicFlow 单轮检索问答，不做评分与校验
type BasicFlow struct {
	retriever Retriever
	generator Generator
}

// NewBasicFlow 创建基础检索流程
func NewBasicFlow(retriever Retriever, generator Generator) *BasicFlow {
	return &BasicFlow{
		retriever: retriever,
		generator: generator,
	}
}

// Run 执行基础检索流程，任何一步失败都直接返回错误
func (x *BasicFlow) Run(ctx context.Context, question string) (*Result, error) {
	tr := &trace{}

	docs, err := x.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, errors.Newf(errors.ErrRetrievalFailed, "retrieval failed: %v", err)
	}
	tr.add(StepRetrieve, fmt.Sprintf("retrieved %d documents", len(docs)))

	generation, err := x.generator.Generate(ctx, question, docs)
	if err != nil {
		return nil, errors.Newf(errors.ErrGenerationFailed, "generation failed: %v", err)
	}
	tr.add(StepGenerate, "")
	tr.add(StepAccept, "")

	g.Log().Debugf(ctx, "basic flow answered with %d context documents", len(docs))
	return &Result{
		Question:   question,
		Generation: generation,
		Documents:  docs,
		Trace:      tr.transitions,
	}, nil
}

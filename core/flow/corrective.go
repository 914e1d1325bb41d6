package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
)

// CorrectiveFlow 纠偏检索流程
// 严格评分过滤检索结果，一旦有文档被拒绝就补充网络搜索结果再生成。
// 与自省流程不同，这里的评分和搜索失败不做吸收，错误直接上抛
type CorrectiveFlow struct {
	retriever   Retriever
	generator   Generator
	grader      Grader
	rewriter    Rewriter
	webSearcher WebSearcher
	conf        *config.FlowConfig
}

// NewCorrectiveFlow 创建纠偏检索流程
func NewCorrectiveFlow(retriever Retriever, generator Generator, grader Grader, rewriter Rewriter, webSearcher WebSearcher, conf *config.FlowConfig) *CorrectiveFlow {
	if conf == nil {
		conf = config.DefaultFlowConfig()
	}
	return &CorrectiveFlow{
		retriever:   retriever,
		generator:   generator,
		grader:      grader,
		rewriter:    rewriter,
		webSearcher: webSearcher,
		conf:        conf,
	}
}

// Run 执行纠偏检索流程
func (x *CorrectiveFlow) Run(ctx context.Context, question string) (*Result, error) {
	state := &State{
		Question:         question,
		OriginalQuestion: question,
	}
	tr := &trace{}

	docs, err := x.retriever.Retrieve(ctx, state.Question)
	if err != nil {
		return nil, errors.Newf(errors.ErrRetrievalFailed, "retrieval failed: %v", err)
	}
	state.Documents = docs
	tr.add(StepRetrieve, fmt.Sprintf("retrieved %d documents", len(docs)))

	// 严格评分，任一文档被拒绝则触发网络搜索补充
	needWebSearch := false
	filtered := state.Documents[:0:0]
	for i, doc := range state.Documents {
		relevant, err := x.grader.GradeRelevanceStrict(ctx, state.Question, doc.Content)
		if err != nil {
			return nil, err
		}
		if relevant {
			filtered = append(filtered, doc)
		} else {
			g.Log().Debugf(ctx, "document %d rejected: %s", i+1, common.TruncateRunes(doc.Content, 100))
			needWebSearch = true
		}
	}
	state.Documents = filtered
	tr.add(StepGradeDocuments, fmt.Sprintf("kept %d of %d documents", len(filtered), len(docs)))

	if needWebSearch {
		better, err := x.rewriter.RewriteForWeb(ctx, state.Question)
		if err != nil {
			return nil, err
		}
		state.Question = better
		tr.add(StepTransformQuery, "")

		results, err := x.webSearcher.Search(ctx, state.Question, x.conf.WebSearchMaxResults)
		if err != nil {
			return nil, errors.Newf(errors.ErrWebSearchFailed, "web search failed: %v", err)
		}
		state.Documents = append(state.Documents, webResultsDocument(results))
		tr.add(StepWebSearch, fmt.Sprintf("appended %d web results", len(results)))
	}

	generation, err := x.generator.Generate(ctx, state.Question, state.Documents)
	if err != nil {
		return nil, errors.Newf(errors.ErrGenerationFailed, "generation failed: %v", err)
	}
	state.Generation = generation
	tr.add(StepGenerate, "")
	tr.add(StepAccept, "")

	return &Result{
		Question:   state.Question,
		Generation: state.Generation,
		Documents:  state.Documents,
		Trace:      tr.transitions,
	}, nil
}

// webResultsDocument 将网络搜索结果合并为单个文档
// 各结果摘要按换行拼接
func webResultsDocument(results []SearchResult) *schema.Document {
	snippets := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.Content)
		if r.URL != "" {
			sources = append(sources, r.URL)
		}
	}
	return &schema.Document{
		Content: strings.Join(snippets, "\n"),
		MetaData: map[string]any{
			"web_sources": sources,
		},
	}
}

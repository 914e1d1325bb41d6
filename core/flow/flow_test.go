package flow

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// 各依赖的函数式假实现，测试按场景编排行为

type fakeRetriever struct {
	fn func(ctx context.Context, question string) ([]*schema.Document, error)
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) ([]*schema.Document, error) {
	return f.fn(ctx, question)
}

type fakeGenerator struct {
	fn func(ctx context.Context, question string, docs []*schema.Document) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, question string, docs []*schema.Document) (string, error) {
	return f.fn(ctx, question, docs)
}

type fakeGrader struct {
	relevanceFn     func(question, document string) (bool, error)
	strictFn        func(question, document string) (bool, error)
	hallucinationFn func(docs []*schema.Document, generation string) (bool, error)
	answerFn        func(question, generation string) (bool, error)
}

func (f *fakeGrader) GradeRelevance(_ context.Context, question, document string) (bool, error) {
	return f.relevanceFn(question, document)
}

func (f *fakeGrader) GradeRelevanceStrict(_ context.Context, question, document string) (bool, error) {
	return f.strictFn(question, document)
}

func (f *fakeGrader) GradeHallucination(_ context.Context, docs []*schema.Document, generation string) (bool, error) {
	return f.hallucinationFn(docs, generation)
}

func (f *fakeGrader) GradeAnswer(_ context.Context, question, generation string) (bool, error) {
	return f.answerFn(question, generation)
}

type fakeRewriter struct {
	fn    func(question string, aggressive bool) (string, error)
	webFn func(question string) (string, error)
}

func (f *fakeRewriter) Rewrite(_ context.Context, question string, aggressive bool) (string, error) {
	return f.fn(question, aggressive)
}

func (f *fakeRewriter) RewriteForWeb(_ context.Context, question string) (string, error) {
	return f.webFn(question)
}

type fakeRouter struct {
	fn func(question string) (Datasource, error)
}

func (f *fakeRouter) Route(_ context.Context, question string) (Datasource, error) {
	return f.fn(question)
}

type fakeWebSearcher struct {
	fn func(query string, maxResults int) ([]SearchResult, error)
}

func (f *fakeWebSearcher) Search(_ context.Context, query string, maxResults int) ([]SearchResult, error) {
	return f.fn(query, maxResults)
}

// 常用的固定行为

func retrieverReturning(docs ...*schema.Document) *fakeRetriever {
	return &fakeRetriever{fn: func(context.Context, string) ([]*schema.Document, error) {
		return docs, nil
	}}
}

func generatorReturning(answer string) *fakeGenerator {
	return &fakeGenerator{fn: func(context.Context, string, []*schema.Document) (string, error) {
		return answer, nil
	}}
}

func graderAlwaysYes() *fakeGrader {
	yes := func(string, string) (bool, error) { return true, nil }
	return &fakeGrader{
		relevanceFn: yes,
		strictFn:    yes,
		hallucinationFn: func([]*schema.Document, string) (bool, error) {
			return true, nil
		},
		answerFn: yes,
	}
}

func rewriterReturning(better string) *fakeRewriter {
	return &fakeRewriter{
		fn:    func(string, bool) (string, error) { return better, nil },
		webFn: func(string) (string, error) { return better, nil },
	}
}

func doc(content string) *schema.Document {
	return &schema.Document{Content: content}
}

func hasStep(trace []Transition, step Step) bool {
	for _, t := range trace {
		if t.Step == step {
			return true
		}
	}
	return false
}

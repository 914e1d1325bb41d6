package flow

import (
	"context"
	"fmt"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/common"
	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/errors"
)

// selfState 自省流程的状态机节点
type selfState int

const (
	selfRetrieve selfState = iota
	selfGradeDocuments
	selfGenerate
	selfCheckGeneration
	selfTransformQuery
	selfAccept
)

// SelfFlow 自省检索流程
// 检索、评分、生成、校验构成一个有界循环：
// 文档不相关时改写问题重试，生成不可靠时重新生成或改写，
// 重试计数达到阈值后逐档放宽标准，保证流程一定会结束
type SelfFlow struct {
	retriever Retriever
	generator Generator
	grader    Grader
	rewriter  Rewriter
	conf      *config.FlowConfig
}

// NewSelfFlow 创建自省检索流程
// conf 为 nil 时使用默认调参
func NewSelfFlow(retriever Retriever, generator Generator, grader Grader, rewriter Rewriter, conf *config.FlowConfig) *SelfFlow {
	if conf == nil {
		conf = config.DefaultFlowConfig()
	}
	return &SelfFlow{
		retriever: retriever,
		generator: generator,
		grader:    grader,
		rewriter:  rewriter,
		conf:      conf,
	}
}

// Run 执行自省检索流程
// 故障策略：检索失败直接返回错误；评分、改写失败被吸收并降级；
// 生成失败替换为兜底回答。步数达到上限返回 ErrStepLimitExceeded
func (x *SelfFlow) Run(ctx context.Context, question string) (*Result, error) {
	state := &State{
		Question:         question,
		OriginalQuestion: question,
	}
	tr := &trace{}
	st := selfRetrieve

	for steps := 0; steps < x.conf.MaxSteps; steps++ {
		switch st {
		case selfRetrieve:
			g.Log().Infof(ctx, "retrieve attempt #%d, question: %s", state.RetryCount+1, common.TruncateRunes(state.Question, 120))
			docs, err := x.retriever.Retrieve(ctx, state.Question)
			if err != nil {
				return nil, errors.Newf(errors.ErrRetrievalFailed, "retrieval failed: %v", err)
			}
			state.Documents = docs
			tr.add(StepRetrieve, fmt.Sprintf("retrieved %d documents", len(docs)))
			st = selfGradeDocuments

		case selfGradeDocuments:
			x.gradeDocuments(ctx, state, tr)
			st = x.decideAfterGrading(ctx, state, tr)

		case selfGenerate:
			x.generate(ctx, state, tr)
			st = selfCheckGeneration

		case selfCheckGeneration:
			st = x.checkGeneration(ctx, state, tr)

		case selfTransformQuery:
			x.transformQuery(ctx, state, tr)
			st = selfRetrieve

		case selfAccept:
			tr.add(StepAccept, "")
			return &Result{
				Question:   state.Question,
				Generation: state.Generation,
				Documents:  state.Documents,
				RetryCount: state.RetryCount,
				Degraded:   tr.degraded,
				Trace:      tr.transitions,
			}, nil
		}
	}

	g.Log().Warningf(ctx, "flow exceeded %d steps for question: %s", x.conf.MaxSteps, common.TruncateRunes(question, 120))
	return nil, errors.Newf(errors.ErrStepLimitExceeded, "flow did not converge within %d steps", x.conf.MaxSteps)
}

// gradeDocuments 逐个判定文档相关性，过滤无关文档
// 重试次数达到阈值后跳过过滤，评分失败时保留文档
func (x *SelfFlow) gradeDocuments(ctx context.Context, state *State, tr *trace) {
	if state.RetryCount >= x.conf.LenientGradeAfter {
		g.Log().Infof(ctx, "retry limit reached, accepting all %d documents", len(state.Documents))
		tr.addDegraded(StepGradeDocuments, "retry limit reached, accepting all documents")
		return
	}

	filtered := state.Documents[:0:0]
	faults := 0
	for i, doc := range state.Documents {
		relevant, err := x.grader.GradeRelevance(ctx, state.Question, doc.Content)
		if err != nil {
			// 评分失败时保留文档
			g.Log().Warningf(ctx, "grading document %d failed, keeping it: %v", i+1, err)
			filtered = append(filtered, doc)
			faults++
			continue
		}
		if relevant {
			filtered = append(filtered, doc)
		} else {
			g.Log().Debugf(ctx, "document %d rejected: %s", i+1, common.TruncateRunes(doc.Content, 100))
		}
	}

	note := fmt.Sprintf("kept %d of %d documents", len(filtered), len(state.Documents))
	state.Documents = filtered
	if faults > 0 {
		tr.addDegraded(StepGradeDocuments, note+fmt.Sprintf(", %d grading faults absorbed", faults))
	} else {
		tr.add(StepGradeDocuments, note)
	}
}

// decideAfterGrading 根据过滤结果决定下一步
func (x *SelfFlow) decideAfterGrading(ctx context.Context, state *State, tr *trace) selfState {
	if len(state.Documents) == 0 {
		if state.RetryCount >= x.conf.ForceGenerateAfter {
			g.Log().Warning(ctx, "max retries exceeded, forcing generation with no documents")
			tr.addDegraded(StepGradeDocuments, "max retries exceeded, forcing generation without documents")
			return selfGenerate
		}
		return selfTransformQuery
	}
	return selfGenerate
}

// generate 生成回答
// 无文档时给出兜底回答，生成失败时替换为错误提示
func (x *SelfFlow) generate(ctx context.Context, state *State, tr *trace) {
	if len(state.Documents) == 0 {
		state.Generation = NoDocumentsFallback(state.Question)
		tr.addDegraded(StepGenerate, "no documents available, substituted fallback answer")
		return
	}

	generation, err := x.generator.Generate(ctx, state.Question, state.Documents)
	if err != nil {
		g.Log().Errorf(ctx, "generation failed: %v", err)
		state.Generation = GenerationErrorFallback(state.Question)
		tr.addDegraded(StepGenerate, "generation failed, substituted fallback answer")
		return
	}
	state.Generation = generation
	tr.add(StepGenerate, "")
}

// checkGeneration 校验生成结果的事实性与答案质量
// 重试达到阈值或无文档时直接接受，校验失败时也接受
func (x *SelfFlow) checkGeneration(ctx context.Context, state *State, tr *trace) selfState {
	if state.RetryCount >= x.conf.SkipCheckAfter || len(state.Documents) == 0 {
		tr.addDegraded(StepCheckGeneration, "accepted without checking due to retry limit or missing documents")
		return selfAccept
	}

	grounded, err := x.grader.GradeHallucination(ctx, state.Documents, state.Generation)
	if err != nil {
		// 校验失败时接受当前生成结果
		g.Log().Warningf(ctx, "hallucination check failed, accepting generation: %v", err)
		tr.addDegraded(StepCheckGeneration, "hallucination check fault absorbed, generation accepted")
		return selfAccept
	}
	if !grounded {
		g.Log().Info(ctx, "generation is not grounded in documents, regenerating")
		tr.add(StepCheckGeneration, "generation not grounded, regenerating")
		return selfGenerate
	}

	useful, err := x.grader.GradeAnswer(ctx, state.Question, state.Generation)
	if err != nil {
		g.Log().Warningf(ctx, "answer check failed, accepting generation: %v", err)
		tr.addDegraded(StepCheckGeneration, "answer check fault absorbed, generation accepted")
		return selfAccept
	}
	if !useful {
		g.Log().Info(ctx, "generation does not address the question, transforming query")
		tr.add(StepCheckGeneration, "generation does not address question, transforming query")
		return selfTransformQuery
	}

	tr.add(StepCheckGeneration, "generation grounded and useful")
	return selfAccept
}

// transformQuery 改写问题并递增重试计数
// 改写失败时沿用原问题
func (x *SelfFlow) transformQuery(ctx context.Context, state *State, tr *trace) {
	state.RetryCount++
	aggressive := state.RetryCount >= x.conf.AggressiveRewriteAfter

	better, err := x.rewriter.Rewrite(ctx, state.Question, aggressive)
	if err != nil {
		// 改写失败时保留原问题
		g.Log().Warningf(ctx, "query transformation failed, keeping original question: %v", err)
		tr.addDegraded(StepTransformQuery, "rewrite fault absorbed, keeping original question")
		return
	}
	state.Question = better
	if aggressive {
		tr.add(StepTransformQuery, "aggressive rewrite applied")
	} else {
		tr.add(StepTransformQuery, "")
	}
}

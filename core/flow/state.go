package flow

import (
	"github.com/cloudwego/eino/schema"
)

// Step 流程步骤标识
type Step string

const (
	StepRetrieve        Step = "retrieve"
	StepGradeDocuments  Step = "grade_documents"
	StepGenerate        Step = "generate"
	StepCheckGeneration Step = "check_generation"
	StepTransformQuery  Step = "transform_query"
	StepRouteQuery      Step = "route_query"
	StepWebSearch       Step = "web_search"
	StepCallSelfRAG     Step = "call_self_rag"
	StepAccept          Step = "accept"
)

// Transition 一次步骤执行的记录
// Degraded 表示该步骤发生了故障吸收或阈值触发的降级
type Transition struct {
	Step     Step   `json:"step"`
	Note     string `json:"note,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// State 流程运行中的可变状态
type State struct {
	// Question 当前检索使用的问题，可能已被改写
	Question string
	// OriginalQuestion 用户输入的原始问题
	OriginalQuestion string
	// Documents 当前上下文文档
	Documents []*schema.Document
	// Generation 当前生成的回答
	Generation string
	// RetryCount 改写重试计数，驱动各档降级阈值
	RetryCount int
}

// Result 流程运行结果
type Result struct {
	// Question 最终使用的问题（可能是改写后的版本）
	Question string `json:"question"`
	// Generation 最终回答
	Generation string `json:"generation"`
	// Documents 生成回答所用的上下文文档
	Documents []*schema.Document `json:"documents"`
	// RetryCount 结束时的重试计数
	RetryCount int `json:"retryCount"`
	// Degraded 是否有任一步骤发生降级
	Degraded bool `json:"degraded"`
	// Trace 步骤执行轨迹
	Trace []Transition `json:"trace"`
}

// trace 运行轨迹收集器
type trace struct {
	transitions []Transition
	degraded    bool
}

func (t *trace) add(step Step, note string) {
	t.transitions = append(t.transitions, Transition{Step: step, Note: note})
}

func (t *trace) addDegraded(step Step, note string) {
	t.transitions = append(t.transitions, Transition{Step: step, Note: note, Degraded: true})
	t.degraded = true
}

package model

import "time"

// Fact 教育知识条目，启动时静态定义，不可变
type Fact struct {
	Category string `json:"category"` // 所属类别
	Topic    string `json:"topic"`    // 规范主题名
	Text     string `json:"text"`     // 事实文本
}

// ToolCallArgs 事实查询工具的调用参数
type ToolCallArgs struct {
	Topic string `json:"topic"`
}

// ToolCallRecord 一次事实查询的完整记录，附加在最终生成结果上
type ToolCallRecord struct {
	Function      string              `json:"function"`
	Arguments     ToolCallArgs        `json:"arguments"`
	Result        string              `json:"result"`
	OriginalTopic string              `json:"original_topic"` // 用户文本中检测到的原始主题
	Category      string              `json:"category,omitempty"`
	Expanded      bool                `json:"expanded"` // 是否经过别名扩展
	Verification  *VerificationRecord `json:"verification,omitempty"`
}

// 事实核查的准确性分类
const (
	AccuracyTrue          = "true"
	AccuracyFalse         = "false"
	AccuracyPartiallyTrue = "partially_true"
	AccuracyUnknown       = "unknown"
)

// 事实核查结论
const (
	VerdictVerified        = "VERIFIED"
	VerdictNeedsCorrection = "NEEDS_CORRECTION"
	VerdictInaccurate      = "INACCURATE"
)

// 故事评审结论
const (
	VerdictApproved      = "APPROVED"
	VerdictNeedsRevision = "NEEDS_REVISION"
)

// VerificationRecord 单条事实的核查记录，创建后不可变
type VerificationRecord struct {
	Fact           string  `json:"fact"`
	Topic          string  `json:"topic"`
	Accuracy       string  `json:"accuracy"` // true/false/partially_true/unknown
	Score          float64 `json:"score"`    // 0-10
	AgeAppropriate bool    `json:"age_appropriate"`
	Concerns       string  `json:"concerns,omitempty"`
	Verdict        string  `json:"verdict"` // VERIFIED/NEEDS_CORRECTION/INACCURATE
	IsVerified     bool    `json:"is_verified"`
	Raw            string  `json:"-"`
	Err            string  `json:"error,omitempty"`
}

// GenerationAttempt 一次生成调用的产出。生成失败不抛错，
// 以 IsValid=false 加错误说明的形式返回给编排层处理。
type GenerationAttempt struct {
	Story   string `json:"story"`
	IsValid bool   `json:"is_valid"`
	Err     string `json:"error,omitempty"`
}

// EvaluationRecord 一次故事评审的产出
type EvaluationRecord struct {
	OverallScore   float64 `json:"overall_score"` // 0-10，解析失败默认7.0
	Verdict        string  `json:"verdict"`       // APPROVED/NEEDS_REVISION
	MeetsThreshold bool    `json:"meets_threshold"`
	Feedback       string  `json:"feedback"`
	Raw            string  `json:"-"`
	Err            string  `json:"error,omitempty"`
}

// RunSettings 单次生成的参数快照，随故事一起落库
type RunSettings struct {
	StorytellerTemperature float64 `json:"storyteller_temperature"`
	JudgeTemperature       float64 `json:"judge_temperature"`
	MaxStoryTokens         int     `json:"max_story_tokens"`
	QualityThreshold       float64 `json:"quality_threshold"`
	MaxRevisions           int     `json:"max_revisions"`
}

// GenerationResult 一次请求的最终产物，所有权交给调用方。
// 调用方通过 MeetsQualityThreshold / FallbackUsed / Err 判断结果质量，
// 而不是依赖异常。
type GenerationResult struct {
	Story                 string           `json:"story"`
	UserRequest           string           `json:"user_request"`
	RevisionCount         int              `json:"revision_count"`
	JudgeScore            float64          `json:"judge_score"`
	JudgeFeedback         string           `json:"judge_feedback"`
	MeetsQualityThreshold bool             `json:"meets_quality_threshold"`
	ToolCalls             []ToolCallRecord `json:"tool_calls"`
	ModelUsed             string           `json:"model_used"`
	MCPEnabled            bool             `json:"mcp_enabled"`
	FallbackUsed          bool             `json:"fallback_used"`
	ParentSettings        map[string]any   `json:"parent_settings,omitempty"`
	Err                   string           `json:"error,omitempty"`
}

// RunRecord 一次生成运行的流水记录（成功或失败都记）
type RunRecord struct {
	Timestamp    time.Time     `json:"timestamp"`
	UserRequest  string        `json:"user_request"`
	Success      bool          `json:"success"`
	ModelUsed    string        `json:"model_used"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration"`
	MCPEnabled   bool          `json:"mcp_enabled"`
	FallbackUsed bool          `json:"fallback_used"`
}

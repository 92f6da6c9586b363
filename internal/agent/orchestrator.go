package agent

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/backup"
	"storyweaver/internal/facts"
	"storyweaver/internal/model"
	"storyweaver/internal/parentcfg"
	"storyweaver/internal/tools"
)

// 兜底路径不跑评审，给一个固定的占位分。调用方依赖这个取值，
// 改动它会改变可观察语义。
const fallbackJudgeScore = 6.0

const fallbackFeedback = "Story generated using local fallback model. Judge evaluation skipped."

// 未显式指定模型时使用的Ark推理接入点
const defaultArkModel = "ep-20250220181854-c8s82"

// Fallback 本地兜底生成器的窄接口
type Fallback interface {
	Generate(ctx context.Context, userRequest string) model.GenerationAttempt
	ModelName() string
}

// Options 编排器的显式配置，构造时传入，不依赖任何全局状态
type Options struct {
	Model                  string // 主模型名
	EnableFacts            bool   // 是否启用事实增强
	MaxRevisions           int    // 生成总次数上限（含首次生成）
	QualityThreshold       float64
	StorytellerTemperature float32
	JudgeTemperature       float32
	MaxStoryTokens         int
	Parent                 *parentcfg.Settings
	// 修订额度耗尽时评审结果可能滞后于最终文本，
	// 该开关控制是否补评一次以保证返回分数对应返回文本
	ReevaluateFinal bool
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{
		EnableFacts:            true,
		MaxRevisions:           3,
		QualityThreshold:       7.0,
		StorytellerTemperature: 0.8,
		JudgeTemperature:       0.2,
		MaxStoryTokens:         2000,
		ReevaluateFinal:        true,
	}
}

// Orchestrator 编排"生成→评审→修订"循环。主生成器不可用或失败时
// 切换到本地兜底生成器，兜底路径不做评审。
type Orchestrator struct {
	opts        Options
	storyteller *Storyteller
	judge       *Judge
	checker     *FactChecker
	expander    *facts.Expander
	fallback    Fallback
	log         *logrus.Entry
}

// New 按环境变量装配编排器。ARK_API_KEY缺失或主模型构建失败时
// 主路径标记为不可用，后续请求直接走兜底——这对单次请求不是致命错误。
func New(ctx context.Context, opts Options) *Orchestrator {
	o := NewWithComponents(opts, nil, nil, nil, backup.New())

	apiKey := os.Getenv("ARK_API_KEY")
	if apiKey == "" {
		o.log.Warn("ARK_API_KEY not set, primary generator unavailable")
		return o
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = os.Getenv("ARK_CHAT_MODEL")
	}
	if modelName == "" {
		modelName = defaultArkModel
	}
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:     apiKey,
		Region:     "cn-beijing",
		HTTPClient: &http.Client{},
		Model:      modelName,
	})
	if err != nil {
		o.log.WithError(err).Warn("failed to create primary chat model, will use fallback")
		return o
	}

	o.opts.Model = modelName
	o.storyteller = NewStoryteller(chatModel, StorytellerConfig{
		Temperature: opts.StorytellerTemperature,
		MaxTokens:   opts.MaxStoryTokens,
		Parent:      opts.Parent,
	}, tools.NewFactTool())
	o.judge = NewJudge(chatModel, opts.JudgeTemperature, opts.QualityThreshold)
	if opts.EnableFacts {
		o.checker = NewFactChecker(chatModel)
	}
	return o
}

// NewWithComponents 用现成组件装配编排器。storyteller为nil表示主路径不可用。
func NewWithComponents(opts Options, st *Storyteller, judge *Judge, checker *FactChecker, fb Fallback) *Orchestrator {
	if opts.MaxRevisions <= 0 {
		opts.MaxRevisions = 3
	}
	if opts.QualityThreshold == 0 {
		opts.QualityThreshold = 7.0
	}
	return &Orchestrator{
		opts:        opts,
		storyteller: st,
		judge:       judge,
		checker:     checker,
		expander:    facts.NewExpander(),
		fallback:    fb,
		log:         logrus.WithField("component", "orchestrator"),
	}
}

// GenerateStory 处理一次完整的故事生成请求。永远返回一个结果对象：
// 只有兜底生成器也失败时结果才带Err，其余情况都是尽力而为的成品。
func (o *Orchestrator) GenerateStory(ctx context.Context, userRequest string) model.GenerationResult {
	o.log.WithField("request", userRequest).Info("starting story generation")

	if o.storyteller == nil {
		return o.generateWithFallback(ctx, userRequest)
	}

	result, ok := o.generateWithPrimary(ctx, userRequest)
	if !ok {
		o.log.Info("primary generation failed, falling back to local model")
		return o.generateWithFallback(ctx, userRequest)
	}
	return result
}

// generateWithPrimary 主路径：增强→生成→评审→（修订→生成）*。
// 第二个返回值为false表示应切换到兜底路径。
func (o *Orchestrator) generateWithPrimary(ctx context.Context, userRequest string) (model.GenerationResult, bool) {
	var toolCalls []model.ToolCallRecord
	enhanced := userRequest

	if o.opts.EnableFacts {
		toolCalls = o.detectAndFetchFacts(ctx, userRequest)
		if len(toolCalls) > 0 {
			o.log.WithField("facts", len(toolCalls)).Info("augmenting request with educational facts")
			enhanced = buildAugmentedRequest(userRequest, toolCalls)
		} else {
			// 没检测到主题是正常结果，按原始请求生成
			o.log.Info("no educational topics detected")
		}
	}

	attempt := o.storyteller.Generate(ctx, enhanced, "")
	if !attempt.IsValid {
		o.log.WithField("error", attempt.Err).Warn("initial generation failed")
		return model.GenerationResult{}, false
	}

	story := attempt.Story
	revisionCount := 0
	var eval model.EvaluationRecord
	evalCurrent := false // eval是否评的正是story的当前内容

	for revisionCount < o.opts.MaxRevisions {
		eval = o.judge.Evaluate(ctx, story, userRequest)
		evalCurrent = true
		o.log.WithFields(logrus.Fields{
			"score":   eval.OverallScore,
			"verdict": eval.Verdict,
			"attempt": revisionCount + 1,
		}).Info("story evaluated")

		if eval.MeetsThreshold {
			break
		}

		if revisionCount >= o.opts.MaxRevisions-1 {
			// 修订额度耗尽，当前版本照常返回
			o.log.Info("maximum revisions reached, using current version")
			break
		}

		revisionPrompt := o.judge.RevisionPrompt(story, eval.Feedback, userRequest)
		revised := o.storyteller.Generate(ctx, revisionPrompt, "")
		if !revised.IsValid {
			// 修订失败保留上一版，不再重试
			o.log.Warn("revised generation failed, keeping previous version")
			break
		}
		story = revised.Story
		revisionCount++
		evalCurrent = false
	}

	if !evalCurrent && o.opts.ReevaluateFinal {
		// 保证返回的分数评的就是返回的文本
		eval = o.judge.Evaluate(ctx, story, userRequest)
	}

	return model.GenerationResult{
		Story:                 story,
		UserRequest:           userRequest,
		RevisionCount:         revisionCount,
		JudgeScore:            eval.OverallScore,
		JudgeFeedback:         eval.Feedback,
		MeetsQualityThreshold: eval.MeetsThreshold,
		ToolCalls:             toolCalls,
		ModelUsed:             o.opts.Model,
		MCPEnabled:            o.opts.EnableFacts,
		ParentSettings:        o.opts.Parent.Snapshot(),
	}, true
}

// detectAndFetchFacts 检测请求里的教育主题并取回事实，可选核查。
// 任何一步失败都只影响单条记录，不中断生成。
func (o *Orchestrator) detectAndFetchFacts(ctx context.Context, userRequest string) []model.ToolCallRecord {
	detected := o.expander.DetectTopics(userRequest)
	if len(detected) == 0 {
		return nil
	}

	records := make([]model.ToolCallRecord, 0, len(detected))
	for _, topic := range detected {
		res := o.expander.ResolveFactWithExpansion(topic)

		var verification *model.VerificationRecord
		if o.checker != nil {
			v := o.checker.Verify(ctx, res.Fact, res.UsedTopic)
			verification = &v
		}

		records = append(records, model.ToolCallRecord{
			Function:      tools.FactToolName,
			Arguments:     model.ToolCallArgs{Topic: res.UsedTopic},
			Result:        res.Fact,
			OriginalTopic: res.OriginalTopic,
			Category:      res.Category,
			Expanded:      res.Expanded,
			Verification:  verification,
		})
	}
	return records
}

// buildAugmentedRequest 把取回的事实拼进请求作为背景依据，
// 核查通过的事实标记为优先来源。
func buildAugmentedRequest(userRequest string, toolCalls []model.ToolCallRecord) string {
	parts := make([]string, 0, len(toolCalls))
	for _, tc := range toolCalls {
		if tc.Verification != nil && tc.Verification.IsVerified {
			parts = append(parts, fmt.Sprintf("✅ Verified fact about %s: %s", tc.Arguments.Topic, tc.Result))
		} else {
			parts = append(parts, fmt.Sprintf("Educational fact about %s: %s", tc.Arguments.Topic, tc.Result))
		}
	}

	return fmt.Sprintf(`%s

IMPORTANT: Incorporate these educational facts naturally into the story:
%s

Make sure the story is educational while remaining engaging and age-appropriate. Use the verified facts (marked with ✓) as primary sources.`,
		userRequest, strings.Join(parts, "\n\n"))
}

// generateWithFallback 兜底路径：本地模型按原始请求直出，
// 不做事实增强也不跑评审循环，占位分6.0、不过质量线。
// 兜底也失败时返回唯一一种显式失败结果。
func (o *Orchestrator) generateWithFallback(ctx context.Context, userRequest string) model.GenerationResult {
	attempt := o.fallback.Generate(ctx, userRequest)

	if attempt.IsValid {
		o.log.WithField("chars", len(attempt.Story)).Info("story generated with fallback model")
		return model.GenerationResult{
			Story:                 attempt.Story,
			UserRequest:           userRequest,
			RevisionCount:         0,
			JudgeScore:            fallbackJudgeScore,
			JudgeFeedback:         fallbackFeedback,
			MeetsQualityThreshold: false,
			ToolCalls:             nil,
			ModelUsed:             o.fallback.ModelName(),
			MCPEnabled:            false,
			FallbackUsed:          true,
			ParentSettings:        o.opts.Parent.Snapshot(),
		}
	}

	o.log.WithField("error", attempt.Err).Error("fallback generation failed")
	return model.GenerationResult{
		Story:                 "Story generation failed. Please check your API key and local model installation.",
		UserRequest:           userRequest,
		RevisionCount:         0,
		JudgeScore:            0,
		JudgeFeedback:         attempt.Err,
		MeetsQualityThreshold: false,
		ToolCalls:             nil,
		ModelUsed:             "none",
		MCPEnabled:            false,
		FallbackUsed:          true,
		Err:                   attempt.Err,
	}
}

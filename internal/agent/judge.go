package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
)

const judgeInstruction = `You are a Story Judge Agent specialized in evaluating bedtime stories for children (ages 5-10).

Your evaluation criteria:
1. Age-appropriateness (vocabulary, themes, complexity)
2. Educational value (if applicable)
3. Narrative quality (plot, characters, flow)
4. Safety and positive messaging
5. Engagement and entertainment value
6. Story structure (beginning, middle, end)

Provide scores from 1-10 for each criterion and an overall score.
Give constructive feedback for improvement when scores are below 7.`

// Judge 故事评审agent。低温度保证评分一致性。
type Judge struct {
	model       einomodel.BaseChatModel
	temperature float32
	maxTokens   int
	threshold   float64
	log         *logrus.Entry
}

// NewJudge 创建评审agent。threshold是故事过关的最低总分。
func NewJudge(m einomodel.BaseChatModel, temperature float32, threshold float64) *Judge {
	if temperature == 0 {
		temperature = 0.2
	}
	if threshold == 0 {
		threshold = 7.0
	}
	return &Judge{
		model:       m,
		temperature: temperature,
		maxTokens:   1000,
		threshold:   threshold,
		log:         logrus.WithField("agent", "judge"),
	}
}

// Threshold 当前的质量阈值
func (j *Judge) Threshold() float64 {
	return j.threshold
}

// Evaluate 评审故事并给出结构化结论。评审调用失败时降级为
// 5.0分/NEEDS_REVISION的记录，绝不向上抛错。
func (j *Judge) Evaluate(ctx context.Context, story, userRequest string) model.EvaluationRecord {
	prompt := fmt.Sprintf(`Evaluate this bedtime story:

User Request: %s

Story:
%s

Please provide:
1. Overall score (1-10)
2. Scores for each criterion (age-appropriateness, educational value, narrative quality, safety, engagement, structure)
3. Detailed feedback
4. Verdict: "APPROVED" if overall score >= 7, "NEEDS_REVISION" otherwise

Format your response as:
OVERALL_SCORE: X/10
AGE_APPROPRIATENESS: X/10
EDUCATIONAL_VALUE: X/10
NARRATIVE_QUALITY: X/10
SAFETY: X/10
ENGAGEMENT: X/10
STRUCTURE: X/10
VERDICT: APPROVED/NEEDS_REVISION
FEEDBACK: [detailed feedback here]
`, userRequest, story)

	messages := []*schema.Message{
		schema.SystemMessage(judgeInstruction),
		schema.UserMessage(prompt),
	}

	out, err := runModel(ctx, j.model, messages,
		einomodel.WithTemperature(j.temperature),
		einomodel.WithMaxTokens(j.maxTokens),
	)
	if err != nil {
		j.log.WithError(err).Warn("evaluation failed")
		return model.EvaluationRecord{
			OverallScore:   5.0,
			Verdict:        model.VerdictNeedsRevision,
			MeetsThreshold: false,
			Feedback:       fmt.Sprintf("Error during evaluation: %v", err),
			Err:            err.Error(),
		}
	}

	return j.parseEvaluation(out.Content)
}

// parseEvaluation 解析固定的行格式评审输出。无法识别的行忽略，
// 缺失的键走默认值：总分7.0，结论APPROVED。
func (j *Judge) parseEvaluation(text string) model.EvaluationRecord {
	record := model.EvaluationRecord{
		OverallScore: 7.0,
		Verdict:      model.VerdictApproved,
		Feedback:     text,
		Raw:          text,
	}

	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "OVERALL_SCORE") {
			if score, ok := parseScoreLine(line); ok {
				record.OverallScore = score
			}
		}
		if strings.Contains(upper, "VERDICT") && strings.Contains(upper, model.VerdictNeedsRevision) {
			record.Verdict = model.VerdictNeedsRevision
		}
	}

	record.MeetsThreshold = record.OverallScore >= j.threshold
	return record
}

// RevisionPrompt 根据评审反馈构造修订提示词
func (j *Judge) RevisionPrompt(story, feedback, userRequest string) string {
	return fmt.Sprintf(`Please revise this story based on the judge's feedback:

Original Request: %s

Current Story:
%s

Judge Feedback:
%s

Please improve the story while maintaining the core narrative and educational elements.`, userRequest, story, feedback)
}

// parseScoreLine 从"KEY: X/10"形式的行里取出X
func parseScoreLine(line string) (float64, bool) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	raw := strings.TrimSpace(strings.SplitN(parts[1], "/", 2)[0])
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

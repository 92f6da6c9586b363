package agent

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
)

const factCheckerInstruction = `You are a Fact Checker Agent specialized in validating educational content for children (ages 5-10).

Your responsibilities:
1. Verify that educational facts are accurate and age-appropriate
2. Check that facts are presented in a way suitable for children
3. Identify any inaccuracies or misleading information
4. Ensure facts align with established scientific knowledge
5. Rate fact accuracy on a scale of 1-10

Be thorough but remember these are for children, so focus on age-appropriate accuracy.`

// FactChecker 事实核查agent。核查是尽力而为的增强：
// 任何失败都降级为"已核查"并把失败原因写进Concerns，绝不阻断故事生成。
type FactChecker struct {
	model       einomodel.BaseChatModel
	temperature float32
	maxTokens   int
	log         *logrus.Entry
}

// NewFactChecker 创建事实核查agent
func NewFactChecker(m einomodel.BaseChatModel) *FactChecker {
	return &FactChecker{
		model:       m,
		temperature: 0.2, // 低温度保证核查结果一致
		maxTokens:   500,
		log:         logrus.WithField("agent", "fact_checker"),
	}
}

// Verify 核查一条教育事实
func (f *FactChecker) Verify(ctx context.Context, fact, topic string) model.VerificationRecord {
	prompt := fmt.Sprintf(`Verify this educational fact for children (ages 5-10):

Topic: %s
Fact: %s

Please evaluate:
1. Is this fact accurate? (true/false/partially_true)
2. Accuracy score (1-10, where 10 is completely accurate)
3. Is it age-appropriate? (yes/no)
4. Any concerns or corrections needed?
5. Overall verdict: VERIFIED, NEEDS_CORRECTION, or INACCURATE

Format your response as:
ACCURACY: true/false/partially_true
SCORE: X/10
AGE_APPROPRIATE: yes/no
CONCERNS: [any concerns or corrections]
VERDICT: VERIFIED/NEEDS_CORRECTION/INACCURATE
`, topic, fact)

	messages := []*schema.Message{
		schema.SystemMessage(factCheckerInstruction),
		schema.UserMessage(prompt),
	}

	out, err := runModel(ctx, f.model, messages,
		einomodel.WithTemperature(f.temperature),
		einomodel.WithMaxTokens(f.maxTokens),
	)
	if err != nil {
		f.log.WithError(err).Warn("fact verification failed")
		return model.VerificationRecord{
			Fact:           fact,
			Topic:          topic,
			Accuracy:       model.AccuracyUnknown,
			Score:          5.0,
			AgeAppropriate: true,
			Concerns:       fmt.Sprintf("Verification failed: %v", err),
			Verdict:        model.VerdictVerified,
			IsVerified:     true,
			Err:            err.Error(),
		}
	}

	record := parseVerification(out.Content)
	record.Fact = fact
	record.Topic = topic
	return record
}

// VerifyMultiple 批量核查，保持输入顺序
func (f *FactChecker) VerifyMultiple(ctx context.Context, facts []model.Fact) []model.VerificationRecord {
	records := make([]model.VerificationRecord, 0, len(facts))
	for _, fc := range facts {
		records = append(records, f.Verify(ctx, fc.Text, fc.Topic))
	}
	return records
}

// parseVerification 解析固定的行格式核查输出。
// 缺失的键走默认值：accuracy=unknown、score=7.0、
// age_appropriate=true、verdict=VERIFIED。
func parseVerification(text string) model.VerificationRecord {
	record := model.VerificationRecord{
		Accuracy:       model.AccuracyUnknown,
		Score:          7.0,
		AgeAppropriate: true,
		Verdict:        model.VerdictVerified,
		Raw:            text,
	}

	for _, line := range strings.Split(text, "\n") {
		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, "ACCURACY:"):
			// partially_true包含"TRUE"子串，必须先判
			switch {
			case strings.Contains(upper, "PARTIALLY"):
				record.Accuracy = model.AccuracyPartiallyTrue
			case strings.Contains(upper, "TRUE"):
				record.Accuracy = model.AccuracyTrue
			case strings.Contains(upper, "FALSE"):
				record.Accuracy = model.AccuracyFalse
			}
		case strings.Contains(upper, "SCORE:"):
			if score, ok := parseScoreLine(line); ok {
				record.Score = score
			}
		case strings.Contains(upper, "AGE_APPROPRIATE:"):
			if strings.Contains(upper, "NO") {
				record.AgeAppropriate = false
			}
		case strings.Contains(upper, "CONCERNS:"):
			if _, after, ok := strings.Cut(line, ":"); ok {
				record.Concerns = strings.TrimSpace(after)
			}
		case strings.Contains(upper, "VERDICT:"):
			switch {
			case strings.Contains(upper, model.VerdictNeedsCorrection):
				record.Verdict = model.VerdictNeedsCorrection
			case strings.Contains(upper, model.VerdictInaccurate):
				record.Verdict = model.VerdictInaccurate
			}
		}
	}

	record.IsVerified = record.Verdict == model.VerdictVerified
	return record
}

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweaver/internal/model"
)

func TestFactCheckerVerify(t *testing.T) {
	fake := &fakeChatModel{generate: respondWith(schema.AssistantMessage(`ACCURACY: true
SCORE: 9/10
AGE_APPROPRIATE: yes
CONCERNS: none
VERDICT: VERIFIED`, nil))}
	checker := NewFactChecker(fake)

	record := checker.Verify(context.Background(), "Mars is the fourth planet.", "mars")
	assert.Equal(t, "Mars is the fourth planet.", record.Fact)
	assert.Equal(t, "mars", record.Topic)
	assert.Equal(t, model.AccuracyTrue, record.Accuracy)
	assert.Equal(t, 9.0, record.Score)
	assert.True(t, record.AgeAppropriate)
	assert.Equal(t, "none", record.Concerns)
	assert.True(t, record.IsVerified)
}

func TestFactCheckerVerifyNeedsCorrection(t *testing.T) {
	fake := &fakeChatModel{generate: respondWith(schema.AssistantMessage(`ACCURACY: partially_true
SCORE: 4/10
AGE_APPROPRIATE: no
CONCERNS: The size figure is exaggerated.
VERDICT: NEEDS_CORRECTION`, nil))}
	checker := NewFactChecker(fake)

	record := checker.Verify(context.Background(), "some fact", "whales")
	// partially_true包含"true"子串，解析必须区分开
	assert.Equal(t, model.AccuracyPartiallyTrue, record.Accuracy)
	assert.Equal(t, 4.0, record.Score)
	assert.False(t, record.AgeAppropriate)
	assert.Equal(t, "The size figure is exaggerated.", record.Concerns)
	assert.Equal(t, model.VerdictNeedsCorrection, record.Verdict)
	assert.False(t, record.IsVerified)
}

func TestFactCheckerVerifyUnparseable(t *testing.T) {
	fake := &fakeChatModel{generate: respondWith(schema.AssistantMessage("Looks fine to me.", nil))}
	checker := NewFactChecker(fake)

	// 解析不出走默认：unknown/7.0/age-appropriate/VERIFIED
	record := checker.Verify(context.Background(), "fact", "topic")
	assert.Equal(t, model.AccuracyUnknown, record.Accuracy)
	assert.Equal(t, 7.0, record.Score)
	assert.True(t, record.AgeAppropriate)
	assert.True(t, record.IsVerified)
}

func TestFactCheckerVerifyFailure(t *testing.T) {
	fake := &fakeChatModel{generate: failWith(errors.New("model down"))}
	checker := NewFactChecker(fake)

	// 核查失败不阻断生成：降级为已核查并记录失败原因
	record := checker.Verify(context.Background(), "fact", "topic")
	assert.True(t, record.IsVerified)
	assert.Equal(t, model.AccuracyUnknown, record.Accuracy)
	assert.Equal(t, 5.0, record.Score)
	assert.Contains(t, record.Concerns, "Verification failed:")
	assert.NotEmpty(t, record.Err)
}

func TestVerifyMultipleOrder(t *testing.T) {
	fake := &fakeChatModel{generate: respondWith(schema.AssistantMessage("VERDICT: VERIFIED", nil))}
	checker := NewFactChecker(fake)

	facts := []model.Fact{
		{Topic: "mars", Text: "fact one"},
		{Topic: "moon", Text: "fact two"},
	}
	records := checker.VerifyMultiple(context.Background(), facts)
	require.Len(t, records, 2)
	assert.Equal(t, "mars", records[0].Topic)
	assert.Equal(t, "moon", records[1].Topic)
}

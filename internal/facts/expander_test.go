package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTopic(t *testing.T) {
	e := NewExpander()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"red planet", "mars", true},
		{"Red Planet", "mars", true},
		{"the red planet adventure", "mars", true}, // 子串匹配
		{"dinosaur", "t-rex", true},
		{"elephant", "elephants", true},
		{"mars", "mars", true}, // 别名子串"martian"不命中，知识库直查命中
		{"quantum physics", "", false},
	}

	for _, tt := range tests {
		got, ok := e.ExpandTopic(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestInferCategory(t *testing.T) {
	e := NewExpander()

	category, ok := e.InferCategory("a rocket to the stars")
	require.True(t, ok)
	assert.Equal(t, "space", category)

	category, ok = e.InferCategory("prehistoric creatures")
	require.True(t, ok)
	assert.Equal(t, "dinosaurs", category)

	_, ok = e.InferCategory("cooking dinner")
	assert.False(t, ok)
}

func TestDetectTopics(t *testing.T) {
	e := NewExpander()

	// 规范主题直接出现
	assert.Equal(t, []string{"mars"}, e.DetectTopics("A story about Mars"))

	// 别名+类别关键词，去重后按检测顺序
	assert.Equal(t, []string{"mars", "planets"}, e.DetectTopics("a red planet adventure"))

	// 连字符主题的空格写法
	assert.Equal(t, []string{"t-rex"}, e.DetectTopics("a brave little t rex"))

	// 无主题
	assert.Empty(t, e.DetectTopics("a quiet bedtime cuddle"))
}

func TestResolveFactWithExpansion(t *testing.T) {
	e := NewExpander()

	res := e.ResolveFactWithExpansion("red planet")
	assert.Equal(t, "red planet", res.OriginalTopic)
	assert.Equal(t, "mars", res.UsedTopic)
	assert.True(t, res.Expanded)
	assert.Equal(t, "space", res.Category)
	assert.Contains(t, res.Fact, "Red Planet")
}

func TestResolveFactWithExpansionCategoryFallback(t *testing.T) {
	e := NewExpander()

	// 扩展不命中但类别关键词命中，退回该类别第一个主题
	res := e.ResolveFactWithExpansion("jurassic times")
	assert.False(t, res.Expanded)
	assert.True(t, res.CategoryInferred)
	assert.Equal(t, "dinosaurs", res.Category)
	assert.Equal(t, "t-rex", res.UsedTopic)
}

func TestResolveFactWithExpansionUnknown(t *testing.T) {
	e := NewExpander()

	res := e.ResolveFactWithExpansion("quantum physics")
	assert.False(t, res.Expanded)
	assert.False(t, res.CategoryInferred)
	assert.Equal(t, "quantum physics", res.UsedTopic)
	assert.Contains(t, res.Fact, "I don't have specific facts")
}

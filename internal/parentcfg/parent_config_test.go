package parentcfg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonaOf(t *testing.T) {
	p := PersonaOf("creative_dreamer")
	assert.Equal(t, float32(0.9), p.Temperature)
	assert.Equal(t, "mystical but not scary", p.Tone)

	// 未知key回退到默认人设
	p = PersonaOf("nonexistent")
	assert.Equal(t, "balanced_storyteller", p.Key)
	assert.Equal(t, float32(0.8), p.Temperature)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "balanced_storyteller", s.Persona)
	assert.Equal(t, []string{"kindness", "friendship"}, s.Values)
	assert.Empty(t, s.Interests)
}

func TestValuesPromptSelectionOrder(t *testing.T) {
	prompt := ValuesPrompt([]string{"courage", "kindness"})
	lines := strings.Split(prompt, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "brave")
	assert.Contains(t, lines[1], "kindness")

	assert.Empty(t, ValuesPrompt([]string{"unknown_value"}))
}

func TestBuildSystemInstructionNil(t *testing.T) {
	instruction := BuildSystemInstruction(nil)
	assert.Contains(t, instruction, "Storyteller Agent")
	assert.NotContains(t, instruction, "Story Style:")
}

func TestBuildSystemInstruction(t *testing.T) {
	s := &Settings{
		Persona:        "gentle_friend",
		Values:         []string{"empathy"},
		Interests:      []string{"music"},
		ChildName:      "Mia",
		CustomElements: "a talking teapot",
	}
	instruction := BuildSystemInstruction(s)

	assert.Contains(t, instruction, "Story Style: Gentle Friend")
	assert.Contains(t, instruction, "Tone: warm and caring")
	assert.Contains(t, instruction, "Values to emphasize:")
	assert.Contains(t, instruction, "empathy and compassion")
	assert.Contains(t, instruction, "Interests to include:")
	assert.Contains(t, instruction, "musical instruments")
	assert.Contains(t, instruction, "the name 'Mia'")
	assert.Contains(t, instruction, "Additional elements: a talking teapot")

	// 固定顺序：基础指令、人设、价值观、兴趣、角色名、自定义元素
	base := strings.Index(instruction, "Storyteller Agent")
	style := strings.Index(instruction, "Story Style:")
	values := strings.Index(instruction, "Values to emphasize:")
	interests := strings.Index(instruction, "Interests to include:")
	name := strings.Index(instruction, "the name 'Mia'")
	custom := strings.Index(instruction, "Additional elements:")
	assert.True(t, base < style && style < values && values < interests && interests < name && name < custom)
}

func TestSnapshot(t *testing.T) {
	var s *Settings
	assert.Nil(t, s.Snapshot())

	s = &Settings{Persona: "curious_learner", Values: []string{"honesty"}}
	snap := s.Snapshot()
	assert.Equal(t, "curious_learner", snap["persona"])
	assert.Equal(t, []string{"honesty"}, snap["values"])
}

// Package parentcfg 把家长友好的配置（人设、价值观、兴趣）映射为
// 技术参数和提示词片段。所有表都是有序切片，匹配按声明顺序。
package parentcfg

import (
	"fmt"
	"strings"
)

// Persona 故事风格人设及其技术映射
type Persona struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Temperature float32 `json:"temperature"`
	ArcType     string  `json:"arc_type"`
	Tone        string  `json:"tone"`
}

// Personas 可选人设表
var Personas = []Persona{
	{Key: "adventurous_explorer", Name: "Adventurous Explorer", Description: "Loves exciting journeys and discoveries", Temperature: 0.85, ArcType: "hero_journey", Tone: "exciting but safe"},
	{Key: "creative_dreamer", Name: "Creative Dreamer", Description: "Enjoys magical and imaginative stories", Temperature: 0.9, ArcType: "hero_journey", Tone: "mystical but not scary"},
	{Key: "gentle_friend", Name: "Gentle Friend", Description: "Prefers warm stories about friendship and kindness", Temperature: 0.75, ArcType: "three_act", Tone: "warm and caring"},
	{Key: "curious_learner", Name: "Curious Learner", Description: "Enjoys educational stories with lessons", Temperature: 0.7, ArcType: "three_act", Tone: "educational and fun"},
	{Key: "balanced_storyteller", Name: "Balanced Storyteller", Description: "A mix of adventure, friendship, and learning", Temperature: 0.8, ArcType: "hero_journey", Tone: "uplifting"},
}

// PromptOption 价值观/兴趣条目，附带提示词片段
type PromptOption struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PromptAddition string `json:"prompt_addition"`
}

// Values 可强调的价值观
var Values = []PromptOption{
	{Key: "kindness", Name: "Kindness", Description: "Emphasize acts of kindness and helping others", PromptAddition: "The story should emphasize kindness, helping others, and being considerate."},
	{Key: "friendship", Name: "Friendship", Description: "Focus on building and maintaining friendships", PromptAddition: "The story should highlight the importance of friendship, working together, and supporting each other."},
	{Key: "courage", Name: "Courage", Description: "Teach about being brave and facing challenges", PromptAddition: "The story should show characters being brave, facing fears, and overcoming challenges with courage."},
	{Key: "honesty", Name: "Honesty", Description: "Emphasize truthfulness and integrity", PromptAddition: "The story should teach the value of honesty, telling the truth, and being trustworthy."},
	{Key: "empathy", Name: "Empathy", Description: "Help understand others' feelings", PromptAddition: "The story should help children understand others' feelings and perspectives, showing empathy and compassion."},
	{Key: "perseverance", Name: "Perseverance", Description: "Teach about not giving up", PromptAddition: "The story should show characters not giving up, trying again, and persevering through difficulties."},
	{Key: "gratitude", Name: "Gratitude", Description: "Emphasize being thankful", PromptAddition: "The story should emphasize gratitude, being thankful for what we have, and appreciating others."},
}

// Interests 常见兴趣主题
var Interests = []PromptOption{
	{Key: "animals", Name: "Animals", Description: "Include animals as main characters or important elements", PromptAddition: "Include animals as main characters or important story elements. Make them friendly and relatable."},
	{Key: "space", Name: "Space & Planets", Description: "Incorporate space, stars, planets, or astronauts", PromptAddition: "Incorporate space themes like stars, planets, rockets, or friendly astronauts. Keep it age-appropriate and not scary."},
	{Key: "dinosaurs", Name: "Dinosaurs", Description: "Include friendly dinosaurs", PromptAddition: "Include friendly, non-scary dinosaurs as characters. They should be kind and approachable."},
	{Key: "princesses", Name: "Princesses & Royalty", Description: "Include princesses, castles, or royal themes", PromptAddition: "Include princesses, castles, or royal themes. Focus on kindness, leadership, and helping others rather than just being royal."},
	{Key: "superheroes", Name: "Superheroes", Description: "Include superhero themes with positive powers", PromptAddition: "Include superhero themes where characters use their powers (like kindness, helping, or friendship) to help others. No violence."},
	{Key: "nature", Name: "Nature & Outdoors", Description: "Focus on nature, forests, gardens, or outdoor adventures", PromptAddition: "Set the story in nature - forests, gardens, mountains, or outdoor settings. Include appreciation for nature."},
	{Key: "music", Name: "Music & Dance", Description: "Incorporate music, singing, or dancing", PromptAddition: "Incorporate music, singing, dancing, or musical instruments as important story elements."},
	{Key: "art", Name: "Art & Creativity", Description: "Include art, drawing, painting, or creative activities", PromptAddition: "Include art, drawing, painting, or creative activities as important story elements. Show how creativity helps solve problems."},
}

// Settings 家长选择的配置
type Settings struct {
	Persona        string   `json:"persona"`
	Values         []string `json:"values"`
	Interests      []string `json:"interests"`
	ChildName      string   `json:"child_name,omitempty"`
	CustomElements string   `json:"custom_elements,omitempty"`
}

// DefaultSettings 默认配置
func DefaultSettings() Settings {
	return Settings{
		Persona: "balanced_storyteller",
		Values:  []string{"kindness", "friendship"},
	}
}

// PersonaOf 按key查人设，未知key回退到balanced_storyteller
func PersonaOf(key string) Persona {
	for _, p := range Personas {
		if p.Key == key {
			return p
		}
	}
	return PersonaOf("balanced_storyteller")
}

// ValuesPrompt 拼接选中价值观的提示词片段
func ValuesPrompt(keys []string) string {
	return joinPrompts(Values, keys)
}

// InterestsPrompt 拼接选中兴趣的提示词片段
func InterestsPrompt(keys []string) string {
	return joinPrompts(Interests, keys)
}

func joinPrompts(options []PromptOption, keys []string) string {
	var parts []string
	for _, key := range keys {
		for _, opt := range options {
			if opt.Key == key {
				parts = append(parts, opt.PromptAddition)
				break
			}
		}
	}
	return strings.Join(parts, "\n")
}

const baseInstruction = `You are a creative and educational Storyteller Agent specialized in generating
age-appropriate bedtime stories (ages 5-10).

Your responsibilities:
1. Generate engaging, age-appropriate stories based on user requests
2. When real-world topics are mentioned (space, animals, dinosaurs, science), incorporate educational facts naturally
3. Weave educational facts seamlessly into the story narrative
4. Ensure stories are positive, safe, and appropriate for children
5. Use simple vocabulary and clear sentence structure suitable for ages 5-10
6. Create stories with clear beginning, middle, and end
7. Include positive messages and values`

// BuildSystemInstruction 按固定顺序拼装讲故事模型的系统指令：
// 基础指令、人设、价值观、兴趣、角色名、自定义元素。
func BuildSystemInstruction(s *Settings) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	if s == nil {
		return b.String()
	}

	persona := PersonaOf(s.Persona)
	b.WriteString(fmt.Sprintf("\n\nStory Style: %s - %s", persona.Name, persona.Description))
	b.WriteString(fmt.Sprintf("\nTone: %s", persona.Tone))

	if len(s.Values) > 0 {
		b.WriteString(fmt.Sprintf("\n\nValues to emphasize:\n%s", ValuesPrompt(s.Values)))
	}
	if len(s.Interests) > 0 {
		b.WriteString(fmt.Sprintf("\n\nInterests to include:\n%s", InterestsPrompt(s.Interests)))
	}
	if s.ChildName != "" {
		b.WriteString(fmt.Sprintf("\n\nConsider using the name '%s' for a character if appropriate.", s.ChildName))
	}
	if s.CustomElements != "" {
		b.WriteString(fmt.Sprintf("\n\nAdditional elements: %s", s.CustomElements))
	}

	return b.String()
}

// Snapshot 序列化为落库/返回用的快照
func (s *Settings) Snapshot() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"persona":         s.Persona,
		"values":          s.Values,
		"interests":       s.Interests,
		"child_name":      s.ChildName,
		"custom_elements": s.CustomElements,
	}
}

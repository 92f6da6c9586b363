package facts

import "strings"

// 主题别名表。声明顺序即匹配顺序，是行为契约的一部分：
// 改变顺序会悄悄改变检测结果，所以用有序切片而不是map。
type alias struct {
	Name      string
	Canonical string
}

var topicAliases = []alias{
	// space
	{"red planet", "mars"},
	{"martian", "mars"},
	{"lunar", "moon"},
	{"solar", "sun"},
	{"star", "stars"},
	{"planet", "planets"},
	{"jupiter", "planets"},
	{"saturn", "planets"},
	{"earth", "planets"},
	// dinosaurs
	{"tyrannosaurus", "t-rex"},
	{"tyrannosaurus rex", "t-rex"},
	{"triceratops", "triceratops"},
	{"brachiosaurus", "brachiosaurus"},
	{"stegosaurus", "stegosaurus"},
	{"dinosaur", "t-rex"}, // 默认映射到T-Rex
	{"dinos", "t-rex"},
	// animals
	{"elephant", "elephants"},
	{"whale", "whales"},
	{"penguin", "penguins"},
	{"lion", "lions"},
	{"dolphin", "dolphins"},
	// ocean
	{"coral reef", "coral"},
	{"shark", "sharks"},
	{"octopus", "octopus"},
}

// Resolution 一次带扩展的事实解析结果
type Resolution struct {
	OriginalTopic    string `json:"original_topic"`
	UsedTopic        string `json:"used_topic"`
	Category         string `json:"category,omitempty"`
	Fact             string `json:"fact"`
	Expanded         bool   `json:"expanded"`
	CategoryInferred bool   `json:"category_inferred"`
}

// Expander 把自由文本里的主题提法归一到知识库的规范主题
type Expander struct{}

func NewExpander() *Expander {
	return &Expander{}
}

// ExpandTopic 依次尝试：别名精确匹配、别名子串匹配、知识库直查。
// 第一个命中即返回，不在候选之间打分。
func (e *Expander) ExpandTopic(topic string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(topic))

	for _, a := range topicAliases {
		if a.Name == key {
			return a.Canonical, true
		}
	}

	for _, a := range topicAliases {
		if strings.Contains(key, a.Name) {
			return a.Canonical, true
		}
	}

	if _, ok := Lookup(key); ok {
		return key, true
	}

	return "", false
}

// InferCategory 按类别关键词推断主题所属类别，声明顺序优先
func (e *Expander) InferCategory(topic string) (string, bool) {
	key := strings.ToLower(topic)

	for _, c := range Catalog {
		for _, kw := range c.Keywords {
			if strings.Contains(key, kw) {
				return c.Name, true
			}
		}
	}

	return "", false
}

// DetectTopics 扫描文本，返回检测到的规范主题。
// 去重后按检测顺序返回，结果确定可测。
func (e *Expander) DetectTopics(text string) []string {
	lower := strings.ToLower(text)
	var detected []string
	seen := make(map[string]bool)
	add := func(topic string) {
		if !seen[topic] {
			seen[topic] = true
			detected = append(detected, topic)
		}
	}

	// 知识库主题直接出现（连字符可视作空格）
	for _, c := range Catalog {
		for _, f := range c.Facts {
			if strings.Contains(lower, f.Topic) || strings.Contains(lower, strings.ReplaceAll(f.Topic, "-", " ")) {
				add(f.Topic)
			}
		}
	}

	// 别名出现，映射到规范主题
	for _, a := range topicAliases {
		if strings.Contains(lower, a.Name) {
			add(a.Canonical)
		}
	}

	// 类别关键词出现，取该类别的第一个主题作为代表
	for _, c := range Catalog {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				if len(c.Facts) > 0 {
					add(c.Facts[0].Topic)
				}
				break
			}
		}
	}

	return detected
}

// ResolveFactWithExpansion 先扩展主题再取事实；扩展失败时退回
// 类别推断（取类别第一个主题），再不行就拿原始字符串直查——
// 直查大概率返回"没有该主题"的提示消息，这同样是有效结果。
func (e *Expander) ResolveFactWithExpansion(topic string) Resolution {
	res := Resolution{OriginalTopic: topic}

	expanded, ok := e.ExpandTopic(topic)
	category, inferred := e.InferCategory(topic)
	res.Category = category
	res.CategoryInferred = inferred
	res.Expanded = ok

	switch {
	case ok:
		res.UsedTopic = expanded
		res.Fact = FactText(expanded)
	case inferred:
		c, _ := CategoryByName(category)
		res.UsedTopic = c.Facts[0].Topic
		res.Fact = FactText(res.UsedTopic)
	default:
		res.UsedTopic = topic
		res.Fact = FactText(topic)
	}

	return res
}

package tools

import (
	"context"
	"encoding/json"
	"errors"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"storyweaver/internal/facts"
)

// FactToolName 注册给模型的工具名
const FactToolName = "get_educational_fact"

// FactTool 实现eino框架的教育事实查询工具，
// 供讲故事模型在生成过程中查询知识库。
type FactTool struct {
	expander *facts.Expander
}

// FactToolArgs 事实查询请求参数
type FactToolArgs struct {
	Topic string `json:"topic"` // 查询主题
}

// FactToolResp 事实查询响应
type FactToolResp struct {
	Topic            string `json:"topic"`    // 实际使用的主题
	OriginalTopic    string `json:"original_topic"`
	Category         string `json:"category,omitempty"`
	Fact             string `json:"fact"`     // 事实文本
	Expanded         bool   `json:"expanded"` // 是否经过别名扩展
	CategoryInferred bool   `json:"category_inferred"`
}

// NewFactTool 创建事实查询工具实例
func NewFactTool() *FactTool {
	return &FactTool{expander: facts.NewExpander()}
}

// Info 获取事实查询工具信息
func (t *FactTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"topic": {Type: schema.String, Required: true, Desc: "The topic to get an educational fact about (e.g., 'Mars', 'T-Rex', 'Elephants', 'Space', 'Dinosaurs')"},
	}
	return &schema.ToolInfo{
		Name:        FactToolName,
		Desc:        "Retrieves an educational fact about a given topic (e.g., Mars, T-Rex, Elephants, Space, Dinosaurs, Animals). Use this tool when the user mentions real-world topics to ground the story in accurate educational information.",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行事实查询。查不到主题时返回的提示消息
// 同样是有效结果，调用方不应视为失败。
func (t *FactTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args FactToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", err
	}

	if args.Topic == "" {
		return "", errors.New("topic required")
	}

	res := t.expander.ResolveFactWithExpansion(args.Topic)

	resp := FactToolResp{
		Topic:            res.UsedTopic,
		OriginalTopic:    res.OriginalTopic,
		Category:         res.Category,
		Fact:             res.Fact,
		Expanded:         res.Expanded,
		CategoryInferred: res.CategoryInferred,
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// 确保FactTool实现了einotool.InvokableTool接口
var _ einotool.InvokableTool = (*FactTool)(nil)

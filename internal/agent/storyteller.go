package agent

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
	"storyweaver/internal/parentcfg"
)

// 工具调用回馈的最大轮数，防止模型反复请求工具不出正文
const maxToolIterations = 3

// StorytellerConfig 讲故事模型的生成参数
type StorytellerConfig struct {
	Temperature float32
	MaxTokens   int
	Parent      *parentcfg.Settings
}

// Storyteller 主生成器。持有一个eino聊天模型和可选的事实工具，
// 任何下游失败都以 IsValid=false 的尝试结果返回，不向上抛错。
type Storyteller struct {
	model       einomodel.ToolCallingChatModel
	tools       []einotool.InvokableTool
	instruction string
	temperature float32
	maxTokens   int
	log         *logrus.Entry
}

// NewStoryteller 创建讲故事agent。tools可为空，传入时会声明给模型，
// 让模型在生成过程中自行查询教育事实。
func NewStoryteller(m einomodel.ToolCallingChatModel, cfg StorytellerConfig, tools ...einotool.InvokableTool) *Storyteller {
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = parentcfg.PersonaOf("").Temperature
		if cfg.Parent != nil {
			temperature = parentcfg.PersonaOf(cfg.Parent.Persona).Temperature
		}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	return &Storyteller{
		model:       m,
		tools:       tools,
		instruction: parentcfg.BuildSystemInstruction(cfg.Parent),
		temperature: temperature,
		maxTokens:   maxTokens,
		log:         logrus.WithField("agent", "storyteller"),
	}
}

// Generate 按请求生成故事。revisionContext非空时作为修改说明附加到请求后。
func (s *Storyteller) Generate(ctx context.Context, userRequest, revisionContext string) model.GenerationAttempt {
	prompt := userRequest
	if revisionContext != "" {
		prompt = fmt.Sprintf("%s\n\nRevision instructions: %s", userRequest, revisionContext)
	}

	messages := []*schema.Message{
		schema.SystemMessage(s.instruction),
		schema.UserMessage(prompt),
	}

	if len(s.tools) > 0 {
		if attempt, ok := s.generateWithTools(ctx, messages); ok {
			return attempt
		}
		// 工具链路出问题时静默降级为普通生成，不让整次尝试失败
		s.log.Warn("tool calling failed, using standard generation")
	}

	return s.generatePlain(ctx, messages)
}

func (s *Storyteller) generatePlain(ctx context.Context, messages []*schema.Message) model.GenerationAttempt {
	out, err := runModel(ctx, s.model, messages,
		einomodel.WithTemperature(s.temperature),
		einomodel.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		s.log.WithError(err).Warn("story generation failed")
		return model.GenerationAttempt{
			Story:   fmt.Sprintf("Error generating story: %v", err),
			IsValid: false,
			Err:     err.Error(),
		}
	}

	story := strings.TrimSpace(out.Content)
	if story == "" {
		return model.GenerationAttempt{Story: "", IsValid: false, Err: "empty response"}
	}
	return model.GenerationAttempt{Story: story, IsValid: true}
}

// generateWithTools 带工具声明生成，处理"模型请求工具→执行→结果回馈"循环。
// 第二个返回值为false表示工具机制本身出错，调用方应重试普通生成。
func (s *Storyteller) generateWithTools(ctx context.Context, messages []*schema.Message) (model.GenerationAttempt, bool) {
	infos := make([]*schema.ToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		info, err := t.Info(ctx)
		if err != nil {
			return model.GenerationAttempt{}, false
		}
		infos = append(infos, info)
	}

	toolModel, err := s.model.WithTools(infos)
	if err != nil {
		return model.GenerationAttempt{}, false
	}

	conv := messages
	for i := 0; i < maxToolIterations; i++ {
		out, err := runModel(ctx, toolModel, conv,
			einomodel.WithTemperature(s.temperature),
			einomodel.WithMaxTokens(s.maxTokens),
		)
		if err != nil {
			return model.GenerationAttempt{}, false
		}

		if len(out.ToolCalls) == 0 {
			story := strings.TrimSpace(out.Content)
			if story == "" {
				return model.GenerationAttempt{Story: "", IsValid: false, Err: "empty response"}, true
			}
			return model.GenerationAttempt{Story: story, IsValid: true}, true
		}

		conv = append(conv, out)
		for _, tc := range out.ToolCalls {
			result, err := s.runTool(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				result = fmt.Sprintf("Error: %v", err)
			}
			s.log.WithField("tool", tc.Function.Name).Info("executed tool call")
			conv = append(conv, schema.ToolMessage(result, tc.ID))
		}
	}

	// 轮数耗尽还在要工具，放弃工具路径
	return model.GenerationAttempt{}, false
}

func (s *Storyteller) runTool(ctx context.Context, name, arguments string) (string, error) {
	for _, t := range s.tools {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		if info.Name == name {
			return t.InvokableRun(ctx, arguments)
		}
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}

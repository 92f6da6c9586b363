package backup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/model"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
)

const fallbackInstruction = `You are a creative storyteller for children aged 5-10.
Generate an age-appropriate bedtime story based on the user's request.
Keep it positive, safe, and engaging with a clear beginning, middle, and end.
Use simple vocabulary suitable for young children.`

// OllamaBackup 本地Ollama兜底生成器。主模型不可用时顶上，
// 只做单轮直出，不带工具也不走评审循环。
type OllamaBackup struct {
	baseURL   string
	modelName string
	log       *logrus.Entry
}

// New 从环境变量创建兜底生成器。OLLAMA_BASE_URL和OLLAMA_MODEL
// 均有默认值，不设置也能工作。
func New() *OllamaBackup {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelName := os.Getenv("OLLAMA_MODEL")
	if modelName == "" {
		modelName = defaultModel
	}
	return &OllamaBackup{
		baseURL:   baseURL,
		modelName: modelName,
		log:       logrus.WithField("component", "ollama_backup"),
	}
}

// ModelName 兜底模型名，写进结果的model_used字段
func (b *OllamaBackup) ModelName() string {
	return b.modelName
}

// Available 探测本地Ollama服务是否在线
func (b *OllamaBackup) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		b.log.WithError(err).Debug("ollama not reachable")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Generate 用本地模型生成故事
func (b *OllamaBackup) Generate(ctx context.Context, userRequest string) model.GenerationAttempt {
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: b.baseURL,
		Timeout: 120 * time.Second,
		Model:   b.modelName,
	})
	if err != nil {
		b.log.WithError(err).Error("failed to create ollama chat model")
		return model.GenerationAttempt{
			IsValid: false,
			Err:     fmt.Sprintf("ollama model init failed: %v", err),
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(fallbackInstruction),
		schema.UserMessage(fmt.Sprintf("Generate a bedtime story based on this request: %s", userRequest)),
	}

	out, err := chatModel.Generate(ctx, messages,
		einomodel.WithTemperature(0.8),
		einomodel.WithMaxTokens(2000),
	)
	if err != nil {
		b.log.WithError(err).Error("local story generation failed")
		return model.GenerationAttempt{
			IsValid: false,
			Err:     fmt.Sprintf("local generation failed: %v", err),
		}
	}

	story := strings.TrimSpace(out.Content)
	if story == "" {
		return model.GenerationAttempt{IsValid: false, Err: "empty response from local model"}
	}

	b.log.WithField("model", b.modelName).Info("story generated with local model")
	return model.GenerationAttempt{Story: story, IsValid: true}
}

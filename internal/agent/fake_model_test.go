package agent

import (
	"context"
	"errors"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"storyweaver/internal/model"
)

// fakeChatModel 测试用聊天模型，按调用顺序逐个返回预设响应
type fakeChatModel struct {
	generate     func(ctx context.Context, input []*schema.Message) (*schema.Message, error)
	withToolsErr error
	calls        [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.calls = append(f.calls, input)
	return f.generate(ctx, input)
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeChatModel) WithTools(_ []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	if f.withToolsErr != nil {
		return nil, f.withToolsErr
	}
	return f, nil
}

// respondWith 每次调用依次弹出一个响应，耗尽后重复最后一个
func respondWith(responses ...*schema.Message) func(context.Context, []*schema.Message) (*schema.Message, error) {
	i := 0
	return func(context.Context, []*schema.Message) (*schema.Message, error) {
		resp := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return resp, nil
	}
}

func failWith(err error) func(context.Context, []*schema.Message) (*schema.Message, error) {
	return func(context.Context, []*schema.Message) (*schema.Message, error) {
		return nil, err
	}
}

// fakeFallback 测试用兜底生成器
type fakeFallback struct {
	attempt  model.GenerationAttempt
	requests []string
}

func (f *fakeFallback) Generate(_ context.Context, userRequest string) model.GenerationAttempt {
	f.requests = append(f.requests, userRequest)
	return f.attempt
}

func (f *fakeFallback) ModelName() string {
	return "local-test-model"
}

// lastUserContent 取最近一次模型调用里的用户消息内容
func (f *fakeChatModel) lastUserContent() string {
	if len(f.calls) == 0 {
		return ""
	}
	msgs := f.calls[len(f.calls)-1]
	for _, m := range msgs {
		if m.Role == schema.User {
			return m.Content
		}
	}
	return ""
}

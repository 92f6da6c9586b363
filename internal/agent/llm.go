package agent

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// runModel 通过eino compose图调用一次聊天模型
func runModel(ctx context.Context, m einomodel.BaseChatModel, messages []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("model", m); err != nil {
		return nil, fmt.Errorf("failed to add chat model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "model"); err != nil {
		return nil, fmt.Errorf("failed to add start edge: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("failed to add end edge: %w", err)
	}

	runner, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile graph: %w", err)
	}

	res, err := runner.Invoke(ctx, messages, compose.WithChatModelOption(opts...))
	if err != nil {
		return nil, fmt.Errorf("graph invocation failed: %w", err)
	}
	return res, nil
}

package observers

import (
	"context"
	"strings"

	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

const maxLoggedContent = 500

// newModelHandler logs the user message and the raw model output around each call.
func newModelHandler() *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ev := logx.Debug().Str("component", string(info.Component)).Str("name", info.Name)
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", clip(lastUserContent(input.Messages)))
			}
			ev.Msg("model start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			ev := logx.Debug().Str("component", string(info.Component)).Str("name", info.Name)
			if output != nil && output.Message != nil {
				ev = ev.Str("assistant", clip(strings.TrimSpace(output.Message.Content)))
			}
			if output != nil && output.TokenUsage != nil {
				ev = ev.Int("total_tokens", output.TokenUsage.TotalTokens)
			}
			ev.Msg("model end")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("component", string(info.Component)).Str("name", info.Name).Msg("model error")
			return ctx
		},
	}
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

func clip(s string) string {
	if len(s) <= maxLoggedContent {
		return s
	}
	return s[:maxLoggedContent] + "..."
}

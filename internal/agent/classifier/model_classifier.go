package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/observers"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/parsers"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/prompts"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const SourceModel = "model"

const (
	keySystemMessages = "system_messages"
	keyQuery          = "query"
)

// ModelClassifier asks a chat model for a delimited-tuple classification.
// The chain is prompt template -> chat model -> tuple parser.
type ModelClassifier struct {
	runnable  compose.Runnable[map[string]any, *model.Classification]
	modelName string
	timeout   time.Duration
}

func NewModelClassifier(ctx context.Context, cm einomodel.BaseChatModel, cfg model.ClassifierModelConfig) (*ModelClassifier, error) {
	c := &ModelClassifier{modelName: cfg.Model, timeout: cfg.Timeout}

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder(keySystemMessages, false),
		schema.UserMessage("{"+keyQuery+"}"),
	)

	chain := compose.NewChain[map[string]any, *model.Classification]()
	chain.
		AppendChatTemplate(tpl, compose.WithNodeName("ClassifierPrompt")).
		AppendChatModel(cm, compose.WithNodeName("ClassifierModel")).
		AppendLambda(compose.InvokableLambda(c.parse), compose.WithNodeName("ClassificationParser"))

	r, err := chain.Compile(ctx, compose.WithGraphName("IntentClassifier"))
	if err != nil {
		return nil, fmt.Errorf("compile classifier chain: %w", err)
	}
	c.runnable = r
	return c, nil
}

func (c *ModelClassifier) parse(ctx context.Context, out *schema.Message) (*model.Classification, error) {
	if out == nil {
		return nil, fmt.Errorf("empty model output")
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(c.modelName))
		logx.Debug().
			Str("model", c.modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}
	return parsers.ParseClassification(out.Content)
}

// Classify never fails; any error in the chain yields a degraded result.
func (c *ModelClassifier) Classify(ctx context.Context, capabilities []model.Capability, text string) (res model.Classification) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "model_classifier").Msgf("panic recovered: %v", r)
			res = degraded(SourceModel, fmt.Sprintf("panic: %v", r))
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.runnable.Invoke(ctx, map[string]any{
		keySystemMessages: []*schema.Message{schema.SystemMessage(prompts.RenderClassifierSystem(capabilities))},
		keyQuery:          text,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Warn().Err(err).Str("model", c.modelName).Msg("classifier degraded")
		return degraded(SourceModel, err.Error())
	}
	if out == nil {
		return degraded(SourceModel, "nil classification")
	}

	out.Source = SourceModel
	logx.Debug().
		Str("intent", string(out.Intent)).
		Float64("confidence", out.Confidence).
		Int("items", len(out.Items)).
		Strs("notes", out.Notes).
		Msg("message classified")
	return *out
}

func degraded(source, note string) model.Classification {
	return model.Classification{
		Intent:   model.IntentUnclear,
		Degraded: true,
		Source:   source,
		Notes:    []string{note},
	}
}

var _ model.Classifier = (*ModelClassifier)(nil)

package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	content   string
	err       error
	panicMsg  string
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.lastInput = input
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: f.content,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150},
		},
	}, nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func newModelClassifier(t *testing.T, cm *fakeChatModel) *ModelClassifier {
	t.Helper()
	c, err := NewModelClassifier(context.Background(), cm, model.ClassifierModelConfig{Model: "gemini-2.5-flash-lite"})
	require.NoError(t, err)
	return c
}

func TestModelClassifierParsesTuples(t *testing.T) {
	cm := &fakeChatModel{content: "(intent<||>purchase<||>0.92)##(item<||>Dune<||>2)##(item<||>Neuromancer<||>1)<|COMPLETE|>"}
	c := newModelClassifier(t, cm)

	got := c.Classify(context.Background(), model.DefaultCapabilities, "buy Dune x2 and Neuromancer")
	assert.False(t, got.Degraded)
	assert.Equal(t, model.IntentPurchase, got.Intent)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	assert.Equal(t, SourceModel, got.Source)
	assert.Equal(t, []model.LineItem{{Title: "Dune", Quantity: 2}, {Title: "Neuromancer", Quantity: 1}}, got.Items)

	require.Len(t, cm.lastInput, 2)
	assert.Equal(t, schema.System, cm.lastInput[0].Role)
	assert.Contains(t, cm.lastInput[0].Content, `command "buy credits"`)
	assert.Equal(t, schema.User, cm.lastInput[1].Role)
	assert.Equal(t, "buy Dune x2 and Neuromancer", cm.lastInput[1].Content)
}

func TestModelClassifierDegrades(t *testing.T) {
	tests := []struct {
		name string
		cm   *fakeChatModel
	}{
		{"model error", &fakeChatModel{err: errors.New("quota exceeded")}},
		{"malformed output", &fakeChatModel{content: `{"intent": "search"}`}},
		{"unknown intent", &fakeChatModel{content: "(intent<||>refund<||>0.9)"}},
		{"model panic", &fakeChatModel{panicMsg: "boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newModelClassifier(t, tt.cm).Classify(context.Background(), model.DefaultCapabilities, "hello")
			assert.True(t, got.Degraded)
			assert.Equal(t, model.IntentUnclear, got.Intent)
			assert.False(t, got.Usable(0))
			assert.NotEmpty(t, got.Notes)
		})
	}
}

func TestRuleClassifier(t *testing.T) {
	tests := []struct {
		in     string
		intent model.IntentName
		amount int
		items  []model.LineItem
		term   string
	}{
		{in: "add 50 credits", intent: model.IntentAddCredits, amount: 50},
		{in: "I need more credits", intent: model.IntentAddCredits},
		{in: "buy Dune, 2 copies", intent: model.IntentPurchase, items: []model.LineItem{{Title: "Dune", Quantity: 2}}},
		{in: "I want to purchase Dune: 1, Foundation: 2", intent: model.IntentPurchase,
			items: []model.LineItem{{Title: "Dune", Quantity: 1}, {Title: "Foundation", Quantity: 2}}},
		{in: "purchase", intent: model.IntentPurchase},
		{in: "hello there", intent: model.IntentHelp},
		{in: "What can you do?", intent: model.IntentHelp},
		{in: "books by Frank Herbert", intent: model.IntentSearch, term: "Frank Herbert"},
		{in: "Neuromancer", intent: model.IntentSearch, term: "Neuromancer"},
		{in: "   ", intent: model.IntentUnclear},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RuleClassifier{}.Classify(context.Background(), model.DefaultCapabilities, tt.in)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.items, got.Items)
			assert.Equal(t, tt.term, got.SearchTerm)
			assert.Equal(t, SourceRules, got.Source)
			assert.False(t, got.Degraded)
		})
	}
}

type stubClassifier struct {
	res   model.Classification
	calls int
}

func (s *stubClassifier) Classify(context.Context, []model.Capability, string) model.Classification {
	s.calls++
	return s.res
}

func TestFallback(t *testing.T) {
	secondary := model.Classification{Intent: model.IntentSearch, Confidence: 0.6, Source: SourceRules, SearchTerm: "dune"}

	tests := []struct {
		name          string
		primary       model.Classification
		wantSource    string
		wantSecondary int
	}{
		{"confident primary", model.Classification{Intent: model.IntentHelp, Confidence: 0.9, Source: SourceModel}, SourceModel, 0},
		{"low confidence", model.Classification{Intent: model.IntentHelp, Confidence: 0.2, Source: SourceModel}, SourceRules, 1},
		{"unclear", model.Classification{Intent: model.IntentUnclear, Confidence: 0.99, Source: SourceModel}, SourceRules, 1},
		{"degraded", model.Classification{Intent: model.IntentUnclear, Degraded: true, Source: SourceModel, Notes: []string{"timeout"}}, SourceRules, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubClassifier{res: tt.primary}
			s := &stubClassifier{res: secondary}
			got := Fallback{Primary: p, Secondary: s, MinConfidence: 0.5}.Classify(context.Background(), nil, "dune")
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, 1, p.calls)
			assert.Equal(t, tt.wantSecondary, s.calls)
		})
	}
}

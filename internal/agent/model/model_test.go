package model

import (
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000},
		ResolvePricing("gemini-2.5-flash-lite"))
	assert.InDelta(t, 0.10, in, 1e-9)
	assert.InDelta(t, 0.20, out, 1e-9)
	assert.InDelta(t, 0.30, total, 1e-9)

	_, _, total = ComputeCost(nil, ResolvePricing("gemini-2.5-flash"))
	assert.Zero(t, total)
	_, _, total = ComputeCost(&schema.TokenUsage{PromptTokens: 10}, ResolvePricing("unknown"))
	assert.Zero(t, total)
}

func TestSessionCloneIsDeep(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{UserID: 1, State: StateInitial}
	s.Append(RoleUser, "help", at)

	c := s.Clone()
	c.Append(RoleAssistant, "menu", at.Add(time.Second))
	c.Turns[0].Content = "changed"

	assert.Len(t, s.Turns, 1)
	assert.Equal(t, "help", s.Turns[0].Content)
	assert.Equal(t, at, s.LastActivity)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestSessionExpired(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{LastActivity: at}
	assert.False(t, s.Expired(at.Add(30*time.Minute), 30*time.Minute))
	assert.True(t, s.Expired(at.Add(30*time.Minute+time.Second), 30*time.Minute))
	assert.False(t, s.Expired(at.Add(24*time.Hour), 0))
}

func TestClassificationUsable(t *testing.T) {
	assert.True(t, Classification{Intent: IntentSearch, Confidence: 0.7}.Usable(0.5))
	assert.False(t, Classification{Intent: IntentSearch, Confidence: 0.4}.Usable(0.5))
	assert.False(t, Classification{Intent: IntentUnclear, Confidence: 1}.Usable(0.5))
	assert.False(t, Classification{Intent: IntentHelp, Confidence: 1, Degraded: true}.Usable(0.5))
}

func TestSearchResultTruncated(t *testing.T) {
	assert.Equal(t, 2, SearchResult{Books: make([]Book, 10), Total: 12}.Truncated())
}

package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
)

func TestParseClassificationPurchase(t *testing.T) {
	content := "(intent<||>purchase<||>0.92)##\n" +
		"(item<||>Dune<||>2)##\n" +
		"(item<||>Foundation<||>1)##\n" +
		"(response<||>Adding Dune and Foundation to your order.)\n" +
		"<|COMPLETE|>"

	got, err := ParseClassification(content)
	require.NoError(t, err)
	assert.Equal(t, model.IntentPurchase, got.Intent)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	assert.Equal(t, []model.LineItem{{Title: "Dune", Quantity: 2}, {Title: "Foundation", Quantity: 1}}, got.Items)
	assert.Equal(t, "Adding Dune and Foundation to your order.", got.ResponseText)
	assert.Empty(t, got.Notes)
}

func TestParseClassificationKeepsHighestConfidenceIntent(t *testing.T) {
	got, err := ParseClassification("(intent<||>search<||>0.4)##(intent<||>add_credits<||>0.8)##(amount<||>50)##(intent<||>help<||>0.1)")
	require.NoError(t, err)
	assert.Equal(t, model.IntentAddCredits, got.Intent)
	assert.Equal(t, 50, got.Amount)
}

func TestParseClassificationSkipsBadRecords(t *testing.T) {
	content := "(intent<||>search<||>0.7)##" +
		"(search<||>Frank Herbert)##" +
		"(item<||>Dune<||>zero)##" +
		"(amount<||>-3)##" +
		"garbage##" +
		"(mystery<||>x)"

	got, err := ParseClassification(content)
	require.NoError(t, err)
	assert.Equal(t, model.IntentSearch, got.Intent)
	assert.Equal(t, "Frank Herbert", got.SearchTerm)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.Amount)
	assert.Len(t, got.Notes, 4)
}

func TestParseClassificationRejectsMissingIntent(t *testing.T) {
	tests := []string{
		"",
		"I think the user wants to buy Dune",
		`{"intent": "purchase"}`,
		"(intent<||>teleport<||>0.9)",
		"(intent<||>purchase<||>1.7)",
	}
	for _, content := range tests {
		t.Run(content, func(t *testing.T) {
			got, err := ParseClassification(content)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, errx.CodeClassifierFailure, errx.CodeOf(err))
		})
	}
}

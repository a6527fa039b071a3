package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/parsers"
)

const SourceRules = "rules"

var (
	creditWord   = regexp.MustCompile(`(?i)\bcredits?\b`)
	anyNumber    = regexp.MustCompile(`\d+`)
	purchaseWord = regexp.MustCompile(`(?i)\b(?:buy|purchase)\b`)
	helpWord     = regexp.MustCompile(`(?i)^\s*(?:help|hi|hello|hey|commands|menu)\b|\bwhat can you do\b`)
)

// RuleClassifier routes by keywords. It is deterministic and never degraded,
// but only recognises the phrasings listed here.
type RuleClassifier struct{}

func (RuleClassifier) Classify(_ context.Context, _ []model.Capability, text string) model.Classification {
	text = strings.TrimSpace(text)
	c := model.Classification{Intent: model.IntentUnclear, Source: SourceRules}
	if text == "" {
		return c
	}

	switch {
	case creditWord.MatchString(text):
		c.Intent = model.IntentAddCredits
		c.Confidence = 1
		if anyNumber.MatchString(text) {
			if n, ok := parsers.ParseCreditAmount(text); ok {
				c.Amount = n
			}
		}
	case purchaseWord.MatchString(text):
		c.Intent = model.IntentPurchase
		c.Confidence = 1
		if rest := parsers.StripPurchaseVerb(text); rest != "" {
			c.Items = parsers.ParseMulti(rest)
		}
	case helpWord.MatchString(text):
		c.Intent = model.IntentHelp
		c.Confidence = 1
	default:
		if term := parsers.CleanSearchTerm(text); term != "" {
			c.Intent = model.IntentSearch
			c.Confidence = 0.6
			c.SearchTerm = term
		}
	}
	return c
}

var _ model.Classifier = RuleClassifier{}

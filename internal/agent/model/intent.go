package model

import "context"

type IntentName string

const (
	IntentSearch     IntentName = "search"
	IntentPurchase   IntentName = "purchase"
	IntentAddCredits IntentName = "add_credits"
	IntentHelp       IntentName = "help"
	IntentUnclear    IntentName = "unclear"
)

// Capability describes one thing the assistant can do; the catalog of
// capabilities is handed to the classifier with each request.
type Capability struct {
	Intent      IntentName
	Command     string
	Description string
}

// DefaultCapabilities is the catalog offered to users and to the classifier.
var DefaultCapabilities = []Capability{
	{Intent: IntentSearch, Command: "query", Description: "Search the catalog by title or author"},
	{Intent: IntentPurchase, Command: "buy", Description: "Purchase one or more books, e.g. 'Dune, 2 copies'"},
	{Intent: IntentAddCredits, Command: "buy credits", Description: "Add credits to the account balance"},
	{Intent: IntentHelp, Command: "help", Description: "List what the assistant can do"},
}

// Classification is the structured reading of a free-text message.
// Degraded marks output that could not be obtained or trusted; callers treat
// it exactly like IntentUnclear.
type Classification struct {
	Intent       IntentName
	Confidence   float64
	Items        []LineItem
	Amount       int
	SearchTerm   string
	ResponseText string
	Degraded     bool
	Source       string
	Notes        []string
}

// Usable reports whether the classification can drive routing at minConfidence.
func (c Classification) Usable(minConfidence float64) bool {
	return !c.Degraded && c.Intent != IntentUnclear && c.Intent != "" && c.Confidence >= minConfidence
}

// Classifier maps free text onto an intent. Implementations never return an
// error; failures come back as a Degraded classification.
type Classifier interface {
	Classify(ctx context.Context, capabilities []Capability, text string) Classification
}

package parsers

import (
	"regexp"
	"strings"
)

// Command is an exact top-level command typed at the initial state.
type Command string

const (
	CommandNone       Command = ""
	CommandQuery      Command = "query"
	CommandBuy        Command = "buy"
	CommandBuyCredits Command = "buy credits"
	CommandHelp       Command = "help"
	CommandCancel     Command = "cancel"
)

var exactCommands = map[string]Command{
	"query":       CommandQuery,
	"buy":         CommandBuy,
	"buy credits": CommandBuyCredits,
	"help":        CommandHelp,
	"cancel":      CommandCancel,
}

var (
	purchaseVerb = regexp.MustCompile(`(?i)^\s*(?:(?:i(?:\s+(?:want|would\s+like|need)|'d\s+like)\s+to|please|can\s+i|could\s+i|let\s+me)\s+)?(?:buy|purchase|order)\b[\s:,-]*`)
	searchVerb   = regexp.MustCompile(`(?i)^\s*(?:please\b|(?:search|look)\b(?:\s+for\b)?|find\b(?:\s+me\b)?|query\b|show\s+me\b|do\s+you\s+have\b|books?\s+(?:by|from|about|called|titled)\b)\s*`)
)

// ParseCommand normalises text and reports the exact command it spells, if any.
func ParseCommand(text string) Command {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	norm = strings.TrimRight(norm, ".!")
	return exactCommands[norm]
}

// StripPurchaseVerb removes a leading "buy"/"I want to purchase"-style phrase
// so the remainder can go through ParseMulti.
func StripPurchaseVerb(text string) string {
	return strings.TrimSpace(purchaseVerb.ReplaceAllString(text, ""))
}

// CleanSearchTerm removes leading search phrasing ("find me books by") and
// trailing punctuation, leaving the substring to look up.
func CleanSearchTerm(text string) string {
	term := strings.TrimSpace(text)
	for {
		next := searchVerb.ReplaceAllString(term, "")
		if next == term {
			break
		}
		term = next
	}
	term = strings.Join(strings.Fields(term), " ")
	return strings.Trim(term, " ?!.\"'")
}

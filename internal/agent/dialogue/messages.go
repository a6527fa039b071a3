package dialogue

import (
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
)

const (
	promptSearch   = "Great! What book are you looking for? You can search by title or author."
	promptPurchase = "Which books would you like to buy? Tell me the title and quantity, e.g. 'Dune, 2 copies' or 'Dune: 2, Foundation: 1'."
	promptCredits  = "How many credits would you like to add to your account?"

	repromptSearch   = "Please type a title or author to search for, or type cancel."
	repromptPurchase = "I couldn't tell which book you want. Please enter a title and quantity, e.g. 'Dune, 2 copies', or type cancel."
	repromptCredits  = "Please specify how many credits you want to add, e.g. '50' or '50 credits', or type cancel."

	msgCancelled       = "Cancelled. What would you like to do next?"
	msgNothingToCancel = "There is nothing to cancel."
	msgInternal        = "Sorry, something went wrong on our side. Please try again."
	msgUnavailable     = "Sorry, the store is temporarily unavailable. Please try the same message again in a moment."

	nextSteps = "You can search again with query, buy books with buy, or add credits with buy credits."
)

func commandList(capabilities []model.Capability, unitPrice int) string {
	var b strings.Builder
	for _, c := range capabilities {
		fmt.Fprintf(&b, "• %s - %s", c.Command, c.Description)
		if c.Intent == model.IntentPurchase {
			fmt.Fprintf(&b, " (%d credits per copy)", unitPrice)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func helpText(capabilities []model.Capability, unitPrice int) string {
	return "I can help you with these commands:\n" +
		commandList(capabilities, unitPrice) +
		"\n\nYou can also just tell me what you need, like \"buy Dune, 2 copies\" or \"find books by Frank Herbert\"."
}

func welcomeText(name string, capabilities []model.Capability, unitPrice int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s! Welcome to the bookstore assistant.\n\n", name) +
		"I can help you search for books, make purchases and manage your credits. " +
		"Just tell me what you need in natural language, or use one of these commands:\n" +
		commandList(capabilities, unitPrice) +
		"\n\nWhat can I help you with today?"
}

func authorOf(b model.Book) string {
	if b.Author == "" {
		return "Unknown Author"
	}
	return b.Author
}

func searchText(res model.SearchResult, unitPrice int) string {
	switch len(res.Books) {
	case 0:
		return fmt.Sprintf("I couldn't find any books matching '%s'. Try different keywords, check the spelling, "+
			"or search by author name.\n\n%s", res.Query, nextSteps)
	case 1:
		if res.Total == 1 {
			b := res.Books[0]
			return fmt.Sprintf("Found: %s by %s\n• Copies available: %d\n• Price: %d credits per copy\n\n"+
				"Type buy to purchase it, or search again with query.", b.Title, authorOf(b), b.Quantity, unitPrice)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d books matching '%s':\n", res.Total, res.Query)
	for i, b := range res.Books {
		fmt.Fprintf(&sb, "%d. %s by %s (%d available)\n", i+1, b.Title, authorOf(b), b.Quantity)
	}
	if n := res.Truncated(); n > 0 {
		fmt.Fprintf(&sb, "... and %d more\n", n)
	}
	fmt.Fprintf(&sb, "\nAll books cost %d credits per copy. Search more specifically to narrow it down, or type buy to purchase.", unitPrice)
	return sb.String()
}

func purchaseText(res model.PurchaseResult) string {
	if !res.Success {
		return fmt.Sprintf("Purchase failed: %s\n\n%s", res.Err.Message, nextSteps)
	}

	var sb strings.Builder
	sb.WriteString("Purchase successful!\n")
	for _, l := range res.Lines {
		fmt.Fprintf(&sb, "• %s x%d = %d credits", l.Title, l.Quantity, l.Cost)
		if l.Restocked {
			sb.WriteString(" (sold out, restocked)")
		} else {
			fmt.Fprintf(&sb, " (%d left)", l.RemainingStock)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total: %d %s for %d credits\n", res.TotalQuantity, plural(res.TotalQuantity, "copy", "copies"), res.TotalCost)
	fmt.Fprintf(&sb, "Remaining credits: %d\n\nThank you for your purchase! %s", res.RemainingBalance, nextSteps)
	return sb.String()
}

func creditText(res model.CreditResult) string {
	if !res.Success {
		return fmt.Sprintf("Credit purchase failed: %s\n\n%s", res.Err.Message, nextSteps)
	}
	return fmt.Sprintf("Credits added: %d\nNew balance: %d credits\n\n%s", res.Added, res.NewBalance, nextSteps)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
)

// minTitleLen is the shortest title the parser will hand to the catalog.
const minTitleLen = 2

// Quantity cues, tried in order; the first match wins and is cut out of the title.
var quantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:copies|copy|books|book)\b`),
	regexp.MustCompile(`(?i)quantity\s*:?\s*(\d+)`),
	regexp.MustCompile(`(?i),\s*(\d+)(?:\s*(?:copies|copy|books|book)\b)?`),
	regexp.MustCompile(`:\s*(\d+)`),
	regexp.MustCompile(`(?:^|\s)(\d+)\s*$`),
}

var (
	andSeparator   = regexp.MustCompile(`(?i) and `)
	colonGroup     = regexp.MustCompile(`([^:,;&]+?)\s*:\s*(\d+)`)
	titleAndNumber = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)(?:\s*(?:copies|copy|books|book))?$`)
	bareQuantity   = regexp.MustCompile(`(?i)^(\d+)\s*(?:copies|copy|books|book)$`)
	firstInteger   = regexp.MustCompile(`\d+`)
)

// quantityLabels are colon-group "titles" that are really field names.
var quantityLabels = map[string]bool{"quantity": true, "qty": true, "copies": true}

// ParseSingle extracts one (title, quantity) pair. Without a quantity cue the
// quantity is 1. When stripping the cue leaves no usable title, the whole
// input becomes the title with quantity 1.
func ParseSingle(text string) model.LineItem {
	original := strings.TrimSpace(text)

	quantity := 1
	title := original
	for _, re := range quantityPatterns {
		loc := re.FindStringSubmatchIndex(original)
		if loc == nil {
			continue
		}
		quantity = atoiOrZero(original[loc[2]:loc[3]])
		title = original[:loc[0]] + " " + original[loc[1]:]
		break
	}

	title = cleanTitle(title)
	if len([]rune(title)) < minTitleLen {
		return model.LineItem{Title: original, Quantity: 1}
	}
	return model.LineItem{Title: title, Quantity: quantity}
}

// ParseMulti extracts every line item from an order message.
//
// Precedence: explicit separators (";", " and ", " & ", first present wins),
// then "title: n" groups, then comma segments that all read "title n". A
// comma segment that is only "n copies" means the whole message is one item.
// Anything else is parsed as a single item.
func ParseMulti(text string) []model.LineItem {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if segments, ok := splitOnSeparator(text); ok {
		items := make([]model.LineItem, 0, len(segments))
		for _, seg := range segments {
			item := ParseSingle(seg)
			if item.Title == "" || item.Quantity <= 0 {
				continue
			}
			items = append(items, item)
		}
		return items
	}

	if items := parseColonGroups(text); len(items) > 0 {
		return items
	}

	if items, ok := parseCommaSegments(text); ok {
		return items
	}

	return single(text)
}

// ParseCreditAmount returns the first integer in text. Zero, negative or
// unparseable amounts report ok=false.
func ParseCreditAmount(text string) (int, bool) {
	m := firstInteger.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return 0, false
	}
	if start := strings.Index(text, m); start > 0 && text[start-1] == '-' {
		return 0, false
	}
	return n, true
}

func single(text string) []model.LineItem {
	item := ParseSingle(text)
	if item.Title == "" {
		return nil
	}
	return []model.LineItem{item}
}

func splitOnSeparator(text string) ([]string, bool) {
	switch {
	case strings.Contains(text, ";"):
		return strings.Split(text, ";"), true
	case andSeparator.MatchString(text):
		return andSeparator.Split(text, -1), true
	case strings.Contains(text, " & "):
		return strings.Split(text, " & "), true
	}
	return nil, false
}

func parseColonGroups(text string) []model.LineItem {
	var items []model.LineItem
	for _, m := range colonGroup.FindAllStringSubmatch(text, -1) {
		title := cleanTitle(m[1])
		if len([]rune(title)) < minTitleLen || quantityLabels[strings.ToLower(title)] {
			continue
		}
		qty := atoiOrZero(m[2])
		if qty <= 0 {
			continue
		}
		items = append(items, model.LineItem{Title: title, Quantity: qty})
	}
	return items
}

// parseCommaSegments commits to a multi-item reading only when every segment
// agrees; ok=false sends the caller to the single-item reading.
func parseCommaSegments(text string) ([]model.LineItem, bool) {
	segments := strings.Split(text, ",")
	items := make([]model.LineItem, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if bareQuantity.MatchString(seg) {
			return nil, false
		}
		m := titleAndNumber.FindStringSubmatch(seg)
		if m == nil {
			return nil, false
		}
		title := cleanTitle(m[1])
		qty := atoiOrZero(m[2])
		if title == "" || qty <= 0 {
			return nil, false
		}
		items = append(items, model.LineItem{Title: title, Quantity: qty})
	}
	return items, len(items) > 0
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " \t,;:.-&\"'")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

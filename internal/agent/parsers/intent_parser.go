package parsers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

const (
	RecordDelimiter     = "##"
	TupleDelimiter      = "<||>"
	CompletionDelimiter = "<|COMPLETE|>"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 32 * 1024
	maxRecords    = 64
	maxTupleLen   = 4 * 1024
	maxItems      = 20
	maxErrSnippet = 200
)

var knownIntents = map[model.IntentName]bool{
	model.IntentSearch:     true,
	model.IntentPurchase:   true,
	model.IntentAddCredits: true,
	model.IntentHelp:       true,
	model.IntentUnclear:    true,
}

type rawTuple struct {
	Type  string
	Parts []string
}

func parseRawTuple(s string) (*rawTuple, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tuple")
	}
	if len(s) > maxTupleLen {
		return nil, fmt.Errorf("tuple too large")
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("invalid tuple parens")
	}
	inner := s[1 : len(s)-1]
	// at most 4 segments so free text in the last field may contain delimiters
	parts := strings.SplitN(inner, TupleDelimiter, 4)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid tuple parts")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &rawTuple{Type: strings.ToLower(parts[0]), Parts: parts}, nil
}

func parseFloatInRange(s, name string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s invalid number", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s out of range", name)
	}
	return v, nil
}

func parsePositiveInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s parse: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return n, nil
}

// ParseClassification decodes the classifier's delimited tuple output:
//
//	(intent<||>purchase<||>0.92)##(item<||>Dune<||>2)##(response<||>...)<|COMPLETE|>
//
// Individual bad records are skipped and noted. Output without a usable
// intent record is rejected with CLASSIFIER_FAILURE.
func ParseClassification(content string) (resp *model.Classification, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			err = errx.New(errx.CodeClassifierFailure, fmt.Errorf("intent parser panic"), errx.SystemErrorMessage)
			resp = nil
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "intent_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if idx := strings.Index(content, CompletionDelimiter); idx >= 0 {
		content = content[:idx]
	}

	resp = &model.Classification{Intent: model.IntentUnclear}
	addNote := func(msg string) {
		resp.Notes = append(resp.Notes, msg)
	}

	sawIntent := false
	processed := 0
	for _, rec := range strings.Split(content, RecordDelimiter) {
		if processed >= maxRecords {
			addNote("records capped")
			break
		}
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		processed++

		rt, rerr := parseRawTuple(rec)
		if rerr != nil {
			addNote(fmt.Sprintf("bad_record: %s", safeSnippet(rec)))
			continue
		}

		switch rt.Type {
		case "intent":
			if len(rt.Parts) < 3 {
				addNote("intent: insufficient parts")
				continue
			}
			name := model.IntentName(strings.ToLower(rt.Parts[1]))
			if !knownIntents[name] {
				addNote(fmt.Sprintf("intent: unknown name %q", safeSnippet(rt.Parts[1])))
				continue
			}
			conf, err := parseFloatInRange(rt.Parts[2], "intent.confidence", 0, 1)
			if err != nil {
				addNote("intent: invalid confidence")
				continue
			}
			if sawIntent && conf <= resp.Confidence {
				continue
			}
			resp.Intent = name
			resp.Confidence = conf
			sawIntent = true

		case "item":
			if len(rt.Parts) < 3 {
				addNote("item: insufficient parts")
				continue
			}
			title := rt.Parts[1]
			if !utf8.ValidString(title) || title == "" {
				addNote("item: invalid title")
				continue
			}
			qty, err := parsePositiveInt(rt.Parts[2], "item.quantity")
			if err != nil {
				addNote("item: invalid quantity")
				continue
			}
			if len(resp.Items) >= maxItems {
				addNote("item: too many items")
				continue
			}
			resp.Items = append(resp.Items, model.LineItem{Title: title, Quantity: qty})

		case "amount":
			n, err := parsePositiveInt(rt.Parts[1], "amount")
			if err != nil {
				addNote("amount: invalid value")
				continue
			}
			resp.Amount = n

		case "search":
			term := rt.Parts[1]
			if !utf8.ValidString(term) || term == "" {
				addNote("search: invalid term")
				continue
			}
			resp.SearchTerm = term

		case "response":
			text := strings.Join(rt.Parts[1:], TupleDelimiter)
			if !utf8.ValidString(text) {
				addNote("response: invalid utf8")
				continue
			}
			resp.ResponseText = text

		default:
			addNote("unknown tuple type")
		}
	}

	if !sawIntent {
		return nil, errx.New(errx.CodeClassifierFailure, fmt.Errorf("no intent record in %q", safeSnippet(content)), "unparseable classifier output")
	}
	return resp, nil
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}

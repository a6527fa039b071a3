package dialogue

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/commerce"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/parsers"
	"github.com/Chative-core-poc-v1/bookstore/internal/agent/session"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/google/uuid"
)

// Detail carries the structured outcome of the operation a turn performed.
type Detail struct {
	Search   *model.SearchResult   `json:"search,omitempty"`
	Purchase *model.PurchaseResult `json:"purchase,omitempty"`
	Credits  *model.CreditResult   `json:"credits,omitempty"`
}

// TurnResult is everything a caller gets back for one inbound message.
type TurnResult struct {
	TurnID      string       `json:"turn_id"`
	Response    string       `json:"response"`
	State       model.State  `json:"state"`
	Transaction *Detail      `json:"transaction,omitempty"`
	Turns       []model.Turn `json:"turns"`
	ErrorCode   errx.Code    `json:"error_code,omitempty"`
}

// input is the payload handed to a state handler. Fields other than text are
// set when the turn was already classified before re-dispatch.
type input struct {
	text   string
	items  []model.LineItem
	amount int
	term   string
}

type reply struct {
	next   model.State
	text   string
	detail *Detail
	code   errx.Code
}

type handler func(ctx context.Context, sess *model.Session, in input) reply

// Router is the single entry point for conversation turns.
type Router struct {
	sessions     *session.Manager
	engine       *commerce.Engine
	catalog      *commerce.Catalog
	classifier   model.Classifier
	capabilities []model.Capability
	handlers     map[model.State]handler
}

func NewRouter(sessions *session.Manager, engine *commerce.Engine, catalog *commerce.Catalog, classifier model.Classifier) *Router {
	r := &Router{
		sessions:     sessions,
		engine:       engine,
		catalog:      catalog,
		classifier:   classifier,
		capabilities: model.DefaultCapabilities,
	}
	r.handlers = map[model.State]handler{
		model.StateInitial:                 r.handleInitial,
		model.StateAwaitingSearchTerm:      r.handleSearchTerm,
		model.StateAwaitingPurchaseDetails: r.handlePurchaseDetails,
		model.StateAwaitingCreditAmount:    r.handleCreditAmount,
	}
	return r
}

// Welcome returns the greeting shown before the first turn.
func (r *Router) Welcome(displayName string) string {
	return welcomeText(displayName, r.capabilities, r.engine.UnitPrice())
}

// HandleTurn processes one message from userID. It never panics and never
// returns an error; failures are reported through ErrorCode and Response.
func (r *Router) HandleTurn(ctx context.Context, userID int64, displayName, text string) (res TurnResult) {
	turnID := uuid.NewString()

	defer func() {
		if p := recover(); p != nil {
			logx.Error().
				Str("turn_id", turnID).
				Int64("user_id", userID).
				Str("stack", string(debug.Stack())).
				Msgf("panic recovered: %v", p)
			state := res.State
			if state == "" {
				state = model.StateInitial
			}
			res = TurnResult{TurnID: turnID, Response: msgInternal, State: state, Turns: []model.Turn{}, ErrorCode: errx.CodeInternal}
		}
	}()

	sess, created, err := r.sessions.Get(ctx, userID, displayName)
	if err != nil {
		logx.Error().Err(err).Str("turn_id", turnID).Int64("user_id", userID).Msg("session lookup failed")
		return TurnResult{TurnID: turnID, Response: msgUnavailable, State: model.StateInitial, Turns: []model.Turn{}, ErrorCode: errx.CodeOf(err)}
	}
	before := sess.State
	res.State = before

	sess.Append(model.RoleUser, text, r.sessions.Now())
	out := r.dispatch(ctx, sess, text)
	sess.State = out.next
	sess.Append(model.RoleAssistant, out.text, r.sessions.Now())

	if err := r.sessions.Save(ctx, sess); err != nil {
		// the reply stands; any transaction in it has already been applied
		logx.Error().Err(err).Str("turn_id", turnID).Int64("user_id", userID).Msg("session save failed")
	}

	turns := make([]model.Turn, len(sess.Turns))
	copy(turns, sess.Turns)

	logx.Info().
		Str("turn_id", turnID).
		Int64("user_id", userID).
		Bool("new_session", created).
		Str("state_before", string(before)).
		Str("state_after", string(out.next)).
		Str("error_code", string(out.code)).
		Msg("turn handled")

	return TurnResult{
		TurnID:      turnID,
		Response:    out.text,
		State:       out.next,
		Transaction: out.detail,
		Turns:       turns,
		ErrorCode:   out.code,
	}
}

func (r *Router) dispatch(ctx context.Context, sess *model.Session, text string) reply {
	h, ok := r.handlers[sess.State]
	if !ok {
		logx.Warn().Int64("user_id", sess.UserID).Str("state", string(sess.State)).Msg("unknown session state, resetting")
		sess.State = model.StateInitial
		h = r.handleInitial
	}

	if sess.State != model.StateInitial && parsers.ParseCommand(text) == parsers.CommandCancel {
		return reply{next: model.StateInitial, text: msgCancelled}
	}

	out := h(ctx, sess, input{text: text})
	if out.code == errx.CodeStoreUnavailable {
		// let the user resend the same message
		out.next = sess.State
	}
	return out
}

func (r *Router) handleInitial(ctx context.Context, sess *model.Session, in input) reply {
	switch parsers.ParseCommand(in.text) {
	case parsers.CommandQuery:
		return reply{next: model.StateAwaitingSearchTerm, text: promptSearch}
	case parsers.CommandBuy:
		return reply{next: model.StateAwaitingPurchaseDetails, text: promptPurchase}
	case parsers.CommandBuyCredits:
		return reply{next: model.StateAwaitingCreditAmount, text: promptCredits}
	case parsers.CommandHelp:
		return reply{next: model.StateInitial, text: helpText(r.capabilities, r.engine.UnitPrice())}
	case parsers.CommandCancel:
		return reply{next: model.StateInitial, text: msgNothingToCancel + "\n\n" + helpText(r.capabilities, r.engine.UnitPrice())}
	}

	c := r.classifier.Classify(ctx, r.capabilities, in.text)
	logx.Debug().
		Int64("user_id", sess.UserID).
		Str("intent", string(c.Intent)).
		Float64("confidence", c.Confidence).
		Str("source", c.Source).
		Bool("degraded", c.Degraded).
		Msg("free text classified")

	if c.Degraded || c.Intent == model.IntentUnclear {
		return reply{next: model.StateInitial, text: helpText(r.capabilities, r.engine.UnitPrice())}
	}

	switch c.Intent {
	case model.IntentSearch:
		term := c.SearchTerm
		if term == "" {
			term = parsers.CleanSearchTerm(in.text)
		}
		if term == "" {
			return reply{next: model.StateAwaitingSearchTerm, text: promptSearch}
		}
		return r.handlers[model.StateAwaitingSearchTerm](ctx, sess, input{text: in.text, term: term})

	case model.IntentPurchase:
		items := c.Items
		if len(items) == 0 {
			if payload := parsers.StripPurchaseVerb(in.text); payload != "" {
				items = parsers.ParseMulti(payload)
			}
		}
		if len(items) == 0 {
			return reply{next: model.StateAwaitingPurchaseDetails, text: promptPurchase}
		}
		return r.handlers[model.StateAwaitingPurchaseDetails](ctx, sess, input{text: in.text, items: items})

	case model.IntentAddCredits:
		amount := c.Amount
		if amount <= 0 {
			amount, _ = parsers.ParseCreditAmount(in.text)
		}
		if amount <= 0 {
			return reply{next: model.StateAwaitingCreditAmount, text: promptCredits}
		}
		return r.handlers[model.StateAwaitingCreditAmount](ctx, sess, input{text: in.text, amount: amount})

	default:
		text := helpText(r.capabilities, r.engine.UnitPrice())
		if rt := strings.TrimSpace(c.ResponseText); rt != "" {
			text = rt + "\n\n" + text
		}
		return reply{next: model.StateInitial, text: text}
	}
}

func (r *Router) handleSearchTerm(ctx context.Context, _ *model.Session, in input) reply {
	term := in.term
	if term == "" {
		term = parsers.CleanSearchTerm(in.text)
	}
	if term == "" {
		return reply{next: model.StateAwaitingSearchTerm, text: repromptSearch, code: errx.CodeParseFailure}
	}

	res, appErr := r.catalog.Search(ctx, term)
	if appErr != nil {
		return failureReply(appErr, model.StateAwaitingSearchTerm, repromptSearch)
	}
	return reply{
		next:   model.StateInitial,
		text:   searchText(res, r.engine.UnitPrice()),
		detail: &Detail{Search: &res},
	}
}

func (r *Router) handlePurchaseDetails(ctx context.Context, sess *model.Session, in input) reply {
	items := in.items
	if len(items) == 0 {
		if payload := parsers.StripPurchaseVerb(in.text); payload != "" {
			items = parsers.ParseMulti(payload)
		}
	}
	if len(items) == 0 {
		return reply{next: model.StateAwaitingPurchaseDetails, text: repromptPurchase, code: errx.CodeParseFailure}
	}

	res := r.engine.Purchase(ctx, sess.UserID, items)
	out := reply{next: model.StateInitial, text: purchaseText(res), detail: &Detail{Purchase: &res}}
	if res.Err != nil {
		out.code = res.Err.Code
		if res.Err.Code == errx.CodeStoreUnavailable {
			out.text = msgUnavailable
		}
	}
	return out
}

func (r *Router) handleCreditAmount(ctx context.Context, sess *model.Session, in input) reply {
	amount := in.amount
	if amount <= 0 {
		n, ok := parsers.ParseCreditAmount(in.text)
		if !ok {
			return reply{next: model.StateAwaitingCreditAmount, text: repromptCredits, code: errx.CodeParseFailure}
		}
		amount = n
	}

	res := r.engine.AddCredits(ctx, sess.UserID, amount)
	out := reply{next: model.StateInitial, text: creditText(res), detail: &Detail{Credits: &res}}
	if res.Err != nil {
		out.code = res.Err.Code
		if res.Err.Code == errx.CodeStoreUnavailable {
			out.text = msgUnavailable
		}
	}
	return out
}

// failureReply maps an error from a read-only step: parse failures retry in
// place, store outages keep the state, anything else returns to INITIAL.
func failureReply(appErr *errx.AppError, retryState model.State, reprompt string) reply {
	switch appErr.Code {
	case errx.CodeParseFailure:
		return reply{next: retryState, text: reprompt, code: appErr.Code}
	case errx.CodeStoreUnavailable:
		return reply{next: retryState, text: msgUnavailable, code: appErr.Code}
	default:
		return reply{next: model.StateInitial, text: fmt.Sprintf("%s\n\n%s", appErr.Message, nextSteps), code: appErr.Code}
	}
}

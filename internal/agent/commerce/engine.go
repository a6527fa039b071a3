package commerce

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

// Engine applies purchases and credit top-ups against a record store that
// only guarantees single-record atomic writes. Purchases validate everything
// before writing, then commit stock first and the balance last, undoing
// committed stock writes if a later write fails.
type Engine struct {
	store     model.RecordStore
	cfg       model.CommerceConfig
	escalator Escalator
}

type Option func(*Engine)

func WithEscalator(e Escalator) Option {
	return func(en *Engine) { en.escalator = e }
}

func NewEngine(store model.RecordStore, cfg model.CommerceConfig, opts ...Option) *Engine {
	e := &Engine{store: store, cfg: cfg, escalator: LogEscalator{}}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) UnitPrice() int { return e.cfg.UnitPrice }

// stockPlan is the validated demand against one resolved book.
type stockPlan struct {
	book   model.Book
	demand int
}

type validated struct {
	lines   []model.LineItem // titles resolved to canonical form
	plans   map[string]*stockPlan
	order   []string // distinct canonical titles in first-seen order
	account model.Account
	qty     int
	cost    int
}

func failure(err *errx.AppError) model.PurchaseResult {
	return model.PurchaseResult{Success: false, Err: err}
}

// Purchase validates and applies items for userID as one logical unit.
func (e *Engine) Purchase(ctx context.Context, userID int64, items []model.LineItem) model.PurchaseResult {
	v, appErr := e.validate(ctx, userID, items)
	if appErr != nil {
		logx.Info().
			Int64("user_id", userID).
			Str("code", string(appErr.Code)).
			Str("detail", appErr.Message).
			Msg("purchase rejected")
		return failure(appErr)
	}
	// once writing starts it runs to completion, compensation included
	return e.commit(context.WithoutCancel(ctx), userID, v)
}

func (e *Engine) validate(ctx context.Context, userID int64, items []model.LineItem) (*validated, *errx.AppError) {
	if len(items) == 0 {
		return nil, errx.Newf(errx.CodeParseFailure, "No books were specified.")
	}

	v := &validated{plans: make(map[string]*stockPlan)}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, errx.Newf(errx.CodeInvalidQuantity, "Quantity for '%s' must be a positive number.", it.Title)
		}
		book, ok, err := e.store.GetBook(ctx, it.Title)
		if err != nil {
			return nil, errx.WrapStore(err)
		}
		if !ok {
			return nil, errx.Newf(errx.CodeItemNotFound, "Book '%s' not found.", it.Title)
		}

		p, seen := v.plans[book.Title]
		if !seen {
			p = &stockPlan{book: book}
			v.plans[book.Title] = p
			v.order = append(v.order, book.Title)
		}
		if it.Quantity > book.Quantity-p.demand {
			return nil, errx.Newf(errx.CodeInsufficientStock,
				"Only %d copies of '%s' available, requested %d.", book.Quantity, book.Title, p.demand+it.Quantity)
		}
		p.demand += it.Quantity

		lineCost, ok := mulInt(it.Quantity, e.cfg.UnitPrice)
		if !ok || lineCost > math.MaxInt-v.cost {
			return nil, errx.Newf(errx.CodeInvalidQuantity, "Quantity for '%s' is too large.", it.Title)
		}
		v.cost += lineCost
		v.qty += it.Quantity
		v.lines = append(v.lines, model.LineItem{Title: book.Title, Quantity: it.Quantity})
	}

	acct, ok, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	if !ok {
		return nil, errx.Newf(errx.CodeAccountNotFound, "No account found for your user.")
	}
	if acct.Balance < v.cost {
		return nil, errx.Newf(errx.CodeInsufficientCredit,
			"Insufficient credits: you need %d but have %d.", v.cost, acct.Balance)
	}
	v.account = acct
	return v, nil
}

func (e *Engine) commit(ctx context.Context, userID int64, v *validated) model.PurchaseResult {
	current := make(map[string]int, len(v.plans))
	for title, p := range v.plans {
		current[title] = p.book.Quantity
	}

	var written []string
	touched := make(map[string]bool, len(v.plans))
	lines := make([]model.PurchaseLine, 0, len(v.lines))

	for _, li := range v.lines {
		next := current[li.Title] - li.Quantity
		if err := e.store.SetBookQuantity(ctx, li.Title, next); err != nil {
			logx.Error().Err(err).Int64("user_id", userID).Str("title", li.Title).Msg("stock write failed, rolling back")
			res := failure(errx.New(errx.CodeCommitFailed, err, "The purchase could not be completed. No changes were made."))
			res.Unreconciled = e.compensate(ctx, userID, v, written, err)
			return res
		}
		current[li.Title] = next
		if !touched[li.Title] {
			touched[li.Title] = true
			written = append(written, li.Title)
		}
		lines = append(lines, model.PurchaseLine{
			Title:          li.Title,
			Quantity:       li.Quantity,
			Cost:           li.Quantity * e.cfg.UnitPrice,
			RemainingStock: next,
		})
	}

	balance := v.account.Balance - v.cost
	if err := e.store.SetAccountBalance(ctx, userID, balance); err != nil {
		logx.Error().Err(err).Int64("user_id", userID).Int("cost", v.cost).Msg("balance write failed, rolling back")
		res := failure(errx.New(errx.CodeCreditCommitFailed, err, "Your credits could not be charged. No changes were made."))
		res.Unreconciled = e.compensate(ctx, userID, v, written, err)
		return res
	}

	for _, title := range v.order {
		if current[title] != 0 {
			continue
		}
		if err := e.store.SetBookQuantity(ctx, title, e.cfg.RestockLevel); err != nil {
			logx.Warn().Err(err).Str("title", title).Msg("restock failed")
			continue
		}
		for i := range lines {
			if lines[i].Title == title && lines[i].RemainingStock == 0 {
				lines[i].Restocked = true
			}
		}
	}

	logx.Info().
		Int64("user_id", userID).
		Int("lines", len(lines)).
		Int("total_quantity", v.qty).
		Int("total_cost", v.cost).
		Int("balance", balance).
		Msg("purchase committed")

	return model.PurchaseResult{
		Success:          true,
		Lines:            lines,
		TotalQuantity:    v.qty,
		TotalCost:        v.cost,
		RemainingBalance: balance,
	}
}

// compensate restores every written title to its pre-purchase quantity, newest
// first, and returns the records it could not restore.
func (e *Engine) compensate(ctx context.Context, userID int64, v *validated, written []string, cause error) []string {
	var unreconciled []string
	var errs []error
	for i := len(written) - 1; i >= 0; i-- {
		title := written[i]
		orig := v.plans[title].book.Quantity
		if err := e.store.SetBookQuantity(ctx, title, orig); err != nil {
			unreconciled = append(unreconciled, fmt.Sprintf("book %q: expected quantity %d", title, orig))
			errs = append(errs, err)
		}
	}
	if len(unreconciled) > 0 {
		e.escalator.Escalate(ctx, userID, unreconciled, errors.Join(append([]error{cause}, errs...)...))
	}
	return unreconciled
}

// AddCredits tops up userID's balance by amount.
func (e *Engine) AddCredits(ctx context.Context, userID int64, amount int) model.CreditResult {
	if amount <= 0 {
		return model.CreditResult{Err: errx.Newf(errx.CodeInvalidAmount, "Credit amount must be a positive number.")}
	}
	acct, ok, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		return model.CreditResult{Err: errx.WrapStore(err)}
	}
	if !ok {
		return model.CreditResult{Err: errx.Newf(errx.CodeAccountNotFound, "No account found for your user.")}
	}
	if amount > math.MaxInt-acct.Balance {
		return model.CreditResult{Err: errx.Newf(errx.CodeInvalidAmount, "Credit amount is too large.")}
	}

	balance := acct.Balance + amount
	if err := e.store.SetAccountBalance(context.WithoutCancel(ctx), userID, balance); err != nil {
		logx.Error().Err(err).Int64("user_id", userID).Int("amount", amount).Msg("credit write failed")
		return model.CreditResult{Err: errx.New(errx.CodeCommitFailed, err, "Your credits could not be added. Please try again.")}
	}

	logx.Info().Int64("user_id", userID).Int("amount", amount).Int("balance", balance).Msg("credits added")
	return model.CreditResult{Success: true, Added: amount, NewBalance: balance}
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}

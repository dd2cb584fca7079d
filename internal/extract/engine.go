// Package extract turns filtered hiring-thread comments into structured job
// records via the extraction backend, under a request pace and a daily token
// budget.
package extract

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/technode/hiring-cli/internal/config"
	"github.com/technode/hiring-cli/internal/model"
	"github.com/technode/hiring-cli/pkg/anthropic"
)

// ErrBudgetExhausted signals that the daily token ceiling has been reached.
// The pipeline treats it as a graceful stop, not a failure.
var ErrBudgetExhausted = errors.New("extract: daily token budget exhausted")

// TokenBudget is the running usage counter for one run, owned by the run's
// single control goroutine.
type TokenBudget struct {
	ceiling int
	usage   model.TokenUsage
}

// NewTokenBudget creates a budget with the given daily ceiling.
// A ceiling of zero or less disables the budget.
func NewTokenBudget(ceiling int) *TokenBudget {
	return &TokenBudget{ceiling: ceiling}
}

// Add accumulates usage from one backend call.
func (b *TokenBudget) Add(in, out int64) {
	b.usage.Add(model.TokenUsage{InputTokens: int(in), OutputTokens: int(out)})
}

// Exhausted reports whether the ceiling has been crossed.
func (b *TokenBudget) Exhausted() bool {
	return b.ceiling > 0 && b.usage.Total() >= b.ceiling
}

// Usage returns the accumulated usage.
func (b *TokenBudget) Usage() model.TokenUsage {
	return b.usage
}

// Engine extracts one comment at a time, strictly sequentially. Batching
// several comments into one call was tried and rejected: it blew through
// per-minute token ceilings and degraded accuracy. One item per call with
// cooperative pacing is the validated configuration.
type Engine struct {
	backend   anthropic.Client
	rules     *config.Rules
	budget    *TokenBudget
	limiter   *rate.Limiter
	model     string
	maxTokens int64
	maxChars  int
	timeout   time.Duration
}

// NewEngine builds an Engine for a single run. The budget and pacing clock
// are explicit per-run state, not globals, so budget-stop behavior is
// directly testable.
func NewEngine(backend anthropic.Client, cfg config.ExtractConfig, ai config.AnthropicConfig, rules *config.Rules, budget *TokenBudget) *Engine {
	limit := rate.Inf
	if cfg.PaceSecs > 0 {
		limit = rate.Every(time.Duration(cfg.PaceSecs) * time.Second)
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := int64(ai.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Engine{
		backend:   backend,
		rules:     rules,
		budget:    budget,
		limiter:   rate.NewLimiter(limit, 1),
		model:     ai.Model,
		maxTokens: maxTokens,
		maxChars:  cfg.MaxChars,
		timeout:   timeout,
	}
}

// Usage returns the run's accumulated token usage.
func (e *Engine) Usage() model.TokenUsage {
	return e.budget.Usage()
}

// ExtractOne transforms a single comment into a JobRecord. It returns
// ErrBudgetExhausted when the token ceiling would be crossed; any other
// error is a per-item failure the caller records and moves past.
func (e *Engine) ExtractOne(ctx context.Context, comment model.RawComment) (*model.JobRecord, error) {
	if e.budget.Exhausted() {
		return nil, ErrBudgetExhausted
	}

	text := comment.Text
	if e.maxChars > 0 && len(text) > e.maxChars {
		text = text[:e.maxChars]
	}

	raw, err := e.callBackend(ctx, text)
	if err != nil {
		// Exactly one retry per item, re-paced like a fresh request.
		zap.L().Warn("extract: retrying item",
			zap.Int64("comment_id", comment.ID),
			zap.Error(err),
		)
		raw, err = e.callBackend(ctx, text)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "extract: comment %d", comment.ID)
	}

	return e.normalize(raw, comment), nil
}

func (e *Engine) callBackend(ctx context.Context, text string) (*rawExtraction, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: pacing wait")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	temp := 0.0
	resp, err := e.backend.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, err
	}

	e.budget.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return parseExtraction(resp.FirstText())
}

func (e *Engine) normalize(raw *rawExtraction, comment model.RawComment) *model.JobRecord {
	var salary *int
	if raw.SalaryUSD != "" {
		if f, err := raw.SalaryUSD.Float64(); err == nil {
			v := int(f)
			salary = &v
		}
		// Unparseable salary nulls the field, never drops the record.
	}

	remote := overrideRemote(raw.RemoteType, comment.Text, e.rules)

	return &model.JobRecord{
		CommentID:       strconv.FormatInt(comment.ID, 10),
		Company:         raw.Company,
		JobRole:         raw.JobRole,
		ExperienceLevel: raw.ExperienceLevel,
		CompanyIndustry: raw.CompanyIndustry,
		TechStack:       cleanTechStack(raw.TechStack, e.rules),
		RemoteType:      remote,
		VisaSponsorship: raw.VisaSponsorship,
		SalaryUSD:       normalizeSalary(salary, comment.Text, e.rules),
		ApplicationURL:  raw.ApplicationURL,
		EmailContact:    raw.EmailContact,
		HNLink:          comment.HNLink(),
		Priority:        remote == model.RemoteGlobal,
		ExtractedAt:     time.Now().UTC(),
	}
}

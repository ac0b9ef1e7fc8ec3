// Package popup drives one explanation request from selection to rendered
// result as a small state machine.
package popup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/jargone-go/internal/history"
	"github.com/comigor/jargone-go/internal/logger"
	"github.com/comigor/jargone-go/internal/relay"
	"github.com/comigor/jargone-go/internal/render"
)

// State is a session state.
type State string

const (
	StateOpened      State = "Opened"
	StateNoSelection State = "NoSelection" // terminal: nothing was selected
	StateLoading     State = "Loading"
	StateExplained   State = "Explained" // terminal
	StateBlocked     State = "Blocked"   // terminal: provider verification required
	StateFailed      State = "Failed"    // terminal
)

// Trigger moves a session between states.
type Trigger string

const (
	TriggerSelectionEmpty    Trigger = "SelectionEmpty"
	TriggerSelectionReceived Trigger = "SelectionReceived"
	TriggerResponseSucceeded Trigger = "ResponseSucceeded"
	TriggerResponseBlocked   Trigger = "ResponseBlocked"
	TriggerResponseFailed    Trigger = "ResponseFailed"
)

// BlockedHistoryText is stored in history for a blocked request.
const BlockedHistoryText = "Error: provider verification required"

// Presenter shows each step of the session to the user.
type Presenter interface {
	ShowSelection(text string)
	ShowLoading()
	ShowNoSelection()
	ShowExplanation(e *render.Explanation, html string)
	ShowBlocked(siteURL string)
	// ShowError gets plain text; escaping is up to the presenter.
	ShowError(msg string)
}

// Options carries per-request fields and the blocked-provider behaviour.
type Options struct {
	ExplanationLevel  string
	Department        string
	UserRole          string
	AdditionalContext string

	SiteURL      string
	BlockedDelay time.Duration
	// OpenURL opens the provider site; nil disables it.
	OpenURL func(url string) error
}

// Result is what a finished session reports.
type Result struct {
	State State
	// Response is the raw response string, empty when nothing was dispatched.
	Response string
	// Saved is the history entry written for this session, if any.
	Saved *history.Item
}

// Session is single-use.
type Session struct {
	relay   *relay.Relay
	worker  *relay.Worker
	history *history.Store
	view    Presenter
	opts    Options
	sleep   func(ctx context.Context, d time.Duration) error

	fsm     *stateless.StateMachine
	payload relay.Payload
	result  Result
}

// New wires a session.
func New(r *relay.Relay, worker *relay.Worker, hist *history.Store, view Presenter, opts Options) *Session {
	s := &Session{
		relay:   r,
		worker:  worker,
		history: hist,
		view:    view,
		opts:    opts,
		sleep:   sleep,
	}
	s.fsm = s.newMachine()
	return s
}

func (s *Session) newMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateOpened)

	fsm.Configure(StateOpened).
		Permit(TriggerSelectionEmpty, StateNoSelection).
		Permit(TriggerSelectionReceived, StateLoading)

	fsm.Configure(StateNoSelection).
		OnEntry(func(ctx context.Context, args ...any) error {
			s.view.ShowNoSelection()
			return nil
		})

	fsm.Configure(StateLoading).
		OnEntry(func(ctx context.Context, args ...any) error {
			s.view.ShowSelection(s.payload.Question)
			s.view.ShowLoading()
			return nil
		}).
		Permit(TriggerResponseSucceeded, StateExplained).
		Permit(TriggerResponseBlocked, StateBlocked).
		Permit(TriggerResponseFailed, StateFailed)

	fsm.Configure(StateExplained).
		OnEntry(func(ctx context.Context, args ...any) error {
			e := args[0].(*render.Explanation)
			html, err := render.HTML(e)
			if err != nil {
				return err
			}
			s.view.ShowExplanation(e, html)
			s.save(ctx, html)
			return nil
		})

	fsm.Configure(StateBlocked).
		OnEntry(func(ctx context.Context, args ...any) error {
			s.view.ShowBlocked(s.opts.SiteURL)
			if err := s.sleep(ctx, s.opts.BlockedDelay); err != nil {
				return err
			}
			if s.opts.OpenURL != nil && s.opts.SiteURL != "" {
				if err := s.opts.OpenURL(s.opts.SiteURL); err != nil {
					logger.L.Warn("could not open provider site", "url", s.opts.SiteURL, "error", err)
				}
			}
			s.save(ctx, BlockedHistoryText)
			return nil
		})

	fsm.Configure(StateFailed).
		OnEntry(func(ctx context.Context, args ...any) error {
			msg := args[0].(string)
			s.view.ShowError(msg)
			s.save(ctx, render.Escape(msg))
			return nil
		})

	return fsm
}

// Run migrates history, reads the selection, dispatches it over a port and
// renders the response. An empty selection never reaches the dispatcher.
func (s *Session) Run(ctx context.Context) (Result, error) {
	if _, err := s.history.Migrate(ctx); err != nil {
		logger.L.Warn("history migration failed", "error", err)
	}

	selection := s.relay.Selection(ctx)
	if strings.TrimSpace(selection) == "" {
		return s.finish(ctx, TriggerSelectionEmpty)
	}

	s.payload = relay.Payload{
		Question:          selection,
		ExplanationLevel:  s.opts.ExplanationLevel,
		Department:        s.opts.Department,
		UserRole:          s.opts.UserRole,
		AdditionalContext: s.opts.AdditionalContext,
	}
	if err := s.fsm.FireCtx(ctx, TriggerSelectionReceived); err != nil {
		return s.result, err
	}

	port := relay.Connect(ctx, s.worker)
	logger.L.Debug("posting question", "port", port.Name)
	if err := port.Post(s.payload); err != nil {
		return s.result, err
	}
	resp, err := port.Receive(ctx)
	if err != nil {
		return s.result, fmt.Errorf("waiting for response: %w", err)
	}
	s.result.Response = resp

	switch relay.Classify(resp) {
	case relay.KindBlocked:
		return s.finish(ctx, TriggerResponseBlocked)
	case relay.KindError:
		return s.finish(ctx, TriggerResponseFailed, render.ErrorText(resp))
	}

	e, err := render.Parse(resp)
	if err != nil {
		return s.finish(ctx, TriggerResponseFailed, "Error parsing response: "+err.Error())
	}
	return s.finish(ctx, TriggerResponseSucceeded, e)
}

func (s *Session) finish(ctx context.Context, t Trigger, args ...any) (Result, error) {
	if err := s.fsm.FireCtx(ctx, t, args...); err != nil {
		return s.result, err
	}
	s.result.State = s.fsm.MustState().(State)
	return s.result, nil
}

// save appends the outcome to history. Failures are logged only.
func (s *Session) save(ctx context.Context, explanation string) {
	q := s.worker.Query(ctx, s.payload)
	item, err := s.history.Append(ctx, history.Item{
		Query:             q.Text,
		Explanation:       explanation,
		ExplanationLevel:  q.ExplanationLevel,
		Department:        q.Department,
		UserRole:          q.UserRole,
		AdditionalContext: q.AdditionalContext,
	})
	if err != nil {
		logger.L.Error("failed to save history", "error", err)
		return
	}
	s.result.Saved = &item
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Package orchestrator sequences every lifecycle command the same way:
// read the recorded state, ask the guard, delegate the real work to a
// collaborator and, only once that succeeded, record the next state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proxima-one/proxima-cli/internal/cli/config"
	"github.com/proxima-one/proxima-cli/internal/history"
	"github.com/proxima-one/proxima-cli/internal/lifecycle"
	"github.com/proxima-one/proxima-cli/internal/project"
)

// Collaborators perform the work behind each command. Every method blocks
// until the work is complete.
type Collaborators interface {
	Scaffold(ctx context.Context, root, name string) error
	Generate(ctx context.Context, app *config.AppConfig) error
	Build(ctx context.Context, app *config.AppConfig) error
	Run(ctx context.Context, app *config.AppConfig) error
	Test(ctx context.Context, app *config.AppConfig) error
	Deploy(ctx context.Context, app *config.AppConfig) error
	Benchmark(ctx context.Context, app *config.AppConfig) error
}

// Journal records command outcomes. Journal errors never affect a command.
type Journal interface {
	Record(ctx context.Context, e history.Entry) error
}

// Orchestrator runs lifecycle commands against one project.
type Orchestrator struct {
	store   *project.Store
	collab  Collaborators
	journal Journal
	logger  *zap.Logger
	now     func() time.Time
	onStart func(lifecycle.Command)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithJournal records every command run against an initialized project.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithStartHook calls fn once a command has passed the guard, right before
// its work starts.
func WithStartHook(fn func(lifecycle.Command)) Option {
	return func(o *Orchestrator) { o.onStart = fn }
}

// New creates an orchestrator for the project held by store.
func New(store *project.Store, collab Collaborators, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		collab: collab,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init scaffolds a new project in the store's root and records it as
// Initialized. An existing record is never overwritten.
func (o *Orchestrator) Init(ctx context.Context, name string) error {
	started := o.now()
	log := o.logger.With(zap.Stringer("command", lifecycle.Init), zap.String("root", o.store.Root()))

	state := lifecycle.Uninitialized
	exists, err := o.store.Exists()
	if err != nil {
		return err
	}
	if exists {
		state, err = o.store.ReadState()
		if err != nil {
			// an unreadable record is still a record; never scaffold over it
			log.Debug("denied", zap.Error(err))
			denied := &lifecycle.GuardDeniedError{
				Command:  lifecycle.Init,
				State:    lifecycle.Initialized,
				Required: lifecycle.Uninitialized,
				Reason:   lifecycle.ReasonAlreadyInitialized,
				Cause:    err,
			}
			o.record(ctx, lifecycle.Init, lifecycle.Initialized, lifecycle.Initialized, started, denied)
			return denied
		}
		// a record without a state field still counts as initialized
		if state == lifecycle.Uninitialized {
			state = lifecycle.Initialized
		}
	}

	if err := lifecycle.Check(lifecycle.Init, state); err != nil {
		log.Debug("denied", zap.Stringer("state", state))
		o.record(ctx, lifecycle.Init, state, state, started, err)
		return err
	}

	o.started(lifecycle.Init)
	if err := o.collab.Scaffold(ctx, o.store.Root(), name); err != nil {
		return &CollaboratorError{Command: lifecycle.Init, Err: err}
	}

	next := lifecycle.Next(lifecycle.Init, state)
	err = o.store.Create(project.Record{
		Name:      name,
		ID:        uuid.NewString(),
		AppConfig: project.DefaultAppConfig,
		State:     next,
		CreatedAt: o.now().UTC(),
	})
	if errors.Is(err, project.ErrRecordExists) {
		return &lifecycle.GuardDeniedError{
			Command:  lifecycle.Init,
			State:    lifecycle.Initialized,
			Required: lifecycle.Uninitialized,
			Reason:   lifecycle.ReasonAlreadyInitialized,
			Cause:    err,
		}
	}
	if err != nil {
		return err
	}

	log.Info("project initialized", zap.String("name", name))
	o.record(ctx, lifecycle.Init, state, next, started, nil)
	return nil
}

// Execute runs a gated command other than init.
func (o *Orchestrator) Execute(ctx context.Context, cmd lifecycle.Command) error {
	if cmd == lifecycle.Init {
		return fmt.Errorf("init requires a project name")
	}

	started := o.now()
	log := o.logger.With(zap.Stringer("command", cmd), zap.String("root", o.store.Root()))

	state, err := o.store.ReadState()
	var notFound *project.ConfigNotFoundError
	switch {
	case errors.As(err, &notFound):
		// every command needs init first, whatever stage it requires
		return &lifecycle.GuardDeniedError{
			Command:  cmd,
			State:    lifecycle.Uninitialized,
			Required: lifecycle.Initialized,
			Reason:   lifecycle.ReasonNotReady,
			Cause:    err,
		}
	case err != nil:
		return err
	}

	if err := lifecycle.Check(cmd, state); err != nil {
		log.Debug("denied", zap.Stringer("state", state))
		o.record(ctx, cmd, state, state, started, err)
		return err
	}

	app, err := o.appConfig()
	if err != nil {
		o.record(ctx, cmd, state, state, started, err)
		return err
	}

	log.Debug("running collaborator", zap.Stringer("state", state))
	o.started(cmd)
	if err := o.delegate(ctx, cmd, app); err != nil {
		cerr := &CollaboratorError{Command: cmd, Err: err}
		o.record(ctx, cmd, state, state, started, cerr)
		return cerr
	}

	next := lifecycle.Next(cmd, state)
	if next != state {
		if err := o.store.WriteState(next); err != nil {
			log.Error("work completed but state was not recorded",
				zap.Stringer("recorded", state), zap.Stringer("completed", next), zap.Error(err))
			serr := &StateNotRecordedError{Command: cmd, Recorded: state, Completed: next, Err: err}
			o.record(ctx, cmd, state, state, started, serr)
			return serr
		}
		log.Info("state advanced", zap.Stringer("from", state), zap.Stringer("to", next))
	}

	o.record(ctx, cmd, state, next, started, nil)
	return nil
}

// Status describes a project as seen by the guard.
type Status struct {
	Root    string
	Record  *project.Record
	State   lifecycle.State
	Allowed []lifecycle.Command
}

// Status reads the project state without changing anything.
func (o *Orchestrator) Status() (*Status, error) {
	st := &Status{Root: o.store.Root(), State: lifecycle.Uninitialized}

	rec, err := o.store.Load()
	var notFound *project.ConfigNotFoundError
	switch {
	case errors.As(err, &notFound):
	case err != nil:
		return nil, err
	default:
		st.Record = rec
		st.State = rec.State
	}

	st.Allowed = lifecycle.Allowed(st.State)
	return st, nil
}

func (o *Orchestrator) delegate(ctx context.Context, cmd lifecycle.Command, app *config.AppConfig) error {
	switch cmd {
	case lifecycle.Gen:
		return o.collab.Generate(ctx, app)
	case lifecycle.Build:
		return o.collab.Build(ctx, app)
	case lifecycle.Run:
		return o.collab.Run(ctx, app)
	case lifecycle.Test:
		return o.collab.Test(ctx, app)
	case lifecycle.Deploy:
		return o.collab.Deploy(ctx, app)
	case lifecycle.Benchmark:
		return o.collab.Benchmark(ctx, app)
	default:
		return fmt.Errorf("no collaborator for %s", cmd)
	}
}

func (o *Orchestrator) started(cmd lifecycle.Command) {
	if o.onStart != nil {
		o.onStart(cmd)
	}
}

func (o *Orchestrator) appConfig() (*config.AppConfig, error) {
	rec, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	path := rec.AppConfigPath()
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.store.Root(), path)
	}
	return config.Load(o.store.Fs(), path)
}

// record journals a command outcome for initialized projects.
func (o *Orchestrator) record(ctx context.Context, cmd lifecycle.Command, from, to lifecycle.State, started time.Time, cmdErr error) {
	if o.journal == nil {
		return
	}
	if ok, _ := o.store.Exists(); !ok {
		return
	}

	e := history.Entry{
		Command:   cmd,
		From:      from,
		To:        to,
		Outcome:   history.OutcomeOK,
		StartedAt: started,
		Duration:  o.now().Sub(started),
	}
	if cmdErr != nil {
		e.Error = cmdErr.Error()
		e.Outcome = history.OutcomeFailed
		var denied *lifecycle.GuardDeniedError
		if errors.As(cmdErr, &denied) {
			e.Outcome = history.OutcomeDenied
		}
	}

	if err := o.journal.Record(ctx, e); err != nil {
		o.logger.Warn("failed to record history", zap.Stringer("command", cmd), zap.Error(err))
	}
}

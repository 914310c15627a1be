// Package session holds the state a plotter shares between its expressions:
// one global environment, built from a configuration file and the functions
// the user defines interactively.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plotkit/expression"
	"github.com/plotkit/expression/internal/config"
	"github.com/plotkit/expression/internal/sample"
)

// Session is a shared environment with its configuration. It is safe for
// concurrent use: evaluations hold a read lock, and redefinitions and reloads
// hold the write lock, so the environment never changes under a running
// evaluation.
type Session struct {
	ID  uuid.UUID
	log zerolog.Logger

	mu   sync.RWMutex
	path string
	cfg  *config.Config
	env  *expression.Environment
	// defs are the definitions made with Define, in order. They are replayed
	// when the configuration is reloaded.
	defs []string
	// tweaks are applied to the configuration every time it is loaded.
	tweaks []func(*config.Config)
}

// New creates a session from cfg. A nil cfg is the empty configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Session, error) {
	if cfg == nil {
		cfg = new(config.Config)
	}
	s := &Session{ID: uuid.New(), cfg: cfg}
	s.log = log.With().Str("session", s.ID.String()).Logger()
	env, err := s.build(cfg, nil)
	if err != nil {
		return nil, err
	}
	s.env = env
	return s, nil
}

// Open creates a session from the configuration file at path. The session
// can reload it later. Each tweak modifies the configuration after it is
// read, such as to apply command line overrides.
func Open(path string, log zerolog.Logger, tweaks ...func(*config.Config)) (*Session, error) {
	cfg, err := load(path, tweaks)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	s.path, s.tweaks = path, tweaks
	return s, nil
}

func load(path string, tweaks []func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, f := range tweaks {
		f(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// build creates an environment from cfg and replays defs into it.
func (s *Session) build(cfg *config.Config, defs []string) (*expression.Environment, error) {
	env := expression.DefaultEnvironment()
	if err := cfg.Apply(env); err != nil {
		return nil, err
	}
	for _, def := range defs {
		if _, err := define(env, def); err != nil {
			s.log.Warn().Err(err).Str("def", def).Msg("dropping definition")
		}
	}
	return env, nil
}

// define parses def and binds it in env. A user function may be replaced;
// anything else in the environment may not.
func define(env *expression.Environment, def string) (string, error) {
	name, f, err := expression.ParseDefinition(def)
	if err != nil {
		return "", err
	}
	if old, ok := env.Lookup(name); ok {
		if _, user := old.(*expression.UserFunc); user {
			env.Delete(name)
		}
	}
	if err := env.Define(name, f); err != nil {
		return "", err
	}
	return name, nil
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Complex reports whether the session uses complex arithmetic.
func (s *Session) Complex() bool {
	return s.Config().Complex()
}

// Names returns the names bound in the environment.
func (s *Session) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env.Names()
}

// Define adds a function definition of the form name(a, b) = body.
func (s *Session) Define(def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, err := define(s.env, def)
	if err != nil {
		return "", err
	}
	s.defs = append(s.defs, def)
	s.log.Debug().Str("name", name).Str("def", def).Msg("defined function")
	return name, nil
}

// expr creates an expression on the current environment. The caller holds
// at least the read lock.
func (s *Session) expr(src string) *expression.Expression {
	return expression.New(s.env, s.cfg.Options()...).Load(src)
}

// bind creates an expression for src with given bound in its base frame. The
// caller holds at least the read lock.
func (s *Session) bind(src string, given map[string]expression.Value) (*expression.Expression, error) {
	x := s.expr(src)
	for name, v := range given {
		if err := x.SetSymbol(name, v); err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return x, nil
}

// Eval evaluates src with the given variables bound in its base frame.
// Evaluation errors are *expression.Error values; FormatError renders them.
func (s *Session) Eval(src string, given map[string]expression.Value) (expression.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	x, err := s.bind(src, given)
	if err != nil {
		return 0, err
	}
	v, err := x.Evaluate()
	if err != nil {
		s.log.Debug().Err(err).Str("src", src).Msg("evaluation failed")
		return 0, err
	}
	return v, nil
}

// RPN parses src and returns its postfix form.
func (s *Session) RPN(src string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	x := s.expr(src)
	if err := x.Parse(); err != nil {
		return "", err
	}
	return x.RPN(), nil
}

// Sample evaluates src at the points of sm. Variables in given are bound in
// every worker's expression.
func (s *Session) Sample(ctx context.Context, src string, sm sample.Sampler, given map[string]expression.Value) ([]sample.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := time.Now()
	pts, err := sm.Run(ctx, func() (*expression.Expression, error) {
		return s.bind(src, given)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("src", src).Int("points", len(pts)).Dur("took", time.Since(start)).Msg("sampled")
	return pts, nil
}

// Reload reads the configuration file again and rebuilds the environment,
// replaying interactive definitions. On error the session is unchanged.
func (s *Session) Reload() error {
	if s.path == "" {
		return errors.New("session has no configuration file")
	}
	cfg, err := load(s.path, s.tweaks)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	env, err := s.build(cfg, s.defs)
	if err != nil {
		return err
	}
	s.cfg, s.env = cfg, env
	s.log.Info().Str("path", s.path).Str("mode", cfg.Mode).Msg("reloaded config")
	return nil
}

// settle is how long Watch waits for a burst of file events to end before
// reloading.
const settle = 50 * time.Millisecond

// Watch reloads the configuration whenever its file changes, until ctx is
// done. Reload errors are logged and leave the session as it was.
func (s *Session) Watch(ctx context.Context) error {
	if s.path == "" {
		return errors.New("session has no configuration file")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(s.path); err != nil {
		return fmt.Errorf("watching %s: %w", s.path, err)
	}
	s.log.Info().Str("path", s.path).Msg("watching config")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Error().Err(err).Msg("watch error")
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			s.log.Debug().Str("op", ev.Op.String()).Msg("config changed")
			s.drain(ctx, w)
			if err := s.Reload(); err != nil {
				s.log.Error().Err(err).Msg("reload failed")
			}
			// Editors that save by renaming replace the watched file.
			if err := w.Remove(s.path); err != nil {
				s.log.Debug().Err(err).Msg("unwatching config")
			}
			if err := w.Add(s.path); err != nil {
				s.log.Error().Err(err).Msg("rewatching config")
			}
		}
	}
}

// drain discards events until none arrive for the settle period.
func (s *Session) drain(ctx context.Context, w *fsnotify.Watcher) {
	t := time.NewTimer(settle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			if !t.Stop() {
				<-t.C
			}
			t.Reset(settle)
		case <-t.C:
			return
		}
	}
}

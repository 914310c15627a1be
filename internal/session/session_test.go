package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/plotkit/expression"
	"github.com/plotkit/expression/internal/config"
	"github.com/plotkit/expression/internal/sample"
)

func writeConfig(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

func TestEval(t *testing.T) {
	s, err := New(nil, zerolog.Nop())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, s.ID)
	require.False(t, s.Complex())

	v, err := s.Eval("a * x + 1", map[string]expression.Value{"a": 2, "x": 3})
	require.NoError(t, err)
	require.Equal(t, expression.Real(7), v)

	_, err = s.Eval("a + 1", nil)
	require.ErrorIs(t, err, expression.ErrUnboundSymbol)

	_, err = s.Eval("1", map[string]expression.Value{"pi": 3})
	require.ErrorIs(t, err, expression.ErrAssignToConstant)

	rpn, err := s.RPN("2 + 3 * x")
	require.NoError(t, err)
	require.Equal(t, "2 3 x * +", rpn)
}

func TestDefine(t *testing.T) {
	s, err := New(nil, zerolog.Nop())
	require.NoError(t, err)

	name, err := s.Define("f(x) = x + 1")
	require.NoError(t, err)
	require.Equal(t, "f", name)
	require.Contains(t, s.Names(), "f")

	v, err := s.Eval("f(1)", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Real(2), v)

	// User functions can be redefined; builtins cannot.
	_, err = s.Define("f(x) = x * 10")
	require.NoError(t, err)
	v, err = s.Eval("f(1)", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Real(10), v)

	_, err = s.Define("sin(x) = x")
	require.ErrorIs(t, err, expression.ErrAssignToConstant)
	_, err = s.Define("nonsense")
	require.ErrorIs(t, err, expression.ErrSyntax)
}

func TestComplexConfig(t *testing.T) {
	s, err := New(&config.Config{Mode: config.ModeComplex}, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, s.Complex())
	v, err := s.Eval("sqrt(-1) * 2", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Complex(0, 2), v)
}

func TestNewBadConfig(t *testing.T) {
	_, err := New(&config.Config{Functions: []string{"bad"}}, zerolog.Nop())
	require.Error(t, err)
}

func TestSample(t *testing.T) {
	s, err := New(nil, zerolog.Nop())
	require.NoError(t, err)
	sm := sample.Sampler{Var: "x", From: 0, To: 3, N: 4, Workers: 2}
	pts, err := s.Sample(context.Background(), "k * x", sm, map[string]expression.Value{"k": 2})
	require.NoError(t, err)
	require.Len(t, pts, 4)
	for i, p := range pts {
		require.Equal(t, expression.Real(2*float64(i)), p.Y)
	}

	_, err = s.Sample(context.Background(), "pi + x", sm, map[string]expression.Value{"pi": 3})
	require.ErrorIs(t, err, expression.ErrAssignToConstant)
	require.ErrorContains(t, err, "setting pi")
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	writeConfig(t, path, "constants: [{name: k, value: '1'}]\n")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.Define("g(x) = k * x")
	require.NoError(t, err)

	v, err := s.Eval("g(5)", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Real(5), v)

	writeConfig(t, path, "mode: complex\nconstants: [{name: k, value: '3'}]\n")
	require.NoError(t, s.Reload())
	require.True(t, s.Complex())
	v, err = s.Eval("g(5)", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Real(15), v)

	// A broken file leaves the session alone.
	writeConfig(t, path, "mode: octonion\n")
	require.Error(t, s.Reload())
	v, err = s.Eval("g(5)", nil)
	require.NoError(t, err)
	require.Equal(t, expression.Real(15), v)

	unsaved, err := New(nil, zerolog.Nop())
	require.NoError(t, err)
	require.Error(t, unsaved.Reload())
	require.Error(t, unsaved.Watch(context.Background()))
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	writeConfig(t, path, "constants: [{name: k, value: '1'}]\n")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	require.Eventually(t, func() bool {
		os.WriteFile(path, []byte("constants: [{name: k, value: '2'}]\n"), 0o644)
		v, err := s.Eval("k", nil)
		return err == nil && v == 2
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestOpenTweaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	writeConfig(t, path, "mode: real\n")
	force := func(cfg *config.Config) { cfg.Mode = config.ModeComplex }
	s, err := Open(path, zerolog.Nop(), force)
	require.NoError(t, err)
	require.True(t, s.Complex())

	require.NoError(t, s.Reload())
	require.True(t, s.Complex())

	_, err = Open(path, zerolog.Nop(), func(cfg *config.Config) { cfg.MaxDepth = -1 })
	require.Error(t, err)
}

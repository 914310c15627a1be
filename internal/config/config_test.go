package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plotkit/expression"
)

const sample = `
mode: complex
number:
  separator: "_"
  exponent: false
max_depth: 64
functions:
  - "sq(x) = x * x"
  - "scale(x, k=2) = k * x"
constants:
  - name: tau
    value: 2 * pi
  - name: big
    value: sq(1_000)
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.True(t, cfg.Complex())
	require.EqualValues(t, 64, cfg.MaxDepth)
	require.Len(t, cfg.Functions, 2)
	require.Equal(t, []Constant{{"tau", "2 * pi"}, {"big", "sq(1_000)"}}, cfg.Constants)

	num := cfg.NumberOptions()
	require.Equal(t, '_', num.Separator)
	require.True(t, num.NoExponent)
	require.False(t, num.NoDecimal)
	require.Zero(t, num.Imaginary)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"mode":      "mode: quaternion",
		"depth":     "max_depth: -1",
		"separator": "number: {separator: __}",
		"imaginary": "number: {imaginary: ij}",
		"unnamed":   "constants: [{value: 1}]",
		"yaml":      "functions: {",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	env := expression.DefaultEnvironment()
	require.NoError(t, cfg.Apply(env))

	tau, ok := env.Lookup("tau")
	require.True(t, ok)
	require.InDelta(t, 2*math.Pi, tau.(expression.Value).Float64(), 1e-15)

	big, ok := env.Lookup("big")
	require.True(t, ok)
	require.Equal(t, expression.Real(1e6), big)

	x := expression.New(env, cfg.Options()...).Load("scale(sq(i))")
	v, err := x.Evaluate()
	require.NoError(t, err)
	require.Equal(t, expression.Real(-2), v)
}

func TestApplyErrors(t *testing.T) {
	cases := map[string]string{
		"bad function":  `functions: ["sq x = 1"]`,
		"redefined":     `functions: ["sin(x) = x"]`,
		"bad constant":  `constants: [{name: k, value: "nope + 1"}]`,
		"constant name": `constants: [{name: pi, value: "3"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(doc))
			require.NoError(t, err)
			require.Error(t, cfg.Apply(expression.DefaultEnvironment()))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: real\nmax_depth: 10\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Complex())
	require.Len(t, cfg.Options(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// Package config loads plotter configuration from YAML.
//
// A configuration selects the arithmetic, tunes the number literal grammar,
// and seeds the global environment with constants and user functions:
//
//	mode: complex
//	number:
//	  separator: "_"
//	max_depth: 256
//	functions:
//	  - "sq(x) = x * x"
//	constants:
//	  - name: tau
//	    value: 2 * pi
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/plotkit/expression"
)

// Modes accepted in Config.Mode.
const (
	ModeReal    = "real"
	ModeComplex = "complex"
)

// Config is the top-level configuration file.
type Config struct {
	// Mode is "real" or "complex". Empty means real.
	Mode string `yaml:"mode,omitempty"`
	// Number configures the number literal grammar.
	Number Number `yaml:"number,omitempty"`
	// MaxDepth limits nested function calls. Zero means the engine default.
	MaxDepth int `yaml:"max_depth,omitempty"`
	// Functions are definitions of the form "name(a, b=1) = body". They are
	// defined in order, before any constant.
	Functions []string `yaml:"functions,omitempty"`
	// Constants are evaluated in order, so each may refer to the ones before
	// it and to every function.
	Constants []Constant `yaml:"constants,omitempty"`
}

// Number configures number literals.
type Number struct {
	// Separator is a single character allowed between digits, like "_".
	Separator string `yaml:"separator,omitempty"`
	// Imaginary is the imaginary suffix. Complex mode defaults it to "i".
	Imaginary string `yaml:"imaginary,omitempty"`
	// Exponent and Decimal enable e-notation and decimal points. Both
	// default to true.
	Exponent *bool `yaml:"exponent,omitempty"`
	Decimal  *bool `yaml:"decimal,omitempty"`
}

// Constant is a named global value.
type Constant struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	switch c.Mode {
	case "", ModeReal, ModeComplex:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if utf8.RuneCountInString(c.Number.Separator) > 1 {
		return fmt.Errorf("separator must be one character, got %q", c.Number.Separator)
	}
	if utf8.RuneCountInString(c.Number.Imaginary) > 1 {
		return fmt.Errorf("imaginary suffix must be one character, got %q", c.Number.Imaginary)
	}
	for _, k := range c.Constants {
		if k.Name == "" {
			return fmt.Errorf("constant with value %q has no name", k.Value)
		}
	}
	return nil
}

// Complex reports whether the configuration selects complex arithmetic.
func (c *Config) Complex() bool {
	return c.Mode == ModeComplex
}

// NumberOptions returns the literal grammar.
func (c *Config) NumberOptions() expression.NumberOptions {
	var num expression.NumberOptions
	num.NoExponent = c.Number.Exponent != nil && !*c.Number.Exponent
	num.NoDecimal = c.Number.Decimal != nil && !*c.Number.Decimal
	if c.Number.Separator != "" {
		num.Separator, _ = utf8.DecodeRuneInString(c.Number.Separator)
	}
	if c.Number.Imaginary != "" {
		num.Imaginary, _ = utf8.DecodeRuneInString(c.Number.Imaginary)
	}
	return num
}

// Options returns the options for expressions created under the
// configuration.
func (c *Config) Options() []expression.Option {
	opts := []expression.Option{expression.WithNumberOptions(c.NumberOptions())}
	if c.MaxDepth > 0 {
		opts = append(opts, expression.MaxDepth(c.MaxDepth))
	}
	if c.Complex() {
		opts = append(opts, expression.ComplexMode())
	}
	return opts
}

// Apply defines the configured functions and constants in env.
func (c *Config) Apply(env *expression.Environment) error {
	for _, def := range c.Functions {
		name, f, err := expression.ParseDefinition(def)
		if err != nil {
			return fmt.Errorf("function %q: %w", def, err)
		}
		if err := env.Define(name, f); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
	}
	for _, k := range c.Constants {
		x := expression.New(env, c.Options()...).Load(k.Value)
		v, err := x.Evaluate()
		if err != nil {
			return fmt.Errorf("constant %s: %w", k.Name, err)
		}
		if err := env.Define(k.Name, v); err != nil {
			return fmt.Errorf("constant %s: %w", k.Name, err)
		}
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/plotkit/expression"
	"github.com/plotkit/expression/internal/config"
	"github.com/plotkit/expression/internal/sample"
	"github.com/plotkit/expression/internal/session"
)

func main() {
	var (
		inname, verb string
		cfgpath      string
		samplespec   string
		loglevel     string
		with         [][2]string
		echo, cplx   bool
		watch        bool
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file with one expression per line (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%v", "result formatting string")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.StringVar(&cfgpath, "config", "", "YAML configuration file")
	flag.BoolVar(&cplx, "complex", false, "use complex arithmetic")
	flag.BoolVar(&echo, "echo", false, "print expressions in postfix form")
	flag.StringVar(&samplespec, "sample", "", "sample each expression over var:from:to:n")
	flag.BoolVar(&watch, "watch", false, "reload the configuration file when it changes")
	flag.StringVar(&loglevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	level, err := zerolog.ParseLevel(loglevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("service", "plotexpr").Logger().
		Level(level)

	s, err := open(cfgpath, cplx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}
	logger.Debug().Str("session", s.ID.String()).Bool("complex", s.Complex()).Msg("started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if watch {
		if cfgpath == "" {
			logger.Fatal().Msg("-watch needs -config")
		}
		go func() {
			if err := s.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("watch stopped")
			}
		}()
	}

	r := &runner{s: s, verb: verb + "\n", echo: echo, color: isatty.IsTerminal(os.Stderr.Fd())}
	if samplespec != "" {
		sm, err := sample.Parse(samplespec)
		if err != nil {
			logger.Fatal().Err(err).Msg("bad -sample")
		}
		r.sampler = &sm
	}
	r.given = make(map[string]expression.Value, len(with))
	for _, d := range with {
		v, err := s.Eval(d[1], r.given)
		if err != nil {
			r.report(err)
			logger.Fatal().Str("name", d[0]).Msg("bad -given")
		}
		r.given[d[0]] = v
	}

	switch {
	case flag.NArg() > 0:
		for _, arg := range flag.Args() {
			r.line(ctx, arg)
		}
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			logger.Fatal().Err(err).Msg("opening input")
		}
		r.lines(ctx, f)
		f.Close()
	case inname == "" && isatty.IsTerminal(os.Stdin.Fd()):
		if err := r.repl(ctx); err != nil {
			logger.Fatal().Err(err).Msg("repl")
		}
	default:
		r.lines(ctx, os.Stdin)
	}
	if r.failed {
		os.Exit(1)
	}
}

func open(path string, cplx bool, log zerolog.Logger) (*session.Session, error) {
	force := func(cfg *config.Config) {
		if cplx {
			cfg.Mode = config.ModeComplex
		}
	}
	if path != "" {
		return session.Open(path, log, force)
	}
	var cfg config.Config
	force(&cfg)
	return session.New(&cfg, log)
}

// runner evaluates input lines against a session.
type runner struct {
	s    *session.Session
	verb string
	// prompt precedes each printed result.
	prompt  string
	echo    bool
	color   bool
	sampler *sample.Sampler
	given   map[string]expression.Value
	out     io.Writer
	failed  bool
}

func (r *runner) stdout() io.Writer {
	if r.out == nil {
		return os.Stdout
	}
	return r.out
}

func (r *runner) lines(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		r.line(ctx, sc.Text())
	}
	if err := sc.Err(); err != nil {
		r.report(err)
	}
}

// line handles one line of input. Blank lines and lines starting with # are
// ignored, and lines of the form name(a, b) = body define functions.
func (r *runner) line(ctx context.Context, src string) {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "#") {
		return
	}
	if _, _, err := expression.ParseDefinition(src); err == nil {
		if _, err := r.s.Define(src); err != nil {
			r.report(err)
		}
		return
	}
	var lead string
	if r.echo {
		rpn, err := r.s.RPN(src)
		if err != nil {
			r.report(err)
			return
		}
		lead = rpn + " : "
	}
	w := r.stdout()
	if r.sampler != nil {
		pts, err := r.s.Sample(ctx, src, *r.sampler, r.given)
		if err != nil {
			r.report(err)
			return
		}
		fmt.Fprint(w, r.prompt, lead)
		for _, p := range pts {
			fmt.Fprintf(w, "%g\t"+r.verb, p.X, r.value(p.Y))
		}
		return
	}
	v, err := r.s.Eval(src, r.given)
	if err != nil {
		r.report(err)
		return
	}
	fmt.Fprint(w, r.prompt, lead)
	fmt.Fprintf(w, r.verb, r.value(v))
}

// value selects what the format verb applies to. Real results are formatted
// as float64 so that verbs like %.3f work as expected.
func (r *runner) value(v expression.Value) any {
	if r.s.Complex() {
		return v
	}
	return v.Float64()
}

// report prints an error with its diagnostic to stderr.
func (r *runner) report(err error) {
	r.failed = true
	msg := err.Error()
	var (
		serr *sample.Error
		xerr *expression.Error
	)
	switch {
	case errors.As(err, &serr):
		msg = "at " + fmt.Sprint(serr.At) + ": " + serr.Diagnostic
	case errors.As(err, &xerr):
		msg = expression.FormatError(xerr)
	}
	if r.color {
		msg = "\033[31m" + msg + "\033[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

const newprompt = "\033[32m>\033[0m "
const resultprompt = "\033[31m=\033[0m "

// repl reads lines interactively until EOF or an interrupt on an empty line.
// Besides expressions and definitions it understands :names, :rpn, and
// :reload.
func (r *runner) repl(ctx context.Context) error {
	var history string
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".plotexpr_history")
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       history,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()
	r.prompt = resultprompt

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			r.command(line)
		} else {
			r.line(ctx, line)
		}
		// Errors in the REPL do not affect the exit status.
		r.failed = false
	}
}

func (r *runner) command(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case ":names":
		fmt.Println(strings.Join(r.s.Names(), " "))
	case ":rpn":
		rpn, err := r.s.RPN(arg)
		if err != nil {
			r.report(err)
			return
		}
		fmt.Println(rpn)
	case ":reload":
		if err := r.s.Reload(); err != nil {
			r.report(err)
		}
	default:
		r.report(fmt.Errorf("unknown command %s", cmd))
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

const (
	prompt     = "\033[1;36mqsql>\033[0m "
	contPrompt = "\033[1;36m   ->\033[0m "
)

// shell reads statements interactively. A statement may span lines and
// ends at a line terminated by ';'.
type shell struct {
	rl *readline.Instance
	in *interpreter
}

func newShell(in *interpreter) (*shell, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       filepath.Join(home, ".qsql_history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}

	return &shell{rl: rl, in: in}, nil
}

func (s *shell) Close() error { return s.rl.Close() }

func (s *shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.in.out, "qsql shell. Statements end with ';'. Type 'help' for commands, 'exit' to quit.")

	var pending strings.Builder
	for {
		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if pending.Len() == 0 {
			switch strings.ToLower(line) {
			case "":
				continue
			case "exit", "quit", `\q`:
				return nil
			case "help", `\h`, `\?`:
				printHelp(s.in.out)
				continue
			}
		}

		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(line)

		if !strings.HasSuffix(line, ";") {
			s.rl.SetPrompt(contPrompt)
			continue
		}

		stmt := pending.String()
		pending.Reset()
		s.rl.SetPrompt(prompt)
		_ = s.rl.SaveHistory(stmt)

		runStatements(ctx, s.in, stmt, true)
	}
}

// runScript executes every statement read from r.
func runScript(ctx context.Context, in *interpreter, r io.Reader) error {
	var buf strings.Builder

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "#") {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if runStatements(ctx, in, buf.String(), false) > 0 {
		return errors.New("script failed")
	}
	return nil
}

// runStatements executes each statement in text and reports failures on
// stderr. It returns the number of failed statements.
func runStatements(ctx context.Context, in *interpreter, text string, timing bool) int {
	failed := 0
	for _, stmt := range splitStatements(text) {
		start := time.Now()
		if err := in.Exec(ctx, stmt); err != nil {
			fmt.Fprintf(os.Stderr, "\033[1;31mError:\033[0m %v\n", err)
			failed++
			continue
		}
		if timing {
			fmt.Fprintf(in.out, "\033[1;32mExecuted in %v\033[0m\n", time.Since(start))
		}
	}
	return failed
}

// splitStatements splits text on ';' outside single quotes.
func splitStatements(text string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, r := range text {
		switch {
		case r == '\'':
			quote = !quote
			cur.WriteRune(r)
		case r == ';' && !quote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Statements:
  CREATE DATABASE name;
  USE name;
  CREATE TABLE name (col, ...);
  INSERT INTO name VALUES (v, ...)[, (v, ...)];
  LOAD name FROM path | file://path | s3://bucket/key | minio://bucket/key;
  SELECT * FROM name [WHERE condition];
  SHOW DATABASES; SHOW TABLES;
Commands: help, exit
`)
}

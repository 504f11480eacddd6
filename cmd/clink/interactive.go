package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/matthias-oe/clink/internal/completion"
	"github.com/matthias-oe/clink/internal/render"
	"github.com/matthias-oe/clink/internal/styles"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var errExit = errors.New("exit")

// interactive runs a line editor whose Tab key completes from the registry.
// Entering a line lists its completions; lines starting with ':' are session
// commands.
func (a *app) interactive(prompt, historyFile string) error {
	completer := &lineCompleter{
		provider: a.provider,
		quote:    string(a.provider.Quote()),
		width:    terminalWidth,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()
	completer.out = rl.Stdout()

	fmt.Fprintln(rl.Stdout(), styles.BANNER("clink "+BUILD_VERSION)+" - press Tab to complete, :help for commands")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := a.dispatch(rl.Stdout(), line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintln(rl.Stderr(), styles.ERROR(err.Error()))
		}
	}
}

// dispatch handles one entered line.
func (a *app) dispatch(w io.Writer, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if !strings.HasPrefix(trimmed, ":") {
		a.logger.Debug("listing completions", zap.String("line", line))
		return render.WriteCandidates(w, a.provider.GetCompletions(line, len(line)), terminalWidth())
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit", "exit":
		return errExit
	case "commands":
		return render.WriteCandidates(w, a.registry.Commands(), terminalWidth())
	case "dump":
		if len(fields) != 2 {
			return fmt.Errorf("usage: :dump <command>")
		}
		return a.dump(w, fields[1])
	case "stats":
		return a.stats(w)
	case "help":
		_, err := fmt.Fprint(w, sessionHelp)
		return err
	}
	return fmt.Errorf("unknown command %q, try :help", fields[0])
}

const sessionHelp = `  <line>          list the completions for a line
  :commands       list the commands that have an argument tree
  :dump <command> print the argument tree of a command
  :stats          show completion counters for this session
  :quit           leave the session
`

// lineCompleter adapts the provider to readline. readline can only append
// to the line, so candidates that do not extend what was typed are listed
// instead of inserted. A quoted candidate is appended as a quoted run, which
// the tokenizer joins to the word before it.
type lineCompleter struct {
	provider *completion.Provider
	quote    string
	out      io.Writer
	width    func() int
}

func (c *lineCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	res := c.provider.Complete(text, len(text))
	if len(res.Candidates) == 0 {
		return nil, 0
	}

	typed := res.Typed
	open := c.quote != "" && strings.Count(typed, c.quote)%2 == 1
	prefix := typed
	if c.quote != "" {
		prefix = strings.ReplaceAll(typed, c.quote, "")
	}
	rests := lo.FilterMap(res.Candidates, func(cand string, _ int) (string, bool) {
		return strings.CutPrefix(c.unquote(cand, open), prefix)
	})
	typedLen := utf8.RuneCountInString(typed)

	if len(res.Candidates) == 1 && len(rests) == 1 {
		rest := rests[0]
		insert := c.quoteRun(rest, open)
		if open {
			insert += c.quote
		}
		if !strings.HasSuffix(rest, "/") {
			insert += " "
		}
		return [][]rune{[]rune(insert)}, typedLen
	}

	if c.out != nil {
		fmt.Fprintln(c.out)
		render.WriteCandidates(c.out, res.Candidates, c.width())
	}

	if len(rests) != len(res.Candidates) {
		return nil, 0
	}
	common := render.CommonPrefix(rests)
	if common == "" {
		return nil, 0
	}
	return [][]rune{[]rune(c.quoteRun(common, open))}, typedLen
}

// unquote strips the quotes the provider adds around candidates with spaces.
func (c *lineCompleter) unquote(cand string, open bool) string {
	if open || c.quote == "" || len(cand) < 2*len(c.quote) {
		return cand
	}
	if inner, ok := strings.CutPrefix(cand, c.quote); ok {
		if inner, ok := strings.CutSuffix(inner, c.quote); ok {
			return inner
		}
	}
	return cand
}

// quoteRun wraps text containing whitespace in quotes unless a quote is
// already open.
func (c *lineCompleter) quoteRun(text string, open bool) string {
	if open || c.quote == "" || strings.IndexFunc(text, unicode.IsSpace) < 0 {
		return text
	}
	return c.quote + text + c.quote
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

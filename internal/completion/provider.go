package completion

import (
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Options configures a Provider. Zero values select the process environment
// and working directory.
type Options struct {
	Logger *zap.Logger
	Mode   MatchMode
	Quote  rune
	Getenv func(string) string
	Pwd    func() string

	// Metrics records request outcomes when set.
	Metrics *Metrics
}

// Result is the outcome of completing a line.
type Result struct {
	// Candidates are the completions for the token under the cursor.
	Candidates []string
	// Start is the byte offset where the token under the cursor begins.
	Start int
	// Typed is the raw text of that token as it appears in the line.
	Typed string
}

// Provider completes input lines. It routes the arguments of a command with a
// registered tree to the tree and everything else to executable and file
// completion.
type Provider struct {
	registry *argmatch.Registry
	logger   *zap.Logger
	mode     MatchMode
	quote    rune
	getenv   func(string) string
	pwd      func() string
	metrics  *Metrics
}

// NewProvider creates a Provider for the trees in registry.
func NewProvider(registry *argmatch.Registry, opts Options) *Provider {
	p := &Provider{
		registry: registry,
		logger:   opts.Logger,
		mode:     opts.Mode,
		quote:    opts.Quote,
		getenv:   opts.Getenv,
		pwd:      opts.Pwd,
		metrics:  opts.Metrics,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.quote == 0 {
		p.quote = '"'
	}
	if p.getenv == nil {
		p.getenv = os.Getenv
	}
	if p.pwd == nil {
		p.pwd = func() string {
			wd, _ := os.Getwd()
			return wd
		}
	}
	return p
}

// Registry returns the trees the provider completes with.
func (p *Provider) Registry() *argmatch.Registry {
	return p.registry
}

// Quote returns the character that groups words containing spaces.
func (p *Provider) Quote() rune {
	return p.quote
}

// GetCompletions returns completion suggestions for the line up to pos.
func (p *Provider) GetCompletions(line string, pos int) []string {
	return p.Complete(line, pos).Candidates
}

// Complete completes the token under the cursor.
func (p *Provider) Complete(line string, pos int) Result {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	line = line[:pos]

	tokens := Tokenize(line, p.quote)
	if len(tokens) == 0 {
		return Result{Candidates: []string{}, Start: pos}
	}

	last := tokens[len(tokens)-1]
	if endsWithSpace(line) && !last.Open {
		last = Token{Start: pos, End: pos}
		tokens = append(tokens, last)
	}
	result := Result{Start: last.Start, Typed: line[last.Start:last.End]}

	if len(tokens) == 1 {
		result.Candidates = p.commandCandidates(last.Text)
		p.metrics.observe(OutcomeCommand, len(result.Candidates))
		return result
	}

	command := CommandName(tokens[0].Text, p.getenv)
	args := lo.Map(tokens[1:], func(t Token, _ int) string { return t.Text })
	req := argmatch.Request{
		Tokens: args,
		Text:   result.Typed,
		Start:  last.Start,
		End:    last.End,
	}

	sink := NewSink(p.mode)
	if p.registry.Run(command, req, sink) {
		result.Candidates = p.quoteAll(sink.Matches(), last)
		p.metrics.observe(OutcomeTree, len(result.Candidates))
		return result
	}

	// A FileMatches sentinel ends the run unhandled but keeps what the level
	// already emitted ahead of the files.
	p.logger.Debug("falling back to file completion",
		zap.String("command", command),
		zap.String("prefix", last.Text),
		zap.Int("tree_candidates", sink.Count()),
	)
	candidates := append(sink.Matches(), fileCompletions(last.Text, p.pwd(), p.getenv)...)
	result.Candidates = p.quoteAll(candidates, last)
	p.metrics.observe(OutcomeFiles, len(result.Candidates))
	return result
}

// commandCandidates completes the first word from PATH and the commands that
// have a tree.
func (p *Provider) commandCandidates(prefix string) []string {
	if strings.ContainsAny(prefix, `/\`) {
		return fileCompletions(prefix, p.pwd(), p.getenv)
	}

	names := Executables(prefix, p.getenv)
	for _, name := range p.registry.Commands() {
		if hasPrefixFold(name, prefix) {
			names = append(names, name)
		}
	}
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

// quoteAll wraps candidates containing whitespace in the quote character,
// unless the user already opened a quote.
func (p *Provider) quoteAll(candidates []string, tok Token) []string {
	if candidates == nil {
		return []string{}
	}
	if tok.Open {
		return candidates
	}
	q := string(p.quote)
	return lo.Map(candidates, func(c string, _ int) string {
		if strings.IndexFunc(c, unicode.IsSpace) >= 0 {
			return q + c + q
		}
		return c
	})
}

func endsWithSpace(line string) bool {
	if line == "" {
		return false
	}
	r := []rune(line)
	return unicode.IsSpace(r[len(r)-1])
}

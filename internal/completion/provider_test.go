package completion

import (
	"path/filepath"
	"testing"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestProvider(t *testing.T, mode MatchMode) (*Provider, string) {
	t.Helper()
	dir := setupTestDirectory(t)
	bin := t.TempDir()
	writeFile(t, filepath.Join(bin, "gimp"), 0755)

	r := argmatch.NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.Register("git", argmatch.Must(argmatch.New(
		"add",
		"commit",
		"push",
		"pull",
		argmatch.Must(argmatch.Label("clone", argmatch.FileMatches())),
	))))
	require.NoError(t, r.Register("cd", argmatch.Stop()))
	require.NoError(t, r.Register("open", []string{"My Documents", "notes"}))

	p := NewProvider(r, Options{
		Logger: zaptest.NewLogger(t),
		Mode:   mode,
		Getenv: envMap(map[string]string{"PATH": bin}),
		Pwd:    func() string { return dir },
	})
	return p, dir
}

func TestNewProvider(t *testing.T) {
	r := argmatch.NewRegistry(nil)
	p := NewProvider(r, Options{})

	require.NotNil(t, p)
	assert.Same(t, r, p.Registry())
	assert.Equal(t, '"', p.quote)
	assert.NotNil(t, p.getenv)
	assert.NotNil(t, p.pwd)
}

func TestProviderGetCompletionsEmpty(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)
	assert.Empty(t, p.GetCompletions("", 0))
}

func TestProviderCompletesTreeArguments(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	res := p.Complete("git ", 4)
	assert.Equal(t, []string{"add", "commit", "push", "pull", "clone"}, res.Candidates)
	assert.Equal(t, 4, res.Start)
	assert.Equal(t, "", res.Typed)

	res = p.Complete("git pu", 6)
	assert.Equal(t, []string{"push", "pull"}, res.Candidates)
	assert.Equal(t, 4, res.Start)
	assert.Equal(t, "pu", res.Typed)

	// Text after the cursor is ignored.
	assert.Equal(t, []string{"add"}, p.GetCompletions("git ad xyz", 6))
}

func TestProviderNormalizesCommandName(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)
	assert.Equal(t, []string{"commit"}, p.GetCompletions("/usr/bin/GIT.exe co", 19))
}

func TestProviderFallsBackToFiles(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	assert.Equal(t, []string{"file1.txt", "file2.txt"}, p.GetCompletions("cat fi", 6))
	assert.Equal(t, []string{"file1.txt", "file2.txt"}, p.GetCompletions("git clone fi", 12))
	assert.Equal(t, []string{"file1.txt", "file2.txt"}, p.GetCompletions("git xyz fi", 10))
}

func TestProviderKeepsTreeCandidatesBeforeFileMatches(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)
	require.NoError(t, p.Registry().Register("tool", argmatch.Must(argmatch.New(
		"--verbose",
		"--version",
		"file-mode",
		argmatch.FileMatches(),
	))))

	assert.Equal(t, []string{"--verbose", "--version"}, p.GetCompletions("tool --ver", 10))
	assert.Equal(t, []string{"file-mode", "file1.txt", "file2.txt"}, p.GetCompletions("tool fi", 7))
	assert.Equal(t, []string{"folder1/", "folder2/"}, p.GetCompletions("tool fo", 7))
}

func TestProviderPassesRawTokenText(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	var got argmatch.Request
	gen := argmatch.GeneratorFunc(func(token, text string, start, end int) []string {
		got = argmatch.Request{Tokens: []string{token}, Text: text, Start: start, End: end}
		return []string{"My Documents"}
	})
	require.NoError(t, p.Registry().Register("show", argmatch.Must(argmatch.New(gen))))

	p.GetCompletions(`show "My Do`, 11)
	assert.Equal(t, []string{"My Do"}, got.Tokens)
	assert.Equal(t, `"My Do`, got.Text)
	assert.Equal(t, 5, got.Start)
	assert.Equal(t, 11, got.End)
}

func TestProviderStopSuppressesFiles(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	got := p.GetCompletions("cd fi", 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProviderCompletesCommands(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	assert.Equal(t, []string{"gimp", "git"}, p.GetCompletions("gi", 2))
	assert.Equal(t, []string{"./folder1/", "./folder2/"}, p.GetCompletions("./fo", 4))
}

func TestProviderQuotesCandidatesWithSpaces(t *testing.T) {
	p, _ := newTestProvider(t, PrefixMatch)

	assert.Equal(t, []string{`"My Documents"`}, p.GetCompletions("open My", 7))

	res := p.Complete(`open "My`, 8)
	assert.Equal(t, []string{"My Documents"}, res.Candidates)
	assert.Equal(t, `"My`, res.Typed)
	assert.Equal(t, 5, res.Start)

	assert.Equal(t, []string{"My Documents"}, p.GetCompletions(`open "My `, 9))
}

func TestProviderFuzzyMode(t *testing.T) {
	p, _ := newTestProvider(t, FuzzyMatch)
	assert.Equal(t, []string{"commit"}, p.GetCompletions("git cmt", 7))
}

package argmatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// prefixHost matches candidates case-insensitively by prefix and records
// every emitted value.
type prefixHost struct {
	emitted []string
}

func (h *prefixHost) Match(candidate, token string) bool {
	return strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(token))
}

func (h *prefixHost) Emit(value string) {
	h.emitted = append(h.emitted, value)
}

func (h *prefixHost) Count() int {
	return len(h.emitted)
}

func complete(t *testing.T, tree *Node, tokens ...string) ([]string, bool) {
	t.Helper()
	r := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.Register("cmd", tree))
	h := &prefixHost{}
	ok := r.Run("cmd", Request{Tokens: tokens, Text: tokens[len(tokens)-1]}, h)
	return h.emitted, ok
}

func TestFinalTokenEmission(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("cmdx", Must(New("get", "go", "grep"))))

	h := &prefixHost{}
	ok := r.Run("cmdx", Request{Tokens: []string{"g"}, Text: "g", Start: 5, End: 6}, h)
	assert.True(t, ok)
	assert.Equal(t, []string{"get", "go", "grep"}, h.emitted)

	h = &prefixHost{}
	ok = r.Run("cmdx", Request{Tokens: []string{"gr"}}, h)
	assert.True(t, ok)
	assert.Equal(t, []string{"grep"}, h.emitted)
}

func TestEmptyNodeNeverMatches(t *testing.T) {
	for _, tokens := range [][]string{{""}, {"a"}, {"a", "b"}} {
		emitted, ok := complete(t, Must(New()), tokens...)
		assert.False(t, ok)
		assert.Empty(t, emitted)
	}
}

func TestRegistrationAppends(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.Register("foo", Must(New("a"))))
	require.NoError(t, r.Register("FOO", Must(New("b"))))

	h := &prefixHost{}
	assert.True(t, r.Run("foo", Request{Tokens: []string{""}}, h))
	assert.Equal(t, []string{"a", "b"}, h.emitted)
	assert.Equal(t, []string{"foo"}, r.Commands())
}

func TestPassThroughTransparency(t *testing.T) {
	b := Must(Label("remote", Must(New(
		Must(Label("add", Must(New("--fetch", "--tags")))),
		"remove",
		"rename",
	))))
	a := Must(New(b))

	r := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, r.Register("a", a))
	require.NoError(t, r.Register("b", b))

	inputs := [][]string{
		{""},
		{"re"},
		{"remote", ""},
		{"remote", "re"},
		{"remote", "add", "--"},
		{"remote", "add", "--fetch", ""},
		{"other", ""},
	}
	for _, tokens := range inputs {
		ha, hb := &prefixHost{}, &prefixHost{}
		okA := r.Run("a", Request{Tokens: tokens}, ha)
		okB := r.Run("b", Request{Tokens: tokens}, hb)
		assert.Equal(t, okA, okB, "tokens %q", tokens)
		assert.Equal(t, ha.emitted, hb.emitted, "tokens %q", tokens)
	}

	// An extra unkeyed layer around a level is transparent as well.
	for _, tokens := range inputs {
		ha, hb := &prefixHost{}, &prefixHost{}
		okA := newTraversal(Request{Tokens: tokens}, ha).traverse(a)
		okB := newTraversal(Request{Tokens: tokens}, hb).traverse(&Node{children: []Value{a}})
		assert.Equal(t, okA, okB, "tokens %q", tokens)
		assert.Equal(t, ha.emitted, hb.emitted, "tokens %q", tokens)
	}
}

func TestLoopTermination(t *testing.T) {
	never := Must(New("zzz")).Loop()
	emptyCondition := Must(New(Must(Condition(func(string) int { return 1 })))).Loop()
	emptyLoop := Must(New()).Loop()

	for _, tree := range []*Node{Must(New(never)), Must(New(emptyCondition)), Must(New(emptyLoop))} {
		for n := 0; n <= 8; n++ {
			tokens := make([]string, n)
			for i := range tokens {
				tokens[i] = "a"
			}
			h := &prefixHost{}
			tr := newTraversal(Request{Tokens: tokens}, h)
			ok := tr.descend(tree)
			assert.False(t, ok)
			assert.Empty(t, h.emitted)
			assert.Greater(t, tr.cursor, len(tokens))
		}
	}
}

func TestLoopRetriesFollowingTokens(t *testing.T) {
	tree := Must(New(Must(Label("kill", Must(New("-9", "-15")).Loop()))))

	emitted, ok := complete(t, tree, "kill", "-9", "-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"-15"}, emitted)

	emitted, ok = complete(t, tree, "kill", "-9", "-9", "")
	assert.True(t, ok)
	assert.Equal(t, []string{"-9", "-15"}, emitted)
}

func TestExactMatchShortCircuits(t *testing.T) {
	evaluated := false
	spy := func(token, text string, start, end int) []string {
		evaluated = true
		return []string{"never"}
	}
	tree := Must(New(
		Must(Label("co", Must(New("x")))),
		Must(Label("commit", Must(New(GeneratorFunc(spy))))),
	))

	emitted, ok := complete(t, tree, "co", "")
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, emitted)
	assert.False(t, evaluated)

	// On the last token both are offered and neither is descended into.
	emitted, ok = complete(t, tree, "co")
	assert.True(t, ok)
	assert.Equal(t, []string{"co", "commit"}, emitted)
	assert.False(t, evaluated)
}

func TestExactMatchIgnoresCase(t *testing.T) {
	tree := Must(New(Must(Label("checkout", Must(New("main", "dev"))))))
	emitted, ok := complete(t, tree, "CHECKOUT", "d")
	assert.True(t, ok)
	assert.Equal(t, []string{"dev"}, emitted)
}

func TestConditionalClamping(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "one"},
		{-3, "one"},
		{1, "one"},
		{2, "two"},
		{3, "three"},
		{99, "three"},
	}
	for _, tc := range cases {
		idx := tc.index
		tree := Must(Condition(func(string) int { return idx }, "one", "two", "three"))
		emitted, ok := complete(t, tree, "")
		assert.True(t, ok, "index %d", idx)
		assert.Equal(t, []string{tc.want}, emitted, "index %d", idx)
	}
}

func TestConditionalSeesCurrentToken(t *testing.T) {
	var seen []string
	flag := func(token string) int {
		seen = append(seen, token)
		if strings.HasPrefix(token, "-") {
			return 1
		}
		return 2
	}
	tree := Must(New(Must(Label("run", Must(Condition(flag,
		[]string{"--verbose", "--dry-run"},
		[]string{"build", "test"},
	))))))

	emitted, ok := complete(t, tree, "run", "--d")
	assert.True(t, ok)
	assert.Equal(t, []string{"--dry-run"}, emitted)

	emitted, ok = complete(t, tree, "run", "t")
	assert.True(t, ok)
	assert.Equal(t, []string{"test"}, emitted)

	assert.Equal(t, []string{"--d", "t"}, seen)
}

func TestSentinels(t *testing.T) {
	tree := Must(New(
		Must(Label("cd", Stop())),
		Must(Label("cat", FileMatches())),
	))

	emitted, ok := complete(t, tree, "cd", "")
	assert.True(t, ok, "stop marks the request handled")
	assert.Empty(t, emitted)

	emitted, ok = complete(t, tree, "cat", "")
	assert.False(t, ok, "file matches asks for the filesystem fallback")
	assert.Empty(t, emitted)
}

func TestPartialsBeforeSentinelAreEmitted(t *testing.T) {
	emitted, ok := complete(t, Must(New("all", "any", Stop())), "a")
	assert.True(t, ok)
	assert.Equal(t, []string{"all", "any"}, emitted)
}

func TestGenerators(t *testing.T) {
	type call struct {
		token, text string
		start, end  int
	}
	var calls []call
	gen := func(token, text string, start, end int) []string {
		calls = append(calls, call{token, text, start, end})
		return []string{"alpha", "beta"}
	}
	tree := Must(New(GeneratorFunc(gen)))

	r := NewRegistry(nil)
	require.NoError(t, r.Register("cmd", tree))
	h := &prefixHost{}
	ok := r.Run("cmd", Request{Tokens: []string{"zz"}, Text: "zz", Start: 4, End: 6}, h)

	assert.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta"}, h.emitted, "generator results are not filtered")
	assert.Equal(t, []call{{"zz", "zz", 4, 6}}, calls)
}

func TestGeneratorKeyDescends(t *testing.T) {
	branches := func(token, text string, start, end int) []string {
		return []string{"main", "dev"}
	}
	tree := Must(New(Must(Label(branches, Must(New("--force"))))))

	emitted, ok := complete(t, tree, "main", "")
	assert.True(t, ok)
	assert.Equal(t, []string{"--force"}, emitted)
}

func TestNilGeneratorResultKeepsScanning(t *testing.T) {
	none := func(token, text string, start, end int) []string { return nil }
	emitted, ok := complete(t, Must(New(GeneratorFunc(none), "x")), "")
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, emitted)
}

func TestNumbers(t *testing.T) {
	emitted, ok := complete(t, Must(New(10, 20, 100)), "1")
	assert.True(t, ok)
	assert.Equal(t, []string{"10", "100"}, emitted)
}

func TestDuplicatesAreKept(t *testing.T) {
	emitted, _ := complete(t, Must(New("dup", "dup")), "d")
	assert.Equal(t, []string{"dup", "dup"}, emitted)
}

func TestRunWithoutTree(t *testing.T) {
	r := NewRegistry(nil)
	h := &prefixHost{}
	assert.False(t, r.Run("missing", Request{Tokens: []string{""}}, h))
	assert.Empty(t, h.emitted)
}

func TestRunWithoutTokens(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("cmd", Must(New("a"))))
	h := &prefixHost{}
	assert.False(t, r.Run("cmd", Request{}, h))
}

func TestRegisterWrapsConditionalRoot(t *testing.T) {
	r := NewRegistry(nil)
	cond := Must(Condition(func(string) int { return 1 }, "x"))
	require.NoError(t, r.Register("cmd", cond))

	root, ok := r.Lookup("CMD")
	require.True(t, ok)
	assert.False(t, root.Keyed())
	assert.Equal(t, []Value{cond}, root.Children())
}

func TestRegisterBuildsSequences(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("cmd", []string{"start", "stop"}))
	assert.Error(t, r.Register("bad", struct{}{}))

	h := &prefixHost{}
	assert.True(t, r.Run("cmd", Request{Tokens: []string{"st"}}, h))
	assert.Equal(t, []string{"start", "stop"}, h.emitted)

	r.Remove("cmd")
	_, ok := r.Lookup("cmd")
	assert.False(t, ok)
}

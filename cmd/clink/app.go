package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matthias-oe/clink/internal/argmatch"
	"github.com/matthias-oe/clink/internal/completion"
	"github.com/matthias-oe/clink/internal/config"
	"github.com/matthias-oe/clink/internal/render"
	"github.com/matthias-oe/clink/internal/treeconfig"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app ties the registry, the provider and the tree files together.
type app struct {
	registry *argmatch.Registry
	provider *completion.Provider
	logger   *zap.Logger
	metrics  *prometheus.Registry
}

// newApp registers the built-in trees and then each tree file in order.
// Missing files are skipped.
func newApp(cfg *config.Config, logger *zap.Logger, treeFiles []string) (*app, error) {
	registry := argmatch.NewRegistry(logger.Named("argmatch"))
	metrics := prometheus.NewRegistry()

	mode := completion.PrefixMatch
	if cfg.FuzzyMatch {
		mode = completion.FuzzyMatch
	}
	provider := completion.NewProvider(registry, completion.Options{
		Logger:  logger.Named("completion"),
		Mode:    mode,
		Quote:   cfg.Quote(),
		Metrics: completion.NewMetrics(metrics),
	})

	loader := treeconfig.NewLoader(treeconfig.Options{
		Generators: provider.Generators(),
		Selectors:  completion.Selectors(),
		Logger:     logger.Named("treeconfig"),
	})

	trees, err := loader.Parse([]byte(defaultTrees), "defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("built-in trees: %w", err)
	}
	if err := treeconfig.Register(registry, trees); err != nil {
		return nil, err
	}

	for _, path := range treeFiles {
		trees, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := treeconfig.Register(registry, trees); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("loaded tree file", zap.String("path", path), zap.Int("commands", len(trees)))
	}

	return &app{registry: registry, provider: provider, logger: logger, metrics: metrics}, nil
}

// printCompletions writes the candidates for line, one per line.
func (a *app) printCompletions(w io.Writer, line string) error {
	for _, c := range a.provider.GetCompletions(line, len(line)) {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

// dump writes the tree registered for command.
func (a *app) dump(w io.Writer, command string) error {
	root, ok := a.registry.Lookup(command)
	if !ok {
		return fmt.Errorf("no argument tree for %q", command)
	}
	return render.WriteDump(w, strings.ToLower(command), argmatch.Render(root))
}

// batch completes every line of r, separating the results with a blank line.
func (a *app) batch(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := a.printCompletions(w, scanner.Text()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// stats writes the counters and histogram totals gathered this session.
func (a *app) stats(w io.Writer) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				_, err = fmt.Fprintf(w, "%-45s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				_, err = fmt.Fprintf(w, "%-45s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

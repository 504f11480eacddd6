package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/matthias-oe/clink/internal/config"
	"github.com/matthias-oe/clink/internal/core"
	"github.com/matthias-oe/clink/internal/styles"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

//go:embed defaults.yaml
var defaultTrees string

var command = flag.String("c", "", "complete a line and print the candidates")
var dumpFlag = flag.String("dump", "", "print the argument tree of a command")
var treesFlag = flag.String("trees", "", "load an extra argument tree file")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `clink - declarative argument completion for command lines

USAGE:
  clink [options]

MODES:
  clink                   Start an interactive session; Tab completes
  clink -c "git ch"       Print the completions for a line
  clink -dump git         Print the argument tree registered for git
  clink < lines.txt       Print the completions for every line of stdin

FILES:
  ~/.clink/config.yaml    Settings
  ~/.clink/trees.yaml     Argument trees, merged into the built-in ones
  ~/.clink/clink.log      Log file

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	result, err := config.NewLoader(nil).LoadFromFile(core.ConfigFile())
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}
	cfg := result.Config

	// Initialize the logger
	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new clink session --------", zap.Any("args", os.Args))
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, styles.WARN("config: "+e.Error()))
		logger.Warn("config problem", zap.Error(e))
	}

	treeFiles := append([]string{core.TreeFile()}, cfg.TreeFiles...)
	if *treesFlag != "" {
		treeFiles = append(treeFiles, *treesFlag)
	}

	app, err := newApp(cfg, logger, treeFiles)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		logger.Error("failed to load argument trees", zap.Error(err))
		os.Exit(1)
	}

	if err := run(app, cfg); err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		logger.Error("unhandled error", zap.Error(err))
		os.Exit(1)
	}
}

func run(app *app, cfg *config.Config) error {
	// clink -dump git
	if *dumpFlag != "" {
		return app.dump(os.Stdout, *dumpFlag)
	}

	// clink -c "git ch"
	if *command != "" {
		return app.printCompletions(os.Stdout, *command)
	}

	// clink
	if term.IsTerminal(int(os.Stdin.Fd())) {
		historyFile := cfg.HistoryFile
		if historyFile == "" {
			historyFile = core.HistoryFile()
		}
		return app.interactive(cfg.Prompt, historyFile)
	}

	return app.batch(os.Stdin, os.Stdout)
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel := cfg.Level()
	if BUILD_VERSION == "dev" && os.Getenv(config.EnvLogLevel) == "" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to the file so they never mix with completion output.
	// Use `tail -f ~/.clink/clink.log` to monitor logs in real-time.

	return loggerConfig.Build()
}

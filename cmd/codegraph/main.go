package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fathomlabs/codegraph/internal/artifact"
	"github.com/fathomlabs/codegraph/internal/assembler"
	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	Language    string
	Output      string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("codegraph", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.StringVar(&flags.Language, "language", "", "source language: typescript, go, or python")
	fs.StringVar(&flags.Output, "output", "", "output path for the codegraph.json artifact")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileCfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(fileCfg, flags.ProjectRoot, flags.Language, flags.Output)
	if err != nil {
		return err
	}

	graph, sink, err := assembler.New().Run(ctx, cfg)
	drainDiagnostics(sink)
	if err != nil {
		return err
	}

	data, err := artifact.Encode(graph)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	fmt.Printf("wrote %s (%d nodes, %d edges)\n", cfg.Output, len(graph.Nodes), len(graph.Edges))
	return nil
}

// drainDiagnostics prints every accumulated per-file diagnostic to stderr,
// the §7 "stderr stream" surface for non-fatal conditions.
func drainDiagnostics(sink *diagnostics.Sink) {
	for _, e := range sink.Entries() {
		if e.FilePath != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: %s:%d: %s\n", e.Kind, e.FilePath, e.Line, e.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", e.Kind, e.Message)
	}
}

// exitCodeFor maps a Cancelled error to the conventional SIGINT exit code;
// every other fatal kind exits 1.
func exitCodeFor(err error) int {
	if coreerr.Is(err, coreerr.KindCancelled) {
		return 130
	}
	return 1
}

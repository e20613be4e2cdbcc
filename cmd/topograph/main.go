// Package main is the topograph command-line tool. It synthesizes graphs from
// IR files (.json, .yaml, .yml or .hcl) and prints them as JSON, Mermaid or DOT.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/topograph/core/internal/logging"
	"github.com/topograph/core/internal/parser"
	"github.com/topograph/core/internal/render"
	"github.com/topograph/core/internal/synth"
	"github.com/topograph/core/internal/topology"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("topograph", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() {
		fmt.Fprint(stderr, `
Topograph - synthesize agent interaction graphs from IR files.

Usage:
  topograph [options] FILE...
  topograph -list

Options:
`)
		flagSet.PrintDefaults()
	}

	seedFlag := flagSet.Uint64("seed", 0, "Seed for randomized topologies. 0 draws a random seed.")
	formatFlag := flagSet.String("format", "json", "Output format: 'json', 'mermaid' or 'dot'.")
	prettyFlag := flagSet.Bool("pretty", false, "Indent JSON output.")
	listFlag := flagSet.Bool("list", false, "Describe the available topologies and exit.")
	logLevelFlag := flagSet.String("log-level", "warn", "Logging level: 'debug', 'info', 'warn', 'error'.")
	maxNodesFlag := flagSet.Int("max-nodes", parser.DefaultMaxNodes, "Largest number of nodes one IR may expand to.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &ExitError{Code: 2, Err: err}
	}

	format, err := render.ParseFormat(*formatFlag)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	if *maxNodesFlag <= 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("-max-nodes must be positive, got %d", *maxNodesFlag)}
	}

	zl, err := logging.New(*logLevelFlag, logging.FormatConsole, stderr)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	registry, err := topology.NewDefault()
	if err != nil {
		return err
	}

	if *listFlag {
		blocks := make([]string, 0, len(registry.List()))
		for _, def := range registry.Definitions() {
			blocks = append(blocks, topology.Describe(def))
		}
		_, err := fmt.Fprintln(stdout, strings.Join(blocks, "\n\n"))
		return err
	}

	files := flagSet.Args()
	if len(files) == 0 {
		flagSet.Usage()
		return &ExitError{Code: 2, Err: errors.New("no IR files given")}
	}

	opts := []synth.Option{
		synth.WithLogger(logging.Logr(&zl, "synth")),
		synth.WithMaxNodes(*maxNodesFlag),
	}
	if *seedFlag != 0 {
		opts = append(opts, synth.WithSeed(*seedFlag))
	}
	synthesizer := synth.New(registry, opts...)

	outputs, err := renderAll(synthesizer, files, format, *prettyFlag)

	for i, out := range outputs {
		if out == nil {
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(stdout, "==> %s <==\n", files[i])
		}
		if _, werr := stdout.Write(out); werr != nil {
			return werr
		}
	}

	if err != nil {
		zl.Error().Err(err).Int("failed", len(multierr.Errors(err))).Int("total", len(files)).Msg("synthesis failed")
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// renderAll synthesizes every file concurrently. Outputs keep argument order;
// a failed file leaves a nil entry and contributes to the combined error.
func renderAll(s *synth.Synthesizer, files []string, format render.Format, pretty bool) ([][]byte, error) {
	outputs := make([][]byte, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, path := range files {
		g.Go(func() error {
			ir, err := parser.ParseIRFile(path)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}

			graph, err := s.Synthesize(ir)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}

			var buf bytes.Buffer
			if err := render.Write(&buf, graph, format, pretty); err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			outputs[i] = buf.Bytes()
			return nil
		})
	}
	_ = g.Wait()

	return outputs, multierr.Combine(errs...)
}

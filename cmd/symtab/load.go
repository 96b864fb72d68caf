package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/janus-symtab/symtab"
	"github.com/wbrown/janus-symtab/symtab/annotations"
	"github.com/wbrown/janus-symtab/symtab/global"
	"github.com/wbrown/janus-symtab/symtab/metrics"
	"github.com/wbrown/janus-symtab/symtab/report"
)

type loadOptions struct {
	workers     int
	useGlobal   bool
	verbose     bool
	top         int
	chunkSize   string
	metricsAddr string

	// chunkSizeSet records an explicit --chunk-size, which the global
	// table cannot honour.
	chunkSizeSet bool
}

func newLoadCommand() *cobra.Command {
	opts := loadOptions{}

	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Intern every word of the input on parallel workers",
		Long: `Read the given files (stdin when none), split them into words and intern
every word on each worker. Each worker makes a full pass over the input, so
all but the first sighting of a word exercise the lookup path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			opts.chunkSizeSet = cmd.Flags().Changed("chunk-size")
			return runLoad(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.GOMAXPROCS(0), "number of parallel workers")
	cmd.Flags().BoolVar(&opts.useGlobal, "global", false, "intern into the process-wide default table (incompatible with --chunk-size)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print annotation events to stderr (load events only with --global)")
	cmd.Flags().IntVar(&opts.top, "top", 0, "print the first N symbols")
	cmd.Flags().StringVar(&opts.chunkSize, "chunk-size", "4KiB", "size of the first arena chunk (e.g. 64KiB)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address after loading")

	return cmd
}

func runLoad(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, paths []string, opts loadOptions) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
	}
	if opts.useGlobal && opts.chunkSizeSet {
		return errors.New("--chunk-size cannot be combined with --global")
	}

	chunkSize, err := humanize.ParseBytes(opts.chunkSize)
	if err != nil {
		return fmt.Errorf("parse --chunk-size: %w", err)
	}

	var handler annotations.Handler
	if opts.verbose {
		handler = annotations.NewOutputFormatter(stderr).Handle
	}
	collector := annotations.NewCollector(handler)

	// The global table is created without a handler, so with --global only
	// the load events below reach stderr.
	table := global.Table()
	if !opts.useGlobal {
		table = symtab.NewWithOptions(symtab.Options{
			ChunkSize: int(chunkSize),
			Handler:   handler,
		})
	}

	words, err := readWords(paths, stdin)
	if err != nil {
		return err
	}

	start := time.Now()
	collector.AddTiming(annotations.LoadBegin, start, map[string]interface{}{
		"words.count": len(words),
		"workers":     opts.workers,
	})

	if err := internParallel(ctx, table, words, opts.workers); err != nil {
		return fmt.Errorf("intern: %w", err)
	}
	collector.AddTiming(annotations.LoadComplete, start, map[string]interface{}{
		"symbols.count": table.Len(),
		"interns.total": len(words) * opts.workers,
	})

	verifyStart := time.Now()
	err = verify(table, words)
	collector.AddTiming(annotations.LoadVerified, verifyStart, map[string]interface{}{
		"success":     err == nil,
		"error":       err,
		"words.count": len(words),
	})
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	fmt.Fprintln(stdout, report.StatsString(table))
	if opts.top > 0 {
		fmt.Fprintln(stdout, report.NewFormatter().FormatSymbols(table, opts.top))
	}

	if opts.metricsAddr != "" {
		return serveMetrics(ctx, opts.metricsAddr, table, stderr)
	}
	return nil
}

// readWords returns the whitespace-separated words of every file in paths,
// or of stdin when paths is empty.
func readWords(paths []string, stdin io.Reader) ([]string, error) {
	if len(paths) == 0 {
		return scanWords(stdin)
	}

	var words []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		fileWords, err := scanWords(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		words = append(words, fileWords...)
	}
	return words, nil
}

func scanWords(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	scanner.Split(bufio.ScanWords)

	var words []string
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return words, scanner.Err()
}

// internParallel interns every word once per worker.
func internParallel(ctx context.Context, table *symtab.Table, words []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i, word := range words {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				table.Intern(word)
			}
			return nil
		})
	}
	return g.Wait()
}

// verify checks that every word is interned and resolves to itself.
func verify(table *symtab.Table, words []string) error {
	for _, word := range words {
		sym, ok := table.Lookup(word)
		if !ok {
			return fmt.Errorf("word %q was not interned", word)
		}
		got, ok := table.Resolve(sym)
		if !ok {
			return fmt.Errorf("symbol %s for %q does not resolve", sym, word)
		}
		if got != word {
			return fmt.Errorf("symbol %s resolved to %q, want %q", sym, got, word)
		}
	}
	return nil
}

// serveMetrics serves /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, table *symtab.Table, stderr io.Writer) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics.NewCollector("load", table)); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(stderr, "Serving metrics on http://%s/metrics\n", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

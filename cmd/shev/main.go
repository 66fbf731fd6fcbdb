package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/shvbsle/shev/internal/backend/raster"
	teabackend "github.com/shvbsle/shev/internal/backend/tea"
	"github.com/shvbsle/shev/internal/backend/termloop"
	"github.com/shvbsle/shev/internal/config"
	"github.com/shvbsle/shev/internal/engine"
	"github.com/shvbsle/shev/internal/log"
	"github.com/shvbsle/shev/internal/resource"
	"github.com/shvbsle/shev/internal/source"
	"github.com/shvbsle/shev/internal/source/dir"
	"github.com/shvbsle/shev/internal/source/kube"
	"github.com/shvbsle/shev/internal/source/report"
)

// Version is set at build time.
var Version = "dev"

const defaultDumpSize = "120x40"

type flags struct {
	configPath string
	logLevel   string
	source     string
	backend    string
	script     string
	size       string
	everyFrame bool
	maxDepth   int
	hidden     bool
}

func parseFlags(args []string, sources *source.Registry) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet("shev", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Path to the config file. Defaults to the XDG config file shev/config.toml.")
	fs.StringVar(&f.logLevel, "log-level", "", "Set log level (debug, info, warn, error). Overrides the config.")
	fs.StringVar(&f.source, "source", "dir", "Where views come from: "+sourceNames(sources))
	fs.StringVar(&f.backend, "backend", "", "Drawing backend (tea, termloop, dump). Overrides the config.")
	fs.StringVar(&f.script, "script", "", "Play a key script headlessly and print the final frame. Implies -backend dump.")
	fs.StringVar(&f.size, "size", "", "Columns x rows of the dump backend, e.g. "+defaultDumpSize+". Defaults to the terminal size.")
	fs.BoolVar(&f.everyFrame, "every-frame", false, "Print every frame with the dump backend.")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "Directory levels the dir source reads. Overrides the config.")
	fs.BoolVar(&f.hidden, "hidden", false, "Include dot files in the dir source.")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shev [flags] [target]\n\nThe target is a directory, a results directory or a kubeconfig context,\ndepending on the source.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func sourceNames(sources *source.Registry) string {
	var names []string
	for _, s := range sources.List() {
		name := s.Name()
		if aliases := s.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func newSourceRegistry() *source.Registry {
	sources := source.NewRegistry()
	sources.Register(dir.New())
	sources.Register(report.New())
	sources.Register(kube.New())
	return sources
}

func main() {
	sources := newSourceRegistry()
	f, args, err := parseFlags(os.Args[1:], sources)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := config.CreateDefaultConfig(f.configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logFile, err := setupLogging(level, cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not setup logging: %v\n", err)
	} else {
		defer func() {
			if closeErr := logFile.Close(); closeErr != nil {
				log.G().Error("failed to close log file", "error", closeErr)
			}
		}()
	}

	log.G().Info("shev starting", "version", Version)
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		log.G().Debug("terminal size", "cols", w, "rows", h)
	} else {
		log.G().Debug("stdout is not a terminal", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, f, args, sources)
	stop()
	if errors.Is(err, context.Canceled) {
		log.G().Info("interrupted")
		err = nil
	}
	if err != nil {
		log.G().Error("shev failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.G().Info("shev exiting")
}

// applyFlags lets command line flags override the config file.
func applyFlags(cfg *config.Config, f *flags) error {
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.script != "" {
		cfg.Backend = config.BackendDump
	}
	if f.maxDepth != 0 {
		cfg.Source.MaxDepth = f.maxDepth
	}
	if f.hidden {
		cfg.Source.ShowHidden = true
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, f *flags, args []string, sources *source.Registry) error {
	src, ok := sources.Get(f.source)
	if !ok {
		return fmt.Errorf("unknown source %q, available: %s", f.source, sourceNames(sources))
	}

	var target string
	if len(args) > 0 {
		target = args[0]
	}

	log.G().Info("loading views", "source", src.Name(), "target", target)
	registry, initial, err := src.Load(ctx, cfg.SourceOptions(target))
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	opts.Loader = resource.NewLoader()

	e, err := engine.New(registry, initial, opts)
	if err != nil {
		return err
	}

	log.G().Info("starting backend", "backend", cfg.Backend, "views", registry.Len(), "initial", initial)
	switch cfg.Backend {
	case config.BackendTermloop:
		return termloop.New(e).Run(ctx)
	case config.BackendDump:
		return runDump(ctx, e, f)
	default:
		return teabackend.Run(ctx, e)
	}
}

func runDump(ctx context.Context, e *engine.Engine, f *flags) error {
	cols, rows, err := dumpSize(f.size)
	if err != nil {
		return err
	}

	var steps []raster.Step
	if f.script != "" {
		var r io.Reader = os.Stdin
		if f.script != "-" {
			file, err := os.Open(f.script)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer file.Close()
			r = file
		}
		if steps, err = raster.ParseScript(r); err != nil {
			return fmt.Errorf("parse script %s: %w", f.script, err)
		}
	}

	return e.Run(ctx, raster.NewDump(cols, rows, steps, os.Stdout, f.everyFrame))
}

// dumpSize parses COLSxROWS. Empty means the terminal size, or
// defaultDumpSize when stdout is not a terminal.
func dumpSize(size string) (int, int, error) {
	if size == "" {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
			return w, h, nil
		}
		size = defaultDumpSize
	}

	c, r, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected COLSxROWS", size)
	}
	cols, err := strconv.Atoi(c)
	if err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("size %q: invalid columns", size)
	}
	rows, err := strconv.Atoi(r)
	if err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("size %q: invalid rows", size)
	}
	return cols, rows, nil
}

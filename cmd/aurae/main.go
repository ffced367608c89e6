// ABOUTME: Development entrypoint for the aurae site server on a loopback address.
// ABOUTME: Merges config file, environment, and flags; optionally live-reloads templates; shuts down on signal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389-research/aurae/site"
)

var version = "dev"

// options holds what the command line asked for. Only flags the user
// actually set override the loaded configuration.
type options struct {
	configPath  string
	addr        string
	variant     string
	reload      bool
	showVersion bool
	set         map[string]bool
}

func main() {
	loadDotEnvAuto()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("aurae %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(opts))
}

// parseFlags parses command-line flags into options.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("aurae", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&opts.addr, "addr", site.DefaultAddr, "Listen address")
	fs.StringVar(&opts.variant, "variant", string(site.VariantLocal), "Deployment variant: local or vercel")
	fs.BoolVar(&opts.reload, "reload", false, "Reload templates when files change")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(stderr, version)
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "error: unexpected argument %q\n", fs.Arg(0))
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// buildConfig loads file and environment configuration, then applies flags
// that were set explicitly.
func buildConfig(opts options) (site.Config, error) {
	cfg, err := site.LoadConfig(opts.configPath)
	if err != nil {
		return site.Config{}, err
	}

	if opts.set["variant"] {
		v, err := site.ParseVariant(opts.variant)
		if err != nil {
			return site.Config{}, err
		}
		cfg.Variant = v
		cfg.Location = v.Location()
	}
	if opts.set["addr"] {
		cfg.Addr = opts.addr
	}
	if opts.set["reload"] {
		cfg.Reload = opts.reload
	}

	if err := cfg.Validate(); err != nil {
		return site.Config{}, err
	}
	return cfg, nil
}

// run starts the server and blocks until it exits.
// Returns an exit code: 0 for success, 1 for failure.
func run(opts options) int {
	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	srv, err := site.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reload {
		dirs := srv.Dirs()
		w, err := site.NewWatcher(srv.Templates(), dirs.Templates, dirs.Content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		go w.Run(ctx)
	}

	printStartup(os.Stderr, cfg, srv.Dirs())
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stderr, "shut down cleanly")
	return 0
}

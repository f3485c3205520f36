package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"

	"xasscan/pkg/clock"
	"xasscan/pkg/config"
	"xasscan/pkg/console"
	"xasscan/pkg/core"
	"xasscan/pkg/engine"
	"xasscan/pkg/net"
)

const banner = `
╔═══════════════════════════════════════════════════════════════╗
║   ██╗  ██╗ █████╗ ███████╗███████╗ ██████╗ █████╗ ███╗   ██╗  ║
║   ╚██╗██╔╝██╔══██╗██╔════╝██╔════╝██╔════╝██╔══██╗████╗  ██║  ║
║    ╚███╔╝ ███████║███████╗███████╗██║     ███████║██╔██╗ ██║  ║
║    ██╔██╗ ██╔══██║╚════██║╚════██║██║     ██╔══██║██║╚██╗██║  ║
║   ██╔╝ ██╗██║  ██║███████║███████║╚██████╗██║  ██║██║ ╚████║  ║
║   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝  ║
║                                                               ║
║          Entity exposure scanner for /xas/ client APIs        ║
╚═══════════════════════════════════════════════════════════════╝
`

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// environment is what run needs from the outside world.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock
	dial   fasthttp.DialFunc // nil means direct connections
}

func main() {
	os.Exit(run(os.Args[1:], environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		clock:  clock.Real(),
	}))
}

func run(args []string, env environment) int {
	var flags core.Config
	var configPath string
	var verbose, silent bool

	flagSet := pflag.NewFlagSet("xasscan", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.StringVarP(&flags.URL, "url", "u", "", "application URL (with or without /xas/)")
	flagSet.StringVarP(&flags.Cookie, "cookie", "c", "", "session cookie; a bare value is sent as XASSESSIONID")
	flagSet.StringVarP(&flags.Output, "output", "o", "", "path to the Excel report (default: timestamped name)")
	flagSet.BoolVarP(&flags.Microflows, "microflow", "m", false, "include microflow access info")
	flagSet.IntVarP(&flags.Limit, "limit", "l", config.Default().Limit, "max objects shown per entity sheet")
	flagSet.StringVarP(&flags.Proxy, "proxy", "p", "", "proxy URL (e.g. http://127.0.0.1:8080)")
	flagSet.IntVar(&flags.Timeout, "timeout", config.DefaultTimeout, "request timeout in seconds")
	flagSet.DurationVar(&flags.Delay, "delay", config.Default().Delay, "pause between entity queries")
	flagSet.StringVar(&configPath, "config", "", "YAML file with default settings")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	flagSet.BoolVarP(&silent, "silent", "s", false, "do not print the banner")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(env.stderr, flagSet)
			return exitOK
		}
		fmt.Fprintf(env.stderr, "error: %v\n", err)
		return exitUsage
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(env.stderr, flagSet)
		return exitOK
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		fmt.Fprintf(env.stderr, "error: unexpected argument: %s\n", extra[0])
		return exitUsage
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(env.stderr, "error: %v\n", err)
			return exitUsage
		}
	}
	applyFlags(flagSet, &cfg, flags)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(env.stderr, "error: %v\n", err)
		printHelp(env.stderr, flagSet)
		return exitUsage
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(env.stderr, &slog.HandlerOptions{Level: level}))

	printer := console.New(env.stdout)
	if !silent {
		printer.Raw(banner)
	}

	client, err := net.NewClient(net.Options{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Proxy:   cfg.Proxy,
		Dial:    env.dial,
	})
	if err != nil {
		fmt.Fprintf(env.stderr, "error: %v\n", err)
		return exitUsage
	}

	startTime := env.clock.Now()
	if _, err := engine.NewRunner(cfg, client, env.clock, printer, logger).Run(); err != nil {
		printer.Failure("%v", err)
		return exitFailed
	}

	printer.Info("Total time: %s", env.clock.Now().Sub(startTime).Round(time.Millisecond))
	return exitOK
}

// applyFlags copies every flag set on the command line over cfg.
func applyFlags(flagSet *pflag.FlagSet, cfg *core.Config, flags core.Config) {
	flagSet.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = flags.URL
		case "cookie":
			cfg.Cookie = flags.Cookie
		case "output":
			cfg.Output = flags.Output
		case "microflow":
			cfg.Microflows = flags.Microflows
		case "limit":
			cfg.Limit = flags.Limit
		case "proxy":
			cfg.Proxy = flags.Proxy
		case "timeout":
			cfg.Timeout = flags.Timeout
		case "delay":
			cfg.Delay = flags.Delay
		}
	})
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, banner)
	fmt.Fprintf(w, `
Queries every entity type visible to a session through the /xas/ client
API, records which attributes the session may write and saves the
findings to an Excel workbook for manual review.

USAGE:
    xasscan -u <url> [options]

OPTIONS:
%s
EXAMPLES:
    # Anonymous session
    xasscan -u https://app.example.com

    # Authenticated session, microflow report, through Burp
    xasscan -u https://app.example.com/xas/ -c 5f2e...c1 -m -p http://127.0.0.1:8080

    # Settings from a file, limit overridden
    xasscan --config scan.yaml -l 500 -o findings.xlsx
`, flagSet.FlagUsages())
}

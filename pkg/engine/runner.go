package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"xasscan/pkg/clock"
	"xasscan/pkg/config"
	"xasscan/pkg/console"
	"xasscan/pkg/core"
	"xasscan/pkg/extract"
	"xasscan/pkg/microflow"
	"xasscan/pkg/permission"
	"xasscan/pkg/report"
	"xasscan/pkg/session"
	"xasscan/pkg/xas"
)

// ErrNoSession is returned when the handshake does not yield both a
// credential and an anti-forgery token.
var ErrNoSession = errors.New("cannot continue without a valid session")

// Runner drives one scan: bootstrap, optional microflow report, entity
// sweep, aggregation and report rendering, strictly in that order.
type Runner struct {
	config    core.Config
	transport core.Transport
	clock     clock.Clock
	printer   *console.Printer
	logger    *slog.Logger
}

// Outcome is what a completed run produced.
type Outcome struct {
	Session  *core.Session
	Result   *extract.Result
	Writable map[string]map[string]bool
	// ReportPath is empty when no report was written.
	ReportPath string
}

func NewRunner(cfg core.Config, transport core.Transport, clk clock.Clock, printer *console.Printer, logger *slog.Logger) *Runner {
	return &Runner{
		config:    cfg,
		transport: transport,
		clock:     clk,
		printer:   printer,
		logger:    logger,
	}
}

// Run executes the scan. Only bootstrap and report-writing failures are
// returned as errors; per-entity failures are part of the outcome.
func (r *Runner) Run() (*Outcome, error) {
	url := xas.NormalizeURL(r.config.URL)
	r.printer.Info("Target: %s", url)

	sess, err := session.NewBootstrapper(r.transport, r.logger).Bootstrap(url, r.config.Cookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if sess.Cookies.Len() == 0 {
		return nil, fmt.Errorf("%w: no session cookie", ErrNoSession)
	}
	r.printer.Info("Using cookie header: %s", sess.Cookies.Header())
	r.printer.Info("Entity types: %d", len(sess.EntityTypes))

	outcome := &Outcome{Session: sess}

	if r.config.Microflows {
		microflow.NewReporter(r.transport, r.printer, r.logger).Report(sess)
	}

	if len(sess.EntityTypes) == 0 {
		r.printer.Warn("No entity types visible to this session, no report written")
		return outcome, nil
	}

	extractor := extract.NewExtractor(r.transport, r.clock, r.config.Delay, r.printer, r.logger)
	outcome.Result = extractor.Run(sess, sess.EntityTypes)
	outcome.Writable = permission.Map(outcome.Result.Records)

	path := r.config.Output
	if path == "" {
		path = config.DefaultOutput(r.clock.Now())
	}
	data := report.Data{
		Summaries: outcome.Result.Summaries,
		Records:   outcome.Result.Records,
		Writable:  outcome.Writable,
	}
	if err := report.Save(path, data, r.config.Limit); err != nil {
		return outcome, err
	}
	outcome.ReportPath = path

	r.printer.Blank()
	r.printer.Success("Excel report with entity tabs saved to: %s", path)
	return outcome, nil
}

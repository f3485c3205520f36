// Package extract sweeps the entity types of a session, fetching every
// instance of each and normalizing it into a flagged attribute record.
package extract

import (
	"log/slog"
	"time"

	"xasscan/pkg/clock"
	"xasscan/pkg/console"
	"xasscan/pkg/core"
	"xasscan/pkg/xas"
)

// DefaultDelay is the pause inserted after each entity query.
const DefaultDelay = 200 * time.Millisecond

// Result holds everything fetched by a sweep.
type Result struct {
	// Summaries has one entry per entity, in query order.
	Summaries []core.EntitySummary
	// Records holds the records of every entity that was fetched
	// successfully, untruncated.
	Records map[string][]core.Record
}

// Extractor queries entities one at a time.
type Extractor struct {
	transport core.Transport
	clock     clock.Clock
	delay     time.Duration
	printer   *console.Printer
	logger    *slog.Logger
}

// NewExtractor creates an Extractor that pauses for delay after each
// entity.
func NewExtractor(transport core.Transport, clk clock.Clock, delay time.Duration, printer *console.Printer, logger *slog.Logger) *Extractor {
	return &Extractor{
		transport: transport,
		clock:     clk,
		delay:     delay,
		printer:   printer,
		logger:    logger,
	}
}

// Run fetches all instances of each entity in order. A failure for one
// entity is recorded in its summary and never stops the sweep.
func (e *Extractor) Run(session *core.Session, entities []string) *Result {
	result := &Result{
		Summaries: make([]core.EntitySummary, 0, len(entities)),
		Records:   make(map[string][]core.Record),
	}

	e.printer.Info("Checking object counts and extracting attributes")
	e.printer.Blank()

	headers := xas.SessionHeaders(session)
	for _, entity := range entities {
		summary, records := e.fetch(session.URL, headers, entity)
		result.Summaries = append(result.Summaries, summary)
		if !summary.Failed {
			result.Records[entity] = records
		}
		e.clock.Sleep(e.delay)
	}

	return result
}

func (e *Extractor) fetch(url string, headers map[string]string, entity string) (core.EntitySummary, []core.Record) {
	summary := core.EntitySummary{Entity: entity}

	resp, err := e.transport.PostJSON(url, headers, xas.RetrieveRequest(entity))
	if err != nil {
		e.printer.Failure("%-50s Error: %v", entity, err)
		summary.Failed = true
		summary.Error = err.Error()
		return summary, nil
	}

	summary.Status = resp.Status
	if resp.Status != 200 {
		e.printer.Failure("%-50s HTTP %d", entity, resp.Status)
		summary.Failed = true
		return summary, nil
	}

	records, err := ParseObjects(resp.Body)
	if err != nil {
		e.printer.Failure("%-50s Error: %v", entity, err)
		summary.Failed = true
		summary.Error = err.Error()
		return summary, nil
	}

	summary.Objects = len(records)
	for _, record := range records {
		summary.WritableFields += record.Writable()
	}
	e.logger.Debug("entity fetched", "entity", entity, "objects", summary.Objects, "writable", summary.WritableFields)
	e.printer.Success("%-50s -> %d objects | %d value fields (non-readonly)", entity, summary.Objects, summary.WritableFields)

	return summary, records
}

// Package microflow reports which microflows the current session may
// call, based on the microflows map in the session data payload. It only
// reads metadata and never invokes a microflow.
package microflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"xasscan/pkg/console"
	"xasscan/pkg/core"
	"xasscan/pkg/xas"
)

// Microflow is one entry of the microflows map.
type Microflow struct {
	Definition
	IDs []string
}

// Definition is the decoded microflow key: the target entities (p) and
// the association chains (a).
type Definition struct {
	Entities     []string
	Associations [][]string
}

// ParseDefinition decodes a definition string. Anything that does not
// parse yields an empty Definition.
func ParseDefinition(def string) Definition {
	var raw struct {
		P json.RawMessage `json:"p"`
		A json.RawMessage `json:"a"`
	}
	if err := json.Unmarshal([]byte(def), &raw); err != nil {
		return Definition{}
	}

	var parsed Definition
	for _, item := range list(raw.P) {
		parsed.Entities = append(parsed.Entities, text(item))
	}
	for _, item := range list(raw.A) {
		chain, ok := item.([]interface{})
		if !ok {
			parsed.Associations = append(parsed.Associations, []string{text(item)})
			continue
		}
		steps := make([]string, 0, len(chain))
		for _, step := range chain {
			steps = append(steps, text(step))
		}
		parsed.Associations = append(parsed.Associations, steps)
	}
	return parsed
}

// SplitIDs splits a comma separated identifier list, dropping blanks.
func SplitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParseMicroflows extracts the microflows map from a session data body,
// ordered by definition string.
func ParseMicroflows(body []byte) ([]Microflow, error) {
	var payload struct {
		Microflows json.RawMessage `json:"microflows"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}

	var entries map[string]interface{}
	if len(payload.Microflows) > 0 {
		_ = json.Unmarshal(payload.Microflows, &entries)
	}

	defs := make([]string, 0, len(entries))
	for def := range entries {
		defs = append(defs, def)
	}
	sort.Strings(defs)

	flows := make([]Microflow, 0, len(defs))
	for _, def := range defs {
		ids, _ := entries[def].(string)
		flows = append(flows, Microflow{
			Definition: ParseDefinition(def),
			IDs:        SplitIDs(ids),
		})
	}
	return flows, nil
}

// Reporter fetches and prints the microflow access summary.
type Reporter struct {
	transport core.Transport
	printer   *console.Printer
	logger    *slog.Logger
}

// NewReporter creates a Reporter.
func NewReporter(transport core.Transport, printer *console.Printer, logger *slog.Logger) *Reporter {
	return &Reporter{transport: transport, printer: printer, logger: logger}
}

// Fetch repeats the session data request within session and returns the
// microflows it lists.
func (r *Reporter) Fetch(session *core.Session) ([]Microflow, error) {
	resp, err := r.transport.PostJSON(session.URL, xas.SessionHeaders(session), xas.SessionDataRequest())
	if err != nil {
		return nil, fmt.Errorf("microflow request: %w", err)
	}
	if resp.Status != 200 {
		return nil, fmt.Errorf("microflow check failed with status %d", resp.Status)
	}
	return ParseMicroflows(resp.Body)
}

// Report fetches the microflows and prints them. Errors are printed,
// not returned: the report is informational.
func (r *Reporter) Report(session *core.Session) {
	flows, err := r.Fetch(session)
	if err != nil {
		r.logger.Debug("microflow report failed", "error", err)
		r.printer.Failure("%v", err)
		return
	}
	Print(r.printer, flows)
}

// Print renders flows in human-readable form.
func Print(printer *console.Printer, flows []Microflow) {
	if len(flows) == 0 {
		printer.Warn("No microflows found.")
		printer.Blank()
		return
	}

	printer.Info("Microflows available to this session:")
	printer.Blank()

	for _, flow := range flows {
		targets := "None"
		if len(flow.Entities) > 0 {
			targets = strings.Join(flow.Entities, ", ")
		}
		printer.Success("Microflow Targets: %-60s -> %d flow(s)", targets, len(flow.IDs))

		if len(flow.Associations) > 0 {
			chains := make([]string, len(flow.Associations))
			for i, chain := range flow.Associations {
				chains[i] = strings.Join(chain, " → ")
			}
			printer.Detail("Associations: %s", strings.Join(chains, ", "))
		}
		for _, id := range flow.IDs {
			printer.Detail("ID: %s", id)
		}
	}
	printer.Blank()
}

func list(raw json.RawMessage) []interface{} {
	if len(raw) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var items []interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil
	}
	return items
}

func text(v interface{}) string {
	return core.ValueOf(v).String()
}

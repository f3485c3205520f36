// Package permission derives, per entity and per attribute column,
// whether the session was allowed to write any observed instance.
package permission

import (
	"sort"

	"xasscan/pkg/core"
)

// Columns returns the union of attribute names across records: GUIDKey
// first, the rest sorted.
func Columns(records []core.Record) []string {
	seen := map[string]bool{core.GUIDKey: true}
	var rest []string
	for _, record := range records {
		for name := range record {
			if !seen[name] {
				seen[name] = true
				rest = append(rest, name)
			}
		}
	}
	sort.Strings(rest)
	return append([]string{core.GUIDKey}, rest...)
}

// Writable maps every column of records to true when at least one record
// carries that attribute with readonly = false. A record lacking the
// attribute counts as an empty readonly value. Pass the full record set,
// not a display-limited slice.
func Writable(records []core.Record) map[string]bool {
	columns := Columns(records)
	writable := make(map[string]bool, len(columns))
	for _, column := range columns {
		writable[column] = false
	}
	for _, record := range records {
		for _, column := range columns {
			if attr, ok := record[column]; ok && !attr.ReadOnly {
				writable[column] = true
			}
		}
	}
	return writable
}

// Map computes Writable for every entity in records.
func Map(records map[string][]core.Record) map[string]map[string]bool {
	result := make(map[string]map[string]bool, len(records))
	for entity, set := range records {
		result[entity] = Writable(set)
	}
	return result
}

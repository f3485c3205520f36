package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"xasscan/pkg/core"
)

// ParseObjects decodes a retrieve_by_xpath response body into records.
// Only a body that is not a JSON object is an error; a missing or
// malformed objects list yields no records and entries that are not
// objects are skipped.
func ParseObjects(body []byte) ([]core.Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode objects: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode objects: response is not an object")
	}

	objects, _ := payload["objects"].([]interface{})
	records := make([]core.Record, 0, len(objects))
	for _, raw := range objects {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, BuildRecord(obj))
	}
	return records, nil
}

// BuildRecord normalizes one server object. The object's guid is stored
// under core.GUIDKey and is always readonly. Every attribute whose entry
// is a {"value": ..., "readonly": ...} object is copied with its literal
// value; a missing readonly flag means writable. Anything else is
// ignored.
func BuildRecord(obj map[string]interface{}) core.Record {
	guid := core.Text("")
	if raw, ok := obj["guid"]; ok {
		guid = core.ValueOf(raw)
	}
	record := core.Record{core.GUIDKey: {Value: guid, ReadOnly: true}}

	attributes, _ := obj["attributes"].(map[string]interface{})
	for name, raw := range attributes {
		if name == core.GUIDKey {
			continue
		}
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		value, ok := entry["value"]
		if !ok {
			continue
		}
		record[name] = core.Attribute{
			Value:    core.ValueOf(value),
			ReadOnly: truthy(entry["readonly"]),
		}
	}
	return record
}

// truthy interprets a loosely typed flag.
func truthy(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "false"
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case nil:
		return false
	default:
		return true
	}
}

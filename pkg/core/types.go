package core

import "time"

// Config holds the configuration for a scan
type Config struct {
	URL        string        `yaml:"url"`
	Cookie     string        `yaml:"cookie"`
	Output     string        `yaml:"output"`
	Microflows bool          `yaml:"microflows"`
	Limit      int           `yaml:"limit"`
	Proxy      string        `yaml:"proxy"`
	Timeout    int           `yaml:"timeout"` // seconds
	Delay      time.Duration `yaml:"delay"`   // pause between entity queries
}

// Session is the state harvested by the bootstrap handshake. It is not
// modified after Bootstrap returns.
type Session struct {
	URL         string
	Cookies     Cookies
	CSRFToken   string
	EntityTypes []string
}

// Cookies is the merged credential set exposed to the rest of the scan.
type Cookies interface {
	Header() string
	Len() int
}

// GUIDKey is the synthetic attribute carrying the object identifier.
const GUIDKey = "_guid"

// Attribute is one field of a fetched object together with the
// server-asserted readonly flag.
type Attribute struct {
	Value    Value
	ReadOnly bool
}

// Record is a normalized object: attribute name -> attribute. GUIDKey is
// always present and always readonly.
type Record map[string]Attribute

// Writable counts the attributes the session may modify.
func (r Record) Writable() int {
	n := 0
	for _, attr := range r {
		if !attr.ReadOnly {
			n++
		}
	}
	return n
}

// EntitySummary is one row of the report's Summary sheet.
type EntitySummary struct {
	Entity         string `json:"entity"`
	Objects        int    `json:"objects"`
	WritableFields int    `json:"writable_fields"`
	Failed         bool   `json:"failed"`
	Status         int    `json:"status,omitempty"`
	Error          string `json:"error,omitempty"` // transport failure text
}

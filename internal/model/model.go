package model

import "time"

// Untagged is the tag assigned to records that match no lookup entry.
const Untagged = "Untagged"

// LookupKey joins flow records against the lookup table.
// Port is the trimmed destination port string, Protocol the lowercase protocol name.
type LookupKey struct {
	Port     string
	Protocol string
}

// LookupTable maps a (port, protocol) pair to its tag. It is built once and
// treated as read-only afterwards.
type LookupTable map[LookupKey]string

// FlowRecord holds the fields of a single flow log line that classification uses.
type FlowRecord struct {
	Version        string
	DstPort        string
	ProtocolNumber string
	Protocol       string // Resolved protocol name, e.g. "tcp"
}

// Key returns the lookup key for the record.
func (r FlowRecord) Key() LookupKey {
	return LookupKey{Port: r.DstPort, Protocol: r.Protocol}
}

// Classification is the outcome of classifying one flow record.
type Classification struct {
	Tag string
	Key LookupKey
}

// TagCounts maps a tag to the number of records carrying it.
type TagCounts map[string]uint64

// PortProtocolCounts maps a (port, protocol) pair to the number of records seen for it.
type PortProtocolCounts map[LookupKey]uint64

// Counts is the pair of frequency tables produced by one pass over the flow log.
type Counts struct {
	Tags          TagCounts
	PortProtocols PortProtocolCounts
}

// TagCount is one row of the tag report.
type TagCount struct {
	Tag   string `json:"tag"`
	Count uint64 `json:"count"`
}

// PortProtocolCount is one row of the port/protocol report.
type PortProtocolCount struct {
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
	Count    uint64 `json:"count"`
}

// Report is the fully materialized, ordered output of a run.
type Report struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	FlowLog       string              `json:"flow_log"`
	LookupTable   string              `json:"lookup_table"`
	Tags          []TagCount          `json:"tags"`
	PortProtocols []PortProtocolCount `json:"port_protocols"`
}

// TotalRecords returns the number of classified records the report covers.
func (r *Report) TotalRecords() uint64 {
	var total uint64
	for _, t := range r.Tags {
		total += t.Count
	}
	return total
}

package protocol

import (
	"strconv"
	"strings"

	"FlowTagger/internal/model"

	"github.com/google/gopacket/layers"
)

// SupportedVersion is the only flow log version marker that is classified.
const SupportedVersion = "2"

// MinFields is the minimum number of whitespace separated fields in a version 2 record.
const MinFields = 14

// Zero-based positions of the fields used for classification.
const (
	fieldVersion  = 0
	fieldDstPort  = 6
	fieldProtocol = 7
)

// names maps IANA protocol numbers, as they appear in the log, to protocol names.
// Names are spelled here because IPProtocol.String yields "ICMPv4", while lookup
// tables key on "icmp".
var names = map[string]string{
	strconv.Itoa(int(layers.IPProtocolTCP)):    "tcp",
	strconv.Itoa(int(layers.IPProtocolUDP)):    "udp",
	strconv.Itoa(int(layers.IPProtocolICMPv4)): "icmp",
}

// ProtocolName resolves a protocol number to its name. Numbers without a known
// name are returned lowercased.
func ProtocolName(number string) string {
	if name, ok := names[number]; ok {
		return name
	}
	return strings.ToLower(number)
}

// ParseRecord splits a flow log line into the fields used for classification.
// It reports false for lines that are too short or carry another version marker.
func ParseRecord(line string) (model.FlowRecord, bool) {
	parts := strings.Fields(line)
	if len(parts) < MinFields || parts[fieldVersion] != SupportedVersion {
		return model.FlowRecord{}, false
	}

	return model.FlowRecord{
		Version:        parts[fieldVersion],
		DstPort:        parts[fieldDstPort],
		ProtocolNumber: parts[fieldProtocol],
		Protocol:       ProtocolName(parts[fieldProtocol]),
	}, true
}

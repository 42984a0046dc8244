package classifier

import (
	"testing"

	"FlowTagger/internal/model"

	"gotest.tools/v3/assert"
)

var table = model.LookupTable{
	{Port: "80", Protocol: "tcp"}:  "web",
	{Port: "53", Protocol: "udp"}:  "dns",
	{Port: "0", Protocol: "icmp"}: "ping",
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.Classification
	}{
		{
			name: "tagged tcp",
			line: "2 123456789012 eni-0 10.0.0.1 10.0.0.2 443 80 6 10 1000 0 0 ACCEPT OK",
			want: model.Classification{Tag: "web", Key: model.LookupKey{Port: "80", Protocol: "tcp"}},
		},
		{
			name: "tagged udp",
			line: "2 123456789012 eni-0 10.0.0.1 10.0.0.2 1024 53 17 10 1000 0 0 ACCEPT OK",
			want: model.Classification{Tag: "dns", Key: model.LookupKey{Port: "53", Protocol: "udp"}},
		},
		{
			name: "protocol mismatch is untagged",
			line: "2 123456789012 eni-0 10.0.0.1 10.0.0.2 1024 80 17 10 1000 0 0 ACCEPT OK",
			want: model.Classification{Tag: model.Untagged, Key: model.LookupKey{Port: "80", Protocol: "udp"}},
		},
		{
			name: "unknown protocol number passes through",
			line: "2 123456789012 eni-0 10.0.0.1 10.0.0.2 1024 80 47 10 1000 0 0 ACCEPT OK",
			want: model.Classification{Tag: model.Untagged, Key: model.LookupKey{Port: "80", Protocol: "47"}},
		},
	}

	c := New(table)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.line)
			assert.Assert(t, ok)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestClassify_DiscardsShortLines(t *testing.T) {
	c := New(table)
	_, ok := c.Classify("2 123456789012 eni-0 10.0.0.1 10.0.0.2 443 80 6 10 1000")
	assert.Assert(t, !ok)
}

func TestClassify_EmptyTable(t *testing.T) {
	c := New(model.LookupTable{})
	got, ok := c.Classify("2 123456789012 eni-0 10.0.0.1 10.0.0.2 443 80 6 10 1000 0 0 ACCEPT OK")
	assert.Assert(t, ok)
	assert.Equal(t, got.Tag, model.Untagged)
}

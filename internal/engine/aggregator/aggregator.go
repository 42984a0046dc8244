package aggregator

import "FlowTagger/internal/model"

// Aggregator folds classifications into tag and port/protocol frequency tables.
// It is not safe for concurrent use; the pipeline feeds it from a single goroutine.
type Aggregator struct {
	tags  model.TagCounts
	ports model.PortProtocolCounts
	total uint64
}

// New creates an empty Aggregator.
func New() *Aggregator {
	a := &Aggregator{}
	a.Reset()
	return a
}

// Add counts one classified record in both tables.
func (a *Aggregator) Add(c model.Classification) {
	a.tags[c.Tag]++
	a.ports[c.Key]++
	a.total++
}

// Total returns the number of records added since the last reset.
func (a *Aggregator) Total() uint64 {
	return a.total
}

// Snapshot returns a copy of the current counts that is independent of later Adds.
func (a *Aggregator) Snapshot() model.Counts {
	tags := make(model.TagCounts, len(a.tags))
	for k, v := range a.tags {
		tags[k] = v
	}
	ports := make(model.PortProtocolCounts, len(a.ports))
	for k, v := range a.ports {
		ports[k] = v
	}
	return model.Counts{Tags: tags, PortProtocols: ports}
}

// Reset clears all counts.
func (a *Aggregator) Reset() {
	a.tags = make(model.TagCounts)
	a.ports = make(model.PortProtocolCounts)
	a.total = 0
}

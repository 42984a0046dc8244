package classifier

import (
	"FlowTagger/internal/engine/protocol"
	"FlowTagger/internal/model"
)

// Classifier maps flow log lines to tags using a lookup table.
type Classifier struct {
	table model.LookupTable
}

// New creates a Classifier over a loaded lookup table. The table must not be
// modified afterwards.
func New(table model.LookupTable) *Classifier {
	return &Classifier{table: table}
}

// Classify parses one flow log line and resolves its tag. Lines that are not
// version 2 records yield false.
func (c *Classifier) Classify(line string) (model.Classification, bool) {
	rec, ok := protocol.ParseRecord(line)
	if !ok {
		return model.Classification{}, false
	}
	return c.ClassifyRecord(rec), true
}

// ClassifyRecord resolves the tag of an already parsed record.
func (c *Classifier) ClassifyRecord(rec model.FlowRecord) model.Classification {
	key := rec.Key()
	tag, ok := c.table[key]
	if !ok {
		tag = model.Untagged
	}
	return model.Classification{Tag: tag, Key: key}
}

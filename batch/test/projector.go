package test

import (
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/projection"
)

// Projector panics with Panic for records listed in PanicRecords and delegates the rest
type Projector struct {
	Delegate     batch.RecordProjector
	Panic        interface{}
	PanicRecords map[string]bool
}

var _ batch.RecordProjector = &Projector{}

func (p *Projector) Project(record projection.Record, fieldMaps []projection.FieldMap, metadata projection.MetadataLookup) *projection.Projection {
	if p.PanicRecords[record.Id] {
		panic(p.Panic)
	}
	return p.Delegate.Project(record, fieldMaps, metadata)
}

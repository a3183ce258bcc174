package projection

import (
	"github.com/susom/smartdata-worker/choices"
	"github.com/susom/smartdata-worker/formatter"
	"go.uber.org/zap"
	"strings"
)

const (
	entrySeparator = " : "
	partSeparator  = " && "
)

type Projector struct {
	logger *zap.SugaredLogger
}

func NewProjector(logger *zap.SugaredLogger) *Projector {
	return &Projector{
		logger: logger,
	}
}

// Project formats the source fields of a record and concatenates them per target SmartData element.
// Targets for which no source field produced a value are omitted. Field maps are processed in
// declaration order, a duplicate target replaces the value of the earlier one.
func (p *Projector) Project(record Record, fieldMaps []FieldMap, metadata MetadataLookup) *Projection {
	result := NewProjection()

	for _, fieldMap := range fieldMaps {
		if fieldMap.Target == "" {
			continue
		}

		var parts []string
		for _, source := range fieldMap.Sources {
			entry, ok := p.formatEntry(record, source, metadata)
			if ok {
				parts = append(parts, entry)
			}
		}

		if len(parts) > 0 {
			result.Set(fieldMap.Target, strings.Join(parts, partSeparator))
		}
	}

	return result
}

func (p *Projector) formatEntry(record Record, source string, metadata MetadataLookup) (string, bool) {
	field, ok := metadata.Lookup(source)
	if !ok {
		p.logger.Debugw("skipping source field without metadata", "recordId", record.Id, "field", source)
		return "", false
	}

	label := NormalizeLabel(PipeLabel(field.Label, record))
	if label == "" {
		label = source
	}

	table := choices.Decode(field.Choices)
	value, ok := formatter.Format(record.Value(source), field.Type, table)
	if !ok {
		return "", false
	}

	return label + entrySeparator + value, true
}

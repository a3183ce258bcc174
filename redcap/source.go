package redcap

import (
	"context"
	"fmt"
	"github.com/spf13/cast"
	"github.com/susom/smartdata-worker/choices"
	"github.com/susom/smartdata-worker/formatter"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/settings"
	"go.uber.org/zap"
	"strings"
	"unicode"
)

const (
	checkboxSeparator      = "___"
	repeatInstrumentColumn = "redcap_repeat_instrument"
	eventNameColumn        = "redcap_event_name"
)

// Source provides the data dictionary and the records of REDCap projects
type Source struct {
	client *Client
	logger *zap.SugaredLogger
}

func NewSource(client *Client, logger *zap.SugaredLogger) *Source {
	return &Source{
		client: client,
		logger: logger,
	}
}

// Dictionary returns the field metadata of the project. The first field is the record id field.
func (s *Source) Dictionary(ctx context.Context, project settings.ProjectSettings) (projection.Dictionary, string, error) {
	fields, err := s.client.ExportMetadata(ctx, project.ApiToken)
	if err != nil {
		return nil, "", err
	}
	if len(fields) == 0 {
		return nil, "", fmt.Errorf("project %s has no fields", project.Id)
	}

	dictionary := make(projection.Dictionary, len(fields))
	for _, field := range fields {
		dictionary[field.FieldName] = projection.FieldMetadata{
			Name:    field.FieldName,
			Label:   field.Label,
			Type:    formatter.ParseFieldType(field.FieldType),
			Choices: field.Choices,
		}
	}

	return dictionary, fields[0].FieldName, nil
}

// Records returns one record per record id with the fields needed by the project's field maps.
// Repeating instrument rows are ignored, and only the first row of each record is used.
func (s *Source) Records(ctx context.Context, project settings.ProjectSettings, dictionary projection.Dictionary, recordIdField string) ([]projection.Record, error) {
	request := RecordsRequest{
		Fields: requestedFields(project, dictionary, recordIdField),
	}
	if project.Event != "" {
		request.Events = []string{project.Event}
	}

	rows, err := s.client.ExportRecords(ctx, project.ApiToken, request)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []projection.Record
	for _, row := range rows {
		if cast.ToString(row[repeatInstrumentColumn]) != "" {
			continue
		}
		if project.Event != "" {
			if event, ok := row[eventNameColumn]; ok && cast.ToString(event) != project.Event {
				continue
			}
		}

		id := cast.ToString(row[recordIdField])
		if id == "" {
			s.logger.Warnw("ignoring row without record id", "projectId", project.Id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		records = append(records, decodeRecord(id, row, dictionary))
	}

	return records, nil
}

func requestedFields(project settings.ProjectSettings, dictionary projection.Dictionary, recordIdField string) []string {
	fields := []string{recordIdField}
	added := map[string]bool{recordIdField: true}
	add := func(field string) {
		if field == "" || added[field] {
			return
		}
		if _, ok := dictionary[field]; !ok {
			return
		}
		added[field] = true
		fields = append(fields, field)
	}

	add(project.IdentifierField)
	for _, fieldMap := range project.FieldMaps {
		for _, source := range fieldMap.Sources {
			add(source)
		}
	}
	for _, field := range pipedFields(project, dictionary) {
		add(field)
	}

	return fields
}

// pipedFields returns the fields referenced by the labels of the mapped fields
func pipedFields(project settings.ProjectSettings, dictionary projection.Dictionary) []string {
	var fields []string
	for _, fieldMap := range project.FieldMaps {
		for _, source := range fieldMap.Sources {
			if metadata, ok := dictionary[source]; ok {
				fields = append(fields, projection.PipedFields(metadata.Label)...)
			}
		}
	}
	return fields
}

func decodeRecord(id string, row map[string]interface{}, dictionary projection.Dictionary) projection.Record {
	record := projection.Record{
		Id:     id,
		Values: make(map[string]formatter.RawValue, len(row)),
	}

	for name, metadata := range dictionary {
		if metadata.Type == formatter.FieldTypeCheckbox {
			if value, ok := decodeCheckbox(name, metadata.Choices, row); ok {
				record.Values[name] = value
			}
			continue
		}
		if value, ok := row[name]; ok {
			record.Values[name] = formatter.Scalar(cast.ToString(value))
		}
	}

	return record
}

// decodeCheckbox folds the "field___code" columns of a checkbox field into flags in choice order
func decodeCheckbox(name, encodedChoices string, row map[string]interface{}) (formatter.RawValue, bool) {
	var flags []formatter.Flag
	for _, choice := range choices.Parse(encodedChoices) {
		value, ok := row[CheckboxColumn(name, choice.Code)]
		if !ok {
			continue
		}
		flags = append(flags, formatter.Flag{
			Code:  choice.Code,
			Value: cast.ToString(value),
		})
	}
	if len(flags) == 0 {
		return formatter.RawValue{}, false
	}
	return formatter.MultiFlag(flags...), true
}

// CheckboxColumn returns the export column of a checkbox option. Codes are lower cased
// and characters other than letters and digits are replaced with underscores.
func CheckboxColumn(field, code string) string {
	normalized := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return '_'
	}, code)
	return field + checkboxSeparator + normalized
}

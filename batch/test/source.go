package test

import (
	"context"
	"fmt"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/settings"
)

type Project struct {
	Dictionary    projection.Dictionary
	RecordIdField string
	Records       []projection.Record
	// Returned by Dictionary when set
	DictionaryErr error
	// Returned by Records when set
	RecordsErr    error
}

type RecordSource struct {
	Projects map[string]Project
}

var _ batch.RecordSource = &RecordSource{}

func NewTestRecordSource() *RecordSource {
	return &RecordSource{
		Projects: make(map[string]Project),
	}
}

func (r *RecordSource) Dictionary(_ context.Context, project settings.ProjectSettings) (projection.Dictionary, string, error) {
	p, ok := r.Projects[project.Id]
	if !ok {
		return nil, "", fmt.Errorf("project %s not found", project.Id)
	}
	if p.DictionaryErr != nil {
		return nil, "", p.DictionaryErr
	}
	return p.Dictionary, p.RecordIdField, nil
}

func (r *RecordSource) Records(_ context.Context, project settings.ProjectSettings, _ projection.Dictionary, _ string) ([]projection.Record, error) {
	p, ok := r.Projects[project.Id]
	if !ok {
		return nil, fmt.Errorf("project %s not found", project.Id)
	}
	if p.RecordsErr != nil {
		return nil, p.RecordsErr
	}
	return p.Records, nil
}

type SettingsStore struct {
	Projects []settings.ProjectSettings
	Err      error
}

var _ settings.Store = &SettingsStore{}

func (s *SettingsStore) EnabledProjects(_ context.Context) ([]settings.ProjectSettings, error) {
	return s.Projects, s.Err
}

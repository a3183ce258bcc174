package settings

import (
	"context"
	"errors"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	NewConfig,
	NewStore,
)

var ErrNotConfigured = errors.New("project settings source is not configured")

// ProjectSettings configures the sync of a single REDCap project
type ProjectSettings struct {
	Id      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	Enabled bool   `json:"enabled" bson:"enabled"`

	// REDCap API token of the project
	ApiToken string `json:"apiToken" bson:"apiToken"`
	// The field holding the patient identifier (e.g. MRN) in Epic
	IdentifierField string `json:"identifierField" bson:"identifierField"`
	// Unique event name used for longitudinal projects, the first row of each record is used when empty
	Event string `json:"event,omitempty" bson:"event,omitempty"`

	FieldMaps []projection.FieldMap `json:"fieldMaps" bson:"fieldMaps"`
}

type Store interface {
	EnabledProjects(ctx context.Context) ([]ProjectSettings, error)
}

type Config struct {
	ProjectsFile       string `envconfig:"SMARTDATA_PROJECTS_FILE"`
	ProjectsCollection string `envconfig:"SMARTDATA_PROJECTS_COLLECTION" default:"projects"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// NewStore prefers the projects file over mongo when both are configured
func NewStore(config Config, clients *store.Clients, logger *zap.SugaredLogger) (Store, error) {
	if config.ProjectsFile != "" {
		logger.Infow("loading project settings from file", "path", config.ProjectsFile)
		return NewFileStore(config.ProjectsFile), nil
	}
	if clients.Mongo != nil {
		logger.Infow("loading project settings from mongo", "collection", config.ProjectsCollection)
		return NewMongoStore(clients.Mongo.Collection(config.ProjectsCollection)), nil
	}
	return nil, fmt.Errorf("unable to create settings store: %w", ErrNotConfigured)
}

func filterEnabled(projects []ProjectSettings) []ProjectSettings {
	var enabled []ProjectSettings
	for _, project := range projects {
		if project.Enabled {
			enabled = append(enabled, project)
		}
	}
	return enabled
}

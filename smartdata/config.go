package smartdata

import (
	"github.com/kelseyhightower/envconfig"
	"time"
)

type Config struct {
	BaseURL        string        `envconfig:"SMARTDATA_BASE_URL"`
	Timeout        time.Duration `envconfig:"SMARTDATA_TIMEOUT" default:"30s"`
	ConnectTimeout time.Duration `envconfig:"SMARTDATA_CONNECT_TIMEOUT" default:"5s"`
	TLSInsecure    bool          `envconfig:"SMARTDATA_TLS_INSECURE" default:"false"`

	// Defaults for the payload identity fields
	Options
}

// Options are the identity fields of a SmartData payload. Zero fields are replaced with the configured defaults.
type Options struct {
	EntityIDType    string `envconfig:"SMARTDATA_ENTITY_ID_TYPE" default:"MRN"`
	ContextName     string `envconfig:"SMARTDATA_CONTEXT_NAME" default:"PATIENT"`
	SmartDataIDType string `envconfig:"SMARTDATA_SMARTDATA_ID_TYPE" default:"SDI"`
	Source          string `envconfig:"SMARTDATA_SOURCE" default:"Web Service"`
	UserID          string `envconfig:"SMARTDATA_USER_ID"`
	UserIDType      string `envconfig:"SMARTDATA_USER_ID_TYPE" default:"External"`
	ContactID       string `envconfig:"SMARTDATA_CONTACT_ID"`
	ContactIDType   string `envconfig:"SMARTDATA_CONTACT_ID_TYPE"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		EntityIDType:    "MRN",
		ContextName:     "PATIENT",
		SmartDataIDType: "SDI",
		Source:          "Web Service",
		UserIDType:      "External",
	}
}

func (o Options) withDefaults(defaults Options) Options {
	result := o
	if result.EntityIDType == "" {
		result.EntityIDType = defaults.EntityIDType
	}
	if result.ContextName == "" {
		result.ContextName = defaults.ContextName
	}
	if result.SmartDataIDType == "" {
		result.SmartDataIDType = defaults.SmartDataIDType
	}
	if result.Source == "" {
		result.Source = defaults.Source
	}
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.UserIDType == "" {
		result.UserIDType = defaults.UserIDType
	}
	if result.ContactID == "" {
		result.ContactID = defaults.ContactID
	}
	if result.ContactIDType == "" {
		result.ContactIDType = defaults.ContactIDType
	}
	return result
}

package redcap

import (
	"context"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/kelseyhightower/envconfig"
	"github.com/susom/smartdata-worker/httpclient"
	"net/url"
	"strconv"
	"time"
)

const (
	contentMetadata = "metadata"
	contentRecord   = "record"
	formatJSON      = "json"
)

type Config struct {
	APIURL      string        `envconfig:"REDCAP_API_URL"`
	Timeout     time.Duration `envconfig:"REDCAP_TIMEOUT" default:"60s"`
	TLSInsecure bool          `envconfig:"REDCAP_TLS_INSECURE" default:"false"`
}

func NewConfig() (Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// MetadataField is a row of the data dictionary export
type MetadataField struct {
	FieldName string `json:"field_name"`
	FormName  string `json:"form_name"`
	FieldType string `json:"field_type"`
	Label     string `json:"field_label"`
	Choices   string `json:"select_choices_or_calculations"`
}

type ErrorResponse struct {
	Message string `json:"error"`
}

func (e ErrorResponse) Error() string {
	return e.Message
}

// RecordsRequest selects the rows of a flat record export
type RecordsRequest struct {
	Fields []string
	Events []string
}

type Client struct {
	config      Config
	restyClient *resty.Client
}

func NewClient(config Config) *Client {
	restyClient := httpclient.NewRestyClient(httpclient.Options{
		Timeout:            config.Timeout,
		InsecureSkipVerify: config.TLSInsecure,
	})
	return NewClientWithResty(config, restyClient)
}

func NewClientWithResty(config Config, restyClient *resty.Client) *Client {
	return &Client{
		config:      config,
		restyClient: restyClient,
	}
}

func (c *Client) ExportMetadata(ctx context.Context, apiToken string) ([]MetadataField, error) {
	var fields []MetadataField
	if err := c.export(ctx, apiToken, contentMetadata, url.Values{}, &fields); err != nil {
		return nil, fmt.Errorf("unable to export metadata: %w", err)
	}
	return fields, nil
}

// ExportRecords returns the raw rows of a flat export. Values are kept as decoded from JSON.
func (c *Client) ExportRecords(ctx context.Context, apiToken string, request RecordsRequest) ([]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("type", "flat")
	params.Set("rawOrLabel", "raw")
	for i, field := range request.Fields {
		params.Set("fields["+strconv.Itoa(i)+"]", field)
	}
	for i, event := range request.Events {
		params.Set("events["+strconv.Itoa(i)+"]", event)
	}

	var rows []map[string]interface{}
	if err := c.export(ctx, apiToken, contentRecord, params, &rows); err != nil {
		return nil, fmt.Errorf("unable to export records: %w", err)
	}
	return rows, nil
}

func (c *Client) export(ctx context.Context, apiToken, content string, params url.Values, result interface{}) error {
	if c.config.APIURL == "" {
		return fmt.Errorf("redcap api url is not set")
	}

	params.Set("token", apiToken)
	params.Set("content", content)
	params.Set("format", formatJSON)
	params.Set("returnFormat", formatJSON)

	httpErr := &ErrorResponse{}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormDataFromValues(params).
		SetResult(result).
		SetError(httpErr).
		ForceContentType("application/json").
		Post(c.config.APIURL)

	if err != nil {
		return err
	}
	if resp.IsError() {
		if httpErr.Message == "" {
			return fmt.Errorf("unexpected response status %d", resp.StatusCode())
		}
		return httpErr
	}
	return nil
}

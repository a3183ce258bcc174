package smartdata

import (
	"context"
	"github.com/go-resty/resty/v2"
	"github.com/susom/smartdata-worker/httpclient"
	"net/url"
	"strings"
)

const (
	setValuesPath = "/api/epic/2013/Clinical/Utility/SETSMARTDATAVALUES/SmartData/Values"
	getValuesPath = "/api/epic/2013/Clinical/Utility/GETSMARTDATAVALUES/SmartData/Values"
)

// TokenProvider returns the bearer token used for SmartData requests
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	config      Config
	tokens      TokenProvider
	restyClient *resty.Client
}

func NewClient(config Config, tokens TokenProvider) *Client {
	restyClient := httpclient.NewRestyClient(httpclient.Options{
		Timeout:            config.Timeout,
		ConnectTimeout:     config.ConnectTimeout,
		InsecureSkipVerify: config.TLSInsecure,
	})
	return NewClientWithResty(config, tokens, restyClient)
}

func NewClientWithResty(config Config, tokens TokenProvider, restyClient *resty.Client) *Client {
	return &Client{
		config:      config,
		tokens:      tokens,
		restyClient: restyClient,
	}
}

// Write sets a single value of a SmartData element
func (c *Client) Write(ctx context.Context, entityID, smartDataID, value string, opts Options) (*Response, error) {
	if entityID == "" {
		return nil, &ValidationError{Field: "entity id"}
	}
	if smartDataID == "" {
		return nil, &ValidationError{Field: "smartdata id"}
	}

	endpoint, err := c.endpoint(setValuesPath)
	if err != nil {
		return nil, err
	}

	payload := NewSetValuesRequest(entityID, smartDataID, value, opts.withDefaults(c.config.Options))
	return c.send(ctx, resty.MethodPut, endpoint, payload)
}

// Read returns the values of a SmartData element, or of all elements of the entity when smartDataID is empty
func (c *Client) Read(ctx context.Context, entityID, smartDataID string, opts Options) (*Response, error) {
	if entityID == "" {
		return nil, &ValidationError{Field: "entity id"}
	}

	endpoint, err := c.endpoint(getValuesPath)
	if err != nil {
		return nil, err
	}

	payload := NewGetValuesRequest(entityID, smartDataID, opts.withDefaults(c.config.Options))
	return c.send(ctx, resty.MethodPost, endpoint, payload)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload interface{}) (*Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Execute(method, endpoint)

	if err != nil {
		return nil, &RemoteAPIError{Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &RemoteAPIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return newResponse(resp.StatusCode(), resp.Body()), nil
}

func (c *Client) endpoint(path string) (string, error) {
	if c.config.BaseURL == "" {
		return "", &ConfigurationError{Reason: "base url is not set"}
	}
	base, err := url.Parse(c.config.BaseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return "", &ConfigurationError{Reason: "base url must be absolute"}
	}
	return strings.TrimRight(c.config.BaseURL, "/") + path, nil
}

package httpclient

import (
	"crypto/tls"
	"github.com/go-resty/resty/v2"
	"net"
	"net/http"
	"time"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultTimeout        = 30 * time.Second
)

type Options struct {
	// Timeout of the whole request, including reading the response body
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification
	InsecureSkipVerify bool
}

func NewTransport(opts Options) *http.Transport {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return transport
}

// NewRestyClient returns a resty client which doesn't retry and fails requests after the configured timeout
func NewRestyClient(opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return resty.New().
		SetTransport(NewTransport(opts)).
		SetTimeout(timeout).
		SetRetryCount(0)
}

package smartdata

import "fmt"

type ValidationError struct {
	Field string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s is required", v.Field)
}

type ConfigurationError struct {
	Reason string
}

func (c *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", c.Reason)
}

// RemoteAPIError is returned for transport failures and non-2xx responses. Body is the response body verbatim.
type RemoteAPIError struct {
	Status int
	Body   string
	Err    error
}

func (r *RemoteAPIError) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("smartdata request failed: %v", r.Err)
	}
	return fmt.Sprintf("smartdata request failed with status %d: %s", r.Status, r.Body)
}

func (r *RemoteAPIError) Unwrap() error {
	return r.Err
}

package smartdata

import (
	"github.com/goccy/go-json"
	"strings"
)

type SmartDataID struct {
	ID   string `json:"ID"`
	Type string `json:"Type"`
}

type SmartDataValue struct {
	SmartDataID     string   `json:"SmartDataID"`
	SmartDataIDType string   `json:"SmartDataIDType"`
	Values          []string `json:"Values"`
	Comments        []string `json:"Comments"`
}

type payloadIdentity struct {
	ContextName   string `json:"ContextName"`
	EntityID      string `json:"EntityID"`
	EntityIDType  string `json:"EntityIDType"`
	ContactID     string `json:"ContactID"`
	ContactIDType string `json:"ContactIDType"`
	UserID        string `json:"UserID"`
	UserIDType    string `json:"UserIDType"`
	Source        string `json:"Source"`
}

type SetValuesRequest struct {
	payloadIdentity
	SmartDataValues []SmartDataValue `json:"SmartDataValues"`
}

type GetValuesRequest struct {
	payloadIdentity
	// Omitted to read every value of the entity
	SmartDataIDs []SmartDataID `json:"SmartDataIDs,omitempty"`
}

func newPayloadIdentity(entityID string, opts Options) payloadIdentity {
	return payloadIdentity{
		ContextName:   opts.ContextName,
		EntityID:      entityID,
		EntityIDType:  opts.EntityIDType,
		ContactID:     opts.ContactID,
		ContactIDType: opts.ContactIDType,
		UserID:        opts.UserID,
		UserIDType:    opts.UserIDType,
		Source:        opts.Source,
	}
}

// NewSetValuesRequest builds a write payload which always carries exactly one value
func NewSetValuesRequest(entityID, smartDataID, value string, opts Options) SetValuesRequest {
	return SetValuesRequest{
		payloadIdentity: newPayloadIdentity(entityID, opts),
		SmartDataValues: []SmartDataValue{{
			SmartDataID:     smartDataID,
			SmartDataIDType: opts.SmartDataIDType,
			Values:          []string{value},
			Comments:        []string{},
		}},
	}
}

func NewGetValuesRequest(entityID, smartDataID string, opts Options) GetValuesRequest {
	request := GetValuesRequest{
		payloadIdentity: newPayloadIdentity(entityID, opts),
	}
	if smartDataID != "" {
		request.SmartDataIDs = []SmartDataID{{ID: smartDataID, Type: opts.SmartDataIDType}}
	}
	return request
}

// Response is the outcome of a successful call. Body is set when the response is JSON, Raw holds the body verbatim.
type Response struct {
	Status          int
	Body            json.RawMessage
	Raw             string
	SmartDataValues []SmartDataValue
}

type valuesResponse struct {
	SmartDataValues []SmartDataValue `json:"SmartDataValues"`
}

func newResponse(status int, body []byte) *Response {
	response := &Response{
		Status: status,
		Raw:    string(body),
	}

	decoded := valuesResponse{}
	if len(body) == 0 || json.Unmarshal(body, &decoded) != nil {
		return response
	}

	response.Body = json.RawMessage(body)
	response.SmartDataValues = decoded.SmartDataValues
	return response
}

// FirstValue returns the first value stored for the SmartData element or an empty string.
// SmartData IDs are matched without regard to case.
func (r *Response) FirstValue(smartDataID string) string {
	if r == nil {
		return ""
	}
	for _, value := range r.SmartDataValues {
		if strings.EqualFold(value.SmartDataID, smartDataID) {
			return firstOf(value.Values)
		}
	}
	return ""
}

// CurrentValue returns the value stored for the element of a read scoped to that element.
// The second return value is false when the response doesn't show what is stored, e.g. a body
// that isn't json or one without SmartDataValues.
func (r *Response) CurrentValue(smartDataID string) (string, bool) {
	if r == nil || r.Body == nil || r.SmartDataValues == nil {
		return "", false
	}
	for _, value := range r.SmartDataValues {
		if strings.EqualFold(value.SmartDataID, smartDataID) {
			return firstOf(value.Values), true
		}
	}
	// Only the requested element is returned, its id may be reported differently
	if len(r.SmartDataValues) == 1 {
		return firstOf(r.SmartDataValues[0].Values), true
	}
	return "", true
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

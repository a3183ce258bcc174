package test

import (
	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/susom/smartdata-worker/smartdata"
)

type ArgMatcher[T any] struct {
	MatchFn func(T) bool
}

func (a ArgMatcher[T]) String() string {
	return "matches argument"
}

func (a ArgMatcher[T]) Matches(arg interface{}) bool {
	targ, ok := arg.(T)
	if !ok {
		return false
	}
	return a.MatchFn(targ)
}

func MatchArg[T any](fn func(T) bool) gomock.Matcher {
	return ArgMatcher[T]{MatchFn: fn}
}

// ValuesResponse returns a read response holding the values of a single SmartData element
func ValuesResponse(smartDataID string, values ...string) *smartdata.Response {
	if values == nil {
		values = []string{}
	}
	smartDataValues := []smartdata.SmartDataValue{{
		SmartDataID:     smartDataID,
		SmartDataIDType: "SDI",
		Values:          values,
	}}
	body, _ := json.Marshal(map[string]interface{}{"SmartDataValues": smartDataValues})
	return &smartdata.Response{
		Status:          200,
		Body:            body,
		Raw:             string(body),
		SmartDataValues: smartDataValues,
	}
}

package batch

import (
	"context"
	"github.com/susom/smartdata-worker/smartdata"
)

//go:generate mockgen --build_flags=--mod=mod -source=./api.go -destination=./test/mock_api.go -package test

// SmartDataAPI reads and writes SmartData values of a patient
type SmartDataAPI interface {
	Read(ctx context.Context, entityID, smartDataID string, opts smartdata.Options) (*smartdata.Response, error)
	Write(ctx context.Context, entityID, smartDataID, value string, opts smartdata.Options) (*smartdata.Response, error)
}

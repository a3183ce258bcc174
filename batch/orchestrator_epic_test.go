package batch_test

import (
	"context"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/susom/smartdata-worker/batch"
	batchTest "github.com/susom/smartdata-worker/batch/test"
	"github.com/susom/smartdata-worker/formatter"
	"github.com/susom/smartdata-worker/projection"
	"github.com/susom/smartdata-worker/settings"
	"github.com/susom/smartdata-worker/smartdata"
	"go.uber.org/zap"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

type fixedToken string

func (f fixedToken) Token(_ context.Context) (string, error) {
	return string(f), nil
}

var _ = Describe("Orchestrator with the epic api", func() {
	var ctx context.Context
	var server *httptest.Server
	var readContentType string
	var readBody string
	var puts atomic.Int32
	var orchestrator *batch.Orchestrator

	BeforeEach(func() {
		ctx = context.Background()
		puts.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			if r.Method == http.MethodPut {
				puts.Add(1)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			Expect(r.URL.Path).To(HaveSuffix("/GETSMARTDATAVALUES/SmartData/Values"))
			w.Header().Set("Content-Type", readContentType)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(readBody))
		}))

		project := settings.ProjectSettings{
			Id:              "p1",
			Enabled:         true,
			IdentifierField: "mrn",
			FieldMaps: []projection.FieldMap{
				{Target: "EPIC#31000", Sources: []string{"notes"}},
			},
		}
		source := batchTest.NewTestRecordSource()
		source.Projects["p1"] = batchTest.Project{
			Dictionary: projection.Dictionary{
				"mrn":   {Name: "mrn", Label: "MRN", Type: formatter.FieldTypeText},
				"notes": {Name: "notes", Label: "Notes", Type: formatter.FieldTypeText},
			},
			RecordIdField: "record_id",
			Records: []projection.Record{{
				Id: "1",
				Values: map[string]formatter.RawValue{
					"mrn":   formatter.Scalar("12345678"),
					"notes": formatter.Scalar("new clinical note"),
				},
			}},
		}

		client := smartdata.NewClient(smartdata.Config{BaseURL: server.URL, Options: smartdata.DefaultOptions()}, fixedToken("secret-token"))
		logger := zap.NewNop().Sugar()
		config := batch.Config{ProjectConcurrency: 1}
		settingsStore := &batchTest.SettingsStore{Projects: []settings.ProjectSettings{project}}
		orchestrator = batch.NewOrchestrator(config, settingsStore, source, client, projection.NewProjector(logger), batchTest.NewTestAuditSink(), batch.NewRateLimiter(config), logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("writes when the element is empty", func() {
		readContentType = "application/json"
		readBody = `{"SmartDataValues":[{"SmartDataID":"EPIC#31000","SmartDataIDType":"SDI","Values":[]}]}`

		report := orchestrator.Run(ctx)
		Expect(report.Written).To(Equal(1))
		Expect(puts.Load()).To(Equal(int32(1)))
	})

	It("doesn't overwrite when the response isn't json", func() {
		readContentType = "text/html"
		readBody = "<html>SmartData: existing clinical note</html>"

		report := orchestrator.Run(ctx)
		Expect(puts.Load()).To(BeZero())
		Expect(report.Written).To(BeZero())
		Expect(report.Failed).To(Equal(1))
		Expect(report.Failures[0].Reason).To(Equal("unable to verify current value"))
	})

	It("doesn't overwrite when the element id differs in case", func() {
		readContentType = "application/json"
		readBody = `{"SmartDataValues":[{"SmartDataID":"epic#31000","SmartDataIDType":"SDI","Values":["existing"]}]}`

		report := orchestrator.Run(ctx)
		Expect(puts.Load()).To(BeZero())
		Expect(report.Written).To(BeZero())
		Expect(report.SkippedNonEmpty).To(Equal(1))
	})

	It("doesn't overwrite when json holds no smartdata values", func() {
		readContentType = "application/json"
		readBody = `{"Message":"ok"}`

		report := orchestrator.Run(ctx)
		Expect(puts.Load()).To(BeZero())
		Expect(report.Failed).To(Equal(1))
	})
})

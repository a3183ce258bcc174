package worker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/susom/smartdata-worker/batch"
	"github.com/susom/smartdata-worker/worker"
	"go.uber.org/zap"
	"net/http"
	"net/http/httptest"
)

type staticReports struct {
	report *batch.Report
}

func (s staticReports) LastReport() (batch.Report, bool) {
	if s.report == nil {
		return batch.Report{}, false
	}
	return *s.report, true
}

var _ = Describe("Status handler", func() {
	serve := func(reports worker.ReportProvider) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		handler := worker.NewStatusHandler(reports, zap.NewNop().Sugar())
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))
		return recorder
	}

	It("reports ok before the first run", func() {
		recorder := serve(staticReports{})
		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})

	It("includes the last report", func() {
		recorder := serve(staticReports{report: &batch.Report{RunId: "abc", Written: 3, Failed: 1}})
		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(recorder.Body.String()).To(ContainSubstring(`"runId":"abc"`))
		Expect(recorder.Body.String()).To(ContainSubstring(`"written":3`))
		Expect(recorder.Body.String()).To(ContainSubstring(`"failed":1`))
	})
})

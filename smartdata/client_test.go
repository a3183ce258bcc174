package smartdata_test

import (
	"context"
	"errors"
	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/susom/smartdata-worker/smartdata"
	"github.com/susom/smartdata-worker/token"
	"io"
	"net/http"
	"net/http/httptest"
)

type staticToken struct {
	token string
	err   error
	calls int
}

func (s *staticToken) Token(_ context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

type capturedRequest struct {
	Method        string
	Path          string
	Authorization string
	Accept        string
	ContentType   string
	Body          map[string]interface{}
}

var _ = Describe("Client", func() {
	var ctx context.Context
	var server *httptest.Server
	var captured *capturedRequest
	var status int
	var responseBody string
	var tokens *staticToken
	var client *smartdata.Client

	BeforeEach(func() {
		ctx = context.Background()
		captured = nil
		status = http.StatusOK
		responseBody = `{"SmartDataValues":[{"SmartDataID":"EPIC#31000","SmartDataIDType":"SDI","Values":["existing"],"Comments":[]}]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			data, err := io.ReadAll(r.Body)
			Expect(err).ToNot(HaveOccurred())

			captured = &capturedRequest{
				Method:        r.Method,
				Path:          r.URL.Path,
				Authorization: r.Header.Get("Authorization"),
				Accept:        r.Header.Get("Accept"),
				ContentType:   r.Header.Get("Content-Type"),
				Body:          map[string]interface{}{},
			}
			Expect(json.Unmarshal(data, &captured.Body)).To(Succeed())

			w.WriteHeader(status)
			_, _ = w.Write([]byte(responseBody))
		}))

		tokens = &staticToken{token: "secret-token"}
		config := smartdata.Config{BaseURL: server.URL + "/", Options: smartdata.DefaultOptions()}
		client = smartdata.NewClient(config, tokens)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Write", func() {
		It("sends a single value with the configured defaults", func() {
			resp, err := client.Write(ctx, "12345678", "EPIC#31000", "Yes", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Status).To(Equal(http.StatusOK))

			Expect(captured.Method).To(Equal(http.MethodPut))
			Expect(captured.Path).To(Equal("/api/epic/2013/Clinical/Utility/SETSMARTDATAVALUES/SmartData/Values"))
			Expect(captured.Authorization).To(Equal("Bearer secret-token"))
			Expect(captured.Accept).To(Equal("application/json"))
			Expect(captured.ContentType).To(ContainSubstring("application/json"))

			Expect(captured.Body).To(HaveKeyWithValue("ContextName", "PATIENT"))
			Expect(captured.Body).To(HaveKeyWithValue("EntityID", "12345678"))
			Expect(captured.Body).To(HaveKeyWithValue("EntityIDType", "MRN"))
			Expect(captured.Body).To(HaveKeyWithValue("UserIDType", "External"))
			Expect(captured.Body).To(HaveKeyWithValue("Source", "Web Service"))
			Expect(captured.Body["SmartDataValues"]).To(Equal([]interface{}{
				map[string]interface{}{
					"SmartDataID":     "EPIC#31000",
					"SmartDataIDType": "SDI",
					"Values":          []interface{}{"Yes"},
					"Comments":        []interface{}{},
				},
			}))
		})

		It("applies per call overrides", func() {
			_, err := client.Write(ctx, "Z123", "EPIC#31000", "Yes", smartdata.Options{EntityIDType: "CID", UserID: "SYNC"})
			Expect(err).ToNot(HaveOccurred())
			Expect(captured.Body).To(HaveKeyWithValue("EntityIDType", "CID"))
			Expect(captured.Body).To(HaveKeyWithValue("UserID", "SYNC"))
			Expect(captured.Body).To(HaveKeyWithValue("ContextName", "PATIENT"))
		})

		It("rejects an empty entity id without calling the api", func() {
			_, err := client.Write(ctx, "", "EPIC#31000", "Yes", smartdata.Options{})
			var validationErr *smartdata.ValidationError
			Expect(errors.As(err, &validationErr)).To(BeTrue())
			Expect(captured).To(BeNil())
			Expect(tokens.calls).To(Equal(0))
		})

		It("rejects an empty smartdata id", func() {
			_, err := client.Write(ctx, "12345678", "", "Yes", smartdata.Options{})
			var validationErr *smartdata.ValidationError
			Expect(errors.As(err, &validationErr)).To(BeTrue())
		})

		It("returns the response body verbatim on error", func() {
			status = http.StatusBadRequest
			responseBody = `{"Message":"Invalid SmartData element"}`

			_, err := client.Write(ctx, "12345678", "EPIC#31000", "Yes", smartdata.Options{})
			var remoteErr *smartdata.RemoteAPIError
			Expect(errors.As(err, &remoteErr)).To(BeTrue())
			Expect(remoteErr.Status).To(Equal(http.StatusBadRequest))
			Expect(remoteErr.Body).To(Equal(`{"Message":"Invalid SmartData element"}`))
		})

		It("propagates authentication errors", func() {
			tokens.err = &token.AuthenticationError{Status: http.StatusUnauthorized}

			_, err := client.Write(ctx, "12345678", "EPIC#31000", "Yes", smartdata.Options{})
			var authErr *token.AuthenticationError
			Expect(errors.As(err, &authErr)).To(BeTrue())
			Expect(captured).To(BeNil())
		})
	})

	Describe("Read", func() {
		It("reads a single element", func() {
			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.FirstValue("EPIC#31000")).To(Equal("existing"))
			Expect(resp.FirstValue("EPIC#99999")).To(BeEmpty())
			Expect(resp.Body).ToNot(BeEmpty())

			Expect(captured.Method).To(Equal(http.MethodPost))
			Expect(captured.Path).To(Equal("/api/epic/2013/Clinical/Utility/GETSMARTDATAVALUES/SmartData/Values"))
			Expect(captured.Body["SmartDataIDs"]).To(Equal([]interface{}{
				map[string]interface{}{"ID": "EPIC#31000", "Type": "SDI"},
			}))
		})

		It("reads every element when no smartdata id is given", func() {
			_, err := client.Read(ctx, "12345678", "", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(captured.Body).ToNot(HaveKey("SmartDataIDs"))
		})

		It("returns the raw body when the response isn't json", func() {
			responseBody = "OK"

			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Raw).To(Equal("OK"))
			Expect(resp.Body).To(BeNil())
			Expect(resp.FirstValue("EPIC#31000")).To(BeEmpty())

			_, ok := resp.CurrentValue("EPIC#31000")
			Expect(ok).To(BeFalse())
		})

		It("matches smartdata ids without regard to case", func() {
			responseBody = `{"SmartDataValues":[{"SmartDataID":"epic#31000","SmartDataIDType":"SDI","Values":["existing"]}]}`

			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.FirstValue("EPIC#31000")).To(Equal("existing"))

			value, ok := resp.CurrentValue("EPIC#31000")
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("existing"))
		})

		It("reports the only returned element as the current value", func() {
			responseBody = `{"SmartDataValues":[{"SmartDataID":"31000","SmartDataIDType":"SDI","Values":["existing"]}]}`

			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())

			value, ok := resp.CurrentValue("EPIC#31000")
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("existing"))
		})

		It("reports an empty element as verified", func() {
			responseBody = `{"SmartDataValues":[{"SmartDataID":"EPIC#31000","SmartDataIDType":"SDI","Values":[]}]}`

			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())

			value, ok := resp.CurrentValue("EPIC#31000")
			Expect(ok).To(BeTrue())
			Expect(value).To(BeEmpty())
		})

		It("doesn't verify json without smartdata values", func() {
			responseBody = `{"Message":"ok"}`

			resp, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			Expect(err).ToNot(HaveOccurred())

			_, ok := resp.CurrentValue("EPIC#31000")
			Expect(ok).To(BeFalse())
		})

		It("fails when the api is unreachable", func() {
			server.Close()

			_, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			var remoteErr *smartdata.RemoteAPIError
			Expect(errors.As(err, &remoteErr)).To(BeTrue())
			Expect(remoteErr.Err).To(HaveOccurred())
		})
	})

	DescribeTable("rejects an invalid base url",
		func(baseURL string) {
			client := smartdata.NewClient(smartdata.Config{BaseURL: baseURL}, tokens)
			_, err := client.Read(ctx, "12345678", "EPIC#31000", smartdata.Options{})
			var configErr *smartdata.ConfigurationError
			Expect(errors.As(err, &configErr)).To(BeTrue())
		},
		Entry("empty", ""),
		Entry("relative", "/interconnect"),
		Entry("without host", "https://"),
	)
})

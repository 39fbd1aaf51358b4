package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/llm"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
	"github.com/joseph-ayodele/rspl-generator/internal/repository"
	"github.com/joseph-ayodele/rspl-generator/internal/source"
	"github.com/joseph-ayodele/rspl-generator/internal/synth"
)

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeParts(context.Context, llm.AnalyzeRequest) ([]llm.PartDescriptor, []byte, error) {
	return nil, nil, llm.ErrNoArray
}

func setup(t *testing.T, analyzer llm.PartAnalyzer) (http.Handler, *pipeline.Orchestrator) {
	t.Helper()
	o := pipeline.New(pipeline.Deps{
		Jobs:     repository.NewMemoryJobRepository(nil),
		Resolver: source.NewResolver(analyzer, nil, nil),
		Synth: synth.NewSynthesizer(synth.FixedAttributes{
			CageCode: "12345", HSCode: "8419", CountryOfOrigin: "DE",
			ItemDimensions: "10 x 5 x 3", PackagingDimensions: "20 x 15 x 10",
			MinSalesQty: 1, StandardPackageQty: 1,
		}),
	}, pipeline.Config{MaxDocumentBytes: 1 << 20}, nil)
	t.Cleanup(func() { o.Shutdown(context.Background()) })
	return NewHandler(Deps{Jobs: o, MaxDocumentBytes: 1 << 20, Offline: analyzer == nil}), o
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(h, req)
}

func postMultipart(t *testing.T, h http.Handler, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/jobs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(h, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createCompleted(t *testing.T, h http.Handler, o *pipeline.Orchestrator) string {
	t.Helper()
	rec := postJSON(h, `{"brand":"Rational","equipment_type":"Commercial Oven"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	o.Wait()
	return decode[createJobResponse](t, rec).ID
}

func TestCreateJob_JSON(t *testing.T) {
	h, o := setup(t, nil)

	rec := postJSON(h, `{"brand":"Rational","equipment_type":"Commercial Oven"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	created := decode[createJobResponse](t, rec)
	assert.Regexp(t, `^job_\d+_[0-9a-z]{9}$`, created.ID)
	assert.Equal(t, constants.JobStatusProcessing, created.Status)
	assert.Equal(t, "/jobs/"+created.ID, rec.Header().Get("Location"))

	o.Wait()
	rec = do(h, httptest.NewRequest(http.MethodGet, "/jobs/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		ID       string              `json:"id"`
		Status   constants.JobStatus `json:"status"`
		Progress int                 `json:"progress"`
		Results  []json.RawMessage   `json:"results"`
		Summary  export.Summary      `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Len(t, got.Results, 4)
	assert.Equal(t, export.Summary{Parts: 4, Preventive: 1, Corrective: 2, Consumable: 1}, got.Summary)
}

func TestCreateJob_FormEncoded(t *testing.T) {
	h, _ := setup(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader("brand=Hobart&equipment_type=Mixer"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(h, req)
	assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
}

func TestCreateJob_Invalid(t *testing.T) {
	h, _ := setup(t, nil)

	for _, body := range []string{`{"brand":"Rational"}`, `{}`, `not json`} {
		rec := postJSON(h, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		e := decode[errorBody](t, rec)
		assert.Equal(t, common.CodeInvalidRequest, e.Error.Code)
		assert.NotEmpty(t, e.Error.Message)
	}

	rec := do(h, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Jobs []json.RawMessage `json:"jobs"`
	}](t, rec)
	assert.Empty(t, list.Jobs)
}

func TestCreateJob_Multipart(t *testing.T) {
	h, o := setup(t, nil)

	rec := postMultipart(t, h, nil, "fryer.pdf", []byte("%PDF-1.4 thermostat and basket"))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id := decode[createJobResponse](t, rec).ID
	o.Wait()

	job, err := o.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "fryer.pdf", job.SourceDocumentName)
	require.Len(t, job.Results, 2)
	assert.Equal(t, "Thermostat", job.Results[0].Name)
	assert.Equal(t, "Basket", job.Results[1].Name)

	rec = postMultipart(t, h, map[string]string{"brand": "Frima", "equipment_type": "Fryer"}, "manual.txt", []byte("plain text"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.CodeInvalidRequest, decode[errorBody](t, rec).Error.Code)

	rec = postMultipart(t, h, map[string]string{"brand": "Frima", "equipment_type": "Fryer"}, "", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCreateJob_DocumentTooLarge(t *testing.T) {
	h, _ := setup(t, nil)
	big := append([]byte("%PDF-"), bytes.Repeat([]byte("a"), 3<<20)...)
	rec := postMultipart(t, h, nil, "big.pdf", big)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.CodeInvalidRequest, decode[errorBody](t, rec).Error.Code)
}

func TestGetJob_NotFound(t *testing.T) {
	h, _ := setup(t, nil)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/jobs/job_0_missing00", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, common.CodeNotFound, decode[errorBody](t, rec).Error.Code)
}

func TestExport_TSV(t *testing.T) {
	h, o := setup(t, nil)
	id := createCompleted(t, h, o)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/jobs/"+id+"/export?format=tsv", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentTypeTSV, rec.Header().Get("Content-Type"))

	disp, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disp)
	assert.True(t, strings.HasPrefix(params["filename"], "RSPL_Rational_Commercial-Oven_"), params["filename"])
	assert.True(t, strings.HasSuffix(params["filename"], ".tsv"))

	r := csv.NewReader(bytes.NewReader(rec.Body.Bytes()))
	r.Comma = '\t'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "Heating Element", rows[1][0])
}

func TestExport_XLSXDefault(t *testing.T) {
	h, o := setup(t, nil)
	id := createCompleted(t, h, o)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/jobs/"+id+"/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestExport_BadFormat(t *testing.T) {
	h, o := setup(t, nil)
	id := createCompleted(t, h, o)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/jobs/"+id+"/export?format=pdf", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_FailedJobConflict(t *testing.T) {
	h, o := setup(t, failingAnalyzer{})

	rec := postJSON(h, `{"brand":"Rational","equipment_type":"Oven"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decode[createJobResponse](t, rec).ID
	o.Wait()

	job, err := o.GetJob(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, constants.JobStatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.True(t, strings.HasPrefix(*job.Error, common.CodeUpstreamError), *job.Error)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/jobs/"+id+"/export?format=xlsx", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, common.CodeNotExportable, decode[errorBody](t, rec).Error.Code)
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	h, _ := setup(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))
	assert.JSONEq(t, `{"status":"ok","offline":true}`, rec.Body.String())

	rec = do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type checkerFunc func(context.Context, time.Duration) error

func (f checkerFunc) HealthCheck(ctx context.Context, timeout time.Duration) error {
	return f(ctx, timeout)
}

func TestHealth_StoreUnavailable(t *testing.T) {
	var storeErr error
	checker := checkerFunc(func(context.Context, time.Duration) error { return storeErr })
	h := NewHandler(Deps{Health: checker, Offline: true})

	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","offline":true}`, rec.Body.String())

	storeErr = errors.New("database is closed")
	rec = do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","offline":true}`, rec.Body.String())
}

func TestHealth_RealStore(t *testing.T) {
	repo, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	h := NewHandler(Deps{Health: repo})

	assert.Equal(t, http.StatusOK, do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	require.NoError(t, repo.Close())
	assert.Equal(t, http.StatusServiceUnavailable, do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestSyncHealth(t *testing.T) {
	srv, hs := NewGRPCServer(nil)
	defer srv.Stop()
	ctx := context.Background()

	var storeErr error
	checker := checkerFunc(func(context.Context, time.Duration) error { return storeErr })

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, SyncHealth(ctx, hs, checker, nil))

	storeErr = errors.New("ping failed")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, SyncHealth(ctx, hs, checker, nil))
	for _, svc := range []string{"", ServiceName} {
		resp, err := hs.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus(), svc)
	}

	storeErr = nil
	SyncHealth(ctx, hs, checker, nil)
	resp, err := hs.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestWatchHealth_StopsWithContext(t *testing.T) {
	srv, hs := NewGRPCServer(nil)
	defer srv.Stop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	checker := checkerFunc(func(context.Context, time.Duration) error { return errors.New("down") })
	go func() {
		WatchHealth(ctx, hs, checker, time.Millisecond, nil)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchHealth did not return after cancel")
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(common.InvalidRequest("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(common.NotFound("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(common.NotExportable("x")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(common.Upstream("x", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestNewGRPCServer(t *testing.T) {
	srv, hs := NewGRPCServer(nil)
	require.NotNil(t, srv)
	require.NotNil(t, hs)
	srv.Stop()
}

package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchfeed/external/httpfetch"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const testJobToken = "job-secret"

type fakeIngestion struct {
	mu     sync.Mutex
	inputs []usecase.CycleInput
	err    error
}

func (f *fakeIngestion) RunCycle(_ context.Context, input usecase.CycleInput) (usecase.CycleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return usecase.CycleResult{}, f.err
	}
	return usecase.CycleResult{RunID: "run-1", Status: "ok"}, nil
}

func (f *fakeIngestion) State() usecase.FetchState {
	last := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	return usecase.FetchState{LastFetch: &last, LastRunID: "run-1"}
}

func (f *fakeIngestion) DisplayState(context.Context) (ingeststate.State, error) {
	last := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	return ingeststate.State{Status: ingeststate.StatusIdle, Message: "12 matches updated", LastFetch: &last}, nil
}

type fakeUpstream struct{ latched bool }

func (f fakeUpstream) Status() httpfetch.Status {
	return httpfetch.Status{Latched: f.latched}
}

func newTestRouter(ingestion *fakeIngestion) http.Handler {
	handler := NewHandler(ingestion, fakeUpstream{latched: true}, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), testJobToken, http.NotFoundHandler())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetIngestionState(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeIngestion{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ingestion/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.True(t, ok)

	display := data["display"].(map[string]any)
	require.Equal(t, "idle", display["status"])
	require.Equal(t, "12 matches updated", display["message"])
	require.NotNil(t, display["lastFetch"])

	upstream := data["upstream"].(map[string]any)
	require.Equal(t, true, upstream["latched"])
}

func TestRunIngestJob(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		token     string
		body      string
		runErr    error
		wantCode  int
		wantCalls int
	}{
		{name: "missing token", body: `{}`, wantCode: http.StatusUnauthorized},
		{name: "wrong token", token: "nope", body: `{}`, wantCode: http.StatusUnauthorized},
		{name: "empty body runs all", token: testJobToken, wantCode: http.StatusOK, wantCalls: 1},
		{name: "selected competitions", token: testJobToken, body: `{"competitions":["PL","SA"],"force":true}`, wantCode: http.StatusOK, wantCalls: 1},
		{name: "unknown field", token: testJobToken, body: `{"league":"PL"}`, wantCode: http.StatusBadRequest},
		{name: "invalid code", token: testJobToken, body: `{"competitions":["P L"]}`, wantCode: http.StatusBadRequest},
		{name: "cycle running", token: testJobToken, body: `{}`, runErr: usecase.ErrCycleInProgress, wantCode: http.StatusConflict, wantCalls: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ingestion := &fakeIngestion{err: tc.runErr}
			router := newTestRouter(ingestion)

			req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/ingest", strings.NewReader(tc.body))
			if tc.token != "" {
				req.Header.Set("X-Internal-Job-Token", tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			require.Len(t, ingestion.inputs, tc.wantCalls)
		})
	}
}

func TestRunIngestJobPassesInput(t *testing.T) {
	t.Parallel()

	ingestion := &fakeIngestion{}
	router := newTestRouter(ingestion)
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/ingest", strings.NewReader(`{"competitions":["PL"],"force":true}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []usecase.CycleInput{{Competitions: []string{"PL"}, Force: true}}, ingestion.inputs)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&fakeIngestion{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triagelens/internal/aggregate"
	"triagelens/internal/dataset"
	"triagelens/internal/filter"
	"triagelens/internal/session"
	"triagelens/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditCSV = `NHS Number,Patient Name,Location,CTA done Y/N,Occlusions Y/N - AI,True positive,Thrombectomy referral Y/N,Reason to exclude,Other information
111,Ann,M1,Y,Y,Y,Y,N,
222,Ben,M2,Y,N,N,N,N,
333,Cal,M1,N,,N,N,Patient declined,
444,Dee,,Y,N/A,N,N,N,
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	loader, err := dataset.NewLoader(2)
	require.NoError(t, err)
	return NewServer(session.NewState(), loader, Options{PageSize: 2})
}

func upload(t *testing.T, s *Server, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func loadedServer(t *testing.T) *Server {
	t.Helper()
	s := newTestServer(t)
	rec := upload(t, s, "audit.csv", []byte(auditCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return s
}

func TestDataRoutesNeedADataset(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/funnel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var info datasetInfo
	rec = do(s, http.MethodGet, "/api/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &info)
	assert.Equal(t, session.StatusIdle, info.Status)
	assert.Empty(t, info.Header)
}

func TestUploadWorkbook(t *testing.T) {
	s := newTestServer(t)
	data, err := testkit.SampleWorkbook()
	require.NoError(t, err)

	rec := upload(t, s, "sales.xlsx", data)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info datasetInfo
	decode(t, rec, &info)
	assert.Equal(t, session.StatusReady, info.Status)
	assert.Equal(t, "sales.xlsx", info.Source)
	assert.Equal(t, 6, info.TotalRows)
	assert.Equal(t, []string{"ID", "Product", "Category", "Date", "Revenue", "Cost"}, info.Header)
}

func TestUploadRejections(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, s, "broken.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "PARSE_ERROR")

	rec = upload(t, s, "header-only.csv", []byte("A,B\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var info datasetInfo
	decode(t, do(s, http.MethodGet, "/api/dataset", ""), &info)
	assert.Equal(t, session.StatusError, info.Status)
	assert.Equal(t, "empty sheet", info.Error)
}

func TestFailedUploadKeepsLoadedSource(t *testing.T) {
	s := loadedServer(t)

	rec := upload(t, s, "broken.xlsx", []byte("not a workbook"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var info datasetInfo
	decode(t, do(s, http.MethodGet, "/api/dataset", ""), &info)
	assert.Equal(t, session.StatusError, info.Status)
	assert.Equal(t, "audit.csv", info.Source)
	assert.Equal(t, "broken.xlsx", info.Pending)
	assert.Equal(t, 4, info.TotalRows)

	rec = do(s, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Triage summary: audit.csv")
}

func TestFunnelAndKPIs(t *testing.T) {
	s := loadedServer(t)

	var stats aggregate.FunnelStats
	decode(t, do(s, http.MethodGet, "/api/funnel", ""), &stats)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.StageYes)
	assert.Equal(t, 1, stats.StageNo)
	assert.Equal(t, 2, stats.SecondaryYes)
	assert.Equal(t, 1, stats.SecondaryOther)
	assert.Equal(t, 1, stats.Outcomes.TruePositive)
	require.Len(t, stats.Excluded, 1)
	assert.Equal(t, "333", stats.Excluded[0].Identifier)

	var kpis aggregate.KPIs
	decode(t, do(s, http.MethodGet, "/api/kpis", ""), &kpis)
	assert.Equal(t, 4, kpis.TotalRows)
	assert.Equal(t, aggregate.KPI{Value: 1, Available: true, Column: "True positive"}, kpis.TruePositives)
	assert.Equal(t, 1, kpis.Referrals.Value)
}

func TestChartAndRoles(t *testing.T) {
	s := loadedServer(t)

	var chart struct {
		Spec    aggregate.Spec     `json:"spec"`
		Buckets []aggregate.Bucket `json:"buckets"`
	}
	decode(t, do(s, http.MethodGet, "/api/chart", ""), &chart)
	assert.Equal(t, "Location", chart.Spec.Category)
	assert.Equal(t, []aggregate.Bucket{
		{Category: "M1", Value: 2},
		{Category: "M2", Value: 1},
		{Category: "Unknown", Value: 1},
	}, chart.Buckets)

	rec := do(s, http.MethodGet, "/api/chart?category=Location&metric=Missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var roles struct {
		Roles           map[string]string `json:"roles"`
		DefaultCategory string            `json:"default_category"`
	}
	decode(t, do(s, http.MethodGet, "/api/roles", ""), &roles)
	assert.Equal(t, "CTA done Y/N", roles.Roles["stage_done"])
	assert.Equal(t, "Thrombectomy referral Y/N", roles.Roles["referral"])
	assert.Equal(t, "", roles.Roles["radiology_report"])
	assert.Equal(t, "Location", roles.DefaultCategory)
}

func TestRowsPagination(t *testing.T) {
	s := loadedServer(t)

	var page struct {
		Page       int             `json:"page"`
		Size       int             `json:"size"`
		TotalRows  int             `json:"total_rows"`
		TotalPages int             `json:"total_pages"`
		Header     []string        `json:"header"`
		Rows       [][]interface{} `json:"rows"`
	}
	decode(t, do(s, http.MethodGet, "/api/rows?page=1", ""), &page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 4, page.TotalRows)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, 333.0, page.Rows[0][0])
	assert.Equal(t, "", page.Rows[1][2])
	assert.Len(t, page.Rows[0], len(page.Header))

	rec := do(s, http.MethodGet, "/api/rows?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	page.Rows = nil
	rec = do(s, http.MethodGet, "/api/rows?page=922337203685477581", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Equal(t, 4, page.TotalRows)
	assert.Empty(t, page.Rows)
}

func TestFilterLifecycle(t *testing.T) {
	s := loadedServer(t)
	total := func() int {
		var stats aggregate.FunnelStats
		decode(t, do(s, http.MethodGet, "/api/funnel", ""), &stats)
		return stats.Total
	}

	rec := do(s, http.MethodPost, "/api/filters", `{"field":"Location","operator":"equals","value":"m1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rule filter.Rule
	decode(t, rec, &rule)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, filter.OpEquals, rule.Operator)
	assert.Equal(t, 2, total())

	rec = do(s, http.MethodPatch, "/api/filters/"+rule.ID.String(), `{"value":"M2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, total())

	rec = do(s, http.MethodPost, "/api/filters", `{"field":"NHS Number","operator":"GT","value":200}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, total())

	var listed struct {
		Filters []filter.Rule `json:"filters"`
	}
	decode(t, do(s, http.MethodGet, "/api/filters", ""), &listed)
	assert.Len(t, listed.Filters, 2)

	rec = do(s, http.MethodDelete, "/api/filters/"+rule.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 3, total())

	rec = do(s, http.MethodDelete, "/api/filters", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 4, total())
}

func TestFilterErrors(t *testing.T) {
	s := loadedServer(t)

	rec := do(s, http.MethodPost, "/api/filters", `{"field":"Location","operator":"between","value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/filters", `{"operator":"equals"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPatch, "/api/filters/nope", `{"value":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodDelete, "/api/filters/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestColumnSummary(t *testing.T) {
	s := loadedServer(t)

	var summary aggregate.ColumnSummary
	rec := do(s, http.MethodGet, "/api/columns/NHS%20Number/summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &summary)
	assert.Equal(t, 1110.0, summary.Sum)
	assert.Equal(t, 4, summary.Numeric)

	rec = do(s, http.MethodGet, "/api/columns/Missing/summary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReport(t *testing.T) {
	s := loadedServer(t)

	rec := do(s, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Triage summary: audit.csv")

	rec = do(s, http.MethodGet, "/api/report?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = do(s, http.MethodGet, "/api/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetDropsDataset(t *testing.T) {
	s := loadedServer(t)

	rec := do(s, http.MethodDelete, "/api/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/api/kpis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weeklyreport/internal/dataprocessing"
	"weeklyreport/internal/docx"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/services"
	"weeklyreport/internal/shared/testutil"
	"weeklyreport/pkg/contracts/domain"
)

func reportParts(t *testing.T) []filePart {
	t.Helper()
	return []filePart{
		{field: FieldRawFile, name: "raw.xlsx", data: testutil.WorkbookBytes(t, testutil.RawSheet())},
		{field: FieldProgressFile, name: "Progress_w12.xlsx", data: testutil.WorkbookBytes(t, testutil.ProgressSheet(12, 11))},
		{field: FieldGMSFile, name: "gms.csv", data: []byte("merchant_name,gms\nAlpha,1\n")},
	}
}

func documentBytes(t *testing.T) []byte {
	t.Helper()
	doc := docx.New("Aptos Narrow", 11)
	doc.AddParagraph("Dear Zeliha and OHL Team,")
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	return buf.Bytes()
}

func newReportHandler(env *testEnv, gen ReportGenerator, maxBytes int64) *ReportHandler {
	return NewReportHandler(gen, env.workspaces, env.validator, maxBytes, env.errorHandler, env.logger)
}

func TestReportHandler_AnalyzeDocument(t *testing.T) {
	env := newTestEnv(t)
	gen := new(MockReportGenerator)
	parts := reportParts(t)
	doc := documentBytes(t)

	result := &services.ReportResult{Analysis: &domain.WeeklyAnalysis{Week: 12, PreviousWeek: 11}}
	gen.On("Generate", mock.Anything, mock.AnythingOfType("services.ReportRequest"), mock.AnythingOfType("services.GenerateOptions")).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(services.ReportRequest)
			opts := args.Get(2).(services.GenerateOptions)

			assert.Equal(t, "progress_file_Progress_w12.xlsx", filepath.Base(req.ProgressPath))
			assert.Equal(t, "raw_file_raw.xlsx", filepath.Base(req.RawPath))
			assert.Equal(t, "gms_file_gms.csv", filepath.Base(req.GMSPath))

			uploaded, err := os.ReadFile(req.ProgressPath)
			require.NoError(t, err)
			assert.Equal(t, parts[1].data, uploaded)

			require.NoError(t, os.MkdirAll(opts.OutputDir, 0755))
			result.DocumentPath = filepath.Join(opts.OutputDir, "Weekly_Top100_Report_Week_12.docx")
			require.NoError(t, os.WriteFile(result.DocumentPath, doc, 0644))
		}).
		Return(result, nil).Once()

	rec := httptest.NewRecorder()
	newReportHandler(env, gen, 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze", parts...))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docx.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Weekly_Top100_Report_Week_12.docx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, doc, rec.Body.Bytes())

	paragraphs, err := docx.ReadParagraphs(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dear Zeliha and OHL Team,"}, paragraphs)

	gen.AssertExpectations(t)
	gen.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	env.assertWorkspacesRemoved(t)
	testutil.AssertLogContains(t, env.logs, slog.LevelInfo, "Report delivered")
}

func TestReportHandler_AnalyzeJSON(t *testing.T) {
	env := newTestEnv(t)
	gen := new(MockReportGenerator)

	analysis := &domain.WeeklyAnalysis{
		Week:         12,
		PreviousWeek: 11,
		Contributors: domain.Ranking{
			SAS: []domain.SellerDelta{{Name: "Alpha", CurrentGMS: 1500, PreviousGMS: 1000, Diff: 500}},
		},
	}
	gen.On("Analyze", mock.Anything, mock.AnythingOfType("services.ReportRequest")).Return(analysis, nil).Once()

	rec := httptest.NewRecorder()
	newReportHandler(env, gen, 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze?format=json", reportParts(t)...))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decodeProblem(t, rec)
	assert.Equal(t, float64(12), body["week"])
	assert.Equal(t, float64(11), body["previous_week"])
	contributors := body["contributors"].(map[string]interface{})
	sas := contributors["sas"].([]interface{})
	require.Len(t, sas, 1)
	assert.Equal(t, "Alpha", sas[0].(map[string]interface{})["sp_name"])

	gen.AssertExpectations(t)
	env.assertWorkspacesRemoved(t)
}

func TestReportHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		request    func(t *testing.T) *http.Request
		wantStatus int
		wantDetail string
	}{
		{
			name: "unknown format",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/analyze?format=pdf", reportParts(t)...)
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Request validation failed",
		},
		{
			name: "missing gms upload",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/analyze", reportParts(t)[:2]...)
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: `missing upload field "gms_file"`,
		},
		{
			name: "unsupported extension",
			request: func(t *testing.T) *http.Request {
				parts := reportParts(t)
				parts[0].name = "raw.txt"
				return multipartRequest(t, "/api/analyze", parts...)
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Request validation failed",
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"raw_file":"x"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid request format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			gen := new(MockReportGenerator)

			rec := httptest.NewRecorder()
			newReportHandler(env, gen, 1<<20).Analyze(rec, tt.request(t))

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, apierrors.TypeValidation, problem["type"])
			assert.Equal(t, tt.wantDetail, problem["detail"])

			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			gen.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
			env.assertWorkspacesRemoved(t)
		})
	}
}

func TestReportHandler_ValidationDetailsNameField(t *testing.T) {
	env := newTestEnv(t)
	parts := reportParts(t)
	parts[0].name = "raw.pdf"

	rec := httptest.NewRecorder()
	newReportHandler(env, new(MockReportGenerator), 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze", parts...))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeProblem(t, rec)["details"].([]interface{})
	require.Len(t, details, 1)
	detail := details[0].(map[string]interface{})
	assert.Equal(t, "raw_file", detail["field"])
	assert.Equal(t, "raw_file must be one of: .xlsx, .csv", detail["message"])
}

func TestReportHandler_AcceptsAnyGMSFile(t *testing.T) {
	env := newTestEnv(t)
	gen := new(MockReportGenerator)
	parts := reportParts(t)
	parts[2].name = "gms.xls"
	parts[2].data = []byte{}

	gen.On("Analyze", mock.Anything, mock.AnythingOfType("services.ReportRequest")).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(services.ReportRequest)
			assert.Equal(t, "gms_file_gms.xls", filepath.Base(req.GMSPath))
		}).
		Return(&domain.WeeklyAnalysis{Week: 12, PreviousWeek: 11}, nil).Once()

	rec := httptest.NewRecorder()
	newReportHandler(env, gen, 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze?format=json", parts...))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen.AssertExpectations(t)
	env.assertWorkspacesRemoved(t)
}

func TestReportHandler_PayloadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	gen := new(MockReportGenerator)

	parts := reportParts(t)
	parts[2].data = bytes.Repeat([]byte("x"), 64<<10)

	rec := httptest.NewRecorder()
	newReportHandler(env, gen, 4<<10).Analyze(rec, multipartRequest(t, "/api/analyze", parts...))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apierrors.TypePayloadTooLarge, decodeProblem(t, rec)["type"])
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	env.assertWorkspacesRemoved(t)
}

func TestReportHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "week not detected",
			err:        apierrors.NewAppValidationError("invalid progress file", dataprocessing.ErrWeekNotDetected),
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid progress file: week could not be detected from filename",
		},
		{
			name:       "unreadable workbook",
			err:        apierrors.NewParsingError("failed to read progress file", errors.New("zip: not a valid zip file")),
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "failed to read progress file: zip: not a valid zip file",
		},
		{
			name:       "storage failure hides cause",
			err:        apierrors.NewStorageError("failed to write report", errors.New("/srv/secret/path: no space left")),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "failed to write report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			gen := new(MockReportGenerator)
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			rec := httptest.NewRecorder()
			newReportHandler(env, gen, 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze", reportParts(t)...))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.wantDetail, decodeProblem(t, rec)["detail"])
			gen.AssertExpectations(t)
			env.assertWorkspacesRemoved(t)
		})
	}
}

func TestReportHandler_WindowsClientPath(t *testing.T) {
	env := newTestEnv(t)
	gen := new(MockReportGenerator)
	parts := reportParts(t)
	parts[1].name = `C:\Users\analyst\Desktop\Progress_w12.xlsx`

	gen.On("Analyze", mock.Anything, mock.MatchedBy(func(req services.ReportRequest) bool {
		return filepath.Base(req.ProgressPath) == "progress_file_Progress_w12.xlsx"
	})).Return(&domain.WeeklyAnalysis{Week: 12, PreviousWeek: 11}, nil).Once()

	rec := httptest.NewRecorder()
	newReportHandler(env, gen, 1<<20).Analyze(rec, multipartRequest(t, "/api/analyze?format=json", parts...))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gen.AssertExpectations(t)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Progress_w12.xlsx", baseName(`C:\data\Progress_w12.xlsx`))
	assert.Equal(t, "raw.csv", baseName("/home/me/raw.csv"))
	assert.Equal(t, "gms.xlsx", baseName("gms.xlsx"))
}

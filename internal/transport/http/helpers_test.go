package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weeklyreport/internal/brandcheck"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/files"
	"weeklyreport/internal/middleware"
	"weeklyreport/internal/services"
	"weeklyreport/internal/shared/testutil"
	"weeklyreport/pkg/contracts/domain"
)

// MockReportGenerator is a mock implementation of ReportGenerator
type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Analyze(ctx context.Context, req services.ReportRequest) (*domain.WeeklyAnalysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklyAnalysis), args.Error(1)
}

func (m *MockReportGenerator) Generate(ctx context.Context, req services.ReportRequest, opts services.GenerateOptions) (*services.ReportResult, error) {
	args := m.Called(ctx, req, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReportResult), args.Error(1)
}

// MockBrandFlagger is a mock implementation of BrandFlagger
type MockBrandFlagger struct {
	mock.Mock
}

func (m *MockBrandFlagger) Flag(ctx context.Context, merchantsPath, reportPath, outPath string) (*brandcheck.Result, error) {
	args := m.Called(ctx, merchantsPath, reportPath, outPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*brandcheck.Result), args.Error(1)
}

// testEnv bundles what the upload handlers need
type testEnv struct {
	root         string
	logger       *slog.Logger
	workspaces   *files.Manager
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logs         *testutil.BufferedSlogHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	root := t.TempDir()
	return &testEnv{
		root:         root,
		logger:       logger,
		workspaces:   files.NewManager(root, false, logger),
		validator:    middleware.NewRequestValidator(logger),
		errorHandler: apierrors.NewErrorHandler(logger, false),
		logs:         logs,
	}
}

// assertWorkspacesRemoved checks that no request directory survived
func (e *testEnv) assertWorkspacesRemoved(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.root)
	require.NoError(t, err)
	require.Empty(t, entries, "request workspaces must be removed after the response")
}

// filePart is one file of a multipart request
type filePart struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, target string, parts ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// Package http implements the HTTP handlers of the weekly report web service.
// Handlers stay thin: they receive uploads into a per-request workspace,
// call the services package and translate its errors into RFC 7807 problem
// responses.
//
// # Endpoints
//
//	GET  /                    upload form
//	POST /api/analyze         raw_file, progress_file, gms_file -> .docx (or JSON with ?format=json)
//	POST /api/brands/flag     merchants_file, report_file -> flagged .xlsx
//	POST /api/logs            client-side log entries from the upload form
//	GET  /api/health          liveness and readiness probes, version
//
// # Uploads
//
// Every upload request gets its own workspace directory from the
// files.Manager. Uploaded files are stored there under
// "<field>_<original name>", so the original name (and the week number it
// carries) survives, and the directory is removed once the response has
// been written.
//
// # Error Handling
//
// All errors are rendered through errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "invalid progress file: expected column 'gms_52' not found in progress file",
//	    "instance": "/api/analyze"
//	}
//
// # Testing
//
// Handlers depend on small interfaces (ReportGenerator, BrandFlagger,
// WorkspaceProvider) so tests can substitute testify mocks and drive the
// handlers with httptest.
package http

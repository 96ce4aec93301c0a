package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/files"
	"weeklyreport/internal/middleware"
)

// Multipart field names accepted by the upload endpoints.
const (
	FieldRawFile       = "raw_file"
	FieldProgressFile  = "progress_file"
	FieldGMSFile       = "gms_file"
	FieldMerchantsFile = "merchants_file"
	FieldReportFile    = "report_file"
)

// XLSXContentType is the media type of returned workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartMemory is the part of an upload kept in memory before
// mime/multipart spills to temporary files.
const multipartMemory = 8 << 20

// upload is one received file: the client's base name and where it was
// stored.
type upload struct {
	Name string
	Path string
}

// uploader holds what every upload endpoint needs.
type uploader struct {
	workspaces WorkspaceProvider
	validator  *middleware.RequestValidator
	maxBytes   int64
}

// parse reads the multipart body, bounded by maxBytes.
func (u uploader) parse(w http.ResponseWriter, r *http.Request) error {
	if u.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return nil
}

// names returns the client file name of every field, failing on the first
// field that is absent.
func (u uploader) names(r *http.Request, fields ...string) (map[string]string, error) {
	names := make(map[string]string, len(fields))
	for _, field := range fields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 || headers[0].Filename == "" {
			return nil, apierrors.MissingUpload(field)
		}
		names[field] = baseName(headers[0].Filename)
	}
	return names, nil
}

// save copies every named field into ws as "<field>_<name>".
func (u uploader) save(r *http.Request, ws *files.Workspace, names map[string]string) (map[string]upload, error) {
	saved := make(map[string]upload, len(names))
	for field, name := range names {
		part, err := r.MultipartForm.File[field][0].Open()
		if err != nil {
			return nil, apierrors.NewStorageError("failed to read upload", err).WithContext("field", field)
		}

		path, err := ws.Save(field+"_"+name, part)
		part.Close()
		if err != nil {
			if errors.Is(err, files.ErrInvalidName) {
				return nil, apierrors.ErrValidation(field, err.Error())
			}
			return nil, apierrors.NewStorageError("failed to store upload", err).WithContext("field", field)
		}
		saved[field] = upload{Name: name, Path: path}
	}
	return saved, nil
}

// baseName strips any client-side directory, including Windows paths sent
// by older browsers.
func baseName(name string) string {
	return filepath.Base(strings.ReplaceAll(name, `\`, "/"))
}

// sendFile streams path as an attachment named name. Headers are only
// written once the file is open, so an error before that can still be
// rendered as a problem response.
func sendFile(w http.ResponseWriter, path, name, contentType string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, apierrors.NewStorageError("failed to open generated file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, apierrors.NewStorageError("failed to stat generated file", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("failed to send %s: %w", name, err)
	}
	return n, nil
}

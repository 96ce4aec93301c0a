package services

import (
	"context"
	"errors"

	"weeklyreport/internal/brandcheck"
	"weeklyreport/internal/dataprocessing"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/validation"
)

// Service errors
var (
	ErrMissingInput = errors.New("missing input file")
	ErrNoOutputDir  = errors.New("output directory is required")
)

// inputError classifies a failure to validate or read one input file.
func inputError(label string, err error) error {
	var appErr *apierrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrMissingInput),
		errors.Is(err, validation.ErrNotSpreadsheet),
		errors.Is(err, dataprocessing.ErrUnsupportedFormat),
		errors.Is(err, dataprocessing.ErrEmptyTable),
		errors.Is(err, brandcheck.ErrMerchantColumnMissing):
		return apierrors.NewAppValidationError("invalid "+label, err).WithContext("file", label)
	default:
		return apierrors.NewParsingError("failed to read "+label, err).WithContext("file", label)
	}
}

// analysisError classifies a failure of the analyzer.
func analysisError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, dataprocessing.ErrWeekNotDetected),
		errors.Is(err, dataprocessing.ErrMissingColumn):
		return apierrors.NewAppValidationError("invalid progress file", err).WithContext("file", "progress file")
	default:
		return apierrors.NewAppError(apierrors.ErrTypeParsing, "analysis failed", err)
	}
}

// Package errors provides error handling for meeting-flow.
//
// It re-exports github.com/cockroachdb/errors and defines the failure taxonomy
// shared by the pipeline stages. Adapters mark their errors with one of the
// sentinels below so callers can branch with errors.Is while the original
// cause chain and operator hints are preserved:
//
//	if !exists(path) {
//	    return errors.Mark(errors.Newf("audio file not found: %s", path), errors.ErrInputNotFound)
//	}
//
//	if errors.Is(err, errors.ErrMissingCredential) {
//	    // prompt the operator to run `meeting token`
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Failure taxonomy. Every error that leaves an adapter is marked with exactly
// one of these.
var (
	// ErrInputNotFound indicates a required input file does not exist.
	ErrInputNotFound = New("input not found")

	// ErrToolNotFound indicates an external binary is missing from PATH.
	ErrToolNotFound = New("tool not found")

	// ErrEngineUnavailable indicates the transcription runtime cannot be loaded.
	ErrEngineUnavailable = New("transcription engine unavailable")

	// ErrMissingCredential indicates no usable API key or OAuth token could be obtained.
	ErrMissingCredential = New("missing credential")

	// ErrEngineFailure indicates the transcription engine reported a failure.
	ErrEngineFailure = New("transcription engine failure")

	// ErrEncodeFailure indicates the video encoder exited unsuccessfully.
	ErrEncodeFailure = New("encode failure")

	// ErrUploadFailure indicates a non-recoverable upload transport or API error.
	ErrUploadFailure = New("upload failure")

	// ErrLedgerParse indicates a ledger line could not be parsed as "<n> - <url>".
	ErrLedgerParse = New("ledger parse ambiguity")

	// ErrLedgerConflict indicates an append would duplicate an existing sequence number.
	ErrLedgerConflict = New("ledger conflict")

	// ErrInvalidArgument indicates a caller supplied an unsupported value.
	ErrInvalidArgument = New("invalid argument")
)

// kinds is ordered so Kind reports the most specific classification first.
var kinds = []error{
	ErrInputNotFound,
	ErrToolNotFound,
	ErrEngineUnavailable,
	ErrMissingCredential,
	ErrEngineFailure,
	ErrEncodeFailure,
	ErrUploadFailure,
	ErrLedgerParse,
	ErrLedgerConflict,
	ErrInvalidArgument,
}

// Kind returns the taxonomy label of err, or "" when err is unclassified.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if Is(err, k) {
			return k.Error()
		}
	}
	return ""
}

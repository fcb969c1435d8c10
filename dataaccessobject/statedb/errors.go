package statedb

import "fmt"

// Error kinds for the persisted branch-tracker state (spec.md 6.4). Mirrors
// the teacher's NewStatedbError(kind, cause) convention: every accessor
// wraps its cause in one of these rather than returning a bare error.
type ErrCode int

const (
	StoreBranchHeaderError ErrCode = iota
	GetBranchHeaderError
	StoreReportStatusError
	GetReportStatusError
	StoreBranchTxRecordError
	GetBranchTxRecordError
	StoreBestTipError
	GetBestTipError
	StoreRawTxError
	GetRawTxError
)

var errName = map[ErrCode]string{
	StoreBranchHeaderError:   "StoreBranchHeaderError",
	GetBranchHeaderError:     "GetBranchHeaderError",
	StoreReportStatusError:   "StoreReportStatusError",
	GetReportStatusError:     "GetReportStatusError",
	StoreBranchTxRecordError: "StoreBranchTxRecordError",
	GetBranchTxRecordError:   "GetBranchTxRecordError",
	StoreBestTipError:        "StoreBestTipError",
	GetBestTipError:          "GetBestTipError",
	StoreRawTxError:          "StoreRawTxError",
	GetRawTxError:            "GetRawTxError",
}

type StatedbError struct {
	Code ErrCode
	Err  error
}

func (e *StatedbError) Error() string {
	return fmt.Sprintf("%s: %v", errName[e.Code], e.Err)
}

func (e *StatedbError) Unwrap() error { return e.Err }

func NewStatedbError(code ErrCode, err error) *StatedbError {
	return &StatedbError{Code: code, Err: err}
}

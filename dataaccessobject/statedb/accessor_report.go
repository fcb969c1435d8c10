package statedb

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// ReportStatus is the value half of spec.md's ReportRecord: a report key
// may transition only ∅ -> Reported -> Proved, and Proved is terminal
// (spec.md 3.2).
type ReportStatus byte

const (
	StatusUnreported ReportStatus = iota
	StatusReported
	StatusProved
)

func reportKeyBytes(reportKey common.Hash256) []byte {
	return objectKey(prefixReportStatus, reportKey[:])
}

// StoreReportStatus writes the status for a report key. Callers are
// responsible for enforcing the monotonicity invariant (blockchain package's
// report.go); this accessor only persists whatever it's handed.
func StoreReportStatus(db *StateDB, reportKey common.Hash256, status ReportStatus) error {
	if err := db.set(reportKeyBytes(reportKey), []byte{byte(status)}); err != nil {
		return NewStatedbError(StoreReportStatusError, err)
	}
	return nil
}

// GetReportStatus returns the status for a report key, or StatusUnreported
// with found=false if the key has never been reported.
func GetReportStatus(db *StateDB, reportKey common.Hash256) (status ReportStatus, found bool, err error) {
	raw, has, err := db.get(reportKeyBytes(reportKey))
	if err != nil {
		return StatusUnreported, false, NewStatedbError(GetReportStatusError, err)
	}
	if !has || len(raw) != 1 {
		return StatusUnreported, false, nil
	}
	return ReportStatus(raw[0]), true, nil
}

package blockchain

import "fmt"

// RejectKind is one of the seven error kinds of spec.md 7. Every reject a
// verifier in this package produces carries one of these, a DoS score, and
// a human-readable reason — never a bare error.
type RejectKind int

const (
	// RejectMalformed is a malformed script/tx shape: 100 DoS, never retried.
	RejectMalformed RejectKind = iota
	// RejectSoftUnknownParent is "parent not found / branch unknown":
	// 0 DoS, may be retried once the missing data arrives.
	RejectSoftUnknownParent
	// RejectDuplicate is used by mempool to drop silently.
	RejectDuplicate
	// RejectSpvHard is an internally-inconsistent SPV/merkle mismatch: 100 DoS.
	RejectSpvHard
	// RejectSpvSoft is an SPV mismatch where the host block is merely
	// unknown yet: 0 DoS.
	RejectSpvSoft
	// RejectRpcFailure is a peer RPC failure (non-consensus): 1 DoS unless
	// the call was optional, in which case callers treat it as a pass.
	RejectRpcFailure
	// RejectSignature is a signature-verification failure: 100 DoS unless
	// the call-contract exception of spec.md 4.E.1 applies.
	RejectSignature
)

func (k RejectKind) dosScore() int {
	switch k {
	case RejectMalformed, RejectSpvHard, RejectSignature:
		return 100
	case RejectRpcFailure:
		return 1
	default:
		return 0
	}
}

// Reject is the validation-state object spec.md 7's propagation policy
// describes: every reject carries a DoS score, a reject code, and a reason
// string; exceptions are reserved for unexpected invariant violations only.
type Reject struct {
	Kind   RejectKind
	Code   string
	Reason string
}

func (r *Reject) Error() string {
	return fmt.Sprintf("%s: %s (dos=%d)", r.Code, r.Reason, r.Kind.dosScore())
}

// DoS returns the DoS score mempool/block-connect callers should apply.
func (r *Reject) DoS() int { return r.Kind.dosScore() }

func newReject(kind RejectKind, code, reason string) *Reject {
	return &Reject{Kind: kind, Code: code, Reason: reason}
}

func newRejectf(kind RejectKind, code, format string, args ...interface{}) *Reject {
	return newReject(kind, code, fmt.Sprintf(format, args...))
}

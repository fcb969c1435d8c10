package common

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash256 is the 32-byte content hash used throughout the cross-chain core:
// block hashes, tx hashes, report/prove keys. It is a thin alias over
// chainhash.Hash so every hash in this module is byte-exact with the
// base UTXO engine's own hashes.
type Hash256 = chainhash.Hash

// BranchId identifies a branch chain. The main chain uses the reserved
// MainBranchID sentinel.
type BranchId = Hash256

// MainBranchID is the fixed bit pattern for "main" described in
// spec.md 3.1. It is the hash of the literal string "main" so it can't
// collide with any branch-create txid in practice while staying a plain
// Hash256 value (no sentinel out-of-band flag needed).
var MainBranchID = BranchId(chainhash.HashH([]byte("main")))

// IsMainBranch reports whether id is the reserved main-chain sentinel.
func IsMainBranch(id BranchId) bool {
	return id == MainBranchID
}

// Amount is a signed base-unit quantity. All sums in this module must
// satisfy MoneyRange.
type Amount int64

// MaxMoney bounds the supply the same way the base engine does; duplicated
// here because the cross-chain core re-validates sums independently of the
// base engine (spec.md 3.2 MoneyRange invariant).
const MaxMoney Amount = 21_000_000 * 100_000_000

// MoneyRange reports whether amt is a valid on-chain value.
func MoneyRange(amt Amount) bool {
	return amt >= 0 && amt <= MaxMoney
}

// OutPoint references a single previous output.
type OutPoint struct {
	Hash  Hash256
	Index uint32
}

func (o OutPoint) String() string {
	return o.Hash.String() + ":" + hex.EncodeToString([]byte{byte(o.Index)})
}

// Uint64ToBytes encodes a height/time/index field the same fixed-width way
// across every key-derivation and framing helper in this module.
func Uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// HashBytes hashes arbitrary framing the way ReportRecord/mine-coin keys do:
// double round through chainhash's SHA-256d, the base engine's canonical
// hash function.
func HashBytes(parts ...[]byte) Hash256 {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return chainhash.HashH(buf)
}

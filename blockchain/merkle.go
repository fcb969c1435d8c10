package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// BlockHeader is the subset of a branch block header this core needs:
// ancestry linkage, proof-of-stake binding, the three merkle-root variants
// spec.md 3.1/4.F require (plain tx inclusion, prev-data, final-data), and
// the signature/time fields contextual validation checks (spec.md 4.B.1).
type BlockHeader struct {
	Version    int32
	PrevBlock  common.Hash256
	MerkleRoot common.Hash256
	// MerkleRootWithPrevData / MerkleRootWithData are the two merkle-root
	// variants spec.md 4.F's contract-data proof hook verifies against.
	MerkleRootWithPrevData common.Hash256
	MerkleRootWithData     common.Hash256
	Time                   int64

	PrevoutStake common.OutPoint
	BlockSig     []byte
}

func (h BlockHeader) Hash() common.Hash256 {
	var buf []byte
	buf = append(buf, h.PrevBlock[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = append(buf, common.Uint64ToBytes(uint64(h.Time))...)
	return common.HashBytes(buf)
}

// Block is the minimal block view the proof primitives and the prove
// state machine need: a header plus its ordered transaction set.
type Block struct {
	Header BlockHeader
	Vtx    []Tx
}

func (b *Block) hash() common.Hash256 { return b.Header.Hash() }

// SpvProof is (blockHash, partial-merkle-tree) — spec.md 3.1 and GLOSSARY.
type SpvProof struct {
	BlockHash common.Hash256
	Pmt       PartialMerkleTree
}

// PartialMerkleTree is a compact multi-leaf inclusion proof, built the same
// way bitcoin's CPartialMerkleTree is: a depth-first (pre-order) traversal of the full
// merkle tree that prunes any subtree containing no matched leaf, recording
// one bit per visited node (matched/not) and one hash per pruned node.
type PartialMerkleTree struct {
	NumTx  uint32
	Bits   []bool
	Hashes []common.Hash256
}

func merkleTreeHeight(numTx uint32) uint32 {
	height := uint32(0)
	for (uint32(1) << height) < numTx {
		height++
	}
	return height
}

func treeWidth(numTx uint32, height, level uint32) uint32 {
	return (numTx + (1 << level) - 1) >> level
}

func calcHash(txHashes []common.Hash256, height, pos uint32) common.Hash256 {
	if height == 0 {
		return txHashes[pos]
	}
	left := calcHash(txHashes, height-1, pos*2)
	var right common.Hash256
	width := treeWidth(uint32(len(txHashes)), height, height-1)
	if pos*2+1 < width {
		right = calcHash(txHashes, height-1, pos*2+1)
	} else {
		right = left
	}
	return common.HashBytes(left[:], right[:])
}

// NewSpvProof builds a partial Merkle tree over block.Vtx in natural order,
// marking the leaves whose hash is in txidSet (spec.md 4.A).
func NewSpvProof(block *Block, txidSet map[common.Hash256]bool) SpvProof {
	txHashes := make([]common.Hash256, len(block.Vtx))
	matches := make([]bool, len(block.Vtx))
	for i, tx := range block.Vtx {
		h := tx.Hash()
		txHashes[i] = h
		matches[i] = txidSet[h]
	}
	height := merkleTreeHeight(uint32(len(txHashes)))

	pmt := PartialMerkleTree{NumTx: uint32(len(txHashes))}
	traverseAndBuild(&pmt, txHashes, matches, height, 0)
	return SpvProof{BlockHash: block.hash(), Pmt: pmt}
}

func traverseAndBuild(pmt *PartialMerkleTree, txHashes []common.Hash256, matches []bool, height, pos uint32) {
	anyMatch := false
	for p := pos * (1 << height); p < (pos+1)*(1<<height) && p < pmt.NumTx; p++ {
		if matches[p] {
			anyMatch = true
			break
		}
	}
	pmt.Bits = append(pmt.Bits, anyMatch)
	if height == 0 || !anyMatch {
		pmt.Hashes = append(pmt.Hashes, calcHash(txHashes, height, pos))
		return
	}
	traverseAndBuild(pmt, txHashes, matches, height-1, pos*2)
	w := treeWidth(pmt.NumTx, height, height-1)
	if pos*2+1 < w {
		traverseAndBuild(pmt, txHashes, matches, height-1, pos*2+1)
	}
}

type pmtCursor struct {
	bitIdx, hashIdx int
	pmt             *PartialMerkleTree
	matched         []common.Hash256
	matchedIdx      []uint32
	bad             bool
}

func (c *pmtCursor) traverseAndExtract(height, pos uint32) common.Hash256 {
	if c.bitIdx >= len(c.pmt.Bits) {
		c.bad = true
		return common.Hash256{}
	}
	match := c.pmt.Bits[c.bitIdx]
	c.bitIdx++
	if height == 0 || !match {
		if c.hashIdx >= len(c.pmt.Hashes) {
			c.bad = true
			return common.Hash256{}
		}
		h := c.pmt.Hashes[c.hashIdx]
		c.hashIdx++
		if height == 0 && match {
			c.matched = append(c.matched, h)
			c.matchedIdx = append(c.matchedIdx, pos)
		}
		return h
	}
	left := c.traverseAndExtract(height-1, pos*2)
	width := treeWidth(c.pmt.NumTx, height, height-1)
	right := left
	if pos*2+1 < width {
		right = c.traverseAndExtract(height-1, pos*2+1)
	}
	return common.HashBytes(left[:], right[:])
}

// ExtractMatches walks the tree and returns the merkle root it computes
// along with every leaf hash/position marked as matched.
func (pmt *PartialMerkleTree) ExtractMatches() (root common.Hash256, matched []common.Hash256, idx []uint32, ok bool) {
	if pmt.NumTx == 0 {
		return root, nil, nil, false
	}
	height := merkleTreeHeight(pmt.NumTx)
	c := &pmtCursor{pmt: pmt}
	root = c.traverseAndExtract(height, 0)
	if c.bad || c.bitIdx != len(pmt.Bits) || c.hashIdx != len(pmt.Hashes) {
		return root, nil, nil, false
	}
	return root, c.matched, c.matchedIdx, true
}

// CheckSpvProof extracts matched leaves from pmt and returns:
//   - -1 if root mismatch
//   - -1 if queryTxHash not among the matches
//   - -1 if more than one match is present
//   - otherwise the leaf index (spec.md 4.A).
func CheckSpvProof(expectedMerkleRoot common.Hash256, pmt PartialMerkleTree, queryTxHash common.Hash256) int {
	root, matched, idx, ok := pmt.ExtractMatches()
	if !ok || root != expectedMerkleRoot {
		return -1
	}
	if len(matched) > 1 {
		return -1
	}
	for i, h := range matched {
		if h == queryTxHash {
			return int(idx[i])
		}
	}
	return -1
}

// GetTxHashWithPrevData / GetTxHashWithData bind a tx to the contract state
// observed before and produced by it (spec.md 4.A). Using a domain tag
// keeps the two hash families from ever colliding with a plain tx hash.
func GetTxHashWithPrevData(txid common.Hash256, contractPrevData []byte) common.Hash256 {
	return common.HashBytes([]byte("prevdata"), txid[:], contractPrevData)
}

func GetTxHashWithData(txid common.Hash256, contractFinalData []byte) common.Hash256 {
	return common.HashBytes([]byte("finaldata"), txid[:], contractFinalData)
}

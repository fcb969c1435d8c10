package blockchain

import (
	"sync"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
)

// headerNode is one in-memory DAG node backing BranchData's ancestry and
// work-accounting queries (spec.md 4.B). Parent is resolved lazily from the
// node map rather than walking the persisted store on every query.
type headerNode struct {
	Hash      common.Hash256
	PrevBlock common.Hash256
	Height    int64
	Work      int64
	StakeTx   []byte
	Header    BlockHeader
	Parent    *headerNode
}

// BranchData is the per-branch header DAG of spec.md 3.1: an ordered set of
// headers keyed by block hash, a best tip, and the current height.
type BranchData struct {
	BranchId common.BranchId

	mu      sync.RWMutex
	heads   map[common.Hash256]*headerNode
	bestTip *headerNode
}

func newBranchData(branchId common.BranchId) *BranchData {
	return &BranchData{BranchId: branchId, heads: make(map[common.Hash256]*headerNode)}
}

// Height is the current best-tip height, or -1 if the branch has no headers yet.
func (b *BranchData) Height() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.bestTip == nil {
		return -1
	}
	return b.bestTip.Height
}

// BestTip returns the current max-work leaf's hash.
func (b *BranchData) BestTip() (common.Hash256, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.bestTip == nil {
		return common.Hash256{}, false
	}
	return b.bestTip.Hash, true
}

// HasBlock reports whether blockHash is already in this branch's header DAG.
func (b *BranchData) HasBlock(blockHash common.Hash256) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.heads[blockHash]
	return ok
}

// GetBranchBlockData returns the stake-tx bytes and height recorded for
// blockHash (spec.md 4.B GetBranchBlockData).
func (b *BranchData) GetBranchBlockData(blockHash common.Hash256) (height int64, stakeTx []byte, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.heads[blockHash]
	if !ok {
		return 0, nil, false
	}
	return n.Height, n.StakeTx, true
}

// GetHeader returns the full header recorded for blockHash, used by the
// report/prove SPV checks of spec.md 4.E/4.F which need the merkle-root
// variants rather than just height/stake-tx.
func (b *BranchData) GetHeader(blockHash common.Hash256) (BlockHeader, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.heads[blockHash]
	if !ok {
		return BlockHeader{}, false
	}
	return n.Header, true
}

// GetAncestor walks parent pointers from block until it reaches height,
// spec.md 4.B / 4.F / 8 ("GetAncestor(b, b.height) == b").
func (b *BranchData) GetAncestor(block common.Hash256, height int64) (common.Hash256, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.heads[block]
	if !ok || height < 0 || height > n.Height {
		return common.Hash256{}, false
	}
	for n != nil && n.Height > height {
		n = n.Parent
	}
	if n == nil || n.Height != height {
		return common.Hash256{}, false
	}
	return n.Hash, true
}

// IsAncestor reports whether ancestor is on the chain leading to descendant
// (spec.md 4.F step 3: "proveBlock is an ancestor of reportedBlock").
func (b *BranchData) IsAncestor(descendant, ancestor common.Hash256) bool {
	b.mu.RLock()
	descNode, ok := b.heads[descendant]
	ancNode, ok2 := b.heads[ancestor]
	b.mu.RUnlock()
	if !ok || !ok2 {
		return false
	}
	got, ok := b.GetAncestor(descNode.Hash, ancNode.Height)
	return ok && got == ancestor
}

// BlocksStakedBy returns every block hash in this branch whose stake tx's
// OP_MINE_BRANCH_COIN vout derives from fromTxId, used by the redeem-safety
// check of spec.md 4.D step 5 to find which blocks a mortgage's mine-coin
// staked. Decoding the stake tx is the byte-exact codec hook decodeProveTx
// wires to the base engine (spec.md 1, Non-goals).
func (b *BranchData) BlocksStakedBy(fromTxId common.Hash256) []common.Hash256 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []common.Hash256
	for hash, n := range b.heads {
		if len(n.StakeTx) == 0 || decodeProveTx == nil {
			continue
		}
		stakeTx, err := decodeProveTx(n.StakeTx)
		if err != nil {
			continue
		}
		for _, o := range stakeTx.Vout() {
			if coinFromTxId, _, _, ok := ParseMineCoinScript(o.ScriptPubKey); ok && coinFromTxId == fromTxId {
				out = append(out, hash)
				break
			}
		}
	}
	return out
}

func (b *BranchData) insert(n *headerNode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if parent, ok := b.heads[n.PrevBlock]; ok {
		n.Parent = parent
	}
	b.heads[n.Hash] = n
	if b.bestTip == nil || n.Work > b.bestTip.Work {
		b.bestTip = n
	}
}

// BranchStore is the top-level registry of BranchData, one per branchId
// (spec.md 4.B). It is backed by the persisted statedb and loads existing
// headers on first access to a branch.
type BranchStore struct {
	mu       sync.RWMutex
	db       *statedb.StateDB
	branches map[common.BranchId]*BranchData
	created  map[common.BranchId]bool
}

// NewBranchStore constructs a store backed by db.
func NewBranchStore(db *statedb.StateDB) *BranchStore {
	return &BranchStore{
		db:       db,
		branches: make(map[common.BranchId]*BranchData),
		created:  make(map[common.BranchId]bool),
	}
}

// MarkBranchCreated records that branchId's branch-create tx has been seen
// (spec.md 3.3: "BranchData is created when the main chain sees the first
// SyncBranchInfo for a branchId whose branch-create tx exists"). The base
// validator calls this when it connects the IsBranchCreate tx itself; this
// module only remembers the fact.
func (s *BranchStore) MarkBranchCreated(branchId common.BranchId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created[branchId] = true
}

// IsBranchCreated reports whether branchId's branch-create tx has been seen.
func (s *BranchStore) IsBranchCreated(branchId common.BranchId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created[branchId]
}

// HasBranchData reports whether any header has ever been accepted for branchId.
func (s *BranchStore) HasBranchData(branchId common.BranchId) bool {
	s.mu.RLock()
	_, ok := s.branches[branchId]
	s.mu.RUnlock()
	return ok
}

// GetBranchData returns (creating and lazily loading, if necessary) the
// BranchData for branchId.
func (s *BranchStore) GetBranchData(branchId common.BranchId) (*BranchData, error) {
	s.mu.RLock()
	bd, ok := s.branches[branchId]
	s.mu.RUnlock()
	if ok {
		return bd, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bd, ok := s.branches[branchId]; ok {
		return bd, nil
	}
	bd = newBranchData(branchId)
	stored, err := statedb.AllBranchHeaders(s.db, branchId)
	if err != nil {
		return nil, err
	}
	// Headers may arrive out of parent order from the db iterator; insert by
	// ascending height so each parent is already present when its child links.
	for h := int64(0); ; h++ {
		found := false
		for _, sh := range stored {
			if sh.Height == h {
				bd.insert(&headerNode{
					Hash: sh.BlockHash, PrevBlock: sh.PrevBlock, Height: sh.Height,
					Work: sh.Work, StakeTx: sh.StakeTxData, Header: storedToHeader(sh),
				})
				found = true
			}
		}
		if !found && h > 0 {
			break
		}
		if len(stored) == 0 {
			break
		}
	}
	s.branches[branchId] = bd
	return bd, nil
}

// HeaderValidators are the external hooks component B's contextual checks
// call into (spec.md 4.B.1 steps 3/5/6). The signature scheme, parent-
// linkage/version/time-drift rules, and the branch's PoW/PoS work function
// all belong to the base consensus engine (spec.md 1, Non-goals: "defining
// a new consensus"); this module only sequences the calls and reacts to
// their verdicts.
type HeaderValidators struct {
	// VerifySignature implements CheckBlockHeaderSignature.
	VerifySignature func(h BlockHeader) bool
	// CheckWork implements CheckBlockHeaderWork against branch params.
	CheckWork func(branchId common.BranchId, h BlockHeader, parent *BlockHeader, parentWork int64) (work int64, ok bool)
	// AdjustedTime implements GetAdjustedTime() for the time-drift bound.
	AdjustedTime func() int64
}

// MaxFutureBlockTime bounds how far a header's timestamp may lead
// AdjustedTime() before BranchContextualCheckBlockHeader rejects it
// (spec.md 4.B.1 step 5, "time drift bounded by GetAdjustedTime()").
const MaxFutureBlockTime = 2 * 60 * 60

// AddBlockInfo validates and inserts a SyncBranchInfo tx's header
// (spec.md 4.B.1). Each numbered check below corresponds to the spec's list
// and fails with a distinct Reject kind.
func (s *BranchStore) AddBlockInfo(tx Tx, cache *BranchCache, v HeaderValidators) *Reject {
	if !tx.IsSyncBranchInfo() {
		return newReject(RejectMalformed, "bad-sync-branch-tx", "tx is not IsSyncBranchInfo")
	}
	info := tx.BranchBlockInfo()
	if info == nil {
		return newReject(RejectMalformed, "bad-sync-branch-data", "missing BranchBlockInfo payload")
	}

	// 1. Branch must have been created.
	if !s.IsBranchCreated(info.BranchId) {
		return newReject(RejectSoftUnknownParent, "branch-unknown", "branch-create tx for this branchId has not been seen")
	}

	// 2. Header must carry a prevoutStake and non-empty block signature.
	if info.Header.PrevoutStake == (common.OutPoint{}) || len(info.Header.BlockSig) == 0 {
		return newReject(RejectMalformed, "bad-branch-header-stake", "header missing prevoutStake or block signature")
	}

	// 3. CheckBlockHeaderSignature.
	if v.VerifySignature != nil && !v.VerifySignature(info.Header) {
		return newReject(RejectSignature, "bad-branch-header-signature", "CheckBlockHeaderSignature failed")
	}

	blockHash := info.Header.Hash()

	// 4. Cache + store dedup.
	if cache != nil && cache.HasInCache(info.BranchId, blockHash) {
		return newReject(RejectDuplicate, "duplicate-branch-header", "header already staged in this block's cache")
	}
	bd, err := s.GetBranchData(info.BranchId)
	if err != nil {
		return newRejectf(RejectSoftUnknownParent, "branch-store-error", "%v", err)
	}
	if bd.HasBlock(blockHash) {
		return newReject(RejectDuplicate, "duplicate-branch-header", "header already in the persistent store")
	}

	// 5. Base BranchContextualCheckBlockHeader: parent linkage, time drift.
	var parentHdr *BlockHeader
	var parentWork int64
	isGenesis := info.Header.PrevBlock == (common.Hash256{})
	if !isGenesis {
		parentHeight, parentStake, ok := bd.GetBranchBlockData(info.Header.PrevBlock)
		_ = parentStake
		if !ok && (cache == nil || !cache.HasInCache(info.BranchId, info.Header.PrevBlock)) {
			return newReject(RejectSoftUnknownParent, "branch-header-orphan", "parent header not found")
		}
		if ok && info.Height != parentHeight+1 {
			return newReject(RejectMalformed, "bad-branch-header-height", "height is not parent height + 1")
		}
		bd.mu.RLock()
		if pn, found := bd.heads[info.Header.PrevBlock]; found {
			ph := pn.Header
			parentHdr = &ph
			parentWork = pn.Work
		}
		bd.mu.RUnlock()
	}
	if v.AdjustedTime != nil {
		now := v.AdjustedTime()
		if info.Header.Time > now+MaxFutureBlockTime {
			return newReject(RejectMalformed, "time-too-new", "branch header timestamp too far in the future")
		}
	}

	// 6. CheckBlockHeaderWork against branch params.
	work := parentWork + 1
	if v.CheckWork != nil {
		w, ok := v.CheckWork(info.BranchId, info.Header, parentHdr, parentWork)
		if !ok {
			return newReject(RejectMalformed, "bad-branch-header-work", "CheckBlockHeaderWork failed")
		}
		work = w
	}

	node := &headerNode{
		Hash:      blockHash,
		PrevBlock: info.Header.PrevBlock,
		Height:    info.Height,
		Work:      work,
		StakeTx:   info.StakeTxData,
		Header:    info.Header,
	}
	bd.insert(node)
	if cache != nil {
		cache.StageHeader(info.BranchId, blockHash)
	}
	if err := statedb.StoreBranchHeader(s.db, headerToStored(info.BranchId, blockHash, work, info.Height, info.StakeTxData, info.Header)); err != nil {
		return newRejectf(RejectSoftUnknownParent, "branch-store-error", "%v", err)
	}
	if tip, _ := bd.BestTip(); tip == blockHash {
		_ = statedb.StoreBestTip(s.db, info.BranchId, blockHash)
	}
	return nil
}

// BranchCache mirrors pending header additions from a connecting block
// (spec.md 4.B "its HasInCache(tx) must be consulted before the persistent
// store to prevent double-submit in the same block"). It is reset at the
// start of each block connect attempt and discarded on disconnect.
type BranchCache struct {
	mu      sync.Mutex
	headers map[common.BranchId]map[common.Hash256]bool
}

// NewBranchCache constructs an empty per-block cache.
func NewBranchCache() *BranchCache {
	return &BranchCache{headers: make(map[common.BranchId]map[common.Hash256]bool)}
}

// HasInCache reports whether (branchId, blockHash) was already staged
// earlier in the same connecting block.
func (c *BranchCache) HasInCache(branchId common.BranchId, blockHash common.Hash256) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers[branchId][blockHash]
}

// StageHeader records (branchId, blockHash) as staged for this block.
func (c *BranchCache) StageHeader(branchId common.BranchId, blockHash common.Hash256) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headers[branchId] == nil {
		c.headers[branchId] = make(map[common.Hash256]bool)
	}
	c.headers[branchId][blockHash] = true
}

// Reset clears all staged entries, called when starting a new block connect
// attempt or after a commit/rollback.
func (c *BranchCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = make(map[common.BranchId]map[common.Hash256]bool)
}

func storedToHeader(sh *statedb.StoredHeader) BlockHeader {
	return BlockHeader{
		Version:                sh.Version,
		PrevBlock:              sh.PrevBlock,
		MerkleRoot:             sh.MerkleRoot,
		MerkleRootWithPrevData: sh.MerkleRootWithPrevData,
		MerkleRootWithData:     sh.MerkleRootWithData,
		Time:                   sh.Time,
		PrevoutStake:           common.OutPoint{Hash: sh.PrevoutStakeHash, Index: sh.PrevoutStakeIndex},
		BlockSig:               sh.BlockSig,
	}
}

func headerToStored(branchId common.BranchId, blockHash common.Hash256, work, height int64, stakeTx []byte, h BlockHeader) *statedb.StoredHeader {
	return &statedb.StoredHeader{
		BranchId: branchId, BlockHash: blockHash, PrevBlock: h.PrevBlock,
		Height: height, Work: work, StakeTxData: stakeTx,
		Version: h.Version, Time: h.Time,
		MerkleRoot: h.MerkleRoot, MerkleRootWithPrevData: h.MerkleRootWithPrevData, MerkleRootWithData: h.MerkleRootWithData,
		PrevoutStakeHash: h.PrevoutStake.Hash, PrevoutStakeIndex: h.PrevoutStake.Index, BlockSig: h.BlockSig,
	}
}

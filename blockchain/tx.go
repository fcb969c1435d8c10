package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// TxIn is a transaction input: a reference to a previous output plus the
// unlocking script. Signature verification itself is the base engine's
// job (spec.md 1, Non-goals); this module only needs the shape.
type TxIn struct {
	PrevOut   common.OutPoint
	ScriptSig Script
}

// TxOut is a transaction output.
type TxOut struct {
	Value        common.Amount
	ScriptPubKey Script
}

// BranchBlockData is the payload of a SyncBranchInfo tx (spec.md 3.1):
// a branch header, the branch it belongs to, its height, and the raw stake
// transaction that must sit at vtx[1] of that block.
type BranchBlockData struct {
	Header      BlockHeader
	BranchId    common.BranchId
	Height      int64
	StakeTxData []byte
}

// ReportKind enumerates the four report kinds of spec.md 4.E. Prove only
// ever carries the first three (REPORT_CONTRACT_DATA has no matching prove
// kind of its own; it is proved through the contract-data hook of 4.F).
type ReportKind uint8

const (
	ReportTx ReportKind = iota
	ReportCoinbase
	ReportMerkleTree
	ReportContractData
)

// ReportData is the payload carried by a Report tx.
type ReportData struct {
	Kind              ReportKind
	ReportedBranchId  common.BranchId
	ReportedBlockHash common.Hash256
	ReportedTxHash    common.Hash256

	// ContractProof is populated only for ReportContractData (spec.md 4.F).
	ContractProof *ContractDataProof
}

// ContractDataClaim is one (contractId, priorOrigin) entry in a
// ReportContractData report's stale-read set (spec.md 4.F step 4): the
// reported tx claims ContractId's state was last written by WriterBlockHash
// at WriterTxIndex. CheckProveContractData walks every claim and confirms
// fraud the moment one of them shows a write that post-dates what the
// reported tx says it observed.
type ContractDataClaim struct {
	ContractId      []byte
	WriterBlockHash common.Hash256
	WriterHeight    int64
	WriterTxIndex   uint32
}

// ContractDataProof is the SPV-pair evidence a ReportContractData report
// carries (spec.md 4.F): proof that the reported tx read one or more
// contracts' state before some other tx (the "prove" tx) overwrote it.
type ContractDataProof struct {
	// ReportedContractPrevData is the contract state the reported tx
	// observed before executing, hashed together with the reported tx's own
	// hash for PrevDataSpv's inclusion check.
	ReportedContractPrevData []byte
	// PrevDataSpv proves reportedTxHashWithPrevData's inclusion in
	// reportedBlock.header.hashMerkleRootWithPrevData.
	PrevDataSpv SpvProof

	// ProveTxHash/ProveContractData describe the tx offered to prove a
	// newer write happened. FinalDataSpv proves proveTxHashWithData's
	// inclusion in proveBlock.header.hashMerkleRootWithData.
	ProveTxHash       common.Hash256
	ProveContractData []byte
	FinalDataSpv      SpvProof

	// Claims is every (contractId, priorOrigin) pair in the reported tx's
	// prev-data set (spec.md 4.F step 4).
	Claims []ContractDataClaim
}

// ProveDataItem is one element of the prove-data vector consulted by
// CheckTransactionProveWithProveData (spec.md 4.E.1).
type ProveDataItem struct {
	BlockHash common.Hash256
	TxBytes   []byte
	Spv       SpvProof
}

// ProveData is the payload carried by a Prove tx. ReportedBranchId/
// ReportedBlockHash/TxHash mirror ReportData's fields exactly so
// GetProveTxHashKey and GetReportTxHashKey derive identical hashes for a
// matching report/prove pair (spec.md 4.E key derivation, spec.md 8
// "Report key determinism").
type ProveData struct {
	Kind              ReportKind
	ReportedBranchId  common.BranchId
	ReportedBlockHash common.Hash256
	TxHash            common.Hash256

	VtxData [][]byte // coinbase/merkle-tree prove path: the full vtx set
	Vect    []ProveDataItem

	// contract-data corroboration path (spec.md 4.F, last paragraph)
	ProveContractData []byte
}

// Tx is the abstract, immutable transaction this core consumes. The base
// UTXO/validation engine owns the concrete implementation and the
// byte-exact codec (spec.md 1); this module only needs the view below.
// Flags are not mutually exclusive as noted in spec.md 3.1 (e.g. a tx can
// be both IsBranchChainTransStep2 and IsCallContract).
type Tx interface {
	Hash() common.Hash256

	IsBranchCreate() bool
	IsBranchChainTransStep1() bool
	IsBranchChainTransStep2() bool
	IsMortgage() bool
	IsSyncBranchInfo() bool
	IsRedeemMortgageStatement() bool
	IsReport() bool
	IsProve() bool
	IsReportReward() bool
	IsLockMortgageMineCoin() bool
	IsUnLockMortgageMineCoin() bool
	IsSmartContract() bool
	IsCallContract() bool
	IsCoinBase() bool

	FromBranchId() common.BranchId
	SendToBranchId() common.BranchId
	InAmount() common.Amount
	SendToTxHexData() string

	BranchBlockInfo() *BranchBlockData
	ReportData() *ReportData
	ProveData() *ProveData
	PMT() *SpvProof

	ReportTxId() common.Hash256
	ProveTxId() common.Hash256
	CoinPreoutHash() common.Hash256
	// Step1TxHash is the hash of the step-1 tx a step-2 tx settles, used by
	// component G's fetch-by-txid call (spec.md 4.C step 6). Only meaningful
	// when IsBranchChainTransStep2() is true.
	Step1TxHash() common.Hash256

	Vin() []TxIn
	Vout() []TxOut

	ContractAddr() []byte
	ContractOut() common.Amount
}

// MutableTx is a concrete, in-memory Tx used by this module's own tests and
// by the inbound RPC server when it must assemble a step-2 tx from request
// parameters. Production nodes plug in their own Tx implementation backed
// by the base engine's real transaction type.
type MutableTx struct {
	TxHash common.Hash256

	FBranchCreate             bool
	FBranchChainTransStep1    bool
	FBranchChainTransStep2    bool
	FMortgage                 bool
	FSyncBranchInfo           bool
	FRedeemMortgageStatement  bool
	FReport                   bool
	FProve                    bool
	FReportReward             bool
	FLockMortgageMineCoin     bool
	FUnLockMortgageMineCoin   bool
	FSmartContract            bool
	FCallContract             bool
	FCoinBase                 bool

	From           common.BranchId
	SendTo         common.BranchId
	In             common.Amount
	SendToHexData  string

	Branch *BranchBlockData
	Report *ReportData
	Prove  *ProveData
	Proof  *SpvProof

	ReportTxHash      common.Hash256
	ProveTxHash       common.Hash256
	CoinPreoutHash256 common.Hash256
	Step1Hash         common.Hash256

	VinList  []TxIn
	VoutList []TxOut

	ContractAddress []byte
	ContractOutAmt  common.Amount
}

func (t *MutableTx) Hash() common.Hash256                 { return t.TxHash }
func (t *MutableTx) IsBranchCreate() bool                 { return t.FBranchCreate }
func (t *MutableTx) IsBranchChainTransStep1() bool        { return t.FBranchChainTransStep1 }
func (t *MutableTx) IsBranchChainTransStep2() bool        { return t.FBranchChainTransStep2 }
func (t *MutableTx) IsMortgage() bool                     { return t.FMortgage }
func (t *MutableTx) IsSyncBranchInfo() bool               { return t.FSyncBranchInfo }
func (t *MutableTx) IsRedeemMortgageStatement() bool      { return t.FRedeemMortgageStatement }
func (t *MutableTx) IsReport() bool                       { return t.FReport }
func (t *MutableTx) IsProve() bool                        { return t.FProve }
func (t *MutableTx) IsReportReward() bool                 { return t.FReportReward }
func (t *MutableTx) IsLockMortgageMineCoin() bool         { return t.FLockMortgageMineCoin }
func (t *MutableTx) IsUnLockMortgageMineCoin() bool       { return t.FUnLockMortgageMineCoin }
func (t *MutableTx) IsSmartContract() bool                { return t.FSmartContract }
func (t *MutableTx) IsCallContract() bool                 { return t.FCallContract }
func (t *MutableTx) IsCoinBase() bool                     { return t.FCoinBase }

func (t *MutableTx) FromBranchId() common.BranchId   { return t.From }
func (t *MutableTx) SendToBranchId() common.BranchId { return t.SendTo }
func (t *MutableTx) InAmount() common.Amount         { return t.In }
func (t *MutableTx) SendToTxHexData() string         { return t.SendToHexData }

func (t *MutableTx) BranchBlockInfo() *BranchBlockData { return t.Branch }
func (t *MutableTx) ReportData() *ReportData           { return t.Report }
func (t *MutableTx) ProveData() *ProveData             { return t.Prove }
func (t *MutableTx) PMT() *SpvProof                    { return t.Proof }

func (t *MutableTx) ReportTxId() common.Hash256     { return t.ReportTxHash }
func (t *MutableTx) ProveTxId() common.Hash256      { return t.ProveTxHash }
func (t *MutableTx) CoinPreoutHash() common.Hash256 { return t.CoinPreoutHash256 }
func (t *MutableTx) Step1TxHash() common.Hash256    { return t.Step1Hash }

func (t *MutableTx) Vin() []TxIn   { return t.VinList }
func (t *MutableTx) Vout() []TxOut { return t.VoutList }

func (t *MutableTx) ContractAddr() []byte      { return t.ContractAddress }
func (t *MutableTx) ContractOut() common.Amount { return t.ContractOutAmt }

// ValueOut sums Vout, the same quantity the original CTransaction::GetValueOut
// computes.
func ValueOut(tx Tx) common.Amount {
	var total common.Amount
	for _, o := range tx.Vout() {
		total += o.Value
	}
	return total
}

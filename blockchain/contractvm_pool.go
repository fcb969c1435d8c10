package blockchain

import (
	"runtime"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// contractJob is one unit of re-execution work submitted to the pool.
type contractJob struct {
	tx       Tx
	prevData []byte
	result   chan<- contractResult
}

type contractResult struct {
	finalData []byte
	ok        bool
}

// ContractVMWorker owns its own scratch scripting-runtime state; workers
// never share state across jobs (spec.md 5: "each worker owns its own
// scripting runtime — no sharing across workers"). The real EVM is out of
// scope (spec.md 1, Non-goals); this worker only needs go-ethereum's keccak
// hash and Hash type to stand in for the VM's hash surface,
// the same dependency heavyweight EVM-embedding nodes in the example corpus
// (`heavypackets-incognito-chain`) carry for their own contract layer.
type ContractVMWorker struct {
	id      int
	scratch ethcommon.Hash
}

// ContractVMPool is a fixed-size worker pool sized at GOMAXPROCS, matching
// spec.md 5's "thread pool of ContractVM workers." The driver
// (CorroborateProveExecution, through AsReexecutor) runs the final merkle
// check after collecting a worker's result.
type ContractVMPool struct {
	jobs    chan contractJob
	wg      sync.WaitGroup
	workers []*ContractVMWorker
}

// NewContractVMPool starts size workers (0 or negative means GOMAXPROCS(0)).
func NewContractVMPool(size int) *ContractVMPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &ContractVMPool{jobs: make(chan contractJob, size*4)}
	for i := 0; i < size; i++ {
		w := &ContractVMWorker{id: i}
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w)
	}
	return p
}

func (p *ContractVMPool) run(w *ContractVMWorker) {
	defer p.wg.Done()
	for job := range p.jobs {
		finalData, ok := w.reexecute(job.tx, job.prevData)
		job.result <- contractResult{finalData: finalData, ok: ok}
	}
}

// reexecute is the worker's local, side-effect-free deterministic
// re-execution stand-in: it folds the tx hash, prev-data, and the worker's
// own scratch hash into a keccak digest. A production node replaces this
// body with a call into its real contract VM; the pool/queue/result
// plumbing around it does not change.
func (w *ContractVMWorker) reexecute(tx Tx, prevData []byte) ([]byte, bool) {
	h := tx.Hash()
	w.scratch = crypto.Keccak256Hash(h[:], prevData)
	return w.scratch.Bytes(), true
}

// Submit re-executes tx against prevData on the pool and blocks for the result.
func (p *ContractVMPool) Submit(tx Tx, prevData []byte) (finalData []byte, ok bool) {
	resultCh := make(chan contractResult, 1)
	p.jobs <- contractJob{tx: tx, prevData: prevData, result: resultCh}
	r := <-resultCh
	return r.finalData, r.ok
}

// AsReexecutor adapts the pool to the ContractReexecutor signature
// CorroborateProveExecution expects.
func (p *ContractVMPool) AsReexecutor() ContractReexecutor {
	return p.Submit
}

// Close stops accepting jobs and waits for in-flight workers to drain.
func (p *ContractVMPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

package rpcbridge

import (
	"encoding/json"
	"sync"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// RpcConfig is the connection info for one peer chain's JSON-RPC endpoint
// (spec.md 3.1). Go form of the original source's CellRPCConfig.
type RpcConfig struct {
	Ip       string
	Port     int
	User     string
	Password string
	Wallet   string
}

// IsValid mirrors CellRPCConfig::IsValid bit-for-bit: non-empty ip and a
// nonzero port, nothing else.
func (c RpcConfig) IsValid() bool {
	return c.Ip != "" && c.Port != 0
}

// ParsedRpcConfig is the on-the-wire JSON shape of one "-mainchaincfg" /
// "-branchcfg" entry, matching the original source's ParseRpcConfig field
// names (branchid/ip/port/usrname/password/wallet).
type ParsedRpcConfig struct {
	BranchId string `json:"branchid"`
	Ip       string `json:"ip"`
	Port     int    `json:"port"`
	User     string `json:"usrname"`
	Password string `json:"password"`
	Wallet   string `json:"wallet"`
}

// ParseRpcConfig decodes one config entry, requiring ip and a nonzero port
// (original source: ParseRpcConfig returns false without them).
func ParseRpcConfig(raw string) (branchId string, cfg RpcConfig, ok bool) {
	var p ParsedRpcConfig
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", RpcConfig{}, false
	}
	if p.Ip == "" || p.Port == 0 {
		return "", RpcConfig{}, false
	}
	return p.BranchId, RpcConfig{Ip: p.Ip, Port: p.Port, User: p.User, Password: p.Password, Wallet: p.Wallet}, true
}

// BranchChainMan is the process-wide registry branchId -> RpcConfig
// (spec.md 4.G), passed around explicitly rather than held in a package
// singleton (spec.md 9, "Global state... becomes an explicit ChainCtx").
type BranchChainMan struct {
	mu      sync.RWMutex
	configs map[common.BranchId]RpcConfig
}

// NewBranchChainMan constructs an empty registry.
func NewBranchChainMan() *BranchChainMan {
	return &BranchChainMan{configs: make(map[common.BranchId]RpcConfig)}
}

// Init populates the registry from a main-chain-config entry and zero or
// more branch-config entries (spec.md 4.G), the Go form of
// CellBranchChainMan::Init reading "-mainchaincfg"/"-branchcfg".
func (m *BranchChainMan) Init(mainChainCfg string, branchCfgs []string) {
	if mainChainCfg != "" {
		if _, cfg, ok := ParseRpcConfig(mainChainCfg); ok && cfg.IsValid() {
			m.mu.Lock()
			m.configs[common.MainBranchID] = cfg
			m.mu.Unlock()
		}
	}
	for _, raw := range branchCfgs {
		branchIdStr, cfg, ok := ParseRpcConfig(raw)
		if !ok || !cfg.IsValid() {
			continue
		}
		branchId := common.HashBytes([]byte(branchIdStr))
		m.mu.Lock()
		m.configs[branchId] = cfg
		m.mu.Unlock()
	}
}

// GetRpcConfig returns a copy of the config registered for branchId.
func (m *BranchChainMan) GetRpcConfig(branchId common.BranchId) (RpcConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[branchId]
	return cfg, ok
}

// ReplaceRpcConfig overrides the config for branchId (runtime updates via
// admin RPC); must never be called while a verification is reading the map
// mid-flight (spec.md 5: "mutations occur only on Init/admin RPC and must
// be done under a short lock, never during verification").
func (m *BranchChainMan) ReplaceRpcConfig(branchId common.BranchId, cfg RpcConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[branchId] = cfg
}

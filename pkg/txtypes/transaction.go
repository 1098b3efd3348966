package txtypes

import "math/big"

// ContractMode classifies what kind of contract invocation a transaction
// carries, if any.
type ContractMode int

const (
	ContractModeNone ContractMode = iota
	ContractModeChainCode
	ContractModeSmartContract
)

func (m ContractMode) String() string {
	switch m {
	case ContractModeChainCode:
		return "chain-code"
	case ContractModeSmartContract:
		return "smart-contract"
	default:
		return "none"
	}
}

// Transfer is a single value movement within a transaction.
type Transfer struct {
	ToAddress string
	Amount    *big.Int
}

// Signatory pairs an identity with its signature over the transaction.
type Signatory struct {
	Identity  string
	Signature []byte
}

// ContractData names the contract a transaction invokes, either by digest
// and address (smart contract) or by chain-code name.
type ContractData struct {
	Digest        Digest
	Address       string
	ChainCodeName string
}

// Transaction is the opaque, already-verified record the storage engine
// operates on. Fields beyond Digest are treated as immutable payload; only
// FromSubtreeSync is ever rewritten, by the sync FSM.
type Transaction struct {
	Digest       Digest
	FromAddress  string
	Transfers    []Transfer
	ValidFrom    uint64
	ValidUntil   uint64
	ChargeRate   uint64
	ChargeLimit  uint64
	ContractMode ContractMode
	ContractData ContractData
	Action       string
	ShardMask    []byte
	Data         []byte
	Signatories  []Signatory

	// FromSubtreeSync is a transient flag: true when this transaction was
	// obtained via bulk subtree fetch. It suppresses recent-cache insertion
	// only: the engine's new-tx hook, and so the recent-gossip cache, still
	// receives such transactions. As an exported field it is gob-encoded
	// with the rest of the transaction when archived.
	FromSubtreeSync bool
}

// Layout returns the metadata-only projection of this transaction.
func (t Transaction) Layout(log2NumLanes uint) TransactionLayout {
	return TransactionLayout{
		Digest:     t.Digest,
		ShardMask:  append([]byte(nil), t.ShardMask...),
		ChargeRate: t.ChargeRate,
		ValidFrom:  t.ValidFrom,
		ValidUntil: t.ValidUntil,
	}
}

// TransactionLayout is the lightweight projection used where full
// transaction bodies are unnecessary: the recent-tx feed and miner backlog.
type TransactionLayout struct {
	Digest     Digest
	ShardMask  []byte
	ChargeRate uint64
	ValidFrom  uint64
	ValidUntil uint64
}

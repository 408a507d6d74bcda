package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainPolygonMainnet  Chain = "eip155:137"
	ChainPolygonAmoy     Chain = "eip155:80002"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia ||
		chain == ChainPolygonMainnet ||
		chain == ChainPolygonAmoy
}

// ContractKind names the family of events a watched contract emits.
// The projector dispatches on (ContractKind, event name).
type ContractKind string

const (
	KindRegistry             ContractKind = "Registry"
	KindContentManager       ContractKind = "ContentManager"
	KindContent              ContractKind = "Content"
	KindContentStorage       ContractKind = "ContentStorage"
	KindAccessControlManager ContractKind = "AccessControlManager"
	KindSystemsRegistry      ContractKind = "SystemsRegistry"
	KindAddressResolver      ContractKind = "AddressResolver"
	KindExchange             ContractKind = "Exchange"
	KindErc20Escrow          ContractKind = "Erc20Escrow"
	KindCraft                ContractKind = "Craft"
	KindSalvage              ContractKind = "Salvage"
	KindToken                ContractKind = "Token"
)

// AllContractKinds lists every kind the projector knows how to reduce
var AllContractKinds = []ContractKind{
	KindRegistry,
	KindContentManager,
	KindContent,
	KindContentStorage,
	KindAccessControlManager,
	KindSystemsRegistry,
	KindAddressResolver,
	KindExchange,
	KindErc20Escrow,
	KindCraft,
	KindSalvage,
	KindToken,
}

// IsValidContractKind checks if a contract kind is known
func IsValidContractKind(kind ContractKind) bool {
	for _, k := range AllContractKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsRootKind reports whether a kind may be configured as a root contract.
// Every other kind is discovered at runtime.
func IsRootKind(kind ContractKind) bool {
	return kind == KindRegistry || kind == KindAddressResolver || kind == KindToken
}

// TxContext holds the transaction and block metadata an event was emitted in
type TxContext struct {
	Hash           string   `json:"hash"`
	BlockNumber    uint64   `json:"block_number"`
	BlockTimestamp int64    `json:"block_timestamp"`
	LogIndex       uint     `json:"log_index"`
	GasUsed        uint64   `json:"gas_used"`
	GasPrice       *big.Int `json:"gas_price"`
}

// Event is one decoded log, bound to its emitting contract
type Event struct {
	Chain           Chain     `json:"chain"`
	ContractAddress string    `json:"contract_address"`
	Name            string    `json:"name"`
	Fields          Fields    `json:"fields"`
	Tx              TxContext `json:"tx"`
}

// Position returns the canonical position of the event in the chain
func (e *Event) Position() Position {
	return Position{Block: e.Tx.BlockNumber, LogIndex: e.Tx.LogIndex}
}

// Position identifies a log by block number and log index
type Position struct {
	Block    uint64 `json:"block"`
	LogIndex uint   `json:"log_index"`
}

// After reports whether p is strictly later than o in canonical order
func (p Position) After(o Position) bool {
	if p.Block != o.Block {
		return p.Block > o.Block
	}
	return p.LogIndex > o.LogIndex
}

// NormalizeAddress returns the lower-case 0x form of an address.
// Every address used in an entity key goes through here.
func NormalizeAddress(address string) string {
	return strings.ToLower(common.HexToAddress(address).Hex())
}

// IsZeroAddress reports whether the address is the zero-address sentinel
func IsZeroAddress(address string) bool {
	return NormalizeAddress(address) == ZeroAddress
}

package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/feral-file/ff-projector/internal/adapter"
	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/logger"
)

// ManagerChildren are the contracts a content manager administers
type ManagerChildren struct {
	Content              string
	ContentStorage       string
	AccessControlManager string
	SystemsRegistry      string
}

// Fee is a royalty entry read from a storage contract
type Fee struct {
	Account string
	Rate    *big.Int
}

// ContractReader reads contract state at a given block
//
//go:generate mockgen -source=reader.go -destination=../../mocks/contract_reader.go -package=mocks -mock_names=ContractReader=MockContractReader
type ContractReader interface {
	// ManagerChildren reads the child contract addresses of a content manager
	ManagerChildren(ctx context.Context, manager string, blockNumber uint64) (ManagerChildren, error)

	// ContractName reads name() of a content contract
	ContractName(ctx context.Context, content string, blockNumber uint64) (string, error)

	// ContractSymbol reads symbol() of a content contract
	ContractSymbol(ctx context.Context, content string, blockNumber uint64) (string, error)

	// ContractURI reads contractUri() of a content contract
	ContractURI(ctx context.Context, content string, blockNumber uint64) (string, error)

	// TokenURI reads uri(id) of a content contract
	TokenURI(ctx context.Context, content string, tokenID *big.Int, blockNumber uint64) (string, error)

	// ContractRoyalties reads contractRoyalties() of a content storage contract
	ContractRoyalties(ctx context.Context, storage string, blockNumber uint64) ([]Fee, error)

	// MinterRole reads MINTER_ROLE() of an access control manager
	MinterRole(ctx context.Context, accessControlManager string, blockNumber uint64) (string, error)
}

type contractReader struct {
	client         adapter.EthClient
	maxElapsedTime time.Duration
}

// NewContractReader creates a reader. Transient RPC failures are retried for up to maxElapsedTime.
func NewContractReader(client adapter.EthClient, maxElapsedTime time.Duration) ContractReader {
	if maxElapsedTime <= 0 {
		maxElapsedTime = 30 * time.Second
	}
	return &contractReader{client: client, maxElapsedTime: maxElapsedTime}
}

// call packs and executes a view call at blockNumber and unpacks the outputs
func (r *contractReader) call(ctx context.Context, address string, blockNumber uint64, method string, args ...interface{}) ([]interface{}, error) {
	data, err := readerABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	to := common.HexToAddress(address)
	msg := ethereum.CallMsg{To: &to, Data: data}
	at := new(big.Int).SetUint64(blockNumber)

	var result []byte
	operation := func() error {
		var err error
		result, err = r.client.CallContract(ctx, msg, at)
		if err == nil {
			return nil
		}
		if isRevert(err) {
			return backoff.Permanent(err)
		}
		logger.WarnCtx(ctx, "Contract call failed, retrying",
			zap.String("address", address),
			zap.String("method", method),
			zap.Error(err))
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = r.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, address, err)
	}

	outputs, err := readerABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s from %s: %w", method, address, err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%s on %s returned nothing", method, address)
	}
	return outputs, nil
}

func (r *contractReader) address(ctx context.Context, contract string, blockNumber uint64, method string) (string, error) {
	outputs, err := r.call(ctx, contract, blockNumber, method)
	if err != nil {
		return "", err
	}
	addr, ok := outputs[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("%s returned %T, want address", method, outputs[0])
	}
	return domain.NormalizeAddress(addr.Hex()), nil
}

func (r *contractReader) str(ctx context.Context, contract string, blockNumber uint64, method string, args ...interface{}) (string, error) {
	outputs, err := r.call(ctx, contract, blockNumber, method, args...)
	if err != nil {
		return "", err
	}
	s, ok := outputs[0].(string)
	if !ok {
		return "", fmt.Errorf("%s returned %T, want string", method, outputs[0])
	}
	return s, nil
}

// ManagerChildren reads content(), contentStorage(), accessControlManager() and systemsRegistry()
func (r *contractReader) ManagerChildren(ctx context.Context, manager string, blockNumber uint64) (ManagerChildren, error) {
	var children ManagerChildren
	targets := []struct {
		method string
		dst    *string
	}{
		{"content", &children.Content},
		{"contentStorage", &children.ContentStorage},
		{"accessControlManager", &children.AccessControlManager},
		{"systemsRegistry", &children.SystemsRegistry},
	}
	for _, target := range targets {
		addr, err := r.address(ctx, manager, blockNumber, target.method)
		if err != nil {
			return ManagerChildren{}, err
		}
		*target.dst = addr
	}
	return children, nil
}

// ContractName reads name()
func (r *contractReader) ContractName(ctx context.Context, content string, blockNumber uint64) (string, error) {
	return r.str(ctx, content, blockNumber, "name")
}

// ContractSymbol reads symbol()
func (r *contractReader) ContractSymbol(ctx context.Context, content string, blockNumber uint64) (string, error) {
	return r.str(ctx, content, blockNumber, "symbol")
}

// ContractURI reads contractUri()
func (r *contractReader) ContractURI(ctx context.Context, content string, blockNumber uint64) (string, error) {
	return r.str(ctx, content, blockNumber, "contractUri")
}

// TokenURI reads uri(id)
func (r *contractReader) TokenURI(ctx context.Context, content string, tokenID *big.Int, blockNumber uint64) (string, error) {
	return r.str(ctx, content, blockNumber, "uri", tokenID)
}

// ContractRoyalties reads contractRoyalties()
func (r *contractReader) ContractRoyalties(ctx context.Context, storage string, blockNumber uint64) ([]Fee, error) {
	outputs, err := r.call(ctx, storage, blockNumber, "contractRoyalties")
	if err != nil {
		return nil, err
	}

	items, ok := normalize(reflect.ValueOf(outputs[0])).([]interface{})
	if !ok {
		return nil, fmt.Errorf("contractRoyalties returned %T, want array", outputs[0])
	}
	fees := make([]Fee, 0, len(items))
	for i, item := range items {
		f, err := domain.Fields{"fee": item}.Tuple("fee")
		if err != nil {
			return nil, err
		}
		account, err := f.Address("account")
		if err != nil {
			return nil, fmt.Errorf("fee %d: %w", i, err)
		}
		rate, err := f.BigInt("rate")
		if err != nil {
			return nil, fmt.Errorf("fee %d: %w", i, err)
		}
		fees = append(fees, Fee{Account: account, Rate: rate})
	}
	return fees, nil
}

// MinterRole reads MINTER_ROLE() as a 0x hex string
func (r *contractReader) MinterRole(ctx context.Context, accessControlManager string, blockNumber uint64) (string, error) {
	outputs, err := r.call(ctx, accessControlManager, blockNumber, "MINTER_ROLE")
	if err != nil {
		return "", err
	}
	role, ok := outputs[0].([32]byte)
	if !ok {
		return "", fmt.Errorf("MINTER_ROLE returned %T, want bytes32", outputs[0])
	}
	return hexutil.Encode(role[:]), nil
}

// isRevert reports whether a call failed because the contract reverted
func isRevert(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "invalid opcode")
}

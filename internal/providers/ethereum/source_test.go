package ethereum_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/mocks"
	"github.com/feral-file/ff-projector/internal/providers/ethereum"
)

func transferLog(t *testing.T, block uint64, index uint, tx common.Hash, id int64) types.Log {
	vLog := buildLog(t, "TransferSingle",
		[]common.Hash{addressTopic(operatorAddr), addressTopic(aliceAddr), addressTopic(bobAddr)},
		big.NewInt(id), big.NewInt(1))
	vLog.BlockNumber = block
	vLog.Index = index
	vLog.TxHash = tx
	return vLog
}

func TestSource_Events(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	blocks := mocks.NewMockBlockProvider(ctrl)
	src := ethereum.NewSource(ethereum.SourceConfig{Chain: domain.ChainEthereumMainnet, Workers: 2}, client, blocks)

	txA := common.HexToHash("0xAA")
	txB := common.HexToHash("0xBB")

	removed := transferLog(t, 10, 9, txA, 99)
	removed.Removed = true
	unknown := types.Log{
		Address:     contentAddr,
		Topics:      []common.Hash{crypto.Keccak256Hash([]byte("Other()"))},
		BlockNumber: 10,
		Index:       8,
		TxHash:      txA,
	}

	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q goethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(10), q.FromBlock.Uint64())
			assert.Equal(t, uint64(11), q.ToBlock.Uint64())
			assert.Equal(t, []common.Address{contentAddr}, q.Addresses)
			require.Len(t, q.Topics, 1)
			return []types.Log{
				transferLog(t, 11, 0, txB, 3),
				transferLog(t, 10, 4, txA, 2),
				transferLog(t, 10, 1, txA, 1),
				transferLog(t, 10, 4, txA, 2),
				removed,
				unknown,
			}, nil
		})

	blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(10)).Return(int64(1000), nil)
	blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(11)).Return(int64(1012), nil)
	client.EXPECT().TransactionReceipt(gomock.Any(), txA).
		Return(&types.Receipt{GasUsed: 21000, EffectiveGasPrice: big.NewInt(5)}, nil)
	client.EXPECT().TransactionReceipt(gomock.Any(), txB).
		Return(&types.Receipt{GasUsed: 50000}, nil)

	events, err := src.Events(context.Background(), []string{domain.NormalizeAddress(contentAddr.Hex())}, 10, 11)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, domain.Position{Block: 10, LogIndex: 1}, events[0].Position())
	assert.Equal(t, domain.Position{Block: 10, LogIndex: 4}, events[1].Position())
	assert.Equal(t, domain.Position{Block: 11, LogIndex: 0}, events[2].Position())

	first := events[0]
	assert.Equal(t, "TransferSingle", first.Name)
	assert.Equal(t, domain.ChainEthereumMainnet, first.Chain)
	assert.Equal(t, "0x00000000000000000000000000000000000000c0", first.ContractAddress)
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000aa", first.Tx.Hash)
	assert.Equal(t, int64(1000), first.Tx.BlockTimestamp)
	assert.Equal(t, uint64(21000), first.Tx.GasUsed)
	assert.Equal(t, int64(5), first.Tx.GasPrice.Int64())

	last := events[2]
	assert.Equal(t, int64(1012), last.Tx.BlockTimestamp)
	assert.Equal(t, uint64(50000), last.Tx.GasUsed)
	assert.Equal(t, int64(0), last.Tx.GasPrice.Int64())
}

func TestSource_Events_ReducesStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	blocks := mocks.NewMockBlockProvider(ctrl)
	src := ethereum.NewSource(ethereum.SourceConfig{Chain: domain.ChainEthereumMainnet}, client, blocks)

	var ranges [][2]uint64
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q goethereum.FilterQuery) ([]types.Log, error) {
			from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
			ranges = append(ranges, [2]uint64{from, to})
			if to-from+1 > 50 {
				return nil, errors.New("query returned more than 10000 results")
			}
			return nil, nil
		}).
		Times(3)

	events, err := src.Events(context.Background(), []string{"0xc0"}, 100, 199)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, [][2]uint64{{100, 199}, {100, 149}, {150, 199}}, ranges)
}

func TestSource_Events_Chunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	blocks := mocks.NewMockBlockProvider(ctrl)
	src := ethereum.NewSource(ethereum.SourceConfig{MaxAddressesPerQuery: 2}, client, blocks)

	var sizes []int
	client.EXPECT().
		FilterLogs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q goethereum.FilterQuery) ([]types.Log, error) {
			sizes = append(sizes, len(q.Addresses))
			return nil, nil
		}).
		Times(3)

	_, err := src.Events(context.Background(), []string{"0x01", "0x02", "0x03", "0x04", "0x05"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestSource_Events_Errors(t *testing.T) {
	t.Run("rpc failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockEthClient(ctrl)
		src := ethereum.NewSource(ethereum.SourceConfig{}, client, mocks.NewMockBlockProvider(ctrl))

		client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := src.Events(context.Background(), []string{"0xc0"}, 1, 10)
		assert.Error(t, err)
	})

	t.Run("malformed log", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockEthClient(ctrl)
		src := ethereum.NewSource(ethereum.SourceConfig{}, client, mocks.NewMockBlockProvider(ctrl))

		bad := transferLog(t, 1, 0, common.HexToHash("0x01"), 1)
		bad.Data = nil
		client.EXPECT().FilterLogs(gomock.Any(), gomock.Any()).Return([]types.Log{bad}, nil)

		_, err := src.Events(context.Background(), []string{"0xc0"}, 1, 1)
		assert.ErrorIs(t, err, domain.ErrMalformedEvent)
	})

	t.Run("nothing to fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		src := ethereum.NewSource(ethereum.SourceConfig{}, mocks.NewMockEthClient(ctrl), mocks.NewMockBlockProvider(ctrl))

		events, err := src.Events(context.Background(), nil, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, events)

		events, err = src.Events(context.Background(), []string{"0xc0"}, 10, 1)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

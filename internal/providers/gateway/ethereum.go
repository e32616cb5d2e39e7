package gateway

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
)

// rewardContractABI covers the three entry points the engine uses on the
// reward contract: mint(address,string), burnBatch(uint256[]) and
// ownerOf(uint256).
const rewardContractABI = `[
	{"inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],"name":"mint","outputs":[{"name":"tokenId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tokenIds","type":"uint256[]"}],"name":"burnBatch","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"}],"name":"Transfer","type":"event"}
]`

// Config holds the ethereum gateway configuration
type Config struct {
	RPCURL          string
	ContractAddress string
	// SignerKey is the hex-encoded private key of the minting account
	SignerKey string
	GasLimit  uint64
}

type ethereumGateway struct {
	client   adapter.EthClient
	contract common.Address
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	signer   common.Address
	chainID  *big.Int
	gasLimit uint64

	// nonce assignment is serialized so concurrent workflow activities
	// cannot reuse one
	nonceMu sync.Mutex
}

// NewEthereumGateway dials the RPC endpoint and prepares the signing
// account.
func NewEthereumGateway(ctx context.Context, cfg Config, dialer adapter.EthClientDialer) (Gateway, error) {
	parsed, err := abi.JSON(strings.NewReader(rewardContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signer key: %w", err)
	}

	client, err := dialer.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum rpc: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = 300000
	}

	return &ethereumGateway{
		client:   client,
		contract: common.HexToAddress(cfg.ContractAddress),
		abi:      parsed,
		key:      key,
		signer:   crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		gasLimit: gasLimit,
	}, nil
}

// submit signs and sends a contract call, returning the tx hash
func (g *ethereumGateway) submit(ctx context.Context, data []byte) (string, error) {
	g.nonceMu.Lock()
	defer g.nonceMu.Unlock()

	nonce, err := g.client.PendingNonceAt(ctx, g.signer)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get nonce: %v", domain.ErrGatewayUnavailable, err)
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get gas price: %v", domain.ErrGatewayUnavailable, err)
	}

	tx := types.NewTransaction(nonce, g.contract, big.NewInt(0), g.gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: failed to send transaction: %v", domain.ErrGatewayUnavailable, err)
	}

	logger.DebugCtx(ctx, "submitted transaction",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce))

	return signed.Hash().Hex(), nil
}

// SubmitMint submits a mint of the pinned content to the recipient
func (g *ethereumGateway) SubmitMint(ctx context.Context, recipient, contentID string) (string, error) {
	data, err := g.abi.Pack("mint", common.HexToAddress(recipient), contentID)
	if err != nil {
		return "", fmt.Errorf("failed to pack mint call: %w", err)
	}
	return g.submit(ctx, data)
}

// SubmitBurn submits a batch burn of the given token refs
func (g *ethereumGateway) SubmitBurn(ctx context.Context, tokenRefs []string) (string, error) {
	ids := make([]*big.Int, len(tokenRefs))
	for i, ref := range tokenRefs {
		id, ok := new(big.Int).SetString(ref, 10)
		if !ok {
			return "", fmt.Errorf("invalid token ref: %s", ref)
		}
		ids[i] = id
	}

	data, err := g.abi.Pack("burnBatch", ids)
	if err != nil {
		return "", fmt.Errorf("failed to pack burn call: %w", err)
	}
	return g.submit(ctx, data)
}

// TxStatus reports the current state of a submitted transaction. A
// confirmed mint carries the token id recovered from the Transfer event.
func (g *ethereumGateway) TxStatus(ctx context.Context, txRef string) (*TxReceipt, error) {
	receipt, err := g.client.TransactionReceipt(ctx, common.HexToHash(txRef))
	if errors.Is(err, ethereum.NotFound) {
		return &TxReceipt{Status: domain.TxPending}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get receipt: %v", domain.ErrGatewayUnavailable, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return &TxReceipt{Status: domain.TxFailed}, nil
	}

	out := &TxReceipt{Status: domain.TxConfirmed}
	transferTopic := g.abi.Events["Transfer"].ID
	for _, vLog := range receipt.Logs {
		if vLog.Address != g.contract || len(vLog.Topics) != 4 || vLog.Topics[0] != transferTopic {
			continue
		}
		// Mints transfer from the zero address; the token id is topic 3.
		if vLog.Topics[1] == (common.Hash{}) {
			out.TokenRef = new(big.Int).SetBytes(vLog.Topics[3].Bytes()).String()
			break
		}
	}
	return out, nil
}

// OwnerOf returns the current owner of a token ref
func (g *ethereumGateway) OwnerOf(ctx context.Context, tokenRef string) (string, error) {
	tokenID, ok := new(big.Int).SetString(tokenRef, 10)
	if !ok {
		return "", fmt.Errorf("invalid token ref: %s", tokenRef)
	}

	data, err := g.abi.Pack("ownerOf", tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to pack ownerOf call: %w", err)
	}

	result, err := g.client.CallContract(ctx, ethereum.CallMsg{
		To:   &g.contract,
		Data: data,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to call ownerOf: %v", domain.ErrGatewayUnavailable, err)
	}

	var owner common.Address
	if err := g.abi.UnpackIntoInterface(&owner, "ownerOf", result); err != nil {
		return "", fmt.Errorf("failed to unpack ownerOf result: %w", err)
	}
	return owner.Hex(), nil
}

// Close closes the connection
func (g *ethereumGateway) Close() {
	g.client.Close()
}

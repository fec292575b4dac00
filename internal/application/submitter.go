package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"batchsend/internal/domain"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const privateKeyPrefix = "0x"

// ChainClient is the subset of the node API a submission needs.
type ChainClient interface {
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	bind.DeployBackend
}

// SignFunc signs tx for chainID with a 0x-prefixed hex private key.
type SignFunc func(tx *types.Transaction, chainID *big.Int, privateKeyHex string) (*types.Transaction, error)

type SubmitterConfig struct {
	ContractAddress      common.Address
	InputData            []byte
	GasLimit             uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	ReceiptTimeout       time.Duration
}

// Submitter sends the configured contract call from one account at a time.
type Submitter struct {
	client ChainClient
	cfg    SubmitterConfig
	sign   SignFunc
	tracer trace.Tracer
}

var ErrTransactionReverted = errors.New("transaction has been reverted by the EVM")

func NewSubmitter(client ChainClient, cfg SubmitterConfig) (*Submitter, error) {
	if client == nil {
		return nil, errors.New("chain client is required")
	}
	if cfg.GasLimit == 0 {
		return nil, errors.New("gas limit is required")
	}
	if cfg.MaxPriorityFeePerGas == nil || cfg.MaxFeePerGas == nil {
		return nil, errors.New("fee caps are required")
	}
	return &Submitter{
		client: client,
		cfg:    cfg,
		sign:   SignWithKey,
		tracer: otel.Tracer("batchsend/submitter"),
	}, nil
}

// NormalizePrivateKey prepends the hex prefix when it is missing.
func NormalizePrivateKey(privateKey string) string {
	if strings.HasPrefix(privateKey, privateKeyPrefix) {
		return privateKey
	}
	return privateKeyPrefix + privateKey
}

// SignWithKey signs with the London signer for chainID.
func SignWithKey(tx *types.Transaction, chainID *big.Int, privateKeyHex string) (*types.Transaction, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, privateKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
}

// Submit never returns an error: every fault is folded into a failed result.
func (s *Submitter) Submit(ctx context.Context, credential domain.Credential) domain.SubmissionResult {
	ctx, span := s.tracer.Start(ctx, "batchsend.submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("account.address", credential.Address))

	hash, err := s.submit(ctx, span, credential)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Error sending transaction", "address", credential.Address, "err", err)
		return domain.Failed(credential.Address, err.Error())
	}
	slog.Info("Transaction successful", "address", credential.Address, "hash", hash)
	return domain.Succeeded(credential.Address, hash)
}

func (s *Submitter) submit(ctx context.Context, span trace.Span, credential domain.Credential) (string, error) {
	if !common.IsHexAddress(credential.Address) {
		return "", fmt.Errorf("invalid address %q", credential.Address)
	}
	from := common.HexToAddress(credential.Address)
	privateKey := NormalizePrivateKey(credential.PrivateKey)

	nonce, err := s.client.NonceAt(ctx, from, nil)
	if err != nil {
		return "", err
	}
	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.Int64("tx.nonce", int64(nonce)),
		attribute.String("chain.id", chainID.String()),
	)

	request := domain.TransactionRequest{
		From:                 from,
		To:                   s.cfg.ContractAddress,
		Nonce:                nonce,
		Data:                 s.cfg.InputData,
		GasLimit:             s.cfg.GasLimit,
		MaxPriorityFeePerGas: s.cfg.MaxPriorityFeePerGas,
		MaxFeePerGas:         s.cfg.MaxFeePerGas,
		ChainID:              chainID,
	}
	signed, err := s.sign(request.Transaction(), chainID, privateKey)
	if err != nil {
		return "", err
	}
	if sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed); err == nil && sender != from {
		slog.Warn("Private key does not match address", "address", from.Hex(), "signer", sender.Hex())
	}
	span.SetAttributes(attribute.String("tx.hash", signed.Hash().Hex()))

	slog.Info("Sending transaction", "address", from.Hex(), "nonce", nonce, "chain_id", chainID)
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", err
	}

	waitCtx := ctx
	if s.cfg.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.cfg.ReceiptTimeout)
		defer cancel()
	}
	receipt, err := bind.WaitMined(waitCtx, s.client, signed)
	if err != nil {
		return "", fmt.Errorf("waiting for receipt of %s: %w", signed.Hash().Hex(), err)
	}
	span.SetAttributes(attribute.String("block.number", receipt.BlockNumber.String()))
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: %s", ErrTransactionReverted, receipt.TxHash.Hex())
	}
	return receipt.TxHash.Hex(), nil
}

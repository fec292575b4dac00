package domain

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	weiPerGwei  = big.NewRat(1_000_000_000, 1)
	decimalGwei = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// TransactionRequest is the fee-market transaction built for one credential
// right before signing.
type TransactionRequest struct {
	From                 common.Address
	To                   common.Address
	Nonce                uint64
	Data                 []byte
	GasLimit             uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	ChainID              *big.Int
}

func (r TransactionRequest) Transaction() *types.Transaction {
	to := r.To
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).Set(r.ChainID),
		Nonce:     r.Nonce,
		GasTipCap: new(big.Int).Set(r.MaxPriorityFeePerGas),
		GasFeeCap: new(big.Int).Set(r.MaxFeePerGas),
		Gas:       r.GasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      common.CopyBytes(r.Data),
	})
}

// GweiToWei converts a decimal gwei amount such as "0.003622181" into wei.
// Amounts finer than one wei are rejected.
func GweiToWei(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, errors.New("gwei amount is empty")
	}
	if strings.HasPrefix(trimmed, "-") {
		return nil, fmt.Errorf("gwei amount %q is negative", amount)
	}
	if !decimalGwei.MatchString(trimmed) {
		return nil, fmt.Errorf("invalid gwei amount %q", amount)
	}
	value, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return nil, fmt.Errorf("invalid gwei amount %q", amount)
	}
	value.Mul(value, weiPerGwei)
	if !value.IsInt() {
		return nil, fmt.Errorf("gwei amount %q has more than 9 decimals", amount)
	}
	return new(big.Int).Set(value.Num()), nil
}

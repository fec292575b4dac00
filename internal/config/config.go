package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"batchsend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	defaultRPCURL          = "https://mainnet.base.org"
	defaultContractAddress = "0x8e7f7a360fb86a3ba464414db2263c50b8a95aa5"
	defaultInputData       = "0x2ca15122"
	defaultGasLimit        = 215523
	defaultPriorityFeeGwei = "0.002"
	defaultMaxFeeGwei      = "0.003622181"
	defaultTxDelayMs       = 2000
	defaultInputFile       = "./addresses.xlsx"
	defaultKafkaTopic      = "batchsend-results"
	defaultSQLitePath      = "batchsend.db"
)

const (
	StoreNone   = "none"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
)

type Config struct {
	RPCURL             string
	ContractAddress    common.Address
	InputData          []byte
	GasLimit           uint64
	MaxPriorityFeeGwei string
	MaxFeeGwei         string
	MaxPriorityFee     *big.Int
	MaxFee             *big.Int
	TxDelay            time.Duration
	InputFile          string
	ResultsDir         string
	ReceiptTimeout     time.Duration
	StrictExit         bool

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	OtelEndpoint string

	KafkaBrokers []string
	KafkaTopic   string

	ResultsStore  string
	ResultsDBPath string
	ResultsDBDSN  string

	RedisAddr string
	LockTTL   time.Duration

	StatusAddr string
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	rpcURL := lookupString(source, "BASE_RPC_URL", "")
	if rpcURL == "" {
		rpcURL = lookupString(source, "RPC_URL", defaultRPCURL)
	}

	contractRaw := lookupString(source, "CONTRACT_ADDRESS", defaultContractAddress)
	if !common.IsHexAddress(contractRaw) {
		return Config{}, fmt.Errorf("invalid CONTRACT_ADDRESS: %q is not a hex address", contractRaw)
	}

	inputRaw := lookupString(source, "INPUT_DATA", defaultInputData)
	if !strings.HasPrefix(inputRaw, "0x") {
		inputRaw = "0x" + inputRaw
	}
	inputData, err := hexutil.Decode(inputRaw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid INPUT_DATA: %w", err)
	}

	gasLimit, err := parseUintEnv(source, "GAS_LIMIT", defaultGasLimit)
	if err != nil {
		return Config{}, err
	}
	if gasLimit == 0 {
		return Config{}, errors.New("GAS_LIMIT must be positive")
	}

	priorityGwei := lookupString(source, "MAX_PRIORITY_FEE_GWEI", defaultPriorityFeeGwei)
	priorityFee, err := domain.GweiToWei(priorityGwei)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MAX_PRIORITY_FEE_GWEI: %w", err)
	}
	maxFeeGwei := lookupString(source, "MAX_FEE_GWEI", defaultMaxFeeGwei)
	maxFee, err := domain.GweiToWei(maxFeeGwei)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MAX_FEE_GWEI: %w", err)
	}
	if maxFee.Cmp(priorityFee) < 0 {
		return Config{}, fmt.Errorf("MAX_FEE_GWEI (%s) must not be lower than MAX_PRIORITY_FEE_GWEI (%s)", maxFeeGwei, priorityGwei)
	}

	delayMs, err := parseUintEnv(source, "TX_DELAY", defaultTxDelayMs)
	if err != nil {
		return Config{}, err
	}

	receiptTimeout, err := parseDurationEnv(source, "RECEIPT_TIMEOUT", 0)
	if err != nil {
		return Config{}, err
	}

	strictExit, err := parseBoolEnv(source, "STRICT_EXIT", false)
	if err != nil {
		return Config{}, err
	}

	logMaxSize, err := parseUintEnv(source, "LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseUintEnv(source, "LOG_MAX_BACKUPS", 3)
	if err != nil {
		return Config{}, err
	}

	kafkaBrokers := parseList(source, "KAFKA_BROKERS")

	store := strings.ToLower(lookupString(source, "RESULTS_STORE", StoreNone))
	dbDSN := lookupString(source, "RESULTS_DB_DSN", "")
	switch store {
	case StoreNone, StoreSQLite:
	case StoreMySQL:
		if dbDSN == "" {
			return Config{}, errors.New("RESULTS_DB_DSN is required when RESULTS_STORE=mysql")
		}
	default:
		return Config{}, fmt.Errorf("invalid RESULTS_STORE %q (want none, sqlite or mysql)", store)
	}

	lockTTL, err := parseDurationEnv(source, "LOCK_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	return Config{
		RPCURL:             rpcURL,
		ContractAddress:    common.HexToAddress(contractRaw),
		InputData:          inputData,
		GasLimit:           gasLimit,
		MaxPriorityFeeGwei: priorityGwei,
		MaxFeeGwei:         maxFeeGwei,
		MaxPriorityFee:     priorityFee,
		MaxFee:             maxFee,
		TxDelay:            time.Duration(delayMs) * time.Millisecond,
		InputFile:          lookupString(source, "EXCEL_FILE_PATH", defaultInputFile),
		ResultsDir:         lookupString(source, "RESULTS_DIR", "."),
		ReceiptTimeout:     receiptTimeout,
		StrictExit:         strictExit,
		LogLevel:           lookupString(source, "LOG_LEVEL", "info"),
		LogFile:            lookupString(source, "LOG_FILE", ""),
		LogMaxSizeMB:       int(logMaxSize),
		LogMaxBackups:      int(logMaxBackups),
		OtelEndpoint:       lookupString(source, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		KafkaBrokers:       kafkaBrokers,
		KafkaTopic:         lookupString(source, "KAFKA_TOPIC", defaultKafkaTopic),
		ResultsStore:       store,
		ResultsDBPath:      lookupString(source, "RESULTS_DB_PATH", defaultSQLitePath),
		ResultsDBDSN:       dbDSN,
		RedisAddr:          lookupString(source, "REDIS_ADDR", ""),
		LockTTL:            lockTTL,
		StatusAddr:         lookupString(source, "STATUS_ADDR", ""),
	}, nil
}

// InputDataHex renders the calldata the way it was configured.
func (c Config) InputDataHex() string {
	return hexutil.Encode(c.InputData)
}

func lookupString(source EnvSource, key, defaultValue string) string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	return strings.TrimSpace(raw)
}

func parseUintEnv(source EnvSource, key string, defaultValue uint64) (uint64, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseDurationEnv(source EnvSource, key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return value, nil
}

func parseBoolEnv(source EnvSource, key string, defaultValue bool) (bool, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseList(source EnvSource, key string) []string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var values []string
	for _, item := range strings.Split(raw, ",") {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}

// Binary privsend executes one privacy-pool command: a single JSON object in,
// a single JSON object out on stdout, diagnostics on stderr, exit 1 on failure.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"privsend-go/internal/bridge"
	"privsend-go/internal/command"
	"privsend-go/internal/config"
	"privsend-go/internal/dispatch"
	"privsend-go/internal/fees"
	"privsend-go/internal/metrics"
	"privsend-go/internal/relayer"
	"privsend-go/internal/util"
	"privsend-go/internal/wallet"
)

func main() {
	_ = godotenv.Load() // best-effort

	cfg, err := config.Load(getEnv("PRIVSEND_CONFIG", "internal/config/config.yaml"))
	if err != nil {
		emit(command.Failure(fmt.Errorf("load config: %w", err)))
		return
	}
	applyEnvOverrides(cfg)

	log := util.NewLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	raw, err := readCommand(os.Args)
	if err != nil {
		emit(command.Failure(err))
		return
	}
	cmd, err := command.Decode(raw)
	if err != nil {
		emit(command.Failure(err))
		return
	}

	if cmd.RPCURL == "" {
		cmd.RPCURL = cfg.RPC.URL
	}
	if cmd.PrivateKey == "" {
		if key, err := wallet.LoadPrivateKeyFromEnv(); err == nil {
			cmd.PrivateKey = key.String()
		}
	}
	if err := cmd.Validate(); err != nil {
		emit(command.Failure(err))
		return
	}

	collector, err := buildCollector(cfg, cmd, log)
	if err != nil {
		emit(command.Failure(err))
		return
	}

	bridgeClient := &bridge.Process{
		Dir:      cfg.Bridge.Dir,
		Command:  cfg.Bridge.Command,
		Referrer: cfg.Fees.Referrer,
		Log:      log,
	}
	relayerClient := relayer.NewClient(cfg.Relayer.BaseURL, time.Duration(cfg.Relayer.TimeoutMs)*time.Millisecond, log)

	d := dispatch.New(bridgeClient, collector, relayerClient, cfg.Indexer, log)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	emit(d.Do(ctx, cmd))
}

// buildCollector wires the on-chain fee collector for the command's keypair.
// A zero rate, or the keyless tokens action, disables collection outright.
func buildCollector(cfg *config.Config, cmd *command.Command, log zerolog.Logger) (fees.Collector, error) {
	if cmd.Action == command.Tokens || cfg.Fees.Rate <= 0 {
		return fees.Disabled{}, nil
	}
	owner, err := solana.PrivateKeyFromBase58(cmd.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	feeWallet, err := solana.PublicKeyFromBase58(cfg.Fees.Wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid fee wallet address: %w", err)
	}
	return fees.NewOnChainCollector(cmd.RPCURL, owner, feeWallet, cfg.Fees.Rate, cfg.RPC.Commitment, log), nil
}

func readCommand(args []string) ([]byte, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: privsend '<json command>' (or - to read stdin)")
	}
	if args[1] == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	return []byte(args[1]), nil
}

// emit writes the single structured result to stdout; every failure exits
// non-zero so callers can branch without parsing the payload.
func emit(res *command.Result) {
	fmt.Println(string(res.Encode()))
	if !res.Success {
		os.Exit(1)
	}
}

func applyEnvOverrides(cfg *config.Config) {
	cfg.RPC.URL = getEnv("PRIVSEND_RPC_URL", cfg.RPC.URL)
	cfg.Bridge.Dir = getEnv("PRIVSEND_BRIDGE_DIR", cfg.Bridge.Dir)
	cfg.Relayer.BaseURL = getEnv("PRIVSEND_RELAYER_URL", cfg.Relayer.BaseURL)
	cfg.Fees.Wallet = getEnv("PRIVSEND_FEE_WALLET", cfg.Fees.Wallet)
	cfg.Fees.Referrer = getEnv("PRIVSEND_REFERRER", cfg.Fees.Referrer)
	if v := os.Getenv("PRIVSEND_FEE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fees.Rate = rate
		}
	}
	cfg.App.LogLevel = getEnv("PRIVSEND_LOG_LEVEL", cfg.App.LogLevel)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

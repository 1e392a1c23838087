// Binary sweep withdraws every non-zero private balance back to the owner's
// wallet, one supported token at a time. Useful for recovering funds left
// privately held after an interrupted transfer.
package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"

	"privsend-go/internal/bridge"
	"privsend-go/internal/command"
	"privsend-go/internal/config"
	"privsend-go/internal/dispatch"
	"privsend-go/internal/fees"
	"privsend-go/internal/relayer"
	"privsend-go/internal/token"
	"privsend-go/internal/util"
	"privsend-go/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(getEnv("PRIVSEND_CONFIG", "internal/config/config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := util.NewLogger(getEnv("PRIVSEND_LOG_LEVEL", cfg.App.LogLevel))

	key, err := wallet.LoadPrivateKeyFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("wallet")
	}

	rpcURL := getEnv("PRIVSEND_RPC_URL", cfg.RPC.URL)

	var collector fees.Collector = fees.Disabled{}
	if cfg.Fees.Rate > 0 {
		feeWallet, err := solana.PublicKeyFromBase58(getEnv("PRIVSEND_FEE_WALLET", cfg.Fees.Wallet))
		if err != nil {
			log.Fatal().Err(err).Msg("fee wallet")
		}
		collector = fees.NewOnChainCollector(rpcURL, key, feeWallet, cfg.Fees.Rate, cfg.RPC.Commitment, log)
	}

	bridgeClient := bridge.NewProcess(cfg.Bridge.Dir, cfg.Fees.Referrer, log)
	bridgeClient.Command = cfg.Bridge.Command
	relayerClient := relayer.NewClient(cfg.Relayer.BaseURL, time.Duration(cfg.Relayer.TimeoutMs)*time.Millisecond, log)
	d := dispatch.New(bridgeClient, collector, relayerClient, cfg.Indexer, log)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	failed := false
	for _, asset := range token.Supported() {
		cmd := &command.Command{RPCURL: rpcURL, PrivateKey: key.String()}
		if asset.Native() {
			cmd.Action = command.WithdrawAll
		} else {
			cmd.Action = command.WithdrawAllSPL
			cmd.MintAddress = asset.Mint.String()
		}

		log.Info().Str("token", asset.Name).Msg("sweeping")
		res := d.Do(ctx, cmd)
		fmt.Println(string(res.Encode()))
		if !res.Success {
			failed = true
			log.Error().Str("token", asset.Name).Str("reason", res.Error).Msg("sweep failed")
			continue
		}
		if res.Message != "" {
			log.Info().Str("token", asset.Name).Msg(res.Message)
		} else {
			log.Info().Str("token", asset.Name).Str("tx", res.Signature).Msg("swept")
		}
	}
	if failed {
		os.Exit(1)
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Copyright 2025 Certen Protocol
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/challengecache"
	"github.com/vaultledger/node/pkg/config"
	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/entity/schema"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/identity"
	"github.com/vaultledger/node/pkg/repository"
	"github.com/vaultledger/node/pkg/worker"
	"github.com/vaultledger/node/pkg/workerlog"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)
	log.Printf("starting vaultledger node")

	var (
		validatorID = flag.String("validator-id", "", "validator id (overrides VALIDATOR_ID)")
		showHelp    = flag.Bool("help", false, "show help message")
	)
	flag.Parse()

	if *showHelp {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if *validatorID != "" {
		cfg.ValidatorID = *validatorID
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	secret, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.EthPrivateKey, "0x"))
	if err != nil {
		log.Fatalf("parse ETH_PRIVATE_KEY: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeMongo := mustRepository(ctx, cfg)
	defer closeMongo()

	validator := entity.New(schema.Predefined(), identity.Default, entity.WithTimestampLimit(cfg.TimestampLimitSeconds))

	chainRPC, err := chainclient.Dial(cfg.EthereumURL)
	if err != nil {
		log.Fatalf("dial ethereum url: %v", err)
	}

	uploads := chainclient.NewRegistryUploadRepository(chainRPC, cfg.RegistryAddress, cfg.BundleItemsCountLimit)
	challenges := chainclient.NewRegistryChallengesRepository(chainRPC, cfg.RegistryAddress)
	expiration := chainclient.NewRegistryExpirationUpdater(chainRPC, cfg.RegistryAddress)
	peers := enginecore.NewHTTPPeerFetcher("http://%s/bundles/%s")

	engine := enginecore.New(repo, validator, uploads, challenges, expiration, peers, secret)

	cacheDB, err := dbm.NewDB("failedchallenges", dbm.GoLevelDBBackend, cfg.ChallengeCacheDir)
	if err != nil {
		log.Fatalf("open failed-challenge cache: %v", err)
	}
	defer cacheDB.Close()
	cache := challengecache.New(cacheDB)

	audit := mustAuditLogger(ctx, cfg)

	uploadWorker := worker.NewUploadWorker(
		engine, uploads,
		&worker.DefaultUploadStrategy{Periods: 1},
		audit, cfg.UploadRetryPeriodTicks, nil,
	)
	challengeWorker := worker.NewChallengeWorker(
		engine, challenges, cache,
		&worker.DefaultChallengeStrategy{Timeout: cfg.ChallengeRetryTimeout},
		audit, nil,
	)

	uploadPeriodic := worker.NewPeriodic("UploadWorker", cfg.UploadWorkerInterval, uploadWorker.Tick, nil)
	challengePeriodic := worker.NewPeriodic("ChallengeWorker", cfg.ChallengeWorkerInterval, challengeWorker.Tick, nil)

	uploadPeriodic.Start(ctx)
	challengePeriodic.Start(ctx)

	go serveMetrics(cfg.MetricsAddr)

	log.Printf("vaultledger node %s running", cfg.ValidatorID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	challengePeriodic.Stop()
	uploadPeriodic.Stop()
	cancel()
}

func mustRepository(ctx context.Context, cfg *config.Config) (*repository.Repository, func()) {
	client, err := repository.NewClient(ctx, repository.ClientConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
		MinPoolSize:    cfg.MongoMinPoolSize,
		ConnectTimeout: cfg.MongoConnTimeout,
	})
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}

	repo := repository.New(client)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	return repo, func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer closeCancel()
		if err := client.Close(closeCtx); err != nil {
			log.Printf("close mongo client: %v", err)
		}
	}
}

func mustAuditLogger(ctx context.Context, cfg *config.Config) worker.AuditLogger {
	client, err := workerlog.NewClient(ctx, &workerlog.ClientConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsFile: cfg.FirebaseCredsFile,
		Enabled:         cfg.WorkerLogEnabled,
	})
	if err != nil {
		log.Printf("worker log client disabled: %v", err)
		return worker.NopAuditLogger{}
	}
	return workerlog.New(client)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server stopped: %v", err)
	}
}

func printHelp() {
	fmt.Println("vaultledger: a content-addressed, signed-data ledger node")
	fmt.Println()
	flag.PrintDefaults()
}

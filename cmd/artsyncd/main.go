package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/billat883/ArtSync/api"
	"github.com/billat883/ArtSync/config"
	"github.com/billat883/ArtSync/coprocessor"
	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/expo"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/service"
	"github.com/billat883/ArtSync/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	fs := config.Flags(filepath.Base(os.Args[0]))
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	configFile, _ := fs.GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Init(cfg.LogLevel, cfg.LogOutput, nil)

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	expoKey, ownerKey, err := cfg.Keys()
	if err != nil {
		return err
	}
	database, err := metadb.New(cfg.DBType, filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		return fmt.Errorf("cannot open storage: %w", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	cp, err := coprocessor.New(stg, coprocessor.Config{
		ChainID:    cfg.ChainID,
		KMSAddress: common.HexToAddress(cfg.KMSAddress),
		MaxValue:   cfg.MaxValue,
	})
	if err != nil {
		return err
	}

	token, err := pass.New(stg, ownerKey.Address(), nil)
	if err != nil {
		return err
	}
	if minter, err := token.Minter(); err != nil || minter != expoKey.Address() {
		if err := token.SetMinter(ownerKey.Address(), expoKey.Address()); err != nil {
			return fmt.Errorf("cannot set pass minter: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	var busMetrics prometheus.Registerer
	if cfg.Metrics {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		busMetrics = registry
	}
	bus := event.NewBus(busMetrics)
	defer bus.Close()

	ledger, err := expo.New(stg, expo.Config{
		Address:  expoKey.Address(),
		ChainID:  cfg.ChainID,
		Executor: cp,
		Issuer:   token.Issuer(expoKey.Address()),
		Events:   bus,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eventLogger := service.NewEventLogger(bus)
	if err := eventLogger.Start(ctx); err != nil {
		return err
	}
	defer eventLogger.Stop()

	apiService := service.NewAPI(&api.APIConfig{
		Host:          cfg.APIHost,
		Port:          cfg.APIPort,
		Expo:          ledger,
		Token:         token,
		Decryption:    cp,
		EncryptionKey: cp.PublicKey(),
		Domain:        cp.Domain(),
		Events:        bus,
		Registry:      registry,
	})
	if err := apiService.Start(ctx); err != nil {
		return err
	}
	defer apiService.Stop()

	log.Infow("artsync ledger running",
		"contract", expoKey.Address().Hex(),
		"tokenOwner", ownerKey.Address().Hex(),
		"chainId", cfg.ChainID,
		"api", apiService.Addr().String(),
		"nextExhibitId", ledger.NextExhibitID())

	<-ctx.Done()
	log.Infow("shutting down")
	return nil
}

// Package main runs the admin dashboard server, exposing the revenue
// ledger and payout settings over HTTP behind the shared access key.
package main

import (
	"cmp"
	"context"
	"fmt"
	"sync"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/config"
	"github.com/ekovaleva/trustdate/internal/logger"
	"github.com/ekovaleva/trustdate/internal/models"
	"github.com/ekovaleva/trustdate/internal/server/handler/http"
	"github.com/ekovaleva/trustdate/internal/store"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// storeLedger serves the admin ledger straight from the blob store.
// Reads go through the store so the dashboard always reflects the
// client's latest write.
type storeLedger struct {
	mu    sync.Mutex
	store *store.AdminStore
	log   *zap.Logger
}

// Admin returns the current ledger snapshot.
func (l *storeLedger) Admin() models.AdminSettings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Load(context.Background())
}

// UpdatePayout patches the payout-destination fields and writes the
// blob back.
func (l *storeLedger) UpdatePayout(ctx context.Context, bankName, accountNumber, routingNumber string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	settings := l.store.Load(ctx)
	settings.BankName = bankName
	settings.AccountNumber = accountNumber
	settings.RoutingNumber = routingNumber
	if err := l.store.Save(ctx, settings); err != nil {
		l.log.Error("failed to persist payout settings", zap.Error(err))
	}
}

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}

	var blobs store.BlobStore
	if options.DatabaseDSN != "" {
		db, err := store.InitPostgres(options.DatabaseDSN)
		if err != nil {
			log.Log.Fatal("cannot init database", zap.Error(err))
		}
		blobs = store.NewPostgresBlobStore(db)
	} else {
		fs, err := store.NewFileBlobStore(options.DataDir)
		if err != nil {
			log.Log.Fatal("cannot open blob directory", zap.Error(err))
		}
		blobs = fs
	}

	ledger := &storeLedger{store: store.NewAdminStore(blobs), log: log.Log}
	handler := &http.AdminHandler{Ledger: ledger}
	router := http.NewRouter(handler, options.AdminAccessKey, log.Log)

	log.Log.Info("admin dashboard listening", zap.String("addr", options.AdminAddr))
	if err := nethttp.ListenAndServe(options.AdminAddr, router); err != nil {
		log.Log.Fatal("server stopped", zap.Error(err))
	}
}

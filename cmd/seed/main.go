// Command seed loads sample equipment and maintenance records into the configured store.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/service"
	"github.com/noah-isme/maintenance-tracker-api/pkg/config"
	"github.com/noah-isme/maintenance-tracker-api/pkg/logger"
	"github.com/noah-isme/maintenance-tracker-api/pkg/storage"
)

//go:embed fixtures.yaml
var defaultFixture []byte

func main() {
	var (
		fixturePath string
		force       bool
		operator    string
		tokenTTL    time.Duration
	)
	flag.StringVar(&fixturePath, "file", "", "YAML fixture to load instead of the built-in sample data")
	flag.BoolVar(&force, "force", false, "overwrite collections that already hold records")
	flag.StringVar(&operator, "operator", "", "also print a bearer token for this operator id (JWT_SECRET)")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of the token printed with -operator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	data := defaultFixture
	if fixturePath != "" {
		if data, err = os.ReadFile(fixturePath); err != nil {
			logr.Fatal("failed to read fixture", zap.String("path", fixturePath), zap.Error(err))
		}
	}
	equipment, records, err := parseFixture(data)
	if err != nil {
		logr.Fatal("invalid fixture", zap.Error(err))
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer storage.Close(backend) //nolint:errcheck

	validate := models.NewValidator()
	equipmentStore := repository.NewCollectionStore[models.Equipment](backend, repository.StoreOptions{
		Collection: service.CollectionEquipment,
		Document:   cfg.Store.EquipmentDocument,
		Serialize:  true,
		Validator:  validate,
		Logger:     logr,
	})
	maintenanceStore := repository.NewCollectionStore[models.MaintenanceRecord](backend, repository.StoreOptions{
		Collection: service.CollectionMaintenance,
		Document:   cfg.Store.MaintenanceDoc,
		Serialize:  true,
		Validator:  validate,
		Logger:     logr,
	})
	for _, document := range []string{equipmentStore.Document(), maintenanceStore.Document()} {
		if _, err := storage.EnsureDocument(ctx, backend, document, []byte("[]")); err != nil {
			logr.Fatal("failed to bootstrap document", zap.String("document", document), zap.Error(err))
		}
	}

	result, err := seed(ctx, equipmentStore, maintenanceStore, equipment, records, force)
	if err != nil {
		logr.Fatal("seed failed", zap.Error(err))
	}
	logr.Info("seed complete",
		zap.String("driver", string(backend.Driver())),
		zap.Int("equipment", result.Equipment),
		zap.Int("maintenance", result.Maintenance),
		zap.Strings("skipped", result.Skipped),
	)

	if operator != "" {
		token, err := service.NewTokenService(cfg.Auth.JWTSecret).Issue(operator, "", tokenTTL)
		if err != nil {
			logr.Fatal("failed to issue operator token", zap.Error(err))
		}
		fmt.Println(token)
	}
}

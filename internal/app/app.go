package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/httpapi"
	sqliteadapter "github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/usecase"
	"github.com/atvirokodosprendimai/cliniccore/migrations"
)

type Config struct {
	Addr             string
	DBPath           string
	AuditEnabled     bool
	BootstrapAPIKey  string
	BootstrapKeyName string
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	counterStore := sqliteadapter.NewCounterStore(db)
	auditRepo := sqliteadapter.NewAuditLogRepository(db)
	patientRepo := sqliteadapter.NewPatientRepository(db)
	customerRepo := sqliteadapter.NewCustomerRepository(db)
	invoiceRepo := sqliteadapter.NewInvoiceRepository(db)
	appointmentRepo := sqliteadapter.NewAppointmentRepository(db)
	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)

	schemas, err := usecase.NewFormSchemas()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("load form schemas: %w", err)
	}

	recorder := usecase.NewAuditRecorder(cfg.AuditEnabled)
	sequenceService := usecase.NewSequenceService(counterStore)
	gapService := usecase.NewGapService(invoiceRepo)
	auditService := usecase.NewAuditService(auditRepo)
	authService := usecase.NewAuthService(apiKeyRepo)
	patientService := usecase.NewPatientService(patientRepo, recorder, schemas)
	customerService := usecase.NewCustomerService(customerRepo, recorder)
	invoiceService := usecase.NewInvoiceService(invoiceRepo, sequenceService, recorder, schemas)
	appointmentService := usecase.NewAppointmentService(appointmentRepo, recorder)

	if cfg.BootstrapAPIKey != "" {
		name := cfg.BootstrapKeyName
		if name == "" {
			name = "bootstrap"
		}

		bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := apiKeyRepo.Upsert(bootstrapCtx, domain.APIKey{
			TokenHash: usecase.HashToken(cfg.BootstrapAPIKey),
			Name:      name,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		})
		bootstrapCancel()
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap api key: %w", err)
		}
	}

	handler := httpapi.NewHandler(
		patientService,
		customerService,
		invoiceService,
		appointmentService,
		gapService,
		auditService,
		authService,
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, db, nil
}

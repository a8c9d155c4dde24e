package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
)

const (
	componentLedger = "ledger"

	slowStatementThreshold = 200 * time.Millisecond
)

// Ledger persists runs through GORM.
type Ledger struct {
	db      *gorm.DB
	backend string
	log     logger.Logger
}

// Open connects to the backend named by settings and migrates the schema.
// It must not be called for the none backend.
func Open(settings *conf.LedgerSettings, log logger.Logger) (*Ledger, error) {
	var dialector gorm.Dialector

	switch settings.Type {
	case conf.LedgerSQLite:
		if dir := filepath.Dir(settings.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.New(fmt.Errorf("create ledger directory: %w", err)).
					Component(componentLedger).
					Category(errors.CategoryFileIO).
					Context("path", settings.Path).
					Build()
			}
		}
		dialector = sqlite.Open(settings.Path)

	case conf.LedgerMySQL:
		dsn, err := mysqlDSN(settings.DSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)

	default:
		return nil, errors.Newf("ledger backend %q cannot be opened", settings.Type).
			Component(componentLedger).
			Category(errors.CategoryConfiguration).
			Build()
	}

	return open(dialector, settings.Type, log)
}

// OpenDialector opens a ledger on an explicit GORM dialector.
func OpenDialector(dialector gorm.Dialector, backend string, log logger.Logger) (*Ledger, error) {
	return open(dialector, backend, log)
}

func open(dialector gorm.Dialector, backend string, log logger.Logger) (*Ledger, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowStatementThreshold),
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open %s ledger: %w", backend, err)).
			Component(componentLedger).
			Category(errors.CategoryDatabase).
			Context("backend", backend).
			Build()
	}

	if err := db.AutoMigrate(&Run{}, &HostEvent{}); err != nil {
		return nil, errors.New(fmt.Errorf("failed to migrate %s ledger: %w", backend, err)).
			Component(componentLedger).
			Category(errors.CategoryDatabase).
			Context("backend", backend).
			Build()
	}

	log.Debug("Ledger opened", logger.String("backend", backend))
	return &Ledger{db: db, backend: backend, log: log}, nil
}

// mysqlDSN forces parseTime so CreatedAt scans into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", errors.New(fmt.Errorf("invalid ledger dsn: %w", err)).
			Component(componentLedger).
			Category(errors.CategoryConfiguration).
			Build()
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Backend names the database in use.
func (l *Ledger) Backend() string {
	return l.backend
}

// Record stores run together with its events in one transaction.
func (l *Ledger) Record(ctx context.Context, run *Run) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		return errors.New(fmt.Errorf("record run %s: %w", run.RunID, err)).
			Component(componentLedger).
			Category(errors.CategoryDatabase).
			Context("run_id", run.RunID).
			Build()
	}

	l.log.Info("Run recorded",
		logger.String("run_id", run.RunID),
		logger.Int("events", len(run.Events)))
	return nil
}

// Recent returns up to limit runs, newest first, with their events.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := l.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("host") }).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("list runs: %w", err)).
			Component(componentLedger).
			Category(errors.CategoryDatabase).
			Build()
	}
	return runs, nil
}

// Get returns the run with the given run id.
func (l *Ledger) Get(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := l.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("host") }).
		Where("run_id = ?", runID).
		First(&run).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("get run %s: %w", runID, err)).
			Component(componentLedger).
			Category(errors.CategoryDatabase).
			Context("run_id", runID).
			Build()
	}
	return &run, nil
}

// Close releases the underlying connection pool.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}
	return sqlDB.Close()
}

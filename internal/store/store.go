// Package store persists templates and the billing-rate catalog in an
// embedded SQLite database, with a JSON file cache as a degraded-mode
// fallback for templates.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/match"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// TemplateModel is the persisted template row. Data carries the JSON body
// (metadata, bank details, layout, elements); id and name are hoisted out
// for listing without decoding.
type TemplateModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index;not null"`
	Data      []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RateModel is one persisted rate catalog row.
type RateModel struct {
	ID          string `gorm:"primaryKey"`
	ReferenceNo string `gorm:"uniqueIndex;not null"`
	Description string
	Unit        string
	Rate        float64
	OTRate      float64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store provides access to the template and rate tables.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New opens (or creates) the database under dataDir and migrates the
// schema.
func New(dataDir string, log *zap.Logger) (*Store, error) {
	path := filepath.Join(dataDir, "docpress.db")
	sqlDB, err := sql.Open("sqlite", path+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return open(sqlDB, log)
}

// NewMemory opens an in-memory database, used by tests.
func NewMemory(log *zap.Logger) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite: %w", err)
	}
	// A single connection keeps every query on the same in-memory db.
	sqlDB.SetMaxOpenConns(1)
	return open(sqlDB, log)
}

func open(sqlDB *sql.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening gorm: %w", err)
	}
	if err := db.AutoMigrate(&TemplateModel{}, &RateModel{}); err != nil {
		return nil, fmt.Errorf("store: migrating: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTemplate inserts or updates a template. A template without an id
// gets one assigned; the stored template is returned.
func (s *Store) SaveTemplate(t *document.Template) (*document.Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row, err := t.ToRow()
	if err != nil {
		return nil, err
	}
	model := TemplateModel{ID: row.ID, Name: row.Name, Data: row.Data}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "data", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return nil, fmt.Errorf("store: saving template %q: %w", t.Name, err)
	}
	s.log.Info("saved template", zap.String("id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// GetTemplate loads one template by id.
func (s *Store) GetTemplate(id string) (*document.Template, error) {
	var model TemplateModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: loading template %s: %w", id, err)
	}
	return document.FromRow(document.TemplateRow{ID: model.ID, Name: model.Name, Data: model.Data})
}

// ListTemplates returns every stored template, most recently updated first.
func (s *Store) ListTemplates() ([]*document.Template, error) {
	var models []TemplateModel
	if err := s.db.Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("store: listing templates: %w", err)
	}
	out := make([]*document.Template, 0, len(models))
	for _, m := range models {
		t, err := document.FromRow(document.TemplateRow{ID: m.ID, Name: m.Name, Data: m.Data})
		if err != nil {
			// One corrupt row must not hide the rest.
			s.log.Warn("skipping undecodable template", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// DeleteTemplate removes one template.
func (s *Store) DeleteTemplate(id string) error {
	res := s.db.Delete(&TemplateModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store: deleting template %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRates returns the whole rate catalog ordered by reference.
func (s *Store) ListRates() ([]match.Rate, error) {
	var models []RateModel
	if err := s.db.Order("reference_no ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("store: listing rates: %w", err)
	}
	out := make([]match.Rate, len(models))
	for i, m := range models {
		out[i] = match.Rate{
			ID:          m.ID,
			ReferenceNo: m.ReferenceNo,
			Description: m.Description,
			Unit:        m.Unit,
			Rate:        m.Rate,
			OTRate:      m.OTRate,
			Currency:    m.Currency,
		}
	}
	return out, nil
}

// UpsertRates inserts rates, updating existing rows that share a
// reference number. It returns how many rows were written.
func (s *Store) UpsertRates(rates []match.Rate) (int, error) {
	written := 0
	for _, r := range rates {
		if r.ReferenceNo == "" {
			continue
		}
		model := RateModel{
			ID:          r.ID,
			ReferenceNo: r.ReferenceNo,
			Description: r.Description,
			Unit:        r.Unit,
			Rate:        r.Rate,
			OTRate:      r.OTRate,
			Currency:    r.Currency,
		}
		if model.ID == "" {
			model.ID = uuid.NewString()
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reference_no"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "unit", "rate", "ot_rate", "currency", "updated_at",
			}),
		}).Create(&model).Error
		if err != nil {
			return written, fmt.Errorf("store: upserting rate %q: %w", r.ReferenceNo, err)
		}
		written++
	}
	return written, nil
}

// ReplaceRates swaps the whole catalog for a new one. An empty replacement
// is rejected; wiping the catalog must be an explicit DeleteAllRates call,
// not a side effect of a bad import.
func (s *Store) ReplaceRates(rates []match.Rate) error {
	if len(rates) == 0 {
		return errors.New("store: refusing to replace rate catalog with an empty set")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&RateModel{}).Error; err != nil {
			return fmt.Errorf("store: clearing rates: %w", err)
		}
		for _, r := range rates {
			if r.ReferenceNo == "" {
				continue
			}
			model := RateModel{
				ID:          uuid.NewString(),
				ReferenceNo: r.ReferenceNo,
				Description: r.Description,
				Unit:        r.Unit,
				Rate:        r.Rate,
				OTRate:      r.OTRate,
				Currency:    r.Currency,
			}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("store: inserting rate %q: %w", r.ReferenceNo, err)
			}
		}
		return nil
	})
}

// DeleteAllRates wipes the rate catalog. The confirm flag exists so a
// mis-wired call site cannot clear production data by accident.
func (s *Store) DeleteAllRates(confirm bool) error {
	if !confirm {
		return errors.New("store: delete-all requires confirmation")
	}
	if err := s.db.Where("1 = 1").Delete(&RateModel{}).Error; err != nil {
		return fmt.Errorf("store: deleting rates: %w", err)
	}
	s.log.Warn("rate catalog cleared")
	return nil
}

// DeleteRate removes a single rate by id.
func (s *Store) DeleteRate(id string) error {
	res := s.db.Delete(&RateModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store: deleting rate %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

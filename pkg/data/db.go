package data

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spencer-p/skydash/pkg/logging"
)

// PostgresFromEnv connects to the database named by the standard PG*
// environment variables and migrates the schema. It returns nil without
// error when PGHOST is unset.
func PostgresFromEnv() (*gorm.DB, error) {
	host := os.Getenv("PGHOST")
	if host == "" {
		return nil, nil
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host,
		envOr("PGUSER", "postgres"),
		os.Getenv("PGPASSWORD"),
		envOr("PGDATABASE", "skydash"),
		envOr("PGPORT", "5432"))

	dbLogger := logger.New(
		zap.NewStdLog(logging.Zap()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database at %s: %w", host, err)
	}
	if err := db.AutoMigrate(&Site{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sites: %w", err)
	}
	return db, nil
}

// GormSites stores sites in a SQL database.
type GormSites struct {
	db *gorm.DB
}

func NewGormSites(db *gorm.DB) *GormSites {
	return &GormSites{db: db}
}

func (g *GormSites) List() ([]Site, error) {
	var sites []Site
	if err := g.db.Order("name").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

func (g *GormSites) Get(name string) (Site, error) {
	var site Site
	err := g.db.Where("name = ?", name).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Site{}, fmt.Errorf("%w: %q", ErrSiteNotFound, name)
	} else if err != nil {
		return Site{}, fmt.Errorf("failed to get site %q: %w", name, err)
	}
	return site, nil
}

// Put creates the site or replaces the one with the same name.
func (g *GormSites) Put(site Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	return g.db.Transaction(func(tx *gorm.DB) error {
		var existing Site
		err := tx.Where("name = ?", site.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&site).Error
		case err != nil:
			return err
		}
		site.ID = existing.ID
		site.CreatedAt = existing.CreatedAt
		return tx.Save(&site).Error
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

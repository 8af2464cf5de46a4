package database

import (
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/models"
	"gorm.io/gorm"
)

type Database struct {
	db           *gorm.DB
	projectRepo  *ProjectRepo
	leadRepo     *LeadRepo
	waitlistRepo *WaitlistRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		projectRepo:  NewProjectRepo(db),
		leadRepo:     NewLeadRepo(db),
		waitlistRepo: NewWaitlistRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) LeadRepo() *LeadRepo {
	return d.leadRepo
}

func (d Database) WaitlistRepo() *WaitlistRepo {
	return d.waitlistRepo
}

// AutoMigrate creates or alters every table the site owns.
func (d Database) AutoMigrate() error {
	if d.db == nil {
		return errs.NewStorageUnavailableError("database")
	}
	if err := d.db.AutoMigrate(models.All()...); err != nil {
		return errs.NewDatabaseError("migrate", "schema", err)
	}
	return nil
}

package models

import (
	"fmt"

	"gorm.io/gen"
	"gorm.io/gorm"
)

// All lists every persisted model in dependency order; projects precede
// project_media so the cascade constraint can be created.
func All() []interface{} {
	return []interface{}{
		&Project{},
		&ProjectMedia{},
		&Lead{},
		&WaitlistSignup{},
	}
}

func generatorConfig(outPath string) gen.Config {
	return gen.Config{
		OutPath:       outPath,
		Mode:          gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable: true,
	}
}

// GenerateModels writes typed query helpers for All() into outPath. The
// schema must already be migrated.
func GenerateModels(db *gorm.DB, outPath string) error {
	if outPath == "" {
		return fmt.Errorf("generate models: empty output path")
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("generate models: %w", err)
	}

	g := gen.NewGenerator(generatorConfig(outPath))
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()
	return nil
}

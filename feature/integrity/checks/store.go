package checks

import (
	"fmt"

	"gorm.io/gorm"
)

// StoreReport strictly types the result of a store schema check.
type StoreReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckStore verifies the database schema using the GORM models as the source of truth.
func CheckStore(db *gorm.DB, models ...any) (*StoreReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &StoreReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}
	migrator := db.Migrator()

	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to parse model %T: %v", model, err))
			report.Matched = false
			continue
		}

		table := stmt.Schema.Table
		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		if !migrator.HasTable(model) {
			tbl.Status = "missing"
			report.Matched = false
			report.Tables[table] = tbl
			continue
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !migrator.HasColumn(model, field.DBName) {
				tbl.MissingColumns = append(tbl.MissingColumns, field.DBName)
				tbl.Status = "error"
				report.Matched = false
			}
		}
		report.Tables[table] = tbl
	}

	return report, nil
}

// FixStore creates the missing tables and columns.
func FixStore(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

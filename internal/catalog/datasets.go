package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/pointplay/internal/config"
)

// PutDataset inserts or replaces a dataset definition.
func (s *Store) PutDataset(d config.DatasetConfig) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("put dataset %q: %w", d.Name, err)
	}
	definition, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dataset %q: %w", d.Name, err)
	}
	filetype := strings.ToLower(d.Filetype)
	if filetype == "" {
		filetype = config.FiletypeCSV
	}

	_, err = s.db.Exec(`
		INSERT INTO datasets (name, file, filetype, definition_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			file = excluded.file,
			filetype = excluded.filetype,
			definition_json = excluded.definition_json,
			updated_at = excluded.updated_at
	`, d.Name, d.File, filetype, string(definition), s.clock.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("put dataset %q: %w", d.Name, err)
	}
	return nil
}

// PutCatalog stores every dataset of cat.
func (s *Store) PutCatalog(cat *config.Catalog) error {
	for _, d := range cat.Datasets {
		if err := s.PutDataset(d); err != nil {
			return err
		}
	}
	logf("stored %d dataset definitions", len(cat.Datasets))
	return nil
}

// GetDataset returns the stored definition of name, or sql.ErrNoRows.
func (s *Store) GetDataset(name string) (*config.DatasetConfig, error) {
	var definition string
	err := s.db.QueryRow(`SELECT definition_json FROM datasets WHERE name = ?`, name).Scan(&definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset %q: %w", name, err)
	}

	d := &config.DatasetConfig{}
	if err := json.Unmarshal([]byte(definition), d); err != nil {
		return nil, fmt.Errorf("decode dataset %q: %w", name, err)
	}
	return d, nil
}

// ListDatasets returns the names of all stored datasets, sorted.
func (s *Store) ListDatasets() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM datasets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteDataset removes a dataset definition. Its load history is kept.
func (s *Store) DeleteDataset(name string) error {
	result, err := s.db.Exec(`DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

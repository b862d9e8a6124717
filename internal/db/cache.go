package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Cache persists lookups made against the QMetry API: folder ids by path,
// custom field ids by name, and option ids per field.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	sqlDB, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Cache{db: sqlDB}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// FolderID returns the cached id for a folder path.
func (c *Cache) FolderID(path string) (int64, bool, error) {
	var id int64
	err := c.db.QueryRow(`SELECT folder_id FROM folders WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying folder %s: %w", path, err)
	}
	return id, true, nil
}

func (c *Cache) SaveFolderID(path string, id int64) error {
	_, err := c.db.Exec(`
		INSERT INTO folders (path, folder_id) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET folder_id = excluded.folder_id, updated_at = datetime('now')
	`, path, id)
	if err != nil {
		return fmt.Errorf("saving folder %s: %w", path, err)
	}
	return nil
}

// FieldID returns the cached custom field id for name.
func (c *Cache) FieldID(name string) (string, bool, error) {
	var id string
	err := c.db.QueryRow(`SELECT field_id FROM field_ids WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying field %s: %w", name, err)
	}
	return id, true, nil
}

// HasFieldIDs reports whether field discovery has populated the cache.
func (c *Cache) HasFieldIDs() (bool, error) {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM field_ids`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting field ids: %w", err)
	}
	return count > 0, nil
}

// SaveField stores a field id and replaces its option ids. A field with no
// options is a free-text field.
func (c *Cache) SaveField(name, id string, options map[string]int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning field save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO field_ids (name, field_id) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET field_id = excluded.field_id, updated_at = datetime('now')
	`, name, id); err != nil {
		return fmt.Errorf("saving field %s: %w", name, err)
	}
	if _, err := tx.Exec(`DELETE FROM field_options WHERE field_name = ?`, name); err != nil {
		return fmt.Errorf("clearing options for %s: %w", name, err)
	}
	for value, optionID := range options {
		if _, err := tx.Exec(`INSERT INTO field_options (field_name, value, option_id) VALUES (?, ?, ?)`, name, value, optionID); err != nil {
			return fmt.Errorf("saving option %s for %s: %w", value, name, err)
		}
	}
	return tx.Commit()
}

// FieldOptions returns the option ids for a field keyed by option value.
func (c *Cache) FieldOptions(name string) (map[string]int64, error) {
	rows, err := c.db.Query(`SELECT value, option_id FROM field_options WHERE field_name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("querying options for %s: %w", name, err)
	}
	defer rows.Close()

	options := map[string]int64{}
	for rows.Next() {
		var value string
		var id int64
		if err := rows.Scan(&value, &id); err != nil {
			return nil, fmt.Errorf("scanning option row: %w", err)
		}
		options[value] = id
	}
	return options, rows.Err()
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	for _, table := range []string{"folders", "field_ids", "field_options"} {
		if _, err := c.db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

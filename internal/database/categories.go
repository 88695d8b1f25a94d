package database

import (
	"database/sql"
	"fmt"

	"bankbooks/internal/models"
)

// ListCategories returns all categories with their transaction counts
func (db *DB) ListCategories() ([]models.Category, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, c.description, c.color, COUNT(t.id)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns a category by ID
func (db *DB) GetCategory(id int64) (*models.Category, error) {
	var c models.Category
	err := db.QueryRow(`
		SELECT id, name, description, color FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.Color)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a new category and returns its ID. The name is
// unique; a duplicate surfaces as a unique violation.
func (db *DB) CreateCategory(c *models.Category) (int64, error) {
	if c.Color == "" {
		c.Color = "#3498db"
	}
	result, err := db.Exec(`
		INSERT INTO categories (name, description, color) VALUES (?, ?, ?)
	`, c.Name, c.Description, c.Color)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return result.LastInsertId()
}

// UpdateCategory updates name, description and color
func (db *DB) UpdateCategory(c *models.Category) error {
	result, err := db.Exec(`
		UPDATE categories SET name = ?, description = ?, color = ? WHERE id = ?
	`, c.Name, c.Description, c.Color, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. Linked transactions are kept and become
// uncategorized: category_id is set to NULL before the row is deleted, never
// cascaded.
func (db *DB) DeleteCategory(id int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("unlink transactions: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

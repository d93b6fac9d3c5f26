package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/authui/internal/domain"
)

// CreateRegistrationIntent stores a registration intent
func (db *DB) CreateRegistrationIntent(intent *RegistrationIntent) error {
	_, err := db.Exec(
		"INSERT INTO registration_intents (id, email, name, redirect_url, created_at) VALUES (?, ?, ?, ?, ?)",
		intent.ID, intent.Email, intent.Name, intent.RedirectURL, intent.CreatedAt,
	)
	if err != nil {
		return domain.WrapDatabaseOperation("create registration intent", err)
	}
	return nil
}

// GetRegistrationIntent retrieves an intent by ID
func (db *DB) GetRegistrationIntent(id string) (*RegistrationIntent, error) {
	intent := &RegistrationIntent{}
	var name sql.NullString
	err := db.QueryRow(
		"SELECT id, email, name, redirect_url, created_at FROM registration_intents WHERE id = ?",
		id,
	).Scan(&intent.ID, &intent.Email, &name, &intent.RedirectURL, &intent.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, domain.WrapDatabaseOperation("get registration intent", err)
	}
	intent.Name = name.String
	return intent, nil
}

// ListRegistrationIntents returns the most recent intents first
func (db *DB) ListRegistrationIntents(limit int) ([]*RegistrationIntent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		"SELECT id, email, name, redirect_url, created_at FROM registration_intents ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, domain.WrapDatabaseOperation("list registration intents", err)
	}
	defer rows.Close()

	intents := []*RegistrationIntent{}
	for rows.Next() {
		intent := &RegistrationIntent{}
		var name sql.NullString
		if err := rows.Scan(&intent.ID, &intent.Email, &name, &intent.RedirectURL, &intent.CreatedAt); err != nil {
			return nil, domain.WrapDatabaseOperation("scan registration intent", err)
		}
		intent.Name = name.String
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

// CountRegistrationIntents returns the number of stored intents
func (db *DB) CountRegistrationIntents() (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM registration_intents").Scan(&count); err != nil {
		return 0, domain.WrapDatabaseOperation("count registration intents", err)
	}
	return count, nil
}

// PruneRegistrationIntents deletes intents created before cutoff and
// returns how many were removed.
func (db *DB) PruneRegistrationIntents(cutoff time.Time) (int64, error) {
	res, err := db.Exec("DELETE FROM registration_intents WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, domain.WrapDatabaseOperation("prune registration intents", err)
	}
	return res.RowsAffected()
}

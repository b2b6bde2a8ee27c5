package repository

import (
	"database/sql"
	"slices"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/timeutil"
)

// ActivityRepository handles activity log database operations
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(sqliteDB *SQLiteDB) *ActivityRepository {
	return &ActivityRepository{db: sqliteDB.db}
}

// Create inserts a new action into the database
func (r *ActivityRepository) Create(action *models.Action) error {
	if action.CreatedAt.IsZero() {
		action.CreatedAt = timeutil.Now()
	}
	result, err := r.db.Exec(`
		INSERT INTO activity_log (actor_id, actor_name, action, details, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, action.Actor.ID, action.Actor.Name, action.Name, action.Details, action.Error, action.CreatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	action.ID = id
	return nil
}

// Recent returns the latest limit actions, oldest first
func (r *ActivityRepository) Recent(limit int) ([]models.Action, error) {
	rows, err := r.db.Query(`
		SELECT id, actor_id, actor_name, action, details, error, created_at
		FROM activity_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

// RecentByActor returns the latest limit actions of one user, oldest first
func (r *ActivityRepository) RecentByActor(actorID int64, limit int) ([]models.Action, error) {
	rows, err := r.db.Query(`
		SELECT id, actor_id, actor_name, action, details, error, created_at
		FROM activity_log
		WHERE actor_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

func scanActions(rows *sql.Rows) ([]models.Action, error) {
	var actions []models.Action
	for rows.Next() {
		var a models.Action
		err := rows.Scan(&a.ID, &a.Actor.ID, &a.Actor.Name, &a.Name, &a.Details, &a.Error, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive newest first
	slices.Reverse(actions)
	return actions, nil
}

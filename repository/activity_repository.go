package repository

import (
	"context"
	"database/sql"
	"go-bank-console/logger"
	"go-bank-console/model"

	"github.com/sirupsen/logrus"
)

// IActivityRepository defines the contract for the console audit trail.
type IActivityRepository interface {
	CreateActivity(ctx context.Context, activity *model.Activity) error
	ListRecent(ctx context.Context, limit int) ([]*model.Activity, error)
}

// ActivityRepository implements IActivityRepository on PostgreSQL.
type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *model.Activity) error {
	log := logger.Log.WithFields(logrus.Fields{
		"action":     activity.Action,
		"account_id": activity.AccountID,
		"amount":     activity.Amount,
	})
	log.Info("Executing query to create a new activity record")

	query := `INSERT INTO console_activity (action, account_id, amount, balance_after) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, activity.Action, activity.AccountID, activity.Amount, activity.BalanceAfter).
		Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create activity query")
		return err
	}
	return nil
}

// ListRecent returns at most limit records, newest first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]*model.Activity, error) {
	log := logger.Log.WithField("limit", limit)
	log.Info("Executing query to list recent activity")

	query := `
		SELECT id, action, account_id, amount, balance_after, created_at
		FROM console_activity
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for recent activity")
		return nil, err
	}
	defer rows.Close()

	var activities []*model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Action, &a.AccountID, &a.Amount, &a.BalanceAfter, &a.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan activity row")
			return nil, err
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Failed to iterate activity rows")
		return nil, err
	}
	return activities, nil
}

// NoopActivityRepository is used when no audit database is configured.
type NoopActivityRepository struct{}

func (NoopActivityRepository) CreateActivity(context.Context, *model.Activity) error { return nil }

func (NoopActivityRepository) ListRecent(context.Context, int) ([]*model.Activity, error) {
	return nil, nil
}

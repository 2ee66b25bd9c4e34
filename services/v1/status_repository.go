package v1

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"status-monitor/models"
)

// PostgresStore is the durable system of record: component status,
// incidents and daily history.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SyncComponents makes sure every registry entry has a status_components row.
// Names and display order follow the registry; current_status is left alone.
func (s *PostgresStore) SyncComponents(ctx context.Context, components []models.ComponentConfig) error {
	for i, c := range components {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO status_components (id, name, display_order, current_status, updated_at)
			VALUES ($1, $2, $3, 'operational', now())
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, display_order = EXCLUDED.display_order`,
			c.ID, c.Name, i)
		if err != nil {
			return fmt.Errorf("sync component %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) UpdateComponentStatus(ctx context.Context, componentID string, status models.Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE status_components SET current_status = $1, updated_at = now() WHERE id = $2`,
		string(status), componentID)
	return err
}

func (s *PostgresStore) GetComponentStatus(ctx context.Context, componentID string) (models.Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT current_status FROM status_components WHERE id = $1`, componentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Operational, nil
	}
	if err != nil {
		return "", err
	}
	return models.Status(status), nil
}

func (s *PostgresStore) CreateIncident(ctx context.Context, inc models.NewIncident) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO status_incidents (id, title, slug, status, impact, type, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)`,
		inc.ID, inc.Title, inc.Slug, models.IncidentInvestigating, string(inc.Impact), inc.Type, inc.StartedAt)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_incident_components (incident_id, component_id) VALUES ($1, $2)`,
		inc.ID, inc.ComponentID)
	if err != nil {
		return fmt.Errorf("link incident: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO status_updates (id, incident_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		inc.UpdateID, inc.ID, models.IncidentInvestigating, inc.UpdateMessage, inc.StartedAt)
	if err != nil {
		return fmt.Errorf("insert incident update: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) ResolveIncident(ctx context.Context, incidentID, componentID, updateID string, at time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE status_incidents
		SET status = $1, resolved_at = $2, updated_at = $2
		WHERE id = $3 AND resolved_at IS NULL`,
		models.IncidentResolved, at, incidentID)
	if err != nil {
		return false, fmt.Errorf("resolve incident: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if n > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO status_updates (id, incident_id, status, message, created_at)
			VALUES ($1, $2, $3, 'Service has recovered and is operating normally.', $4)`,
			updateID, incidentID, models.IncidentResolved, at)
		if err != nil {
			return false, fmt.Errorf("insert resolution update: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE status_components SET current_status = $1, updated_at = $2 WHERE id = $3`,
		string(models.Operational), at, componentID)
	if err != nil {
		return false, fmt.Errorf("revert component status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) GetDailyStatus(ctx context.Context, componentID, date string) (models.Status, bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM status_daily_history WHERE component_id = $1 AND date = $2`,
		componentID, date).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return models.Status(status), true, nil
}

func (s *PostgresStore) InsertDailyStatus(ctx context.Context, componentID, date string, status models.Status) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_daily_history (component_id, date, status, incident_count, created_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (component_id, date) DO NOTHING`,
		componentID, date, string(status))
	return err
}

func (s *PostgresStore) SetDailyStatus(ctx context.Context, componentID, date string, status models.Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE status_daily_history SET status = $1 WHERE component_id = $2 AND date = $3`,
		string(status), componentID, date)
	return err
}

func (s *PostgresStore) IncidentsOverlapping(ctx context.Context, componentID string, start, end time.Time) ([]models.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.title, i.slug, i.status, i.type, i.impact, i.started_at, i.resolved_at
		FROM status_incidents i
		INNER JOIN status_incident_components ic ON ic.incident_id = i.id
		WHERE ic.component_id = $1
		  AND i.started_at < $3
		  AND (i.resolved_at IS NULL OR i.resolved_at >= $2)
		ORDER BY i.started_at ASC`,
		componentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		var impact string
		var resolved sql.NullTime
		if err := rows.Scan(&inc.ID, &inc.Title, &inc.Slug, &inc.Status, &inc.Type, &impact, &inc.StartedAt, &resolved); err != nil {
			return nil, err
		}
		inc.Impact = models.Impact(impact)
		if resolved.Valid {
			t := resolved.Time
			inc.ResolvedAt = &t
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

func (s *PostgresStore) UpsertRollup(ctx context.Context, componentID, date string, status models.Status, incidentCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_daily_history (component_id, date, status, incident_count, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (component_id, date) DO UPDATE SET incident_count = EXCLUDED.incident_count`,
		componentID, date, string(status), incidentCount)
	return err
}

func (s *PostgresStore) PruneDailyHistory(ctx context.Context, before string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM status_daily_history WHERE date < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) ListComponents(ctx context.Context) ([]models.ComponentStatusRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, display_order, current_status FROM status_components ORDER BY display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []models.ComponentStatusRecord
	for rows.Next() {
		var c models.ComponentStatusRecord
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &status); err != nil {
			return nil, err
		}
		c.CurrentStatus = models.Status(status)
		components = append(components, c)
	}
	return components, rows.Err()
}

func (s *PostgresStore) ListDailyHistory(ctx context.Context, since string) ([]models.DailyHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT component_id, to_char(date, 'YYYY-MM-DD'), status, incident_count, created_at
		FROM status_daily_history
		WHERE date >= $1
		ORDER BY component_id, date ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.DailyHistoryRecord
	for rows.Next() {
		var r models.DailyHistoryRecord
		var status string
		if err := rows.Scan(&r.ComponentID, &r.Date, &status, &r.IncidentCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Status = models.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

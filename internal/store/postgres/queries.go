package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// disasterColumns is the column list used for SELECT statements on the
// disasters table.
const disasterColumns = `id, title, location_name, description, tags, owner_id,
	audit_trail, created_at, updated_at`

// haversineMeters computes the great-circle distance from the query point
// ($1 lat, $2 lon) to each resource row, in meters.
const haversineMeters = `6371000 * 2 * asin(sqrt(
		pow(sin(radians(lat - $1) / 2), 2) +
		cos(radians($1)) * cos(radians(lat)) * pow(sin(radians(lon - $2) / 2), 2)))`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateDisaster(ctx context.Context, db executor, d *domain.Disaster) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	trail, err := json.Marshal(d.AuditTrail)
	if err != nil {
		return &domain.StoreError{Op: "encode audit trail", Err: err}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO disasters (
			id, title, location_name, description, tags, owner_id,
			audit_trail, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID,
		d.Title,
		d.LocationName,
		d.Description,
		pq.Array(d.Tags),
		d.OwnerID,
		trail,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return &domain.StoreError{Op: "create disaster", Err: err}
	}
	return nil
}

func queryGetDisaster(ctx context.Context, db executor, id string) (*domain.Disaster, error) {
	row := db.QueryRowContext(ctx, `SELECT `+disasterColumns+` FROM disasters WHERE id = $1`, id)
	return scanDisaster(row, "get disaster")
}

func queryListDisasters(ctx context.Context, db executor, filter domain.DisasterFilter) ([]*domain.Disaster, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Tag != "" {
		whereClauses = append(whereClauses, nextArg()+" = ANY(tags)")
		args = append(args, filter.Tag)
	}

	if filter.OwnerID != "" {
		whereClauses = append(whereClauses, "owner_id = "+nextArg())
		args = append(args, filter.OwnerID)
	}

	query := `SELECT ` + disasterColumns + ` FROM disasters`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: "list disasters", Err: err}
	}
	defer rows.Close()

	disasters := []*domain.Disaster{}
	for rows.Next() {
		d, err := scanDisaster(rows, "list disasters")
		if err != nil {
			return nil, err
		}
		disasters = append(disasters, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list disasters", Err: err}
	}
	return disasters, nil
}

// queryUpdateDisaster writes the editable fields and appends the audit event
// to the stored trail in the same statement, so concurrent updates cannot
// overwrite each other's entries.
func queryUpdateDisaster(ctx context.Context, db executor, d *domain.Disaster, event domain.AuditEvent) error {
	entry, err := json.Marshal(event)
	if err != nil {
		return &domain.StoreError{Op: "encode audit event", Err: err}
	}

	res, err := db.ExecContext(ctx, `
		UPDATE disasters SET
			title = $1,
			location_name = $2,
			description = $3,
			tags = $4,
			audit_trail = audit_trail || $5::jsonb,
			updated_at = $6
		WHERE id = $7`,
		d.Title,
		d.LocationName,
		d.Description,
		pq.Array(d.Tags),
		entry,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		return &domain.StoreError{Op: "update disaster", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "update disaster", Err: err}
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func queryDeleteDisaster(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM disasters WHERE id = $1`, id)
	if err != nil {
		return &domain.StoreError{Op: "delete disaster", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "delete disaster", Err: err}
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func queryGetEntry(ctx context.Context, db executor, key string) (domain.CacheEntry, bool, error) {
	var entry domain.CacheEntry
	var value []byte

	row := db.QueryRowContext(ctx,
		`SELECT key, value, expires_at FROM cache WHERE key = $1`, key)
	if err := row.Scan(&entry.Key, &value, &entry.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CacheEntry{}, false, nil
		}
		return domain.CacheEntry{}, false, &domain.StoreError{Op: "get cache entry", Err: err}
	}

	entry.Value = json.RawMessage(value)
	return entry, true, nil
}

func queryUpsertEntry(ctx context.Context, db executor, key string, value json.RawMessage, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at`,
		key, []byte(value), expiresAt,
	)
	if err != nil {
		return &domain.StoreError{Op: "upsert cache entry", Err: err}
	}
	return nil
}

// queryNearbyResources finds resources within radiusMeters of the point,
// nearest first. Resources are shared across disasters, so the search is
// purely geographic.
func queryNearbyResources(ctx context.Context, db executor, lat, lon, radiusMeters float64) ([]domain.Resource, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, disaster_id, name, type, lat, lon, distance_meters FROM (
			SELECT id, disaster_id, name, type, lat, lon,
				`+haversineMeters+` AS distance_meters
			FROM resources
		) nearby
		WHERE distance_meters <= $3
		ORDER BY distance_meters`,
		lat, lon, radiusMeters,
	)
	if err != nil {
		return nil, &domain.StoreError{Op: "nearby resources", Err: err}
	}
	defer rows.Close()

	resources := []domain.Resource{}
	for rows.Next() {
		var r domain.Resource
		var disasterID sql.NullString
		if err := rows.Scan(&r.ID, &disasterID, &r.Name, &r.Type, &r.Lat, &r.Lon, &r.DistanceMeters); err != nil {
			return nil, &domain.StoreError{Op: "nearby resources", Err: err}
		}
		r.DisasterID = disasterID.String
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "nearby resources", Err: err}
	}
	return resources, nil
}

// scannable is satisfied by *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanDisaster(row scannable, op string) (*domain.Disaster, error) {
	var d domain.Disaster
	var trail []byte

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.LocationName,
		&d.Description,
		pq.Array(&d.Tags),
		&d.OwnerID,
		&trail,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: op, Err: err}
	}

	if len(trail) > 0 {
		if err := json.Unmarshal(trail, &d.AuditTrail); err != nil {
			return nil, &domain.StoreError{Op: "decode audit trail", Err: err}
		}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.AuditTrail == nil {
		d.AuditTrail = []domain.AuditEvent{}
	}
	return &d, nil
}

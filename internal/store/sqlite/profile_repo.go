package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"amoria/internal/domain"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

var _ domain.ProfileRepository = (*ProfileRepo)(nil)

const profileColumns = `user_id, display_name, bio, age, gender, interests, photos,
	latitude, longitude, location_updated_at, preferred_genders, min_age, max_age, max_distance_km`

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, bio, age, gender, interests, photos,
			latitude, longitude, location_updated_at, preferred_genders, min_age, max_age, max_distance_km)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.UserID,
		p.DisplayName,
		p.Bio,
		p.Age,
		p.Gender,
		encodeStrings(p.Interests),
		encodeStrings(p.Photos),
		p.Latitude,
		p.Longitude,
		p.LocationUpdatedAt,
		encodeStrings(p.PreferredGenders),
		p.MinAge,
		p.MaxAge,
		p.MaxDistanceKM,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET display_name = ?, bio = ?, age = ?, gender = ?, interests = ?, photos = ?,
			preferred_genders = ?, min_age = ?, max_age = ?, max_distance_km = ?
		WHERE user_id = ?
	`,
		p.DisplayName,
		p.Bio,
		p.Age,
		p.Gender,
		encodeStrings(p.Interests),
		encodeStrings(p.Photos),
		encodeStrings(p.PreferredGenders),
		p.MinAge,
		p.MaxAge,
		p.MaxDistanceKM,
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) SetLocation(ctx context.Context, userID int64, lat, lon float64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET latitude = ?, longitude = ?, location_updated_at = ?
		WHERE user_id = ?
	`, lat, lon, at, userID)
	if err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	return nil
}

func (r *ProfileRepo) ListDiscoverable(ctx context.Context, excludeIDs []int64, minAge, maxAge int, genders []string) ([]*domain.Profile, error) {
	query := `
		SELECT p.user_id, p.display_name, p.bio, p.age, p.gender, p.interests, p.photos,
			p.latitude, p.longitude, p.location_updated_at, p.preferred_genders, p.min_age, p.max_age, p.max_distance_km
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.status = ?
		AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL
		AND p.age BETWEEN ? AND ?
	`
	args := []any{domain.StatusActive, minAge, maxAge}

	if len(genders) > 0 {
		query += ` AND p.gender IN (` + placeholders(len(genders)) + `)`
		for _, g := range genders {
			args = append(args, g)
		}
	}
	if len(excludeIDs) > 0 {
		query += ` AND p.user_id NOT IN (` + placeholders(len(excludeIDs)) + `)`
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list discoverable profiles: %w", err)
	}
	defer rows.Close()

	var res []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var interests, photos, preferred string
	if err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Bio,
		&p.Age,
		&p.Gender,
		&interests,
		&photos,
		&p.Latitude,
		&p.Longitude,
		&p.LocationUpdatedAt,
		&preferred,
		&p.MinAge,
		&p.MaxAge,
		&p.MaxDistanceKM,
	); err != nil {
		return nil, err
	}
	p.Interests = decodeStrings(interests)
	p.Photos = decodeStrings(photos)
	p.PreferredGenders = decodeStrings(preferred)
	return p, nil
}

func encodeStrings(vals []string) string {
	if vals == nil {
		vals = []string{}
	}
	b, _ := json.Marshal(vals)
	return string(b)
}

func decodeStrings(raw string) []string {
	var vals []string
	if err := json.Unmarshal([]byte(raw), &vals); err != nil || vals == nil {
		return []string{}
	}
	return vals
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	const query = `
		SELECT id, username, expo_push_token, created_at, name, email
		FROM profiles
		WHERE username = $1
	`
	row := r.pool.QueryRow(ctx, query, username)
	profile, err := scanProfile(row)
	if err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "fetch profile by username")
	}
	return profile, nil
}

func (r *profileRepository) Insert(ctx context.Context, profile repository.NewProfile) (*domain.Profile, error) {
	if profile.Username == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO profiles (username, expo_push_token, created_at)
	VALUES ($1, NULL, $2)
	RETURNING id, username, expo_push_token, created_at, name, email
	`
	row := r.pool.QueryRow(ctx, query, profile.Username, time.Now().UTC())
	created, err := scanProfile(row)
	if err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "insert profile")
	}
	return created, nil
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.ProfileRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
	SELECT id, username, name, email
	FROM profiles
	WHERE id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "fetch profiles by id")
	}
	defer rows.Close()

	var refs []domain.ProfileRef
	for rows.Next() {
		var ref domain.ProfileRef
		if err := rows.Scan(&ref.ID, &ref.Username, &ref.Name, &ref.Email); err != nil {
			return nil, classify(err, domain.ErrProfileNotFound, "scan profile")
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "fetch profiles by id")
	}
	return refs, nil
}

func (r *profileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	const query = `
	SELECT id, username, expo_push_token, created_at, name, email
	FROM profiles
	ORDER BY username ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "list profiles")
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, classify(err, domain.ErrProfileNotFound, "scan profile")
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, domain.ErrProfileNotFound, "list profiles")
	}
	return profiles, nil
}

func (r *profileRepository) UpdatePushToken(ctx context.Context, id int64, token *string) error {
	const query = `UPDATE profiles SET expo_push_token = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return classify(err, domain.ErrProfileNotFound, "update push token")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func scanProfile(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.ExpoPushToken,
		&profile.CreatedAt,
		&profile.Name,
		&profile.Email,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

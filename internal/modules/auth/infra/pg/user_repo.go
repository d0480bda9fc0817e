package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
)

const userColumns = `id, name, email, password_hash, role, totp_secret, otp_enabled,
       pin_hash, pin_enabled, pin_expires_at, pin_used, pin_created_at,
       active, session_active, last_access, location`

// livePin is the SQL form of domain.HasLivePin. Every conditional PIN
// transition embeds it so concurrent requests resolve inside the database,
// never with application-level locks.
const livePin = `pin_enabled AND pin_hash IS NOT NULL AND pin_expires_at > now() AND NOT pin_used`

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.TOTPSecret, &u.OTPEnabled,
		&u.PinHash, &u.PinEnabled, &u.PinExpiresAt, &u.PinUsed, &u.PinCreatedAt,
		&u.Active, &u.SessionActive, &u.LastAccess, &u.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(p domain.CreateUserParams) (*domain.User, error) {
	ctx := context.Background()
	q := `
INSERT INTO users (name, email, password_hash, role, totp_secret, otp_enabled, active)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, q, p.Name, p.Email, p.PasswordHash, p.Role, p.TOTPSecret, p.OTPEnabled, p.Active)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(email string) (*domain.User, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, err
}

func (r *UserRepo) ConfigurePin(email, pinHash string, createdAt, expiresAt time.Time) (*domain.User, error) {
	ctx := context.Background()
	q := `
UPDATE users SET pin_hash = $2, pin_enabled = true, pin_used = false,
       pin_created_at = $3, pin_expires_at = $4
WHERE email = $1 AND active AND otp_enabled AND NOT (` + livePin + `)
RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, q, email, pinHash, createdAt, expiresAt))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrPinRejected
	}
	return u, err
}

func (r *UserRepo) FindWithLivePin(email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND `+livePin, email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLivePin
	}
	return u, err
}

func (r *UserRepo) ConsumePin(email string) error {
	tag, err := r.db.Exec(context.Background(),
		`UPDATE users SET pin_used = true, pin_enabled = false
		 WHERE email = $1 AND `+livePin, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoLivePin
	}
	return nil
}

func (r *UserRepo) SweepExpiredOrUsedPins() (int64, error) {
	tag, err := r.db.Exec(context.Background(), `
UPDATE users SET pin_hash = NULL, pin_expires_at = NULL, pin_created_at = NULL,
       pin_used = false, pin_enabled = false
WHERE pin_hash IS NOT NULL AND (pin_expires_at <= now() OR pin_used)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepo) UpdatePassword(email, newHash string) error {
	return r.exec(`UPDATE users SET password_hash = $2 WHERE email = $1`, email, newHash)
}

func (r *UserRepo) TouchLastAccess(email string) error {
	return r.exec(`UPDATE users SET last_access = now() WHERE email = $1`, email)
}

func (r *UserRepo) UpdateLocation(email, location string) error {
	return r.exec(`UPDATE users SET location = $2 WHERE email = $1`, email, location)
}

func (r *UserRepo) SetSessionActive(email string, active bool) error {
	return r.exec(`UPDATE users SET session_active = $2 WHERE email = $1`, email, active)
}

func (r *UserRepo) exec(q string, args ...any) error {
	tag, err := r.db.Exec(context.Background(), q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

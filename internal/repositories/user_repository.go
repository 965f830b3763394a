package repositories

import (
	"database/sql"
	"errors"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepository) GetByEmail(email string) (models.User, error) {
	if email == "" {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "email kosong"}
	}
	var u models.User
	err := r.db().QueryRow(`
		SELECT id, COALESCE(name,''), email, COALESCE(password_hash,''), COALESCE(role,'customer')
		FROM users WHERE email=? LIMIT 1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.InternalError{Err: err}
	}
	return u, nil
}

func (r UserRepository) Create(u models.User) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO users (name, email, password_hash, role, created_at)
		VALUES (?,?,?,?,NOW())`,
		u.Name, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return res.LastInsertId()
}

func (r UserRepository) EmailTaken(email string) (bool, error) {
	var count int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM users WHERE email=?`, email).Scan(&count); err != nil {
		return false, domain.InternalError{Err: err}
	}
	return count > 0, nil
}

package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	getUserByIDQuery = `
		SELECT user_id, email, password, name, role, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, email, password, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (user_id, email, password, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id string) (User, error) {
	return r.scanOne(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return r.scanOne(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if _, err := r.db.Exec(insertUserQuery, u.ID, u.Email, u.Password, u.Name, u.Role, u.CreatedAt, u.UpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (User, error) {
	var (
		u                    User
		createdAt, updatedAt sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = createdAt.String
	u.UpdatedAt = updatedAt.String
	return u, nil
}

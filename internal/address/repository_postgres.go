package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listAddressesQuery = `
		SELECT address_id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default, created_at, updated_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
	`
	getOwnedQuery = `
		SELECT address_id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default, created_at, updated_at
		FROM addresses
		WHERE address_id = $1 AND user_id = $2
	`
	insertAddressQuery = `
		INSERT INTO addresses (address_id, user_id, street, number, complement, neighborhood, city, state, zip_code, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	updateAddressQuery = `
		UPDATE addresses
		SET street = $1,
			number = $2,
			complement = $3,
			neighborhood = $4,
			city = $5,
			state = $6,
			zip_code = $7,
			is_default = $8,
			updated_at = $9
		WHERE address_id = $10
	`
	deleteAddressQuery  = `DELETE FROM addresses WHERE address_id = $1`
	resetDefaultsQuery  = `UPDATE addresses SET is_default = FALSE, updated_at = $2 WHERE user_id = $1 AND is_default`
	orderReferenceQuery = `SELECT EXISTS (SELECT 1 FROM orders WHERE address_id = $1)`
	firstOfUserQuery    = `SELECT address_id FROM addresses WHERE user_id = $1 ORDER BY created_at LIMIT 1`
	promoteDefaultQuery = `UPDATE addresses SET is_default = TRUE WHERE address_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID string) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetOwned(id, userID string) (Address, error) {
	a, err := scanAddress(r.db.QueryRow(getOwnedQuery, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	_, err := r.db.Exec(insertAddressQuery,
		a.ID, a.UserID, a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	res, err := r.db.Exec(updateAddressQuery,
		a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode, a.IsDefault, a.UpdatedAt, a.ID)
	if err != nil {
		return Address{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *PostgresRepository) Delete(id string) error {
	res, err := r.db.Exec(deleteAddressQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ResetDefaults(userID string, updatedAt string) error {
	_, err := r.db.Exec(resetDefaultsQuery, userID, updatedAt)
	return err
}

func (r *PostgresRepository) ReferencedByOrder(id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(orderReferenceQuery, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// PromoteAnyDefault makes the oldest remaining address of the user the
// default, if one exists.
func (r *PostgresRepository) PromoteAnyDefault(userID string) error {
	var id string
	err := r.db.QueryRow(firstOfUserQuery, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = r.db.Exec(promoteDefaultQuery, id)
	return err
}

func scanAddress(row interface{ Scan(dest ...any) error }) (Address, error) {
	var (
		a                                    Address
		complement, neighborhood             sql.NullString
		createdAt, updatedAt                 sql.NullString
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &complement, &neighborhood, &a.City, &a.State, &a.ZipCode, &a.IsDefault, &createdAt, &updatedAt); err != nil {
		return Address{}, err
	}
	a.Complement = complement.String
	a.Neighborhood = neighborhood.String
	a.CreatedAt = createdAt.String
	a.UpdatedAt = updatedAt.String
	return a, nil
}

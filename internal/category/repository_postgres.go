package category

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery = `SELECT category_id, name, image, ord FROM categories ORDER BY ord, name`
	insertCategoryQuery = `INSERT INTO categories (category_id, name, image, ord) VALUES ($1, $2, $3, $4)`
	deleteCategoryQuery = `DELETE FROM categories WHERE category_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Category, error) {
	rows, err := r.db.Query(listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var (
			c     Category
			image sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &image, &c.Order); err != nil {
			return nil, err
		}
		c.Image = image.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(c Category) (Category, error) {
	var image any
	if c.Image != "" {
		image = c.Image
	}
	if _, err := r.db.Exec(insertCategoryQuery, c.ID, c.Name, image, c.Order); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Delete(id string) error {
	_, err := r.db.Exec(deleteCategoryQuery, id)
	return err
}

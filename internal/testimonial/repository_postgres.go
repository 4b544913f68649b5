package testimonial

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listTestimonialsQuery  = `SELECT testimonial_id, author, quote, avatar, ord FROM testimonials ORDER BY ord, author`
	insertTestimonialQuery = `INSERT INTO testimonials (testimonial_id, author, quote, avatar, ord) VALUES ($1, $2, $3, $4, $5)`
	deleteTestimonialQuery = `DELETE FROM testimonials WHERE testimonial_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Testimonial, error) {
	rows, err := r.db.Query(listTestimonialsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Testimonial, 0)
	for rows.Next() {
		var (
			t      Testimonial
			avatar sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Author, &t.Quote, &avatar, &t.Order); err != nil {
			return nil, err
		}
		t.Avatar = avatar.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(t Testimonial) (Testimonial, error) {
	var avatar any
	if t.Avatar != "" {
		avatar = t.Avatar
	}
	if _, err := r.db.Exec(insertTestimonialQuery, t.ID, t.Author, t.Quote, avatar, t.Order); err != nil {
		return Testimonial{}, err
	}
	return t, nil
}

func (r *PostgresRepository) Delete(id string) error {
	_, err := r.db.Exec(deleteTestimonialQuery, id)
	return err
}

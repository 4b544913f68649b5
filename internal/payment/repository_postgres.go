package payment

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	paymentColumns = `payment_id, order_id, amount, method, status, intent_id, client_secret, receipt_url, error_message, created_at, updated_at`

	insertPaymentQuery = `
		INSERT INTO payments (payment_id, order_id, amount, method, status, intent_id, client_secret, receipt_url, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	getPaymentQuery         = `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`
	getPaymentByOrderQuery  = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	getPaymentByIntentQuery = `SELECT ` + paymentColumns + ` FROM payments WHERE intent_id = $1`
	updatePaymentQuery      = `
		UPDATE payments
		SET status = $1, intent_id = $2, client_secret = $3, receipt_url = $4, error_message = $5, updated_at = $6
		WHERE payment_id = $7
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(p Payment) (Payment, error) {
	_, err := r.db.Exec(insertPaymentQuery,
		p.ID, p.OrderID, p.Amount, string(p.Method), string(p.Status),
		nullable(p.IntentID), nullable(p.ClientSecret), nullable(p.ReceiptURL), nullable(p.ErrorMessage),
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return Payment{}, ErrOrderAlreadyPaid
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(id string) (Payment, error) {
	return r.scanOne(getPaymentQuery, id)
}

func (r *PostgresRepository) GetByOrderID(orderID string) (Payment, error) {
	return r.scanOne(getPaymentByOrderQuery, orderID)
}

func (r *PostgresRepository) GetByIntentID(intentID string) (Payment, error) {
	if intentID == "" {
		return Payment{}, ErrNotFound
	}
	return r.scanOne(getPaymentByIntentQuery, intentID)
}

func (r *PostgresRepository) Update(p Payment) (Payment, error) {
	res, err := r.db.Exec(updatePaymentQuery,
		string(p.Status), nullable(p.IntentID), nullable(p.ClientSecret),
		nullable(p.ReceiptURL), nullable(p.ErrorMessage), p.UpdatedAt, p.ID)
	if err != nil {
		return Payment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) scanOne(query string, arg any) (Payment, error) {
	var (
		p                                              Payment
		method, status                                 string
		intentID, clientSecret, receiptURL, errMessage sql.NullString
		createdAt, updatedAt                           sql.NullString
	)
	err := r.db.QueryRow(query, arg).Scan(
		&p.ID, &p.OrderID, &p.Amount, &method, &status,
		&intentID, &clientSecret, &receiptURL, &errMessage,
		&createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	p.Method = Method(method)
	p.Status = Status(status)
	p.IntentID = intentID.String
	p.ClientSecret = clientSecret.String
	p.ReceiptURL = receiptURL.String
	p.ErrorMessage = errMessage.String
	p.CreatedAt = createdAt.String
	p.UpdatedAt = updatedAt.String
	return p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

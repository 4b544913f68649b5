package shipping

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRulesRepository struct {
	db *sql.DB
}

const (
	listRulesQuery = `
		SELECT rule_id, name, description, min_order_value, regions, product_categories, service_types, active, created_at, updated_at
		FROM free_shipping_rules
		ORDER BY created_at DESC
	`
	// The region/category conditions are an OR on purpose: any non-empty
	// matching dimension is sufficient.
	listApplicableQuery = `
		SELECT rule_id, name, description, min_order_value, regions, product_categories, service_types, active, created_at, updated_at
		FROM free_shipping_rules
		WHERE active
		  AND min_order_value <= $1
		  AND ($2 = ANY(regions) OR cardinality(regions) = 0 OR product_categories && $3::text[])
		ORDER BY created_at
	`
	getRuleQuery = `
		SELECT rule_id, name, description, min_order_value, regions, product_categories, service_types, active, created_at, updated_at
		FROM free_shipping_rules
		WHERE rule_id = $1
	`
	insertRuleQuery = `
		INSERT INTO free_shipping_rules (rule_id, name, description, min_order_value, regions, product_categories, service_types, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateRuleQuery = `
		UPDATE free_shipping_rules
		SET name = $1,
			description = $2,
			min_order_value = $3,
			regions = $4,
			product_categories = $5,
			service_types = $6,
			active = $7,
			updated_at = $8
		WHERE rule_id = $9
	`
	deleteRuleQuery = `DELETE FROM free_shipping_rules WHERE rule_id = $1`
)

func NewPostgresRulesRepository(db *sql.DB) *PostgresRulesRepository {
	return &PostgresRulesRepository{db: db}
}

func (r *PostgresRulesRepository) List() ([]FreeShippingRule, error) {
	return r.queryMany(listRulesQuery)
}

func (r *PostgresRulesRepository) ListApplicable(orderValue decimal.Decimal, state string, categories []string) ([]FreeShippingRule, error) {
	if categories == nil {
		categories = []string{}
	}
	return r.queryMany(listApplicableQuery, orderValue, state, pq.Array(categories))
}

func (r *PostgresRulesRepository) GetByID(id string) (FreeShippingRule, error) {
	rule, err := scanRule(r.db.QueryRow(getRuleQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return FreeShippingRule{}, ErrRuleNotFound
		}
		return FreeShippingRule{}, err
	}
	return rule, nil
}

func (r *PostgresRulesRepository) Create(rule FreeShippingRule) (FreeShippingRule, error) {
	_, err := r.db.Exec(insertRuleQuery,
		rule.ID, rule.Name, rule.Description, rule.MinOrderValue,
		pq.Array(rule.Regions), pq.Array(rule.ProductCategories), pq.Array(serviceTypeStrings(rule.ServiceTypes)),
		rule.Active, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return FreeShippingRule{}, err
	}
	return rule, nil
}

func (r *PostgresRulesRepository) Update(rule FreeShippingRule) (FreeShippingRule, error) {
	res, err := r.db.Exec(updateRuleQuery,
		rule.Name, rule.Description, rule.MinOrderValue,
		pq.Array(rule.Regions), pq.Array(rule.ProductCategories), pq.Array(serviceTypeStrings(rule.ServiceTypes)),
		rule.Active, rule.UpdatedAt, rule.ID)
	if err != nil {
		return FreeShippingRule{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return FreeShippingRule{}, ErrRuleNotFound
	}
	return rule, nil
}

func (r *PostgresRulesRepository) Delete(id string) error {
	res, err := r.db.Exec(deleteRuleQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *PostgresRulesRepository) queryMany(query string, args ...any) ([]FreeShippingRule, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FreeShippingRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanRule(row interface{ Scan(dest ...any) error }) (FreeShippingRule, error) {
	var (
		rule                          FreeShippingRule
		description                   sql.NullString
		regions, categories, services pq.StringArray
		createdAt, updatedAt          sql.NullString
	)
	if err := row.Scan(&rule.ID, &rule.Name, &description, &rule.MinOrderValue, &regions, &categories, &services, &rule.Active, &createdAt, &updatedAt); err != nil {
		return FreeShippingRule{}, err
	}
	rule.Description = description.String
	rule.Regions = regions
	rule.ProductCategories = categories
	rule.ServiceTypes = make([]ServiceType, 0, len(services))
	for _, s := range services {
		rule.ServiceTypes = append(rule.ServiceTypes, ServiceType(s))
	}
	rule.CreatedAt = createdAt.String
	rule.UpdatedAt = updatedAt.String
	return rule, nil
}

func serviceTypeStrings(types []ServiceType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

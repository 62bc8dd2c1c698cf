package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const orderColumns = `id, user_email, status, ship_name, ship_phone, ship_city, ship_details,
	delivery_method_id, payment_intent_id, client_secret, failure_reason, items, total_price,
	created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, order *Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, user_email, status, ship_name, ship_phone, ship_city, ship_details,
	            delivery_method_id, payment_intent_id, client_secret, failure_reason, items, total_price,
	            created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.UserEmail,
		order.Status,
		order.ShippingAddress.Name,
		order.ShippingAddress.Phone,
		order.ShippingAddress.City,
		order.ShippingAddress.Details,
		order.DeliveryMethodID,
		order.PaymentIntentID,
		order.ClientSecret,
		order.FailureReason,
		itemsJSON,
		order.TotalPrice)
	if insertErr != nil {
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query)
}

func (r *PostgresRepository) ListByEmail(ctx context.Context, email string) ([]*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_email = $1 ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query, email)
}

func (r *PostgresRepository) ListWithDeliveryAssigned(ctx context.Context) ([]*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE delivery_method_id IS NOT NULL ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query)
}

func (r *PostgresRepository) ListAwaitingDelivery(ctx context.Context) ([]*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE status = $1 AND delivery_method_id IS NULL ORDER BY created_at DESC`, orderColumns)
	return r.list(ctx, query, StatusPaid)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectFrom, to Status, reason *string) error {
	query := `UPDATE orders
	          SET status = $1, failure_reason = COALESCE($2, failure_reason), updated_at = NOW()
	          WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, to, reason, id, expectFrom)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status rows: %w", err)
	}
	if rows == 0 {
		if _, errGet := r.GetByID(ctx, id); errGet != nil {
			return errGet
		}
		return ErrIllegalTransition
	}
	return nil
}

func (r *PostgresRepository) SetPaymentRefs(ctx context.Context, id uuid.UUID, paymentIntentID *string, clientSecret string) error {
	query := `UPDATE orders
	          SET payment_intent_id = $1, client_secret = $2, updated_at = NOW()
	          WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, paymentIntentID, clientSecret, id)
	if err != nil {
		return fmt.Errorf("set payment refs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set payment refs rows: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) AssignDelivery(ctx context.Context, id uuid.UUID, deliveryMethodID int64) error {
	query := `UPDATE orders
	          SET delivery_method_id = $1, status = $2, updated_at = NOW()
	          WHERE id = $3 AND status = $4 AND delivery_method_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, deliveryMethodID, StatusDelivered, id, StatusPaid)
	if err != nil {
		return fmt.Errorf("assign delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign delivery rows: %w", err)
	}
	if rows == 0 {
		if _, errGet := r.GetByID(ctx, id); errGet != nil {
			return errGet
		}
		return ErrIllegalTransition
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		order, errScan := scanOrder(rows)
		if errScan != nil {
			return nil, fmt.Errorf("scan order row: %w", errScan)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var order Order
	var itemsJSON []byte
	err := row.Scan(
		&order.ID,
		&order.UserEmail,
		&order.Status,
		&order.ShippingAddress.Name,
		&order.ShippingAddress.Phone,
		&order.ShippingAddress.City,
		&order.ShippingAddress.Details,
		&order.DeliveryMethodID,
		&order.PaymentIntentID,
		&order.ClientSecret,
		&order.FailureReason,
		&itemsJSON,
		&order.TotalPrice,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	return &order, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

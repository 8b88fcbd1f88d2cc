package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

const orderColumns = `id, customer_name, customer_email, customer_phone, shipping_address, notes, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*converter.OrderModel, error) {
	var m converter.OrderModel
	err := row.Scan(
		&m.ID, &m.CustomerName, &m.CustomerEmail, &m.CustomerPhone,
		&m.ShippingAddress, &m.Notes, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// Create сохраняет заголовок заказа. Вызывается только внутри транзакции оформления.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(order)
	query := `
		INSERT INTO orders (customer_name, customer_email, customer_phone, shipping_address, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	res, err := scanOrder(tx.QueryRow(ctx, query,
		model.CustomerName, model.CustomerEmail, model.CustomerPhone, model.ShippingAddress, model.Notes, model.Status,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(res), nil
}

// AddItems вставляет позиции заказа одним COPY.
func (o *OrderRepo) AddItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{orderID, item.ProductID, item.Quantity, converter.DecimalToCents(item.Price)})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "price_cents"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// GetByID возвращает заказ вместе с позициями и названиями товаров.
func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := tr.QuerierFromCtx(ctx, o.pool)

	model, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price_cents
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id
	`

	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	order := o.conv.ToEntity(model)
	for rows.Next() {
		var item converter.OrderItemModel
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceCents); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		order.Items = append(order.Items, o.conv.ItemToEntity(&item))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

func orderWhere(f usecase.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Status != "" {
		args = append(args, f.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			"(customer_name ILIKE $%[1]d OR customer_email ILIKE $%[1]d OR customer_phone ILIKE $%[1]d)", len(args),
		))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (o *OrderRepo) Count(ctx context.Context, f usecase.OrderFilter) (int, error) {
	q := tr.QuerierFromCtx(ctx, o.pool)
	where, args := orderWhere(f)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// List возвращает страницу заказов без позиций, новые сверху.
func (o *OrderRepo) List(ctx context.Context, f usecase.OrderFilter) ([]*domain.Order, error) {
	q := tr.QuerierFromCtx(ctx, o.pool)
	where, args := orderWhere(f)

	args = append(args, f.Limit, (max(f.Page, 1)-1)*f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]*domain.Order, 0)
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, o.conv.ToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// UpdateStatus меняет статус заказа и возвращает предыдущий.
// Строка блокируется, чтобы прочитать старый статус и записать новый атомарно.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.OrderStatus, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		WITH prev AS (
			SELECT id, status FROM orders WHERE id = $1 FOR UPDATE
		)
		UPDATE orders o
		SET status = $2, updated_at = NOW()
		FROM prev
		WHERE o.id = prev.id
		RETURNING prev.status
	`

	var old string
	if err := tx.QueryRow(ctx, query, id, status.String()).Scan(&old); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return domain.OrderStatus(old), nil
}

// UpdateStatuses меняет статус нескольких заказов и возвращает прежние статусы найденных.
func (o *OrderRepo) UpdateStatuses(ctx context.Context, ids []int64, status domain.OrderStatus) (map[int64]domain.OrderStatus, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		WITH prev AS (
			SELECT id, status FROM orders WHERE id = ANY($1) ORDER BY id FOR UPDATE
		)
		UPDATE orders o
		SET status = $2, updated_at = NOW()
		FROM prev
		WHERE o.id = prev.id
		RETURNING o.id, prev.status
	`

	rows, err := tx.Query(ctx, query, ids, status.String())
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[int64]domain.OrderStatus, len(ids))
	for rows.Next() {
		var (
			id  int64
			old string
		)
		if err := rows.Scan(&id, &old); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[id] = domain.OrderStatus(old)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

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

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productColumns = `id, name, category_id, description, price_cents, stock, is_active, image_key, created_at, updated_at`

var productOrder = map[usecase.ProductSort]string{
	usecase.SortNameAsc:       "name ASC, id ASC",
	usecase.SortNameDesc:      "name DESC, id DESC",
	usecase.SortPriceAsc:      "price_cents ASC, id ASC",
	usecase.SortPriceDesc:     "price_cents DESC, id DESC",
	usecase.SortCreatedAtAsc:  "created_at ASC, id ASC",
	usecase.SortCreatedAtDesc: "created_at DESC, id DESC",
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var m converter.ProductModel
	err := row.Scan(
		&m.ID, &m.Name, &m.CategoryID, &m.Description, &m.PriceCents,
		&m.Stock, &m.IsActive, &m.ImageKey, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

func (p *ProductRepo) collect(rows pgx.Rows) ([]*domain.Product, error) {
	defer rows.Close()

	models := make([]*converter.ProductModel, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return p.conv.ToArrEntity(models), nil
}

// mapProductWriteErr переводит ошибки ограничений PostgreSQL в доменные ошибки.
func mapProductWriteErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return e.ErrProductNotFound
	case postgresDuplicate(err):
		return e.ErrProductExists
	case postgresForeignKey(err):
		return e.ErrCategoryNotFound
	case postgresCheck(err):
		return e.ErrInvalidStock
	}
	return err
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	model := p.conv.ToModel(product)

	query := `
		INSERT INTO products (name, category_id, description, price_cents, stock, is_active, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns

	res, err := scanProduct(q.QueryRow(ctx, query,
		model.Name, model.CategoryID, model.Description, model.PriceCents, model.Stock, model.IsActive, model.ImageKey,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapProductWriteErr(err))
	}

	return p.conv.ToEntity(res), nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	model := p.conv.ToModel(product)

	query := `
		UPDATE products
		SET name = $2, category_id = $3, description = $4, price_cents = $5,
		    stock = $6, is_active = $7, image_key = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	res, err := scanProduct(q.QueryRow(ctx, query,
		model.ID, model.Name, model.CategoryID, model.Description, model.PriceCents, model.Stock, model.IsActive, model.ImageKey,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapProductWriteErr(err))
	}

	return p.conv.ToEntity(res), nil
}

// GetByID возвращает товар независимо от его активности.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	model, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// GetByIDs возвращает найденные товары, отсутствующие ID пропускаются.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.collect(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// productWhere строит условие WHERE для фильтра каталога.
func productWhere(f usecase.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.OnlyActive {
		conds = append(conds, "is_active")
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (p *ProductRepo) Count(ctx context.Context, f usecase.ProductFilter) (int, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	where, args := productWhere(f)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

func (p *ProductRepo) List(ctx context.Context, f usecase.ProductFilter) ([]*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	where, args := productWhere(f)

	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[usecase.SortCreatedAtDesc]
	}

	args = append(args, f.Limit, (max(f.Page, 1)-1)*f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, order, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.collect(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// Featured возвращает новейшие активные товары в наличии, исключая excludeIDs.
// withImage оставляет только товары с изображением.
func (p *ProductRepo) Featured(ctx context.Context, withImage bool, excludeIDs []int64, limit int) ([]*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		  AND stock > 0
		  AND NOT (id = ANY($1))
		  AND (NOT $2 OR COALESCE(image_key, '') <> '')
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := q.Query(ctx, query, excludeIDs, withImage, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.collect(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// SetActive включает или выключает товары и возвращает число изменённых записей.
func (p *ProductRepo) SetActive(ctx context.Context, ids []int64, active bool) (int64, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	tag, err := q.Exec(ctx, `UPDATE products SET is_active = $2, updated_at = NOW() WHERE id = ANY($1)`, ids, active)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected(), nil
}

// Delete удаляет товары и возвращает удалённые записи.
// Товар, на который ссылаются позиции заказов, удалить нельзя.
func (p *ProductRepo) Delete(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, `DELETE FROM products WHERE id = ANY($1) RETURNING `+productColumns, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := p.collect(rows)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductInUse)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// DecrementStock атомарно списывает quantity единиц, если остатка хватает.
// false означает, что списание не выполнено и строка не изменилась.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, quantity int) (bool, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2 AND is_active
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() == 1, nil
}

// CreateIfAbsent создаёт товар, если товара с таким именем ещё нет.
func (p *ProductRepo) CreateIfAbsent(ctx context.Context, product *domain.Product) (bool, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)
	model := p.conv.ToModel(product)

	query := `
		INSERT INTO products (name, category_id, description, price_cents, stock, is_active, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING`

	tag, err := q.Exec(ctx, query,
		model.Name, model.CategoryID, model.Description, model.PriceCents, model.Stock, model.IsActive, model.ImageKey,
	)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), mapProductWriteErr(err))
	}

	return tag.RowsAffected() == 1, nil
}

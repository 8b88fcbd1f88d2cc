package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

const categoryColumns = `id, name, description, created_at, updated_at`

func scanCategory(row pgx.Row) (*converter.CategoryModel, error) {
	var model converter.CategoryModel
	err := row.Scan(&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	return &model, err
}

// Create создаёт категорию. Дубликат имени возвращает e.ErrCategoryExists.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING ` + categoryColumns

	model, err := scanCategory(q.QueryRow(ctx, query, category.Name, category.Description))
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		UPDATE categories
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	model, err := scanCategory(q.QueryRow(ctx, query, category.ID, category.Name, category.Description))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		case postgresDuplicate(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// Delete удаляет категорию. Категорию, на которую ссылаются товары, удалить нельзя.
func (c *CategoryRepo) Delete(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, c.pool)

	tag, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotEmpty)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	model, err := scanCategory(q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// List возвращает категории по алфавиту вместе с числом активных товаров. limit <= 0 снимает ограничение.
func (c *CategoryRepo) List(ctx context.Context, limit int) ([]usecase.CategoryWithCount, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		SELECT c.id, c.name, c.description, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.is_active) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
		LIMIT NULLIF($1, 0)
	`

	rows, err := q.Query(ctx, query, max(limit, 0))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]usecase.CategoryWithCount, 0)
	for rows.Next() {
		var (
			model converter.CategoryModel
			count int
		)
		if err := rows.Scan(&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &count); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, usecase.CategoryWithCount{Category: c.conv.ToEntity(&model), ProductCount: count})
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// GetOrCreate возвращает категорию с таким именем, создавая её при отсутствии.
// created сообщает, была ли категория создана этим вызовом.
func (c *CategoryRepo) GetOrCreate(ctx context.Context, category *domain.Category) (*domain.Category, bool, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		WITH ins AS (
			INSERT INTO categories (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING ` + categoryColumns + `
		)
		SELECT ` + categoryColumns + `, TRUE FROM ins
		UNION ALL
		SELECT ` + categoryColumns + `, FALSE FROM categories
		WHERE name = $1 AND NOT EXISTS (SELECT 1 FROM ins)`

	var (
		model   converter.CategoryModel
		created bool
	)
	err := q.QueryRow(ctx, query, category.Name, category.Description).Scan(
		&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), created, nil
}

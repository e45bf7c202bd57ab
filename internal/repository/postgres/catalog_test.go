package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
	"github.com/jkstudio99/DropStockAPI/pkg/pagination"
)

func newCategoryTestFixture(t *testing.T) (*CategoryRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewCategoryRepository(mock)
	return repo, mock
}

func sampleCategory() *domain.Category {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Category{
		ID:        "c-1",
		Name:      "Electronics",
		Status:    domain.CategoryStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCategoryRepository_Create(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	c := sampleCategory()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(c.ID, c.Name, c.Status, c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), c)
	require.NoError(t, err)
}

func TestCategoryRepository_Create_DuplicateName(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	c := sampleCategory()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(c.ID, c.Name, c.Status, c.CreatedAt, c.UpdatedAt).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM categories WHERE id =").
		WithArgs("c-missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}))

	_, err := repo.GetByID(context.Background(), "c-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCategoryRepository_List(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	c := sampleCategory()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("%Elec%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM categories").
		WithArgs("%Elec%", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}).
			AddRow(c.ID, c.Name, c.Status, c.CreatedAt, c.UpdatedAt))

	categories, total, err := repo.List(context.Background(), pagination.DefaultParams(), "Elec")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, categories, 1)
	assert.Equal(t, "Electronics", categories[0].Name)
}

func TestCategoryRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newCategoryTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM categories WHERE id =").
		WithArgs("c-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "c-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Product Repository ---

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:            "p-1",
		Name:          "Mechanical Keyboard",
		Description:   "87 keys",
		Price:         129900,
		StockQuantity: 12,
		CategoryID:    "c-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func productColumns() []string {
	return []string{"id", "name", "description", "price", "stock_quantity", "category_id", "created_at", "updated_at"}
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	require.NoError(t, err)
}

func TestProductRepository_GetByID(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	mock.ExpectQuery("SELECT .+ FROM products WHERE id =").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(productColumns()).
			AddRow(p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, p.CreatedAt, p.UpdatedAt))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Price, got.Price)
}

func TestProductRepository_List_SubstringSearch(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("%Keyboard%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("%Keyboard%", 20, 0).
		WillReturnRows(pgxmock.NewRows(productColumns()).
			AddRow(p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, p.CreatedAt, p.UpdatedAt))

	products, total, err := repo.List(context.Background(), pagination.DefaultParams(), "Keyboard")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	p := sampleProduct()
	p.ID = "p-missing"
	mock.ExpectExec("UPDATE products").
		WithArgs(p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, pgxmock.AnyArg(), p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM products WHERE id =").
		WithArgs("p-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "p-1")
	require.NoError(t, err)
}

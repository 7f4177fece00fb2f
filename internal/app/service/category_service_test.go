package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"

	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*model.Category{}}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == category.Name {
			return common.ErrConflict
		}
	}
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeCategoryRepo) List(ctx context.Context, limit, offset int, search string) ([]model.Category, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []model.Category{}
	for _, c := range f.categories {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			matched = append(matched, *c)
		}
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func TestCategoryCreateSlug(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo())
	ctx := context.Background()

	category, err := svc.Create(ctx, CategoryRequest{Name: "Tech & Gadgets", Description: "reviews"})
	require.NoError(t, err)
	require.Equal(t, "Tech & Gadgets", category.Name)
	require.Equal(t, "tech-gadgets", category.Slug)

	_, err = svc.Create(ctx, CategoryRequest{Name: "Tech & Gadgets"})
	require.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.Create(ctx, CategoryRequest{Name: "   "})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestCategoryUpdateReslugs(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo())
	ctx := context.Background()

	category, err := svc.Create(ctx, CategoryRequest{Name: "Old Name"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, category.ID, CategoryRequest{Name: "New Name"})
	require.NoError(t, err)
	require.Equal(t, "new-name", updated.Slug)

	_, err = svc.Update(ctx, "missing-id", CategoryRequest{Name: "Whatever"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoryUpdateReplacesDescription(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo())
	ctx := context.Background()

	category, err := svc.Create(ctx, CategoryRequest{Name: "Tech", Description: "gadget reviews"})
	require.NoError(t, err)

	// Update is a full replacement: an empty description clears the old one.
	updated, err := svc.Update(ctx, category.ID, CategoryRequest{Name: "Tech"})
	require.NoError(t, err)
	require.Empty(t, updated.Description)

	updated, err = svc.Update(ctx, category.ID, CategoryRequest{Name: "Tech", Description: "back again"})
	require.NoError(t, err)
	require.Equal(t, "back again", updated.Description)
}

func TestCategoryListClampsPagination(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	for _, name := range []string{"Go", "Rust", "Zig"} {
		_, err := svc.Create(ctx, CategoryRequest{Name: name})
		require.NoError(t, err)
	}

	// Nonsense page/limit values fall back to sane defaults.
	result, err := svc.List(ctx, -3, 0, "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 3, result.Total)
	require.Equal(t, 1, result.TotalPages)

	result, err = svc.List(ctx, 1, 2, "")
	require.NoError(t, err)
	require.Len(t, result.Categories, 2)
	require.Equal(t, 2, result.TotalPages)

	result, err = svc.List(ctx, 1, 10, "go")
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
}

func TestClampPage(t *testing.T) {
	page, limit := clampPage(0, 0)
	require.Equal(t, 1, page)
	require.Equal(t, defaultPageLimit, limit)

	_, limit = clampPage(1, 5000)
	require.Equal(t, maxPageLimit, limit)
}

package company

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompanyRepo struct {
	repositories.CompanyRepository
	create    func(ctx context.Context, c *models.Company) error
	getByID   func(ctx context.Context, id uuid.UUID) (*models.Company, error)
	getBySlug func(ctx context.Context, slug string) (*models.Company, error)
	list      func(ctx context.Context, limit, offset int) ([]*models.Company, error)
	update    func(ctx context.Context, c *models.Company) error
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeCompanyRepo) Create(ctx context.Context, c *models.Company) error { return f.create(ctx, c) }
func (f *fakeCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return f.getByID(ctx, id)
}
func (f *fakeCompanyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return f.getBySlug(ctx, slug)
}
func (f *fakeCompanyRepo) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	return f.list(ctx, limit, offset)
}
func (f *fakeCompanyRepo) Update(ctx context.Context, c *models.Company) error { return f.update(ctx, c) }
func (f *fakeCompanyRepo) Delete(ctx context.Context, id uuid.UUID) error      { return f.delete(ctx, id) }

type fakeUserRepo struct {
	repositories.UserRepository
	deleteByCompany func(ctx context.Context, companyID uuid.UUID) (int64, error)
}

func (f *fakeUserRepo) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return f.deleteByCompany(ctx, companyID)
}

type fakeNotebookRepo struct {
	repositories.NotebookRepository
	deleteByCompany func(ctx context.Context, companyID uuid.UUID) (int64, error)
}

func (f *fakeNotebookRepo) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return f.deleteByCompany(ctx, companyID)
}

type fakeAssignmentRepo struct {
	repositories.AssignmentRepository
	deleteByCompany func(ctx context.Context, companyID uuid.UUID) (int64, error)
}

func (f *fakeAssignmentRepo) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return f.deleteByCompany(ctx, companyID)
}

type fakeTokenUsageRepo struct {
	repositories.TokenUsageRepository
	deleteByCompany func(ctx context.Context, companyID uuid.UUID) (int64, error)
}

func (f *fakeTokenUsageRepo) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return f.deleteByCompany(ctx, companyID)
}

// fakeTxManager runs the function directly; commit/rollback behavior is
// simulated through the returned error.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) Begin(_ context.Context) (repositories.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	f.calls++
	return fn(ctx, nil)
}

func testService(repos *repositories.Repositories, tx repositories.TransactionManager) *Service {
	return NewService(repos, tx, observability.NewNopLogger())
}

func TestCreate(t *testing.T) {
	t.Run("creates a company with a valid slug", func(t *testing.T) {
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{
				getBySlug: func(_ context.Context, _ string) (*models.Company, error) {
					return nil, services.ErrCompanyNotFound
				},
				create: func(_ context.Context, _ *models.Company) error { return nil },
			},
		}

		c, err := testService(repos, &fakeTxManager{}).Create(context.Background(), "Acme Corp", "acme-corp")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, "acme-corp", c.Slug)
		assert.True(t, c.Active)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := testService(&repositories.Repositories{}, &fakeTxManager{}).Create(context.Background(), "", "acme")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("rejects a malformed slug", func(t *testing.T) {
		for _, slug := range []string{"Acme", "acme_corp", "-acme", "acme-", ""} {
			_, err := testService(&repositories.Repositories{}, &fakeTxManager{}).Create(context.Background(), "Acme", slug)
			assert.ErrorIs(t, err, services.ErrInvalidSlug, "slug %q", slug)
		}
	})

	t.Run("rejects a duplicate slug", func(t *testing.T) {
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{
				getBySlug: func(_ context.Context, slug string) (*models.Company, error) {
					return &models.Company{Slug: slug}, nil
				},
			},
		}

		_, err := testService(repos, &fakeTxManager{}).Create(context.Background(), "Acme", "acme")
		assert.ErrorIs(t, err, services.ErrDuplicateSlug)
	})
}

func TestUpdate(t *testing.T) {
	id := uuid.New()
	repos := &repositories.Repositories{
		Companies: &fakeCompanyRepo{
			getByID: func(_ context.Context, id uuid.UUID) (*models.Company, error) {
				return &models.Company{ID: id, Name: "Old", Active: true}, nil
			},
			update: func(_ context.Context, _ *models.Company) error { return nil },
		},
	}

	t.Run("updates name and active flag", func(t *testing.T) {
		c, err := testService(repos, &fakeTxManager{}).Update(context.Background(), id, "New", false)
		require.NoError(t, err)
		assert.Equal(t, "New", c.Name)
		assert.False(t, c.Active)
	})

	t.Run("keeps the old name when omitted", func(t *testing.T) {
		c, err := testService(repos, &fakeTxManager{}).Update(context.Background(), id, "", true)
		require.NoError(t, err)
		assert.Equal(t, "Old", c.Name)
	})
}

func TestDelete(t *testing.T) {
	id := uuid.New()

	newRepos := func(order *[]string, usageErr error) *repositories.Repositories {
		return &repositories.Repositories{
			Companies: &fakeCompanyRepo{
				getByID: func(_ context.Context, id uuid.UUID) (*models.Company, error) {
					return &models.Company{ID: id}, nil
				},
				delete: func(_ context.Context, _ uuid.UUID) error {
					*order = append(*order, "company")
					return nil
				},
			},
			Users: &fakeUserRepo{deleteByCompany: func(_ context.Context, _ uuid.UUID) (int64, error) {
				*order = append(*order, "users")
				return 3, nil
			}},
			Notebooks: &fakeNotebookRepo{deleteByCompany: func(_ context.Context, _ uuid.UUID) (int64, error) {
				*order = append(*order, "notebooks")
				return 2, nil
			}},
			Assignments: &fakeAssignmentRepo{deleteByCompany: func(_ context.Context, _ uuid.UUID) (int64, error) {
				*order = append(*order, "assignments")
				return 5, nil
			}},
			TokenUsage: &fakeTokenUsageRepo{deleteByCompany: func(_ context.Context, _ uuid.UUID) (int64, error) {
				*order = append(*order, "usage")
				return 10, usageErr
			}},
		}
	}

	t.Run("requires confirmation", func(t *testing.T) {
		err := testService(&repositories.Repositories{}, &fakeTxManager{}).Delete(context.Background(), id, false)
		assert.ErrorIs(t, err, services.ErrConfirmMissing)
	})

	t.Run("cascades dependents before the company row", func(t *testing.T) {
		var order []string
		tx := &fakeTxManager{}

		require.NoError(t, testService(newRepos(&order, nil), tx).Delete(context.Background(), id, true))
		assert.Equal(t, []string{"assignments", "notebooks", "users", "company", "usage"}, order)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("usage cleanup failure does not fail the deletion", func(t *testing.T) {
		var order []string

		err := testService(newRepos(&order, errors.New("usage table gone")), &fakeTxManager{}).Delete(context.Background(), id, true)
		assert.NoError(t, err)
		assert.Contains(t, order, "company")
	})

	t.Run("transaction failure surfaces as internal error", func(t *testing.T) {
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Company, error) {
				return &models.Company{ID: id}, nil
			}},
			Assignments: &fakeAssignmentRepo{deleteByCompany: func(_ context.Context, _ uuid.UUID) (int64, error) {
				return 0, errors.New("deadlock")
			}},
		}

		err := testService(repos, &fakeTxManager{}).Delete(context.Background(), id, true)
		require.Error(t, err)
		assert.True(t, services.IsInternalError(err))
	})

	t.Run("unknown company fails before any deletion", func(t *testing.T) {
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{getByID: func(_ context.Context, _ uuid.UUID) (*models.Company, error) {
				return nil, services.ErrCompanyNotFound
			}},
		}
		tx := &fakeTxManager{}

		err := testService(repos, tx).Delete(context.Background(), id, true)
		assert.ErrorIs(t, err, services.ErrCompanyNotFound)
		assert.Equal(t, 0, tx.calls)
	})
}

func TestList(t *testing.T) {
	var gotLimit int
	repos := &repositories.Repositories{
		Companies: &fakeCompanyRepo{list: func(_ context.Context, limit, _ int) ([]*models.Company, error) {
			gotLimit = limit
			return nil, nil
		}},
	}

	_, err := testService(repos, &fakeTxManager{}).List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = testService(repos, &fakeTxManager{}).List(context.Background(), 500, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
}

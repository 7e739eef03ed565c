package notebook

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

// Function-backed fakes: each test overrides only what it touches.

type fakeCompanyRepo struct {
	repositories.CompanyRepository
	getByID func(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return f.getByID(ctx, id)
}

type fakeNotebookRepo struct {
	repositories.NotebookRepository
	create        func(ctx context.Context, n *models.Notebook) error
	getByID       func(ctx context.Context, id uuid.UUID) (*models.Notebook, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Notebook, error)
	update        func(ctx context.Context, n *models.Notebook) error
	delete        func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeNotebookRepo) Create(ctx context.Context, n *models.Notebook) error {
	return f.create(ctx, n)
}
func (f *fakeNotebookRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notebook, error) {
	return f.getByID(ctx, id)
}
func (f *fakeNotebookRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Notebook, error) {
	return f.listByCompany(ctx, companyID, limit, offset)
}
func (f *fakeNotebookRepo) Update(ctx context.Context, n *models.Notebook) error {
	return f.update(ctx, n)
}
func (f *fakeNotebookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.delete(ctx, id)
}

type fakeUserRepo struct {
	repositories.UserRepository
	getByID func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.getByID(ctx, id)
}

type fakeAssignmentRepo struct {
	repositories.AssignmentRepository
	create           func(ctx context.Context, a *models.ModuleAssignment) error
	getByID          func(ctx context.Context, id uuid.UUID) (*models.ModuleAssignment, error)
	listByUser       func(ctx context.Context, userID uuid.UUID) ([]*models.ModuleAssignment, error)
	setEnabled       func(ctx context.Context, id uuid.UUID, enabled bool) error
	deleteByNotebook func(ctx context.Context, notebookID uuid.UUID) (int64, error)
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a *models.ModuleAssignment) error {
	return f.create(ctx, a)
}
func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ModuleAssignment, error) {
	return f.getByID(ctx, id)
}
func (f *fakeAssignmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ModuleAssignment, error) {
	return f.listByUser(ctx, userID)
}
func (f *fakeAssignmentRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return f.setEnabled(ctx, id, enabled)
}
func (f *fakeAssignmentRepo) DeleteByNotebook(ctx context.Context, notebookID uuid.UUID) (int64, error) {
	return f.deleteByNotebook(ctx, notebookID)
}

func testService(repos *repositories.Repositories) *Service {
	return NewService(repos, observability.NewNopLogger())
}

func TestCreate(t *testing.T) {
	companyID := uuid.New()

	t.Run("creates a notebook", func(t *testing.T) {
		var created *models.Notebook
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Company, error) {
				return &models.Company{ID: id}, nil
			}},
			Notebooks: &fakeNotebookRepo{create: func(_ context.Context, n *models.Notebook) error {
				created = n
				return nil
			}},
		}

		nb, err := testService(repos).Create(context.Background(), companyID, "Intro to Go", "basics")
		require.NoError(t, err)
		assert.Equal(t, "Intro to Go", nb.Title)
		assert.Equal(t, companyID, nb.CompanyID)
		assert.False(t, nb.Locked)
		assert.Same(t, nb, created)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := testService(&repositories.Repositories{}).Create(context.Background(), companyID, "", "")
		assert.ErrorIs(t, err, services.ErrEmptyTitle)
	})

	t.Run("fails when company does not exist", func(t *testing.T) {
		repos := &repositories.Repositories{
			Companies: &fakeCompanyRepo{getByID: func(_ context.Context, _ uuid.UUID) (*models.Company, error) {
				return nil, services.ErrCompanyNotFound
			}},
		}

		_, err := testService(repos).Create(context.Background(), companyID, "Title", "")
		assert.ErrorIs(t, err, services.ErrCompanyNotFound)
	})
}

func TestGet(t *testing.T) {
	companyID := uuid.New()
	notebookID := uuid.New()

	t.Run("returns a notebook in scope", func(t *testing.T) {
		repos := &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
				return &models.Notebook{ID: id, CompanyID: companyID}, nil
			}},
		}

		nb, err := testService(repos).Get(context.Background(), companyID, notebookID)
		require.NoError(t, err)
		assert.Equal(t, notebookID, nb.ID)
	})

	t.Run("refuses cross-tenant access", func(t *testing.T) {
		repos := &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
				return &models.Notebook{ID: id, CompanyID: uuid.New()}, nil
			}},
		}

		_, err := testService(repos).Get(context.Background(), companyID, notebookID)
		assert.ErrorIs(t, err, services.ErrCompanyMismatch)
	})
}

func TestUpdate(t *testing.T) {
	companyID := uuid.New()
	notebookID := uuid.New()

	newRepos := func(locked bool, updateErr error) *repositories.Repositories {
		return &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{
				getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
					return &models.Notebook{ID: id, CompanyID: companyID, Title: "Old", Locked: locked}, nil
				},
				update: func(_ context.Context, _ *models.Notebook) error { return updateErr },
			},
		}
	}

	t.Run("updates title and description", func(t *testing.T) {
		nb, err := testService(newRepos(false, nil)).Update(context.Background(), companyID, notebookID, "New", "desc", false)
		require.NoError(t, err)
		assert.Equal(t, "New", nb.Title)
		assert.Equal(t, "desc", nb.Description)
	})

	t.Run("rejects edits to a locked notebook", func(t *testing.T) {
		_, err := testService(newRepos(true, nil)).Update(context.Background(), companyID, notebookID, "New", "", true)
		assert.ErrorIs(t, err, services.ErrNotebookLocked)
	})

	t.Run("allows unlocking a locked notebook", func(t *testing.T) {
		nb, err := testService(newRepos(true, nil)).Update(context.Background(), companyID, notebookID, "New", "", false)
		require.NoError(t, err)
		assert.False(t, nb.Locked)
	})

	t.Run("allows locking an unlocked notebook", func(t *testing.T) {
		nb, err := testService(newRepos(false, nil)).Update(context.Background(), companyID, notebookID, "", "", true)
		require.NoError(t, err)
		assert.True(t, nb.Locked)
	})
}

func TestDelete(t *testing.T) {
	companyID := uuid.New()
	notebookID := uuid.New()

	t.Run("deletes notebook and sweeps assignments", func(t *testing.T) {
		var swept, deleted bool
		repos := &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{
				getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
					return &models.Notebook{ID: id, CompanyID: companyID}, nil
				},
				delete: func(_ context.Context, _ uuid.UUID) error { deleted = true; return nil },
			},
			Assignments: &fakeAssignmentRepo{deleteByNotebook: func(_ context.Context, _ uuid.UUID) (int64, error) {
				swept = true
				return 2, nil
			}},
		}

		require.NoError(t, testService(repos).Delete(context.Background(), companyID, notebookID))
		assert.True(t, swept)
		assert.True(t, deleted)
	})

	t.Run("assignment sweep failure does not block deletion", func(t *testing.T) {
		var deleted bool
		repos := &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{
				getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
					return &models.Notebook{ID: id, CompanyID: companyID}, nil
				},
				delete: func(_ context.Context, _ uuid.UUID) error { deleted = true; return nil },
			},
			Assignments: &fakeAssignmentRepo{deleteByNotebook: func(_ context.Context, _ uuid.UUID) (int64, error) {
				return 0, errors.New("sweep failed")
			}},
		}

		require.NoError(t, testService(repos).Delete(context.Background(), companyID, notebookID))
		assert.True(t, deleted)
	})

	t.Run("refuses to delete a locked notebook", func(t *testing.T) {
		repos := &repositories.Repositories{
			Notebooks: &fakeNotebookRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
				return &models.Notebook{ID: id, CompanyID: companyID, Locked: true}, nil
			}},
		}

		err := testService(repos).Delete(context.Background(), companyID, notebookID)
		assert.ErrorIs(t, err, services.ErrNotebookLocked)
	})
}

func TestAssign(t *testing.T) {
	companyID := uuid.New()
	notebookID := uuid.New()
	userID := uuid.New()

	notebookRepo := &fakeNotebookRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.Notebook, error) {
		return &models.Notebook{ID: id, CompanyID: companyID}, nil
	}}

	t.Run("assigns a notebook to an in-company user", func(t *testing.T) {
		repos := &repositories.Repositories{
			Notebooks: notebookRepo,
			Users: &fakeUserRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.User, error) {
				return &models.User{ID: id, CompanyID: companyID}, nil
			}},
			Assignments: &fakeAssignmentRepo{create: func(_ context.Context, _ *models.ModuleAssignment) error {
				return nil
			}},
		}

		a, err := testService(repos).Assign(context.Background(), companyID, notebookID, userID)
		require.NoError(t, err)
		assert.Equal(t, notebookID, a.NotebookID)
		assert.Equal(t, userID, a.UserID)
		assert.True(t, a.Enabled)
	})

	t.Run("refuses a user from another company", func(t *testing.T) {
		repos := &repositories.Repositories{
			Notebooks: notebookRepo,
			Users: &fakeUserRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.User, error) {
				return &models.User{ID: id, CompanyID: uuid.New()}, nil
			}},
		}

		_, err := testService(repos).Assign(context.Background(), companyID, notebookID, userID)
		assert.ErrorIs(t, err, services.ErrCompanyMismatch)
	})
}

func TestToggle(t *testing.T) {
	companyID := uuid.New()
	assignmentID := uuid.New()

	t.Run("toggles an assignment in scope", func(t *testing.T) {
		var setTo *bool
		repos := &repositories.Repositories{
			Assignments: &fakeAssignmentRepo{
				getByID: func(_ context.Context, id uuid.UUID) (*models.ModuleAssignment, error) {
					return &models.ModuleAssignment{ID: id, CompanyID: companyID, Enabled: true}, nil
				},
				setEnabled: func(_ context.Context, _ uuid.UUID, enabled bool) error {
					setTo = &enabled
					return nil
				},
			},
		}

		require.NoError(t, testService(repos).Toggle(context.Background(), companyID, assignmentID, false))
		require.NotNil(t, setTo)
		assert.False(t, *setTo)
	})

	t.Run("refuses cross-tenant toggles", func(t *testing.T) {
		repos := &repositories.Repositories{
			Assignments: &fakeAssignmentRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.ModuleAssignment, error) {
				return &models.ModuleAssignment{ID: id, CompanyID: uuid.New()}, nil
			}},
		}

		err := testService(repos).Toggle(context.Background(), companyID, assignmentID, false)
		assert.ErrorIs(t, err, services.ErrCompanyMismatch)
	})
}

func TestListAssignments(t *testing.T) {
	companyID := uuid.New()
	userID := uuid.New()

	repos := &repositories.Repositories{
		Users: &fakeUserRepo{getByID: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, CompanyID: companyID}, nil
		}},
		Assignments: &fakeAssignmentRepo{listByUser: func(_ context.Context, _ uuid.UUID) ([]*models.ModuleAssignment, error) {
			return []*models.ModuleAssignment{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		}},
	}

	list, err := testService(repos).ListAssignments(context.Background(), companyID, userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

var ErrCategoryExists = Conflict("category already exists")

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
	clock        Clock
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository, tx repo.TransactionManager, clock Clock) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo, tx: tx, clock: clock}
}

type CreateCategoryInput struct {
	Name string
	Slug string
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	if cs == nil {
		cs = []model.Category{}
	}
	return cs, nil
}

// name / slug の重複は Conflict
func (u *CategoryUsecase) Create(ctx context.Context, actorID int64, in CreateCategoryInput) (int64, error) {
	c := model.Category{
		Name: strings.TrimSpace(in.Name),
		Slug: strings.TrimSpace(in.Slug),
	}
	if c.Name == "" || c.Slug == "" {
		return 0, InvalidInput("name and slug required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Categories().Create(ctx, &c); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrCategoryExists
			}
			return Internal(err)
		}
		return writeAudit(ctx, r, u.clock, actorID, model.AuditActionCreateCategory, model.AuditResourceCategory, c.ID, map[string]any{
			"name": c.Name,
			"slug": c.Slug,
		})
	})
	if err != nil {
		return 0, asUsecaseError(err)
	}
	return c.ID, nil
}

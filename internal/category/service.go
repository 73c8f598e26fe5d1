package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	"github.com/frahmantamala/catalog-management/internal/core/events"
)

// RepositoryAPI reports a missing row as internal.ErrResourceNotFound and a category
// still referenced by products as internal.ErrIntegrityViolation.
type RepositoryAPI interface {
	FindAll(ctx context.Context, page pagination.PageRequest) ([]*categoryDatamodel.Category, int64, error)
	FindByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
	WithinTransaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
}

type Service struct {
	repo   RepositoryAPI
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
	}
}

func (s *Service) FindAllPaged(ctx context.Context, page pagination.PageRequest) (pagination.Page[CategoryDTO], error) {
	rows, total, err := s.repo.FindAll(ctx, page)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return pagination.Page[CategoryDTO]{}, internal.NewInternalError("failed to list categories", err)
	}

	content := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		content = append(content, FromDataModel(row).ToDTO())
	}
	return pagination.NewPage(content, page, total), nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*CategoryDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.wrap("find", id, err)
	}
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

func (s *Service) Insert(ctx context.Context, req CategoryRequest) (*CategoryDTO, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	category := NewCategory(strings.TrimSpace(req.Name))
	row := ToDataModel(category)
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		return repo.Create(ctx, row)
	})
	if err != nil {
		return nil, s.wrap("insert", 0, err)
	}

	s.publish(ctx, events.ActionCreated, row.ID)
	s.logger.Info("category created", "category_id", row.ID)
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id int64, req CategoryRequest) (*CategoryDTO, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	var updated *categoryDatamodel.Category
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		category := FromDataModel(row)
		category.Rename(strings.TrimSpace(req.Name))
		updated = ToDataModel(category)
		return repo.Update(ctx, updated)
	})
	if err != nil {
		return nil, s.wrap("update", id, err)
	}

	s.publish(ctx, events.ActionUpdated, id)
	dto := FromDataModel(updated).ToDTO()
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return s.wrap("delete", id, err)
	}

	s.publish(ctx, events.ActionDeleted, id)
	s.logger.Info("category deleted", "category_id", id)
	return nil
}

// wrap keeps classified errors and hides everything else behind an internal error.
func (s *Service) wrap(op string, id int64, err error) error {
	switch {
	case errors.Is(err, internal.ErrResourceNotFound):
		if op == "find" {
			return internal.ErrResourceNotFound
		}
		return internal.NewNotFoundError(fmt.Sprintf("Id not found %d", id), internal.ErrCodeResourceNotFound)
	case errors.Is(err, internal.ErrIntegrityViolation):
		return internal.ErrIntegrityViolation
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("category operation failed", "op", op, "category_id", id, "error", err)
	return internal.NewInternalError("category "+op+" failed", err)
}

func (s *Service) publish(ctx context.Context, action string, id int64) {
	if s.events == nil {
		return
	}
	event := events.NewEntityChangedEvent(events.EntityCategory, action, id, internal.ActorFromContext(ctx))
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish category event", "action", action, "category_id", id, "error", err)
	}
}

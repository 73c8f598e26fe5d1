package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/category"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/product"
	"github.com/frahmantamala/catalog-management/internal/core/events"
)

type RepositoryAPI interface {
	FindAll(ctx context.Context, filter Filter, page pagination.PageRequest) ([]*productDatamodel.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*productDatamodel.Product, error)
	FindCategories(ctx context.Context, ids []int64) ([]categoryDatamodel.Category, error)
	Create(ctx context.Context, product *productDatamodel.Product) error
	Update(ctx context.Context, product *productDatamodel.Product) error
	Delete(ctx context.Context, id int64) error
	WithinTransaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
}

type Service struct {
	repo   RepositoryAPI
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to reject future dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) FindAllPaged(ctx context.Context, filter Filter, page pagination.PageRequest) (pagination.Page[ProductDTO], error) {
	rows, total, err := s.repo.FindAll(ctx, filter, page)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return pagination.Page[ProductDTO]{}, internal.NewInternalError("failed to list products", err)
	}

	content := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		content = append(content, FromDataModel(row).ToDTO())
	}
	return pagination.NewPage(content, page, total), nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.wrap("find", id, err)
	}
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

func (s *Service) Insert(ctx context.Context, req ProductRequest) (*ProductDTO, error) {
	if verr := req.Validate(s.now); verr != nil {
		return nil, verr
	}
	req.Name = strings.TrimSpace(req.Name)

	var row *productDatamodel.Product
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		categories, err := s.resolveCategories(ctx, repo, req.CategoryIDs())
		if err != nil {
			return err
		}
		product := &Product{CreatedAt: s.now()}
		product.Apply(req, categories)
		row = ToDataModel(product)
		return repo.Create(ctx, row)
	})
	if err != nil {
		return nil, s.wrap("insert", 0, err)
	}

	s.publish(ctx, events.ActionCreated, row.ID)
	s.logger.Info("product created", "product_id", row.ID)
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id int64, req ProductRequest) (*ProductDTO, error) {
	if verr := req.Validate(s.now); verr != nil {
		return nil, verr
	}
	req.Name = strings.TrimSpace(req.Name)

	var row *productDatamodel.Product
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		categories, err := s.resolveCategories(ctx, repo, req.CategoryIDs())
		if err != nil {
			return err
		}
		product := FromDataModel(existing)
		product.Apply(req, categories)
		row = ToDataModel(product)
		return repo.Update(ctx, row)
	})
	if err != nil {
		return nil, s.wrap("update", id, err)
	}

	s.publish(ctx, events.ActionUpdated, id)
	dto := FromDataModel(row).ToDTO()
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
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// resolveCategories loads the referenced categories; any unknown id is a field error.
func (s *Service) resolveCategories(ctx context.Context, repo RepositoryAPI, ids []int64) ([]category.Category, error) {
	rows, err := repo.FindCategories(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[int64]bool, len(rows))
	out := make([]category.Category, 0, len(rows))
	for i := range rows {
		found[rows[i].ID] = true
		out = append(out, *category.FromDataModel(&rows[i]))
	}

	for _, id := range ids {
		if !found[id] {
			return nil, internal.NewValidationFieldError("categories",
				fmt.Sprintf("category %d does not exist", id), internal.ErrCodeUnknownReference)
		}
	}
	return out, nil
}

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
	s.logger.Error("product operation failed", "op", op, "product_id", id, "error", err)
	return internal.NewInternalError("product "+op+" failed", err)
}

func (s *Service) publish(ctx context.Context, action string, id int64) {
	if s.events == nil {
		return
	}
	event := events.NewEntityChangedEvent(events.EntityProduct, action, id, internal.ActorFromContext(ctx))
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish product event", "action", action, "product_id", id, "error", err)
	}
}

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
	"github.com/frahmantamala/catalog-management/internal/core/events"
)

// RepositoryAPI reports absent rows as internal.ErrResourceNotFound.
type RepositoryAPI interface {
	FindAll(ctx context.Context, page pagination.PageRequest) ([]*userDatamodel.User, int64, error)
	FindByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	FindRoles(ctx context.Context, ids []int64) ([]userDatamodel.Role, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	Update(ctx context.Context, user *userDatamodel.User) error
	Delete(ctx context.Context, id int64) error
	WithinTransaction(ctx context.Context, fn func(repo RepositoryAPI) error) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		events: publisher,
		logger: logger,
	}
}

func (s *Service) FindAllPaged(ctx context.Context, page pagination.PageRequest) (pagination.Page[UserDTO], error) {
	rows, total, err := s.repo.FindAll(ctx, page)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return pagination.Page[UserDTO]{}, internal.NewInternalError("failed to list users", err)
	}

	content := make([]UserDTO, 0, len(rows))
	for _, row := range rows {
		content = append(content, FromDataModel(row).ToDTO())
	}
	return pagination.NewPage(content, page, total), nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*UserDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.wrap("find", id, err)
	}
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

// ValidateUniqueEmail returns a field error on "email" when another user owns the
// address. excludeUserID is the user being updated, nil on insert.
func (s *Service) ValidateUniqueEmail(ctx context.Context, email string, excludeUserID *int64) *internal.AppError {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrResourceNotFound) {
			return nil
		}
		s.logger.Error("failed to check email uniqueness", "error", err)
		return internal.NewInternalError("failed to check email", err)
	}
	if excludeUserID != nil && existing.ID == *excludeUserID {
		return nil
	}
	return emailTaken()
}

func emailTaken() *internal.AppError {
	return internal.NewValidationFieldError("email", "email already exists", internal.ErrCodeEmailExists)
}

func (s *Service) Insert(ctx context.Context, req UserInsertRequest) (*UserDTO, error) {
	profile := req.profile()
	roles, verr := s.validate(ctx, req.Validate(), profile, nil)
	if verr != nil {
		return nil, verr
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	u := &User{PasswordHash: hash, CreatedAt: time.Now()}
	u.ApplyProfile(profile.FirstName, profile.LastName, profile.Email, roles)
	row := ToDataModel(u)
	err = s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		return repo.Create(ctx, row)
	})
	if err != nil {
		return nil, s.wrap("insert", 0, err)
	}

	s.publish(ctx, events.ActionCreated, row.ID)
	s.logger.Info("user created", "user_id", row.ID)
	dto := FromDataModel(row).ToDTO()
	return &dto, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UserUpdateRequest) (*UserDTO, error) {
	profile := req.normalize()
	roles, verr := s.validate(ctx, req.Validate(), profile, &id)
	if verr != nil {
		return nil, verr
	}

	var row *userDatamodel.User
	err := s.repo.WithinTransaction(ctx, func(repo RepositoryAPI) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		u := FromDataModel(existing)
		u.ApplyProfile(profile.FirstName, profile.LastName, profile.Email, roles)
		row = ToDataModel(u)
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
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// validate collects the format errors, the email uniqueness check and unknown role
// ids into one validation error.
func (s *Service) validate(ctx context.Context, formatErr *internal.AppError, profile UserUpdateRequest, exclude *int64) ([]Role, *internal.AppError) {
	v := validation.NewValidator()
	v.Merge("request", formatErr)

	if profile.Email != "" {
		if uerr := s.ValidateUniqueEmail(ctx, profile.Email, exclude); uerr != nil {
			if uerr.Type != internal.ErrorTypeValidation {
				return nil, uerr
			}
			v.Merge("email", uerr)
		}
	}

	roles, rerr := s.resolveRoles(ctx, roleIDs(profile.Roles))
	if rerr != nil {
		if rerr.Type != internal.ErrorTypeValidation {
			return nil, rerr
		}
		v.Merge("roles", rerr)
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Service) resolveRoles(ctx context.Context, ids []int64) ([]Role, *internal.AppError) {
	if len(ids) == 0 {
		return []Role{}, nil
	}
	rows, err := s.repo.FindRoles(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load roles", "error", err)
		return nil, internal.NewInternalError("failed to load roles", err)
	}

	found := make(map[int64]bool, len(rows))
	roles := make([]Role, 0, len(rows))
	for _, r := range rows {
		found[r.ID] = true
		roles = append(roles, Role{ID: r.ID, Authority: r.Authority})
	}
	for _, id := range ids {
		if !found[id] {
			return nil, internal.NewValidationFieldError("roles", fmt.Sprintf("role %d does not exist", id), internal.ErrCodeUnknownReference)
		}
	}
	return roles, nil
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
	case errors.Is(err, errDuplicateEmail):
		// lost a race with a concurrent insert after the pre-check
		return validation.NewValidator().Merge("email", emailTaken()).Validate()
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("user operation failed", "op", op, "user_id", id, "error", err)
	return internal.NewInternalError("user "+op+" failed", err)
}

// errDuplicateEmail is returned by repositories when the unique index on email fires.
var errDuplicateEmail = errors.New("duplicate email")

// NewDuplicateEmailError lets repository implementations report a unique index violation.
func NewDuplicateEmailError(cause error) error {
	return fmt.Errorf("%w: %v", errDuplicateEmail, cause)
}

func (s *Service) publish(ctx context.Context, action string, id int64) {
	if s.events == nil {
		return
	}
	event := events.NewEntityChangedEvent(events.EntityUser, action, id, internal.ActorFromContext(ctx))
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish user event", "action", action, "user_id", id, "error", err)
	}
}

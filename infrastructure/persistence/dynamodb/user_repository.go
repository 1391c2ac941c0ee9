package dynamodb

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/infrastructure/persistence/abstractions"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/observability"
	"clubhub-backend/pkg/utils"
)

// UserRepository stores one profile item per user
type UserRepository struct {
	base
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(table abstractions.Table, logger *zap.Logger, metrics *observability.Collector) *UserRepository {
	return &UserRepository{base{name: "user", table: table, logger: logger, metrics: metrics}}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (user *entities.User, err error) {
	defer r.track("GetUserByID", time.Now(), &err, zap.String("userID", id))

	item, err := r.table.Get(ctx, userKey(id))
	if err != nil {
		return nil, storageError("GetUserByID", err)
	}
	return decodeUser(item)
}

// CreateUser writes the profile if absent. When the user already exists the
// stored profile is returned unchanged.
func (r *UserRepository) CreateUser(ctx context.Context, input entities.CreateUserInput) (user *entities.User, err error) {
	defer r.track("CreateUser", time.Now(), &err, zap.String("userID", input.ID))

	u, err := entities.NewUser(input)
	if err != nil {
		return nil, err
	}
	item, err := marshalItem(newUserItem(u))
	if err != nil {
		return nil, storageError("CreateUser", err)
	}

	err = r.table.Put(ctx, item, abstractions.ConditionNotExists)
	if isConditionFailed(err) {
		existing, err := r.table.Get(ctx, userKey(u.ID))
		if err != nil {
			return nil, storageError("CreateUser", err)
		}
		return decodeUser(existing)
	}
	if err != nil {
		return nil, storageError("CreateUser", err)
	}
	return &u, nil
}

// UpdateUser sets only the provided fields
func (r *UserRepository) UpdateUser(ctx context.Context, id string, input entities.UpdateUserInput) (user *entities.User, err error) {
	defer r.track("UpdateUser", time.Now(), &err, zap.String("userID", id))

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		current, err := r.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, pkgerrors.NewNotFoundError("user")
		}
		return current, nil
	}

	set := map[string]interface{}{"UpdatedAt": utils.Now()}
	if input.DisplayName != nil {
		set["DisplayName"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.AvatarURL != nil {
		set["AvatarURL"] = *input.AvatarURL
	}

	item, err := r.table.Update(ctx, userKey(id), set, abstractions.ConditionExists)
	if isConditionFailed(err) {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	if err != nil {
		return nil, storageError("UpdateUser", err)
	}
	return decodeUser(item)
}

// UserExists reads only the key attribute
func (r *UserRepository) UserExists(ctx context.Context, id string) (exists bool, err error) {
	defer r.track("UserExists", time.Now(), &err, zap.String("userID", id))

	item, err := r.table.Get(ctx, userKey(id), abstractions.AttrPK)
	if err != nil {
		return false, storageError("UserExists", err)
	}
	return item != nil, nil
}

func decodeUser(item abstractions.Item) (*entities.User, error) {
	if item == nil {
		return nil, nil
	}
	var ui userItem
	if err := unmarshalItem(item, &ui); err != nil {
		return nil, storageError("DecodeUser", err)
	}
	u := ui.toEntity()
	return &u, nil
}

package dynamodb

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/domain/core/valueobjects"
	"clubhub-backend/infrastructure/persistence/abstractions"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/common"
	"clubhub-backend/pkg/observability"
)

const nameCandidateLimit = 10

// clubCursor identifies the last club of a page
type clubCursor struct {
	NameLower string `json:"nameLower"`
	ClubID    string `json:"clubId"`
}

// ClubRepository stores clubs as a canonical item plus a name index item
type ClubRepository struct {
	base
}

var _ ports.ClubRepository = (*ClubRepository)(nil)

// NewClubRepository creates a new ClubRepository
func NewClubRepository(table abstractions.Table, logger *zap.Logger, metrics *observability.Collector) *ClubRepository {
	return &ClubRepository{base{name: "club", table: table, logger: logger, metrics: metrics}}
}

// GetClubByID reads the canonical club item
func (r *ClubRepository) GetClubByID(ctx context.Context, id string) (club *entities.Club, err error) {
	defer r.track("GetClubByID", time.Now(), &err, zap.String("clubID", id))

	item, err := r.table.Get(ctx, clubKey(id))
	if err != nil {
		return nil, storageError("GetClubByID", err)
	}
	if item == nil {
		return nil, nil
	}
	var ci clubItem
	if err := unmarshalItem(item, &ci); err != nil {
		return nil, storageError("GetClubByID", err)
	}
	c := ci.toEntity()
	return &c, nil
}

// ListClubs pages through the name index on GSI1
func (r *ClubRepository) ListClubs(ctx context.Context, opts ports.ListClubsOptions) (page common.Page[entities.Club], err error) {
	defer r.track("ListClubs", time.Now(), &err, zap.String("status", string(opts.Status)))

	limit := opts.EffectiveLimit()
	q := abstractions.Query{
		Index:      abstractions.IndexGSI1,
		Partition:  clubIndexPK,
		SortPrefix: "NAME#",
		Limit:      int32(limit + 1),
	}
	if opts.Status != "" {
		if !opts.Status.IsValid() {
			return page, pkgerrors.NewFieldError("status", "status must be one of: active suspended archived")
		}
		q.Filters = []abstractions.Filter{{Name: "Status", Value: string(opts.Status)}}
	}
	if opts.Cursor != "" {
		var c clubCursor
		if err := common.DecodeCursor(opts.Cursor, &c); err != nil {
			return page, err
		}
		if c.ClubID == "" {
			return page, pkgerrors.NewInvalidCursorError(nil)
		}
		q.StartKey = indexStartKey(clubIndexKey(c.NameLower, c.ClubID), abstractions.IndexGSI1)
	}

	items, err := r.collect(ctx, q, limit+1)
	if err != nil {
		return page, storageError("ListClubs", err)
	}

	page.HasMore = len(items) > limit
	if page.HasMore {
		items = items[:limit]
	}
	page.Items = make([]entities.Club, 0, len(items))
	var last clubItem
	for _, item := range items {
		if err := unmarshalItem(item, &last); err != nil {
			return page, storageError("ListClubs", err)
		}
		page.Items = append(page.Items, last.toEntity())
	}
	if page.HasMore {
		page.NextCursor, err = common.EncodeCursor(clubCursor{NameLower: last.NameLower, ClubID: last.ClubID})
		if err != nil {
			return page, storageError("ListClubs", err)
		}
	}
	return page, nil
}

func clubItems(c entities.Club) (canonical, index abstractions.Item, err error) {
	canonical, err = marshalItem(newClubItem(c, clubKey(c.ID), EntityClub))
	if err != nil {
		return nil, nil, err
	}
	index, err = marshalItem(newClubItem(c, clubIndexKey(c.NameKey(), c.ID), EntityClubIndex))
	if err != nil {
		return nil, nil, err
	}
	return canonical, index, nil
}

func clubExists(id string) error {
	return pkgerrors.NewConflictError("club already exists").
		WithCode(pkgerrors.CodeClubExists).
		WithDetail("clubId", id)
}

// CreateClub writes the canonical item and the index item in one transaction
func (r *ClubRepository) CreateClub(ctx context.Context, input entities.CreateClubInput) (club *entities.Club, err error) {
	defer r.track("CreateClub", time.Now(), &err, zap.String("name", input.Name))

	c, err := entities.NewClub(input)
	if err != nil {
		return nil, err
	}
	canonical, index, err := clubItems(c)
	if err != nil {
		return nil, storageError("CreateClub", err)
	}

	err = r.table.TransactWrite(ctx, []abstractions.WriteOp{
		abstractions.PutOp(canonical, abstractions.ConditionNotExists),
		abstractions.PutOp(index, abstractions.ConditionNone),
	})
	if isConditionFailed(err) {
		return nil, clubExists(c.ID)
	}
	if err != nil {
		return nil, storageError("CreateClub", err)
	}
	return &c, nil
}

// CreateClubWithOwner writes the club items and the owner's three membership
// projections in a single transaction.
func (r *ClubRepository) CreateClubWithOwner(ctx context.Context, input entities.CreateClubInput, ownerID string) (club *entities.Club, owner *entities.Membership, err error) {
	defer r.track("CreateClubWithOwner", time.Now(), &err,
		zap.String("name", input.Name),
		zap.String("ownerID", ownerID))

	c, err := entities.NewClub(input)
	if err != nil {
		return nil, nil, err
	}
	m, err := entities.NewMembership(c.ID, ownerID, entities.CreateMembershipInput{}, entities.RoleOwner, entities.MembershipStatusActive)
	if err != nil {
		return nil, nil, err
	}
	canonical, index, err := clubItems(c)
	if err != nil {
		return nil, nil, storageError("CreateClubWithOwner", err)
	}
	projections, err := membershipProjections(m)
	if err != nil {
		return nil, nil, storageError("CreateClubWithOwner", err)
	}

	err = r.table.TransactWrite(ctx, []abstractions.WriteOp{
		abstractions.PutOp(canonical, abstractions.ConditionNotExists),
		abstractions.PutOp(index, abstractions.ConditionNone),
		abstractions.PutOp(projections[0], abstractions.ConditionNotExists),
		abstractions.PutOp(projections[1], abstractions.ConditionNone),
		abstractions.PutOp(projections[2], abstractions.ConditionNone),
	})
	if isConditionFailed(err) {
		return nil, nil, clubExists(c.ID)
	}
	if err != nil {
		return nil, nil, storageError("CreateClubWithOwner", err)
	}
	return &c, &m, nil
}

// UpdateClub merges input into the stored club. A name change moves the
// index item inside the same transaction.
func (r *ClubRepository) UpdateClub(ctx context.Context, id string, input entities.UpdateClubInput) (club *entities.Club, err error) {
	defer r.track("UpdateClub", time.Now(), &err, zap.String("clubID", id))

	existing, err := r.GetClubByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, pkgerrors.NewNotFoundError("club")
	}
	updated, err := existing.Apply(input)
	if err != nil {
		return nil, err
	}

	canonical, err := marshalItem(newClubItem(updated, clubKey(id), EntityClub))
	if err != nil {
		return nil, storageError("UpdateClub", err)
	}
	index, err := marshalItem(newClubItem(updated, clubIndexKey(updated.NameKey(), id), EntityClubIndex))
	if err != nil {
		return nil, storageError("UpdateClub", err)
	}

	ops := []abstractions.WriteOp{abstractions.PutOp(canonical, abstractions.ConditionExists)}
	if existing.NameKey() != updated.NameKey() {
		ops = append(ops, abstractions.DeleteOp(clubIndexKey(existing.NameKey(), id)))
	}
	ops = append(ops, abstractions.PutOp(index, abstractions.ConditionNone))

	err = r.table.TransactWrite(ctx, ops)
	if isConditionFailed(err) {
		return nil, pkgerrors.NewNotFoundError("club")
	}
	if err != nil {
		return nil, storageError("UpdateClub", err)
	}
	return &updated, nil
}

// IsClubNameUnique scans the name index for clubs with the same normalized name
func (r *ClubRepository) IsClubNameUnique(ctx context.Context, name string, excludeID string) (unique bool, err error) {
	defer r.track("IsClubNameUnique", time.Now(), &err, zap.String("name", name))

	nameLower := valueobjects.NameKey(name)
	if nameLower == "" {
		return false, pkgerrors.NewFieldError("name", "name is required")
	}

	page, err := r.table.Query(ctx, abstractions.Query{
		Index:      abstractions.IndexGSI1,
		Partition:  clubIndexPK,
		SortPrefix: clubNamePrefix(nameLower),
		Limit:      nameCandidateLimit,
	})
	if err != nil {
		return false, storageError("IsClubNameUnique", err)
	}
	for _, item := range page.Items {
		// The prefix also matches names that continue past a '#'.
		if abstractions.StringAttr(item, "NameLower") != nameLower {
			continue
		}
		if abstractions.StringAttr(item, "ClubID") != excludeID {
			return false, nil
		}
	}
	return true, nil
}

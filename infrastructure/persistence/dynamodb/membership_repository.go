package dynamodb

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/infrastructure/persistence/abstractions"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/observability"
)

const (
	enrichConcurrency  = 10
	unknownDisplayName = "Unknown User"
)

type memberCursor struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

// MembershipRepository keeps three projections of each membership in sync:
// the canonical item under the club, the user index on GSI1 and the
// club-member index on GSI2.
type MembershipRepository struct {
	base
	users ports.UserRepository
}

var _ ports.MembershipRepository = (*MembershipRepository)(nil)

// NewMembershipRepository creates a new MembershipRepository. users enriches
// member listings with profile data.
func NewMembershipRepository(table abstractions.Table, users ports.UserRepository, logger *zap.Logger, metrics *observability.Collector) *MembershipRepository {
	return &MembershipRepository{
		base:  base{name: "membership", table: table, logger: logger, metrics: metrics},
		users: users,
	}
}

// GetMembershipByClubAndUser does a strongly consistent read of the canonical item
func (r *MembershipRepository) GetMembershipByClubAndUser(ctx context.Context, clubID, userID string) (m *entities.Membership, err error) {
	defer r.track("GetMembershipByClubAndUser", time.Now(), &err, zap.String("clubID", clubID), zap.String("userID", userID))
	return r.get(ctx, clubID, userID)
}

func (r *MembershipRepository) get(ctx context.Context, clubID, userID string) (*entities.Membership, error) {
	item, err := r.table.Get(ctx, membershipKey(clubID, userID))
	if err != nil {
		return nil, storageError("GetMembership", err)
	}
	if item == nil {
		return nil, nil
	}
	var mi membershipItem
	if err := unmarshalItem(item, &mi); err != nil {
		return nil, storageError("GetMembership", err)
	}
	m := mi.toEntity()
	return &m, nil
}

// ListClubMembers pages through the GSI2 member index ordered by role then user
func (r *MembershipRepository) ListClubMembers(ctx context.Context, clubID string, opts ports.ListMembersOptions) (page common.Page[ports.ClubMember], err error) {
	defer r.track("ListClubMembers", time.Now(), &err, zap.String("clubID", clubID))

	limit := opts.EffectiveLimit()
	q := abstractions.Query{
		Index:      abstractions.IndexGSI2,
		Partition:  clubMembersPK(clubID),
		SortPrefix: "ROLE#",
		Limit:      int32(limit + 1),
	}
	if opts.Role != "" {
		if !opts.Role.IsValid() {
			return page, pkgerrors.NewFieldError("role", "role must be one of: member captain admin owner")
		}
		q.SortPrefix = rolePrefix(opts.Role)
	}
	if opts.Status != "" {
		if !opts.Status.IsValid() {
			return page, pkgerrors.NewFieldError("status", "status must be one of: pending active suspended removed")
		}
		q.Filters = []abstractions.Filter{{Name: "Status", Value: string(opts.Status)}}
	}
	if opts.Cursor != "" {
		var c memberCursor
		if err := common.DecodeCursor(opts.Cursor, &c); err != nil {
			return page, err
		}
		if c.Role == "" || c.UserID == "" {
			return page, pkgerrors.NewInvalidCursorError(nil)
		}
		q.StartKey = indexStartKey(clubMemberKey(clubID, entities.MembershipRole(c.Role), c.UserID), abstractions.IndexGSI2)
	}

	items, err := r.collect(ctx, q, limit+1)
	if err != nil {
		return page, storageError("ListClubMembers", err)
	}
	page.HasMore = len(items) > limit
	if page.HasMore {
		items = items[:limit]
	}

	memberships, err := decodeMemberships(items)
	if err != nil {
		return page, storageError("ListClubMembers", err)
	}
	page.Items, err = r.enrich(ctx, memberships)
	if err != nil {
		return page, err
	}
	if page.HasMore {
		last := memberships[len(memberships)-1]
		page.NextCursor, err = common.EncodeCursor(memberCursor{Role: string(last.Role), UserID: last.UserID})
		if err != nil {
			return page, storageError("ListClubMembers", err)
		}
	}
	return page, nil
}

// enrich attaches profile data to each membership. A missing or unreadable
// profile yields a placeholder instead of failing the listing.
func (r *MembershipRepository) enrich(ctx context.Context, memberships []entities.Membership) ([]ports.ClubMember, error) {
	out := make([]ports.ClubMember, len(memberships))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i := range memberships {
		i := i
		g.Go(func() error {
			member := ports.ClubMember{Membership: memberships[i], DisplayName: unknownDisplayName}
			user, err := r.users.GetUserByID(gctx, memberships[i].UserID)
			switch {
			case gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				r.logger.Warn("Failed to load member profile",
					zap.String("userID", memberships[i].UserID),
					zap.Error(err))
			case user != nil:
				member.DisplayName = user.DisplayName
				member.Email = user.Email
				member.AvatarURL = user.AvatarURL
			}
			out[i] = member
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserMemberships reads every membership of a user from the GSI1 user index
func (r *MembershipRepository) ListUserMemberships(ctx context.Context, userID string, status entities.MembershipStatus) (result []entities.Membership, err error) {
	defer r.track("ListUserMemberships", time.Now(), &err, zap.String("userID", userID))

	q := abstractions.Query{
		Index:      abstractions.IndexGSI1,
		Partition:  userPK(userID),
		SortPrefix: userMembershipPrefix,
		Filters:    []abstractions.Filter{{Name: abstractions.AttrEntityType, Value: EntityUserMembership}},
	}
	if status != "" {
		if !status.IsValid() {
			return nil, pkgerrors.NewFieldError("status", "status must be one of: pending active suspended removed")
		}
		q.Filters = append(q.Filters, abstractions.Filter{Name: "Status", Value: string(status)})
	}

	items, err := r.collect(ctx, q, 0)
	if err != nil {
		return nil, storageError("ListUserMemberships", err)
	}
	result, err = decodeMemberships(items)
	if err != nil {
		return nil, storageError("ListUserMemberships", err)
	}
	return result, nil
}

// CreateMembership writes all three projections in one transaction. The
// canonical item must not exist yet.
func (r *MembershipRepository) CreateMembership(ctx context.Context, clubID, userID string, input entities.CreateMembershipInput, role entities.MembershipRole, status entities.MembershipStatus) (m *entities.Membership, err error) {
	defer r.track("CreateMembership", time.Now(), &err,
		zap.String("clubID", clubID),
		zap.String("userID", userID),
		zap.String("role", string(role)))

	membership, err := entities.NewMembership(clubID, userID, input, role, status)
	if err != nil {
		return nil, err
	}
	items, err := membershipProjections(membership)
	if err != nil {
		return nil, storageError("CreateMembership", err)
	}

	err = r.table.TransactWrite(ctx, []abstractions.WriteOp{
		abstractions.PutOp(items[0], abstractions.ConditionNotExists),
		abstractions.PutOp(items[1], abstractions.ConditionNone),
		abstractions.PutOp(items[2], abstractions.ConditionNone),
	})
	if isConditionFailed(err) {
		return nil, pkgerrors.NewConflictError("membership already exists").
			WithCode(pkgerrors.CodeMembershipExists).
			WithDetails(map[string]interface{}{"clubId": clubID, "userId": userID})
	}
	if err != nil {
		return nil, storageError("CreateMembership", err)
	}
	return &membership, nil
}

// UpdateMembershipStatusByClubAndUser applies a status transition and
// rewrites every projection.
func (r *MembershipRepository) UpdateMembershipStatusByClubAndUser(ctx context.Context, clubID, userID string, status entities.MembershipStatus, processedBy, reason string) (m *entities.Membership, err error) {
	defer r.track("UpdateMembershipStatusByClubAndUser", time.Now(), &err,
		zap.String("clubID", clubID),
		zap.String("userID", userID),
		zap.String("status", string(status)))

	return r.mutate(ctx, clubID, userID, func(current entities.Membership) (entities.Membership, error) {
		return current.TransitionStatus(status, processedBy, reason)
	})
}

// UpdateMembershipRoleByClubAndUser changes the role and moves the club-member
// index item to the new role's sort key.
func (r *MembershipRepository) UpdateMembershipRoleByClubAndUser(ctx context.Context, clubID, userID string, role entities.MembershipRole, processedBy string) (m *entities.Membership, err error) {
	defer r.track("UpdateMembershipRoleByClubAndUser", time.Now(), &err,
		zap.String("clubID", clubID),
		zap.String("userID", userID),
		zap.String("role", string(role)))

	return r.mutate(ctx, clubID, userID, func(current entities.Membership) (entities.Membership, error) {
		return current.ChangeRole(role, processedBy)
	})
}

func (r *MembershipRepository) mutate(ctx context.Context, clubID, userID string, change func(entities.Membership) (entities.Membership, error)) (*entities.Membership, error) {
	current, err := r.get(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, pkgerrors.NewNotFoundError("membership")
	}
	next, err := change(*current)
	if err != nil {
		return nil, err
	}
	if err := r.writeProjections(ctx, *current, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *MembershipRepository) writeProjections(ctx context.Context, before, after entities.Membership) error {
	items, err := membershipProjections(after)
	if err != nil {
		return storageError("WriteMembership", err)
	}
	// The club-member index key embeds the role read earlier, so the
	// canonical item must still hold that role and status.
	canonical := abstractions.PutOp(items[0], abstractions.ConditionExists).Expecting(
		abstractions.Filter{Name: "Role", Value: string(before.Role)},
		abstractions.Filter{Name: "Status", Value: string(before.Status)},
	)
	ops := []abstractions.WriteOp{
		canonical,
		abstractions.PutOp(items[1], abstractions.ConditionNone),
	}
	if before.Role != after.Role {
		ops = append(ops, abstractions.DeleteOp(clubMemberKey(before.ClubID, before.Role, before.UserID)))
	}
	ops = append(ops, abstractions.PutOp(items[2], abstractions.ConditionNone))

	err = r.table.TransactWrite(ctx, ops)
	if !isConditionFailed(err) {
		return storageError("WriteMembership", err)
	}

	current, getErr := r.get(ctx, before.ClubID, before.UserID)
	if getErr != nil {
		return getErr
	}
	if current == nil {
		return pkgerrors.NewNotFoundError("membership")
	}
	return pkgerrors.NewConflictError("membership was changed by another request").
		WithCode(pkgerrors.CodeConcurrentUpdate).
		WithDetails(map[string]interface{}{
			"clubId": before.ClubID,
			"userId": before.UserID,
			"role":   string(current.Role),
			"status": string(current.Status),
		})
}

func unsupportedLookup(operation string) error {
	return pkgerrors.NewUnsupportedError(operation + " requires clubId and userId").
		WithCode(pkgerrors.CodeUnsupportedLookup)
}

// GetMembershipByID always fails; memberships are keyed by club and user.
func (r *MembershipRepository) GetMembershipByID(ctx context.Context, membershipID string) (*entities.Membership, error) {
	return nil, unsupportedLookup("GetMembershipByID")
}

// UpdateMembershipRole always fails; use UpdateMembershipRoleByClubAndUser.
func (r *MembershipRepository) UpdateMembershipRole(ctx context.Context, membershipID string, role entities.MembershipRole) (*entities.Membership, error) {
	return nil, unsupportedLookup("UpdateMembershipRole")
}

// UpdateMembershipStatus always fails; use UpdateMembershipStatusByClubAndUser.
func (r *MembershipRepository) UpdateMembershipStatus(ctx context.Context, membershipID string, status entities.MembershipStatus) (*entities.Membership, error) {
	return nil, unsupportedLookup("UpdateMembershipStatus")
}

// IsUserMember reports whether the user holds an active membership
func (r *MembershipRepository) IsUserMember(ctx context.Context, clubID, userID string) (bool, error) {
	m, err := r.GetMembershipByClubAndUser(ctx, clubID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsActive(), nil
}

// GetUserRoleInClub returns the role of an active membership, or "" otherwise
func (r *MembershipRepository) GetUserRoleInClub(ctx context.Context, clubID, userID string) (entities.MembershipRole, error) {
	m, err := r.GetMembershipByClubAndUser(ctx, clubID, userID)
	if err != nil {
		return "", err
	}
	if m == nil || !m.IsActive() {
		return "", nil
	}
	return m.Role, nil
}

// CountClubMembers counts active memberships across all roles
func (r *MembershipRepository) CountClubMembers(ctx context.Context, clubID string) (count int, err error) {
	defer r.track("CountClubMembers", time.Now(), &err, zap.String("clubID", clubID))

	items, err := r.collect(ctx, abstractions.Query{
		Index:      abstractions.IndexGSI2,
		Partition:  clubMembersPK(clubID),
		SortPrefix: "ROLE#",
		Filters:    []abstractions.Filter{{Name: "Status", Value: string(entities.MembershipStatusActive)}},
	}, 0)
	if err != nil {
		return 0, storageError("CountClubMembers", err)
	}
	return len(items), nil
}

// GetClubOwner returns the active owner, or nil when the club has none
func (r *MembershipRepository) GetClubOwner(ctx context.Context, clubID string) (*ports.ClubMember, error) {
	page, err := r.ListClubMembers(ctx, clubID, ports.ListMembersOptions{
		PageRequest: common.PageRequest{Limit: 1},
		Role:        entities.RoleOwner,
		Status:      entities.MembershipStatusActive,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return &page.Items[0], nil
}

// GetClubAdmins returns every active admin of the club
func (r *MembershipRepository) GetClubAdmins(ctx context.Context, clubID string) ([]ports.ClubMember, error) {
	var admins []ports.ClubMember
	opts := ports.ListMembersOptions{
		PageRequest: common.PageRequest{Limit: common.MaxPageSize},
		Role:        entities.RoleAdmin,
		Status:      entities.MembershipStatusActive,
	}
	for {
		page, err := r.ListClubMembers(ctx, clubID, opts)
		if err != nil {
			return nil, err
		}
		admins = append(admins, page.Items...)
		if !page.HasMore {
			return admins, nil
		}
		opts.Cursor = page.NextCursor
	}
}

// HasPendingMembershipRequest reports whether the user has a pending request for the club
func (r *MembershipRepository) HasPendingMembershipRequest(ctx context.Context, clubID, userID string) (bool, error) {
	m, err := r.GetMembershipByClubAndUser(ctx, clubID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsPending(), nil
}

func decodeMemberships(items []abstractions.Item) ([]entities.Membership, error) {
	out := make([]entities.Membership, 0, len(items))
	for _, item := range items {
		var mi membershipItem
		if err := unmarshalItem(item, &mi); err != nil {
			return nil, err
		}
		out = append(out, mi.toEntity())
	}
	return out, nil
}

package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"clubhub-backend/domain/core/entities"
	"clubhub-backend/infrastructure/persistence/abstractions"
)

// Entity type discriminators stored in EntityType
const (
	EntityClub            = "CLUB"
	EntityClubIndex       = "CLUB_INDEX"
	EntityClubMembership  = "CLUB_MEMBERSHIP"
	EntityUserMembership  = "USER_MEMBERSHIP"
	EntityClubMemberIndex = "CLUB_MEMBER_INDEX"
	EntityUser            = "USER"
)

// Key builders

const (
	clubMetadataSK = "METADATA"
	clubIndexPK    = "INDEX#CLUB"
	userProfileSK  = "PROFILE"
)

func clubPK(clubID string) string { return fmt.Sprintf("CLUB#%s", clubID) }

func clubKey(clubID string) abstractions.Key {
	return abstractions.Key{PK: clubPK(clubID), SK: clubMetadataSK}
}

func clubNamePrefix(nameLower string) string { return fmt.Sprintf("NAME#%s#", nameLower) }

func clubIndexKey(nameLower, clubID string) abstractions.Key {
	return abstractions.Key{PK: clubIndexPK, SK: fmt.Sprintf("NAME#%s#ID#%s", nameLower, clubID)}
}

func membershipKey(clubID, userID string) abstractions.Key {
	return abstractions.Key{PK: clubPK(clubID), SK: fmt.Sprintf("MEMBER#%s", userID)}
}

func userPK(userID string) string { return fmt.Sprintf("USER#%s", userID) }

const userMembershipPrefix = "MEMBERSHIP#"

func userMembershipKey(userID, clubID string) abstractions.Key {
	return abstractions.Key{PK: userPK(userID), SK: userMembershipPrefix + clubID}
}

func clubMembersPK(clubID string) string { return fmt.Sprintf("CLUB#%s#MEMBERS", clubID) }

func rolePrefix(role entities.MembershipRole) string { return fmt.Sprintf("ROLE#%s#", role) }

func clubMemberKey(clubID string, role entities.MembershipRole, userID string) abstractions.Key {
	return abstractions.Key{PK: clubMembersPK(clubID), SK: fmt.Sprintf("ROLE#%s#USER#%s", role, userID)}
}

func userKey(userID string) abstractions.Key {
	return abstractions.Key{PK: userPK(userID), SK: userProfileSK}
}

// Item shapes

// clubItem is stored twice: the canonical record and the name index entry.
// Both carry the full club so listing needs no second read.
type clubItem struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	GSI1PK      string    `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK      string    `dynamodbav:"GSI1SK,omitempty"`
	EntityType  string    `dynamodbav:"EntityType"`
	ClubID      string    `dynamodbav:"ClubID"`
	Name        string    `dynamodbav:"Name"`
	NameLower   string    `dynamodbav:"NameLower"`
	Description string    `dynamodbav:"Description,omitempty"`
	Status      string    `dynamodbav:"Status"`
	City        string    `dynamodbav:"City,omitempty"`
	LogoURL     string    `dynamodbav:"LogoURL,omitempty"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

func newClubItem(c entities.Club, key abstractions.Key, entityType string) clubItem {
	item := clubItem{
		PK:          key.PK,
		SK:          key.SK,
		EntityType:  entityType,
		ClubID:      c.ID,
		Name:        c.Name,
		NameLower:   c.NameKey(),
		Description: c.Description,
		Status:      string(c.Status),
		City:        c.City,
		LogoURL:     c.LogoURL,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if entityType == EntityClubIndex {
		item.GSI1PK, item.GSI1SK = key.PK, key.SK
	}
	return item
}

func (i clubItem) toEntity() entities.Club {
	return entities.Club{
		ID:          i.ClubID,
		Name:        i.Name,
		Description: i.Description,
		Status:      entities.ClubStatus(i.Status),
		City:        i.City,
		LogoURL:     i.LogoURL,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// membershipItem is the shape of all three membership projections.
type membershipItem struct {
	PK           string     `dynamodbav:"PK"`
	SK           string     `dynamodbav:"SK"`
	GSI1PK       string     `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK       string     `dynamodbav:"GSI1SK,omitempty"`
	GSI2PK       string     `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK       string     `dynamodbav:"GSI2SK,omitempty"`
	EntityType   string     `dynamodbav:"EntityType"`
	MembershipID string     `dynamodbav:"MembershipID"`
	ClubID       string     `dynamodbav:"ClubID"`
	UserID       string     `dynamodbav:"UserID"`
	Role         string     `dynamodbav:"Role"`
	Status       string     `dynamodbav:"Status"`
	JoinedAt     time.Time  `dynamodbav:"JoinedAt"`
	UpdatedAt    time.Time  `dynamodbav:"UpdatedAt"`
	JoinMessage  string     `dynamodbav:"JoinMessage,omitempty"`
	InvitedBy    string     `dynamodbav:"InvitedBy,omitempty"`
	ProcessedBy  string     `dynamodbav:"ProcessedBy,omitempty"`
	ProcessedAt  *time.Time `dynamodbav:"ProcessedAt,omitempty"`
	Reason       string     `dynamodbav:"Reason,omitempty"`
}

func newMembershipItem(m entities.Membership, key abstractions.Key, entityType string) membershipItem {
	item := membershipItem{
		PK:           key.PK,
		SK:           key.SK,
		EntityType:   entityType,
		MembershipID: m.MembershipID,
		ClubID:       m.ClubID,
		UserID:       m.UserID,
		Role:         string(m.Role),
		Status:       string(m.Status),
		JoinedAt:     m.JoinedAt,
		UpdatedAt:    m.UpdatedAt,
		JoinMessage:  m.JoinMessage,
		InvitedBy:    m.InvitedBy,
		ProcessedBy:  m.ProcessedBy,
		ProcessedAt:  m.ProcessedAt,
		Reason:       m.Reason,
	}
	switch entityType {
	case EntityUserMembership:
		item.GSI1PK, item.GSI1SK = key.PK, key.SK
	case EntityClubMemberIndex:
		item.GSI2PK, item.GSI2SK = key.PK, key.SK
	}
	return item
}

func (i membershipItem) toEntity() entities.Membership {
	return entities.Membership{
		MembershipID: i.MembershipID,
		ClubID:       i.ClubID,
		UserID:       i.UserID,
		Role:         entities.MembershipRole(i.Role),
		Status:       entities.MembershipStatus(i.Status),
		JoinedAt:     i.JoinedAt,
		UpdatedAt:    i.UpdatedAt,
		JoinMessage:  i.JoinMessage,
		InvitedBy:    i.InvitedBy,
		ProcessedBy:  i.ProcessedBy,
		ProcessedAt:  i.ProcessedAt,
		Reason:       i.Reason,
	}
}

// membershipProjections returns the canonical, user-index and club-member-index
// items of m, in that order.
func membershipProjections(m entities.Membership) ([]abstractions.Item, error) {
	shapes := []membershipItem{
		newMembershipItem(m, membershipKey(m.ClubID, m.UserID), EntityClubMembership),
		newMembershipItem(m, userMembershipKey(m.UserID, m.ClubID), EntityUserMembership),
		newMembershipItem(m, clubMemberKey(m.ClubID, m.Role, m.UserID), EntityClubMemberIndex),
	}
	out := make([]abstractions.Item, 0, len(shapes))
	for _, s := range shapes {
		item, err := marshalItem(s)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

type userItem struct {
	PK          string    `dynamodbav:"PK"`
	SK          string    `dynamodbav:"SK"`
	EntityType  string    `dynamodbav:"EntityType"`
	UserID      string    `dynamodbav:"UserID"`
	Email       string    `dynamodbav:"Email"`
	DisplayName string    `dynamodbav:"DisplayName"`
	AvatarURL   string    `dynamodbav:"AvatarURL,omitempty"`
	SystemRole  string    `dynamodbav:"SystemRole"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

func newUserItem(u entities.User) userItem {
	key := userKey(u.ID)
	return userItem{
		PK:          key.PK,
		SK:          key.SK,
		EntityType:  EntityUser,
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		SystemRole:  string(u.SystemRole),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (i userItem) toEntity() entities.User {
	return entities.User{
		ID:          i.UserID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		AvatarURL:   i.AvatarURL,
		SystemRole:  entities.SystemRole(i.SystemRole),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func marshalItem(v interface{}) (abstractions.Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return item, nil
}

func unmarshalItem(item abstractions.Item, out interface{}) error {
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}

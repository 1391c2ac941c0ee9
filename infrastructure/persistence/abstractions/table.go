package abstractions

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table provides single-table persistence independent of the backing store.
// Repositories shape items; a Table only stores, indexes and conditions them.
type Table interface {
	// Get returns the item at key, or nil when it does not exist.
	Get(ctx context.Context, key Key, projection ...string) (Item, error)

	// Put writes a whole item under the given condition.
	Put(ctx context.Context, item Item, cond Condition) error

	// Update sets the given attributes and returns the item after the update.
	Update(ctx context.Context, key Key, set map[string]interface{}, cond Condition) (Item, error)

	// Query reads one page of a partition of the table or of a secondary index.
	Query(ctx context.Context, q Query) (QueryPage, error)

	// TransactWrite applies every operation or none of them.
	TransactWrite(ctx context.Context, ops []WriteOp) error
}

// ErrConditionFailed is returned when a write condition does not hold.
// In a transaction no operation is applied.
var ErrConditionFailed = errors.New("conditional check failed")

// Item is a stored record in attribute-value form
type Item = map[string]types.AttributeValue

// Attribute names shared by every item
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrGSI1PK     = "GSI1PK"
	AttrGSI1SK     = "GSI1SK"
	AttrGSI2PK     = "GSI2PK"
	AttrGSI2SK     = "GSI2SK"
	AttrEntityType = "EntityType"
)

// Key is the primary key of an item
type Key struct {
	PK string
	SK string
}

// Item returns the key in attribute-value form
func (k Key) Item() Item {
	return Item{
		AttrPK: &types.AttributeValueMemberS{Value: k.PK},
		AttrSK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

// Condition guards a write
type Condition int

const (
	ConditionNone Condition = iota
	// ConditionNotExists requires that no item is stored under the key.
	ConditionNotExists
	// ConditionExists requires that an item is stored under the key.
	ConditionExists
)

// WriteOp is one element of a transaction: either Put or Delete is set.
// Expect lists attribute values the stored item must still hold; a non-empty
// Expect also requires the item to exist.
type WriteOp struct {
	Put       Item
	Delete    *Key
	Condition Condition
	Expect    []Filter
}

// Expecting guards the operation on the current attribute values of the item
func (op WriteOp) Expecting(expect ...Filter) WriteOp {
	op.Expect = append(op.Expect, expect...)
	return op
}

// PutOp builds a conditional put
func PutOp(item Item, cond Condition) WriteOp {
	return WriteOp{Put: item, Condition: cond}
}

// DeleteOp builds an unconditional delete
func DeleteOp(key Key) WriteOp {
	return WriteOp{Delete: &key}
}

// Index selects the table or one of its global secondary indexes
type Index string

const (
	IndexTable Index = ""
	IndexGSI1  Index = "GSI1"
	IndexGSI2  Index = "GSI2"
)

// KeyAttributes returns the partition and sort key attribute names of an index
func (i Index) KeyAttributes() (string, string) {
	switch i {
	case IndexGSI1:
		return AttrGSI1PK, AttrGSI1SK
	case IndexGSI2:
		return AttrGSI2PK, AttrGSI2SK
	default:
		return AttrPK, AttrSK
	}
}

// Filter is an equality predicate applied after the key condition
type Filter struct {
	Name  string
	Value string
}

// Query selects items of one partition, optionally narrowed by a sort key
// prefix. Limit bounds the items evaluated before filters are applied.
type Query struct {
	Index          Index
	Partition      string
	SortPrefix     string
	Filters        []Filter
	Limit          int32
	StartKey       Item
	ConsistentRead bool
}

// QueryPage is one page of query results. LastKey is nil when the
// partition is exhausted.
type QueryPage struct {
	Items   []Item
	LastKey Item
}

// StringAttr reads a string attribute, returning "" when absent
func StringAttr(item Item, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

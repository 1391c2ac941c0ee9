package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"clubhub-backend/infrastructure/persistence/abstractions"
)

// Table is an in-memory abstractions.Table with the same key, index and
// transaction semantics as the DynamoDB adapter. Used for local development
// and tests.
type Table struct {
	mu    sync.RWMutex
	items map[abstractions.Key]abstractions.Item
}

// NewTable creates an empty in-memory table
func NewTable() *Table {
	return &Table{items: make(map[abstractions.Key]abstractions.Item)}
}

func keyOf(item abstractions.Item) (abstractions.Key, error) {
	k := abstractions.Key{
		PK: abstractions.StringAttr(item, abstractions.AttrPK),
		SK: abstractions.StringAttr(item, abstractions.AttrSK),
	}
	if k.PK == "" || k.SK == "" {
		return k, fmt.Errorf("item is missing its primary key")
	}
	return k, nil
}

func copyItem(item abstractions.Item) abstractions.Item {
	out := make(abstractions.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (t *Table) checkCondition(key abstractions.Key, cond abstractions.Condition) bool {
	_, exists := t.items[key]
	switch cond {
	case abstractions.ConditionNotExists:
		return !exists
	case abstractions.ConditionExists:
		return exists
	}
	return true
}

// Get returns a copy of the item at key, or nil
func (t *Table) Get(ctx context.Context, key abstractions.Key, projection ...string) (abstractions.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.items[key]
	if !ok {
		return nil, nil
	}
	if len(projection) == 0 {
		return copyItem(item), nil
	}
	out := make(abstractions.Item, len(projection))
	for _, name := range projection {
		if v, ok := item[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

// Put stores a copy of item
func (t *Table) Put(ctx context.Context, item abstractions.Item, cond abstractions.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyOf(item)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.checkCondition(key, cond) {
		return abstractions.ErrConditionFailed
	}
	t.items[key] = copyItem(item)
	return nil
}

// Update sets attributes on the item at key, creating it when no condition forbids it
func (t *Table) Update(ctx context.Context, key abstractions.Key, set map[string]interface{}, cond abstractions.Condition) (abstractions.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := make(abstractions.Item, len(set))
	for name, v := range set {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		values[name] = av
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.checkCondition(key, cond) {
		return nil, abstractions.ErrConditionFailed
	}
	item, ok := t.items[key]
	if !ok {
		item = key.Item()
	}
	item = copyItem(item)
	for name, av := range values {
		item[name] = av
	}
	t.items[key] = item
	return copyItem(item), nil
}

// TransactWrite validates every condition before applying any operation
func (t *Table) TransactWrite(ctx context.Context, ops []abstractions.WriteOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	keys := make([]abstractions.Key, len(ops))
	seen := make(map[abstractions.Key]bool, len(ops))
	for i, op := range ops {
		switch {
		case op.Put != nil:
			k, err := keyOf(op.Put)
			if err != nil {
				return err
			}
			keys[i] = k
		case op.Delete != nil:
			keys[i] = *op.Delete
		default:
			return fmt.Errorf("transaction operation %d has neither put nor delete", i)
		}
		if seen[keys[i]] {
			return fmt.Errorf("transaction touches %s/%s more than once", keys[i].PK, keys[i].SK)
		}
		seen[keys[i]] = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, op := range ops {
		if !t.checkCondition(keys[i], op.Condition) {
			return abstractions.ErrConditionFailed
		}
		if len(op.Expect) > 0 {
			current, ok := t.items[keys[i]]
			if !ok || !matches(current, op.Expect) {
				return abstractions.ErrConditionFailed
			}
		}
	}
	for i, op := range ops {
		if op.Put != nil {
			t.items[keys[i]] = copyItem(op.Put)
		} else {
			delete(t.items, keys[i])
		}
	}
	return nil
}

type indexEntry struct {
	sortKey string
	key     abstractions.Key
	item    abstractions.Item
}

func (e indexEntry) less(o indexEntry) bool {
	if e.sortKey != o.sortKey {
		return e.sortKey < o.sortKey
	}
	if e.key.PK != o.key.PK {
		return e.key.PK < o.key.PK
	}
	return e.key.SK < o.key.SK
}

// Query returns one page of a partition ordered by sort key. Items that lack
// the index key attributes are not part of the index.
func (t *Table) Query(ctx context.Context, q abstractions.Query) (abstractions.QueryPage, error) {
	if err := ctx.Err(); err != nil {
		return abstractions.QueryPage{}, err
	}
	pkAttr, skAttr := q.Index.KeyAttributes()

	t.mu.RLock()
	entries := make([]indexEntry, 0)
	for key, item := range t.items {
		if abstractions.StringAttr(item, pkAttr) != q.Partition {
			continue
		}
		if _, indexed := item[skAttr]; !indexed {
			continue
		}
		skValue := abstractions.StringAttr(item, skAttr)
		if !strings.HasPrefix(skValue, q.SortPrefix) {
			continue
		}
		entries = append(entries, indexEntry{sortKey: skValue, key: key, item: copyItem(item)})
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].less(entries[j]) })

	if q.StartKey != nil {
		start := indexEntry{
			sortKey: abstractions.StringAttr(q.StartKey, skAttr),
			key: abstractions.Key{
				PK: abstractions.StringAttr(q.StartKey, abstractions.AttrPK),
				SK: abstractions.StringAttr(q.StartKey, abstractions.AttrSK),
			},
		}
		idx := sort.Search(len(entries), func(i int) bool { return start.less(entries[i]) })
		entries = entries[idx:]
	}

	var page abstractions.QueryPage
	evaluated := entries
	if q.Limit > 0 && int(q.Limit) < len(entries) {
		evaluated = entries[:q.Limit]
	}
	for _, e := range evaluated {
		if matches(e.item, q.Filters) {
			page.Items = append(page.Items, e.item)
		}
	}
	if q.Limit > 0 && len(evaluated) == int(q.Limit) && len(evaluated) > 0 {
		last := evaluated[len(evaluated)-1].item
		page.LastKey = lastKey(last, q.Index)
	}
	return page, nil
}

func matches(item abstractions.Item, filters []abstractions.Filter) bool {
	for _, f := range filters {
		if abstractions.StringAttr(item, f.Name) != f.Value {
			return false
		}
	}
	return true
}

func lastKey(item abstractions.Item, index abstractions.Index) abstractions.Item {
	names := []string{abstractions.AttrPK, abstractions.AttrSK}
	if index != abstractions.IndexTable {
		pk, sk := index.KeyAttributes()
		names = append(names, pk, sk)
	}
	out := make(abstractions.Item, len(names))
	for _, n := range names {
		if v, ok := item[n]; ok {
			out[n] = v
		}
	}
	return out
}

// Len returns the number of stored items
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

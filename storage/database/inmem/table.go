package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/gateway"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNoRow       = errors.New("no row with this id")
)

type Op string

const (
	OpLoadAll Op = "loadAll"
	OpInsert  Op = "insert"
	OpUpdate  Op = "update"
	OpUpsert  Op = "upsert"
	OpDelete  Op = "delete"
)

// Call is one recorded call to a table.
type Call struct {
	Op Op
	ID string
}

type entity interface {
	EntityID() string
}

// Table is an in-memory gateway.Collection. Calls are recorded and failures can be injected per Op.
type Table[T entity] struct {
	mutex    sync.RWMutex
	table    map[string]T
	order    map[string]int
	seq      int
	calls    []Call
	failures map[Op]error
}

var _ gateway.Collection[entity] = (*Table[entity])(nil)

func NewTable[T entity]() *Table[T] {
	return &Table[T]{
		table:    make(map[string]T),
		order:    make(map[string]int),
		failures: make(map[Op]error),
	}
}

// Seed stores items without recording calls.
func (t *Table[T]) Seed(items ...T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, item := range items {
		t.put(item)
	}
}

// FailOn makes every later op call return err; a nil err removes the failure.
func (t *Table[T]) FailOn(op Op, err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err == nil {
		delete(t.failures, op)
		return
	}
	t.failures[op] = err
}

// Calls returns the recorded calls, oldest first.
func (t *Table[T]) Calls(ops ...Op) []Call {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	calls := make([]Call, 0, len(t.calls))
	for _, c := range t.calls {
		if len(ops) == 0 || containsOp(ops, c.Op) {
			calls = append(calls, c)
		}
	}
	return calls
}

func containsOp(ops []Op, op Op) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// Get returns the stored item, bypassing call recording.
func (t *Table[T]) Get(id string) (T, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	item, ok := t.table[id]
	return item, ok
}

func (t *Table[T]) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.table)
}

// record logs the call and returns the injected failure, if any. Callers hold the lock.
func (t *Table[T]) record(op Op, id string) error {
	t.calls = append(t.calls, Call{Op: op, ID: id})
	return t.failures[op]
}

func (t *Table[T]) put(item T) {
	id := item.EntityID()
	if _, ok := t.order[id]; !ok {
		t.seq++
		t.order[id] = t.seq
	}
	t.table[id] = item
}

func (t *Table[T]) LoadAll(_ context.Context) ([]T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.record(OpLoadAll, ""); err != nil {
		return nil, err
	}

	items := make([]T, 0, len(t.table))
	for _, item := range t.table {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return t.order[items[i].EntityID()] < t.order[items[j].EntityID()]
	})
	return items, nil
}

func (t *Table[T]) Insert(_ context.Context, item T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.record(OpInsert, item.EntityID()); err != nil {
		return err
	}
	if _, ok := t.table[item.EntityID()]; ok {
		return errors.Wrapf(ErrDuplicateID, "insert %s", item.EntityID())
	}
	t.put(item)
	return nil
}

// Update sets the given domain fields of the stored item.
func (t *Table[T]) Update(_ context.Context, id string, fields gateway.Fields) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.record(OpUpdate, id); err != nil {
		return err
	}
	item, ok := t.table[id]
	if !ok {
		return errors.Wrapf(ErrNoRow, "update %s", id)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &item,
		ErrorUnused: true,
		ZeroFields:  true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(fields)); err != nil {
		return errors.Wrapf(err, "update %s", id)
	}
	t.table[id] = item
	return nil
}

func (t *Table[T]) Upsert(_ context.Context, item T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.record(OpUpsert, item.EntityID()); err != nil {
		return err
	}
	t.put(item)
	return nil
}

func (t *Table[T]) Delete(_ context.Context, id string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.record(OpDelete, id); err != nil {
		return err
	}
	delete(t.table, id)
	delete(t.order, id)
	return nil
}

package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/takulai/takd/internal/core/ledger/entry"
	"github.com/takulai/takd/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes.
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (state before deletion for erases)
}

// ApplyStateTable wraps a StateView and tracks all modifications so they
// can be committed atomically and turned into transaction metadata.
// Nothing reaches the base view until Apply.
type ApplyStateTable struct {
	base  StateView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable over the given base view.
func NewApplyStateTable(base StateView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return nil, nil
		}
		return item.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base.
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists.
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if item, exists := t.items[k.Key]; exists {
		return item.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify.
		item.Action = ActionModify
		item.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry.
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if item.Action == ActionCache {
			item.Action = ActionModify
		}
		// An insert stays an insert with new data.
		item.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry.
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if item.Action == ActionInsert {
			// Insert then delete = no change.
			delete(t.items, k.Key)
			return nil
		}
		// Current keeps the state before deletion for metadata.
		item.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if item, exists := t.items[k.Key]; exists {
		return item.Action == ActionErase
	}
	return false
}

// ForEach iterates over all state entries of the base view.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Apply commits all changes to the base view and returns generated metadata.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}

	for key, item := range t.items {
		switch item.Action {
		case ActionCache:
			continue

		case ActionInsert:
			metadata.AffectedNodes = append(metadata.AffectedNodes,
				buildNode("CreatedNode", key, item.Current))
			if err := t.base.Insert(keylet.Keylet{Key: key}, item.Current); err != nil {
				return nil, err
			}

		case ActionModify:
			if bytes.Equal(item.Original, item.Current) {
				continue
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes,
				buildNode("ModifiedNode", key, item.Current))
			if err := t.base.Update(keylet.Keylet{Key: key}, item.Current); err != nil {
				return nil, err
			}

		case ActionErase:
			metadata.AffectedNodes = append(metadata.AffectedNodes,
				buildNode("DeletedNode", key, item.Current))
			if err := t.base.Erase(keylet.Keylet{Key: key}); err != nil {
				return nil, err
			}
		}
	}

	// Deterministic metadata ordering.
	sort.Slice(metadata.AffectedNodes, func(i, j int) bool {
		return metadata.AffectedNodes[i].LedgerIndex < metadata.AffectedNodes[j].LedgerIndex
	})

	return metadata, nil
}

func buildNode(nodeType string, key [32]byte, data []byte) AffectedNode {
	return AffectedNode{
		NodeType:        nodeType,
		LedgerEntryType: entry.TypeOf(data).String(),
		LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
	}
}

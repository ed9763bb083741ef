package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"rental-quotes/models"
)

var (
	ErrItemAlreadyPresent = errors.New("equipment is already in this quote")
	ErrItemNotPresent     = errors.New("equipment is not in this quote")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrUnknownItemOp      = errors.New("unknown item operation")
)

// Item edit operations accepted by ItemEditor.Apply
const (
	ItemOpAdd         = "add"
	ItemOpSetQuantity = "set_quantity"
	ItemOpRemove      = "remove"
)

// ItemEditor stages changes to a quote's items against the last saved value
type ItemEditor struct {
	saved  []models.CartLineItem
	staged []models.CartLineItem
}

// NewItemEditor starts an edit buffer from the saved items
func NewItemEditor(saved []models.CartLineItem) *ItemEditor {
	return &ItemEditor{saved: copyItems(saved), staged: copyItems(saved)}
}

func copyItems(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Equipment.Specifications = append([]string{}, items[i].Equipment.Specifications...)
	}
	return out
}

func indexOf(items []models.CartLineItem, equipmentID int64) int {
	for i, item := range items {
		if item.Equipment.ID == equipmentID {
			return i
		}
	}
	return -1
}

// Items returns the staged items
func (e *ItemEditor) Items() []models.CartLineItem {
	return copyItems(e.staged)
}

// Add stages equipment with quantity 1. Equipment already present is rejected.
func (e *ItemEditor) Add(equipment models.Equipment) error {
	if indexOf(e.staged, equipment.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrItemAlreadyPresent, equipment.Name)
	}
	e.staged = append(e.staged, models.CartLineItem{Equipment: equipment, Quantity: 1})
	return nil
}

// SetQuantity stages a new quantity. Quantities below 1 are rejected; use Remove.
func (e *ItemEditor) SetQuantity(equipmentID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := indexOf(e.staged, equipmentID)
	if i < 0 {
		return ErrItemNotPresent
	}
	e.staged[i].Quantity = quantity
	return nil
}

// Remove stages removal of the equipment's line
func (e *ItemEditor) Remove(equipmentID int64) error {
	i := indexOf(e.staged, equipmentID)
	if i < 0 {
		return ErrItemNotPresent
	}
	e.staged = append(e.staged[:i], e.staged[i+1:]...)
	return nil
}

// Apply stages a batch of operations. lookup resolves equipment for additions.
// On error the buffer keeps the operations applied before the failing one.
func (e *ItemEditor) Apply(ops []models.ItemEditOp, lookup func(id int64) (models.Equipment, error)) error {
	for i, op := range ops {
		var err error
		switch op.Op {
		case ItemOpAdd:
			var equipment models.Equipment
			equipment, err = lookup(op.EquipmentID)
			if err == nil {
				err = e.Add(equipment)
			}
		case ItemOpSetQuantity:
			err = e.SetQuantity(op.EquipmentID, op.Quantity)
		case ItemOpRemove:
			err = e.Remove(op.EquipmentID)
		default:
			err = fmt.Errorf("%w %q", ErrUnknownItemOp, op.Op)
		}
		if err != nil {
			return fmt.Errorf("operation %d (%s equipment %d): %w", i+1, op.Op, op.EquipmentID, err)
		}
	}
	return nil
}

// Options returns catalog equipment not yet in the quote, filtered by a
// case-insensitive match on name or category
func (e *ItemEditor) Options(catalog []models.Equipment, search string) []models.Equipment {
	term := strings.ToLower(strings.TrimSpace(search))
	options := []models.Equipment{}
	for _, equipment := range catalog {
		if indexOf(e.staged, equipment.ID) >= 0 {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(equipment.Name), term) &&
			!strings.Contains(strings.ToLower(equipment.Category), term) {
			continue
		}
		options = append(options, equipment)
	}
	return options
}

// Dirty reports whether the staged items differ from the saved ones
func (e *ItemEditor) Dirty() bool {
	return !reflect.DeepEqual(e.staged, e.saved)
}

// Diff describes staged changes line by line: "- " for removed, "+ " for added
func (e *ItemEditor) Diff() string {
	if !e.Dirty() {
		return ""
	}
	dmp := diffmatchpatch.New()
	before, after, lines := dmp.DiffLinesToChars(itemLines(e.saved), itemLines(e.staged))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(before, after, false), lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func itemLines(items []models.CartLineItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s (#%d) x %d\n", item.Equipment.Name, item.Equipment.ID, item.Quantity)
	}
	return b.String()
}

// Commit replaces both buffers with the server's saved value
func (e *ItemEditor) Commit(saved []models.CartLineItem) {
	e.saved = copyItems(saved)
	e.staged = copyItems(saved)
}

package notebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type (
	// ItemState tracks where an item stands. New items start in
	// progress, any transition inside the closed set is allowed.
	ItemState string

	Item struct {
		ID          uint64
		ListID      uint64
		Name        string
		Description string
		State       ItemState
	}
)

const (
	ItemInProgress = ItemState("in-progress")
	ItemComplete   = ItemState("complete")
	ItemCanceled   = ItemState("canceled")
)

var validItemStates = map[ItemState]bool{
	ItemInProgress: true,
	ItemComplete:   true,
	ItemCanceled:   true,
}

// ParseItemState validates free-form input against the closed state set.
func ParseItemState(v string) (ItemState, error) {
	s := ItemState(v)
	if !validItemStates[s] {
		return ItemState(""), InvalidItemState{Value: v}
	}
	return s, nil
}

func (c *Control) CreateItem(ctx context.Context, listID uint64, name, description string) (uint64, error) {
	id, err := newID()
	if err != nil {
		return 0, err
	}
	_, err = c.db.ExecContext(ctx, `insert into items(item_id, list_id, name, description, state) values (?, ?, ?, ?, ?)`,
		int64(id), int64(listID), name, nullableText(description), string(ItemInProgress))
	if err != nil {
		return 0, fmt.Errorf("unable to create item on list %v, cause %w", listID, err)
	}
	return id, nil
}

func (c *Control) GetItem(ctx context.Context, listID, itemID uint64) (Item, error) {
	var it Item
	var desc sql.NullString
	var state string
	err := c.db.QueryRowContext(ctx, `select name, description, state from items where item_id = ? and list_id = ?`,
		int64(itemID), int64(listID)).Scan(&it.Name, &desc, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ItemNotFound{ID: itemID}
	} else if err != nil {
		return Item{}, fmt.Errorf("unable to get item %v, cause %w", itemID, err)
	}
	it.ID, it.ListID = itemID, listID
	it.Description, it.State = desc.String, ItemState(state)
	return it, nil
}

func (c *Control) ListItems(ctx context.Context, listID uint64) ([]Item, error) {
	rows, err := c.db.QueryContext(ctx, `select item_id, name, description, state from items where list_id = ? order by name`,
		int64(listID))
	if err != nil {
		return nil, fmt.Errorf("unable to list items of list %v, cause %w", listID, err)
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var id int64
		var it Item
		var desc sql.NullString
		var state string
		err = rows.Scan(&id, &it.Name, &desc, &state)
		if err != nil {
			return nil, fmt.Errorf("unable to list items of list %v, cause %w", listID, err)
		}
		it.ID, it.ListID = uint64(id), listID
		it.Description, it.State = desc.String, ItemState(state)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (c *Control) UpdateItem(ctx context.Context, listID, itemID uint64, name, description string, state ItemState) error {
	if _, err := ParseItemState(string(state)); err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx, `update items set name = ?, description = ?, state = ? where item_id = ? and list_id = ?`,
		name, nullableText(description), string(state), int64(itemID), int64(listID))
	if err != nil {
		return fmt.Errorf("unable to update item %v, cause %w", itemID, err)
	}
	return mustAffect(res, ItemNotFound{ID: itemID})
}

func (c *Control) DeleteItem(ctx context.Context, listID, itemID uint64) error {
	_, err := c.db.ExecContext(ctx, `delete from items where item_id = ? and list_id = ?`, int64(itemID), int64(listID))
	if err != nil {
		return fmt.Errorf("unable to delete item %v, cause %w", itemID, err)
	}
	return nil
}

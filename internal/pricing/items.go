package pricing

import "fmt"

// Item identifies a tradeable item on the GW2 trading post. The value is
// the item's API id on the commerce endpoints.
type Item int

// The items involved in ecto gambling. The set is fixed: the cache only
// ever tracks prices for items the valuator can use.
const (
	// ItemEctoplasm is a Glob of Ectoplasm.
	ItemEctoplasm Item = 19721
	// ItemRuneOfHolding is a Superior Rune of Holding.
	ItemRuneOfHolding Item = 83410
)

// Items returns all known tradeable items.
func Items() []Item {
	return []Item{ItemEctoplasm, ItemRuneOfHolding}
}

// Known reports whether the item is one of the fixed tradeable set.
func (i Item) Known() bool {
	switch i {
	case ItemEctoplasm, ItemRuneOfHolding:
		return true
	}
	return false
}

// String returns a human-readable item name.
func (i Item) String() string {
	switch i {
	case ItemEctoplasm:
		return "Glob of Ectoplasm"
	case ItemRuneOfHolding:
		return "Superior Rune of Holding"
	}
	return fmt.Sprintf("item(%d)", int(i))
}

// Package cart implements the ordered ledger of configured line items.
package cart

import (
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a quantity change targets a signature that
// is not in the ledger.
var ErrItemNotFound = errors.New("line item not found")

// LineItem is one distinct configuration in the ledger.
type LineItem struct {
	Signature   string
	ProductID   string
	DisplayName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal returns UnitPrice × Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Signature returns the ledger identity of a configured product: the bare id,
// or id and summary joined by "|". Distinct selections with equal summaries
// share a signature and therefore merge.
func Signature(productID, summary string, hasSummary bool) string {
	if !hasSummary {
		return productID
	}
	return productID + "|" + summary
}

// DisplayName returns the line label shown to the user.
func DisplayName(name, summary string, hasSummary bool) string {
	if !hasSummary {
		return name
	}
	return name + " - " + summary
}

// ParseQuantity interprets raw user input for an absolute quantity. A leading
// integer is honoured ("3abc" is 3). Input without one, and zero, become 1.
// Negative values are returned as is.
func ParseQuantity(raw string) int {
	i := 0
	for i < len(raw) && isSpace(raw[i]) {
		i++
	}
	start := i
	if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
		i++
	}
	digits := i
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == digits {
		return 1
	}
	n, err := strconv.Atoi(raw[start:i])
	if err != nil {
		// out of range
		if raw[start] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if n == 0 {
		return 1
	}
	return n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// Ledger holds line items in insertion order, unique by signature.
// The zero value is an empty ledger.
//
// Ledger is not safe for concurrent use.
type Ledger struct {
	items []LineItem
}

// Upsert adds one unit of signature. An existing entry keeps its original
// unit price and display name; otherwise a new entry with quantity 1 is
// appended. It returns the resulting entry.
func (l *Ledger) Upsert(productID, signature, displayName string, unitPrice decimal.Decimal) LineItem {
	if i := l.index(signature); i >= 0 {
		l.items[i].Quantity++
		return l.items[i]
	}
	li := LineItem{
		Signature:   signature,
		ProductID:   productID,
		DisplayName: displayName,
		UnitPrice:   unitPrice,
		Quantity:    1,
	}
	l.items = append(l.items, li)
	return li
}

// ChangeQuantity adds delta to the entry's quantity, removing the entry when
// the result drops below 1. Increments saturate at math.MaxInt.
func (l *Ledger) ChangeQuantity(signature string, delta int) (LineItem, error) {
	i := l.index(signature)
	if i < 0 {
		return LineItem{}, errors.Wrapf(ErrItemNotFound, "signature %q", signature)
	}
	return l.set(i, addSaturated(l.items[i].Quantity, delta)), nil
}

// SetQuantity sets the entry's quantity, removing the entry when qty < 1.
func (l *Ledger) SetQuantity(signature string, qty int) (LineItem, error) {
	i := l.index(signature)
	if i < 0 {
		return LineItem{}, errors.Wrapf(ErrItemNotFound, "signature %q", signature)
	}
	return l.set(i, qty), nil
}

// set applies qty to entry i. The returned item has Quantity 0 when removed.
func (l *Ledger) set(i, qty int) LineItem {
	if qty < 1 {
		li := l.items[i]
		l.items = append(l.items[:i], l.items[i+1:]...)
		li.Quantity = 0
		return li
	}
	l.items[i].Quantity = qty
	return l.items[i]
}

// Remove deletes the entry if present and reports whether it was.
func (l *Ledger) Remove(signature string) bool {
	i := l.index(signature)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// Total returns Σ(unit price × quantity).
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range l.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// ItemCount returns Σ(quantity), saturating at math.MaxInt.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, li := range l.items {
		n = addSaturated(n, li.Quantity)
	}
	return n
}

// Len returns the number of distinct entries.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Items returns a copy of the entries in insertion order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.items = nil
}

// addSaturated returns a+b for a >= 0, clamped to math.MaxInt.
func addSaturated(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func (l *Ledger) index(signature string) int {
	for i, li := range l.items {
		if li.Signature == signature {
			return i
		}
	}
	return -1
}

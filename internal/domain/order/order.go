// Package order turns a cart into an outbound order transcript and link.
package order

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/money"
)

// Transcript defaults.
const (
	DefaultHeader  = "¡Hola! Me gustaría hacer el siguiente pedido:\n\n"
	DefaultClosing = "¡Gracias! 🙏"
	DefaultBaseURL = "https://wa.me"

	separator = "━━━━━━━━━━━━━━━━━━━━"
)

// ErrEmptyCart is returned when checking out a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// ConfigurationError reports a missing checkout setting.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return "checkout not configured: missing " + e.Field
}

// Transcript is the formatted order message.
type Transcript struct {
	Text  string
	Total decimal.Decimal
	// Items is the number of line items listed.
	Items int
}

// Formatter renders transcripts. Empty Header and Closing fall back to the
// defaults.
type Formatter struct {
	Money   money.Formatter
	Header  string
	Closing string
}

// Format renders items in order. It returns ErrEmptyCart when items is empty.
func (f Formatter) Format(items []cart.LineItem) (Transcript, error) {
	if len(items) == 0 {
		return Transcript{}, ErrEmptyCart
	}

	header := f.Header
	if header == "" {
		header = DefaultHeader
	}
	closing := f.Closing
	if closing == "" {
		closing = DefaultClosing
	}

	var (
		b     strings.Builder
		total = decimal.Zero
	)
	b.WriteString(header)
	for i, li := range items {
		sub := li.Subtotal()
		total = total.Add(sub)

		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(li.DisplayName)
		b.WriteString("\n   Cantidad: ")
		b.WriteString(strconv.Itoa(li.Quantity))
		b.WriteString("\n   Precio unitario: ")
		b.WriteString(f.Money.Format(li.UnitPrice))
		b.WriteString("\n   Subtotal: ")
		b.WriteString(f.Money.Format(sub))
		b.WriteString("\n\n")
	}
	b.WriteString(separator + "\n")
	b.WriteString("💰 TOTAL: " + f.Money.Format(total) + "\n")
	b.WriteString(separator + "\n\n")
	b.WriteString(closing)

	return Transcript{Text: b.String(), Total: total, Items: len(items)}, nil
}

// BuildLink returns base/destination?text=<transcript>, with the transcript
// percent-encoded as a URI component.
func BuildLink(base, destination string, t Transcript) (string, error) {
	if destination == "" {
		return "", &ConfigurationError{Field: "destination"}
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + destination + "?text=" + EncodeComponent(t.Text), nil
}

// EncodeComponent percent-encodes s byte-wise, leaving only ASCII letters,
// digits and -_.!~*'() unescaped.
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

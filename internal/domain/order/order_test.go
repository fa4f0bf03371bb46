package order

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/money"
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testItems() []cart.LineItem {
	return []cart.LineItem{
		{Signature: "1", ProductID: "1", DisplayName: "Muzzarella", UnitPrice: price(8500), Quantity: 2},
		{Signature: "emp-u|Carne x3", ProductID: "emp-u", DisplayName: "Empanadas (Unidad) - Carne x3", UnitPrice: price(6000), Quantity: 1},
	}
}

func TestFormat(t *testing.T) {
	f := Formatter{Money: money.New(money.DefaultSymbol)}

	tr, err := f.Format(testItems())
	require.NoError(t, err)

	want := "¡Hola! Me gustaría hacer el siguiente pedido:\n\n" +
		"1. Muzzarella\n" +
		"   Cantidad: 2\n" +
		"   Precio unitario: $8.500\n" +
		"   Subtotal: $17.000\n\n" +
		"2. Empanadas (Unidad) - Carne x3\n" +
		"   Cantidad: 1\n" +
		"   Precio unitario: $6.000\n" +
		"   Subtotal: $6.000\n\n" +
		"━━━━━━━━━━━━━━━━━━━━\n" +
		"💰 TOTAL: $23.000\n" +
		"━━━━━━━━━━━━━━━━━━━━\n\n" +
		"¡Gracias! 🙏"
	assert.Equal(t, want, tr.Text)
	assert.True(t, price(23000).Equal(tr.Total))
	assert.Equal(t, 2, tr.Items)
}

func TestFormat_CustomHeaderAndClosing(t *testing.T) {
	f := Formatter{Money: money.New("ARS "), Header: "Pedido Mimuza\n", Closing: "Chau"}

	tr, err := f.Format(testItems()[:1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tr.Text, "Pedido Mimuza\n1. Muzzarella\n"))
	assert.Contains(t, tr.Text, "TOTAL: ARS 17.000\n")
	assert.True(t, strings.HasSuffix(tr.Text, "\n\nChau"))
}

func TestFormat_EmptyCart(t *testing.T) {
	_, err := Formatter{}.Format(nil)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildLink(t *testing.T) {
	tr := Transcript{Text: "¡Hola! 1 x Pizza (Grande)\n$8.500 & más"}

	link, err := BuildLink("https://wa.me/", "5491122512344", tr)
	require.NoError(t, err)

	prefix := "https://wa.me/5491122512344?text="
	require.True(t, strings.HasPrefix(link, prefix))
	enc := strings.TrimPrefix(link, prefix)
	assert.NotContains(t, enc, "+")
	assert.NotContains(t, enc, " ")
	assert.Contains(t, enc, "%20")
	assert.Contains(t, enc, "(Grande)")

	decoded, err := url.PathUnescape(enc)
	require.NoError(t, err)
	assert.Equal(t, tr.Text, decoded)
}

func TestBuildLink_DefaultBase(t *testing.T) {
	link, err := BuildLink("", "123", Transcript{Text: "a b"})
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/123?text=a%20b", link)
}

func TestBuildLink_MissingDestination(t *testing.T) {
	_, err := BuildLink("https://wa.me", "", Transcript{Text: "x"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "destination", cfgErr.Field)
}

func TestEncodeComponent(t *testing.T) {
	tests := map[string]string{
		"abcXYZ019":     "abcXYZ019",
		"-_.!~*'()":     "-_.!~*'()",
		"a b":           "a%20b",
		"a+b&c=d?e/f#g": "a%2Bb%26c%3Dd%3Fe%2Ff%23g",
		"\n":            "%0A",
		"ñ":             "%C3%B1",
		"💰":             "%F0%9F%92%B0",
	}
	for in, want := range tests {
		assert.Equal(t, want, EncodeComponent(in), "input %q", in)
	}
}

package quotes_test

import (
	"math/rand/v2"
	"testing"

	"islamicTodo/internal/quotes"

	"github.com/stretchr/testify/assert"
)

func TestPicker_Random(t *testing.T) {
	p := quotes.NewPicker(rand.NewPCG(1, 2))

	seen := make(map[string]int)
	for i := 0; i < 400; i++ {
		q := p.Random()
		assert.Contains(t, quotes.Default(), q)
		seen[q.Source]++
	}
	// все четыре цитаты выпадают
	assert.Len(t, seen, 4)
}

func TestPicker_SameSeedSameSequence(t *testing.T) {
	a := quotes.NewPicker(rand.NewPCG(7, 7))
	b := quotes.NewPicker(rand.NewPCG(7, 7))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Random(), b.Random())
	}
}

func TestPicker_CustomQuotes(t *testing.T) {
	only := quotes.Quote{Text: "Verily, with hardship comes ease.", Source: "Quran 94:6"}
	p := quotes.NewPicker(nil, only)

	assert.Equal(t, only, p.Random())
	assert.Equal(t, []quotes.Quote{only}, p.All())
}

func TestQuote_String(t *testing.T) {
	assert.Equal(t, "Indeed, Allah is with the patient. (Quran 2:153)", quotes.Default()[0].String())
}

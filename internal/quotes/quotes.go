package quotes

import (
	"math/rand/v2"
	"sync"
)

type Quote struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

var defaultQuotes = []Quote{
	{Text: "Indeed, Allah is with the patient.", Source: "Quran 2:153"},
	{Text: "And He found you lost and guided you.", Source: "Quran 93:7"},
	{Text: "So remember Me; I will remember you.", Source: "Quran 2:152"},
	{Text: "Do not despair of the mercy of Allah.", Source: "Quran 39:53"},
}

func Default() []Quote {
	return append([]Quote(nil), defaultQuotes...)
}

func (q Quote) String() string {
	return q.Text + " (" + q.Source + ")"
}

type Picker struct {
	quotes []Quote

	mtx sync.Mutex
	rnd *rand.Rand
}

// NewPicker: src == nil - глобальный генератор
func NewPicker(src rand.Source, quotes ...Quote) *Picker {
	if len(quotes) == 0 {
		quotes = Default()
	}
	p := &Picker{quotes: quotes}
	if src != nil {
		p.rnd = rand.New(src)
	}
	return p
}

func (p *Picker) Random() Quote {
	if p.rnd == nil {
		return p.quotes[rand.IntN(len(p.quotes))]
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.quotes[p.rnd.IntN(len(p.quotes))]
}

func (p *Picker) All() []Quote {
	return append([]Quote(nil), p.quotes...)
}

// Package catalog loads card definitions from external sources (JSON,
// CSV, SQLite, Postgres) into the immutable in-memory catalog the game
// engine consumes. Loaders parse and structurally validate cards; deck
// legality stays with the card package.
package catalog

import (
	"fmt"
	"sort"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// ImportError reports a malformed record in a card source. Line is the
// 1-based position of the offending record (file line for CSV, record
// index for JSON, row number for database loaders), 0 when the problem
// is not tied to a single record.
type ImportError struct {
	Source string
	Line   int
	Reason string
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import %s: record %d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("import %s: %s", e.Source, e.Reason)
}

func newImportError(source string, line int, format string, args ...interface{}) *ImportError {
	return &ImportError{
		Source: source,
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Catalog is an immutable card lookup shared by every game on a host.
// Build one with New and hand it around freely; it is safe for
// concurrent use because nothing mutates it after construction.
type Catalog struct {
	byID map[string]card.Card
	ids  []string
}

// New builds a catalog from card definitions. Every card must be
// internally consistent and IDs must be unique.
func New(cards ...card.Card) (*Catalog, error) {
	c := &Catalog{
		byID: make(map[string]card.Card, len(cards)),
		ids:  make([]string, 0, len(cards)),
	}
	for _, def := range cards {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[def.ID]; exists {
			return nil, fmt.Errorf("duplicate card id %q", def.ID)
		}
		c.byID[def.ID] = def
		c.ids = append(c.ids, def.ID)
	}
	return c, nil
}

// Get returns the card with the given ID.
func (c *Catalog) Get(id string) (card.Card, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Cards returns every card sorted by ID.
func (c *Catalog) Cards() []card.Card {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	sort.Strings(ids)

	out := make([]card.Card, len(ids))
	for i, id := range ids {
		out[i] = c.byID[id]
	}
	return out
}

// BuildDeck resolves a multiset decklist against the catalog into an
// ordered deck. The result is not legality-checked; pass it through
// card.Validate before seating a player with it.
func (c *Catalog) BuildDeck(list card.Decklist) (card.Deck, error) {
	return card.Build(c.Get, list)
}

package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// PostgresLoader reads the card catalog from the shared cards table,
// typically seeded by scripts/import_cards.go.
type PostgresLoader struct {
	pool *pgxpool.Pool
}

// NewPostgresLoader wraps an existing connection pool. The caller owns
// the pool's lifecycle.
func NewPostgresLoader(pool *pgxpool.Pool) *PostgresLoader {
	return &PostgresLoader{pool: pool}
}

// LoadAll reads every card in the table, sorted by ID.
func (l *PostgresLoader) LoadAll(ctx context.Context) ([]card.Card, error) {
	rows, err := l.pool.Query(ctx, selectCards)
	if err != nil {
		return nil, newImportError("postgres", 0, "%v", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rowNum := 1; rows.Next(); rowNum++ {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, newImportError("postgres", rowNum, "%v", err)
		}
		def, err := rec.toCard()
		if err != nil {
			return nil, newImportError("postgres", rowNum, "%v", err)
		}
		cards = append(cards, def)
	}
	if err := rows.Err(); err != nil {
		return nil, newImportError("postgres", 0, "%v", err)
	}
	return cards, nil
}

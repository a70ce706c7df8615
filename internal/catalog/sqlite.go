package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cards (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	kind         TEXT NOT NULL,
	hp           INTEGER,
	energy_type  TEXT,
	stage        TEXT,
	evolves_from TEXT,
	retreat_cost INTEGER,
	weakness     TEXT,
	resistance   TEXT,
	attacks      TEXT,
	basic_energy INTEGER,
	trainer_type TEXT,
	rules_text   TEXT,
	effect       TEXT
)`

const selectCards = `
SELECT id, name, kind, hp, energy_type, stage, evolves_from, retreat_cost,
       weakness, resistance, attacks, basic_energy, trainer_type, rules_text, effect
FROM cards
ORDER BY id`

// SQLiteLoader reads the card catalog from a local SQLite file.
type SQLiteLoader struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite catalog in WAL mode.
func OpenSQLite(path string) (*SQLiteLoader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite catalog path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite catalog: %w", err)
	}
	return &SQLiteLoader{db: db}, nil
}

// EnsureSchema creates the cards table when it does not exist yet.
func (l *SQLiteLoader) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create cards table: %w", err)
	}
	return nil
}

// LoadAll reads every card in the file, sorted by ID.
func (l *SQLiteLoader) LoadAll(ctx context.Context) ([]card.Card, error) {
	rows, err := l.db.QueryContext(ctx, selectCards)
	if err != nil {
		return nil, newImportError("sqlite", 0, "%v", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rowNum := 1; rows.Next(); rowNum++ {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, newImportError("sqlite", rowNum, "%v", err)
		}
		def, err := rec.toCard()
		if err != nil {
			return nil, newImportError("sqlite", rowNum, "%v", err)
		}
		cards = append(cards, def)
	}
	if err := rows.Err(); err != nil {
		return nil, newImportError("sqlite", 0, "%v", err)
	}
	return cards, nil
}

// Close releases the database handle.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}

// scanRecord reads one cards row through any row scanner. Optional
// columns may be NULL in hand-maintained databases.
func scanRecord(scan func(dest ...interface{}) error) (record, error) {
	var (
		rec         record
		hp          sql.NullInt64
		energyType  sql.NullString
		stage       sql.NullString
		evolvesFrom sql.NullString
		retreatCost sql.NullInt64
		weakness    sql.NullString
		resistance  sql.NullString
		attacks     sql.NullString
		basicEnergy sql.NullBool
		trainerType sql.NullString
		rulesText   sql.NullString
		effect      sql.NullString
	)
	err := scan(
		&rec.id, &rec.name, &rec.kind,
		&hp, &energyType, &stage, &evolvesFrom, &retreatCost,
		&weakness, &resistance, &attacks, &basicEnergy,
		&trainerType, &rulesText, &effect,
	)
	if err != nil {
		return record{}, err
	}
	rec.hp = int(hp.Int64)
	rec.energyType = energyType.String
	rec.stage = stage.String
	rec.evolvesFrom = evolvesFrom.String
	rec.retreatCost = int(retreatCost.Int64)
	rec.weakness = weakness.String
	rec.resistance = resistance.String
	rec.attacks = attacks.String
	rec.basicEnergy = basicEnergy.Bool
	rec.trainerType = trainerType.String
	rec.rulesText = rulesText.String
	rec.effect = effect.String
	return rec, nil
}

package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/game/energy"
)

const insertCard = `
INSERT INTO cards (id, name, kind, hp, energy_type, stage, evolves_from, retreat_cost,
                   weakness, resistance, attacks, basic_energy, trainer_type, rules_text, effect)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// openSeededDB creates a catalog file and returns a raw handle for
// seeding rows, the way an external exporter would.
func openSeededDB(t *testing.T) (*SQLiteLoader, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.db")

	loader, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })
	require.NoError(t, loader.EnsureSchema(context.Background()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return loader, db
}

// TestSQLiteLoader verifies loading all three kinds from a seeded
// file, including NULLs in the unused columns.
func TestSQLiteLoader(t *testing.T) {
	loader, db := openSeededDB(t)
	ctx := context.Background()

	_, err := db.Exec(insertCard,
		"hv-040", "Rockhorn", "POKEMON", 90, "FIGHTING", "BASIC", "", 2,
		"WATER", "LIGHTNING", "Headbutt:COLORLESS:10|Rock Slam:FIGHTING,FIGHTING:40", nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = db.Exec(insertCard,
		"en-fight", "Fighting Energy", "ENERGY", nil, "FIGHTING", nil, nil, nil,
		nil, nil, nil, 1, nil, nil, nil)
	require.NoError(t, err)
	_, err = db.Exec(insertCard,
		"tr-gust", "Gust of Wind", "TRAINER", nil, nil, nil, nil, nil,
		nil, nil, nil, nil, "ITEM", "Switch the opposing Active Pokémon.", "gust")
	require.NoError(t, err)

	cards, err := loader.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	// Sorted by ID: en-fight, hv-040, tr-gust.
	assert.Equal(t, "en-fight", cards[0].ID)
	assert.True(t, cards[0].IsBasicEnergy())

	rock := cards[1]
	require.NotNil(t, rock.Pokemon)
	assert.Equal(t, 90, rock.Pokemon.HP)
	assert.Equal(t, energy.Water, rock.Pokemon.Weakness)
	assert.Equal(t, energy.Lightning, rock.Pokemon.Resistance)
	require.Len(t, rock.Pokemon.Attacks, 2)
	assert.Equal(t, energy.Cost{energy.Fighting, energy.Fighting}, rock.Pokemon.Attacks[1].Cost)

	gust := cards[2]
	require.NotNil(t, gust.Trainer)
	assert.Equal(t, card.TrainerItem, gust.Trainer.TrainerType)
	assert.Equal(t, "gust", gust.Trainer.Effect)
}

// TestSQLiteLoaderEmpty verifies that an empty table loads an empty
// catalog.
func TestSQLiteLoaderEmpty(t *testing.T) {
	loader, _ := openSeededDB(t)

	cards, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
}

// TestSQLiteLoaderBadRow verifies that an inconsistent row is reported
// with its position.
func TestSQLiteLoaderBadRow(t *testing.T) {
	loader, db := openSeededDB(t)

	_, err := db.Exec(insertCard,
		"hv-bad", "Glitchmon", "POKEMON", nil, "PSYCHIC", "BASIC", "", 1,
		nil, nil, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = loader.LoadAll(context.Background())
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "sqlite", importErr.Source)
	assert.Equal(t, 1, importErr.Line)
	assert.Contains(t, importErr.Reason, "hp")
}

// TestOpenSQLiteRequiresPath verifies the empty-path guard.
func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

// TestSQLiteLoaderIntoCatalog verifies the loaded cards assemble into
// a working catalog.
func TestSQLiteLoaderIntoCatalog(t *testing.T) {
	loader, db := openSeededDB(t)

	_, err := db.Exec(insertCard,
		"en-fight", "Fighting Energy", "ENERGY", nil, "FIGHTING", nil, nil, nil,
		nil, nil, nil, 1, nil, nil, nil)
	require.NoError(t, err)

	cards, err := loader.LoadAll(context.Background())
	require.NoError(t, err)

	c, err := New(cards...)
	require.NoError(t, err)

	deck, err := c.BuildDeck(card.Decklist{"en-fight": 6})
	require.NoError(t, err)
	assert.Len(t, deck, 6)
}

package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// csvColumns is the flat column layout, one card per row:
//
//	id, name, kind, hp, energy_type, stage, evolves_from, retreat_cost,
//	weakness, resistance, attacks, basic_energy, trainer_type,
//	rules_text, effect
//
// The attacks column uses the packed encoding described at
// parsePackedAttacks. The database tables use the same columns.
const csvColumns = 15

// LoadCSV reads cards from a CSV export. The first row must be a
// header and is skipped; numeric fields may be left empty.
func LoadCSV(r io.Reader) ([]card.Card, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newImportError("csv", 0, "missing header row")
		}
		return nil, wrapCSVError(err)
	}
	if len(header) != csvColumns {
		return nil, newImportError("csv", 1, "header has %d columns, want %d", len(header), csvColumns)
	}

	var cards []card.Card
	seen := make(map[string]int)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}
		if len(row) != csvColumns {
			return nil, newImportError("csv", line, "row has %d columns, want %d", len(row), csvColumns)
		}

		rec, err := recordFromRow(row)
		if err != nil {
			return nil, newImportError("csv", line, "%v", err)
		}
		if prev, dup := seen[rec.id]; dup {
			return nil, newImportError("csv", line, "card id %q already used on line %d", rec.id, prev)
		}
		seen[rec.id] = line

		def, err := rec.toCard()
		if err != nil {
			return nil, newImportError("csv", line, "%v", err)
		}
		cards = append(cards, def)
	}
	return cards, nil
}

func recordFromRow(row []string) (record, error) {
	hp, err := parseOptionalInt(row[3])
	if err != nil {
		return record{}, err
	}
	retreat, err := parseOptionalInt(row[7])
	if err != nil {
		return record{}, err
	}
	return record{
		id:          strings.TrimSpace(row[0]),
		name:        strings.TrimSpace(row[1]),
		kind:        row[2],
		hp:          hp,
		energyType:  row[4],
		stage:       row[5],
		evolvesFrom: row[6],
		retreatCost: retreat,
		weakness:    row[8],
		resistance:  row[9],
		attacks:     row[10],
		basicEnergy: parseBool(row[11]),
		trainerType: row[12],
		rulesText:   row[13],
		effect:      row[14],
	}, nil
}

func parseOptionalInt(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return n, nil
}

func parseBool(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	return trimmed == "true" || trimmed == "1" || trimmed == "yes"
}

func wrapCSVError(err error) *ImportError {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return newImportError("csv", parseErr.Line, "%v", parseErr.Err)
	}
	return newImportError("csv", 0, "%v", err)
}

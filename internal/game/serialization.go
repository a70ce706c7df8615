package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkmn-engine/arena-server-go/internal/game/card"
)

// Snapshot is a complete, self-contained copy of a game's state:
// every zone of both players, the turn position, and the outcome.
// Snapshots back replay files, divergence checks between two runs of
// the same seed, and persistence.
type Snapshot struct {
	GameID       string
	TurnNumber   int
	Phase        string
	ActivePlayer string
	Outcome      string
	Winner       string
	WinReason    string
	Seed         int64
	PlayerOrder  []string
	Players      map[string]SnapshotPlayer
	Timestamp    time.Time
}

// SnapshotPlayer is one player's zones at snapshot time. Slice order
// is zone order: index 0 of Deck is the top card.
type SnapshotPlayer struct {
	ID            string
	Name          string
	Deck          []SnapshotCard
	Hand          []SnapshotCard
	Discard       []SnapshotCard
	Prizes        []SnapshotCard
	Active        *SnapshotPokemon
	Bench         []SnapshotPokemon
	MulliganCount int
}

// SnapshotCard identifies one physical card.
type SnapshotCard struct {
	ID   string
	Name string
}

// SnapshotPokemon is one board Pokémon with everything riding on it.
type SnapshotPokemon struct {
	InstanceID  string
	Card        SnapshotCard
	Damage      int
	Attached    []string
	Energy      []SnapshotCard
	Tools       []SnapshotCard
	Evolution   []SnapshotCard
	Conditions  []string
	EnteredTurn int
	EvolvedTurn int
}

// SerializationChecksum is a deterministic fingerprint of a snapshot.
// Two snapshots of identical game states hash identically regardless
// of when or where they were taken.
type SerializationChecksum struct {
	Hash      string
	Timestamp string
	Version   int
}

// Snapshot captures the game's current state.
func (g *Game) Snapshot() *Snapshot {
	snap := &Snapshot{
		GameID:       g.id,
		TurnNumber:   g.turn.TurnNumber(),
		Phase:        g.turn.CurrentPhase().String(),
		ActivePlayer: g.turn.ActivePlayer(),
		Outcome:      g.outcome.String(),
		Winner:       g.winner,
		WinReason:    g.winReason,
		Seed:         g.rng.Seed(),
		PlayerOrder:  []string{g.order[0], g.order[1]},
		Players:      make(map[string]SnapshotPlayer, len(g.players)),
		Timestamp:    time.Now(),
	}
	for _, p := range g.players {
		if p == nil {
			continue
		}
		snap.Players[p.ID] = snapshotPlayer(p)
	}
	return snap
}

func snapshotPlayer(p *Player) SnapshotPlayer {
	sp := SnapshotPlayer{
		ID:            p.ID,
		Name:          p.Name,
		Deck:          snapshotCards(p.Deck),
		Hand:          snapshotCards(p.Hand),
		Discard:       snapshotCards(p.Discard),
		Prizes:        snapshotCards(p.Prizes),
		MulliganCount: p.MulliganCount,
	}
	if p.Active != nil {
		active := snapshotPokemon(p.Active)
		sp.Active = &active
	}
	for _, b := range p.Bench {
		sp.Bench = append(sp.Bench, snapshotPokemon(b))
	}
	return sp
}

func snapshotCards(cards []card.Card) []SnapshotCard {
	out := make([]SnapshotCard, len(cards))
	for i, c := range cards {
		out[i] = SnapshotCard{ID: c.ID, Name: c.Name}
	}
	return out
}

func snapshotPokemon(p *PokemonInPlay) SnapshotPokemon {
	attached := make([]string, len(p.Attached))
	for i, t := range p.Attached {
		attached[i] = t.String()
	}
	return SnapshotPokemon{
		InstanceID:  p.InstanceID,
		Card:        SnapshotCard{ID: p.Card.ID, Name: p.Card.Name},
		Damage:      p.Damage,
		Attached:    attached,
		Energy:      snapshotCards(p.EnergyCards),
		Tools:       snapshotCards(p.Tools),
		Evolution:   snapshotCards(p.Evolution),
		Conditions:  p.Conditions.Names(),
		EnteredTurn: p.EnteredTurn,
		EvolvedTurn: p.EvolvedTurn,
	}
}

// ComputeChecksum generates a deterministic checksum of the snapshot,
// excluding non-deterministic fields like the capture timestamp.
func (snapshot *Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(snapshot.buildDeterministicRepresentation())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: snapshot.Timestamp.Format("2006-01-02T15:04:05.000Z"),
		Version:   1,
	}, nil
}

// buildDeterministicRepresentation creates a canonical string form of
// the snapshot that is independent of map iteration order. Zone slices
// keep their order because the order is game state: the top of the
// deck matters.
func (snapshot *Snapshot) buildDeterministicRepresentation() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("GAME:%s|%d|%s|%s|%s|%s|%s\n",
		snapshot.GameID,
		snapshot.TurnNumber,
		snapshot.Phase,
		snapshot.ActivePlayer,
		snapshot.Outcome,
		snapshot.Winner,
		snapshot.WinReason,
	))
	buf.WriteString("ORDER:")
	buf.WriteString(strings.Join(snapshot.PlayerOrder, ","))
	buf.WriteString("\n")

	playerIDs := make([]string, 0, len(snapshot.Players))
	for id := range snapshot.Players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	for _, id := range playerIDs {
		player := snapshot.Players[id]
		buf.WriteString(fmt.Sprintf("PLAYER:%s|%s|%d|%d|%d|%d|%d\n",
			id,
			player.Name,
			player.MulliganCount,
			len(player.Deck),
			len(player.Hand),
			len(player.Discard),
			len(player.Prizes),
		))
		writeZone(&buf, "DECK", player.Deck)
		writeZone(&buf, "HAND", player.Hand)
		writeZone(&buf, "DISCARD", player.Discard)
		writeZone(&buf, "PRIZES", player.Prizes)
		if player.Active != nil {
			writePokemon(&buf, "ACTIVE", *player.Active)
		}
		for _, b := range player.Bench {
			writePokemon(&buf, "BENCH", b)
		}
	}
	return buf.String()
}

func writeZone(buf *bytes.Buffer, name string, cards []SnapshotCard) {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	buf.WriteString(fmt.Sprintf("  %s:%s\n", name, strings.Join(ids, ",")))
}

func writePokemon(buf *bytes.Buffer, spot string, p SnapshotPokemon) {
	buf.WriteString(fmt.Sprintf("  %s:%s|%s|%d|%d|%d\n",
		spot,
		p.InstanceID,
		p.Card.ID,
		p.Damage,
		p.EnteredTurn,
		p.EvolvedTurn,
	))
	buf.WriteString(fmt.Sprintf("    ENERGY:%s\n", strings.Join(p.Attached, ",")))
	buf.WriteString(fmt.Sprintf("    CONDITIONS:%s\n", strings.Join(p.Conditions, ",")))
	toolIDs := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		toolIDs[i] = t.ID
	}
	buf.WriteString(fmt.Sprintf("    TOOLS:%s\n", strings.Join(toolIDs, ",")))
	evoIDs := make([]string, len(p.Evolution))
	for i, e := range p.Evolution {
		evoIDs[i] = e.ID
	}
	buf.WriteString(fmt.Sprintf("    EVOLUTION:%s\n", strings.Join(evoIDs, ",")))
}

// VerifyChecksum reports whether the snapshot's computed checksum
// matches the expected one.
func (snapshot *Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := snapshot.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes encodes the snapshot with gob. This is the format
// used for replay files and persistence.
func (snapshot *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a gob-encoded snapshot.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var snapshot Snapshot
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// ValidateSerializationRoundtrip checks that a snapshot survives
// encoding and decoding without data loss by comparing checksums.
func ValidateSerializationRoundtrip(snapshot *Snapshot) error {
	originalChecksum, err := snapshot.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := snapshot.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	deserialized, err := DeserializeFromBytes(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	deserializedChecksum, err := deserialized.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}
	if originalChecksum.Hash != deserializedChecksum.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s",
			originalChecksum.Hash, deserializedChecksum.Hash)
	}
	return nil
}

package energy

import (
	"testing"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input    string
		expected Cost
		err      bool
	}{
		{"", Cost{}, false},
		{"Fire", Cost{Fire}, false},
		{"Fire,Fire", Cost{Fire, Fire}, false},
		{"Fire,Colorless", Cost{Fire, Colorless}, false},
		{"water, lightning", Cost{Water, Lightning}, false},
		{"GRASS,COLORLESS,COLORLESS", Cost{Grass, Colorless, Colorless}, false},
		{"Fire,Plasma", nil, true},
		{"???", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseCost(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.input, err)
				return
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("Length: expected %d, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Entry %d: expected %s, got %s", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestCanPay(t *testing.T) {
	tests := []struct {
		name     string
		attached []Type
		cost     Cost
		canPay   bool
	}{
		{"free cost", nil, Cost{}, true},
		{"exact match", []Type{Fire}, Cost{Fire}, true},
		{"wrong type", []Type{Water}, Cost{Fire}, false},
		{"double fire met", []Type{Fire, Fire}, Cost{Fire, Fire}, true},
		{"double fire short", []Type{Fire}, Cost{Fire, Fire}, false},
		{"colorless paid by anything", []Type{Psychic}, Cost{Colorless}, true},
		{"colorless unpaid", nil, Cost{Colorless}, false},
		{"specific then colorless", []Type{Fire, Water}, Cost{Fire, Colorless}, true},
		{"specific consumes before colorless", []Type{Fire}, Cost{Fire, Colorless}, false},
		{"surplus ignored", []Type{Fire, Fire, Water, Grass}, Cost{Fire, Colorless}, true},
		{"mixed heavy cost", []Type{Fire, Fire, Lightning}, Cost{Fire, Fire, Colorless}, true},
		{"colorless attachment pays colorless only", []Type{Colorless}, Cost{Fire}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPay(tt.attached, tt.cost); got != tt.canPay {
				t.Errorf("CanPay(%v, %v) = %v, want %v", tt.attached, tt.cost, got, tt.canPay)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	tests := []struct {
		name     string
		attached []Type
		cost     Cost
		missing  []Type
	}{
		{"nothing missing", []Type{Fire, Water}, Cost{Fire, Colorless}, nil},
		{"one fire missing", nil, Cost{Fire}, []Type{Fire}},
		{"colorless shortfall counted", []Type{Fire}, Cost{Fire, Colorless, Colorless}, []Type{Colorless, Colorless}},
		{"specific shortfall reported by type", []Type{Water}, Cost{Fire, Fire}, []Type{Fire, Fire}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.attached, tt.cost)
			if len(got) != len(tt.missing) {
				t.Fatalf("Missing(%v, %v) = %v, want %v", tt.attached, tt.cost, got, tt.missing)
			}
			for i := range got {
				if got[i] != tt.missing[i] {
					t.Errorf("Entry %d: expected %s, got %s", i, tt.missing[i], got[i])
				}
			}
		})
	}
}

func TestParseType(t *testing.T) {
	if _, err := ParseType("fire"); err != nil {
		t.Fatalf("lowercase fire should parse: %v", err)
	}
	if _, err := ParseType("  Metal "); err != nil {
		t.Fatalf("padded Metal should parse: %v", err)
	}
	if _, err := ParseType("plasma"); err == nil {
		t.Fatal("plasma should not parse")
	}
	if got := len(Types()); got != 11 {
		t.Fatalf("expected 11 energy types, got %d", got)
	}
}

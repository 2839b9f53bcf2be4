package filter

import (
	"testing"
	"time"
)

func TestParseActivityFilterEmpty(t *testing.T) {
	cond, err := ParseActivityFilter("   ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cond.Empty() || len(cond.Params) != 0 {
		t.Fatalf("cond = %+v", cond)
	}
}

func TestParseActivityFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		clause string
		params []any
	}{
		{
			name:   "equals",
			filter: `type = "attack"`,
			clause: "entry_type = ?",
			params: []any{"attack"},
		},
		{
			name:   "and",
			filter: `type = "spell" AND actor_id = "c1"`,
			clause: "(entry_type = ? AND actor_id = ?)",
			params: []any{"spell", "c1"},
		},
		{
			name:   "or",
			filter: `type = "attack" OR type = "spell"`,
			clause: "(entry_type = ? OR entry_type = ?)",
			params: []any{"attack", "spell"},
		},
		{
			name:   "seq",
			filter: `seq > 10`,
			clause: "seq > ?",
			params: []any{int64(10)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cond, err := ParseActivityFilter(tc.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if cond.Clause != tc.clause {
				t.Fatalf("clause = %q, want %q", cond.Clause, tc.clause)
			}
			if len(cond.Params) != len(tc.params) {
				t.Fatalf("params = %v, want %v", cond.Params, tc.params)
			}
			for i := range tc.params {
				if cond.Params[i] != tc.params[i] {
					t.Fatalf("param %d = %v (%T), want %v", i, cond.Params[i], cond.Params[i], tc.params[i])
				}
			}
		})
	}
}

func TestParseActivityFilterTimestamp(t *testing.T) {
	cond, err := ParseActivityFilter(`ts >= timestamp("2026-01-02T03:04:05Z")`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()
	if cond.Clause != "created_at >= ?" || cond.Params[0] != want {
		t.Fatalf("cond = %+v", cond)
	}
}

func TestParseActivityFilterRejects(t *testing.T) {
	for _, input := range []string{
		`unknown_field = "x"`,
		`type = `,
	} {
		if _, err := ParseActivityFilter(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

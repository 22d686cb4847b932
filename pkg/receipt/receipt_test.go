package receipt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/validation"
)

func TestDecodeArray(t *testing.T) {
	data := []byte(`[
		{"id":"r1","filename":"r1.jpg","region":"Kyushu","city":"Fukuoka","category":"RC","price":800},
		{"id":"r2","filename":"r2.jpg","region":"Kyushu","city":"Fukuoka","category":"CS","price":"8,000"}
	]`)
	list, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d receipts, want 2", len(list))
	}
	if list[0].ID != "r1" || list[0].Price.Value != 800 || !list[0].Price.Valid {
		t.Errorf("r1 = %+v", list[0])
	}
	if list[1].Price.Value != 8000 || !list[1].Price.Valid {
		t.Errorf("r2 price = %+v, want 8000", list[1].Price)
	}
}

func TestDecodeNumericKeyObject(t *testing.T) {
	data := []byte(`{
		"10": {"id":"c","region":"Honshu","city":"Tokyo","price":3},
		"2":  {"id":"b","region":"Honshu","city":"Tokyo","price":2},
		"1":  {"id":"a","region":"Honshu","city":"Tokyo","price":1}
	}`)
	list, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("order = %v, want [a b c] (numeric key order)", ids)
	}
}

func TestDecodeRejectsOtherShapes(t *testing.T) {
	for _, doc := range []string{
		`{"a": {"id":"x"}}`,
		`"receipts"`,
		`42`,
		``,
	} {
		_, err := Decode([]byte(doc))
		if !errors.Is(err, ErrUnsupportedShape) {
			t.Errorf("Decode(%q) err = %v, want ErrUnsupportedShape", doc, err)
		}
	}
}

func TestPriceDecoding(t *testing.T) {
	tests := []struct {
		in    string
		value float64
		valid bool
	}{
		{`800`, 800, true},
		{`"1,200"`, 1200, true},
		{`"¥500"`, 500, true},
		{`"300円"`, 300, true},
		{`0`, 0, false},
		{`-5`, -5, false},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range tests {
		var p Price
		if err := p.UnmarshalJSON([]byte(tc.in)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) error: %v", tc.in, err)
		}
		if p.Valid != tc.valid || (tc.valid && p.Value != tc.value) {
			t.Errorf("price %s = %+v, want value %v valid %v", tc.in, p, tc.value, tc.valid)
		}
	}
}

func TestPriceSized(t *testing.T) {
	if got := P(800).Sized(); got != 800 {
		t.Errorf("Sized(800) = %v", got)
	}
	if got := (Price{}).Sized(); got != 1 {
		t.Errorf("invalid price Sized = %v, want 1", got)
	}
	if got := P(0.5).Sized(); got != 1 {
		t.Errorf("Sized(0.5) = %v, want 1", got)
	}
	if !errors.Is((Price{}).Err(), ErrMalformedPrice) {
		t.Error("invalid price should report ErrMalformedPrice")
	}
}

func TestNormalize(t *testing.T) {
	cfg := config.Default()
	in := []Receipt{
		{ID: "r1", Region: "Kyushu", City: "Fukuoka", Category: "RC", Price: P(800)},
		{ID: "r2", Region: "Kyushu", City: "Fukuoka", Category: "zzz", Price: Price{}},
		{ID: "r1", Region: "Kyushu", City: "Fukuoka", Price: P(10)},
		{Region: "Honshu", City: "Tokyo", Price: P(10)},
		{ID: "r5", Region: "Honshu", City: "Sendai", Price: P(10)},
		{ID: "r6", Region: "Atlantis", City: "Nowhere", Price: P(10)},
	}
	out, report := Normalize(in, cfg)

	if out[0].Category != "RC" {
		t.Errorf("known category changed to %q", out[0].Category)
	}
	if out[1].Category != config.OtherCategory || out[2].Category != config.OtherCategory {
		t.Errorf("unknown/empty categories = %q, %q, want Other", out[1].Category, out[2].Category)
	}
	if out[2].ID != "r1#2" {
		t.Errorf("duplicate id renamed to %q, want r1#2", out[2].ID)
	}
	if out[3].ID == "" {
		t.Error("missing id should be assigned")
	}
	if in[1].Category != "zzz" {
		t.Error("Normalize must not mutate its input")
	}
	if got := report.CountCode(validation.CodeMalformedPrice); got != 1 {
		t.Errorf("malformed price findings = %d, want 1", got)
	}
	if got := report.CountCode(validation.CodeUnknownCity); got != 1 {
		t.Errorf("unknown city findings = %d, want 1 (unknown regions are the placer's concern)", got)
	}
	if !report.Valid {
		t.Error("data findings should be warnings, not errors")
	}
}

func TestNormalizeRenamesAroundExistingIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"plain duplicates", []string{"a", "a", "a"}, []string{"a", "a#2", "a#3"}},
		{"generated name taken later", []string{"a", "a", "a#2"}, []string{"a", "a#2", "a#2#2"}},
		{"generated name taken earlier", []string{"a#2", "a", "a"}, []string{"a#2", "a", "a#3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]Receipt, len(tt.in))
			for i, id := range tt.in {
				in[i] = Receipt{ID: id, Region: "Kyushu", City: "Fukuoka", Price: P(10)}
			}
			out, _ := Normalize(in, config.Default())
			seen := make(map[string]bool)
			for i, r := range out {
				if r.ID != tt.want[i] {
					t.Errorf("out[%d].ID = %q, want %q", i, r.ID, tt.want[i])
				}
				if seen[r.ID] {
					t.Errorf("id %q assigned twice", r.ID)
				}
				seen[r.ID] = true
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.json")
	if err := os.WriteFile(path, []byte(`[{"id":"x","region":"Shikoku","city":"Takamatsu","price":100}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(list) != 1 || list[0].City != "Takamatsu" {
		t.Errorf("loaded %+v", list)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

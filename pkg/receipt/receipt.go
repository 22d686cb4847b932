// Package receipt defines the input record model and decodes receipt lists.
package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedShape is returned when the document is neither an array
	// nor an object keyed by integers.
	ErrUnsupportedShape = errors.New("receipts must be a JSON array or an object with numeric keys")
	// ErrMalformedPrice marks a price that is missing, non-numeric or <= 0.
	ErrMalformedPrice = errors.New("malformed price")
)

// Receipt is one purchase record. Receipts are read-only once decoded.
type Receipt struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Category string `json:"category"`
	Price    Price  `json:"price"`
}

// Price is a JPY amount that remembers whether the source value was usable.
type Price struct {
	Value float64
	Valid bool
}

// P returns a valid price.
func P(v float64) Price {
	return Price{Value: v, Valid: v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// UnmarshalJSON accepts numbers, numeric strings ("1,200", "¥800") and null.
// Anything unparsable decodes to an invalid price instead of failing the
// whole document.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = Price{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = Price{}
			return nil
		}
		*p = parsePriceString(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*p = Price{}
		return nil
	}
	*p = P(v)
	return nil
}

// MarshalJSON writes the numeric value, or null when invalid.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func parsePriceString(s string) Price {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.TrimSuffix(s, "円")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Price{}
	}
	return P(v)
}

// Sized returns the price used for sizing: the value itself when valid,
// otherwise the sentinel 1.
func (p Price) Sized() float64 {
	if !p.Valid || p.Value < 1 {
		return 1
	}
	return p.Value
}

// Err reports ErrMalformedPrice for invalid prices.
func (p Price) Err() error {
	if p.Valid {
		return nil
	}
	return ErrMalformedPrice
}

// Decode parses a receipts document. The top level must be an array, or an
// object whose keys are all integers; the object form is ordered by numeric
// key.
func Decode(data []byte) ([]Receipt, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrUnsupportedShape
	}

	switch data[0] {
	case '[':
		var list []Receipt
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing receipts array: %w", err)
		}
		return list, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("parsing receipts object: %w", err)
		}
		type entry struct {
			key int
			raw json.RawMessage
		}
		entries := make([]entry, 0, len(obj))
		for k, raw := range obj {
			n, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, ErrUnsupportedShape)
			}
			entries = append(entries, entry{n, raw})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

		list := make([]Receipt, 0, len(entries))
		for _, e := range entries {
			var r Receipt
			if err := json.Unmarshal(e.raw, &r); err != nil {
				return nil, fmt.Errorf("parsing receipt %d: %w", e.key, err)
			}
			list = append(list, r)
		}
		return list, nil
	default:
		return nil, ErrUnsupportedShape
	}
}

// Load reads and decodes a receipts file.
func Load(path string) ([]Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading receipts file: %w", err)
	}
	return Decode(data)
}

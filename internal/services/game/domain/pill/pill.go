// Package pill defines consumable pills and the sect's pill inventory.
package pill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/disciple"
)

var (
	// ErrUnknown is returned for pill kinds outside the table.
	ErrUnknown = errors.New("unknown pill")
	// ErrOutOfStock is returned when the inventory holds none.
	ErrOutOfStock = errors.New("pill out of stock")
)

// Kind names a pill.
type Kind string

const (
	QiRecovery       Kind = "QI_RECOVERY"
	BodyStrength     Kind = "BODY_STRENGTH"
	VitalityElixir   Kind = "VITALITY_ELIXIR"
	CultivationBoost Kind = "CULTIVATION_BOOST"
)

// Kinds lists every pill kind.
var Kinds = []Kind{QiRecovery, BodyStrength, VitalityElixir, CultivationBoost}

// Effect is what one pill does to a disciple.
type Effect struct {
	Energy       float64
	Constitution float64
	Progress     int
}

// Profile is a pill table entry.
type Profile struct {
	Kind   Kind
	Effect Effect
	Cost   int
	Stock  int
}

var table = map[Kind]Profile{
	QiRecovery:       {Kind: QiRecovery, Effect: Effect{Energy: 30}, Cost: 50, Stock: 10},
	BodyStrength:     {Kind: BodyStrength, Effect: Effect{Constitution: 30}, Cost: 50, Stock: 10},
	VitalityElixir:   {Kind: VitalityElixir, Effect: Effect{Energy: 20, Constitution: 20}, Cost: 100, Stock: 5},
	CultivationBoost: {Kind: CultivationBoost, Effect: Effect{Progress: 10}, Cost: 200},
}

// Parse canonicalizes a pill label.
func Parse(value string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	upper = strings.TrimPrefix(upper, "PILL_")
	k := Kind(upper)
	if _, ok := table[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, value)
	}
	return k, nil
}

// Lookup returns the table entry for k.
func Lookup(k Kind) (Profile, error) {
	s, ok := table[k]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknown, k)
	}
	return s, nil
}

// Apply feeds the effect to d.
func (e Effect) Apply(d *disciple.Disciple) {
	d.AdjustEnergy(e.Energy)
	d.AdjustConstitution(e.Constitution)
	if e.Progress > 0 {
		d.Cultivation.Gain(e.Progress)
	}
}

// Inventory counts pills held by a sect.
type Inventory struct {
	counts map[Kind]int
}

// NewInventory returns the starting stock.
func NewInventory() *Inventory {
	inv := &Inventory{counts: make(map[Kind]int, len(table))}
	for k, s := range table {
		inv.counts[k] = s.Stock
	}
	return inv
}

// Count returns the number of k held.
func (i *Inventory) Count(k Kind) int {
	return i.counts[k]
}

// Take removes one pill of kind k.
func (i *Inventory) Take(k Kind) (Effect, error) {
	s, err := Lookup(k)
	if err != nil {
		return Effect{}, err
	}
	if i.counts[k] <= 0 {
		return Effect{}, fmt.Errorf("%w: %s", ErrOutOfStock, k)
	}
	i.counts[k]--
	return s.Effect, nil
}

// Put adds n pills of kind k.
func (i *Inventory) Put(k Kind, n int) error {
	if _, err := Lookup(k); err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("pill quantity must be positive")
	}
	i.counts[k] += n
	return nil
}

// Snapshot copies the counts.
func (i *Inventory) Snapshot() map[Kind]int {
	out := make(map[Kind]int, len(i.counts))
	for k, n := range i.counts {
		out[k] = n
	}
	return out
}

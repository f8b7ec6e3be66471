package grocery

import (
	"math"

	"github.com/google/uuid"
)

// amountEpsilon guards removal against floating-point residue: an entry
// whose amount decays to at most this much is deleted, never persisted as
// a 0.0000003-of-a-carrot line.
const amountEpsilon = 0.01

// Mutation is the set of independent write operations an aggregation pass
// produced. The service executes them against the store; the builder
// itself never touches I/O.
type Mutation struct {
	Inserts []Entry
	Updates []Entry
	Deletes []string
}

// IsEmpty reports whether the mutation carries no work.
func (m Mutation) IsEmpty() bool {
	return len(m.Inserts) == 0 && len(m.Updates) == 0 && len(m.Deletes) == 0
}

// Scale converts a servings choice into the multiplier applied to every
// ingredient amount. When the recipe's base servings are known and
// positive, the multiplier is the ratio; otherwise servings is used as-is.
func Scale(servings, baseServings float64) float64 {
	if baseServings > 0 && !isNonFinite(baseServings) {
		return servings / baseServings
	}
	return servings
}

// Aggregator folds canonicalized contributions into a snapshot of the
// current list. It is a pure accumulator: feed it Add/Remove calls, then
// read the resulting Mutation. Matching is exact on (name_normalized,
// unit); the same ingredient in two units stays two lines.
type Aggregator struct {
	userID   string
	entries  []Entry
	mutation Mutation

	updated map[string]bool
	deleted map[string]bool
}

// NewAggregator starts an aggregation pass over a snapshot of the user's
// current entries. The snapshot is copied; the caller's slice is not
// modified.
func NewAggregator(userID string, snapshot []Entry) *Aggregator {
	entries := make([]Entry, len(snapshot))
	copy(entries, snapshot)
	return &Aggregator{
		userID:  userID,
		entries: entries,
		updated: make(map[string]bool),
		deleted: make(map[string]bool),
	}
}

// Add folds one contribution into the list: a matching entry grows by
// amount*scale, otherwise a new entry is created. Contributions with a
// non-positive effective amount are ignored.
func (a *Aggregator) Add(c Canonical, scale float64) {
	amount := c.Amount * scale
	if isNonFinite(amount) || amount <= 0 {
		return
	}

	if i := a.find(c.NameNormalized, c.Unit); i >= 0 {
		a.entries[i].Amount += amount
		a.markUpdated(a.entries[i])
		return
	}

	category := c.Category
	if category == "" {
		category = DefaultCategory
	}
	entry := Entry{
		ID:             uuid.NewString(),
		UserID:         a.userID,
		Name:           c.DisplayName,
		NameNormalized: c.NameNormalized,
		Amount:         amount,
		Unit:           c.Unit,
		Category:       category,
	}
	a.entries = append(a.entries, entry)
	a.mutation.Inserts = append(a.mutation.Inserts, entry)
}

// Remove subtracts one contribution from the list. The matching entry
// shrinks by amount*scale; if it lands at or below the epsilon it is
// deleted. No match is a silent no-op: removing a recipe whose ingredients
// were already cleared should not fail.
func (a *Aggregator) Remove(c Canonical, scale float64) {
	amount := c.Amount * scale
	if isNonFinite(amount) || amount <= 0 {
		return
	}

	i := a.find(c.NameNormalized, c.Unit)
	if i < 0 {
		return
	}

	remaining := a.entries[i].Amount - amount
	if remaining <= amountEpsilon {
		a.delete(i)
		return
	}
	a.entries[i].Amount = remaining
	a.markUpdated(a.entries[i])
}

// Mutation returns the accumulated write operations. Inserts reflect their
// final amounts even when several contributions in the same pass hit the
// same new entry.
func (a *Aggregator) Mutation() Mutation {
	m := Mutation{Deletes: a.mutation.Deletes}

	for _, ins := range a.mutation.Inserts {
		if a.deleted[ins.ID] {
			continue
		}
		if i := a.findByID(ins.ID); i >= 0 {
			m.Inserts = append(m.Inserts, a.entries[i])
		}
	}
	for _, e := range a.entries {
		if a.updated[e.ID] && !a.isPendingInsert(e.ID) {
			m.Updates = append(m.Updates, e)
		}
	}
	return m
}

// Entries returns the working snapshot after all folds.
func (a *Aggregator) Entries() []Entry {
	return a.entries
}

func (a *Aggregator) find(nameNormalized string, unit Unit) int {
	for i, e := range a.entries {
		if e.NameNormalized == nameNormalized && e.Unit == unit {
			return i
		}
	}
	return -1
}

func (a *Aggregator) findByID(id string) int {
	for i, e := range a.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (a *Aggregator) isPendingInsert(id string) bool {
	for _, ins := range a.mutation.Inserts {
		if ins.ID == id {
			return true
		}
	}
	return false
}

func (a *Aggregator) markUpdated(e Entry) {
	a.updated[e.ID] = true
}

func (a *Aggregator) delete(i int) {
	e := a.entries[i]
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	delete(a.updated, e.ID)
	if a.isPendingInsert(e.ID) {
		// Never persisted; dropping the pending insert is enough.
		a.deleted[e.ID] = true
		return
	}
	a.deleted[e.ID] = true
	a.mutation.Deletes = append(a.mutation.Deletes, e.ID)
}

func isNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

package grocery

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store defines the persistence operations the service needs for grocery
// list entries. Uniqueness of (user, name_normalized, unit) is enforced
// here in application logic, not by a storage constraint.
type Store interface {
	ListEntries(ctx context.Context, userID string) ([]Entry, error)
	InsertEntry(ctx context.Context, entry Entry) error
	UpdateEntryAmount(ctx context.Context, id string, amount float64) error
	SetEntryChecked(ctx context.Context, id string, checked bool) error
	DeleteEntries(ctx context.Context, ids []string) error
}

// ProfileSource resolves normalized ingredient names to unit profiles,
// omitting names that have none.
type ProfileSource interface {
	ProfilesFor(ctx context.Context, namesNormalized []string) (map[string]UnitProfile, error)
}

// ShoppingItem is one line of the shopping view: the stored entry plus its
// display amount and purchase quantity.
type ShoppingItem struct {
	Entry      Entry    `json:"entry"`
	NeedAmount string   `json:"need_amount"`
	Purchase   Purchase `json:"purchase"`
}

// Service orchestrates the grocery list: it reads the current snapshot,
// runs contributions through normalization, profile lookup, and
// canonicalization, folds them into a mutation, and executes the
// mutation's writes concurrently. All collaborators are injected; the
// service holds no global state beyond its event subscribers.
type Service struct {
	store    Store
	profiles ProfileSource
	logger   *zap.Logger

	mu          sync.Mutex
	subscribers map[chan ChangeEvent]struct{}
}

// NewService creates a grocery list service.
func NewService(store Store, profiles ProfileSource, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		profiles:    profiles,
		logger:      logger,
		subscribers: make(map[chan ChangeEvent]struct{}),
	}
}

// AddIngredients folds a recipe's ingredients into the user's grocery
// list, scaled by servings/baseServings. Repeated calls keep adding; that
// is "add this recipe again", not a bug. Ingredients whose profile says
// exclude_always (water, salt) are skipped.
func (s *Service) AddIngredients(ctx context.Context, userID string, ingredients []Ingredient, servings, baseServings float64) error {
	snapshot, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load grocery list: %w", err)
	}

	profiles := s.lookupProfiles(ctx, ingredients)
	scale := Scale(servings, baseServings)

	agg := NewAggregator(userID, snapshot)
	for _, ing := range ingredients {
		profile := profileFor(profiles, ing)
		if profile != nil && profile.ExcludeAlways {
			continue
		}
		agg.Add(Canonicalize(ing, profile), scale)
	}

	return s.apply(ctx, agg.Mutation())
}

// RemoveIngredients subtracts a recipe's ingredients from the user's
// grocery list at the same scale they were added. Entries that decay to
// the epsilon are deleted; ingredients not on the list are ignored.
func (s *Service) RemoveIngredients(ctx context.Context, userID string, ingredients []Ingredient, servings, baseServings float64) error {
	snapshot, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load grocery list: %w", err)
	}

	profiles := s.lookupProfiles(ctx, ingredients)
	scale := Scale(servings, baseServings)

	agg := NewAggregator(userID, snapshot)
	for _, ing := range ingredients {
		profile := profileFor(profiles, ing)
		if profile != nil && profile.ExcludeAlways {
			continue
		}
		agg.Remove(Canonicalize(ing, profile), scale)
	}

	return s.apply(ctx, agg.Mutation())
}

// AddItem adds a single custom item to the list, unscaled.
func (s *Service) AddItem(ctx context.Context, userID string, ing Ingredient) error {
	return s.AddIngredients(ctx, userID, []Ingredient{ing}, 1, 1)
}

// List returns the user's current grocery list entries.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grocery list: %w", err)
	}
	return entries, nil
}

// SetChecked marks an entry as checked off (or not) while shopping.
func (s *Service) SetChecked(ctx context.Context, userID, entryID string, checked bool) error {
	if err := s.store.SetEntryChecked(ctx, entryID, checked); err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return nil
}

// ShoppingView returns the list ready for the store aisle: each entry with
// its display-formatted need amount and its computed purchase quantity.
func (s *Service) ShoppingView(ctx context.Context, userID string) ([]ShoppingItem, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grocery list: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.NameNormalized)
	}
	profiles := s.profilesByName(ctx, names)

	items := make([]ShoppingItem, 0, len(entries))
	for _, e := range entries {
		var profile *UnitProfile
		if p, ok := profiles[e.NameNormalized]; ok {
			profile = &p
		}
		items = append(items, ShoppingItem{
			Entry:      e,
			NeedAmount: FormatAmount(e.Amount, e.Unit),
			Purchase:   PurchaseFor(e, profile),
		})
	}
	return items, nil
}

// Subscribe registers a live change-event channel. The caller must drain
// it and call the returned cancel func when done.
func (s *Service) Subscribe() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// lookupProfiles resolves profiles for a batch of ingredients. A failing
// profile source degrades to "no profiles": canonicalization falls back to
// its safe conversions and the shopper still gets a list.
func (s *Service) lookupProfiles(ctx context.Context, ingredients []Ingredient) map[string]UnitProfile {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, Normalize(ing.Name))
	}
	return s.profilesByName(ctx, names)
}

func (s *Service) profilesByName(ctx context.Context, namesNormalized []string) map[string]UnitProfile {
	if len(namesNormalized) == 0 {
		return map[string]UnitProfile{}
	}
	profiles, err := s.profiles.ProfilesFor(ctx, namesNormalized)
	if err != nil {
		s.logger.Warn("unit profile lookup failed, continuing without profiles",
			zap.Error(err))
		return map[string]UnitProfile{}
	}
	return profiles
}

func profileFor(profiles map[string]UnitProfile, ing Ingredient) *UnitProfile {
	if p, ok := profiles[Normalize(ing.Name)]; ok {
		return &p
	}
	return nil
}

// apply executes the mutation's writes concurrently and returns the first
// error encountered. Writes that already succeeded stay applied; the list
// reconciles on the next full read. Successful mutations are broadcast to
// live subscribers.
func (s *Service) apply(ctx context.Context, m Mutation) error {
	if m.IsEmpty() {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, entry := range m.Inserts {
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			record(s.store.InsertEntry(ctx, e))
		}(entry)
	}
	for _, entry := range m.Updates {
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			record(s.store.UpdateEntryAmount(ctx, e.ID, e.Amount))
		}(entry)
	}
	if len(m.Deletes) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(s.store.DeleteEntries(ctx, m.Deletes))
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("grocery list write failed: %w", firstErr)
	}

	s.broadcast(eventsFromMutation(m))
	return nil
}

func (s *Service) broadcast(events []ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				// Slow subscriber; it will catch up on the next full read.
			}
		}
	}
}

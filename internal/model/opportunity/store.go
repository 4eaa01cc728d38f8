package opportunity

import "strings"

// Store exposes opportunity retrieval for HTTP handlers.
type Store interface {
	List() []Opportunity
	FindByID(id string) (Opportunity, bool)
	Search(query, filter string) []Opportunity
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Opportunity
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied listings.
func NewMemoryStore(items []Opportunity) *MemoryStore {
	return &MemoryStore{items: append([]Opportunity(nil), items...)}
}

// List returns every listing in seed order.
func (s *MemoryStore) List() []Opportunity {
	return append([]Opportunity(nil), s.items...)
}

// FindByID looks up a listing by identifier.
func (s *MemoryStore) FindByID(id string) (Opportunity, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Opportunity{}, false
}

// Search matches the query case-insensitively against title, description and
// category, then keeps listings whose type equals filter. An empty query
// matches everything; an empty filter or FilterAll disables type filtering.
func (s *MemoryStore) Search(query, filter string) []Opportunity {
	needle := strings.ToLower(query)
	filter = strings.TrimSpace(filter)

	out := make([]Opportunity, 0, len(s.items))
	for _, item := range s.items {
		if !matchesQuery(item, needle) {
			continue
		}
		if filter != "" && filter != FilterAll && string(item.Type) != filter {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesQuery(item Opportunity, needle string) bool {
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) ||
		strings.Contains(strings.ToLower(item.Category), needle)
}

package form

import (
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/route-trends/pkg/models/domain"
)

var ErrUnknownField = errors.New("unknown form field")

// ParseField maps an input name to its field.
func ParseField(name string) (domain.Field, error) {
	for _, f := range domain.Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Store holds the route query being edited. All four fields exist from
// construction on and are only ever overwritten.
type Store struct {
	mu    sync.RWMutex
	state domain.RouteQuery
}

func NewStore() *Store {
	return &Store{}
}

// Update replaces one field. Values are stored verbatim.
func (s *Store) Update(field domain.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.With(field, value)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.state = next
	return nil
}

func (s *Store) Snapshot() domain.RouteQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

package order

import (
	"slices"
	"sync"
)

// ID identifies an order. Valid ids start at 1.
type ID = int

// ItemID identifies a catalogue item placed in an order.
type ItemID = int

// Order is a snapshot of a customer's in-progress order.
type Order struct {
	ID    ID       `json:"id"`
	Items []ItemID `json:"items"`
}

// Store is a process-local order registry. It is safe for concurrent use.
//
// Invariant: orders[i].ID == i+1 and nextID == len(orders).
type Store struct {
	mu     sync.RWMutex
	nextID ID
	orders []*Order
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Create appends a new empty order and returns its id.
func (s *Store) Create() ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.orders = append(s.orders, &Order{ID: s.nextID, Items: []ItemID{}})
	return s.nextID
}

// AddItem appends item to the order. Duplicates are kept.
func (s *Store) AddItem(id ID, item ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookupLocked(id)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, item)
	return nil
}

// RemoveItem removes the first occurrence of item from the order. The order
// is left unchanged when the item is absent.
func (s *Store) RemoveItem(id ID, item ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookupLocked(id)
	if err != nil {
		return err
	}
	idx := slices.Index(o.Items, item)
	if idx < 0 {
		return &Error{Kind: KindItemNotFound, OrderID: id, ItemID: item}
	}
	o.Items = slices.Delete(o.Items, idx, idx+1)
	return nil
}

// Items returns a copy of the order's items.
func (s *Store) Items(id ID) ([]ItemID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(o.Items), nil
}

// Order returns a snapshot of a single order.
func (s *Store) Order(id ID) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.lookupLocked(id)
	if err != nil {
		return Order{}, err
	}
	return Order{ID: o.ID, Items: slices.Clone(o.Items)}, nil
}

// Orders returns every assigned id, 1 through the last one created.
func (s *Store) Orders() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, s.nextID)
	for id := 1; id <= s.nextID; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of orders created so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// lookupLocked resolves id to its order. Only 1..len(orders) is valid.
// Caller must hold s.mu.
func (s *Store) lookupLocked(id ID) (*Order, error) {
	if id < 1 || id > len(s.orders) {
		return nil, &Error{Kind: KindOrderNotFound, OrderID: id}
	}
	return s.orders[id-1], nil
}

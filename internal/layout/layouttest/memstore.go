// Package layouttest provides an in-memory layout.Store for tests.
package layouttest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/iliyamo/event-ticketing/internal/layout"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// MemStore keeps events, areas, seats and layouts in maps.  Update works on a
// copy of the state and swaps it in on success, so a failed transaction
// leaves no trace.  Transactions are serialized.
type MemStore struct {
	mu    sync.Mutex
	state *state

	// Fail makes the named Tx method (e.g. "CreateSeat") return the error.
	Fail map[string]error
	// Commits counts successful transactions.
	Commits int
}

type state struct {
	events     map[uint64]*uint64
	areas      map[uint64]model.Area
	seats      map[uint64]model.Seat
	layouts    map[uint64]model.EventLayout
	nextArea   uint64
	nextSeat   uint64
	nextLayout uint64
}

func New() *MemStore {
	return &MemStore{state: &state{
		events:   map[uint64]*uint64{},
		areas:    map[uint64]model.Area{},
		seats:    map[uint64]model.Seat{},
		layouts:  map[uint64]model.EventLayout{},
		nextArea: 1, nextSeat: 1, nextLayout: 1,
	}}
}

func (s *state) clone() *state {
	c := *s
	c.events = make(map[uint64]*uint64, len(s.events))
	for k, v := range s.events {
		c.events[k] = v
	}
	c.areas = make(map[uint64]model.Area, len(s.areas))
	for k, v := range s.areas {
		c.areas[k] = v
	}
	c.seats = make(map[uint64]model.Seat, len(s.seats))
	for k, v := range s.seats {
		c.seats[k] = v
	}
	c.layouts = make(map[uint64]model.EventLayout, len(s.layouts))
	for k, v := range s.layouts {
		c.layouts[k] = v
	}
	return &c
}

// AddEvent registers an event.  A nil venue models an event without one.
func (m *MemStore) AddEvent(eventID uint64, venueID *uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.events[eventID] = venueID
}

// AddArea stores a and returns its id.
func (m *MemStore) AddArea(a model.Area) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.addArea(a)
}

// AddSeat stores s and returns its id.
func (m *MemStore) AddSeat(s model.Seat) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.addSeat(s)
}

// SetLayout stores a layout document with the given version.
func (m *MemStore) SetLayout(eventID uint64, config string, version uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.saveLayout(eventID, json.RawMessage(config), version)
}

func (m *MemStore) Area(id uint64) (model.Area, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.state.areas[id]
	return a, ok
}

func (m *MemStore) Seat(id uint64) (model.Seat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.state.seats[id]
	return s, ok
}

func (m *MemStore) Layout(eventID uint64) (model.EventLayout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.state.layouts[eventID]
	return l, ok
}

func (m *MemStore) AreaCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.areas)
}

func (m *MemStore) SeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.seats)
}

// Reader reads the committed state.
func (m *MemStore) Reader() layout.Reader { return reader{m} }

// Update runs fn against a private copy of the state.
func (m *MemStore) Update(ctx context.Context, fn func(layout.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{st: work, fail: m.Fail}); err != nil {
		return err
	}
	m.state = work
	m.Commits++
	return nil
}

type reader struct{ m *MemStore }

func (r reader) VenueOfEvent(ctx context.Context, eventID uint64) (*uint64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.venueOfEvent(eventID)
}

func (r reader) GetLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.layout(eventID), nil
}

func (r reader) ListVenueSeats(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.state.venueSeats(venueID), nil
}

func (s *state) venueOfEvent(eventID uint64) (*uint64, error) {
	v, ok := s.events[eventID]
	if !ok {
		return nil, layout.ErrNotFound
	}
	if v == nil {
		return nil, nil
	}
	id := *v
	return &id, nil
}

func (s *state) layout(eventID uint64) *model.EventLayout {
	l, ok := s.layouts[eventID]
	if !ok {
		return nil
	}
	l.Config = append(json.RawMessage(nil), l.Config...)
	return &l
}

func (s *state) venueSeats(venueID uint64) []model.Seat {
	out := []model.Seat{}
	for _, seat := range s.seats {
		if a, ok := s.areas[seat.AreaID]; ok && a.VenueID == venueID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *state) addArea(a model.Area) uint64 {
	a.ID = s.nextArea
	s.nextArea++
	s.areas[a.ID] = a
	return a.ID
}

func (s *state) addSeat(seat model.Seat) uint64 {
	seat.ID = s.nextSeat
	s.nextSeat++
	s.seats[seat.ID] = seat
	return seat.ID
}

func (s *state) saveLayout(eventID uint64, config json.RawMessage, version uint32) {
	l, ok := s.layouts[eventID]
	if !ok {
		l = model.EventLayout{ID: s.nextLayout, EventID: eventID}
		s.nextLayout++
	}
	l.Config = append(json.RawMessage(nil), config...)
	l.Version = version
	s.layouts[eventID] = l
}

type memTx struct {
	st   *state
	fail map[string]error
}

func (t *memTx) failed(op string) error {
	if t.fail == nil {
		return nil
	}
	return t.fail[op]
}

func (t *memTx) VenueOfEvent(ctx context.Context, eventID uint64) (*uint64, error) {
	if err := t.failed("VenueOfEvent"); err != nil {
		return nil, err
	}
	return t.st.venueOfEvent(eventID)
}

func (t *memTx) GetLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	return t.st.layout(eventID), nil
}

func (t *memTx) ListVenueSeats(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	return t.st.venueSeats(venueID), nil
}

func (t *memTx) LockLayout(ctx context.Context, eventID uint64) (*model.EventLayout, error) {
	if err := t.failed("LockLayout"); err != nil {
		return nil, err
	}
	return t.st.layout(eventID), nil
}

func (t *memTx) SaveLayout(ctx context.Context, eventID uint64, config json.RawMessage, version uint32) error {
	if err := t.failed("SaveLayout"); err != nil {
		return err
	}
	if _, ok := t.st.events[eventID]; !ok {
		return layout.ErrNotFound
	}
	t.st.saveLayout(eventID, config, version)
	return nil
}

func (t *memTx) CreateArea(ctx context.Context, a *model.Area) error {
	if err := t.failed("CreateArea"); err != nil {
		return err
	}
	a.ID = t.st.addArea(*a)
	return nil
}

func (t *memTx) AreaVenue(ctx context.Context, areaID uint64) (uint64, error) {
	a, ok := t.st.areas[areaID]
	if !ok {
		return 0, layout.ErrNotFound
	}
	return a.VenueID, nil
}

func (t *memTx) DeleteArea(ctx context.Context, areaID uint64) error {
	if err := t.failed("DeleteArea"); err != nil {
		return err
	}
	if _, ok := t.st.areas[areaID]; !ok {
		return layout.ErrNotFound
	}
	delete(t.st.areas, areaID)
	for id, seat := range t.st.seats {
		if seat.AreaID == areaID {
			delete(t.st.seats, id)
		}
	}
	return nil
}

func (t *memTx) CreateSeat(ctx context.Context, s *model.Seat) error {
	if err := t.failed("CreateSeat"); err != nil {
		return err
	}
	if _, ok := t.st.areas[s.AreaID]; !ok {
		return layout.ErrNotFound
	}
	s.ID = t.st.addSeat(*s)
	return nil
}

func (t *memTx) SeatVenue(ctx context.Context, seatID uint64) (uint64, error) {
	seat, ok := t.st.seats[seatID]
	if !ok {
		return 0, layout.ErrNotFound
	}
	a, ok := t.st.areas[seat.AreaID]
	if !ok {
		return 0, layout.ErrNotFound
	}
	return a.VenueID, nil
}

func (t *memTx) UpdateSeatState(ctx context.Context, seatID uint64, state model.SeatState) error {
	if err := t.failed("UpdateSeatState"); err != nil {
		return err
	}
	seat, ok := t.st.seats[seatID]
	if !ok {
		return layout.ErrNotFound
	}
	seat.State = state
	t.st.seats[seatID] = seat
	return nil
}

package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// Skip reasons reported for seats that were left untouched.
const (
	SkipUnresolvedArea = "unresolved area"
	SkipAreaNotFound   = "area not found"
	SkipForeignArea    = "area belongs to another venue"
	SkipSeatNotFound   = "seat not found"
	SkipForeignSeat    = "seat belongs to another venue"
)

// Skip describes a seat descriptor that referenced stale or foreign state.
type Skip struct {
	Index  int    `json:"index"`
	SeatID uint64 `json:"id,omitempty"`
	Code   string `json:"codigo"`
	Reason string `json:"reason"`
}

// TableSkip describes a table dropped from the saved layout because its area
// no longer exists or belongs to another venue.
type TableSkip struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	AreaID uint64 `json:"areaid"`
	Reason string `json:"reason"`
}

// Result is the persisted state after an operation, re-read once the
// transaction has committed.
type Result struct {
	EventID      uint64
	LayoutConfig json.RawMessage
	Seats        []model.Seat
	Version      uint32

	AreasCreated int
	SeatsCreated int
	SeatsUpdated int
	Skipped      []Skip
	Dropped      []TableSkip
	// Mapping maps every client token seen to the area id it resolved to.
	Mapping map[string]uint64
}

// Reconciler applies layout edits to a Store.  It keeps no state between
// calls and is safe for concurrent use.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Get returns the stored layout of an event and every seat of its venue.
func (r *Reconciler) Get(ctx context.Context, eventID uint64) (*Result, error) {
	return r.read(ctx, eventID)
}

// Reconcile creates the areas and seats the request introduces, rewrites the
// client tokens that referenced them, saves the document and updates seat
// states.  Everything happens in one transaction; stale seat references are
// skipped rather than failing it.
func (r *Reconciler) Reconcile(ctx context.Context, eventID uint64, req Request) (*Result, error) {
	res := &Result{EventID: eventID, Mapping: map[string]uint64{}}
	log := logger.FromContext(ctx).WithField("event_id", eventID)

	err := r.store.Update(ctx, func(tx Tx) error {
		// Restart counters if the store retries the transaction.
		res.AreasCreated, res.SeatsCreated, res.SeatsUpdated, res.Skipped, res.Dropped = 0, 0, 0, nil, nil
		res.Mapping = map[string]uint64{}

		venueID, err := r.venue(ctx, tx, eventID, true)
		if err != nil {
			return err
		}
		current, err := tx.LockLayout(ctx, eventID)
		if err != nil {
			return fmt.Errorf("lock layout: %w", err)
		}
		var version uint32
		if current != nil {
			version = current.Version
		}
		if req.Version != nil && *req.Version != version {
			return apperr.Conflict("layout was modified by someone else").
				WithField("expected", *req.Version).WithField("current", version)
		}

		if req.Document != nil {
			if err := r.createPendingAreas(ctx, tx, venueID, req.Document, res); err != nil {
				return err
			}
			if err := r.dropStaleTables(ctx, tx, venueID, req.Document, res); err != nil {
				return err
			}
			for _, d := range res.Dropped {
				log.WithFields(logrus.Fields{
					"table": d.ID, "area_id": d.AreaID, "reason": d.Reason,
				}).Warn("layout: table dropped")
			}
		}
		seats := resolveSeatAreas(req.Seats, res.Mapping)

		if req.Document != nil {
			raw, err := json.Marshal(req.Document)
			if err != nil {
				return fmt.Errorf("encode layout: %w", err)
			}
			if err := tx.SaveLayout(ctx, eventID, raw, version+1); err != nil {
				return fmt.Errorf("save layout: %w", err)
			}
		}

		for i, s := range seats {
			skip, err := r.applySeat(ctx, tx, venueID, s, res)
			if err != nil {
				return fmt.Errorf("asientos[%d]: %w", i, err)
			}
			if skip != "" {
				res.Skipped = append(res.Skipped, Skip{Index: i, SeatID: s.ID, Code: s.Code, Reason: skip})
				log.WithFields(logrus.Fields{
					"seat_id": s.ID, "codigo": s.Code, "area": s.Area.String(), "reason": skip,
				}).Warn("layout: seat skipped")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	final, err := r.read(ctx, eventID)
	if err != nil {
		return nil, err
	}
	final.AreasCreated, final.SeatsCreated, final.SeatsUpdated = res.AreasCreated, res.SeatsCreated, res.SeatsUpdated
	final.Skipped, final.Dropped, final.Mapping = res.Skipped, res.Dropped, res.Mapping
	log.WithFields(logrus.Fields{
		"areas_created": res.AreasCreated, "seats_created": res.SeatsCreated,
		"seats_updated": res.SeatsUpdated, "skipped": len(res.Skipped), "dropped": len(res.Dropped), "version": final.Version,
	}).Info("layout: reconciled")
	return final, nil
}

// createPendingAreas creates one area per distinct pending token and points
// every table that used the token at it.
func (r *Reconciler) createPendingAreas(ctx context.Context, tx Tx, venueID uint64, doc *Document, res *Result) error {
	for i := range doc.Tables {
		t := &doc.Tables[i]
		if !t.Area.IsPending() {
			continue
		}
		tokens := t.tokens()
		var area *model.Area
		for _, tok := range tokens {
			if id, ok := res.Mapping[tok]; ok {
				a := t.areaSpec(venueID)
				a.ID = id
				area = &a
				break
			}
		}
		if area == nil {
			a := t.areaSpec(venueID)
			if err := tx.CreateArea(ctx, &a); err != nil {
				return fmt.Errorf("tables[%d]: create area: %w", i, err)
			}
			res.AreasCreated++
			area = &a
		}
		for _, tok := range tokens {
			if _, ok := res.Mapping[tok]; !ok {
				res.Mapping[tok] = area.ID
			}
		}
		t.resolve(*area)
	}
	return nil
}

// dropStaleTables removes tables bound to an area that is missing or lives in
// another venue, so every saved areaid names an area of the event's venue.
func (r *Reconciler) dropStaleTables(ctx context.Context, tx Tx, venueID uint64, doc *Document, res *Result) error {
	owners := map[uint64]string{}
	kept := doc.Tables[:0]
	for i, t := range doc.Tables {
		areaID, ok := t.Area.ID()
		if !ok {
			kept = append(kept, t)
			continue
		}
		reason, seen := owners[areaID]
		if !seen {
			owner, err := tx.AreaVenue(ctx, areaID)
			switch {
			case errors.Is(err, ErrNotFound):
				reason = SkipAreaNotFound
			case err != nil:
				return fmt.Errorf("tables[%d]: %w", i, err)
			case owner != venueID:
				reason = SkipForeignArea
			}
			owners[areaID] = reason
		}
		if reason != "" {
			res.Dropped = append(res.Dropped, TableSkip{Index: i, ID: t.ID, AreaID: areaID, Reason: reason})
			continue
		}
		kept = append(kept, t)
	}
	doc.Tables = kept
	return nil
}

// resolveSeatAreas rewrites pending seat area references from the mapping.
func resolveSeatAreas(seats []SeatInput, mapping map[string]uint64) []SeatInput {
	out := make([]SeatInput, len(seats))
	copy(out, seats)
	for i := range out {
		if tok, ok := out[i].Area.Token(); ok {
			if id, ok := mapping[tok]; ok {
				out[i].Area = Existing(id)
			}
		}
	}
	return out
}

// applySeat creates or updates one seat.  A non-empty reason means the seat
// was skipped.
func (r *Reconciler) applySeat(ctx context.Context, tx Tx, venueID uint64, s SeatInput, res *Result) (string, error) {
	if s.New {
		areaID, ok := s.Area.ID()
		if !ok || areaID == 0 {
			return SkipUnresolvedArea, nil
		}
		owner, err := tx.AreaVenue(ctx, areaID)
		if errors.Is(err, ErrNotFound) {
			return SkipAreaNotFound, nil
		}
		if err != nil {
			return "", err
		}
		if owner != venueID {
			return SkipForeignArea, nil
		}
		seat := model.Seat{AreaID: areaID, Code: s.Code, Row: s.Row, Col: s.Col, State: s.State}
		if err := tx.CreateSeat(ctx, &seat); err != nil {
			return "", err
		}
		res.SeatsCreated++
		return "", nil
	}

	owner, err := tx.SeatVenue(ctx, s.ID)
	if errors.Is(err, ErrNotFound) {
		return SkipSeatNotFound, nil
	}
	if err != nil {
		return "", err
	}
	if owner != venueID {
		return SkipForeignSeat, nil
	}
	if err := tx.UpdateSeatState(ctx, s.ID, s.State); err != nil {
		return "", err
	}
	res.SeatsUpdated++
	return "", nil
}

// DeleteArea removes an area of the event's venue with its seats and drops
// the tables that referenced it from the layout.
func (r *Reconciler) DeleteArea(ctx context.Context, eventID, areaID uint64) (*Result, error) {
	err := r.store.Update(ctx, func(tx Tx) error {
		venueID, err := r.venue(ctx, tx, eventID, true)
		if err != nil {
			return err
		}
		owner, err := tx.AreaVenue(ctx, areaID)
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("area not found")
		}
		if err != nil {
			return fmt.Errorf("area venue: %w", err)
		}
		if owner != venueID {
			return apperr.NotFound("area not found in this event").WithField("area_id", areaID)
		}

		current, err := tx.LockLayout(ctx, eventID)
		if err != nil {
			return fmt.Errorf("lock layout: %w", err)
		}
		if err := tx.DeleteArea(ctx, areaID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperr.NotFound("area not found")
			}
			return fmt.Errorf("delete area: %w", err)
		}
		if current == nil {
			return nil
		}
		doc, err := decodeStored(current.Config)
		if err != nil {
			return apperr.Integrity("stored layout is unreadable").WithField("event_id", eventID)
		}
		if doc == nil || doc.RemoveArea(areaID) == 0 {
			return nil
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		return tx.SaveLayout(ctx, eventID, raw, current.Version+1)
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithFields(logrus.Fields{"event_id": eventID, "area_id": areaID}).Info("layout: area deleted")
	return r.read(ctx, eventID)
}

// venue resolves the event's venue.  When required, an event without a venue
// is an integrity fault.
func (r *Reconciler) venue(ctx context.Context, rd Reader, eventID uint64, required bool) (uint64, error) {
	id, err := rd.VenueOfEvent(ctx, eventID)
	if errors.Is(err, ErrNotFound) {
		return 0, apperr.NotFound("event not found")
	}
	if err != nil {
		return 0, fmt.Errorf("resolve venue: %w", err)
	}
	if id == nil {
		if required {
			return 0, apperr.Integrity("event has no venue").WithField("event_id", eventID)
		}
		return 0, nil
	}
	return *id, nil
}

// read loads the committed layout and seats of an event.
func (r *Reconciler) read(ctx context.Context, eventID uint64) (*Result, error) {
	rd := r.store.Reader()
	venueID, err := r.venue(ctx, rd, eventID, false)
	if err != nil {
		return nil, err
	}
	res := &Result{EventID: eventID, LayoutConfig: json.RawMessage("null"), Seats: []model.Seat{}}
	l, err := rd.GetLayout(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if l != nil {
		res.LayoutConfig, res.Version = l.Config, l.Version
	}
	if venueID != 0 {
		seats, err := rd.ListVenueSeats(ctx, venueID)
		if err != nil {
			return nil, fmt.Errorf("list seats: %w", err)
		}
		res.Seats = seats
	}
	return res, nil
}

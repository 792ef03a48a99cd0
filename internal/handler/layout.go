package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/layout"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
)

// maxLayoutBody bounds a PUT layout body.
const maxLayoutBody = 4 << 20

// EventLookup loads events for ownership checks.  *repository.EventRepo
// satisfies it.
type EventLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// Publisher emits activity events after a layout write commits.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// CachePurger drops cached GET responses for a path.
type CachePurger interface {
	Purge(ctx context.Context, path string) error
}

// LayoutHandler serves the layout editor endpoints.
type LayoutHandler struct {
	Reconciler *layout.Reconciler
	Events     EventLookup
	Publisher  Publisher   // optional
	Cache      CachePurger // optional
}

func NewLayoutHandler(r *layout.Reconciler, events EventLookup, pub Publisher, cache CachePurger) *LayoutHandler {
	if r == nil || events == nil {
		panic("nil dependency passed to NewLayoutHandler")
	}
	return &LayoutHandler{Reconciler: r, Events: events, Publisher: pub, Cache: cache}
}

type layoutResp struct {
	Message      string             `json:"message,omitempty"`
	LayoutConfig json.RawMessage    `json:"layoutConfig"`
	Seats        []model.Seat       `json:"seats"`
	Version      uint32             `json:"version"`
	Skipped      []layout.Skip      `json:"skipped,omitempty"`
	Dropped      []layout.TableSkip `json:"droppedTables,omitempty"`
}

func newLayoutResp(msg string, res *layout.Result) layoutResp {
	out := layoutResp{Message: msg, LayoutConfig: res.LayoutConfig, Seats: res.Seats, Version: res.Version, Skipped: res.Skipped, Dropped: res.Dropped}
	if len(out.LayoutConfig) == 0 {
		out.LayoutConfig = json.RawMessage("null")
	}
	if out.Seats == nil {
		out.Seats = []model.Seat{}
	}
	return out
}

// LayoutPath is the GET path whose cached responses a write invalidates.
func LayoutPath(eventID uint64) string {
	return fmt.Sprintf("/v1/eventos/%d/layout", eventID)
}

// Get handles GET /v1/eventos/:eventoID/layout.
func (h *LayoutHandler) Get(c echo.Context) error {
	eventID, err := parseID(c, "eventoID")
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.Reconciler.Get(c.Request().Context(), eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newLayoutResp("", res))
}

// managedEvent checks that the event exists and the caller may edit it.
func (h *LayoutHandler) managedEvent(c echo.Context) (uint64, error) {
	eventID, err := parseID(c, "eventoID")
	if err != nil {
		return 0, err
	}
	ev, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		return 0, err
	}
	if !canManage(c, ev) {
		return 0, apperr.Forbidden("event belongs to another organizer")
	}
	return eventID, nil
}

// Put handles PUT /v1/eventos/:eventoID/layout.
func (h *LayoutHandler) Put(c echo.Context) error {
	eventID, err := h.managedEvent(c)
	if err != nil {
		return respondError(c, err)
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxLayoutBody+1))
	if err != nil {
		return respondError(c, apperr.Validation("unreadable request body"))
	}
	if len(body) > maxLayoutBody {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "request body too large", "code": apperr.CodeValidation})
	}
	req, err := layout.DecodeRequest(body)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	res, err := h.Reconciler.Reconcile(ctx, eventID, req)
	if err != nil {
		return respondError(c, err)
	}
	h.afterWrite(ctx, c, queue.ActivityEvent{
		Action:       queue.ActionLayoutChanged,
		EventID:      eventID,
		AreasCreated: res.AreasCreated,
		SeatsCreated: res.SeatsCreated,
		SeatsUpdated: res.SeatsUpdated,
		SeatsSkipped: len(res.Skipped),
		Version:      res.Version,
	})
	return c.JSON(http.StatusOK, newLayoutResp("layout saved", res))
}

// DeleteArea handles DELETE /v1/eventos/:eventoID/areas/:areaID.
// Both ids are parsed before any lookup.
func (h *LayoutHandler) DeleteArea(c echo.Context) error {
	if _, err := parseID(c, "eventoID"); err != nil {
		return respondError(c, err)
	}
	areaID, err := parseID(c, "areaID")
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := h.managedEvent(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	res, err := h.Reconciler.DeleteArea(ctx, eventID, areaID)
	if err != nil {
		return respondError(c, err)
	}
	h.afterWrite(ctx, c, queue.ActivityEvent{
		Action:  queue.ActionAreaDeleted,
		EventID: eventID,
		AreaID:  areaID,
		Version: res.Version,
	})
	return c.JSON(http.StatusOK, newLayoutResp("area deleted", res))
}

// afterWrite purges the cached layout and publishes activity.  Neither
// failure affects the response; the write has already committed.
func (h *LayoutHandler) afterWrite(ctx context.Context, c echo.Context, ev queue.ActivityEvent) {
	log := logger.FromContext(ctx).WithField("event_id", ev.EventID)
	if h.Cache != nil {
		if err := h.Cache.Purge(ctx, LayoutPath(ev.EventID)); err != nil {
			log.WithError(err).Warn("layout: cache purge failed")
		}
	}
	if h.Publisher != nil {
		ev.UserID, _ = getUserID(c)
		if err := h.Publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
			log.WithError(err).Warn("layout: activity publish failed")
		}
	}
}

package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// Request is a decoded layout write.  A nil Document leaves the stored layout
// untouched.  Version, when set, must match the stored layout's version.
type Request struct {
	Document *Document
	Seats    []SeatInput
	Version  *uint32
}

// SeatInput is one seat descriptor of a layout write.  New seats are created
// under Area; existing seats only have their State updated.
type SeatInput struct {
	ID    uint64
	New   bool
	Code  string
	State model.SeatState
	Row   *int
	Col   *int
	Area  Ref
}

type wireRequest struct {
	Layout  json.RawMessage `json:"configuracionCroquis"`
	Seats   json.RawMessage `json:"asientos"`
	Version *uint32         `json:"version"`
}

type wireSeat struct {
	ID     json.RawMessage `json:"id"`
	Code   json.RawMessage `json:"codigo"`
	State  json.RawMessage `json:"estado"`
	Row    json.RawMessage `json:"fila"`
	Col    json.RawMessage `json:"columna"`
	AreaID json.RawMessage `json:"areaID"`
	IsNew  bool            `json:"isNew"`
}

// DecodeRequest validates a PUT layout body.  Every failure is a validation
// error.
func DecodeRequest(body []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return Request{}, apperr.Validation("malformed request body")
	}
	doc, err := DecodeDocument(w.Layout)
	if err != nil {
		return Request{}, apperr.Validationf("configuracionCroquis: %v", err)
	}
	seats, err := DecodeSeats(w.Seats)
	if err != nil {
		return Request{}, err
	}
	return Request{Document: doc, Seats: seats, Version: w.Version}, nil
}

// DecodeSeats validates the seat list.  It must be present and an array,
// possibly empty.
func DecodeSeats(raw json.RawMessage) ([]SeatInput, error) {
	if kindOf(raw) != jsonArray {
		return nil, apperr.Validation("asientos must be an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Validationf("asientos: %v", err)
	}
	out := make([]SeatInput, 0, len(items))
	for i, item := range items {
		s, err := decodeSeat(item)
		if err != nil {
			if err.field == "" {
				return nil, apperr.Validationf("asientos[%d]: %s", i, err.msg)
			}
			return nil, apperr.Validationf("asientos[%d].%s: %s", i, err.field, err.msg)
		}
		out = append(out, s)
	}
	return out, nil
}

type fieldError struct {
	field string
	msg   string
}

func decodeSeat(raw json.RawMessage) (SeatInput, *fieldError) {
	if kindOf(raw) != jsonObject {
		return SeatInput{}, &fieldError{"", "must be an object"}
	}
	var w wireSeat
	if err := json.Unmarshal(raw, &w); err != nil {
		return SeatInput{}, &fieldError{"", err.Error()}
	}

	var s SeatInput
	var err error
	if s.ID, s.New, err = decodeSeatID(w.ID); err != nil {
		return s, &fieldError{"id", err.Error()}
	}
	if w.IsNew {
		s.ID, s.New = 0, true
	}

	if kindOf(w.Code) != jsonString {
		return s, &fieldError{"codigo", "is required"}
	}
	_ = json.Unmarshal(w.Code, &s.Code)
	if s.Code = strings.TrimSpace(s.Code); s.Code == "" {
		return s, &fieldError{"codigo", "is required"}
	}

	var state string
	if kindOf(w.State) != jsonString {
		return s, &fieldError{"estado", "is required"}
	}
	_ = json.Unmarshal(w.State, &state)
	st, ok := model.ParseSeatState(state)
	if !ok {
		return s, &fieldError{"estado", fmt.Sprintf("unknown seat state %q", state)}
	}
	s.State = st

	if s.Row, err = decodeCoord(w.Row); err != nil {
		return s, &fieldError{"fila", err.Error()}
	}
	if s.Col, err = decodeCoord(w.Col); err != nil {
		return s, &fieldError{"columna", err.Error()}
	}
	if s.Area, err = decodeAreaRef(w.AreaID); err != nil {
		return s, &fieldError{"areaID", err.Error()}
	}
	return s, nil
}

// decodeSeatID maps the wire id to (id, new).  Absent, zero, any string and
// placeholders above TempIDCeiling all denote a new seat; only numbers name
// persisted seats.
func decodeSeatID(raw json.RawMessage) (uint64, bool, error) {
	switch kindOf(raw) {
	case jsonAbsent, jsonNull, jsonString:
		return 0, true, nil
	case jsonNumber:
	default:
		return 0, false, fmt.Errorf("must be a number or a string")
	}
	text := string(raw)
	n, ok := parseInteger(text)
	switch {
	case !ok:
		return 0, false, fmt.Errorf("must be an integer")
	case n < 0:
		return 0, false, fmt.Errorf("must not be negative")
	case n == 0 || n > TempIDCeiling:
		return 0, true, nil
	}
	return uint64(n), false, nil
}

func decodeCoord(raw json.RawMessage) (*int, error) {
	var text string
	switch kindOf(raw) {
	case jsonAbsent, jsonNull:
		return nil, nil
	case jsonNumber:
		text = string(raw)
	case jsonString:
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("must be an integer")
	}
	n, ok := parseInteger(text)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("must be an integer, got %s", strconv.Quote(text))
	}
	v := int(n)
	return &v, nil
}

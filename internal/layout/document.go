package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// Defaults for areas created from a table entry that omits them.
const (
	DefaultAreaName     = "Área"
	DefaultAreaCapacity = 50
)

// Document is the typed form of an event's layout blob.  Only the tables list
// is interpreted; every other top-level key is carried through untouched.
type Document struct {
	Tables []Table
	Extra  map[string]json.RawMessage

	hasTables bool
}

// Table is one area descriptor of the layout.  Name, Capacity and Type are
// nil when the client left them out.  Meta holds the visual metadata the
// server does not interpret (position, size, rotation, colours, ...).
type Table struct {
	ID       string
	Area     Ref
	Name     *string
	Capacity *uint32
	Type     *model.AreaType
	Meta     map[string]json.RawMessage

	idNumeric bool
	rawArea   json.RawMessage
}

// DecodeDocument parses a client-submitted layout.  A null or absent layout
// yields a nil Document.  Invalid table fields are rejected.
func DecodeDocument(raw json.RawMessage) (*Document, error) {
	return decodeDocument(raw, true)
}

// decodeStored parses a persisted layout.  Table fields that no longer
// validate are kept verbatim in Meta rather than rejected.
func decodeStored(raw json.RawMessage) (*Document, error) {
	return decodeDocument(raw, false)
}

func decodeDocument(raw json.RawMessage, strict bool) (*Document, error) {
	switch kindOf(raw) {
	case jsonAbsent, jsonNull:
		return nil, nil
	case jsonString:
		// Some clients send the layout as a JSON-encoded string.
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if kindOf(json.RawMessage(inner)) != jsonObject {
			return nil, errors.New("layout must be an object")
		}
		raw = json.RawMessage(inner)
	case jsonObject:
	default:
		return nil, errors.New("layout must be an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	doc := &Document{Extra: fields}
	tablesRaw, ok := fields["tables"]
	if !ok {
		return doc, nil
	}
	delete(fields, "tables")
	doc.hasTables = true

	switch kindOf(tablesRaw) {
	case jsonNull:
		return doc, nil
	case jsonArray:
	default:
		return nil, errors.New("tables must be an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(tablesRaw, &items); err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	doc.Tables = make([]Table, 0, len(items))
	for i, item := range items {
		t, err := decodeTable(item, strict)
		if err != nil {
			return nil, fmt.Errorf("tables[%d]: %w", i, err)
		}
		doc.Tables = append(doc.Tables, t)
	}
	return doc, nil
}

// tableFields are the interpreted table keys, matched case-insensitively.
var tableFields = map[string]bool{"id": true, "areaid": true, "nombre": true, "capacidad": true, "tipo": true}

func decodeTable(raw json.RawMessage, strict bool) (Table, error) {
	if kindOf(raw) != jsonObject {
		return Table{}, errors.New("table must be an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Table{}, err
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	t := Table{Meta: make(map[string]json.RawMessage)}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		v := fields[key]
		folded := strings.ToLower(key)
		if known := tableFields[folded]; known && seen[folded] {
			if strict {
				return Table{}, fmt.Errorf("duplicate key %q", key)
			}
			t.Meta[key] = v
			continue
		}
		seen[folded] = true

		var err error
		switch folded {
		case "id":
			err = t.decodeID(v)
		case "areaid":
			if t.Area, err = decodeAreaRef(v); err == nil {
				t.rawArea = v
			}
		case "nombre":
			err = t.decodeName(v)
		case "capacidad":
			err = t.decodeCapacity(v)
		case "tipo":
			err = t.decodeType(v)
		default:
			t.Meta[key] = v
			continue
		}
		if err != nil {
			if strict {
				return Table{}, fmt.Errorf("%s: %w", key, err)
			}
			t.Meta[key] = v
		}
	}

	if t.Area.IsZero() && t.ID != "" {
		if r, err := ParseAreaRef(t.ID); err == nil && (r.IsPending() || hasAreaPrefix(t.ID)) {
			t.Area = r
		}
	}
	return t, nil
}

func (t *Table) decodeID(v json.RawMessage) error {
	switch kindOf(v) {
	case jsonNull:
		return nil
	case jsonNumber:
		if _, ok := parseInteger(string(v)); !ok {
			return errors.New("must be an integer")
		}
		t.ID, t.idNumeric = strings.TrimSpace(string(v)), true
		return nil
	case jsonString:
		return json.Unmarshal(v, &t.ID)
	}
	return errors.New("must be a string or a number")
}

func (t *Table) decodeName(v json.RawMessage) error {
	switch kindOf(v) {
	case jsonNull:
		return nil
	case jsonString:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		t.Name = &s
		return nil
	}
	return errors.New("must be a string")
}

func (t *Table) decodeCapacity(v json.RawMessage) error {
	var text string
	switch kindOf(v) {
	case jsonNull:
		return nil
	case jsonNumber:
		text = string(v)
	case jsonString:
		if err := json.Unmarshal(v, &text); err != nil {
			return err
		}
	default:
		return errors.New("must be a number")
	}
	n, ok := parseInteger(text)
	if !ok || n <= 0 || n > math.MaxUint32 {
		return errors.New("must be a positive integer")
	}
	c := uint32(n)
	t.Capacity = &c
	return nil
}

func (t *Table) decodeType(v json.RawMessage) error {
	switch kindOf(v) {
	case jsonNull:
		return nil
	case jsonString:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		typ, ok := model.ParseAreaType(s)
		if !ok {
			return fmt.Errorf("unknown area type %q", s)
		}
		t.Type = &typ
		return nil
	}
	return errors.New("must be a string")
}

// tokens lists every client token that names this table's area: the pending
// area reference and, when it is a placeholder, the table's own id.
func (t Table) tokens() []string {
	var out []string
	if tok, ok := t.Area.Token(); ok {
		out = append(out, tok)
	}
	if t.ID != "" && isTempID(t.ID) {
		tok := t.ID
		if n, ok := parseInteger(t.ID); ok {
			tok = strconv.FormatInt(n, 10)
		}
		if len(out) == 0 || out[0] != tok {
			out = append(out, tok)
		}
	}
	return out
}

// resolve points the table at a persisted area and fills in the fields used
// to create it.
func (t *Table) resolve(a model.Area) {
	t.Area = Existing(a.ID)
	t.ID = areaIDPrefix + strconv.FormatUint(a.ID, 10)
	t.idNumeric = false
	t.rawArea = nil
	name, capacity, typ := a.Name, a.Capacity, a.Type
	t.Name, t.Capacity, t.Type = &name, &capacity, &typ
}

// areaSpec returns the area a pending table asks for, with defaults applied.
func (t Table) areaSpec(venueID uint64) model.Area {
	a := model.Area{VenueID: venueID, Name: DefaultAreaName, Capacity: DefaultAreaCapacity, Type: model.DefaultAreaType}
	if t.Name != nil && strings.TrimSpace(*t.Name) != "" {
		a.Name = strings.TrimSpace(*t.Name)
	}
	if t.Capacity != nil {
		a.Capacity = *t.Capacity
	}
	if t.Type != nil {
		a.Type = *t.Type
	}
	return a
}

// MarshalJSON merges the interpreted fields back over Meta.
func (t Table) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Meta)+5)
	for k, v := range t.Meta {
		out[k] = v
	}
	put := func(key string, v interface{}) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}

	switch {
	case t.idNumeric:
		out["id"] = json.RawMessage(t.ID)
	case t.ID != "":
		if err := put("id", t.ID); err != nil {
			return nil, err
		}
	}
	switch {
	case t.Area.IsExisting():
		out["areaid"] = json.RawMessage(t.Area.String())
	case t.Area.IsPending() && t.rawArea != nil:
		out["areaid"] = t.rawArea
	}
	if t.Name != nil {
		if err := put("nombre", *t.Name); err != nil {
			return nil, err
		}
	}
	if t.Capacity != nil {
		out["capacidad"] = json.RawMessage(strconv.FormatUint(uint64(*t.Capacity), 10))
	}
	if t.Type != nil {
		if err := put("tipo", *t.Type); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// MarshalJSON writes the extra keys plus the tables list.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Extra)+1)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.hasTables || len(d.Tables) > 0 {
		tables := d.Tables
		if tables == nil {
			tables = []Table{}
		}
		out["tables"] = tables
	}
	return json.Marshal(out)
}

// RemoveArea drops every table bound to the persisted area id and reports how
// many were removed.
func (d *Document) RemoveArea(id uint64) int {
	kept := d.Tables[:0]
	removed := 0
	for _, t := range d.Tables {
		if got, ok := t.Area.ID(); ok && got == id {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	d.Tables = kept
	return removed
}

func hasAreaPrefix(s string) bool {
	return len(s) > len(areaIDPrefix) && strings.EqualFold(s[:len(areaIDPrefix)], areaIDPrefix)
}

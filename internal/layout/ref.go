// Package layout reconciles client-edited seating layouts with the persisted
// areas and seats of an event's venue.
//
// Clients refer to areas and seats that do not exist yet with temporary
// identifiers.  Those are decoded once, at the boundary, into a Ref that is
// either Existing(id) or Pending(token); nothing past decoding inspects raw
// identifier values again.
package layout

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// TempIDCeiling is the largest identifier treated as a real row id.  Numeric
// identifiers above it are client placeholders.
const TempIDCeiling = 1_000_000_000

// newPrefix marks string identifiers minted by the client for unsaved items.
const newPrefix = "new"

// areaIDPrefix is the synthetic table id written for persisted areas.
const areaIDPrefix = "area-"

type refKind uint8

const (
	refNone refKind = iota
	refExisting
	refPending
)

// Ref is a reference to an area as submitted by a client.
type Ref struct {
	kind  refKind
	id    uint64
	token string
}

// Existing refers to a persisted row.
func Existing(id uint64) Ref { return Ref{kind: refExisting, id: id} }

// Pending refers to a row the client has not saved yet.  Equal tokens within
// one request denote the same row.
func Pending(token string) Ref { return Ref{kind: refPending, token: token} }

func (r Ref) IsZero() bool     { return r.kind == refNone }
func (r Ref) IsExisting() bool { return r.kind == refExisting }
func (r Ref) IsPending() bool  { return r.kind == refPending }

// ID returns the row id of an Existing ref.
func (r Ref) ID() (uint64, bool) { return r.id, r.kind == refExisting }

// Token returns the client token of a Pending ref.
func (r Ref) Token() (string, bool) { return r.token, r.kind == refPending }

func (r Ref) String() string {
	switch r.kind {
	case refExisting:
		return strconv.FormatUint(r.id, 10)
	case refPending:
		return "pending(" + r.token + ")"
	}
	return "none"
}

// MarshalJSON writes the row id, the token of a pending ref, or null.
func (r Ref) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case refExisting:
		return []byte(strconv.FormatUint(r.id, 10)), nil
	case refPending:
		return json.Marshal(r.token)
	}
	return []byte("null"), nil
}

// ParseAreaRef decodes a string area reference.  Accepted forms are a decimal
// id, a synthetic "area-<id>" and anything starting with the new-item prefix.
func ParseAreaRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Ref{}, nil
	case hasNewPrefix(s):
		return Pending(s), nil
	}
	if n, ok := parseInteger(s); ok {
		return refFromInt(n)
	}
	if hasAreaPrefix(s) {
		if n, err := strconv.ParseUint(s[len(areaIDPrefix):], 10, 64); err == nil && n > 0 {
			return refFromInt(int64(n))
		}
	}
	return Ref{}, errors.New("unrecognised area reference " + strconv.Quote(s))
}

// decodeAreaRef decodes a JSON area reference.  Absent, null, empty and zero
// all decode to the zero Ref.
func decodeAreaRef(raw json.RawMessage) (Ref, error) {
	switch kindOf(raw) {
	case jsonAbsent, jsonNull:
		return Ref{}, nil
	case jsonNumber:
		n, ok := parseInteger(string(raw))
		if !ok {
			return Ref{}, errors.New("must be an integer")
		}
		return refFromInt(n)
	case jsonString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Ref{}, err
		}
		return ParseAreaRef(s)
	}
	return Ref{}, errors.New("must be a number or a string")
}

func refFromInt(n int64) (Ref, error) {
	switch {
	case n < 0:
		return Ref{}, errors.New("must not be negative")
	case n == 0:
		return Ref{}, nil
	case n > TempIDCeiling:
		return Pending(strconv.FormatInt(n, 10)), nil
	}
	return Existing(uint64(n)), nil
}

// isTempID reports whether a table or seat id names an unsaved item.
func isTempID(s string) bool {
	if hasNewPrefix(s) {
		return true
	}
	n, ok := parseInteger(s)
	return ok && n > TempIDCeiling
}

func hasNewPrefix(s string) bool {
	return len(s) >= len(newPrefix) && strings.EqualFold(s[:len(newPrefix)], newPrefix)
}

// parseInteger accepts integral JSON numbers, including forms like 1e3 or 8.0.
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<62 {
		return 0, false
	}
	return int64(f), true
}

type jsonKind uint8

const (
	jsonAbsent jsonKind = iota
	jsonNull
	jsonBool
	jsonNumber
	jsonString
	jsonArray
	jsonObject
)

func kindOf(raw json.RawMessage) jsonKind {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case 'n':
			return jsonNull
		case 't', 'f':
			return jsonBool
		case '"':
			return jsonString
		case '[':
			return jsonArray
		case '{':
			return jsonObject
		}
		return jsonNumber
	}
	return jsonAbsent
}

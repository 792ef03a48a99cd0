package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestParseAreaRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{in: "42", want: Existing(42)},
		{in: " area-9 ", want: Existing(9)},
		{in: "AREA-9", want: Existing(9)},
		{in: "NEW-x", want: Pending("NEW-x")},
		{in: "newTable", want: Pending("newTable")},
		{in: "1111111111", want: Pending("1111111111")},
		{in: "1000000000", want: Existing(TempIDCeiling)},
		{in: "", want: Ref{}},
		{in: "0", want: Ref{}},
		{in: "mesa", wantErr: true},
		{in: "area-", wantErr: true},
		{in: "-3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAreaRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAreaRefJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{in: ``, want: Ref{}},
		{in: `null`, want: Ref{}},
		{in: `0`, want: Ref{}},
		{in: `8`, want: Existing(8)},
		{in: `8.0`, want: Existing(8)},
		{in: `1111111111`, want: Pending("1111111111")},
		{in: `"1111111111"`, want: Pending("1111111111")},
		{in: `"new-a"`, want: Pending("new-a")},
		{in: `-1`, wantErr: true},
		{in: `1.5`, wantErr: true},
		{in: `true`, wantErr: true},
		{in: `[1]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := decodeAreaRef(json.RawMessage(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSeatID(t *testing.T) {
	tests := []struct {
		in      string
		id      uint64
		isNew   bool
		wantErr bool
	}{
		{in: ``, isNew: true},
		{in: `null`, isNew: true},
		{in: `0`, isNew: true},
		{in: `"tmp-1"`, isNew: true},
		{in: `"new-seat"`, isNew: true},
		{in: `3000000000`, isNew: true},
		{in: `5`, id: 5},
		{in: `"5"`, isNew: true},
		{in: `-2`, wantErr: true},
		{in: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, isNew, err := decodeSeatID(json.RawMessage(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.isNew, isNew)
		})
	}
}

func TestDecodeDocumentPreservesUnknownKeys(t *testing.T) {
	in := `{"zoom":1.5,"tables":[{"id":"area-3","areaid":3,"nombre":"VIP","capacidad":20,"tipo":"vip","x":1,"style":{"color":"red"}}]}`
	doc, err := DecodeDocument(json.RawMessage(in))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, Existing(3), doc.Tables[0].Area)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zoom":1.5,"tables":[{"id":"area-3","areaid":3,"nombre":"VIP","capacidad":20,"tipo":"VIP","x":1,"style":{"color":"red"}}]}`, string(out))
}

func TestDecodeDocumentPendingTables(t *testing.T) {
	in := `{"tables":[
		{"id":"new-table-1","areaid":1111111111},
		{"id":"new-table-2"},
		{"id":2000000000},
		{"id":"mesa-4","areaid":"area-4"},
		{"id":"decor"}
	]}`
	doc, err := DecodeDocument(json.RawMessage(in))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 5)

	assert.Equal(t, Pending("1111111111"), doc.Tables[0].Area)
	assert.Equal(t, []string{"1111111111", "new-table-1"}, doc.Tables[0].tokens())
	assert.Equal(t, Pending("new-table-2"), doc.Tables[1].Area)
	assert.Equal(t, []string{"new-table-2"}, doc.Tables[1].tokens())
	assert.Equal(t, Pending("2000000000"), doc.Tables[2].Area)
	assert.Equal(t, Existing(4), doc.Tables[3].Area)
	assert.True(t, doc.Tables[4].Area.IsZero())
}

func TestDecodeDocumentRejects(t *testing.T) {
	for name, in := range map[string]string{
		"array layout":      `[1,2]`,
		"tables object":     `{"tables":{}}`,
		"table not object":  `{"tables":[1]}`,
		"zero capacity":     `{"tables":[{"id":"new-1","capacidad":0}]}`,
		"negative capacity": `{"tables":[{"id":"new-1","capacidad":-5}]}`,
		"text capacity":     `{"tables":[{"id":"new-1","capacidad":"many"}]}`,
		"unknown type":      `{"tables":[{"id":"new-1","tipo":"balcony"}]}`,
		"bad area ref":      `{"tables":[{"id":"t","areaid":"mesa"}]}`,
		"string not object": `"[]"`,
		"areaid twice":      `{"tables":[{"areaid":1,"areaID":2}]}`,
		"id twice":          `{"tables":[{"id":"a","ID":"b"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument(json.RawMessage(in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDocumentNullAndEncodedString(t *testing.T) {
	doc, err := DecodeDocument(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, doc)

	doc, err = DecodeDocument(json.RawMessage(`"{\"tables\":[{\"id\":\"new-1\"}]}"`))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.True(t, doc.Tables[0].Area.IsPending())
}

func TestDecodeStoredCaseDuplicatesAreStable(t *testing.T) {
	for i := 0; i < 20; i++ {
		doc, err := decodeStored(json.RawMessage(`{"tables":[{"areaid":1,"areaID":2}]}`))
		require.NoError(t, err)
		require.Len(t, doc.Tables, 1)
		id, ok := doc.Tables[0].Area.ID()
		require.True(t, ok)
		assert.Equal(t, uint64(2), id)
		assert.JSONEq(t, `1`, string(doc.Tables[0].Meta["areaid"]))
	}
}

func TestDecodeStoredIsLenient(t *testing.T) {
	doc, err := decodeStored(json.RawMessage(`{"tables":[{"areaid":4,"tipo":"balcony","capacidad":0}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, Existing(4), doc.Tables[0].Area)
	assert.JSONEq(t, `"balcony"`, string(doc.Tables[0].Meta["tipo"]))
	assert.JSONEq(t, `0`, string(doc.Tables[0].Meta["capacidad"]))
}

func TestTableResolveFillsDefaults(t *testing.T) {
	doc, err := DecodeDocument(json.RawMessage(`{"tables":[{"id":"new-1","x":3}]}`))
	require.NoError(t, err)
	spec := doc.Tables[0].areaSpec(7)
	assert.Equal(t, model.Area{VenueID: 7, Name: DefaultAreaName, Capacity: DefaultAreaCapacity, Type: model.AreaGeneral}, spec)

	spec.ID = 12
	doc.Tables[0].resolve(spec)
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tables":[{"id":"area-12","areaid":12,"nombre":"Área","capacidad":50,"tipo":"GENERAL","x":3}]}`, string(out))
}

func TestRemoveArea(t *testing.T) {
	doc, err := DecodeDocument(json.RawMessage(`{"tables":[{"areaid":1},{"id":"area-2"},{"areaid":1,"id":"dup"},{"id":"stage"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.RemoveArea(1))
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, Existing(2), doc.Tables[0].Area)
	assert.Equal(t, "stage", doc.Tables[1].ID)
	assert.Equal(t, 0, doc.RemoveArea(99))
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"version":3,"asientos":[{"id":5,"codigo":" A1 ","estado":"ocupado","fila":"2","columna":4,"areaId":"area-3"}]}`))
	require.NoError(t, err)
	assert.Nil(t, req.Document)
	require.NotNil(t, req.Version)
	assert.Equal(t, uint32(3), *req.Version)
	require.Len(t, req.Seats, 1)
	s := req.Seats[0]
	assert.Equal(t, uint64(5), s.ID)
	assert.False(t, s.New)
	assert.Equal(t, "A1", s.Code)
	assert.Equal(t, model.SeatOccupied, s.State)
	assert.Equal(t, 2, *s.Row)
	assert.Equal(t, 4, *s.Col)
	assert.Equal(t, Existing(3), s.Area)

	req, err = DecodeRequest([]byte(`{"asientos":[{"id":9,"isNew":true,"codigo":"B","estado":"available"}]}`))
	require.NoError(t, err)
	assert.True(t, req.Seats[0].New)
	assert.Zero(t, req.Seats[0].ID)
}

func TestDecodeRequestRejects(t *testing.T) {
	for name, body := range map[string]string{
		"not json":         `{`,
		"missing seats":    `{"configuracionCroquis":{"tables":[]}}`,
		"seats not array":  `{"asientos":{}}`,
		"seat not object":  `{"asientos":[1]}`,
		"missing codigo":   `{"asientos":[{"estado":"DISPONIBLE"}]}`,
		"blank codigo":     `{"asientos":[{"codigo":"  ","estado":"DISPONIBLE"}]}`,
		"missing estado":   `{"asientos":[{"codigo":"A1"}]}`,
		"unknown estado":   `{"asientos":[{"codigo":"A1","estado":"roto"}]}`,
		"bad fila":         `{"asientos":[{"codigo":"A1","estado":"DISPONIBLE","fila":"A"}]}`,
		"negative id":      `{"asientos":[{"id":-1,"codigo":"A1","estado":"DISPONIBLE"}]}`,
		"bad area":         `{"asientos":[{"codigo":"A1","estado":"DISPONIBLE","areaID":"mesa"}]}`,
		"tables not array": `{"configuracionCroquis":{"tables":"x"},"asientos":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(body))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation), err.Error())
		})
	}
}

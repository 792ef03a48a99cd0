package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var seatCols = []string{"id", "area_id", "code", "seat_row", "seat_col", "state"}

func TestMySQLErrorClassification(t *testing.T) {
	assert.True(t, isForeignKey(&mysql.MySQLError{Number: 1452}))
	assert.True(t, isForeignKey(&mysql.MySQLError{Number: 1451}))
	assert.False(t, isForeignKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicate(errors.New("Error 1062 in some text")))
	assert.False(t, isForeignKey(nil))
}

func TestSeatListByAreaOrdersByRowThenColumn(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`WHERE s.area_id = ?`) + `\s+` +
		q(`ORDER BY s.seat_row IS NULL, s.seat_row, s.seat_col IS NULL, s.seat_col, s.id`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(4, 3, "A1", 0, 1, "DISPONIBLE").
			AddRow(2, 3, "A2", 0, 2, "OCUPADO").
			AddRow(9, 3, "X", nil, nil, "BLOQUEADO"))

	seats, err := NewSeatRepo(db).ListByArea(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, "A1", seats[0].Code)
	require.NotNil(t, seats[1].Col)
	assert.Equal(t, 2, *seats[1].Col)
	assert.Equal(t, model.SeatOccupied, seats[1].State)
	assert.Nil(t, seats[2].Row)
	assert.Nil(t, seats[2].Col)
}

func TestSeatListByVenueOrdersByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`JOIN areas a ON a.id = s.area_id`) + `\s+` + q(`WHERE a.venue_id = ?`) + `\s+` + q(`ORDER BY s.id`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(seatCols))

	seats, err := NewSeatRepo(db).ListByVenue(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, seats)
	assert.Empty(t, seats)
}

func TestSeatUpdateState(t *testing.T) {
	const update = `UPDATE seats SET state = ? WHERE id = ?`
	const byID = `FROM seats s WHERE s.id = ?`

	t.Run("changed", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(q(update)).WithArgs(model.SeatOccupied, uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, NewSeatRepo(db).UpdateState(context.Background(), 5, model.SeatOccupied))
	})
	t.Run("unchanged value falls back to a lookup", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(q(update)).WithArgs(model.SeatOccupied, uint64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(q(byID)).WithArgs(uint64(5)).
			WillReturnRows(sqlmock.NewRows(seatCols).AddRow(5, 1, "A1", nil, nil, "OCUPADO"))
		assert.NoError(t, NewSeatRepo(db).UpdateState(context.Background(), 5, model.SeatOccupied))
	})
	t.Run("missing seat", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(q(update)).WithArgs(model.SeatOccupied, uint64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(q(byID)).WithArgs(uint64(5)).WillReturnError(sql.ErrNoRows)
		err := NewSeatRepo(db).UpdateState(context.Background(), 5, model.SeatOccupied)
		assert.ErrorIs(t, err, ErrSeatNotFound)
	})
}

func TestSeatCreateMapsForeignKeyToAreaNotFound(t *testing.T) {
	db, mock := newMock(t)
	row, col := 1, 2
	mock.ExpectExec(q(`INSERT INTO seats (area_id, code, seat_row, seat_col, state) VALUES (?, ?, ?, ?, ?)`)).
		WithArgs(uint64(77), "A1", &row, &col, model.SeatAvailable).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "a foreign key constraint fails"})

	s := &model.Seat{AreaID: 77, Code: "A1", Row: &row, Col: &col, State: model.SeatAvailable}
	err := NewSeatRepo(db).Create(context.Background(), s)
	assert.ErrorIs(t, err, ErrAreaNotFound)
	assert.Zero(t, s.ID)
}

func TestSeatVenueOf(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q(`SELECT a.venue_id FROM seats s JOIN areas a ON a.id = s.area_id WHERE s.id = ?`)).
		WithArgs(uint64(1)).WillReturnRows(sqlmock.NewRows([]string{"venue_id"}).AddRow(7))
	mock.ExpectQuery(q(`SELECT a.venue_id FROM seats s`)).WithArgs(uint64(2)).WillReturnError(sql.ErrNoRows)

	repo := NewSeatRepo(db)
	v, err := repo.VenueOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	_, err = repo.VenueOf(context.Background(), 2)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}

func TestAreaDeleteRemovesSeatsFirst(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q(`DELETE FROM seats WHERE area_id = ?`)).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q(`DELETE FROM areas WHERE id = ?`)).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, NewAreaRepo(db).Delete(context.Background(), 4))
}

func TestAreaDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q(`DELETE FROM seats WHERE area_id = ?`)).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM areas WHERE id = ?`)).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, NewAreaRepo(db).Delete(context.Background(), 4), ErrAreaNotFound)
}

func TestAreaCreateAndVenueOf(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q(`INSERT INTO areas (venue_id, name, capacity, type) VALUES (?, ?, ?, ?)`)).
		WithArgs(uint64(7), "Mesa 1", uint32(8), model.AreaGeneral).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(q(`INSERT INTO areas`)).WithArgs(uint64(99), "X", uint32(1), model.AreaGeneral).
		WillReturnError(&mysql.MySQLError{Number: 1452})
	mock.ExpectQuery(q(`SELECT venue_id FROM areas WHERE id = ?`)).WithArgs(uint64(13)).WillReturnError(sql.ErrNoRows)

	repo := NewAreaRepo(db)
	a := &model.Area{VenueID: 7, Name: "Mesa 1", Capacity: 8, Type: model.AreaGeneral}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, uint64(12), a.ID)

	err := repo.Create(context.Background(), &model.Area{VenueID: 99, Name: "X", Capacity: 1, Type: model.AreaGeneral})
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = repo.VenueOf(context.Background(), 13)
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestLayoutSaveUpserts(t *testing.T) {
	db, mock := newMock(t)
	cfg := json.RawMessage(`{"tables":[]}`)
	mock.ExpectExec(q(`INSERT INTO event_layouts (event_id, config, version) VALUES (?, ?, ?)`)+`\s+`+
		q(`ON DUPLICATE KEY UPDATE config = VALUES(config), version = VALUES(version)`)).
		WithArgs(uint64(1), []byte(cfg), uint32(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`INSERT INTO event_layouts`)).WithArgs(uint64(404), []byte(cfg), uint32(1)).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	repo := NewLayoutRepo(db)
	require.NoError(t, repo.Save(context.Background(), 1, cfg, 4))
	assert.ErrorIs(t, repo.Save(context.Background(), 404, cfg, 1), ErrEventNotFound)
}

func TestLayoutLockByEventInsideTx(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT id, event_id, config, version, updated_at FROM event_layouts WHERE event_id = ? FOR UPDATE`)).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "config", "version", "updated_at"}).
			AddRow(3, 1, []byte(`{"tables":[]}`), 6, now))
	mock.ExpectQuery(q(`FOR UPDATE`)).WithArgs(uint64(2)).WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	repo := NewLayoutRepo(db).WithTx(tx)

	l, err := repo.LockByEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), l.Version)
	assert.JSONEq(t, `{"tables":[]}`, string(l.Config))
	assert.Equal(t, now, l.UpdatedAt)

	_, err = repo.LockByEvent(context.Background(), 2)
	assert.ErrorIs(t, err, ErrLayoutNotFound)
	require.NoError(t, tx.Commit())
}

func TestEventVenueOf(t *testing.T) {
	db, mock := newMock(t)
	const query = `SELECT venue_id FROM events WHERE id = ?`
	mock.ExpectQuery(q(query)).WithArgs(uint64(1)).WillReturnRows(sqlmock.NewRows([]string{"venue_id"}).AddRow(7))
	mock.ExpectQuery(q(query)).WithArgs(uint64(2)).WillReturnRows(sqlmock.NewRows([]string{"venue_id"}).AddRow(nil))
	mock.ExpectQuery(q(query)).WithArgs(uint64(3)).WillReturnError(sql.ErrNoRows)

	repo := NewEventRepo(db)
	v, err := repo.VenueOf(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint64(7), *v)

	v, err = repo.VenueOf(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = repo.VenueOf(context.Background(), 3)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

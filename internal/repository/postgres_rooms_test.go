package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamaah-data/internal/domain"
)

func setupRoomsMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRoomsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresRoomsRepository(db)
}

var roomScanColumns = []string{
	"room_id", "group_id", "room_number", "room_type", "gender_type", "capacity", "is_auto_assigned",
}

func TestRoomsListByGroup_LoadsMembers(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	roomRows := sqlmock.NewRows(roomScanColumns).
		AddRow("room-1", "group-1", "M-001", "quad", "male", 4, true).
		AddRow("room-2", "group-1", "F-002", "quad", "female", 4, true)
	mock.ExpectQuery(`SELECT .+ FROM rooms`).WithArgs("group-1").WillReturnRows(roomRows)

	memberRows := sqlmock.NewRows(pilgrimScanColumns)
	addPilgrimRow(memberRows, "p1", "group-1", "REBI SARIP", "", "", "room-1")
	addPilgrimRow(memberRows, "p2", "group-1", "BUDI SANTOSO", "", "", "room-1")
	addPilgrimRow(memberRows, "p3", "group-1", "SITI AMINAH", "", "", "room-2")
	mock.ExpectQuery(`SELECT .+ FROM pilgrims`).WithArgs("group-1").WillReturnRows(memberRows)

	rooms, err := repo.ListByGroup(context.Background(), "group-1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 2, rooms[0].OccupiedCount())
	assert.Equal(t, 1, rooms[1].OccupiedCount())
	assert.Equal(t, domain.RoomMale, rooms[0].GenderType)
	assert.Equal(t, "SITI AMINAH", rooms[1].Members[0].Nama)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomsListByGroup_EmptySkipsMemberQuery(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM rooms`).
		WithArgs("group-1").
		WillReturnRows(sqlmock.NewRows(roomScanColumns))

	rooms, err := repo.ListByGroup(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoom_GeneratesID(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO rooms`).WillReturnResult(sqlmock.NewResult(0, 1))

	room := &domain.Room{
		GroupID:    "group-1",
		RoomNumber: "201",
		RoomType:   domain.RoomQuad,
		GenderType: domain.RoomMale,
		Capacity:   4,
	}
	require.NoError(t, repo.CreateRoom(context.Background(), room))
	assert.NotEmpty(t, room.RoomID)

	require.NoError(t, mock.ExpectationsWereMet())
}

// Rooms and their member assignments land in a single transaction.
func TestSaveRooms(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	rooms := []*domain.Room{
		{
			RoomID: "room-1", GroupID: "group-1", RoomNumber: "M-001",
			RoomType: domain.RoomQuad, GenderType: domain.RoomMale, Capacity: 4,
			IsAutoAssigned: true,
			Members: []*domain.Pilgrim{
				{PilgrimID: "p1"}, {PilgrimID: "p2"},
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rooms`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pilgrims SET room_id`).
		WithArgs("room-1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pilgrims SET room_id`).
		WithArgs("room-1", "p2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveRooms(context.Background(), rooms))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRooms_NothingToDo(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	require.NoError(t, repo.SaveRooms(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_UnassignsMembersFirst(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pilgrims SET room_id = NULL`).
		WithArgs("group-1", "room-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM rooms`).
		WithArgs("group-1", "room-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteRoom(context.Background(), "group-1", "room-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_NotFound(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pilgrims SET room_id = NULL`).
		WithArgs("group-1", "room-x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM rooms`).
		WithArgs("group-1", "room-x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteRoom(context.Background(), "group-1", "room-x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "room not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAutoAssigned(t *testing.T) {
	db, mock, repo := setupRoomsMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pilgrims SET room_id = NULL`).
		WithArgs("group-1").
		WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectExec(`DELETE FROM rooms`).
		WithArgs("group-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.DeleteAutoAssigned(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

package implementation

import (
	"context"
	"testing"
	"time"

	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/model"
	"sheetroom-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, uuid.UUID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Workbook{},
		&model.Worksheet{},
		&model.Cell{},
		&model.ChangeHistory{},
	))

	workbookId := uuid.New()
	require.NoError(t, db.Create(&model.Workbook{
		Id:     workbookId,
		Name:   "test workbook",
		RoomId: "workbook:" + workbookId.String(),
	}).Error)

	worksheetId := uuid.New()
	require.NoError(t, db.Create(&model.Worksheet{
		Id:         worksheetId,
		WorkbookId: workbookId,
		Name:       "Sheet1",
		SheetIndex: 0,
	}).Error)

	return db, worksheetId
}

func TestUpsertIdempotence(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)
	ctx := context.Background()

	roomId := "workbook:1"
	write := func(value string) {
		err := repo.Upsert(ctx, &entity.Cell{
			WorksheetId: worksheetId,
			RoomId:      roomId,
			RowIndex:    0,
			ColIndex:    0,
			Value:       value,
			UpdatedBy:   "u1",
			UpdatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	write("a")
	write("b")

	cells, err := repo.GetCells(ctx, worksheetId, &roomId)
	require.NoError(t, err)
	require.Len(t, cells, 1, "two upserts to the same coordinate must keep one row")
	assert.Equal(t, "b", cells[0].Value)
}

func TestUpsertPartitionsByRoom(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)
	ctx := context.Background()

	for _, roomId := range []string{"workbook:1", "workbook:2", ""} {
		err := repo.Upsert(ctx, &entity.Cell{
			WorksheetId: worksheetId,
			RoomId:      roomId,
			RowIndex:    0,
			ColIndex:    0,
			Value:       "v:" + roomId,
			UpdatedBy:   "u1",
		})
		require.NoError(t, err)
	}

	// Same coordinate, three partitions, three rows. The empty room id is
	// a real partition, not a wildcard.
	all, err := repo.GetCells(ctx, worksheetId, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unbound := ""
	cells, err := repo.GetCells(ctx, worksheetId, &unbound)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "v:", cells[0].Value)
}

func TestGetCellsOrdered(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)
	ctx := context.Background()

	coords := [][2]int{{2, 0}, {0, 1}, {0, 0}, {1, 5}}
	for _, c := range coords {
		require.NoError(t, repo.Upsert(ctx, &entity.Cell{
			WorksheetId: worksheetId,
			RoomId:      "workbook:1",
			RowIndex:    c[0],
			ColIndex:    c[1],
			Value:       "x",
			UpdatedBy:   "u1",
		}))
	}

	cells, err := repo.GetCells(ctx, worksheetId, nil)
	require.NoError(t, err)
	require.Len(t, cells, 4)

	want := [][2]int{{0, 0}, {0, 1}, {1, 5}, {2, 0}}
	for i, c := range cells {
		assert.Equal(t, want[i][0], c.RowIndex)
		assert.Equal(t, want[i][1], c.ColIndex)
	}
}

func TestUpsertBatchAllOrNothing(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)
	ctx := context.Background()

	cells := []*entity.Cell{
		{WorksheetId: worksheetId, RoomId: "workbook:1", RowIndex: 0, ColIndex: 0, Value: "a", UpdatedBy: "u1"},
		{WorksheetId: worksheetId, RoomId: "workbook:1", RowIndex: 0, ColIndex: 1, Value: "b", UpdatedBy: "u1"},
	}
	require.NoError(t, repo.UpsertBatch(ctx, cells))

	stored, err := repo.GetCells(ctx, worksheetId, nil)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// Re-sending the batch overwrites in place instead of adding rows.
	cells[0].Value = "a2"
	require.NoError(t, repo.UpsertBatch(ctx, cells))

	stored, err = repo.GetCells(ctx, worksheetId, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "a2", stored[0].Value)
}

func TestDeleteReportsRowCount(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entity.Cell{
		WorksheetId: worksheetId,
		RoomId:      "workbook:1",
		RowIndex:    3,
		ColIndex:    4,
		Value:       "gone soon",
		UpdatedBy:   "u1",
	}))

	deleted, err := repo.Delete(ctx, worksheetId, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Hard delete, no tombstone: a second delete finds nothing.
	deleted, err = repo.Delete(ctx, worksheetId, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestFindOneMissReturnsNil(t *testing.T) {
	db, worksheetId := setupTestDB(t)
	repo := NewCellRepository(db)

	cell, err := repo.FindOne(context.Background(),
		specification.ByWorksheetID{WorksheetID: worksheetId},
		specification.ByPosition{Row: 9, Col: 9},
	)
	require.NoError(t, err)
	assert.Nil(t, cell)
}

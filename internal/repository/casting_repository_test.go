package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audire/casting-portal/internal/model"
)

var castingJoinColumns = append(append([]string{}, castingColumns...), "production_title")

func sampleCasting() *model.Casting {
	return &model.Casting{
		Title:        "Protagonista",
		Location:     "Roma",
		Category:     model.CategoryAttoreAttrice,
		Description:  "Ruolo principale",
		Deadline:     time.Date(2026, 12, 1, 23, 59, 59, 0, time.UTC),
		DirectorID:   2,
		ProductionID: 7,
	}
}

func TestCastingRepo_SaveInsertStoresLabel(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)
	c := sampleCasting()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO castings")).
		WithArgs("Protagonista", "Roma", "Attore/Attrice", "Ruolo principale", sqlmock.AnyArg(), c.Deadline, uint64(2), uint64(7)).
		WillReturnResult(sqlmock.NewResult(31, 1))

	require.NoError(t, repo.Save(context.Background(), c))
	assert.Equal(t, model.Existing(31), c.Key)
	assert.False(t, c.PublishedAt.IsZero())
}

func TestCastingRepo_SaveUpdateKeepsIDAndDirector(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)
	c := sampleCasting()
	c.Key = model.Existing(31)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE castings SET title=?, location=?, category=?, description=?, deadline=?, production_id=? WHERE id=?")).
		WithArgs("Protagonista", "Roma", "Attore/Attrice", "Ruolo principale", c.Deadline, uint64(7), uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), c))
	assert.Equal(t, model.Existing(31), c.Key)
}

func TestCastingRepo_SaveMissingOwner(t *testing.T) {
	db, _ := newMock(t)
	repo := NewCastingRepo(db)
	c := sampleCasting()
	c.DirectorID = 0

	assert.ErrorIs(t, repo.Save(context.Background(), c), ErrMissingOwner)

	c = sampleCasting()
	c.Category = model.CategoryNone
	assert.ErrorIs(t, repo.Save(context.Background(), c), ErrInvalidEntity)
}

func TestCastingRepo_SaveRequiresLocationAndDescription(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)

	c := sampleCasting()
	c.Location = "  "
	assert.ErrorIs(t, repo.Save(context.Background(), c), ErrInvalidEntity)
	assert.True(t, c.Key.IsNew())

	c = sampleCasting()
	c.Description = ""
	assert.ErrorIs(t, repo.Save(context.Background(), c), ErrInvalidEntity)
	assert.True(t, c.Key.IsNew())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastingRepo_GetAllFallsBackToDefaultOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)

	mock.ExpectQuery(`FROM castings ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows(castingColumns))

	out, err := repo.GetAll(context.Background(), "password_hash")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCastingRepo_GetAllActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)
	repo.now = func() time.Time { return time.Date(2026, 5, 20, 22, 30, 0, 0, time.FixedZone("CEST", 2*3600)) }
	pub := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	dl := time.Date(2026, 6, 1, 23, 59, 59, 0, time.UTC)

	// 22:30 CEST is still 20:30 UTC on the same day
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.deadline >= ? ORDER BY c.published_at DESC")).
		WithArgs(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows(castingJoinColumns).
			AddRow(uint64(4), "Ballerini", "Milano", "Ballerino/a", "desc", pub, dl, uint64(2), uint64(7), "La Scala").
			AddRow(uint64(3), "Comparse", "Napoli", "Categoria sconosciuta", "desc", pub, dl, uint64(2), uint64(8), ""))

	out, err := repo.GetAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "La Scala", out[0].ProductionTitle)
	assert.Equal(t, model.CategoryBallerinoA, out[0].Category)
	assert.Equal(t, model.CategoryNone, out[1].Category)
}

func TestCastingRepo_DeleteWithApplications(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM castings WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	removed, err := repo.Delete(context.Background(), 3)
	assert.False(t, removed)
	assert.ErrorIs(t, err, ErrHasDependents)
}

func TestCastingRepo_DeleteRemovesRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM castings WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestCastingRepo_GetByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCastingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = ?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(castingJoinColumns))

	c, err := repo.GetByID(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, c)
}

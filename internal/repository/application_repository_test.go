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

func TestApplicationRepo_SaveDefaultsToPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WithArgs(sqlmock.AnyArg(), "In attesa", sqlmock.AnyArg(), uint64(5), uint64(9)).
		WillReturnResult(sqlmock.NewResult(12, 1))

	a := &model.Application{PerformerID: 5, CastingID: 9}
	require.NoError(t, repo.Save(context.Background(), a))
	assert.Equal(t, model.Existing(12), a.Key)
	assert.Equal(t, model.StatusPending, a.Status)
}

func TestApplicationRepo_SaveDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_application_performer_casting'"})

	err := repo.Save(context.Background(), &model.Application{PerformerID: 5, CastingID: 9})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApplicationRepo_SaveMissingOwner(t *testing.T) {
	db, _ := newMock(t)
	repo := NewApplicationRepo(db)
	assert.ErrorIs(t, repo.Save(context.Background(), &model.Application{CastingID: 9}), ErrMissingOwner)
}

func TestApplicationRepo_HasApplied(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE performer_id = ? AND casting_id = ?")).
		WithArgs(uint64(5), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasApplied(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplicationRepo_GetAllDefaultNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)

	mock.ExpectQuery(`FROM applications ORDER BY sent_at DESC$`).
		WillReturnRows(sqlmock.NewRows(applicationColumns))

	_, err := repo.GetAll(context.Background(), "")
	require.NoError(t, err)
}

func TestApplicationRepo_ListByPerformerMarksRemovedCasting(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApplicationRepo(db)
	sent := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

	cols := append(append([]string{}, applicationColumns...), "title")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN castings c ON c.id = a.casting_id")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uint64(1), sent, "Shortlist", "ottimo", uint64(5), uint64(9), "Protagonista").
			AddRow(uint64(2), sent, "stato ignoto", nil, uint64(5), uint64(10), nil))

	out, err := repo.ListByPerformer(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Protagonista", out[0].CastingTitle)
	assert.Equal(t, model.StatusShortlist, out[0].Status)
	assert.Equal(t, "ottimo", out[0].Feedback)
	assert.Equal(t, model.RemovedCastingTitle, out[1].CastingTitle)
	assert.Equal(t, model.StatusPending, out[1].Status)
}

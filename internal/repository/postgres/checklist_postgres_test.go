package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"checklistapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "title", "created_label", "initial_data", "verifications", "inspections", "complete"}

const (
	initialJSON       = `{"plate":"ABC-1234","driver":"J. Silva","inspector":"M. Souza","brand":"Volvo","model":"FH","odometer":"12345"}`
	verificationsJSON = `[{"title":"Lanternas queimadas","status":"conforme","notes":null}]`
	inspectionsJSON   = `[{"title":"Foto Seção Frontal","status":"conforme","notes":null,"media":[{"name":"a.jpg","mimeType":"image/jpeg","sizeBytes":3,"kind":"image","content":"https://cdn/abc/1.jpg"}]}]`
)

func sampleChecklist() *model.Checklist {
	return &model.Checklist{
		ID:        "abc",
		Title:     "Checklist Basel",
		CreatedAt: "15-10-2026 08:30:00",
		InitialData: model.InitialData{
			Plate: "ABC-1234", Driver: "J. Silva", Inspector: "M. Souza", Brand: "Volvo", Model: "FH", Odometer: "12345",
		},
		Verifications: []model.VerificationItem{{Title: "Lanternas queimadas", Status: model.StatusConforme}},
		Inspections: []model.InspectionItem{{
			Title:  "Foto Seção Frontal",
			Status: model.StatusConforme,
			Media:  []model.MediaAsset{{Name: "a.jpg", MimeType: "image/jpeg", SizeBytes: 3, Kind: "image", Content: "https://cdn/abc/1.jpg"}},
		}},
		Complete: true,
	}
}

func TestChecklistPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)
	ctx := context.Background()
	c := sampleChecklist()

	rows := sqlmock.NewRows(columns).
		AddRow(c.ID, c.Title, c.CreatedAt, []byte(initialJSON), []byte(verificationsJSON), []byte(inspectionsJSON), true)

	mock.ExpectQuery("INSERT INTO checklists (.+) ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs(c.ID, c.Title, c.CreatedAt, initialJSON, verificationsJSON, inspectionsJSON, true).
		WillReturnRows(rows)

	stored, err := repo.Upsert(ctx, c)

	require.NoError(t, err)
	assert.Equal(t, "abc", stored.ID)
	assert.Equal(t, "ABC-1234", stored.InitialData.Plate)
	assert.Equal(t, "12345", stored.InitialData.Odometer)
	require.Len(t, stored.Inspections, 1)
	assert.Equal(t, "https://cdn/abc/1.jpg", stored.Inspections[0].Media[0].Content)
	assert.True(t, stored.Complete)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistPostgres_UpsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)

	mock.ExpectQuery("INSERT INTO checklists").WillReturnError(errors.New("conn reset"))

	stored, err := repo.Upsert(context.Background(), sampleChecklist())
	assert.EqualError(t, err, "conn reset")
	assert.Nil(t, stored)
}

func TestChecklistPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("abc", "Checklist Basel", "15-10-2026 08:30:00", []byte(initialJSON), []byte(verificationsJSON), []byte(`[]`), false)

		mock.ExpectQuery("SELECT (.+) FROM checklists WHERE id = \\$1").
			WithArgs("abc").
			WillReturnRows(rows)

		c, err := repo.FindByID(ctx, "abc")

		require.NoError(t, err)
		assert.Equal(t, "abc", c.ID)
		assert.Equal(t, model.StatusConforme, c.Verifications[0].Status)
		assert.NotNil(t, c.Inspections)
		assert.Empty(t, c.Inspections)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM checklists WHERE id = \\$1").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, c)
	})

	t.Run("corrupt json", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("bad", "t", "x", []byte(`{`), []byte(`[]`), []byte(`[]`), false)
		mock.ExpectQuery("SELECT (.+) FROM checklists WHERE id = \\$1").
			WithArgs("bad").
			WillReturnRows(rows)

		c, err := repo.FindByID(ctx, "bad")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decode initial_data of bad")
		assert.Nil(t, c)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("new", "Checklist Basel", "16-10-2026 09:00:00", []byte(initialJSON), []byte(`[]`), []byte(`[]`), false).
			AddRow("old", "Checklist Basel", "15-10-2026 09:00:00", []byte(initialJSON), []byte(`[]`), []byte(`[]`), true)

		mock.ExpectQuery("SELECT (.+) FROM checklists ORDER BY created_at DESC").WillReturnRows(rows)

		items, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "new", items[0].ID)
		assert.Equal(t, "old", items[1].ID)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM checklists ORDER BY").WillReturnRows(sqlmock.NewRows(columns))

		items, err := repo.List(ctx)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM checklists ORDER BY").WillReturnError(errors.New("timeout"))

		items, err := repo.List(ctx)
		assert.Error(t, err)
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)

	mock.ExpectExec("DELETE FROM checklists WHERE id = \\$1").
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChecklistPostgres_TableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChecklistPostgres(db)

	mock.ExpectQuery(`SELECT to_regclass\('public.checklists'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.TableExists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "checklists", repo.TableName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

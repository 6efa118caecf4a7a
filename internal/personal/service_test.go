package personal_test

import (
	"testing"

	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/personal"
	"github.com/mmcdole/explorador/internal/store"
	"github.com/mmcdole/explorador/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNote_PersistsAcrossReopen(t *testing.T) {
	st, path := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	note, err := svc.SaveNote(5, personal.NoteInput{Title: "  Viaje ", Text: "Ir a Popayán"})
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "Viaje", note.Title)
	assert.False(t, note.Date.IsZero())
	require.NoError(t, st.Close())

	reopened, err := store.Open(path, store.DefaultNamespace, nil)
	require.NoError(t, err)
	defer reopened.Close()

	notes := personal.NewService(reopened, nil).Notes(5)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
	assert.Equal(t, "Ir a Popayán", notes[0].Text)
}

func TestSaveNote_IdsAreDistinct(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	a, err := svc.SaveNote(1, personal.NoteInput{Title: "a", Text: "a"})
	require.NoError(t, err)
	b, err := svc.SaveNote(1, personal.NoteInput{Title: "b", Text: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []string{"a", "b"}, []string{svc.Notes(1)[0].Title, svc.Notes(1)[1].Title})
}

func TestSaveNote_RejectsBlankFields(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	for _, in := range []personal.NoteInput{
		{Title: "   ", Text: "texto"},
		{Title: "título", Text: "\n\t"},
		{},
	} {
		_, err := svc.SaveNote(1, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Empty(t, svc.Notes(1))
}

func TestSaveNote_EditUpdatesInPlace(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	first, err := svc.SaveNote(2, personal.NoteInput{Title: "uno", Text: "primero"})
	require.NoError(t, err)
	_, err = svc.SaveNote(2, personal.NoteInput{Title: "dos", Text: "segundo"})
	require.NoError(t, err)

	edited, err := svc.SaveNote(2, personal.NoteInput{ID: first.ID, Title: "uno bis", Text: "editado"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, edited.ID)
	assert.False(t, edited.Date.Before(first.Date))

	notes := svc.Notes(2)
	require.Len(t, notes, 2)
	assert.Equal(t, "uno bis", notes[0].Title)
	assert.Equal(t, "editado", notes[0].Text)

	_, err = svc.SaveNote(2, personal.NoteInput{ID: "missing", Title: "x", Text: "y"})
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestDeleteNote(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	a, _ := svc.SaveNote(3, personal.NoteInput{Title: "a", Text: "a"})
	b, _ := svc.SaveNote(3, personal.NoteInput{Title: "b", Text: "b"})

	require.NoError(t, svc.DeleteNote(3, a.ID))
	notes := svc.Notes(3)
	require.Len(t, notes, 1)
	assert.Equal(t, b.ID, notes[0].ID)

	assert.ErrorIs(t, svc.DeleteNote(3, a.ID), domain.ErrNoteNotFound)
}

func TestMunicipalityFavorites_StableIdentity(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	a, err := svc.AddMunicipalityFavorite(7, "Leticia")
	require.NoError(t, err)
	b, err := svc.AddMunicipalityFavorite(7, "Puerto Nariño")
	require.NoError(t, err)
	c, err := svc.AddMunicipalityFavorite(7, "Tarapacá")
	require.NoError(t, err)

	// Removing an earlier entry must not shift which entry later ids address
	require.NoError(t, svc.RemoveMunicipalityFavorite(7, a.ID))
	require.NoError(t, svc.RenameMunicipalityFavorite(7, c.ID, "  La Pedrera "))

	favs := svc.MunicipalityFavorites(7)
	require.Len(t, favs, 2)
	assert.Equal(t, domain.MunicipalityFavorite{ID: b.ID, Name: "Puerto Nariño"}, favs[0])
	assert.Equal(t, domain.MunicipalityFavorite{ID: c.ID, Name: "La Pedrera"}, favs[1])
}

func TestMunicipalityFavorites_Validation(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	_, err := svc.AddMunicipalityFavorite(7, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	fav, err := svc.AddMunicipalityFavorite(7, "Leticia")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.RenameMunicipalityFavorite(7, fav.ID, ""), domain.ErrInvalidInput)
	assert.Equal(t, "Leticia", svc.MunicipalityFavorites(7)[0].Name)

	assert.ErrorIs(t, svc.RenameMunicipalityFavorite(7, "nope", "x"), domain.ErrFavoriteNotFound)
	assert.ErrorIs(t, svc.RemoveMunicipalityFavorite(8, fav.ID), domain.ErrFavoriteNotFound)
}

func TestToggleDepartmentFavorite_TwiceRestores(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	_, err := svc.ToggleDepartmentFavorite(1)
	require.NoError(t, err)
	before := svc.DepartmentFavorites()

	on, err := svc.ToggleDepartmentFavorite(4)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsDepartmentFavorite(4))

	off, err := svc.ToggleDepartmentFavorite(4)
	require.NoError(t, err)
	assert.False(t, off)
	assert.Equal(t, before, svc.DepartmentFavorites())
}

func TestThumbnailPreference(t *testing.T) {
	st, _ := testutil.TestStore(t)
	svc := personal.NewService(st, nil)

	assert.False(t, svc.ThumbnailsEnabled())
	require.NoError(t, svc.SetThumbnailsEnabled(true))
	assert.True(t, svc.ThumbnailsEnabled())
	assert.True(t, st.Load().Settings.ThumbsOn)
}

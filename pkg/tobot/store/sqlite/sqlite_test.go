package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tobot/pkg/tobot/internalerr"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

func openTemp(t *testing.T) (store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tobot.sqlite")
	st, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestInsertTrainingAndLookupEdges(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	id, err := st.InsertTraining(ctx, store.Training{
		Sentence: "Checkin is at 3pm",
		Words:    []store.WordWeight{{Word: "checkin", Weight: 0.378}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	ok, err := st.HasSentence(ctx, "Checkin is at 3pm")
	require.NoError(t, err)
	assert.True(t, ok)

	known, err := st.KnownWords(ctx, []string{"checkin", "pool"})
	require.NoError(t, err)
	assert.Equal(t, []string{"checkin"}, known)

	edges, err := st.EdgesForWords(ctx, []string{"checkin"})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, store.Edge{Word: "checkin", SentenceID: 1, Sentence: "Checkin is at 3pm", Weight: 0.378}, edges[0])
}

func TestInsertTrainingDuplicate(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	tr := store.Training{Sentence: "yes, pets are welcome", Words: []store.WordWeight{{Word: "pet", Weight: 0.5}}}
	_, err := st.InsertTraining(ctx, tr)
	require.NoError(t, err)

	tr.Words = append(tr.Words, store.WordWeight{Word: "dog", Weight: 0.4})
	_, err = st.InsertTraining(ctx, tr)
	assert.ErrorIs(t, err, internalerr.ErrDuplicate)

	size, err := st.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Size{Sentences: 1, Words: 1, Associations: 1}, size)
}

func TestWordReusedAcrossSentences(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	for _, s := range []string{"the pool opens at 9", "the pool is heated"} {
		_, err := st.InsertTraining(ctx, store.Training{Sentence: s, Words: []store.WordWeight{{Word: "pool", Weight: 0.5}}})
		require.NoError(t, err)
	}

	d, err := st.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, d.Words, 1)
	require.Len(t, d.Sentences, 2)
	require.Len(t, d.Associations, 2)
	assert.Equal(t, d.Words[0].ID, d.Associations[1].WordID)
	assert.Equal(t, int64(0), d.Sentences[1].Used)
}

func TestDuplicateEdgesReturned(t *testing.T) {
	ctx := context.Background()
	st, path := openTemp(t)

	_, err := st.InsertTraining(ctx, store.Training{Sentence: "towels are in the closet", Words: []store.WordWeight{{Word: "towel", Weight: 0.3}}})
	require.NoError(t, err)

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, `INSERT INTO associations VALUES (1, 1, 0.2)`)
	require.NoError(t, err)

	edges, err := st.EdgesForWords(ctx, []string{"towel"})
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.InDelta(t, 0.5, edges[0].Weight+edges[1].Weight, 1e-9)
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tobot.sqlite")

	for i := 0; i < 2; i++ {
		st, err := OpenSQLite(ctx, path)
		require.NoError(t, err)
		require.NoError(t, st.Close())
	}
}

func TestEmptyInputs(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	known, err := st.KnownWords(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, known)

	edges, err := st.EdgesForWords(ctx, []string{""})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestInsertTrainingRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	// Abort on the second association so the batch fails midway.
	_, err := st.(*sqliteStore).db.ExecContext(ctx, `
CREATE TRIGGER fail_second_edge BEFORE INSERT ON associations
WHEN (SELECT COUNT(*) FROM associations) >= 1
BEGIN
	SELECT RAISE(ABORT, 'boom');
END;`)
	require.NoError(t, err)

	_, err = st.InsertTraining(ctx, store.Training{
		Sentence: "Towels are in the closet",
		Words: []store.WordWeight{
			{Word: "a", Weight: 0.5},
			{Word: "b", Weight: 0.5},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `insert association "b"`)

	size, err := st.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Size{}, size)

	ok, err := st.HasSentence(ctx, "Towels are in the closet")
	require.NoError(t, err)
	assert.False(t, ok)
}

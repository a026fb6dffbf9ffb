package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mindcheck/internal/store"
)

func TestHistoryClearTopic(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "mindcheck.db")
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv("MINDCHECK_USER_ID", "u1")
	t.Setenv("MINDCHECK_STORE", "sqlite")

	ctx := context.Background()
	st, err := store.Open(dbPath, nil)
	require.NoError(t, err)
	repo := st.AskedRepo()
	stress := store.AskedKey{Namespace: "mindcheck", UserID: "u1", Topic: "Stress"}
	sleep := store.AskedKey{Namespace: "mindcheck", UserID: "u1", Topic: "Sleep"}
	require.NoError(t, repo.MergeAsked(ctx, stress, []string{"Q1", "Q2"}))
	require.NoError(t, repo.MergeAsked(ctx, sleep, []string{"Q1"}))
	require.NoError(t, st.Close())

	rootCmd.SetArgs([]string{
		"history", "clear", "--topic", "Stress",
		"--db", dbPath,
		"--config", filepath.Join(dir, "config.yaml"),
	})
	require.NoError(t, rootCmd.Execute())

	st, err = store.Open(dbPath, nil)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.AskedRepo().Asked(ctx, stress)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = st.AskedRepo().Asked(ctx, sleep)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, got, "other topics are untouched")
}

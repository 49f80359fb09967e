package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nested", "tarot.db")
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "", "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = execute(t, "", "migrate", "--db", db)
	require.NoError(t, err)

	store, err := sqlite.Open(context.Background(), sqlite.Config{Path: db, SkipMigrations: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cards, err := sqlite.NewCardRepository(store).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, cards, 78)
}

func TestDraw_JSONFillsEverySpreadPosition(t *testing.T) {
	out, err := execute(t, "", "draw", "--db", tempDB(t), "--spread", "2", "--seed", "42", "--json")
	require.NoError(t, err)

	var drawn []domain.DrawnCard
	require.NoError(t, json.Unmarshal([]byte(out), &drawn))
	require.Len(t, drawn, 3)

	seen := map[int64]bool{}

	for i, dc := range drawn {
		assert.Equal(t, i+1, dc.Position)
		assert.False(t, seen[dc.CardID], "card %d drawn twice", dc.CardID)
		seen[dc.CardID] = true
	}
}

func TestDraw_SeedIsRepeatable(t *testing.T) {
	db := tempDB(t)

	first, err := execute(t, "", "draw", "--db", db, "--spread", "2", "--seed", "7", "--json")
	require.NoError(t, err)

	second, err := execute(t, "", "draw", "--db", db, "--spread", "2", "--seed", "7", "--json")
	require.NoError(t, err)

	assert.JSONEq(t, first, second)
}

func TestDraw_TableShowsPositionNames(t *testing.T) {
	out, err := execute(t, "", "draw", "--db", tempDB(t), "--spread", "2", "--seed", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "POSITION")
	assert.Contains(t, out, "seed 1")
}

func TestDraw_Errors(t *testing.T) {
	t.Run("missing spread flag", func(t *testing.T) {
		_, err := execute(t, "", "draw", "--db", tempDB(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "spread")
	})

	t.Run("unknown spread", func(t *testing.T) {
		_, err := execute(t, "", "draw", "--db", tempDB(t), "--spread", "999")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestImportMeanings(t *testing.T) {
	t.Run("upserts from stdin", func(t *testing.T) {
		body := `{"cardMeanings":[{"cardId":1,"uprightMeaning":"Beginnings","reversedMeaning":"Recklessness"}]}`

		out, err := execute(t, body, "import-meanings", "-", "--db", tempDB(t), "--deck", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "saved 1 card meanings to deck 1")
	})

	t.Run("upserts from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meanings.json")
		body := `{"cardMeanings":[{"cardId":2,"uprightMeaning":"Will"},{"cardId":3,"uprightMeaning":"Intuition"}]}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		out, err := execute(t, "", "import-meanings", path, "--db", tempDB(t), "--deck", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "saved 2 card meanings")
	})

	t.Run("one bad element rejects the batch", func(t *testing.T) {
		body := `{"cardMeanings":[{"cardId":1,"uprightMeaning":"ok"},{"cardId":2}]}`

		_, err := execute(t, body, "import-meanings", "-", "--db", tempDB(t), "--deck", "1")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := execute(t, `{"cardMeanings":[]}`, "import-meanings", "-", "--db", tempDB(t), "--deck", "1")
		require.Error(t, err)
	})

	t.Run("unknown fields are refused", func(t *testing.T) {
		_, err := execute(t, `{"meanings":[]}`, "import-meanings", "-", "--db", tempDB(t), "--deck", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding")
	})
}

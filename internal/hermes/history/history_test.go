package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/hermes/history"
	historyopts "github.com/kart-io/hermes/pkg/options/history"
)

func openTestStore(t *testing.T) *history.Store {
	t.Helper()
	opts := historyopts.NewOptions()
	opts.Enabled = true
	opts.DSN = filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(opts)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenDisabled(t *testing.T) {
	store, err := history.Open(historyopts.NewOptions())
	require.NoError(t, err)
	assert.Nil(t, store)

	// A nil store accepts calls and does nothing.
	require.NoError(t, store.Record(context.Background(), "c1", "q", "a", "rag", "NEED_RAG"))
	messages, err := store.Messages(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRecordAndMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "c1", "Ποιες είναι οι διαδικασίες αδείας;", "Η άδεια εγκρίνεται εγγράφως.", "rag", "NEED_RAG"))
	require.NoError(t, store.Record(ctx, "c1", "Γεια σου", "Γεια!", "chat", "NO_RAG"))

	messages, err := store.Messages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 4)

	assert.Equal(t, history.RoleUser, messages[0].Role)
	assert.Equal(t, "Ποιες είναι οι διαδικασίες αδείας;", messages[0].Content)
	assert.Equal(t, history.RoleAssistant, messages[1].Role)
	assert.Equal(t, "rag", messages[1].Mode)
	assert.Equal(t, "NEED_RAG", messages[1].Label)
	assert.Equal(t, "chat", messages[3].Mode)
}

func TestRecordWithoutConversationID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "", "q", "a", "rag", "NEED_RAG"))

	conversations, err := store.Conversations(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestConversationsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, store.Record(ctx, id, "q", "a", "chat", "NO_RAG"))
	}

	conversations, err := store.Conversations(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)
}

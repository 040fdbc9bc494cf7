package localstore_test

import (
	"errors"
	"log/slog"
	"testing"

	infra_localstore "github.com/amirasaad/finsync/infra/localstore"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Get(string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(string, []byte) error   { return f.err }
func (f failingStore) Delete(string) error        { return f.err }

func TestLoad_MissingReturnsFallback(t *testing.T) {
	s := infra_localstore.NewMemory()
	got := localstore.Load(s, localstore.KeyCDIRate, domain.DefaultCDIRate, slog.Default())
	assert.InDelta(t, domain.DefaultCDIRate, got, 0.0001)
}

func TestLoad_CorruptReturnsFallback(t *testing.T) {
	s := infra_localstore.NewMemory()
	require.NoError(t, s.Put(localstore.KeyTransactions, []byte("{not json")))

	fallback := []domain.Transaction{}
	got := localstore.Load(s, localstore.KeyTransactions, fallback, slog.Default())
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := infra_localstore.NewMemory()
	txs := []domain.Transaction{{ID: "a", Name: "Luz", Amount: 120.5, Date: "10 Jan"}}
	require.NoError(t, localstore.Save(s, localstore.KeyTransactions, txs))

	got := localstore.Load(s, localstore.KeyTransactions, []domain.Transaction{}, slog.Default())
	assert.Equal(t, txs, got)
}

func TestSave_SoftFailure(t *testing.T) {
	quota := errors.New("quota exceeded")
	err := localstore.Save(failingStore{err: quota}, localstore.KeyNotepad, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, quota)

	got := localstore.Load[string](failingStore{err: quota}, localstore.KeyNotepad, "fallback", nil)
	assert.Equal(t, "fallback", got)
}

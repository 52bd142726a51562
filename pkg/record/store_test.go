package record

import (
	"context"
	"errors"
	"testing"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptySRI = types.SRIHash("sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=")

// mapStore 只实现 Store，用来验证退化路径
type mapStore struct {
	recs    map[string]Record
	puts    int
	failKey string
}

func newMapStore() *mapStore { return &mapStore{recs: make(map[string]Record)} }

func (m *mapStore) Put(_ context.Context, rec Record) error {
	if rec.Key() == m.failKey {
		return errors.New("disk full")
	}
	m.puts++
	m.recs[rec.Key()] = rec
	return nil
}

func (m *mapStore) Get(_ context.Context, kind descriptor.Kind, name string) (Record, error) {
	rec, ok := m.recs[Key(kind, name)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *mapStore) List(context.Context) ([]Record, error) {
	out := make([]Record, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	return out, nil
}

// batchStore 额外实现 BatchStore 与 NarHashFinder
type batchStore struct {
	*mapStore
	batches int
	finds   int
}

func (b *batchStore) PutAll(ctx context.Context, recs []Record) error {
	b.batches++
	for _, rec := range recs {
		b.mapStore.recs[rec.Key()] = rec
	}
	return nil
}

func (b *batchStore) FindByNarHash(ctx context.Context, h types.SRIHash) ([]Record, error) {
	b.finds++
	return nil, nil
}

func sampleRecords() []Record {
	return []Record{
		{Kind: descriptor.KindRepository, Name: "ws", NarHash: emptySRI},
		{Kind: descriptor.KindPackage, Name: "demo", NarHash: emptySRI},
		{Kind: descriptor.KindPackage, Name: "other", NarHash: "sha256-X"},
	}
}

func TestPutAll(t *testing.T) {
	ctx := context.Background()

	t.Run("FallbackPutsEach", func(t *testing.T) {
		s := newMapStore()
		require.NoError(t, PutAll(ctx, s, sampleRecords()))
		assert.Equal(t, 3, s.puts)
	})

	t.Run("UsesBatch", func(t *testing.T) {
		s := &batchStore{mapStore: newMapStore()}
		require.NoError(t, PutAll(ctx, s, sampleRecords()))
		assert.Equal(t, 1, s.batches)
		assert.Equal(t, 0, s.puts)
		assert.Len(t, s.recs, 3)
	})

	t.Run("FallbackError", func(t *testing.T) {
		s := newMapStore()
		s.failKey = "package/demo"
		err := PutAll(ctx, s, sampleRecords())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "package/demo")
	})
}

func TestFindByNarHash(t *testing.T) {
	ctx := context.Background()

	t.Run("FallbackScansList", func(t *testing.T) {
		s := newMapStore()
		require.NoError(t, PutAll(ctx, s, sampleRecords()))

		found, err := FindByNarHash(ctx, s, emptySRI)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "package/demo", found[0].Key())
		assert.Equal(t, "repository/ws", found[1].Key())
	})

	t.Run("UsesFinder", func(t *testing.T) {
		s := &batchStore{mapStore: newMapStore()}
		_, err := FindByNarHash(ctx, s, emptySRI)
		require.NoError(t, err)
		assert.Equal(t, 1, s.finds)
	})
}

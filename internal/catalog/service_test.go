package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// countingSource tracks how many reads reach the underlying source.
type countingSource struct {
	inner StaticSource
	lists int
	gets  int
}

func (s *countingSource) List(ctx context.Context) ([]Product, error) {
	s.lists++
	return s.inner.List(ctx)
}

func (s *countingSource) Get(ctx context.Context, id string) (Product, error) {
	s.gets++
	return s.inner.Get(ctx, id)
}

func testCatalog(t *testing.T) (*Service, *countingSource) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &countingSource{inner: StaticSource{Products: DefaultProducts()}}
	return &Service{Source: source, Cache: NewCache(client, time.Minute)}, source
}

func TestListServesSecondReadFromCache(t *testing.T) {
	svc, source := testCatalog(t)
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.Equal(t, 1, source.lists)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, source.lists)
}

func TestGetCachesPerProduct(t *testing.T) {
	svc, source := testCatalog(t)
	ctx := context.Background()

	p, err := svc.Get(ctx, "kit-4s")
	require.NoError(t, err)
	require.Equal(t, "kit-4s", p.ID)
	require.Equal(t, 1, source.gets)

	_, err = svc.Get(ctx, "kit-4s")
	require.NoError(t, err)
	require.Equal(t, 1, source.gets)
}

func TestGetUnknownProduct(t *testing.T) {
	svc, _ := testCatalog(t)

	_, err := svc.Get(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrNotFound))
}

package memory

import (
	"context"
	"testing"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/repository"
	"github.com/stretchr/testify/require"
)

var _ repository.Store = (*Store)(nil)

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStore_CopiesValues(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), out)

	out[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	require.Equal(t, []byte("abc"), again)
}

package service

import (
	"context"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/repository"
)

type fakeStore struct {
	data map[string][]byte

	getErr error
	setErr error
	delErr error

	setCalls int
	delCalls int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{data: map[string][]byte{}} }

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.delCalls++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

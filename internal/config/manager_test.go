package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

type fakeSettingsStore struct {
	err  error
	rows map[string]string
}

func (f *fakeSettingsStore) GetSetting(_ context.Context, key string) (string, error) {
	v, ok := f.rows[key]
	if !ok {
		return "", common.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettingsStore) GetAllSettings(_ context.Context) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(f.rows))
	for k, v := range f.rows {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSettingsStore) SetSetting(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.rows[key] = value
	return nil
}

func TestManager_SnapshotChangesOnlyOnReload(t *testing.T) {
	store := &fakeSettingsStore{rows: map[string]string{}}
	m := NewManager(store, DefaultDeployment(), nil)

	before := m.Current()
	assert.Equal(t, "anthropic", before.DefaultProvider)

	store.rows[KeyDefaultProvider] = "google"
	assert.Same(t, before, m.Current())

	after, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "google", after.DefaultProvider)
	assert.Same(t, after, m.Current())
	assert.Equal(t, "anthropic", before.DefaultProvider)
}

func TestManager_ReloadErrorKeepsSnapshot(t *testing.T) {
	store := &fakeSettingsStore{rows: map[string]string{}, err: errors.New("db locked")}
	m := NewManager(store, DefaultDeployment(), nil)
	before := m.Current()

	got, err := m.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, before, got)
	assert.Same(t, before, m.Current())
}

func TestManager_SaveStrategy(t *testing.T) {
	store := &fakeSettingsStore{rows: map[string]string{}}
	m := NewManager(store, DefaultDeployment(), nil)

	strategy := model.DefaultStrategy()
	strategy.ActiveStrategy = "financial"

	saved, err := m.SaveStrategy(context.Background(), strategy)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "financial", m.Current().Strategy.ActiveStrategy)
	assert.Contains(t, store.rows, KeyStrategy)

	_, err = m.SaveStrategy(context.Background(), model.RecommendationStrategy{})
	assert.ErrorIs(t, err, model.ErrInvalidStrategy)
}

func TestManager_SetRequiresKey(t *testing.T) {
	m := NewManager(&fakeSettingsStore{rows: map[string]string{}}, DefaultDeployment(), nil)
	assert.ErrorIs(t, m.Set(context.Background(), " ", "x"), common.ErrInvalidConfig)
}

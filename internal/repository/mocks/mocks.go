package mocks

import (
	"context"

	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/rpggio/efxcreator/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// Catalog is a mock for project.Catalog.
type Catalog struct {
	mock.Mock
}

func (m *Catalog) List(ctx context.Context) ([]project.Record, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Catalog) Get(ctx context.Context, id string) (*project.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*project.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Catalog) Put(ctx context.Context, rec *project.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *Catalog) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Fingerprinter is a mock for project.Fingerprinter.
type Fingerprinter struct {
	mock.Mock
}

func (m *Fingerprinter) Fingerprint(ctx context.Context, audioRef string) (uint32, error) {
	args := m.Called(ctx, audioRef)
	return args.Get(0).(uint32), args.Error(1)
}

// ActivityLogger is a mock for project.ActivityLogger.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SettingsRepository is a mock for repository.SettingsRepository.
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *SettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *SettingsRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

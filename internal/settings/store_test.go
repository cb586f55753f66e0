package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
)

// --- fake key-value store ---

type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeKV) stored(t *testing.T) domain.Settings {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[DefaultKey]
	require.True(t, ok, "record was not persisted")
	var s domain.Settings
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func newTestStore(kv domain.KeyValueStore) (*Store, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(kv, "", slog.New(slog.NewTextHandler(io.Discard, nil)), m), m
}

// --- Load ---

func TestLoad_EmptyStoreReturnsDefaults(t *testing.T) {
	s, m := newTestStore(newFakeKV())

	got, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
	assert.Equal(t, domain.DefaultSettings(), s.Current())
	assert.InDelta(t, 1, testutil.ToFloat64(m.SettingsLoads.WithLabelValues("empty")), 0)
}

func TestLoad_MissingGroupKeepsDefaults(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = `{
		"theme": "dark",
		"temperatureUnit": "fahrenheit",
		"tempThresholds": {"veryCold": -5, "cold": 5, "mild": 15, "warm": 22, "hot": 30}
	}`
	s, m := newTestStore(kv)

	got, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, domain.Fahrenheit, got.TemperatureUnit)
	assert.Equal(t, domain.KilometersPerHour, got.WindSpeedUnit, "missing scalar keeps default")
	assert.Equal(t, domain.TempThresholds{VeryCold: -5, Cold: 5, Mild: 15, Warm: 22, Hot: 30}, got.TempThresholds)
	assert.Equal(t, domain.DefaultWindThresholds(), got.WindThresholds)
	assert.Equal(t, domain.DefaultPrecipThresholds(), got.PrecipThresholds)
	assert.Equal(t, domain.DefaultHumidityThresholds(), got.HumidityThresholds)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SettingsLoads.WithLabelValues("found")), 0)
}

func TestLoad_PartialGroupKeepsMissingBoundaries(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = `{"windThresholds": {"light": 3}}`
	s, _ := newTestStore(kv)

	got, err := s.Load(context.Background())
	require.NoError(t, err)

	want := domain.DefaultWindThresholds()
	want.Light = 3
	assert.Equal(t, want, got.WindThresholds)
}

func TestLoad_CorruptRecordFallsBackToDefaults(t *testing.T) {
	kv := newFakeKV()
	kv.data[DefaultKey] = `{"theme": "dark", `
	s, m := newTestStore(kv)

	got, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SettingsLoads.WithLabelValues("corrupt")), 0)
}

func TestLoad_StorageError(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("disk on fire")
	s, _ := newTestStore(kv)

	_, err := s.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestCheckReadiness(t *testing.T) {
	s, _ := newTestStore(newFakeKV())
	require.Error(t, s.CheckReadiness(context.Background()))

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.NoError(t, s.CheckReadiness(context.Background()))
}

// --- writes ---

func TestSave_PersistsWholeRecord(t *testing.T) {
	kv := newFakeKV()
	s, m := newTestStore(kv)

	rec := domain.DefaultSettings()
	rec.WindSpeedUnit = domain.MilesPerHour
	rec.RefreshRate = "15"
	rec.PrecipThresholds.Heavy = 30

	require.NoError(t, s.Save(context.Background(), rec))

	assert.Equal(t, rec, kv.stored(t))
	assert.Equal(t, rec, s.Current())
	assert.InDelta(t, 1, testutil.ToFloat64(m.SettingsSaves), 0)
}

func TestSave_RejectsInvalidRecord(t *testing.T) {
	kv := newFakeKV()
	s, _ := newTestStore(kv)

	rec := domain.DefaultSettings()
	rec.TempThresholds.Cold = -10

	err := s.Save(context.Background(), rec)

	require.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Equal(t, 0, kv.sets)
	assert.Equal(t, domain.DefaultSettings(), s.Current())
}

func TestSave_StorageErrorKeepsCurrent(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("read-only")
	s, _ := newTestStore(kv)

	rec := domain.DefaultSettings()
	rec.Theme = domain.ThemeDark

	require.Error(t, s.Save(context.Background(), rec))
	assert.Equal(t, domain.ThemeLight, s.Current().Theme)
}

func TestResetThresholds_KeepsUnitsAndTheme(t *testing.T) {
	kv := newFakeKV()
	s, _ := newTestStore(kv)

	rec := domain.DefaultSettings()
	rec.Theme = domain.ThemeDark
	rec.TemperatureUnit = domain.Fahrenheit
	rec.TempThresholds = domain.TempThresholds{VeryCold: -10, Cold: 0, Mild: 10, Warm: 20, Hot: 30}
	rec.HumidityThresholds.Humid = 90
	require.NoError(t, s.Save(context.Background(), rec))

	got, err := s.ResetThresholds(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, domain.Fahrenheit, got.TemperatureUnit)
	assert.Equal(t, domain.DefaultTempThresholds(), got.TempThresholds)
	assert.Equal(t, domain.DefaultHumidityThresholds(), got.HumidityThresholds)
	assert.Equal(t, got, kv.stored(t))
}

func TestResetAll_KeepsThresholds(t *testing.T) {
	kv := newFakeKV()
	s, _ := newTestStore(kv)

	rec := domain.DefaultSettings()
	rec.Theme = domain.ThemeDark
	rec.PrecipitationUnit = domain.Inches
	rec.DefaultLocation = "Lisbon"
	rec.WindThresholds = domain.WindThresholds{Light: 2, Moderate: 10, Strong: 20, VeryStrong: 50}
	require.NoError(t, s.Save(context.Background(), rec))

	got, err := s.ResetAll(context.Background())
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.WindThresholds = rec.WindThresholds
	assert.Equal(t, want, got)
	assert.Equal(t, want, kv.stored(t))
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(newFakeKV())

	got, err := s.Update(context.Background(), func(rec *domain.Settings) {
		rec.DefaultLocation = "38.72, -9.14"
	})
	require.NoError(t, err)
	assert.Equal(t, "38.72, -9.14", got.DefaultLocation)

	_, err = s.Update(context.Background(), func(rec *domain.Settings) {
		rec.RefreshRate = "often"
	})
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Equal(t, "0", s.Current().RefreshRate)
}

func TestSetTheme(t *testing.T) {
	kv := newFakeKV()
	s, _ := newTestStore(kv)

	require.NoError(t, s.SetTheme(context.Background(), domain.ThemeDark))
	assert.Equal(t, domain.ThemeDark, kv.stored(t).Theme)

	require.ErrorIs(t, s.SetTheme(context.Background(), "neon"), domain.ErrInvalidSettings)
}

func TestOnChange_CalledAfterEachWrite(t *testing.T) {
	s, _ := newTestStore(newFakeKV())

	var seen []domain.Settings
	s.OnChange(func(rec domain.Settings) { seen = append(seen, rec) })

	require.NoError(t, s.SetTheme(context.Background(), domain.ThemeDark))
	_, err := s.ResetAll(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, domain.ThemeDark, seen[0].Theme)
	assert.Equal(t, domain.ThemeLight, seen[1].Theme)
}

func TestCustomKey(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, "profile-2", slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	require.NoError(t, s.SetTheme(context.Background(), domain.ThemeDark))

	_, ok := kv.data["profile-2"]
	assert.True(t, ok)
	_, ok = kv.data[DefaultKey]
	assert.False(t, ok)
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weatherwise-service/internal/adapter/api"
	"github.com/couchcryptid/weatherwise-service/internal/adapter/memory"
	"github.com/couchcryptid/weatherwise-service/internal/analysis"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
	"github.com/couchcryptid/weatherwise-service/internal/settings"
	"github.com/couchcryptid/weatherwise-service/internal/theme"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- fixtures ---

type mockGeocoder struct {
	places []domain.Place
	err    error
	query  string
	limit  int
}

func (m *mockGeocoder) Search(_ context.Context, query string, limit int) ([]domain.Place, error) {
	m.query, m.limit = query, limit
	return m.places, m.err
}

type testAPI struct {
	router   *gin.Engine
	store    *settings.Store
	kv       *memory.KV
	geocoder *mockGeocoder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 15, 9, 30, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	kv := memory.NewKV()
	store := settings.New(kv, "", logger, metrics)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	ctrl := theme.New(store, kv, memory.NewHub(), clock, logger, metrics)
	store.OnChange(ctrl.OnSettingsChange)
	svc := analysis.New(store, clock, 0, logger, metrics)
	geo := &mockGeocoder{}

	h := api.NewHandler(store, ctrl, svc, geo, logger)
	return &testAPI{router: api.NewRouter(h), store: store, kv: kv, geocoder: geo}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const lisbonAnalyze = `{"location": {"name": "Lisbon, Portugal", "lat": 38.7223, "lon": -9.1393}, "date": "2024-07-14"}`

// --- settings ---

func TestGetSettings_Defaults(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/settings", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultSettings(), decode[domain.Settings](t, rec))
}

func TestPutSettings_MergesAndPersists(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPut, "/api/settings", `{"temperatureUnit": "fahrenheit", "refreshRate": "10"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Settings](t, rec)
	assert.Equal(t, domain.Fahrenheit, got.TemperatureUnit)
	assert.Equal(t, "10", got.RefreshRate)
	assert.Equal(t, domain.DefaultTempThresholds(), got.TempThresholds)

	raw, ok, _ := a.kv.Get(context.Background(), settings.DefaultKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"temperatureUnit":"fahrenheit"`)
}

func TestPutSettings_Invalid(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPut, "/api/settings", `{"windSpeedUnit": "knots"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "windSpeedUnit")

	rec = a.do(t, http.MethodPut, "/api/settings", `{"theme": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsForm_RoundTrip(t *testing.T) {
	a := newTestAPI(t)
	_ = a.do(t, http.MethodPut, "/api/settings", `{"temperatureUnit": "fahrenheit"}`)

	rec := a.do(t, http.MethodGet, "/api/settings/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[settings.Form](t, rec)
	assert.Equal(t, 95.0, form.Temperature.Hot)

	form.Temperature.Hot = 104
	rec = a.do(t, http.MethodPut, "/api/settings/form", form)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.InDelta(t, 40, a.store.Current().TempThresholds.Hot, 1e-9)
	assert.Equal(t, 25.0, a.store.Current().TempThresholds.Warm)
}

func TestResetThresholds(t *testing.T) {
	a := newTestAPI(t)
	_ = a.do(t, http.MethodPut, "/api/settings", `{"theme": "dark", "windThresholds": {"light": 1, "moderate": 2, "strong": 3, "veryStrong": 4}}`)

	rec := a.do(t, http.MethodPost, "/api/settings/reset-thresholds", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Settings](t, rec)
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, domain.DefaultWindThresholds(), got.WindThresholds)
}

func TestResetAll(t *testing.T) {
	a := newTestAPI(t)
	_ = a.do(t, http.MethodPut, "/api/settings", `{"theme": "dark", "windThresholds": {"light": 1, "moderate": 2, "strong": 3, "veryStrong": 4}}`)

	rec := a.do(t, http.MethodPost, "/api/settings/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Settings](t, rec)
	assert.Equal(t, domain.ThemeLight, got.Theme)
	assert.Equal(t, domain.WindThresholds{Light: 1, Moderate: 2, Strong: 3, VeryStrong: 4}, got.WindThresholds)
}

func TestSettingsSchema(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/settings/schema", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	schema := decode[map[string]any](t, rec)
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "tempThresholds")
	assert.Contains(t, props, "windSpeedUnit")
}

func TestLabels(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/labels", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	labels := decode[domain.Labels](t, rec)
	assert.Equal(t, "Very Cold (<0°C)", labels.Temperature[0])
	assert.Len(t, labels.Humidity, 5)
}

// --- theme ---

func TestTheme(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ThemeLight, decode[theme.Presentation](t, rec).Theme)

	rec = a.do(t, http.MethodPut, "/api/theme", `{"theme": "dark"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[theme.Presentation](t, rec)
	assert.Equal(t, "dark-theme", p.RootClass)
	assert.Equal(t, domain.ThemeDark, a.store.Current().Theme)

	v, _, _ := a.kv.Get(context.Background(), theme.ChangeKey)
	assert.Equal(t, "dark", v)
}

func TestResetAll_RestoresPresentedTheme(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPut, "/api/theme", `{"theme": "dark"}`).Code)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/settings/reset", nil).Code)

	rec := a.do(t, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[theme.Presentation](t, rec)
	assert.Equal(t, domain.ThemeLight, p.Theme)
	assert.Empty(t, p.RootClass)
	v, _, _ := a.kv.Get(context.Background(), theme.ChangeKey)
	assert.Equal(t, "light", v)
}

func TestPutSettings_ThemeFollows(t *testing.T) {
	a := newTestAPI(t)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPut, "/api/settings", `{"theme": "dark"}`).Code)

	rec := a.do(t, http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark-theme", decode[theme.Presentation](t, rec).RootClass)
	v, _, _ := a.kv.Get(context.Background(), theme.ChangeKey)
	assert.Equal(t, "dark", v)
}

func TestPutTheme_Invalid(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, "/api/theme", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, "/api/theme", `{"theme": "neon"}`).Code)
}

// --- geocoding ---

func TestGeocode(t *testing.T) {
	a := newTestAPI(t)
	a.geocoder.places = []domain.Place{{Lat: 38.7, Lon: -9.1, DisplayName: "Lisboa, Portugal"}}

	rec := a.do(t, http.MethodGet, "/api/geocode?q=Lisbon&limit=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"places":[{"lat":38.7,"lon":-9.1,"display_name":"Lisboa, Portugal"}]}`, rec.Body.String())
	assert.Equal(t, "Lisbon", a.geocoder.query)
	assert.Equal(t, 3, a.geocoder.limit)
}

func TestGeocode_Errors(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/geocode", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/geocode?q=x&limit=50", nil).Code)

	rec := a.do(t, http.MethodGet, "/api/geocode?q=Nowhere", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"places":[]}`, rec.Body.String())

	a.geocoder.err = errors.Join(domain.ErrGeocoding, errors.New("timeout"))
	assert.Equal(t, http.StatusBadGateway, a.do(t, http.MethodGet, "/api/geocode?q=Lisbon", nil).Code)
}

func TestGeocode_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := settings.New(memory.NewKV(), "", logger, observability.NewMetricsForTesting())
	h := api.NewHandler(store, nil, nil, nil, logger)

	rec := httptest.NewRecorder()
	api.NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geocode?q=Lisbon", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDefaultLocation(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/default-location", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"location":null}`, rec.Body.String())

	_ = a.do(t, http.MethodPut, "/api/settings", `{"defaultLocation": "38.7223, -9.1393"}`)
	rec = a.do(t, http.MethodGet, "/api/default-location", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]domain.Location](t, rec)
	assert.Equal(t, 38.7223, body["location"].Lat)

	_ = a.do(t, http.MethodPut, "/api/settings", `{"defaultLocation": "Atlantis"}`)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/default-location", nil).Code)
}

// --- analysis and export ---

func TestAnalyze(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/analyze", lisbonAnalyze)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[analysis.Result](t, rec)
	assert.Equal(t, domain.Estimate(38.7223, 6), res.Report.Probabilities)
	assert.Len(t, res.Labels.Temperature, 6)
	require.NotNil(t, res.Charts.Wind)
	assert.True(t, strings.HasPrefix(res.Summary, "For July in Lisbon, Portugal"))
}

func TestAnalyze_IncludeSubset(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/analyze",
		`{"location": {"lat": 10, "lon": 10}, "date": "2024-01-05", "include": {"wind": false, "humidity": false}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[analysis.Result](t, rec)
	assert.Nil(t, res.Charts.Wind)
	assert.Nil(t, res.Charts.Humidity)
	assert.NotNil(t, res.Charts.Precipitation)
	assert.NotContains(t, res.Summary, "Humidity")
}

func TestAnalyze_Preconditions(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/analyze", `{"date": "2024-07-14"}`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Contains(t, rec.Body.String(), "select a location first")

	rec = a.do(t, http.MethodPost, "/api/analyze", `{"location": {"lat": 1, "lon": 1}}`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/analyze", `{"location": {"lat": 1, "lon": 1}, "date": "14/07/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/analyze", `{"location": {"lat": 100, "lon": 1}, "date": "2024-07-14"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastAnalysis(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusPreconditionFailed, a.do(t, http.MethodGet, "/api/analysis", nil).Code)

	_ = a.do(t, http.MethodPost, "/api/analyze", lisbonAnalyze)
	_ = a.do(t, http.MethodPut, "/api/settings", `{"temperatureUnit": "fahrenheit"}`)

	rec := a.do(t, http.MethodGet, "/api/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[analysis.Result](t, rec)
	assert.Equal(t, "Very Cold (<32°F)", res.Labels.Temperature[0])
}

func TestExport_BeforeAnalysis(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/export?format=csv", nil)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Contains(t, rec.Body.String(), "analyze the weather data first")
}

func TestExport_CSV(t *testing.T) {
	a := newTestAPI(t)
	_ = a.do(t, http.MethodPost, "/api/analyze", lisbonAnalyze)

	rec := a.do(t, http.MethodGet, "/api/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="weatherwise_lisbon__portugal_july.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Weather Parameter,Condition,Probability (%),Unit\n"))
}

func TestExport_JSONDefault(t *testing.T) {
	a := newTestAPI(t)
	_ = a.do(t, http.MethodPost, "/api/analyze", lisbonAnalyze)

	rec := a.do(t, http.MethodGet, "/api/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[domain.ExportDocument](t, rec)
	assert.Equal(t, "Lisbon, Portugal", doc.Location)
	assert.Equal(t, domain.DataSource, doc.DataSource)
}

func TestExport_UnknownFormat(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/export?format=xml", nil).Code)
}

// Package domain models the WeatherWise probability dashboard: user settings,
// unit conversion, threshold-driven bucket labels, the monthly probability
// estimator, and the export formats.
//
// # Canonical Units
//
// Thresholds are persisted in one unit per category regardless of what the
// user chose to display:
//
//	Temperature:   degrees Celsius
//	Precipitation: millimetres
//	Wind speed:    kilometres per hour
//	Humidity:      percent
//
// Conversion happens only at the presentation boundary ([GenerateLabels] and
// the settings form). Conversion factors:
//
//	°F = °C × 9/5 + 32
//	mph = km/h ÷ 1.60934
//	m/s = km/h ÷ 3.6
//	in  = mm ÷ 25.4
//
// # Buckets
//
// Each weather variable is split into a fixed number of buckets:
//
//	Temperature:   Very Cold | Cold | Mild | Warm | Hot | Very Hot   (6)
//	Precipitation: None | Light | Moderate | Heavy | Very Heavy       (5)
//	Wind:          Calm | Light | Moderate | Strong | Very Strong     (5)
//	Humidity:      Very Dry | Dry | Comfortable | Humid | Very Humid  (5)
//
// # Estimator
//
// The estimator stands in for a historical-climate data source. It is a
// deterministic function of latitude and month:
//
//	tempFactor  = |lat| / 90                      0 at the equator, 1 at the poles
//	monthFactor = |month − 6.5| / 5.5             mirrored (1 − f) for lat > 0
//
// Month is zero-based (January = 0), so monthFactor slightly exceeds 1 in
// January (6.5/5.5). Raw bucket scores are fixed linear combinations of the
// two factors, rounded half-up, clamped at zero, and rescaled so each vector
// sums to 100 within rounding tolerance. See [Estimate].
package domain

package nominatim

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// RateLimitedGeocoder spaces out calls to a Geocoder. The public Nominatim
// service allows at most one request per second.
type RateLimitedGeocoder struct {
	inner   domain.Geocoder
	limiter *rate.Limiter
}

// NewRateLimitedGeocoder allows rps requests per second with a burst of one.
func NewRateLimitedGeocoder(inner domain.Geocoder, rps float64) *RateLimitedGeocoder {
	return &RateLimitedGeocoder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (r *RateLimitedGeocoder) Search(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrGeocoding, err)
	}
	return r.inner.Search(ctx, query, limit)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/dylanbaghel/devcamper-api/internal/models"
)

// EarthRadiusMiles is used to convert a distance in miles into the angular
// radius (radians) of the radius search.
const EarthRadiusMiles = 3963.0

// Geocoder resolves a free-form address or zipcode into a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

// HTTPGeocoder queries a JSON geocoding endpoint (?q=<address>) with a
// bounded timeout so a slow provider cannot stall the request.
type HTTPGeocoder struct {
	URL    string
	Client *http.Client
}

func NewHTTPGeocoder(endpoint string, timeout time.Duration) *HTTPGeocoder {
	return &HTTPGeocoder{URL: endpoint, Client: &http.Client{Timeout: timeout}}
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	var loc models.Location
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL+"?q="+url.QueryEscape(address), nil)
	if err != nil {
		return loc, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return loc, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return loc, fmt.Errorf("geocode %q: unexpected status %d", address, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return loc, fmt.Errorf("geocode %q: %w", address, err)
	}
	return loc, nil
}

// NopGeocoder returns an empty location. Used in development when no
// geocoding endpoint is configured.
type NopGeocoder struct{}

func (NopGeocoder) Geocode(context.Context, string) (models.Location, error) {
	return models.Location{}, nil
}

// AngularDistance returns the great-circle distance between two points in
// radians (haversine). Comparing it against distanceMiles/EarthRadiusMiles
// reproduces the radius search.
func AngularDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const deg = math.Pi / 180
	phi1, phi2 := lat1*deg, lat2*deg
	dPhi := (lat2 - lat1) * deg
	dLambda := (lng2 - lng1) * deg
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

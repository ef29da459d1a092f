// Package locations implements the random-location discovery service: given
// a count, it yields that many real-world coordinates with street-level
// imagery coverage.
package locations

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/geoworld/geoexplorer/internal/game"
	"github.com/geoworld/geoexplorer/internal/geo"
)

// DefaultMetadataURL is the Street View image metadata endpoint. Metadata
// lookups are free of charge, so probing random points is cheap.
const DefaultMetadataURL = "https://maps.googleapis.com/maps/api/streetview/metadata"

const (
	// searchRadiusM widens each probe to 100 km so random ocean-adjacent
	// points still snap to nearby coverage.
	searchRadiusM = 100000

	// retryDelay spaces out probes after a coverage miss.
	retryDelay = 10 * time.Millisecond

	// fallbackName labels panoramas without a usable description.
	fallbackName = "A mysterious place"
)

// StreetViewFinder discovers playable locations by probing random points
// against the Street View metadata endpoint until each probe lands on an
// outdoor panorama.
type StreetViewFinder struct {
	client  *http.Client
	baseURL string
	key     string
}

func NewStreetViewFinder(key, baseURL string) *StreetViewFinder {
	if baseURL == "" {
		baseURL = DefaultMetadataURL
	}
	return &StreetViewFinder{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		key:     key,
	}
}

type metadataResponse struct {
	Status   string `json:"status"`
	PanoID   string `json:"pano_id"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Copyright string `json:"copyright"`
}

// Find fetches count locations concurrently, mirroring the client's
// all-or-nothing contract: every location is ready, or the whole batch
// fails.
func (f *StreetViewFinder) Find(ctx context.Context, count int) ([]game.Location, error) {
	locs := make([]game.Location, count)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			loc, err := f.findOne(gctx)
			if err != nil {
				return err
			}
			locs[i] = loc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locs, nil
}

// findOne probes random coordinates until one has coverage. Coverage misses
// (open ocean, unmapped land) retry internally and are invisible to the
// caller; real API failures abort.
func (f *StreetViewFinder) findOne(ctx context.Context) (game.Location, error) {
	for {
		meta, err := f.lookup(ctx, randomCoordinate())
		if err != nil {
			return game.Location{}, err
		}

		switch meta.Status {
		case "OK":
			return game.Location{
				ID:   meta.PanoID,
				Name: fallbackName,
				Coord: geo.Coordinate{
					Lat: meta.Location.Lat,
					Lng: meta.Location.Lng,
				},
			}, nil
		case "ZERO_RESULTS", "NOT_FOUND":
			select {
			case <-ctx.Done():
				return game.Location{}, ctx.Err()
			case <-time.After(retryDelay):
			}
		default:
			return game.Location{}, fmt.Errorf("street view metadata status %s", meta.Status)
		}
	}
}

func (f *StreetViewFinder) lookup(ctx context.Context, c geo.Coordinate) (metadataResponse, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", c.Lat, c.Lng))
	q.Set("radius", fmt.Sprintf("%d", searchRadiusM))
	q.Set("source", "outdoor")
	q.Set("preference", "best")
	q.Set("key", f.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return metadataResponse{}, fmt.Errorf("building metadata request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return metadataResponse{}, fmt.Errorf("querying street view metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return metadataResponse{}, fmt.Errorf("street view metadata returned HTTP %d", resp.StatusCode)
	}

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return metadataResponse{}, fmt.Errorf("decoding metadata response: %w", err)
	}
	return meta, nil
}

// randomCoordinate picks a point with latitude clamped to ±85, where
// panorama coverage can exist at all.
func randomCoordinate() geo.Coordinate {
	return geo.Coordinate{
		Lat: rand.Float64()*170 - 85,
		Lng: rand.Float64()*360 - 180,
	}
}

package locations

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/geoworld/geoexplorer/internal/game"
	"github.com/geoworld/geoexplorer/internal/geo"
)

// StaticFinder serves locations from a built-in set of well-covered spots.
// It backs the server when no Street View API key is configured, so the game
// stays playable offline.
type StaticFinder struct {
	locs []game.Location
}

func NewStaticFinder() *StaticFinder {
	return &StaticFinder{locs: builtinLocations}
}

// Find returns a random sample without replacement, so one game never
// repeats a location.
func (f *StaticFinder) Find(ctx context.Context, count int) ([]game.Location, error) {
	if count > len(f.locs) {
		return nil, fmt.Errorf("static set holds %d locations, %d requested", len(f.locs), count)
	}

	out := make([]game.Location, 0, count)
	for _, i := range rand.Perm(len(f.locs))[:count] {
		out = append(out, f.locs[i])
	}
	return out, nil
}

var builtinLocations = []game.Location{
	{ID: "eiffel-tower", Name: "Paris, France", Coord: geo.Coordinate{Lat: 48.8584, Lng: 2.2945}},
	{ID: "times-square", Name: "New York, USA", Coord: geo.Coordinate{Lat: 40.7580, Lng: -73.9855}},
	{ID: "shibuya-crossing", Name: "Tokyo, Japan", Coord: geo.Coordinate{Lat: 35.6595, Lng: 139.7005}},
	{ID: "opera-house", Name: "Sydney, Australia", Coord: geo.Coordinate{Lat: -33.8568, Lng: 151.2153}},
	{ID: "plaza-de-armas", Name: "Lima, Peru", Coord: geo.Coordinate{Lat: -12.0464, Lng: -77.0301}},
	{ID: "table-mountain", Name: "Cape Town, South Africa", Coord: geo.Coordinate{Lat: -33.9628, Lng: 18.4098}},
	{ID: "red-square", Name: "Moscow, Russia", Coord: geo.Coordinate{Lat: 55.7539, Lng: 37.6208}},
	{ID: "copacabana", Name: "Rio de Janeiro, Brazil", Coord: geo.Coordinate{Lat: -22.9719, Lng: -43.1825}},
	{ID: "golden-gate", Name: "San Francisco, USA", Coord: geo.Coordinate{Lat: 37.8078, Lng: -122.4750}},
	{ID: "colosseum", Name: "Rome, Italy", Coord: geo.Coordinate{Lat: 41.8902, Lng: 12.4922}},
	{ID: "brandenburg-gate", Name: "Berlin, Germany", Coord: geo.Coordinate{Lat: 52.5163, Lng: 13.3777}},
	{ID: "gardens-by-the-bay", Name: "Singapore", Coord: geo.Coordinate{Lat: 1.2816, Lng: 103.8636}},
	{ID: "grand-place", Name: "Brussels, Belgium", Coord: geo.Coordinate{Lat: 50.8467, Lng: 4.3525}},
	{ID: "zocalo", Name: "Mexico City, Mexico", Coord: geo.Coordinate{Lat: 19.4326, Lng: -99.1332}},
	{ID: "old-town-square", Name: "Prague, Czechia", Coord: geo.Coordinate{Lat: 50.0875, Lng: 14.4213}},
	{ID: "piccadilly-circus", Name: "London, UK", Coord: geo.Coordinate{Lat: 51.5101, Lng: -0.1340}},
}

// Package hospital holds the static hospital directory used for SOS routing.
package hospital

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyDirectory    = errors.New("hospital directory is empty")
	ErrInvalidHospital   = errors.New("invalid hospital entry")
	ErrDuplicateHospital = errors.New("duplicate hospital id")
)

//go:embed hospitals.yaml
var embedded []byte

const (
	earthRadiusKm = 6371.0
	averageKmh    = 40.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCenter is used when a request carries no usable location.
var DefaultCenter = Point{Lat: 29.0661, Lng: 31.0994}

type Hospital struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Lat   float64 `json:"lat" yaml:"lat"`
	Lng   float64 `json:"lng" yaml:"lng"`
	Phone string  `json:"phone" yaml:"phone"`
}

// Match is a hospital together with its distance from the caller.
type Match struct {
	Hospital
	DistanceKm float64 `json:"distance_km"`
	ETAMinutes int     `json:"eta_minutes"`
}

type Directory struct {
	hospitals []Hospital
}

type document struct {
	Hospitals []Hospital `yaml:"hospitals"`
}

// Default returns the directory compiled into the binary.
func Default() (*Directory, error) {
	return Parse(embedded)
}

// Load reads a directory from path, or the embedded one when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hospital directory: %w", err)
	}
	dir, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return dir, nil
}

func Parse(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode hospitals: %w", err)
	}
	if len(doc.Hospitals) == 0 {
		return nil, ErrEmptyDirectory
	}

	seen := make(map[string]struct{}, len(doc.Hospitals))
	for i, h := range doc.Hospitals {
		if h.ID == "" || h.Name == "" {
			return nil, fmt.Errorf("%w: entry %d needs id and name", ErrInvalidHospital, i)
		}
		if h.Lat < -90 || h.Lat > 90 || h.Lng < -180 || h.Lng > 180 {
			return nil, fmt.Errorf("%w: %s has coordinates out of range", ErrInvalidHospital, h.ID)
		}
		if _, dup := seen[h.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHospital, h.ID)
		}
		seen[h.ID] = struct{}{}
	}
	return &Directory{hospitals: doc.Hospitals}, nil
}

// All returns a copy of the directory in file order.
func (d *Directory) All() []Hospital {
	return append([]Hospital(nil), d.hospitals...)
}

// Nearest returns the closest hospital to p. Ties keep the earlier entry.
func (d *Directory) Nearest(p Point) Match {
	best := d.hospitals[0]
	bestKm := math.Inf(1)
	for _, h := range d.hospitals {
		km := HaversineKm(p, Point{Lat: h.Lat, Lng: h.Lng})
		if km < bestKm {
			best, bestKm = h, km
		}
	}
	distance := math.Round(bestKm*100) / 100
	return Match{
		Hospital:   best,
		DistanceKm: distance,
		ETAMinutes: EstimateTravelMinutes(distance),
	}
}

// HaversineKm is the great-circle distance between a and b.
func HaversineKm(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Pow(math.Sin(dPhi/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EstimateTravelMinutes assumes an average road speed of 40 km/h and never
// returns less than one minute.
func EstimateTravelMinutes(distanceKm float64) int {
	minutes := int(math.Round(distanceKm / averageKmh * 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ParsePoint validates a caller-supplied location. Missing, non-finite or
// out-of-range coordinates fall back to DefaultCenter.
func ParsePoint(lat, lng *float64) Point {
	if lat == nil || lng == nil {
		return DefaultCenter
	}
	if math.IsNaN(*lat) || math.IsNaN(*lng) || math.IsInf(*lat, 0) || math.IsInf(*lng, 0) {
		return DefaultCenter
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return DefaultCenter
	}
	return Point{Lat: *lat, Lng: *lng}
}

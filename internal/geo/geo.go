// Package geo holds the spherical math and the grid layout behind the
// trophy spatial index.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean earth radius used by Haversine.
	EarthRadiusKm = 6371.0
	// MaxRadiusKm is roughly half the earth circumference.
	MaxRadiusKm = 20000.0
	// CellSizeDeg is the edge of one grid cell in degrees.
	CellSizeDeg = 0.5

	minCellLat = -180 // floor(-90 / CellSizeDeg)
	maxCellLat = 179
	minCellLon = -360
	maxCellLon = 359

	// padRad widens planned boxes so float rounding never drops a point on the rim.
	padRad = 1e-9
)

type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p is a finite coordinate inside the usual ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLon := toRad(b.Lon - a.Lon)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if s > 1 {
		s = 1
	}
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(s))
}

// Cell is one grid bucket.
type Cell struct {
	Lat int
	Lon int
}

// CellOf returns the grid cell containing p.
func CellOf(p Point) Cell {
	return Cell{
		Lat: clamp(int(math.Floor(p.Lat/CellSizeDeg)), minCellLat, maxCellLat),
		Lon: clamp(int(math.Floor(p.Lon/CellSizeDeg)), minCellLon, maxCellLon),
	}
}

// Key is the textual spatial key stored on trophies.
func (c Cell) Key() string {
	return fmt.Sprintf("%d:%d", c.Lat, c.Lon)
}

// LonRange is an inclusive range of cell longitudes.
type LonRange struct {
	Min int
	Max int
}

// Cover is the set of cells a radius query has to inspect: every cell whose
// latitude index is in [LatMin, LatMax] and whose longitude index falls in
// one of LonRanges. AllLon means every longitude.
type Cover struct {
	LatMin    int
	LatMax    int
	AllLon    bool
	LonRanges []LonRange
}

// Contains reports whether c is part of the cover.
func (cv Cover) Contains(c Cell) bool {
	if c.Lat < cv.LatMin || c.Lat > cv.LatMax {
		return false
	}
	if cv.AllLon {
		return true
	}
	for _, r := range cv.LonRanges {
		if c.Lon >= r.Min && c.Lon <= r.Max {
			return true
		}
	}
	return false
}

// CoverCircle plans the cells touched by the circle of radiusKm around center.
// The box is the exact bounding box of the spherical cap.
func CoverCircle(center Point, radiusKm float64) Cover {
	r := radiusKm/EarthRadiusKm + padRad
	lat := toRad(center.Lat)
	lon := toRad(center.Lon)

	latMin := lat - r
	latMax := lat + r

	if latMax >= math.Pi/2 || latMin <= -math.Pi/2 {
		return Cover{
			LatMin: latCell(math.Max(latMin, -math.Pi/2)),
			LatMax: latCell(math.Min(latMax, math.Pi/2)),
			AllLon: true,
		}
	}

	ratio := math.Sin(r) / math.Cos(lat)
	if ratio >= 1 {
		return Cover{LatMin: latCell(latMin), LatMax: latCell(latMax), AllLon: true}
	}
	dLon := math.Asin(ratio) + padRad
	lonMin := lon - dLon
	lonMax := lon + dLon

	cv := Cover{LatMin: latCell(latMin), LatMax: latCell(latMax)}
	switch {
	case lonMax-lonMin >= 2*math.Pi:
		cv.AllLon = true
	case lonMin < -math.Pi:
		cv.LonRanges = []LonRange{
			{Min: lonCell(lonMin + 2*math.Pi), Max: maxCellLon},
			{Min: minCellLon, Max: lonCell(lonMax)},
		}
	case lonMax > math.Pi:
		cv.LonRanges = []LonRange{
			{Min: lonCell(lonMin), Max: maxCellLon},
			{Min: minCellLon, Max: lonCell(lonMax - 2*math.Pi)},
		}
	default:
		cv.LonRanges = []LonRange{{Min: lonCell(lonMin), Max: lonCell(lonMax)}}
	}
	return cv
}

func latCell(rad float64) int {
	return clamp(int(math.Floor(toDeg(rad)/CellSizeDeg)), minCellLat, maxCellLat)
}

func lonCell(rad float64) int {
	return clamp(int(math.Floor(toDeg(rad)/CellSizeDeg)), minCellLon, maxCellLon)
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

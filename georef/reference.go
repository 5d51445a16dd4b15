package georef

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// LoadReferencePoints reads a reference correspondence file and returns
// geographic ground-truth landmarks (in local Cartesian coordinates) plus
// the 2-D tracks that observe them.
//
// Format, one landmark per line:
//
//	lat lon alt frame u v [frame u v ...]
//
// lat/lon in degrees, alt in meters, at least one (frame, u, v) triple per
// line. At least 3 landmarks with at least 2 states each are needed for a
// usable similarity fit, but that minimum is the estimator's concern, not
// the loader's.
//
// The file carries its own geographic anchor: the frame is (re)anchored at
// the mean UTM position of all reference points, in the zone and
// hemisphere of the first point. Landmark positions come back relative to
// that origin (x east, y north, z up).
func LoadReferencePoints(path string, frame *LocalFrame) (LandmarkMap, TrackSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening reference points file %s: %w", path, err)
	}
	defer f.Close()

	type rawPoint struct {
		easting, northing, altitude float64
	}
	var points []rawPoint
	var tracks TrackSet
	mapper := frame.Mapper()
	zone := 0
	isNorth := true

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		// 3 geo values plus at least one complete (frame, u, v) triple.
		if len(fields) < 6 || (len(fields)-3)%3 != 0 {
			return nil, nil, fmt.Errorf("%s:%d: expected \"lat lon alt (frame u v)+\", got %d fields", path, lineNo, len(fields))
		}

		vals := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: bad value %q: %w", path, lineNo, s, err)
			}
			vals[i] = v
		}

		easting, northing, ptZone, ptNorth := mapper.LatLonToUTM(vals[0], vals[1])
		if zone == 0 {
			zone, isNorth = ptZone, ptNorth
		}
		points = append(points, rawPoint{easting: easting, northing: northing, altitude: vals[2]})

		track := &Track{ID: int64(len(tracks))}
		for i := 3; i < len(vals); i += 3 {
			track.States = append(track.States, TrackState{
				Frame: int64(vals[i]),
				U:     vals[i+1],
				V:     vals[i+2],
			})
		}
		tracks = append(tracks, track)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading reference points file %s: %w", path, err)
	}
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("reference points file %s contains no landmarks", path)
	}

	// Anchor at the centroid of the reference points. A reference anchor is
	// authoritative and replaces any previously computed origin.
	var sumE, sumN, sumA float64
	for _, p := range points {
		sumE += p.easting
		sumN += p.northing
		sumA += p.altitude
	}
	n := float64(len(points))
	frame.AnchorAtOrigin(LocalOrigin{
		Easting:           sumE / n,
		Northing:          sumN / n,
		Altitude:          sumA / n,
		Zone:              zone,
		IsNorthHemisphere: isNorth,
	})

	origin := frame.Origin()
	landmarks := make(LandmarkMap, len(points))
	for i, p := range points {
		landmarks[int64(i)] = &Landmark{Position: r3.Vector{
			X: p.easting - origin.Easting,
			Y: p.northing - origin.Northing,
			Z: p.altitude - origin.Altitude,
		}}
	}
	return landmarks, tracks, nil
}

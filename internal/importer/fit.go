package importer

import (
	"fmt"
	"os"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/tilescout/tilescout/internal/domain"
)

// semicirclesToDegrees converts the FIT position unit back to degrees.
const semicirclesToDegrees = 180.0 / 2147483648.0

// decodeFIT decodes a FIT activity file via the filedef listener.
func decodeFIT(path string) (*rawActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fit: %w", err)
	}
	defer f.Close()

	lis := filedef.NewListener()
	defer lis.Close()

	dec := decoder.New(f,
		decoder.WithMesgListener(lis),
		decoder.WithBroadcastOnly(),
	)
	if _, err := dec.Decode(); err != nil {
		return nil, fmt.Errorf("decode fit: %w", err)
	}

	activityFile, ok := lis.File().(*filedef.Activity)
	if !ok {
		return nil, fmt.Errorf("fit file is not an activity file")
	}

	raw := &rawActivity{}

	for _, rec := range activityFile.Records {
		if rec.PositionLat == basetype.Sint32Invalid || rec.PositionLong == basetype.Sint32Invalid {
			continue
		}
		p := domain.TrackPoint{
			Lat:  float64(rec.PositionLat) * semicirclesToDegrees,
			Lon:  float64(rec.PositionLong) * semicirclesToDegrees,
			Time: rec.Timestamp,
		}
		if rec.EnhancedAltitude != basetype.Uint32Invalid {
			// Scale 5, offset 500 per the FIT profile.
			p.Elevation = float64(rec.EnhancedAltitude)/5.0 - 500.0
		}
		if rec.EnhancedSpeed != basetype.Uint32Invalid {
			// mm/s to km/h.
			p.SpeedKmh = float64(rec.EnhancedSpeed) / 1000.0 * 3.6
		}
		if rec.HeartRate != basetype.Uint8Invalid {
			p.HeartRate = int(rec.HeartRate)
		}
		raw.points = append(raw.points, p)
	}

	if len(activityFile.Sessions) > 0 {
		applySession(raw, activityFile.Sessions[0])
	}

	return raw, nil
}

func applySession(raw *rawActivity, s *mesgdef.Session) {
	raw.kind = kindFromSport(s.Sport)
	if s.TotalDistance != basetype.Uint32Invalid {
		// cm to km.
		raw.distanceKm = float64(s.TotalDistance) / 100.0 / 1000.0
	}
	if s.TotalElapsedTime != basetype.Uint32Invalid {
		// ms to s.
		raw.elapsedSec = int64(s.TotalElapsedTime / 1000)
	}
	if s.TotalCalories != basetype.Uint16Invalid {
		raw.calories = float64(s.TotalCalories)
	}
}

func kindFromSport(sport typedef.Sport) string {
	switch sport {
	case typedef.SportCycling:
		return domain.KindRide
	case typedef.SportRunning:
		return domain.KindRun
	case typedef.SportWalking:
		return domain.KindWalk
	case typedef.SportHiking:
		return domain.KindHike
	case typedef.SportCrossCountrySkiing, typedef.SportAlpineSkiing:
		return domain.KindSki
	default:
		return domain.KindOther
	}
}

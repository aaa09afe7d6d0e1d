package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/domain"
	apperrors "github.com/tilescout/tilescout/internal/pkg/errors"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Morning Ride</name>
    <type>cycling</type>
    <trkseg>
      <trkpt lat="50.7374" lon="7.0982"><ele>60</ele><time>2024-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="50.7380" lon="7.0990"><ele>61</ele><time>2024-05-01T08:00:30Z</time></trkpt>
      <trkpt lat="50.7391" lon="7.1004"><ele>62</ele><time>2024-05-01T08:01:10Z</time></trkpt>
      <trkpt lat="50.7402" lon="7.1021"><ele>63</ele><time>2024-05-01T08:02:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func writeSample(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportFileGPX(t *testing.T) {
	imp := New(zap.NewNop())

	activity, track, err := imp.ImportFile(writeSample(t, "ride.gpx", sampleGPX))
	require.NoError(t, err)

	assert.Equal(t, "Morning Ride", activity.Name)
	assert.Equal(t, domain.KindRide, activity.Kind)
	assert.Equal(t, domain.SourceFile, activity.Source)
	assert.Equal(t, 4, activity.NumPoints)
	assert.Len(t, track.Points, 4)

	// Elapsed taken from the timestamps: 08:00:00 to 08:02:00.
	assert.Equal(t, int64(120), activity.ElapsedSec)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), activity.StartTime)

	// Distance derived from haversine accumulation, a few hundred meters.
	assert.Greater(t, activity.DistanceKm, 0.2)
	assert.Less(t, activity.DistanceKm, 0.8)

	// Speeds filled from deltas on all but the first point.
	for _, p := range track.Points[1:] {
		assert.Greater(t, p.SpeedKmh, 0.0)
	}
}

func TestImportFileDropsOutOfRangePoints(t *testing.T) {
	corrupt := `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk>
    <name>Glitchy Ride</name>
    <trkseg>
      <trkpt lat="50.7374" lon="7.0982"><time>2024-05-01T08:00:00Z</time></trkpt>
      <trkpt lat="95.0" lon="7.0990"><time>2024-05-01T08:00:30Z</time></trkpt>
      <trkpt lat="50.7391" lon="181.5"><time>2024-05-01T08:01:10Z</time></trkpt>
      <trkpt lat="50.7402" lon="7.1021"><time>2024-05-01T08:02:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

	imp := New(zap.NewNop())

	activity, track, err := imp.ImportFile(writeSample(t, "glitchy.gpx", corrupt))
	require.NoError(t, err)

	assert.Equal(t, 2, activity.NumPoints)
	require.Len(t, track.Points, 2)
	for _, p := range track.Points {
		assert.InDelta(t, 50.74, p.Lat, 0.01)
	}
}

func TestImportFileNameFallback(t *testing.T) {
	imp := New(zap.NewNop())

	unnamed := `<?xml version="1.0"?><gpx version="1.1" creator="t"><trk><trkseg>
<trkpt lat="50.0" lon="7.0"><time>2024-05-01T08:00:00Z</time></trkpt>
<trkpt lat="50.001" lon="7.001"><time>2024-05-01T08:00:10Z</time></trkpt>
</trkseg></trk></gpx>`

	activity, _, err := imp.ImportFile(writeSample(t, "2024-05-01-commute.gpx", unnamed))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01-commute", activity.Name)
	assert.Equal(t, domain.KindOther, activity.Kind)
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	imp := New(zap.NewNop())

	_, _, err := imp.ImportFile(writeSample(t, "notes.txt", "not a track"))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "UNSUPPORTED_FORMAT", appErr.Code)
}

func TestImportFileEmptyTrack(t *testing.T) {
	imp := New(zap.NewNop())

	empty := `<?xml version="1.0"?><gpx version="1.1" creator="t"></gpx>`
	_, _, err := imp.ImportFile(writeSample(t, "empty.gpx", empty))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "EMPTY_TRACK", appErr.Code)
}

func TestNormalizeKind(t *testing.T) {
	assert.Equal(t, domain.KindRide, normalizeKind("Cycling"))
	assert.Equal(t, domain.KindRun, normalizeKind("running"))
	assert.Equal(t, domain.KindHike, normalizeKind("Hiking"))
	assert.Equal(t, domain.KindOther, normalizeKind("kitesurf"))
	assert.Equal(t, "", normalizeKind(""))
}

func TestDecodeGPXBytesRouteFallback(t *testing.T) {
	routeOnly := `<?xml version="1.0"?><gpx version="1.1" creator="t"><rte><name>Loop</name>
<rtept lat="50.0" lon="7.0"></rtept>
<rtept lat="50.01" lon="7.01"></rtept>
</rte></gpx>`

	raw, err := decodeGPXBytes([]byte(routeOnly))
	require.NoError(t, err)
	assert.Equal(t, "Loop", raw.name)
	assert.Len(t, raw.points, 2)
}

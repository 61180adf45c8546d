package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nycTaxiExplorer/pkg/logger"

	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"
)

var ErrMissingFile = errors.New("required data file not found")

var tripColumns = []string{
	"tpep_pickup_datetime",
	"tpep_dropoff_datetime",
	"passenger_count",
	"trip_distance",
	"PULocationID",
	"DOLocationID",
	"fare_amount",
	"tip_amount",
	"total_amount",
}

type Loader struct {
	rawDir   string
	tripFile string
	zoneFile string
}

func NewLoader(rawDir, tripFile, zoneFile string) *Loader {
	return &Loader{
		rawDir:   rawDir,
		tripFile: tripFile,
		zoneFile: zoneFile,
	}
}

func (l *Loader) tripPath() string { return filepath.Join(l.rawDir, l.tripFile) }
func (l *Loader) zonePath() string { return filepath.Join(l.rawDir, l.zoneFile) }

// VerifyFiles reports every missing input at once.
func (l *Loader) VerifyFiles() error {
	var missing []string
	for _, p := range []string{l.tripPath(), l.zonePath()} {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFile, strings.Join(missing, ", "))
	}
	return nil
}

// Load reads the trip and zone files concurrently. sample > 0 keeps only the
// first sample trips.
func (l *Loader) Load(ctx context.Context, sample int) ([]RawTrip, []ZoneRow, error) {
	var (
		trips []RawTrip
		zones []ZoneRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = l.LoadTrips(gctx, sample)
		return err
	})
	g.Go(func() error {
		var err error
		zones, err = l.LoadZones(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return trips, zones, nil
}

func (l *Loader) LoadTrips(ctx context.Context, sample int) ([]RawTrip, error) {
	f, err := os.Open(l.tripPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open trip data: %w", err)
	}
	defer f.Close()

	trips, err := ParseTrips(ctx, f, sample)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded trip data", "path", l.tripPath(), "rows", len(trips))
	return trips, nil
}

func (l *Loader) LoadZones(ctx context.Context) ([]ZoneRow, error) {
	f, err := os.Open(l.zonePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open zone lookup: %w", err)
	}
	defer f.Close()

	zones, err := ParseZones(ctx, f)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded zone lookup", "path", l.zonePath(), "rows", len(zones))
	return zones, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// parseID accepts "132" and "132.0"; fractional ids are treated as missing.
func parseID(s string) *int64 {
	f := parseFloat(s)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	v := int64(*f)
	return &v
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return nil
	}
	return &t
}

// ParseTrips decodes a TLC yellow trip CSV. Unknown columns are ignored and
// absent ones read as missing.
func ParseTrips(ctx context.Context, r io.Reader, sample int) ([]RawTrip, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read trip header: %w", err)
	}
	idx := headerIndex(header)

	var missing []string
	for _, c := range tripColumns[:2] {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("trip data is missing columns: %s", strings.Join(missing, ", "))
	}

	trips := []RawTrip{}
	for line := 2; sample <= 0 || len(trips) < sample; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read trip line %d: %w", line, err)
		}

		trips = append(trips, RawTrip{
			PickupAt:       parseTime(field(rec, idx, "tpep_pickup_datetime")),
			DropoffAt:      parseTime(field(rec, idx, "tpep_dropoff_datetime")),
			PassengerCount: parseFloat(field(rec, idx, "passenger_count")),
			TripDistance:   parseFloat(field(rec, idx, "trip_distance")),
			PULocationID:   parseID(field(rec, idx, "PULocationID")),
			DOLocationID:   parseID(field(rec, idx, "DOLocationID")),
			FareAmount:     parseFloat(field(rec, idx, "fare_amount")),
			TipAmount:      parseFloat(field(rec, idx, "tip_amount")),
			TotalAmount:    parseFloat(field(rec, idx, "total_amount")),
		})
	}

	return trips, nil
}

// ParseZones decodes taxi_zone_lookup.csv; rows without a numeric LocationID
// are skipped.
func ParseZones(ctx context.Context, r io.Reader) ([]ZoneRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read zone header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx["LocationID"]; !ok {
		return nil, errors.New("zone lookup is missing column: LocationID")
	}

	zones := []ZoneRow{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read zone lookup: %w", err)
		}

		id := parseID(field(rec, idx, "LocationID"))
		if id == nil {
			continue
		}

		zones = append(zones, ZoneRow{
			LocationID:  *id,
			Borough:     field(rec, idx, "Borough"),
			Zone:        field(rec, idx, "Zone"),
			ServiceZone: field(rec, idx, "service_zone"),
		})
	}

	return zones, nil
}

package pipeline

import (
	"math"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/utils"
)

const maxSpeedMPH = 80.0

const (
	TimeMorningRush = "Morning Rush"
	TimeMidday      = "Midday"
	TimeEveningRush = "Evening Rush"
	TimeNight       = "Night"
)

func categorizeHour(hour int) string {
	switch {
	case hour >= 6 && hour < 9:
		return TimeMorningRush
	case hour >= 9 && hour < 16:
		return TimeMidday
	case hour >= 16 && hour < 19:
		return TimeEveningRush
	default:
		return TimeNight
	}
}

// mondayFirst maps time.Weekday to 0 = Monday .. 6 = Sunday.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Engineer turns cleaned rows into trips with derived columns. Rows must have
// passed the Cleaner; critical fields are assumed present.
func Engineer(rows []RawTrip) []domain.Trip {
	trips := make([]domain.Trip, 0, len(rows))

	for _, r := range rows {
		pickup := r.PickupAt.UTC()
		dropoff := r.DropoffAt.UTC()

		duration := math.RoundToEven(dropoff.Sub(pickup).Minutes())

		speed := 0.0
		if duration > 0 {
			speed = utils.Round(*r.TripDistance/(duration/60), 2)
		}
		speed = math.Max(0, math.Min(speed, maxSpeedMPH))

		var passengers *int
		if r.PassengerCount != nil {
			p := int(*r.PassengerCount)
			passengers = &p
		}

		tip := 0.0
		if r.TipAmount != nil {
			tip = *r.TipAmount
		}
		total := *r.FareAmount + tip
		if r.TotalAmount != nil {
			total = *r.TotalAmount
		}

		dow := mondayFirst(pickup.Weekday())

		trips = append(trips, domain.Trip{
			PickupDatetime:    pickup,
			DropoffDatetime:   dropoff,
			PassengerCount:    passengers,
			TripDistance:      *r.TripDistance,
			PickupLocationID:  idOr(r.PULocationID),
			DropoffLocationID: idOr(r.DOLocationID),
			FareAmount:        *r.FareAmount,
			TipAmount:         tip,
			TotalAmount:       total,
			TripDurationMin:   duration,
			AvgSpeedMPH:       speed,
			PickupHour:        pickup.Hour(),
			PickupDayOfWeek:   dow,
			IsWeekend:         dow >= 5,
			TimeCategory:      categorizeHour(pickup.Hour()),
		})
	}

	return trips
}

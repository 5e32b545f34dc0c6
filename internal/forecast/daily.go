package forecast

import (
	"math"
	"time"

	"github.com/shuv1824/skycast/internal/types"
)

const (
	dayLayout = "2006-01-02"

	// UpcomingDays is how many days follow today in the multi-day panel.
	UpcomingDays = 5
)

// DailyAll groups samples by local calendar day, in first-seen order.
// The first sample of a day fixes its date, humidity, wind and weather;
// later samples only widen the min/max temperature.
func DailyAll(samples []types.ForecastSample, loc *time.Location) []types.DailyForecast {
	if len(samples) == 0 {
		return []types.DailyForecast{}
	}
	if loc == nil {
		loc = time.Local
	}

	index := make(map[string]int, len(samples)/8+1)
	days := make([]types.DailyForecast, 0, len(samples)/8+1)

	for _, s := range samples {
		key := time.Unix(s.Timestamp, 0).In(loc).Format(dayLayout)

		i, seen := index[key]
		if !seen {
			index[key] = len(days)
			days = append(days, types.DailyForecast{
				Date:     s.Timestamp,
				TempMin:  s.TempMin,
				TempMax:  s.TempMax,
				Humidity: s.Humidity,
				Wind:     s.WindSpeed,
				Weather:  s.Weather,
			})
			continue
		}

		days[i].TempMin = math.Min(days[i].TempMin, s.TempMin)
		days[i].TempMax = math.Max(days[i].TempMax, s.TempMax)
	}

	return days
}

// Aggregate returns the upcoming days of the forecast: today is skipped
// because the current conditions panel already covers it.
func Aggregate(samples []types.ForecastSample, loc *time.Location) []types.DailyForecast {
	days := DailyAll(samples, loc)
	if len(days) <= 1 {
		return []types.DailyForecast{}
	}

	end := min(len(days), 1+UpcomingDays)
	return days[1:end]
}

// Location returns the zone of a forecast given its UTC offset in seconds.
func Location(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetSeconds)
}

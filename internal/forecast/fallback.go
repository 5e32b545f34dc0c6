package forecast

import (
	"time"

	"github.com/shuv1824/skycast/internal/types"
)

type profile struct {
	tempMin, tempMax float64
	humidity         int
	wind             float64
	weather          types.Condition
}

var placeholderProfiles = []profile{
	{18, 24, 65, 3.2, types.Condition{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
	{17, 25, 70, 4.1, types.Condition{ID: 801, Main: "Clouds", Description: "few clouds", Icon: "02d"}},
	{15, 22, 75, 5.3, types.Condition{ID: 500, Main: "Rain", Description: "light rain", Icon: "10d"}},
	{16, 23, 68, 4.8, types.Condition{ID: 802, Main: "Clouds", Description: "scattered clouds", Icon: "03d"}},
	{19, 26, 60, 2.9, types.Condition{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
}

// FallbackDays builds n placeholder days dated after today+offset, at local noon.
// Profiles repeat when n exceeds the number of built-in profiles.
func FallbackDays(now time.Time, offset, n int, loc *time.Location) []types.DailyForecast {
	if n <= 0 {
		return []types.DailyForecast{}
	}
	if loc == nil {
		loc = time.Local
	}

	local := now.In(loc)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, loc)

	days := make([]types.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		p := placeholderProfiles[i%len(placeholderProfiles)]
		days = append(days, types.DailyForecast{
			Date:     noon.AddDate(0, 0, offset+1+i).Unix(),
			TempMin:  p.tempMin,
			TempMax:  p.tempMax,
			Humidity: p.humidity,
			Wind:     p.wind,
			Weather:  p.weather,
			Fallback: true,
		})
	}
	return days
}

// Merge appends the placeholder days after the real ones. Placeholder
// dates continue where the real days stop.
func Merge(real []types.DailyForecast, now time.Time, loc *time.Location) []types.DailyForecast {
	merged := make([]types.DailyForecast, 0, len(real)+len(placeholderProfiles))
	merged = append(merged, real...)
	return append(merged, FallbackDays(now, len(real), len(placeholderProfiles), loc)...)
}

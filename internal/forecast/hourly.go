package forecast

import (
	"time"

	"github.com/shuv1824/skycast/internal/types"
)

// HourlyPoints is the number of 3-hour samples plotted, i.e. the next 24 hours.
const HourlyPoints = 8

// Hourly takes the first n samples as chart points labelled in local time.
func Hourly(samples []types.ForecastSample, loc *time.Location, n int) []types.HourlyPoint {
	if loc == nil {
		loc = time.Local
	}
	n = min(max(n, 0), len(samples))

	points := make([]types.HourlyPoint, 0, n)
	for _, s := range samples[:n] {
		points = append(points, types.HourlyPoint{
			Time:      time.Unix(s.Timestamp, 0).In(loc).Format("15:04"),
			Temp:      s.Temp,
			FeelsLike: s.FeelsLike,
		})
	}
	return points
}

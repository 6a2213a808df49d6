package repository

import (
	"context"
	"time"

	"velum-go/internal/models"
)

type TimelineDataPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

type DistributionPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// SubmissionTimeline counts assessments per UTC day for the given number of
// days ending today. Days without submissions are reported as zero.
func (r *AssessmentRepository) SubmissionTimeline(ctx context.Context, now time.Time, days int) ([]TimelineDataPoint, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("date >= ?", since).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, days)
	for _, d := range dates {
		counts[d.UTC().Format("2006-01-02")]++
	}

	data := make([]TimelineDataPoint, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i)
		data = append(data, TimelineDataPoint{
			Date:  day.Format("01-02"),
			Value: counts[day.Format("2006-01-02")],
		})
	}
	return data, nil
}

// StatusDistribution counts tasks per status.
func (r *TaskRepository) StatusDistribution(ctx context.Context) ([]DistributionPoint, error) {
	var data []DistributionPoint
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("status AS name, COUNT(*) AS value").
		Group("status").
		Order("status").
		Scan(&data).Error
	return data, err
}

package services

import (
	"context"
	"fmt"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

const (
	dashboardRecentLimit = 5
	trendDays            = 7
)

type ActivityItem struct {
	Title string    `json:"title"`
	Time  time.Time `json:"time"`
}

type DashboardStats struct {
	TotalUsers        int64                         `json:"totalUsers"`
	ActiveTasks       int64                         `json:"activeTasks"`
	SystemStatus      string                        `json:"systemStatus"`
	Activities        []ActivityItem                `json:"activities"`
	RecentAssessments []repository.RecentAssessment `json:"recentAssessments"`
}

// DashboardCharts carries the raw series together with ready-to-render
// ECharts options for the same data.
type DashboardCharts struct {
	Trend        []repository.TimelineDataPoint `json:"trend"`
	Distribution []repository.DistributionPoint `json:"distribution"`
	TrendChart   map[string]interface{}         `json:"trendChart"`
	StatusChart  map[string]interface{}         `json:"statusChart"`
}

type DashboardService struct {
	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	assessments *repository.AssessmentRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewDashboardService(users *repository.UserRepository, tasks *repository.TaskRepository,
	assessments *repository.AssessmentRepository, log *zap.Logger) *DashboardService {
	return &DashboardService{users: users, tasks: tasks, assessments: assessments, log: log, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	active, err := s.tasks.CountByStatus(ctx, models.TaskPending)
	if err != nil {
		return nil, err
	}

	recentTasks, err := s.tasks.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	activities := make([]ActivityItem, 0, len(recentTasks))
	for _, t := range recentTasks {
		activities = append(activities, ActivityItem{
			Title: fmt.Sprintf("Task assigned to %s", t.Username),
			Time:  t.AssignedAt,
		})
	}

	recent, err := s.assessments.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []repository.RecentAssessment{}
	}

	return &DashboardStats{
		TotalUsers:        totalUsers,
		ActiveTasks:       active,
		SystemStatus:      "Healthy",
		Activities:        activities,
		RecentAssessments: recent,
	}, nil
}

func (s *DashboardService) Charts(ctx context.Context) (*DashboardCharts, error) {
	trend, err := s.assessments.SubmissionTimeline(ctx, s.now(), trendDays)
	if err != nil {
		return nil, err
	}
	dist, err := s.tasks.StatusDistribution(ctx)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		dist = []repository.DistributionPoint{}
	}
	return &DashboardCharts{
		Trend:        trend,
		Distribution: dist,
		TrendChart:   trendChart(trend).JSON(),
		StatusChart:  statusChart(dist).JSON(),
	}, nil
}

func trendChart(data []repository.TimelineDataPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Assessments",
			Subtitle: "Last 7 days",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(data))
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		labels = append(labels, point.Date)
		items = append(items, opts.LineData{Value: point.Value})
	}

	line.SetXAxis(labels).
		AddSeries("Submissions", items).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
		)
	line.Validate()
	return line
}

func statusChart(data []repository.DistributionPoint) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Task Status"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	items := make([]opts.PieData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.PieData{Name: point.Name, Value: point.Value})
	}
	pie.AddSeries("Tasks", items).
		SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
	pie.Validate()
	return pie
}

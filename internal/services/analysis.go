package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"velum-go/internal/models"
	"velum-go/internal/repository"

	"go.uber.org/zap"
)

// Fixed leading columns of an export.
const (
	ExportColumnUser   = "User"
	ExportColumnDate   = "Date"
	ExportColumnScore  = "Score"
	ExportColumnResult = "Result"
)

const analysisSystemPrompt = "You are a clinical psychologist. Write a brief, careful interpretation of an assessment result and a practical recommendation. Do not diagnose."

// OverallStats summarizes assessments of non-admin users.
type OverallStats struct {
	TotalAssessments   int64                          `json:"totalAssessments"`
	TotalUsers         int64                          `json:"totalUsers"`
	QuestionnaireStats []repository.QuestionnaireStat `json:"questionnaireStats"`
}

// UserHistory is one user's assessment history, newest first.
type UserHistory struct {
	UserID   int                        `json:"userId"`
	Username string                     `json:"username"`
	History  []models.AssessmentSummary `json:"history"`
}

// ExportTable is a wide projection of a questionnaire's assessments: one row
// per record, one column per question.
type ExportTable struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

type AnalysisService struct {
	assessments    *repository.AssessmentRepository
	users          *repository.UserRepository
	questionnaires *repository.QuestionnaireRepository
	ai             Assistant
	logs           *LogService
	log            *zap.Logger
}

func NewAnalysisService(assessments *repository.AssessmentRepository, users *repository.UserRepository,
	questionnaires *repository.QuestionnaireRepository, ai Assistant, logs *LogService, log *zap.Logger) *AnalysisService {
	return &AnalysisService{
		assessments:    assessments,
		users:          users,
		questionnaires: questionnaires,
		ai:             ai,
		logs:           logs,
		log:            log,
	}
}

func (s *AnalysisService) OverallStats(ctx context.Context) (*OverallStats, error) {
	total, err := s.assessments.CountNonAdmin(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	stats, err := s.assessments.StatsByQuestionnaire(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []repository.QuestionnaireStat{}
	}
	return &OverallStats{TotalAssessments: total, TotalUsers: users, QuestionnaireStats: stats}, nil
}

func (s *AnalysisService) UserHistory(ctx context.Context, userID int) (*UserHistory, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.assessments.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.AssessmentSummary{}
	}
	return &UserHistory{UserID: user.ID, Username: user.Username, History: history}, nil
}

// ExportRows projects every assessment of the questionnaire onto the fixed
// columns plus one column per question in template order. Answers are
// matched by question id; anything missing or unreadable is left blank.
func (s *AnalysisService) ExportRows(ctx context.Context, questionnaireID int) (*ExportTable, error) {
	q, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	questions := q.QuestionList()
	labels := questionColumns(questions)

	sources, err := s.assessments.ListForExport(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	table := &ExportTable{
		Columns: append([]string{ExportColumnUser, ExportColumnDate, ExportColumnScore, ExportColumnResult}, labels...),
		Rows:    make([]map[string]string, 0, len(sources)),
	}
	for _, src := range sources {
		row := make(map[string]string, len(table.Columns))
		row[ExportColumnUser] = src.Username
		row[ExportColumnDate] = src.Date.UTC().Format(time.RFC3339)
		row[ExportColumnScore] = strconv.Itoa(src.Score)
		row[ExportColumnResult] = src.Result

		var answers map[string]json.RawMessage
		if err := json.Unmarshal(src.Answers, &answers); err != nil {
			s.log.Debug("Unreadable answers in export", zap.Int("assessmentID", src.ID), zap.Error(err))
			answers = nil
		}
		for i, question := range questions {
			cell := ""
			if raw, ok := answers[strconv.Itoa(question.ID)]; ok {
				cell = models.DecodeAnswer(raw).CellText()
			}
			row[labels[i]] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// questionColumns labels each question by its text. Repeated texts get the
// question id appended so no two columns share a name.
func questionColumns(questions []models.Question) []string {
	counts := make(map[string]int, len(questions))
	for _, q := range questions {
		counts[q.Text]++
	}
	taken := map[string]bool{
		ExportColumnUser:   true,
		ExportColumnDate:   true,
		ExportColumnScore:  true,
		ExportColumnResult: true,
	}
	labels := make([]string, len(questions))
	for i, q := range questions {
		label := q.Text
		if counts[q.Text] > 1 || taken[label] {
			label = fmt.Sprintf("%s (Q%d)", q.Text, q.ID)
		}
		taken[label] = true
		labels[i] = label
	}
	return labels
}

// ExportCSV renders ExportRows as CSV with a header line.
func (s *AnalysisService) ExportCSV(ctx context.Context, questionnaireID int) ([]byte, error) {
	table, err := s.ExportRows(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, err
	}
	for _, row := range table.Rows {
		rec := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func analysisPrompt(c *repository.AnalysisCandidate) string {
	var b strings.Builder
	b.WriteString("Analyze the following psychological assessment result:\n")
	fmt.Fprintf(&b, "User: %s\n", c.Username)
	fmt.Fprintf(&b, "Scale: %s\n", c.QuestionnaireTitle)
	fmt.Fprintf(&b, "Score: %d\n", c.Score)
	fmt.Fprintf(&b, "Result Summary: %s\n", c.Result)
	if guide := strings.TrimSpace(c.InterpretationGuide); guide != "" {
		fmt.Fprintf(&b, "Interpretation Guide:\n%s\n", guide)
	}
	b.WriteString("\nProvide a brief psychological interpretation and recommendation.")
	return b.String()
}

func (s *AnalysisService) analyze(ctx context.Context, c *repository.AnalysisCandidate) (string, error) {
	reply, err := s.ai.Complete(ctx, []ChatMessage{
		{Role: models.ChatRoleSystem, Content: analysisSystemPrompt},
		{Role: models.ChatRoleUser, Content: analysisPrompt(c)},
	})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty analysis", models.ErrAIBadResponse)
	}
	if err := s.assessments.SetAnalysis(ctx, c.ID, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// AnalyzeAssessment generates and stores the narrative for one record. On an
// AI failure the record is left untouched.
func (s *AnalysisService) AnalyzeAssessment(ctx context.Context, actor *Actor, assessmentID int) (string, error) {
	c, err := s.assessments.Candidate(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	analysis, err := s.analyze(ctx, c)
	if err != nil {
		s.log.Warn("Assessment analysis failed", zap.Int("assessmentID", assessmentID), zap.Error(err))
		return "", err
	}
	s.logs.Info(ctx, actor, "AnalyzeAssessment", fmt.Sprintf("Assessment:%d", assessmentID), "AI analysis generated")
	return analysis, nil
}

// RunBatch analyzes up to limit committed records that have no analysis yet.
// Each record is saved on its own. A failure is logged and counted against
// the record, which moves it behind fresh records on the next run. It
// returns the number of records analyzed.
func (s *AnalysisService) RunBatch(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 5
	}
	pending, err := s.assessments.PendingAnalysis(ctx, limit)
	if err != nil {
		return 0, err
	}

	done := 0
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.analyze(ctx, &pending[i]); err != nil {
			s.log.Warn("Skipping assessment in analysis batch",
				zap.Int("assessmentID", pending[i].ID),
				zap.Error(err),
			)
			if ctx.Err() == nil {
				if rerr := s.assessments.RecordAnalysisFailure(ctx, pending[i].ID); rerr != nil {
					s.log.Error("Failed to record analysis failure", zap.Int("assessmentID", pending[i].ID), zap.Error(rerr))
				}
			}
			continue
		}
		done++
	}
	if done > 0 {
		s.log.Info("Analysis batch finished", zap.Int("analyzed", done), zap.Int("pending", len(pending)))
	}
	return done, nil
}

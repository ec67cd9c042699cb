package service

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	sessionModel "sfformation_backend/internals/features/sessions/model"
	stepModel "sfformation_backend/internals/features/steps/model"
	submissionModel "sfformation_backend/internals/features/submissions/model"
)

type SatisfactionFilter struct {
	FormationID *uuid.UUID
	SessionID   *uuid.UUID
}

type SatisfactionSession struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"nom"`
	FormationID   uuid.UUID `json:"formation_id"`
	FormationName string    `json:"formation_nom"`
}

type SatisfactionStats struct {
	TotalInvited   int `json:"total_invited"`
	TotalResponded int `json:"total_responded"`
	ResponseRate   int `json:"response_rate"`
	SessionsCount  int `json:"sessions_count"`
}

type ValueCount struct {
	Value      string      `json:"value"`
	Count      int         `json:"count"`
	SessionIDs []uuid.UUID `json:"session_ids"`
}

type TextResponse struct {
	Value        string    `json:"value"`
	SessionName  string    `json:"session_nom"`
	EnrollmentID uuid.UUID `json:"inscription_id"`
}

type QuestionStats struct {
	ID             uuid.UUID                 `json:"id"`
	FormationID    uuid.UUID                 `json:"formation_id"`
	Order          int                       `json:"ordre"`
	Label          string                    `json:"libelle"`
	AnswerKind     formationModel.AnswerKind `json:"type_reponse"`
	Options        datatypes.JSON            `json:"options"`
	TotalResponses int                       `json:"total_responses"`
	Distribution   []ValueCount              `json:"distribution"`
	TextResponses  []TextResponse            `json:"text_responses"`
}

type RawResponse struct {
	QuestionID    uuid.UUID `json:"question_id"`
	QuestionLabel string    `json:"question_libelle"`
	EnrollmentID  uuid.UUID `json:"inscription_id"`
	SessionID     uuid.UUID `json:"session_id"`
	SessionName   string    `json:"session_nom"`
	Value         string    `json:"valeur"`
}

type SatisfactionReport struct {
	Formations          []formationModel.FormationModel `json:"formations"`
	Sessions            []SatisfactionSession           `json:"sessions"`
	Stats               SatisfactionStats               `json:"stats"`
	ResponsesByQuestion []QuestionStats                 `json:"responses_by_question"`
	RawResponses        []RawResponse                   `json:"raw_responses"`
}

// BuildSatisfactionReport aggregates the satisfaction survey over the sessions
// that triggered it, narrowed by the filter.
func BuildSatisfactionReport(ctx context.Context, db *gorm.DB, f SatisfactionFilter) (*SatisfactionReport, error) {
	db = db.WithContext(ctx)
	rep := &SatisfactionReport{
		Formations:          []formationModel.FormationModel{},
		Sessions:            []SatisfactionSession{},
		ResponsesByQuestion: []QuestionStats{},
		RawResponses:        []RawResponse{},
	}
	if err := db.Order("formation_name ASC").Find(&rep.Formations).Error; err != nil {
		return nil, err
	}

	var triggered []uuid.UUID
	if err := db.Model(&stepModel.TriggerModel{}).
		Where("trigger_step_type = ?", stepModel.StepSatisfaction).
		Distinct().Pluck("trigger_session_id", &triggered).Error; err != nil {
		return nil, err
	}
	if len(triggered) == 0 {
		return rep, nil
	}

	q := db.Preload("Formation").Where("session_id IN ?", triggered)
	if f.FormationID != nil {
		q = q.Where("session_formation_id = ?", *f.FormationID)
	}
	if f.SessionID != nil {
		q = q.Where("session_id = ?", *f.SessionID)
	}
	var sessions []sessionModel.SessionModel
	if err := q.Order("session_created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	sessionByID := make(map[uuid.UUID]sessionModel.SessionModel, len(sessions))
	sessionIDs := make([]uuid.UUID, 0, len(sessions))
	formationSet := map[uuid.UUID]struct{}{}
	for _, s := range sessions {
		sessionByID[s.SessionID] = s
		sessionIDs = append(sessionIDs, s.SessionID)
		formationSet[s.SessionFormationID] = struct{}{}
		row := SatisfactionSession{ID: s.SessionID, Name: s.SessionName, FormationID: s.SessionFormationID}
		if s.Formation != nil {
			row.FormationName = s.Formation.FormationName
		}
		rep.Sessions = append(rep.Sessions, row)
	}
	rep.Stats.SessionsCount = len(sessionIDs)
	if len(sessionIDs) == 0 {
		return rep, nil
	}

	var enrollments []sessionModel.EnrollmentModel
	if err := db.Where("enrollment_session_id IN ?", sessionIDs).Find(&enrollments).Error; err != nil {
		return nil, err
	}
	sessionOf := make(map[uuid.UUID]uuid.UUID, len(enrollments))
	enrollmentIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		sessionOf[e.EnrollmentID] = e.EnrollmentSessionID
		enrollmentIDs = append(enrollmentIDs, e.EnrollmentID)
	}
	rep.Stats.TotalInvited = len(enrollmentIDs)

	if len(enrollmentIDs) > 0 {
		var responded int64
		if err := db.Model(&stepModel.CompletionModel{}).
			Where("completion_step_type = ? AND completion_enrollment_id IN ?", stepModel.StepSatisfaction, enrollmentIDs).
			Count(&responded).Error; err != nil {
			return nil, err
		}
		rep.Stats.TotalResponded = int(responded)
		rep.Stats.ResponseRate = int(math.Round(float64(responded) / float64(len(enrollmentIDs)) * 100))
	}

	formationIDs := make([]uuid.UUID, 0, len(formationSet))
	for id := range formationSet {
		formationIDs = append(formationIDs, id)
	}
	var questions []formationModel.QuestionModel
	if err := db.Where("question_document_type = ? AND question_formation_id IN ?", stepModel.DocSatisfaction, formationIDs).
		Order("question_order ASC, question_created_at ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 || len(enrollmentIDs) == 0 {
		for _, qu := range questions {
			rep.ResponsesByQuestion = append(rep.ResponsesByQuestion, newQuestionStats(qu))
		}
		return rep, nil
	}

	questionIDs := make([]uuid.UUID, 0, len(questions))
	for _, qu := range questions {
		questionIDs = append(questionIDs, qu.QuestionID)
	}
	var responses []submissionModel.ResponseModel
	if err := db.Where("response_question_id IN ? AND response_enrollment_id IN ?", questionIDs, enrollmentIDs).
		Order("response_created_at ASC, response_id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	byQuestion := make(map[uuid.UUID][]submissionModel.ResponseModel, len(questions))
	for _, r := range responses {
		byQuestion[r.ResponseQuestionID] = append(byQuestion[r.ResponseQuestionID], r)
	}
	sessionName := func(enrollmentID uuid.UUID) string {
		if s, ok := sessionByID[sessionOf[enrollmentID]]; ok {
			return s.SessionName
		}
		return ""
	}

	labels := make(map[uuid.UUID]string, len(questions))
	for _, qu := range questions {
		labels[qu.QuestionID] = qu.QuestionLabel
		stats := newQuestionStats(qu)
		rs := byQuestion[qu.QuestionID]
		stats.TotalResponses = len(rs)
		if qu.QuestionAnswerKind == formationModel.AnswerFreeText {
			for _, r := range rs {
				v := responseValue(r)
				if strings.TrimSpace(v) == "" {
					continue
				}
				stats.TextResponses = append(stats.TextResponses, TextResponse{
					Value:        v,
					SessionName:  orDash(sessionName(r.ResponseEnrollmentID)),
					EnrollmentID: r.ResponseEnrollmentID,
				})
			}
		} else {
			stats.Distribution = distribution(rs, sessionOf)
		}
		rep.ResponsesByQuestion = append(rep.ResponsesByQuestion, stats)
	}
	sort.SliceStable(rep.ResponsesByQuestion, func(i, j int) bool {
		return rep.ResponsesByQuestion[i].Order < rep.ResponsesByQuestion[j].Order
	})

	for _, r := range responses {
		rep.RawResponses = append(rep.RawResponses, RawResponse{
			QuestionID:    r.ResponseQuestionID,
			QuestionLabel: labels[r.ResponseQuestionID],
			EnrollmentID:  r.ResponseEnrollmentID,
			SessionID:     sessionOf[r.ResponseEnrollmentID],
			SessionName:   sessionName(r.ResponseEnrollmentID),
			Value:         responseValue(r),
		})
	}
	return rep, nil
}

func newQuestionStats(q formationModel.QuestionModel) QuestionStats {
	return QuestionStats{
		ID:            q.QuestionID,
		FormationID:   q.QuestionFormationID,
		Order:         q.QuestionOrder,
		Label:         q.QuestionLabel,
		AnswerKind:    q.QuestionAnswerKind,
		Options:       q.QuestionOptions,
		Distribution:  []ValueCount{},
		TextResponses: []TextResponse{},
	}
}

// distribution counts values in first-seen order, then sorts by count desc.
func distribution(rs []submissionModel.ResponseModel, sessionOf map[uuid.UUID]uuid.UUID) []ValueCount {
	out := []ValueCount{}
	index := map[string]int{}
	seen := map[string]map[uuid.UUID]struct{}{}
	for _, r := range rs {
		v := responseValue(r)
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, ValueCount{Value: v, SessionIDs: []uuid.UUID{}})
			seen[v] = map[uuid.UUID]struct{}{}
		}
		out[i].Count++
		if sid, ok := sessionOf[r.ResponseEnrollmentID]; ok {
			if _, dup := seen[v][sid]; !dup {
				seen[v][sid] = struct{}{}
				out[i].SessionIDs = append(out[i].SessionIDs, sid)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func responseValue(r submissionModel.ResponseModel) string {
	if r.ResponseValue != nil {
		return *r.ResponseValue
	}
	if len(r.ResponseValueJSON) > 0 && string(r.ResponseValueJSON) != "null" {
		return string(r.ResponseValueJSON)
	}
	return ""
}

// WriteSatisfactionCSV writes the raw responses as a ';'-separated CSV
// prefixed with a UTF-8 BOM.
func WriteSatisfactionCSV(w io.Writer, rows []RawResponse) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"session", "session_id", "inscription_id", "question", "valeur"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.SessionName,
			r.SessionID.String(),
			r.EnrollmentID.String(),
			r.QuestionLabel,
			r.Value,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	formationService "sfformation_backend/internals/features/formations/service"
	sessionModel "sfformation_backend/internals/features/sessions/model"
	sessionService "sfformation_backend/internals/features/sessions/service"
	stepModel "sfformation_backend/internals/features/steps/model"
	submissionService "sfformation_backend/internals/features/submissions/service"
)

type DossierDocument struct {
	Document  formationModel.FormationDocumentModel `json:"document"`
	Questions []submissionService.QuestionAnswer    `json:"questions"`
}

// Dossier is the QUALIOPI record of one enrollment.
type Dossier struct {
	Enrollment    *sessionModel.EnrollmentModel         `json:"inscription"`
	TraineeName   string                                `json:"stagiaire_nom"`
	SessionName   string                                `json:"session_nom"`
	FormationName string                                `json:"formation_nom"`
	Documents     []DossierDocument                     `json:"documents"`
	Signatures    []submissionService.SignatureWithSlot `json:"emargements"`
	Completions   []stepModel.CompletionModel           `json:"step_completions"`
}

// LoadDossier gathers documents, answers, signatures and completions of an
// enrollment. Independent reads run concurrently.
func LoadDossier(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*Dossier, error) {
	enrollment, err := sessionService.GetEnrollment(ctx, db, enrollmentID)
	if err != nil {
		return nil, err
	}
	d := &Dossier{Enrollment: enrollment}
	if enrollment.Trainee != nil {
		d.TraineeName = enrollment.Trainee.FullName()
	}
	var formationID uuid.UUID
	if s := enrollment.Session; s != nil {
		d.SessionName = s.SessionName
		formationID = s.SessionFormationID
		if s.Formation != nil {
			d.FormationName = s.Formation.FormationName
		}
	}

	docs, err := formationService.ListDocuments(ctx, db, formationID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		docs = formationModel.DefaultDocuments(formationID)
	}
	d.Documents = make([]DossierDocument, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	for i := range docs {
		i := i
		d.Documents[i].Document = docs[i]
		g.Go(func() error {
			qs, err := submissionService.QuestionsWithAnswers(gctx, db, formationID, docs[i].FormationDocumentType, enrollmentID)
			if err != nil {
				return err
			}
			d.Documents[i].Questions = qs
			return nil
		})
	}
	g.Go(func() error {
		sigs, err := submissionService.ListSignatures(gctx, db, enrollmentID)
		d.Signatures = sigs
		return err
	})
	g.Go(func() error {
		var rows []stepModel.CompletionModel
		err := db.WithContext(gctx).
			Where("completion_enrollment_id = ?", enrollmentID).
			Order("completion_completed_at ASC, completion_id ASC").
			Find(&rows).Error
		d.Completions = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

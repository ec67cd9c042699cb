package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

/* =========================================================
   StepType: the six workflow milestones of a session
   ========================================================= */

type StepType string

const (
	StepPreTest      StepType = "test_pre"
	StepSignIn       StepType = "emargement"
	StepMidTest      StepType = "points_cles"
	StepFinalTest    StepType = "test_fin"
	StepSatisfaction StepType = "enquete_satisfaction"
	StepFinalReview  StepType = "bilan_final"
)

// StepTypes lists every step in workflow order.
var StepTypes = []StepType{
	StepPreTest,
	StepSignIn,
	StepMidTest,
	StepFinalTest,
	StepSatisfaction,
	StepFinalReview,
}

var ErrInvalidStepType = fmt.Errorf("step_type invalide")

func ParseStepType(s string) (StepType, error) {
	st := StepType(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStepType, s)
	}
	return st, nil
}

func (s StepType) Valid() bool {
	switch s {
	case StepPreTest, StepSignIn, StepMidTest, StepFinalTest, StepSatisfaction, StepFinalReview:
		return true
	}
	return false
}

func (s StepType) IsSignIn() bool { return s == StepSignIn }

// DocumentType maps a step to its questionnaire; sign-in has none.
func (s StepType) DocumentType() (DocumentType, bool) {
	switch s {
	case StepPreTest:
		return DocPreTest, true
	case StepMidTest:
		return DocMidTest, true
	case StepFinalTest:
		return DocFinalTest, true
	case StepSatisfaction:
		return DocSatisfaction, true
	case StepFinalReview:
		return DocFinalReview, true
	case StepSignIn:
		return "", false
	}
	return "", false
}

func (s StepType) Label() string {
	switch s {
	case StepPreTest:
		return "Test de pré-formation"
	case StepSignIn:
		return "Émargement"
	case StepMidTest:
		return "Test Points clés"
	case StepFinalTest:
		return "Test de fin de formation"
	case StepSatisfaction:
		return "Enquête de satisfaction"
	case StepFinalReview:
		return "Bilan final"
	}
	return string(s)
}

func (s StepType) String() string { return string(s) }

func (s *StepType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStepType(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s StepType) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStepType, string(s))
	}
	return string(s), nil
}

func (s *StepType) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	st, err := ParseStepType(str)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

/* =========================================================
   DocumentType: questionnaire-bearing steps (sign-in excluded)
   ========================================================= */

type DocumentType string

const (
	DocPreTest      DocumentType = "test_pre"
	DocMidTest      DocumentType = "points_cles"
	DocFinalTest    DocumentType = "test_fin"
	DocSatisfaction DocumentType = "enquete_satisfaction"
	DocFinalReview  DocumentType = "bilan_final"
)

var DocumentTypes = []DocumentType{
	DocPreTest,
	DocMidTest,
	DocFinalTest,
	DocSatisfaction,
	DocFinalReview,
}

var ErrInvalidDocumentType = fmt.Errorf("document_type invalide")

func ParseDocumentType(s string) (DocumentType, error) {
	dt := DocumentType(strings.TrimSpace(s))
	if !dt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
	}
	return dt, nil
}

func (d DocumentType) Valid() bool {
	switch d {
	case DocPreTest, DocMidTest, DocFinalTest, DocSatisfaction, DocFinalReview:
		return true
	}
	return false
}

func (d DocumentType) StepType() StepType {
	switch d {
	case DocPreTest:
		return StepPreTest
	case DocMidTest:
		return StepMidTest
	case DocFinalTest:
		return StepFinalTest
	case DocSatisfaction:
		return StepSatisfaction
	case DocFinalReview:
		return StepFinalReview
	}
	return ""
}

// Label is the default display name of the document.
func (d DocumentType) Label() string { return d.StepType().Label() }

// DefaultOrder is the 1-based position used when seeding formation documents.
func (d DocumentType) DefaultOrder() int {
	for i, v := range DocumentTypes {
		if v == d {
			return i + 1
		}
	}
	return 0
}

func (d DocumentType) String() string { return string(d) }

func (d *DocumentType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	dt, err := ParseDocumentType(raw)
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

func (d DocumentType) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentType, string(d))
	}
	return string(d), nil
}

func (d *DocumentType) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	dt, err := ParseDocumentType(str)
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("valeur vide")
	}
	return "", fmt.Errorf("type non supporté: %T", src)
}

package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	stepModel "sfformation_backend/internals/features/steps/model"
	submissionService "sfformation_backend/internals/features/submissions/service"
	helper "sfformation_backend/internals/helpers"
)

// PDF sections besides the five questionnaires.
const (
	SectionNeedsAnalysis = "analyse_besoins"
	SectionSignIn        = "emargement"
)

const (
	pdfMargin          = 15.0
	pdfLine            = 5.5
	signatureImgHeight = 18.0
)

// ValidSection accepts "", the two fixed sections and every document type.
func ValidSection(section string) bool {
	switch section {
	case "", SectionNeedsAnalysis, SectionSignIn:
		return true
	}
	_, err := stepModel.ParseDocumentType(section)
	return err == nil
}

// RenderDossierPDF writes the dossier as an A4 PDF. An empty section renders
// everything; otherwise only the named part.
func RenderDossierPDF(d *Dossier, section string, w io.Writer) error {
	if !ValidSection(section) {
		return helper.NewValidationError("document invalide")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Dossier QUALIOPI - "+d.TraineeName, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	heading := func(s string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, tr(s), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
	}
	text := func(s string) { pdf.MultiCell(0, pdfLine, tr(s), "", "L", false) }

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "SF FORMATION", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	text("Document QUALIOPI")
	text("Session : " + orDash(d.SessionName))
	text("Formation : " + orDash(d.FormationName))
	text("Stagiaire : " + orDash(d.TraineeName))

	if section == "" || section == SectionNeedsAnalysis {
		heading("Analyse des besoins de la formation")
		needs := ""
		if d.Enrollment != nil && d.Enrollment.EnrollmentNeedsAnalysis != nil {
			needs = *d.Enrollment.EnrollmentNeedsAnalysis
		}
		text(orDash(strings.TrimSpace(needs)))
	}

	for _, doc := range d.Documents {
		dt := string(doc.Document.FormationDocumentType)
		if section != "" && section != dt {
			continue
		}
		heading(doc.Document.FormationDocumentDisplayName)
		if len(doc.Questions) == 0 {
			text("Aucune question.")
		}
		for _, qa := range doc.Questions {
			pdf.SetFont("Helvetica", "B", 10)
			text(qa.QuestionLabel)
			pdf.SetFont("Helvetica", "", 10)
			text(AnswerText(qa))
			pdf.Ln(1)
		}
	}

	if section == "" || section == SectionSignIn {
		heading("Feuille d'émargement")
		if len(d.Signatures) == 0 {
			text("Aucun émargement enregistré.")
		}
		for i, s := range d.Signatures {
			text(fmt.Sprintf("Créneau %d : %s", s.SlotOrder, s.SignatureSignedAt.Format("02/01/2006 15:04:05")))
			if err := drawSignature(pdf, fmt.Sprintf("sig-%d", i), s); err != nil {
				text("(signature illisible)")
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawSignature(pdf *fpdf.Fpdf, name string, s submissionService.SignatureWithSlot) error {
	img, err := submissionService.DecodeSignatureImage(s.SignatureData)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return err
	}
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+signatureImgHeight > pageH-pdfMargin {
		pdf.AddPage()
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, pdfMargin, pdf.GetY(), 0, signatureImgHeight, false, opts, 0, "")
	pdf.Ln(signatureImgHeight + 2)
	return nil
}

// AnswerText is the printable form of an answer: the scalar value, else the
// raw JSON, else a dash.
func AnswerText(qa submissionService.QuestionAnswer) string {
	r := qa.Response
	if r == nil {
		return "-"
	}
	if r.ResponseValue != nil && strings.TrimSpace(*r.ResponseValue) != "" {
		return *r.ResponseValue
	}
	if len(r.ResponseValueJSON) > 0 && string(r.ResponseValueJSON) != "null" {
		return string(r.ResponseValueJSON)
	}
	return "-"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

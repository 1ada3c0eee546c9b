package services

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
)

type TextExtractor interface {
	Extract(content []byte, docType models.DocumentType) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract implements TextExtractor. Unreadable documents and documents without text are validation errors.
func (p *textExtractor) Extract(content []byte, docType models.DocumentType) (string, error) {
	var (
		text string
		err  error
	)

	switch docType {
	case models.DocumentTypePDF:
		text, err = p.extractPDF(content)
	case models.DocumentTypeDOCX:
		text, err = p.extractDOCX(content)
	default:
		return "", apperror.Validationf("unsupported file type: %s", docType)
	}
	if err != nil {
		return "", apperror.New(apperror.CodeValidation,
			fmt.Sprintf("could not read %s document", docType), apperror.ErrValidation, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", apperror.Validationf("no text content found in %s document", docType)
	}
	return text, nil
}

func (p *textExtractor) extractPDF(content []byte) (text string, err error) {
	// the pdf reader panics on some truncated xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func (p *textExtractor) extractDOCX(content []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	return text, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

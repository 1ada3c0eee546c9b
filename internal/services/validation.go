package services

import (
	"bytes"
	"mime"
	"strings"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
)

var allowedMIMETypes = map[models.DocumentType][]string{
	models.DocumentTypePDF: {
		"application/pdf",
		"application/x-pdf",
	},
	models.DocumentTypeDOCX: {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
	},
}

var magicBytes = map[models.DocumentType][]byte{
	models.DocumentTypePDF:  []byte("%PDF-"),
	models.DocumentTypeDOCX: []byte("PK\x03\x04"),
}

// UploadInput is one file received by the ingestion endpoint.
type UploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ValidateUpload checks name, declared type, content signature and size. It makes no external calls.
func ValidateUpload(in UploadInput, maxSize int64) (models.DocumentType, error) {
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return "", apperror.Validation("filename is required")
	}

	docType := models.DocumentTypeFromFilename(filename)
	if docType == "" {
		return "", apperror.Validationf("unsupported file type: %s (only PDF and DOCX files are supported)", extensionOf(filename))
	}

	if declared := declaredMediaType(in.ContentType); declared != "" && declared != "application/octet-stream" {
		if !contains(allowedMIMETypes[docType], declared) {
			return "", apperror.Validationf("unsupported file type: %s does not match .%s", declared, docType)
		}
	}

	size := int64(len(in.Content))
	if size == 0 {
		return "", apperror.Validation("file is empty")
	}
	if size > maxSize {
		return "", apperror.Validationf("file too large: %d bytes exceeds the %d byte limit", size, maxSize)
	}

	if !bytes.HasPrefix(in.Content, magicBytes[docType]) {
		return "", apperror.Validationf("unsupported file type: content is not a valid %s file", strings.ToUpper(string(docType)))
	}

	return docType, nil
}

// ContentTypeFor returns the canonical MIME type stored for a document type.
func ContentTypeFor(docType models.DocumentType) string {
	return allowedMIMETypes[docType][0]
}

func declaredMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "none"
	}
	return strings.ToLower(filename[idx+1:])
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

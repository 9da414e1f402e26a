package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github/devansh/notebook-rag/models"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
}

// ExtractDocumentsFromFile reads a file and returns one or more Documents.
// PDFs yield one Document per page; every other supported type yields a
// single UTF-8 text Document.
func ExtractDocumentsFromFile(path string) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md", ".json", ".py", ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []models.Document{{
			PageContent: string(content),
			Metadata: map[string]interface{}{
				models.MetaSource: filepath.Base(path),
				models.MetaKind:   models.SourceKindLocal,
			},
		}}, nil
	case ".pdf":
		return extractDocumentsFromPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// extractDocumentsFromPDF uses UniPDF to turn each page into a Document.
func extractDocumentsFromPDF(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		docs = append(docs, models.Document{
			PageContent: text,
			Metadata: map[string]interface{}{
				models.MetaSource: filepath.Base(path),
				models.MetaKind:   models.SourceKindLocal,
				models.MetaPage:   i,
			},
		})
	}

	return docs, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".txt", ".md", ".json", ".py", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

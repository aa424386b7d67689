package services

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type TextExtractorService interface {
	ExtractText(data []byte, extension string) (*ExtractedText, error)
}

// ExtractedText is the cleaned résumé text plus extraction stats reported
// back to the caller. Truncation to MaxTextLength is silent but visible here.
type ExtractedText struct {
	Text       string
	TextLength int
	PageCount  int
	Truncated  bool
}

type textExtractorService struct {
	maxFileSize   int64
	maxPages      int
	maxTextLength int
	minTextLength int
}

func NewTextExtractorService(maxFileSize int64, maxPages, maxTextLength, minTextLength int) TextExtractorService {
	return &textExtractorService{
		maxFileSize:   maxFileSize,
		maxPages:      maxPages,
		maxTextLength: maxTextLength,
		minTextLength: minTextLength,
	}
}

var (
	markupTagPattern  = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExtractText implements TextExtractorService.
func (s *textExtractorService) ExtractText(data []byte, extension string) (*ExtractedText, error) {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ext != "pdf" && ext != "txt" {
		return nil, newClientError(CodeUnsupportedType, "unsupported file type %q: only PDF and TXT files are supported", extension)
	}

	if int64(len(data)) > s.maxFileSize {
		sizeMB := float64(len(data)) / (1024 * 1024)
		maxMB := float64(s.maxFileSize) / (1024 * 1024)
		return nil, newClientError(CodeFileTooLarge, "file too large (%.1fMB), maximum file size is %.0fMB", sizeMB, maxMB)
	}

	if len(data) == 0 {
		return nil, newClientError(CodeEmptyFile, "file is empty")
	}

	var (
		text      string
		pageCount int
		err       error
	)

	if ext == "pdf" {
		text, pageCount, err = s.extractPDF(data)
		if err != nil {
			return nil, err
		}
	} else {
		if !utf8.Valid(data) {
			return nil, newClientError(CodeInvalidEncoding, "TXT file must be UTF-8 encoded")
		}
		text = string(data)
	}

	text = cleanText(text)

	truncated := false
	if runes := []rune(text); len(runes) > s.maxTextLength {
		text = string(runes[:s.maxTextLength])
		truncated = true
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.minTextLength {
		return nil, newClientError(CodeInsufficientText,
			"could not extract sufficient text from file, please ensure the file contains readable text")
	}

	return &ExtractedText{
		Text:       text,
		TextLength: utf8.RuneCountInString(text),
		PageCount:  pageCount,
		Truncated:  truncated,
	}, nil
}

// extractPDF reads up to maxPages pages; later pages are ignored, not an
// error. The pdf library panics on some malformed cross-reference tables, so
// parsing is fenced with recover.
func (s *textExtractorService) extractPDF(data []byte) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			pageCount = 0
			err = newClientError(CodeExtractionFailed, "failed to parse PDF: %v", r)
		}
	}()

	reader, openErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if openErr != nil {
		return "", 0, newClientError(CodeExtractionFailed, "failed to parse PDF: %v", openErr)
	}

	totalPages := reader.NumPage()
	pages := totalPages
	if pages > s.maxPages {
		pages = s.maxPages
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= pages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// Skip unparseable pages, keep the rest
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text = textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", 0, newClientError(CodeExtractionFailed,
			"no extractable text found in PDF (scanned documents are not supported)")
	}

	return text, pages, nil
}

// cleanText strips residual markup tags and control characters, then
// collapses whitespace runs into single spaces.
func cleanText(text string) string {
	text = markupTagPattern.ReplaceAllString(text, " ")

	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)

	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

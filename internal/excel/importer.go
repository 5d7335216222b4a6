package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabquiz/pkg/models"
)

// ItemStore is the part of the item repository the importer writes to
type ItemStore interface {
	FindByPrompt(ctx context.Context, prompt string, categoryID *int64) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
}

// CategoryStore resolves category names to ids
type CategoryStore interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetOrCreate(ctx context.Context, name string) (int64, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	PromptColumn      string // Column with the prompt word
	TranslationColumn string // Column with the translation
	CategoryColumn    string // Column with the category, optional
	SheetName         string // Name of the sheet to import, first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		PromptColumn:      "A",
		TranslationColumn: "B",
		CategoryColumn:    "C",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed    int      `json:"total_processed"`
	CategoriesCreated int      `json:"categories_created"`
	Created           int      `json:"created"`
	Updated           int      `json:"updated"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors,omitempty"`
}

// Importer loads vocabulary items from spreadsheets
type Importer struct {
	items      ItemStore
	categories CategoryStore
	logger     *slog.Logger

	// lower-cased category name -> id
	categoryIDs map[string]int64
}

// NewImporter creates a new importer
func NewImporter(items ItemStore, categories CategoryStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{items: items, categories: categories, logger: logger}
}

// Import imports items from an Excel or CSV file. Rows that fail are reported
// in the result and do not stop the import.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	existing, err := im.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing categories: %w", err)
	}
	im.categoryIDs = make(map[string]int64, len(existing))
	for _, c := range existing {
		im.categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	var result *ImportResult
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		result, err = im.importFromCSV(ctx, config)
	} else {
		result, err = im.importFromExcel(ctx, config)
	}
	if err != nil {
		return nil, err
	}

	im.logger.Info("import finished",
		"file", config.FilePath,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

// importFromExcel imports items from an Excel file
func (im *Importer) importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		prompt := cell(row, config.PromptColumn)
		translation := cell(row, config.TranslationColumn)
		category := cell(row, config.CategoryColumn)
		if err := im.processRow(ctx, prompt, translation, category, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports items from a CSV file.
//
// A row holding only a prompt cell is a category header: the rows after it
// without their own category belong to it.
func (im *Importer) importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	currentCategory := ""
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		prompt := cell(row, config.PromptColumn)
		translation := cell(row, config.TranslationColumn)
		category := cell(row, config.CategoryColumn)

		if strings.TrimSpace(prompt) != "" && strings.TrimSpace(translation) == "" && strings.TrimSpace(category) == "" {
			currentCategory = strings.Trim(strings.TrimSpace(prompt), "\"")
			continue
		}
		if strings.TrimSpace(category) == "" {
			category = currentCategory
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, prompt, translation, category, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// processRow creates the item of a row, or updates the item with the same
// prompt in the same category
func (im *Importer) processRow(ctx context.Context, prompt, translation, categoryName string, result *ImportResult) error {
	prompt = cleanWord(prompt)
	translation = strings.TrimSpace(translation)
	categoryName = strings.TrimSpace(categoryName)

	if prompt == "" {
		result.Skipped++
		return nil
	}
	if translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	var categoryID *int64
	if categoryName != "" {
		id, err := im.categoryID(ctx, categoryName, result)
		if err != nil {
			return fmt.Errorf("failed to process category: %w", err)
		}
		categoryID = &id
	}

	existing, err := im.items.FindByPrompt(ctx, prompt, categoryID)
	if err != nil {
		return fmt.Errorf("failed to search for existing items: %w", err)
	}
	if existing != nil {
		if existing.Translation == translation {
			result.Skipped++
			return nil
		}
		existing.Translation = translation
		if err := im.items.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		result.Updated++
		return nil
	}

	item := &models.Item{Prompt: prompt, Translation: translation, CategoryID: categoryID}
	if err := im.items.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	result.Created++
	return nil
}

// categoryID gets a category by name or creates it
func (im *Importer) categoryID(ctx context.Context, name string, result *ImportResult) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := im.categoryIDs[key]; ok {
		return id, nil
	}

	id, err := im.categories.GetOrCreate(ctx, name)
	if err != nil {
		return 0, err
	}
	im.categoryIDs[key] = id
	result.CategoriesCreated++
	return id, nil
}

// cleanWord drops extra forms in parentheses, "go (went, gone)" becomes "go"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// cell returns the value in the lettered column of row, or "" when the column is unset or missing
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if i := columnToIndex(column); i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

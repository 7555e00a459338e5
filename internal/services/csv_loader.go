package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
)

// ParseCSV splits text into a header row and header-keyed records.
//
// A double quote toggles quoted state and is dropped; a comma outside quotes
// ends a field; fields are trimmed. Doubled quotes are not an escape.
// Blank data lines yield no record, and columns missing from a short row
// are set to "". Empty input yields headers [""] and no rows.
func ParseCSV(text string) *models.CourseTable {
	lines := strings.Split(text, "\n")

	headers := splitCSVLine(lines[0])
	table := &models.CourseTable{
		Headers: headers,
		Rows:    make([]models.CourseRecord, 0, len(lines)-1),
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitCSVLine(line)
		record := make(models.CourseRecord, len(headers))
		for i, header := range headers {
			if i < len(fields) {
				record[header] = fields[i]
			} else {
				record[header] = ""
			}
		}
		table.Rows = append(table.Rows, record)
	}

	return table
}

func splitCSVLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}

	return append(fields, strings.TrimSpace(field.String()))
}

// CourseCatalog loads the course and prerequisite CSVs from object storage.
type CourseCatalog interface {
	LoadCourses(ctx context.Context) (*models.CourseTable, error)
	LoadPrerequisites(ctx context.Context) (*models.CourseTable, error)
	Source() string
}

type courseCatalog struct {
	store            ObjectStore
	coursesKey       string
	prerequisitesKey string
	log              *zap.Logger
}

func NewCourseCatalog(store ObjectStore, coursesKey, prerequisitesKey string, log *zap.Logger) CourseCatalog {
	return &courseCatalog{
		store:            store,
		coursesKey:       coursesKey,
		prerequisitesKey: prerequisitesKey,
		log:              log,
	}
}

func (c *courseCatalog) LoadCourses(ctx context.Context) (*models.CourseTable, error) {
	return c.load(ctx, c.coursesKey)
}

func (c *courseCatalog) LoadPrerequisites(ctx context.Context) (*models.CourseTable, error) {
	return c.load(ctx, c.prerequisitesKey)
}

// Source is the locator of the course CSV, reported as the context source.
func (c *courseCatalog) Source() string {
	return c.store.Locator(c.coursesKey)
}

func (c *courseCatalog) load(ctx context.Context, key string) (*models.CourseTable, error) {
	c.log.Debug("Retrieving course data", zap.String("source", c.store.Locator(key)))

	text, err := c.store.GetText(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve %s: %w", c.store.Locator(key), err)
	}

	table := ParseCSV(text)
	c.log.Debug("Parsed course data",
		zap.String("key", key),
		zap.Int("columns", len(table.Headers)),
		zap.Int("rows", len(table.Rows)),
	)
	return table, nil
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// spreadsheetURLPattern extracts the document id from a full spreadsheet URL.
var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// client is the Google Sheets implementation of Backend.
type client struct {
	svc *sheetsapi.Service
}

// NewClient creates a Backend backed by the Google Sheets API. When
// credentialsFile is empty, application default credentials are used.
func NewClient(ctx context.Context, credentialsFile string) (Backend, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &client{svc: svc}, nil
}

// Open resolves a spreadsheet URL to a handle. The document is fetched once
// to verify it exists and to learn its worksheet titles.
func (c *client) Open(ctx context.Context, url string) (Spreadsheet, error) {
	m := spreadsheetURLPattern.FindStringSubmatch(url)
	if m == nil {
		return nil, fmt.Errorf("%w: cannot parse spreadsheet url %q", ErrSpreadsheetDoesNotExist, url)
	}
	id := m[1]

	doc, err := c.svc.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSpreadsheetDoesNotExist, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrSpreadsheetDoesNotExist, err)
	}

	titles := make(map[string]bool, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		titles[sh.Properties.Title] = true
	}
	log.Debug("Opened spreadsheet", "id", id, "worksheets", len(titles))
	return &spreadsheet{svc: c.svc, id: id, titles: titles}, nil
}

// spreadsheet is a handle on one opened document.
type spreadsheet struct {
	svc    *sheetsapi.Service
	id     string
	titles map[string]bool
}

func (s *spreadsheet) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	if !s.titles[title] {
		// The title cache is from open time; re-check before failing so a tab
		// added by an operator mid-run is still found.
		doc, err := s.svc.Spreadsheets.Get(s.id).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWorksheetRead, err)
		}
		for _, sh := range doc.Sheets {
			s.titles[sh.Properties.Title] = true
		}
		if !s.titles[title] {
			return nil, fmt.Errorf("%w: %s", ErrWorksheetDoesNotExist, title)
		}
	}
	return &worksheet{svc: s.svc, spreadsheetID: s.id, title: title}, nil
}

func (s *spreadsheet) CreateWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error) {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWorksheetCreate, title, err)
	}
	s.titles[title] = true
	log.Info("Created worksheet", "spreadsheet", s.id, "title", title)
	return &worksheet{svc: s.svc, spreadsheetID: s.id, title: title}, nil
}

// worksheet addresses one tab of a document by title.
type worksheet struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	title         string
}

func (w *worksheet) Title() string { return w.title }

func (w *worksheet) ReadAll(ctx context.Context) (Grid, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, quoteRange(w.title)).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorksheetDoesNotExist, w.title)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrWorksheetRead, w.title, err)
	}

	grid := make(Grid, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func (w *worksheet) OverwriteAll(ctx context.Context, grid Grid) error {
	// Clear first so rows beyond the new grid's length do not survive.
	_, err := w.svc.Spreadsheets.Values.Clear(w.spreadsheetID, quoteRange(w.title), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrWorksheetWrite, w.title, err)
	}

	values := make([][]interface{}, len(grid))
	for i, row := range grid {
		values[i] = toAnyRow(row)
	}
	vr := &sheetsapi.ValueRange{Values: values}
	_, err = w.svc.Spreadsheets.Values.Update(w.spreadsheetID, quoteRange(w.title), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrWorksheetWrite, w.title, err)
	}
	return nil
}

func (w *worksheet) Append(ctx context.Context, row []string) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{toAnyRow(row)}}
	_, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, quoteRange(w.title), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrWorksheetWrite, w.title, err)
	}
	return nil
}

func toAnyRow(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

// quoteRange wraps a worksheet title so titles with spaces form a valid A1 range.
func quoteRange(title string) string {
	return "'" + title + "'"
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 400
	}
	return false
}

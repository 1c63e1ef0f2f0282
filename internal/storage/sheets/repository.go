package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// Columns defines the header row of the history sheet
var Columns = []string{
	"Timestamp",
	"Title",
	"Score",
	"Hash",
	"LinkedIn URN",
	"LinkedIn URL",
	"Body",
}

// Config holds Google Sheets settings
type Config struct {
	SpreadsheetID      string
	SheetName          string
	CredentialsFile    string
	ServiceAccountJSON string
}

// Repository mirrors post history into a Google Sheet, one row per post
type Repository struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	log           *logger.Logger
}

// New creates a Sheets-backed history store. Extra client options are
// appended after the credentials option.
func New(ctx context.Context, cfg Config, log *logger.Logger, opts ...option.ClientOption) (*Repository, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	var clientOpts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	case len(opts) == 0:
		return nil, fmt.Errorf("no Google credentials provided: set credentials_file or service_account_json")
	}
	clientOpts = append(clientOpts, opts...)

	srv, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "History"
	}

	return &Repository{
		service:       srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		log:           log.WithComponent("history").WithStore("sheets"),
	}, nil
}

// Initialize creates the sheet and header row if they don't exist
func (r *Repository) Initialize(ctx context.Context) error {
	if err := r.ensureSheetExists(ctx); err != nil {
		return err
	}

	readRange := fmt.Sprintf("%s!A1:G1", r.sheetName)
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(resp.Values) > 0 {
		r.log.Debug().Msg("Sheet already has headers")
		return nil
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}

	_, err = r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.sheetName+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	r.log.Info().Msg("Sheet headers initialized")
	return nil
}

// ensureSheetExists creates the sheet tab if it doesn't exist
func (r *Repository) ensureSheetExists(ctx context.Context) error {
	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == r.sheetName {
			return nil
		}
	}

	r.log.Info().Str("sheet", r.sheetName).Msg("Creating new sheet")
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: r.sheetName}}},
		},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	return nil
}

// Append adds one row
func (r *Repository) Append(ctx context.Context, entry models.HistoryEntry) error {
	score := ""
	if entry.Score != nil {
		score = strconv.Itoa(*entry.Score)
	}
	url := ""
	if entry.PostURN != "" {
		url = "https://www.linkedin.com/feed/update/" + entry.PostURN
	}

	row := []interface{}{
		entry.Timestamp.Format(time.RFC3339),
		entry.Title,
		score,
		entry.Hash,
		entry.PostURN,
		url,
		entry.Body,
	}

	_, err := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.sheetName+"!A:G", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return &history.IOError{Op: "write", Backend: "sheets", Err: err}
	}

	r.log.Debug().Str("title", entry.Title).Msg("History row appended")
	return nil
}

// ReadRecent reads every data row and keeps the last n
func (r *Repository) ReadRecent(ctx context.Context, n int) ([]models.HistoryEntry, error) {
	readRange := fmt.Sprintf("%s!A2:G", r.sheetName)
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, &history.IOError{Op: "read", Backend: "sheets", Err: err}
	}

	entries := make([]models.HistoryEntry, 0, len(resp.Values))
	for i, row := range resp.Values {
		entry, ok := parseRow(row)
		if !ok {
			r.log.Warn().Int("row", i+2).Msg("Skipping malformed history row")
			continue
		}
		entries = append(entries, entry)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// Close is a no-op for the HTTP client
func (r *Repository) Close() error {
	return nil
}

func parseRow(row []interface{}) (models.HistoryEntry, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
		}
		return ""
	}

	ts, err := time.Parse(time.RFC3339, cell(0))
	if err != nil {
		return models.HistoryEntry{}, false
	}

	entry := models.HistoryEntry{
		Timestamp: ts,
		Title:     cell(1),
		Hash:      cell(3),
		PostURN:   cell(4),
		Body:      cell(6),
	}
	if s, err := strconv.Atoi(cell(2)); err == nil {
		entry.Score = models.IntPtr(s)
	}
	return entry, true
}

var _ history.Store = (*Repository)(nil)

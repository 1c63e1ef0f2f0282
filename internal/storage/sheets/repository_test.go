package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/devops-autopost/internal/history"
	"github.com/devops-autopost/internal/models"
	"github.com/devops-autopost/pkg/logger"
)

// fakeSheets serves the subset of the Sheets v4 REST API the repository uses
type fakeSheets struct {
	mu     sync.Mutex
	header []interface{}
	rows   [][]interface{}
	tabs   []string
}

func (f *fakeSheets) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		const prefix = "/v4/spreadsheets/sheet-id"
		require.True(t, strings.HasPrefix(r.URL.Path, prefix), r.URL.Path)
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case rest == "" && r.Method == http.MethodGet:
			var sheets []map[string]interface{}
			for _, tab := range f.tabs {
				sheets = append(sheets, map[string]interface{}{"properties": map[string]interface{}{"title": tab}})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"sheets": sheets})

		case rest == ":batchUpdate" && r.Method == http.MethodPost:
			f.tabs = append(f.tabs, "History")
			_, _ = w.Write([]byte(`{}`))

		case strings.HasPrefix(rest, "/values/"):
			rng := strings.TrimPrefix(rest, "/values/")
			switch {
			case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
				var body struct {
					Values [][]interface{} `json:"values"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				f.rows = append(f.rows, body.Values...)
				_, _ = w.Write([]byte(`{}`))
			case r.Method == http.MethodPut:
				var body struct {
					Values [][]interface{} `json:"values"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				f.header = body.Values[0]
				_, _ = w.Write([]byte(`{}`))
			case rng == "History!A1:G1":
				values := [][]interface{}{}
				if f.header != nil {
					values = append(values, f.header)
				}
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
			default:
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"values": f.rows})
			}

		default:
			http.NotFound(w, r)
		}
	}
}

func newTestRepo(t *testing.T, fake *fakeSheets) *Repository {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	repo, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"}, logger.Nop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return repo
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, logger.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), Config{}, logger.Nop())
	assert.Error(t, err)
}

func TestRepository_Initialize(t *testing.T) {
	fake := &fakeSheets{}
	repo := newTestRepo(t, fake)

	require.NoError(t, repo.Initialize(context.Background()))
	assert.Equal(t, []string{"History"}, fake.tabs)
	assert.Len(t, fake.header, len(Columns))

	// second run leaves the sheet alone
	require.NoError(t, repo.Initialize(context.Background()))
	assert.Equal(t, []string{"History"}, fake.tabs)
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{}
	repo := newTestRepo(t, fake)

	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, models.HistoryEntry{
		Timestamp: ts, Title: "First", Body: "first body", Score: models.IntPtr(80), PostURN: "urn:li:share:1",
	}))
	require.NoError(t, repo.Append(ctx, models.HistoryEntry{
		Timestamp: ts.Add(time.Hour), Title: "Second", Body: "second body",
	}))

	require.Len(t, fake.rows, 2)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:share:1", fake.rows[0][5])

	entries, err := repo.ReadRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second body", entries[0].Body)
	assert.Nil(t, entries[0].Score)

	entries, err = repo.ReadRecent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"first body", "second body"}, history.Bodies(entries))
	assert.Equal(t, 80, entries[0].ScoreValue())
	assert.True(t, ts.Equal(entries[0].Timestamp))
}

func TestParseRow(t *testing.T) {
	_, ok := parseRow([]interface{}{"not a time", "x"})
	assert.False(t, ok)

	entry, ok := parseRow([]interface{}{"2025-03-01T09:00:00Z", "Title"})
	require.True(t, ok)
	assert.Equal(t, "Title", entry.Title)
	assert.Empty(t, entry.Body)
}

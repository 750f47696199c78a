package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

type fakeSheetsAPI struct {
	mu      sync.Mutex
	titles  []string
	calls   []string
	written sheetsapi.ValueRange
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-1"):
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]interface{}, 0, len(f.titles))
		for _, title := range f.titles {
			sheets = append(sheets, map[string]interface{}{"properties": map[string]string{"title": title}})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"spreadsheetId": "sheet-1", "sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req sheetsapi.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.titles = append(f.titles, req.Requests[0].AddSheet.Properties.Title)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		_ = json.NewDecoder(r.Body).Decode(&f.written)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"unexpected call"}}`))
	}
}

func newTestPublisher(t *testing.T, api *fakeSheetsAPI) *Publisher {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	service, err := sheetsapi.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return newPublisher(service, "sheet-1", nil)
}

func TestPublishTableCreatesMissingTab(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"Sheet1"}}
	publisher := newTestPublisher(t, api)

	table := models.Table{
		Title:   "Feed",
		Columns: []string{"Name", "Current Stock"},
		Rows:    [][]string{{"Maize", "120.00"}},
	}
	require.NoError(t, publisher.PublishTable(context.Background(), table))

	assert.Equal(t, []string{"get", "add", "clear", "update"}, api.calls)
	assert.Equal(t, []string{"Sheet1", "Feed"}, api.titles)
	require.Len(t, api.written.Values, 2)
	assert.Equal(t, []interface{}{"Name", "Current Stock"}, api.written.Values[0])
	assert.Equal(t, []interface{}{"Maize", "120.00"}, api.written.Values[1])
}

func TestPublishTableReusesExistingTab(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"Cattle"}}
	publisher := newTestPublisher(t, api)

	require.NoError(t, publisher.PublishTable(context.Background(), models.Table{Title: "Cattle", Columns: []string{"ID"}}))
	assert.Equal(t, []string{"get", "clear", "update"}, api.calls)
}

func TestPublishTableRequiresTitle(t *testing.T) {
	publisher := newTestPublisher(t, &fakeSheetsAPI{})
	assert.Error(t, publisher.PublishTable(context.Background(), models.Table{}))
}

package sink

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aluiziolira/go-scrape-toolkit/config"
	"github.com/aluiziolira/go-scrape-toolkit/models"
)

var scrapedAt = time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC)

func jobsBatch() models.Batch {
	first := models.NewRecord().
		Set("title", models.String("Desenvolvedor Python Sênior")).
		Set("company", models.String("TechCorp")).
		Set("salary", models.Number(8000)).
		Set("scraped_at", models.Time(scrapedAt))
	second := models.NewRecord().
		Set("title", models.String("Desenvolvedor Python Júnior")).
		Set("salary", models.Number(4500)).
		Set("scraped_at", models.Time(scrapedAt)).
		Set("notes", models.String("remoto"))
	return models.Batch{first, second}
}

func newSink(t *testing.T, format, dir string) *Sink {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputFormat = format
	cfg.OutputPath = dir
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return s
}

func TestPersistEmptyBatchPerformsNoIO(t *testing.T) {
	for _, format := range []string{config.FormatCSV, config.FormatJSON, config.FormatXLSX, config.FormatSQLite} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			s := newSink(t, format, dir)

			s.Persist(models.Batch{}, "empty")

			if _, err := os.Stat(dir); !os.IsNotExist(err) {
				t.Fatalf("output directory should not exist after empty persist")
			}
		})
	}
}

func TestPersistCSVFieldUnion(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatCSV, dir)

	s.Persist(jobsBatch(), "jobs_data")

	f, err := os.Open(filepath.Join(dir, "jobs_data.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	wantHeader := []string{"title", "company", "salary", "scraped_at", "notes"}
	for i, field := range wantHeader {
		if rows[0][i] != field {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], field)
		}
	}
	if rows[1][1] != "TechCorp" {
		t.Fatalf("company cell = %q, want TechCorp", rows[1][1])
	}
	if rows[2][1] != "" {
		t.Fatalf("missing company cell should be empty, got %q", rows[2][1])
	}
	if rows[2][2] != "4500" {
		t.Fatalf("salary cell = %q, want 4500", rows[2][2])
	}
	if rows[2][4] != "remoto" {
		t.Fatalf("notes cell = %q, want remoto", rows[2][4])
	}
}

func TestPersistJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatJSON, dir)

	batch := jobsBatch()
	s.Persist(batch, "jobs_data")

	raw, err := os.ReadFile(filepath.Join(dir, "jobs_data.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}

	if !strings.Contains(string(raw), "Sênior") {
		t.Fatalf("non-ASCII characters should be preserved verbatim")
	}
	if strings.Index(string(raw), `"title"`) > strings.Index(string(raw), `"company"`) {
		t.Fatalf("record key order should be preserved")
	}

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != len(batch) {
		t.Fatalf("records = %d, want %d", len(decoded), len(batch))
	}
	if decoded[0]["title"] != "Desenvolvedor Python Sênior" {
		t.Fatalf("title = %v", decoded[0]["title"])
	}
	if decoded[0]["salary"].(float64) != 8000 {
		t.Fatalf("salary = %v, want 8000", decoded[0]["salary"])
	}
	parsed, err := time.Parse(time.RFC3339, decoded[0]["scraped_at"].(string))
	if err != nil || !parsed.Equal(scrapedAt) {
		t.Fatalf("scraped_at = %v (%v), want %v", decoded[0]["scraped_at"], err, scrapedAt)
	}
	if _, ok := decoded[1]["company"]; ok {
		t.Fatalf("second record should not carry a company field")
	}
}

func TestPersistXLSXWorkbook(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatXLSX, dir)

	s.Persist(jobsBatch(), "jobs_data")

	workbook, err := excelize.OpenFile(filepath.Join(dir, "jobs_data.xlsx"))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read workbook rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "title" || rows[0][1] != "company" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "Desenvolvedor Python Sênior" {
		t.Fatalf("title cell = %q", rows[1][0])
	}
}

func TestPersistSQLiteReplacesTable(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatSQLite, dir)

	s.Persist(jobsBatch(), "jobs_data")

	replacement := models.Batch{
		models.NewRecord().
			Set("title", models.String("Desenvolvedor Go Pleno")).
			Set("salary", models.Number(9000)),
	}
	s.Persist(replacement, "jobs_data")

	db, err := sql.Open("sqlite3", filepath.Join(dir, "jobs_data.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM scraped_data").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1 (replace, not append)", count)
	}

	var title string
	var salary float64
	if err := db.QueryRow("SELECT title, salary FROM scraped_data").Scan(&title, &salary); err != nil {
		t.Fatalf("read row: %v", err)
	}
	if title != "Desenvolvedor Go Pleno" || salary != 9000 {
		t.Fatalf("row = (%q, %v), want second batch contents", title, salary)
	}
}

func TestPersistSQLiteQuotesFieldNames(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatSQLite, dir)

	batch := models.Batch{
		models.NewRecord().
			Set(`nível "pleno"`, models.String("sim")).
			Set("title", models.String("Desenvolvedor Go")),
	}
	s.Persist(batch, "jobs_data")

	db, err := sql.Open("sqlite3", filepath.Join(dir, "jobs_data.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow(`SELECT "nível ""pleno""" FROM scraped_data`).Scan(&value); err != nil {
		t.Fatalf("read quoted column: %v", err)
	}
	if value != "sim" {
		t.Fatalf("quoted column = %q, want sim", value)
	}
}

func TestPersistToleratesNilRecords(t *testing.T) {
	dir := t.TempDir()
	s := newSink(t, config.FormatCSV, dir)

	batch := append(jobsBatch(), nil)
	s.Persist(batch, "jobs_data")

	f, err := os.Open(filepath.Join(dir, "jobs_data.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// Header, two real records, and one all-empty row for the nil entry.
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	for i, cell := range rows[3] {
		if cell != "" {
			t.Fatalf("nil record cell[%d] = %q, want empty", i, cell)
		}
	}
}

func TestPersistAbsorbsDirectoryFailure(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("create blocking file: %v", err)
	}

	s := newSink(t, config.FormatCSV, blocked)

	// Must log and absorb the failure, never panic or propagate.
	s.Persist(jobsBatch(), "jobs_data")

	if _, err := os.Stat(filepath.Join(blocked, "jobs_data.csv")); err == nil {
		t.Fatalf("no output should exist after directory failure")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputFormat = "parquet"
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jknair0/beforeeach"

	"envdamage-service/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var categoryCols = []string{"id", "name", "description", "base_cost_per_unit",
	"unit_type", "severity_multiplier", "active", "created_at", "updated_at"}

var reportCols = []string{"id", "case_number", "user_id", "damage_category_id",
	"location", "latitude", "longitude", "affected_area", "pollutant_volume",
	"affected_animals", "severity_level", "calculated_damage", "ecological_data",
	"notes", "ai_analysis", "status", "created_at", "updated_at"}

func waterPollutionRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(categoryCols).
		AddRow(4, "Water Pollution", "Contamination of water bodies", "150.00",
			"cubic_meter", "1.50", true, now, now)
}

func reportRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reportCols).
		AddRow(7, "ENV-202501-0006", "officer-1", 4, "River bank north of bridge",
			nil, nil, nil, "100.00", nil, "critical", "112500.00", nil, nil, nil,
			status, now, now)
}

func floatPtr(v float64) *float64 { return &v }

func TestGetCategory(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WithArgs(int64(4)).
			WillReturnRows(waterPollutionRow())

		s := NewReportService(db)
		c, err := s.GetCategory(context.Background(), 4)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if c.Name != "Water Pollution" {
			t.Errorf("name: want Water Pollution, got %s", c.Name)
		}
		if c.UnitType != models.UnitTypeCubicMeter {
			t.Errorf("unit type: want cubic_meter, got %s", c.UnitType)
		}
		if c.BaseCostPerUnit.StringFixed(2) != "150.00" {
			t.Errorf("base cost: want 150.00, got %s", c.BaseCostPerUnit.StringFixed(2))
		}
	})
}

func TestGetCategoryNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(categoryCols))

		s := NewReportService(db)
		_, err := s.GetCategory(context.Background(), 99)
		if err != ErrNotFound {
			t.Errorf("want ErrNotFound, got %v", err)
		}
	})
}

func createRequest() models.CreateReportRequest {
	return models.CreateReportRequest{
		DamageCategoryID: 4,
		Location:         "River bank north of bridge",
		PollutantVolume:  floatPtr(100),
		SeverityLevel:    "critical",
	}
}

func expectReportFetch() {
	mock.ExpectQuery("(?s)SELECT .+ FROM environmental_reports WHERE id = ?").
		WithArgs(int64(7)).
		WillReturnRows(reportRow("draft"))
	mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
		WithArgs(int64(4)).
		WillReturnRows(waterPollutionRow())
}

func TestCreateReport(t *testing.T) {
	it(func() {
		caseNumber := NextCaseNumber(time.Now(), 5)

		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WithArgs(int64(4)).
			WillReturnRows(waterPollutionRow())
		mock.ExpectQuery("SELECT COUNT(.+) FROM environmental_reports\\s+WHERE YEAR").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectExec("INSERT INTO environmental_reports").
			WithArgs(caseNumber, "officer-1", int64(4), "River bank north of bridge",
				nil, nil, nil, float64(100), nil, "critical",
				sqlmock.AnyArg(), nil, "", "draft").
			WillReturnResult(sqlmock.NewResult(7, 1))
		expectReportFetch()

		s := NewReportService(db)
		report, err := s.CreateReport(context.Background(), "officer-1", createRequest())
		if err != nil {
			t.Fatalf("CreateReport failed: %v", err)
		}
		if report.CalculatedDamage.StringFixed(2) != "112500.00" {
			t.Errorf("calculated damage: want 112500.00, got %s", report.CalculatedDamage.StringFixed(2))
		}
		if report.DamageCategory == nil {
			t.Error("expected resolved category on created report")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateReportRetriesDuplicateCaseNumber(t *testing.T) {
	it(func() {
		now := time.Now()
		first := NextCaseNumber(now, 5)
		second := NextCaseNumber(now, 6)

		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WillReturnRows(waterPollutionRow())
		mock.ExpectQuery("SELECT COUNT(.+) FROM environmental_reports\\s+WHERE YEAR").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectExec("INSERT INTO environmental_reports").
			WithArgs(first, "officer-1", int64(4), "River bank north of bridge",
				nil, nil, nil, float64(100), nil, "critical",
				sqlmock.AnyArg(), nil, "", "draft").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})
		mock.ExpectExec("INSERT INTO environmental_reports").
			WithArgs(second, "officer-1", int64(4), "River bank north of bridge",
				nil, nil, nil, float64(100), nil, "critical",
				sqlmock.AnyArg(), nil, "", "draft").
			WillReturnResult(sqlmock.NewResult(7, 1))
		expectReportFetch()

		s := NewReportService(db)
		_, err := s.CreateReport(context.Background(), "officer-1", createRequest())
		if err != nil {
			t.Fatalf("CreateReport failed after retry: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestCreateReportUnknownCategory(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WillReturnRows(sqlmock.NewRows(categoryCols))

		s := NewReportService(db)
		_, err := s.CreateReport(context.Background(), "officer-1", createRequest())
		if err != ErrNotFound {
			t.Errorf("want ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateReportClosed(t *testing.T) {
	it(func() {
		mock.ExpectQuery("(?s)SELECT .+ FROM environmental_reports WHERE id = ?").
			WithArgs(int64(7)).
			WillReturnRows(reportRow("closed"))
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WillReturnRows(waterPollutionRow())

		s := NewReportService(db)
		_, err := s.UpdateReport(context.Background(), 7, createRequest())
		if err != ErrReportClosed {
			t.Errorf("want ErrReportClosed, got %v", err)
		}
	})
}

func TestUpdateReportRecomputesDamage(t *testing.T) {
	it(func() {
		// Existing report, then category resolution and the recompute update.
		mock.ExpectQuery("(?s)SELECT .+ FROM environmental_reports WHERE id = ?").
			WithArgs(int64(7)).
			WillReturnRows(reportRow("draft"))
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WillReturnRows(waterPollutionRow())
		mock.ExpectQuery("SELECT (.+) FROM damage_categories WHERE id = ?").
			WillReturnRows(waterPollutionRow())
		mock.ExpectExec("UPDATE environmental_reports").
			WithArgs(int64(4), "River bank north of bridge", nil, nil,
				nil, float64(50), nil, "low",
				sqlmock.AnyArg(), nil, "", "draft", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectReportFetch()

		req := createRequest()
		req.PollutantVolume = floatPtr(50)
		req.SeverityLevel = "low"

		s := NewReportService(db)
		_, err := s.UpdateReport(context.Background(), 7, req)
		if err != nil {
			t.Fatalf("UpdateReport failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestDeleteReport(t *testing.T) {
	it(func() {
		mock.ExpectExec("DELETE FROM environmental_reports WHERE id = ?").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewReportService(db)
		if err := s.DeleteReport(context.Background(), 7); err != nil {
			t.Errorf("DeleteReport failed: %v", err)
		}
	})
}

func TestDeleteReportNotFound(t *testing.T) {
	it(func() {
		mock.ExpectExec("DELETE FROM environmental_reports WHERE id = ?").
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		s := NewReportService(db)
		if err := s.DeleteReport(context.Background(), 99); err != ErrNotFound {
			t.Errorf("want ErrNotFound, got %v", err)
		}
	})
}

func TestStats(t *testing.T) {
	it(func() {
		mock.ExpectQuery("(?s)SELECT\\s+COUNT.+FROM environmental_reports").
			WillReturnRows(sqlmock.NewRows([]string{"count", "total", "critical"}).
				AddRow(12, "250000.00", 3))
		mock.ExpectQuery("SELECT COUNT(.+) FROM damage_categories WHERE active").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

		s := NewReportService(db)
		stats, err := s.Stats(context.Background())
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.TotalReports != 12 {
			t.Errorf("total reports: want 12, got %d", stats.TotalReports)
		}
		if stats.TotalDamage.StringFixed(2) != "250000.00" {
			t.Errorf("total damage: want 250000.00, got %s", stats.TotalDamage.StringFixed(2))
		}
		if stats.CriticalReports != 3 {
			t.Errorf("critical reports: want 3, got %d", stats.CriticalReports)
		}
		if stats.ActiveCategories != 8 {
			t.Errorf("active categories: want 8, got %d", stats.ActiveCategories)
		}
	})
}

func TestListReports(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT COUNT(.+) FROM environmental_reports").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("(?s)SELECT .+ FROM environmental_reports\\s+ORDER BY created_at DESC").
			WithArgs(15, 0).
			WillReturnRows(reportRow("submitted"))

		s := NewReportService(db)
		resp, err := s.ListReports(context.Background(), 1, 15)
		if err != nil {
			t.Fatalf("ListReports failed: %v", err)
		}
		if resp.Total != 1 || len(resp.Reports) != 1 {
			t.Fatalf("want 1 report, got total=%d len=%d", resp.Total, len(resp.Reports))
		}
		if resp.Reports[0].CaseNumber != "ENV-202501-0006" {
			t.Errorf("case number: want ENV-202501-0006, got %s", resp.Reports[0].CaseNumber)
		}
		if resp.Reports[0].Status != models.StatusSubmitted {
			t.Errorf("status: want submitted, got %s", resp.Reports[0].Status)
		}
	})
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"

	"envdamage-service/calculator"
	"envdamage-service/models"
)

var (
	// ErrNotFound is returned when a referenced category or report does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrReportClosed is returned when mutating a report that has been closed.
	ErrReportClosed = errors.New("report is closed")
)

const mysqlDuplicateEntry = 1062

// caseNumberAttempts bounds the retry loop for duplicate case numbers under
// concurrent report creation in the same month.
const caseNumberAttempts = 5

// ReportService handles all category and report database operations.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new report service instance.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

const categoryColumns = `id, name, description, base_cost_per_unit, unit_type, severity_multiplier, active, created_at, updated_at`

// ListCategories returns categories ordered by name, optionally restricted
// to active ones (selection lists only offer active categories).
func (s *ReportService) ListCategories(ctx context.Context, activeOnly bool) ([]models.DamageCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM damage_categories`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.DamageCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category by id.
func (s *ReportService) GetCategory(ctx context.Context, id int64) (*models.DamageCategory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM damage_categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query category %d: %w", id, err)
	}
	return c, nil
}

// CreateCategory inserts a new damage category.
func (s *ReportService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.DamageCategory, error) {
	multiplier := 1.0
	if req.SeverityMultiplier != nil {
		multiplier = *req.SeverityMultiplier
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO damage_categories
		(name, description, base_cost_per_unit, unit_type, severity_multiplier, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.Name, req.Description, req.BaseCostPerUnit, req.UnitType, multiplier, active)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	log.Infof("Created damage category %d (%s)", id, req.Name)
	return s.GetCategory(ctx, id)
}

// UpdateCategory replaces the mutable fields of a category. Existing reports
// keep their cached calculated_damage until they are edited.
func (s *ReportService) UpdateCategory(ctx context.Context, id int64, req models.CreateCategoryRequest) (*models.DamageCategory, error) {
	multiplier := 1.0
	if req.SeverityMultiplier != nil {
		multiplier = *req.SeverityMultiplier
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	result, err := s.db.ExecContext(ctx, `UPDATE damage_categories
		SET name = ?, description = ?, base_cost_per_unit = ?, unit_type = ?, severity_multiplier = ?, active = ?
		WHERE id = ?`,
		req.Name, req.Description, req.BaseCostPerUnit, req.UnitType, multiplier, active, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get update status: %w", err)
	}
	// A no-op update affects zero rows; the lookup distinguishes that from a
	// missing category.
	return s.GetCategory(ctx, id)
}

const reportColumns = `id, case_number, user_id, damage_category_id, location, latitude, longitude,
	affected_area, pollutant_volume, affected_animals, severity_level, calculated_damage,
	ecological_data, notes, ai_analysis, status, created_at, updated_at`

// CreateReport validates the category reference, computes the damage amount
// and inserts the report with a fresh case number. Case-number collisions
// from concurrent creations in the same month hit the unique key and are
// retried with a bumped sequence.
func (s *ReportService) CreateReport(ctx context.Context, userID string, req models.CreateReportRequest) (*models.EnvironmentalReport, error) {
	category, err := s.GetCategory(ctx, req.DamageCategoryID)
	if err != nil {
		return nil, err
	}

	res := calculator.Compute(category, incidentParams(req))

	status := models.StatusDraft
	if req.Status != "" {
		status = models.ReportStatus(req.Status)
	}

	now := time.Now()
	count, err := s.countReportsInMonth(ctx, now)
	if err != nil {
		return nil, err
	}

	var id int64
	for attempt := 0; ; attempt++ {
		caseNumber := NextCaseNumber(now, count+attempt)
		result, err := s.db.ExecContext(ctx, `INSERT INTO environmental_reports
			(case_number, user_id, damage_category_id, location, latitude, longitude,
			 affected_area, pollutant_volume, affected_animals, severity_level,
			 calculated_damage, ecological_data, notes, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			caseNumber, userID, req.DamageCategoryID, req.Location, req.Latitude, req.Longitude,
			req.AffectedArea, req.PollutantVolume, req.AffectedAnimals, req.SeverityLevel,
			res.Amount, nullableJSON(req.EcologicalData), req.Notes, status)
		if err != nil {
			if isDuplicateEntry(err) && attempt+1 < caseNumberAttempts {
				log.Warnf("Case number %s already taken, retrying", caseNumber)
				continue
			}
			return nil, fmt.Errorf("failed to insert report: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get report id: %w", err)
		}
		log.Infof("Created report %d (%s) for user %s, damage %s", id, caseNumber, userID, res.Amount.StringFixed(2))
		break
	}

	return s.GetReport(ctx, id)
}

// GetReport retrieves a report by id with its category resolved.
func (s *ReportService) GetReport(ctx context.Context, id int64) (*models.EnvironmentalReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM environmental_reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report %d: %w", id, err)
	}

	category, err := s.GetCategory(ctx, r.DamageCategoryID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	r.DamageCategory = category
	return r, nil
}

// ListReports returns one page of reports, newest first.
func (s *ReportService) ListReports(ctx context.Context, page, perPage int) (*models.ReportListResponse, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM environmental_reports`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM environmental_reports
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.EnvironmentalReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.ReportListResponse{
		Reports: reports,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// UpdateReport replaces the incident parameters of a report and recomputes
// the damage amount. The owning user and case number never change. Closed
// reports are immutable.
func (s *ReportService) UpdateReport(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.EnvironmentalReport, error) {
	existing, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.StatusClosed {
		return nil, ErrReportClosed
	}

	category, err := s.GetCategory(ctx, req.DamageCategoryID)
	if err != nil {
		return nil, err
	}

	res := calculator.Compute(category, incidentParams(req))

	status := existing.Status
	if req.Status != "" {
		status = models.ReportStatus(req.Status)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE environmental_reports
		SET damage_category_id = ?, location = ?, latitude = ?, longitude = ?,
		    affected_area = ?, pollutant_volume = ?, affected_animals = ?,
		    severity_level = ?, calculated_damage = ?, ecological_data = ?,
		    notes = ?, status = ?
		WHERE id = ?`,
		req.DamageCategoryID, req.Location, req.Latitude, req.Longitude,
		req.AffectedArea, req.PollutantVolume, req.AffectedAnimals,
		req.SeverityLevel, res.Amount, nullableJSON(req.EcologicalData),
		req.Notes, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update report %d: %w", id, err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get update status: %w", err)
	}

	log.Infof("Updated report %d, recomputed damage %s", id, res.Amount.StringFixed(2))
	return s.GetReport(ctx, id)
}

// DeleteReport removes a report.
func (s *ReportService) DeleteReport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM environmental_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get delete status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the dashboard counters.
func (s *ReportService) Stats(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(calculated_damage), 0),
		COALESCE(SUM(severity_level = 'critical'), 0)
		FROM environmental_reports`).
		Scan(&stats.TotalReports, &stats.TotalDamage, &stats.CriticalReports)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate report stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM damage_categories WHERE active = TRUE`).
		Scan(&stats.ActiveCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to count active categories: %w", err)
	}

	return stats, nil
}

// RecentReports returns the n most recently created reports.
func (s *ReportService) RecentReports(ctx context.Context, n int) ([]models.EnvironmentalReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM environmental_reports
		 ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer rows.Close()

	reports := []models.EnvironmentalReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *ReportService) countReportsInMonth(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM environmental_reports
		 WHERE YEAR(created_at) = ? AND MONTH(created_at) = ?`,
		t.Year(), int(t.Month())).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports for %04d-%02d: %w", t.Year(), int(t.Month()), err)
	}
	return count, nil
}

func incidentParams(req models.CreateReportRequest) calculator.IncidentParams {
	return calculator.IncidentParams{
		AffectedArea:    req.AffectedArea,
		PollutantVolume: req.PollutantVolume,
		AffectedAnimals: req.AffectedAnimals,
		SeverityLevel:   models.SeverityLevel(req.SeverityLevel),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.DamageCategory, error) {
	var (
		c           models.DamageCategory
		description sql.NullString
		unitType    string
	)
	err := row.Scan(&c.ID, &c.Name, &description, &c.BaseCostPerUnit, &unitType,
		&c.SeverityMultiplier, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.UnitType = models.UnitType(unitType)
	return &c, nil
}

func scanReport(row rowScanner) (*models.EnvironmentalReport, error) {
	var (
		r              models.EnvironmentalReport
		latitude       sql.NullFloat64
		longitude      sql.NullFloat64
		animals        sql.NullInt64
		severity       string
		status         string
		ecologicalData []byte
		notes          sql.NullString
		aiAnalysis     []byte
	)
	err := row.Scan(&r.ID, &r.CaseNumber, &r.UserID, &r.DamageCategoryID, &r.Location,
		&latitude, &longitude, &r.AffectedArea, &r.PollutantVolume, &animals,
		&severity, &r.CalculatedDamage, &ecologicalData, &notes, &aiAnalysis,
		&status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if latitude.Valid {
		r.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		r.Longitude = &longitude.Float64
	}
	if animals.Valid {
		r.AffectedAnimals = &animals.Int64
	}
	r.SeverityLevel = models.SeverityLevel(severity)
	r.Status = models.ReportStatus(status)
	r.EcologicalData = json.RawMessage(ecologicalData)
	r.Notes = notes.String
	r.AIAnalysis = json.RawMessage(aiAnalysis)
	return &r, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

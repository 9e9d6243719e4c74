package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// Schema contains the database schema. Executed as a multi-statement batch,
// so the DSN must enable multiStatements.
const Schema = `
CREATE TABLE IF NOT EXISTS damage_categories (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT,
    base_cost_per_unit DECIMAL(10, 2) NOT NULL,
    unit_type VARCHAR(32) NOT NULL,
    severity_multiplier DECIMAL(5, 2) NOT NULL DEFAULT 1.0,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_name (name),
    INDEX idx_active (active),
    INDEX idx_active_created (active, created_at)
);

CREATE TABLE IF NOT EXISTS environmental_reports (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    case_number VARCHAR(32) NOT NULL,
    user_id VARCHAR(256) NOT NULL,
    damage_category_id BIGINT NOT NULL,
    location VARCHAR(255) NOT NULL,
    latitude DECIMAL(10, 8),
    longitude DECIMAL(11, 8),
    affected_area DECIMAL(12, 2),
    pollutant_volume DECIMAL(12, 2),
    affected_animals INT,
    severity_level ENUM('low', 'medium', 'high', 'critical') NOT NULL DEFAULT 'medium',
    calculated_damage DECIMAL(15, 2) NOT NULL,
    ecological_data JSON,
    notes TEXT,
    ai_analysis JSON,
    status ENUM('draft', 'submitted', 'reviewed', 'closed') NOT NULL DEFAULT 'draft',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY unique_case_number (case_number),
    FOREIGN KEY (damage_category_id) REFERENCES damage_categories(id),
    INDEX idx_user (user_id),
    INDEX idx_category (damage_category_id),
    INDEX idx_status (status),
    INDEX idx_severity (severity_level),
    INDEX idx_status_created (status, created_at)
);
`

// seedCategory is one reference pricing record installed on first start.
type seedCategory struct {
	name        string
	description string
	baseCost    string
	unitType    string
	multiplier  string
}

var seedCategories = []seedCategory{
	{"Water Pollution", "Contamination of water bodies including rivers, lakes, groundwater, and marine environments", "150.00", "cubic_meter", "1.5"},
	{"Soil Contamination", "Chemical contamination of soil affecting agricultural land, residential areas, and natural habitats", "200.00", "sqm", "2.0"},
	{"Air Pollution", "Release of harmful substances into the atmosphere affecting air quality and public health", "100.00", "cubic_meter", "1.2"},
	{"Wildlife Impact", "Direct harm to wildlife including injury, death, or habitat destruction affecting animal populations", "500.00", "animal", "3.0"},
	{"Vegetation Damage", "Destruction or contamination of plant life including forests, crops, and natural vegetation", "75.00", "sqm", "1.3"},
	{"Noise Pollution", "Excessive noise affecting wildlife behavior, human health, and ecosystem balance", "25.00", "sqm", "0.8"},
	{"Waste Dumping", "Illegal disposal of hazardous or non-hazardous waste in unauthorized locations", "300.00", "cubic_meter", "2.5"},
	{"Chemical Spill", "Accidental or intentional release of toxic chemicals into the environment", "800.00", "cubic_meter", "4.0"},
}

// InitializeSchema creates the tables and installs the seed categories when
// the categories table is empty.
func InitializeSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM damage_categories").Scan(&count); err != nil {
		return fmt.Errorf("failed to count damage categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Infof("Seeding %d damage categories", len(seedCategories))
	for _, c := range seedCategories {
		_, err := db.Exec(`INSERT INTO damage_categories
			(name, description, base_cost_per_unit, unit_type, severity_multiplier, active)
			VALUES (?, ?, ?, ?, ?, TRUE)`,
			c.name, c.description, c.baseCost, c.unitType, c.multiplier)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.name, err)
		}
	}
	return nil
}

package models

import (
	"testing"
)

func TestParseUnitType(t *testing.T) {
	for _, valid := range []string{"sqm", "cubic_meter", "animal"} {
		ut, err := ParseUnitType(valid)
		if err != nil {
			t.Errorf("ParseUnitType(%q) failed: %v", valid, err)
		}
		if string(ut) != valid {
			t.Errorf("ParseUnitType(%q): got %q", valid, ut)
		}
	}

	for _, invalid := range []string{"", "hectare", "SQM", "animals"} {
		if _, err := ParseUnitType(invalid); err == nil {
			t.Errorf("ParseUnitType(%q): expected error", invalid)
		}
	}
}

func TestParseSeverityLevel(t *testing.T) {
	for _, valid := range []string{"low", "medium", "high", "critical"} {
		if _, err := ParseSeverityLevel(valid); err != nil {
			t.Errorf("ParseSeverityLevel(%q) failed: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "moderate", "Critical"} {
		if _, err := ParseSeverityLevel(invalid); err == nil {
			t.Errorf("ParseSeverityLevel(%q): expected error", invalid)
		}
	}
}

func TestParseReportStatus(t *testing.T) {
	for _, valid := range []string{"draft", "submitted", "reviewed", "closed"} {
		if _, err := ParseReportStatus(valid); err != nil {
			t.Errorf("ParseReportStatus(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseReportStatus("archived"); err == nil {
		t.Error("ParseReportStatus(\"archived\"): expected error")
	}
}

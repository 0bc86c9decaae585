package store

import (
	"errors"
	"testing"
	"time"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func floatPtr(v float64) *float64 { return &v }

func testRun(date time.Time) *Run {
	return &Run{
		UserID:           1,
		Date:             date,
		Name:             "Morning Run",
		Source:           "gpx",
		Distance:         5.2,
		TotalTime:        1800,
		AverageSpeed:     10.4,
		AverageHeartRate: floatPtr(152.3),
		AveragePace:      "5:46",
		ThresholdHR:      floatPtr(171),
	}
}

func testZones() []ZoneTime {
	return []ZoneTime{
		{Zone: 1, Name: "Easy", LowerBPM: 136.8, UpperBPM: floatPtr(152.19), Seconds: 900, Percent: 50},
		{Zone: 2, Name: "Moderate", LowerBPM: 153.9, UpperBPM: floatPtr(169.29), Seconds: 600, Percent: 33.3},
		{Zone: 5, Name: "Maximum", LowerBPM: 188.1, Seconds: 300, Percent: 16.7},
	}
}

func TestSaveRun_New(t *testing.T) {
	db := setupTestDB(t)

	r := testRun(time.Date(2024, 10, 2, 6, 58, 12, 0, time.UTC))
	id, inserted, err := db.SaveRun(r, testZones())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if !inserted {
		t.Error("Expected run to be inserted")
	}
	if id == 0 || r.ID != id {
		t.Errorf("id = %d, r.ID = %d", id, r.ID)
	}

	zones, err := db.GetZoneTimes(id)
	if err != nil {
		t.Fatalf("GetZoneTimes failed: %v", err)
	}
	if len(zones) != 3 {
		t.Fatalf("Expected 3 zone rows, got %d", len(zones))
	}
	if zones[0].UpperBPM == nil || *zones[0].UpperBPM != 152.19 {
		t.Errorf("zone 1 upper = %v, want 152.19", zones[0].UpperBPM)
	}
	if zones[2].UpperBPM != nil {
		t.Errorf("zone 5 upper = %v, want nil", *zones[2].UpperBPM)
	}
}

func TestSaveRun_DuplicateIgnored(t *testing.T) {
	db := setupTestDB(t)
	date := time.Date(2024, 10, 2, 6, 58, 12, 0, time.UTC)

	firstID, _, err := db.SaveRun(testRun(date), testZones())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	dup := testRun(date)
	dup.Distance = 99
	id, inserted, err := db.SaveRun(dup, nil)
	if err != nil {
		t.Fatalf("second SaveRun failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate to be ignored")
	}
	if id != firstID {
		t.Errorf("id = %d, want existing %d", id, firstID)
	}

	got, err := db.GetRunByDate(1, date)
	if err != nil {
		t.Fatalf("GetRunByDate failed: %v", err)
	}
	if got.Distance != 5.2 {
		t.Errorf("Distance = %v, want original 5.2", got.Distance)
	}

	// another user may log a run at the same moment
	other := testRun(date)
	other.UserID = 2
	if _, inserted, err := db.SaveRun(other, nil); err != nil || !inserted {
		t.Errorf("SaveRun for user 2 = %v, %v; want inserted", inserted, err)
	}
}

func TestSaveRun_NoDate(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := db.SaveRun(testRun(time.Time{}), nil)
	if !errors.Is(err, ErrNoRunDate) {
		t.Errorf("error = %v, want ErrNoRunDate", err)
	}
}

func TestGetRunByDate(t *testing.T) {
	db := setupTestDB(t)

	r := testRun(time.Date(2024, 10, 2, 6, 58, 12, 0, time.UTC))
	r.AverageCadence = nil
	if _, _, err := db.SaveRun(r, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRunByDate(1, time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetRunByDate failed: %v", err)
	}
	if !got.Date.Equal(r.Date) {
		t.Errorf("Date = %v, want %v", got.Date, r.Date)
	}
	if got.AveragePace != "5:46" || got.TotalTime != 1800 {
		t.Errorf("got %+v", got)
	}
	if got.AverageHeartRate == nil || *got.AverageHeartRate != 152.3 {
		t.Errorf("AverageHeartRate = %v, want 152.3", got.AverageHeartRate)
	}
	if got.AverageCadence != nil {
		t.Errorf("AverageCadence = %v, want nil", *got.AverageCadence)
	}

	tests := []struct {
		name   string
		userID int64
		day    time.Time
	}{
		{"other day", 1, time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)},
		{"other user", 2, time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.GetRunByDate(tt.userID, tt.day)
			if !errors.Is(err, ErrRunNotFound) {
				t.Errorf("error = %v, want ErrRunNotFound", err)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 10, 1, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, _, err := db.SaveRun(testRun(base.AddDate(0, 0, i)), nil); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(1, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].Date.Day() != 3 || runs[2].Date.Day() != 1 {
		t.Errorf("Expected newest first, got %v ... %v", runs[0].Date, runs[2].Date)
	}

	limited, err := db.ListRuns(1, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 runs with limit, got %d", len(limited))
	}

	none, err := db.ListRuns(42, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no runs for unknown user, got %d", len(none))
	}
}

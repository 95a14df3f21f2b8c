package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Names lists the report files of one run in their fixed order.
var Names = []string{
	DetailName,
	DailyName,
	WeeklyName,
	MonthlyName,
	YearlyName,
	AnomalyName,
}

// Read loads a previously written report bundle back from a reports
// directory, header and rows. The TUI browser uses it; the pipeline itself
// never reads reports back.
func Read(dir string) (*Bundle, error) {
	b := &Bundle{}

	for _, name := range Names {
		r, err := readOne(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", name, err)
		}

		r.Name = name
		b.Reports = append(b.Reports, r)
	}

	return b, nil
}

func readOne(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Report{}, fmt.Errorf("read csv: %w", err)
	}

	if len(records) == 0 {
		return Report{}, fmt.Errorf("missing header row")
	}

	return Report{Header: records[0], Rows: records[1:]}, nil
}

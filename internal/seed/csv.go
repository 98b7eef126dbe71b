package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"geosearch-api/internal/models"
)

// csvColumns is the expected header: id,name,address,type,description,lat,lng
const csvColumns = 7

// ParseCSVFile reads restaurants from a CSV file with a header row.
func ParseCSVFile(path string) ([]models.Restaurant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: failed to open file: %w", err)
	}
	defer file.Close()

	return ParseCSV(file)
}

// ParseCSV reads restaurants from r. The first row is a header and is skipped.
func ParseCSV(r io.Reader) ([]models.Restaurant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("seed: failed to read header: %w", err)
	}

	var restaurants []models.Restaurant
	seen := make(map[string]bool)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("seed: failed to read record on line %d: %w", line, err)
		}

		if len(record) < csvColumns {
			return nil, fmt.Errorf("seed: invalid record length on line %d: %d, expected %d columns", line, len(record), csvColumns)
		}

		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("seed: empty id on line %d", line)
		}
		if seen[id] {
			return nil, fmt.Errorf("seed: duplicate id %q on line %d", id, line)
		}
		seen[id] = true

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("seed: invalid latitude on line %d: %s", line, record[5])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
		if err != nil || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("seed: invalid longitude on line %d: %s", line, record[6])
		}

		restaurants = append(restaurants, models.Restaurant{
			ID:          id,
			Name:        record[1],
			Address:     record[2],
			Type:        record[3],
			Description: record[4],
			Lat:         lat,
			Lng:         lng,
		})
	}

	return restaurants, nil
}

package instance

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	domainerrors "evroute/internal/domain/errors"

	"github.com/pkg/errors"
)

var (
	// nodeColumns are the recognised nodes.csv columns; id, x and y are required
	nodeColumns = []string{"id", "x", "y", "demand", "is_depot", "is_charging_station", "charger_power_kw"}

	// vehicleColumns are the recognised vehicles.csv columns
	vehicleColumns = []string{"id", "capacity", "battery_kwh", "start_node"}
)

// CSVReader reads an instance from a nodes file and a vehicles file
type CSVReader struct {
	nodesPath string
}

// NewCSVReader creates a reader for the given nodes file
func NewCSVReader(nodesPath string) *CSVReader {
	return &CSVReader{nodesPath: nodesPath}
}

// Read loads nodes and vehicles into a Document. Cells are kept as strings
// and parsed by Decode, so bad optional values become warnings there.
// Expected nodes format: id,x,y[,demand,is_depot,is_charging_station,charger_power_kw]
func (r *CSVReader) Read() (Document, error) {
	nodes, err := readRecords(r.nodesPath, nodeColumns, []string{"id", "x", "y"})
	if err != nil {
		return nil, err
	}

	vehiclesPath, err := r.vehiclesPath()
	if err != nil {
		return nil, err
	}

	vehicles, err := readRecords(vehiclesPath, vehicleColumns, []string{"capacity", "battery_kwh"})
	if err != nil {
		return nil, err
	}

	return Document{"nodes": nodes, "vehicles": vehicles}, nil
}

// vehiclesPath finds <name>_vehicles.csv next to the nodes file, then vehicles.csv
func (r *CSVReader) vehiclesPath() (string, error) {
	dir := filepath.Dir(r.nodesPath)
	base := strings.TrimSuffix(filepath.Base(r.nodesPath), filepath.Ext(r.nodesPath))

	candidates := []string{
		filepath.Join(dir, base+"_vehicles.csv"),
		filepath.Join(dir, "vehicles.csv"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", domainerrors.ErrMalformedInstance.WithDetailsf("no vehicles file found for %s", r.nodesPath)
}

// readRecords reads a CSV file with a header row into one map per row. Only
// known columns are kept; empty cells are left out.
func readRecords(path string, known, required []string) ([]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s: missing header row: %v", filepath.Base(path), err)
	}

	columns := make(map[int]string, len(header))
	present := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, k := range known {
			if name == k {
				columns[i] = name
				present[name] = true
			}
		}
	}
	for _, name := range required {
		if !present[name] {
			return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s: missing column %q", filepath.Base(path), name)
		}
	}

	var rows []any
	lineNum := 1 // header already read

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, domainerrors.ErrMalformedInstance.WithDetailsf("%s line %d: %v", filepath.Base(path), lineNum+1, readErr)
		}
		lineNum++

		row := make(map[string]any, len(columns))
		for i, cell := range record {
			name, ok := columns[i]
			if !ok {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[name] = cell
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// CSV writes the raw exposure array to "<prefix>_exposure_<height>ft.csv".
// The header row holds x coordinates; each following row starts with its y
// coordinate. Rows run south to north.
type CSV struct {
	Prefix string
}

// Path returns the file written for a height
func (c *CSV) Path(heightFt float64) string {
	return PathFor(c.Prefix, "exposure", heightFt, "csv")
}

func (c *CSV) Write(r *Result) error {
	path := c.Path(r.HeightFt)
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteCSV(bw, r); err != nil {
		return fmt.Errorf("csv write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("csv flush %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV encodes the result as CSV
func WriteCSV(w *bufio.Writer, r *Result) error {
	cw := csv.NewWriter(w)
	rows, cols := r.Values.Dims()

	header := make([]string, 0, cols+1)
	header = append(header, "y\\x")
	for _, x := range r.Grid.Xs() {
		header = append(header, formatFloat(x))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	ys := r.Grid.Ys()
	record := make([]string, cols+1)
	for row := 0; row < rows; row++ {
		record[0] = formatFloat(ys[row])
		for col := 0; col < cols; col++ {
			record[col+1] = formatFloat(r.Values.At(row, col))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatFloat rounds away accumulated grid spacing noise such as 2.4599999999999995
func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).Round(csvPlaces).String()
}

const csvPlaces = 6

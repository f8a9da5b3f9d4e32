// Package loader reads OHLC bars from external files into memory.
package loader

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/barsim/internal/types"
	"github.com/rxtech-lab/barsim/pkg/errors"
)

// CSV reads all bars from a CSV file with a time,open,high,low,close,volume
// header. Timestamps are RFC3339. The bars are returned as-is; ordering and
// price validation happen at series load.
func CSV(path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataLoadFailed, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	var bars []types.Bar
	if err := gocsv.UnmarshalFile(file, &bars); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse CSV file %s", path)
	}

	return bars, nil
}

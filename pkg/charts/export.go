package charts

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{"category", "series", "label", "TimeFromTransfusion", "value"}

// WriteCSV writes the prepared series in long form, one row per point, in the
// same order ChartJSDatasets draws them. Gaps are written as empty values.
func WriteCSV(w io.Writer, series []CategorySeries) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	write := func(category, kind string, s Series) error {
		for _, p := range s.Points {
			value := ""
			if p.Y != nil {
				value = strconv.FormatFloat(*p.Y, 'f', -1, 64)
			}
			row := []string{category, kind, s.Label, strconv.FormatFloat(p.X, 'f', -1, 64), value}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	for _, cs := range series {
		var err error
		if cs.Band != nil {
			if err = write(cs.Category, "upper", cs.Band.Upper); err == nil {
				err = write(cs.Category, "lower", cs.Band.Lower)
			}
		}
		if err == nil && cs.Main != nil {
			err = write(cs.Category, "main", *cs.Main)
		}
		if err == nil && cs.Base != nil {
			err = write(cs.Category, "base", *cs.Base)
		}
		if err != nil {
			writer.Flush()
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

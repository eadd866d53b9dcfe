package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/keywords"
)

var csvHeader = []string{"rank", "word", "count", "percentage", "type"}

// WriteKeywordsCSV writes the keyword ranking with a header row.
func WriteKeywordsCSV(w io.Writer, kws []keywords.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, kw := range kws {
		record := []string{
			strconv.Itoa(i + 1),
			kw.Word,
			strconv.Itoa(kw.Count),
			analyzer.FormatFloat(kw.Percentage),
			Classify(i+1, kw.Word),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package dependencies

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatLines Format = "lines"
)

var (
	csvHeader = []string{"package_name", "resolved_version", "created_date", "uuid", "name"}
)

func ParseFormat(text string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(text))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatLines, "text", "txt":
		return FormatLines, nil
	}
	return "", fmt.Errorf("Unknown output format %q, use one of: json, csv, lines.", text)
}

func (it Format) Extension() string {
	if it == FormatLines {
		return "txt"
	}
	return string(it)
}

// Write renders records in the given format.
func Write(sink io.Writer, format Format, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(sink)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case FormatCSV:
		writer := csv.NewWriter(sink)
		if err := writer.Write(csvHeader); err != nil {
			return err
		}
		for _, record := range records {
			row := []string{record.PackageName, record.ResolvedVersion, record.CreatedDate, record.Uuid, record.Name}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	case FormatLines:
		buffered := bufio.NewWriter(sink)
		for _, record := range records {
			fmt.Fprintln(buffered, record.Coordinate())
		}
		return buffered.Flush()
	}
	return fmt.Errorf("Unknown output format %q.", format)
}

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/pca-scheduler/core/model"
)

// Format names an output file type.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// ParseFormats accepts names such as "png", "csv" or "png,json" and returns
// them without duplicates.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f, err := parseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format")
	}
	return out, nil
}

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatJSON, FormatCSV, FormatText:
		return f, nil
	case "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// FormatFromPath picks the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s has no extension", path)
	}
	return parseFormat(ext)
}

// WriteJSON writes the schedule set to w as indented JSON.
func WriteJSON(w io.Writer, set model.ScheduleSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

// WriteScheduleJSON writes a single schedule as a day to worker object.
func WriteScheduleJSON(w io.Writer, s model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one "day,worker" row per day. Unassigned days have an
// empty worker column.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "worker"}); err != nil {
		return err
	}
	for i, a := range s.Days() {
		if err := cw.Write([]string{strconv.Itoa(i + model.FirstDay), a.Worker}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes an aligned day/worker table for terminals.
func WriteText(w io.Writer, s model.Schedule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "DAY\tWORKER"); err != nil {
		return err
	}
	for i, a := range s.Days() {
		if _, err := fmt.Fprintf(tw, "%d\t%s\n", i+model.FirstDay, a); err != nil {
			return err
		}
	}
	return tw.Flush()
}

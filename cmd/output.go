package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/pca-scheduler/core/model"
	"github.com/kilianp07/pca-scheduler/pkg/export"
	"github.com/kilianp07/pca-scheduler/pkg/render"
)

// writeSchedule writes schedule s to path in format f.
func writeSchedule(path string, f export.Format, s model.Schedule, p model.Period, o render.Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	switch f {
	case export.FormatPNG:
		return render.WritePNG(file, s, p, o)
	case export.FormatJSON:
		return export.WriteScheduleJSON(file, s)
	case export.FormatCSV:
		return export.WriteCSV(file, s)
	case export.FormatText:
		return export.WriteText(file, s)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// writeSet writes every schedule of set to dir as schedule_N.<ext>. JSON is
// written once for the whole set as schedules.json.
func writeSet(dir string, formats []export.Format, set model.ScheduleSet, p model.Period, o render.Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, f := range formats {
		if f == export.FormatJSON {
			path := filepath.Join(dir, "schedules.json")
			if err := writeSetJSON(path, set); err != nil {
				return written, err
			}
			written = append(written, path)
			continue
		}
		for i, s := range set.Schedules {
			path := filepath.Join(dir, fmt.Sprintf("schedule_%d%s", i+1, f.Ext()))
			if err := writeSchedule(path, f, s, p, o); err != nil {
				return written, fmt.Errorf("%s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func writeSetJSON(path string, set model.ScheduleSet) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteJSON(file, set)
}

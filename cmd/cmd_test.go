package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pca-scheduler/config"
	"github.com/kilianp07/pca-scheduler/core/model"
	"github.com/kilianp07/pca-scheduler/core/scheduler"
)

func execute(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(in))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeRoster(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "team.yaml")
	data := `month: 2
year: 2024
workers:
  - name: Alice
    availability: "1-3"
  - name: Bob
    availability: "2-4"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "", "parse", "1-3,", "5")
	require.NoError(t, err)
	assert.Equal(t, "1, 2, 3, 5 (4 days)\n", out)

	_, err = execute(t, "", "parse", "3-1")
	assert.Error(t, err)
}

func TestGenerateCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "", "generate", "--roster", roster, "--count", "5", "--out", outDir,
		"--format", "png,json", "--format", "csv,text", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "generated 2 of 5 schedules for 2/2024")
	assert.Contains(t, out, "only 2 unique schedules exist")

	for _, name := range []string{
		"schedule_1.png", "schedule_2.png", "schedules.json",
		"schedule_1.csv", "schedule_2.csv", "schedule_1.txt", "schedule_2.txt",
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	b, err := os.ReadFile(filepath.Join(outDir, "schedules.json"))
	require.NoError(t, err)
	var set model.ScheduleSet
	require.NoError(t, json.Unmarshal(b, &set))
	assert.Len(t, set.Schedules, 2)
	assert.True(t, set.Exhausted)
	assert.Equal(t, 2, set.Trials)
}

func TestGenerateCommandFlagsOverrideRoster(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)
	out, err := execute(t, "", "generate", "-r", roster, "-o", dir, "-f", "csv", "--month", "3", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "generated 1 of 1 schedules for 3/2025")
	assert.FileExists(t, filepath.Join(dir, "schedule_1.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "schedule_1.png"))
}

func TestGenerateCommandErrors(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)

	_, err := execute(t, "", "generate")
	assert.Error(t, err, "roster is required")

	_, err = execute(t, "", "generate", "-r", roster, "-o", dir, "-f", "pdf")
	assert.Error(t, err)

	_, err = execute(t, "", "generate", "-r", roster, "-o", dir, "-f", "csv", "--publish")
	assert.ErrorContains(t, err, "broker")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers:\n  - name: Eve\n    availability: \"5-1\"\n"), 0o644))
	_, err = execute(t, "", "generate", "-r", bad, "-o", dir)
	assert.Error(t, err)
}

func TestGenerateCommandUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "team.json")
	require.NoError(t, os.WriteFile(roster, []byte(`{"workers":[{"name":"Alice","availability":"1-31"}]}`), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("calendar:\n  month: 12\n  year: 2023\ngenerator:\n  default_count: 3\n"), 0o644))

	out, err := execute(t, "", "-c", cfgPath, "generate", "-r", roster, "-o", dir, "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "generated 1 of 3 schedules for 12/2023")
}

func TestGenerateCommandReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "team.json")
	require.NoError(t, os.WriteFile(roster, []byte(`{"workers":[{"name":"Alice","availability":"1"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PCA_CALENDAR__MONTH=11\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("PCA_CALENDAR__MONTH")
	})

	out, err := execute(t, "", "generate", "-r", roster, "-o", dir, "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "for 11/2024")
}

func TestShellSession(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "s.csv")
	pngPath := filepath.Join(dir, "s.png")
	input := strings.Join([]string{
		"month 2 2024",
		"list",
		"add Alice 1-3",
		`add "Mary Ann" 2-4`,
		"add Eve 3-1",
		"list",
		"show 1",
		"generate 5",
		"show 1",
		"show 2 " + pngPath,
		"export 1 " + csvPath,
		"export 9 " + csvPath,
		"bogus",
		"quit",
		"list",
	}, "\n")

	out, err := execute(t, input, "shell", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "planning 2/2024")
	assert.Contains(t, out, "no workers")
	assert.Contains(t, out, "Alice: 1, 2, 3")
	assert.Contains(t, out, "Mary Ann: 2, 3, 4")
	assert.Contains(t, out, "error: worker Eve")
	assert.Contains(t, out, "error: no schedule 1 (have 0)")
	assert.Contains(t, out, "generated 2 schedules for 2/2024")
	assert.Contains(t, out, "DAY  WORKER")
	assert.Contains(t, out, "wrote "+csvPath)
	assert.Contains(t, out, "error: no schedule 9 (have 2)")
	assert.Contains(t, out, `error: unknown command "bogus"`)
	assert.FileExists(t, csvPath)
	assert.FileExists(t, pngPath)
	assert.Equal(t, 1, strings.Count(out, "no workers"), "commands after quit must not run")
}

func TestShellEndsOnEOF(t *testing.T) {
	out, err := execute(t, "help\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "generate [N]")
}

func TestSplitName(t *testing.T) {
	name, spec, err := splitName(`"Mary Ann" 1-3, 5`)
	require.NoError(t, err)
	assert.Equal(t, "Mary Ann", name)
	assert.Equal(t, "1-3, 5", spec)

	name, spec, err = splitName("Bob 7")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "7", spec)

	_, _, err = splitName(`"Mary 1-3`)
	assert.Error(t, err)
	_, _, err = splitName("Bob")
	assert.Error(t, err)
}

func TestPeriodPrecedence(t *testing.T) {
	c := &cli{cfg: &config.Config{Calendar: config.CalendarConfig{Month: 3, Year: 2023}}}

	p, err := c.period(scheduler.Roster{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.Period{Month: time.March, Year: 2023}, p)

	r := scheduler.Roster{Month: 5, Year: 2025}
	p, err = c.period(r, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.Period{Month: time.May, Year: 2025}, p)

	p, err = c.period(r, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, model.Period{Month: time.July, Year: 2025}, p)

	_, err = c.period(r, 13, 0)
	assert.Error(t, err)
}

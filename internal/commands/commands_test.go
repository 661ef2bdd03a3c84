package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tally-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tally")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tally")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "GEMINI_API_KEY=", "TALLY_SMTP_PASSWORD=")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initRepo runs tally init in a temp dir and copies fixtures into import/.
func initRepo(t *testing.T, fixtures ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runTally(t, "init", dir, "--name", "Sam")
	require.NoError(t, err, out)

	for _, name := range fixtures {
		data, err := os.ReadFile(filepath.Join("../../testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "import", name), data, 0o644))
	}
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runTally(t, "init", dir, "--name", "Sam")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized tally for Sam")

	expectedDirs := []string{
		"categories",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--name", "Sam", "--email", "sam@example.com")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Sam", cfg.Profile.Name)
	assert.Equal(t, "sam@example.com", cfg.Profile.Email)
	assert.Equal(t, 5, cfg.Reminders.HorizonDays)
}

func TestInit_CategoryMap(t *testing.T) {
	dir := initRepo(t)

	f, err := os.Open(filepath.Join(dir, "categories", "category-map.csv"))
	require.NoError(t, err)
	defer f.Close()

	mappings, err := categories.ReadMappings(f)
	require.NoError(t, err)
	assert.Len(t, mappings, len(categories.DefaultMappings()))
}

func TestInit_Gitignore(t *testing.T) {
	dir := initRepo(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{".env", "logs/"} {
		assert.Contains(t, string(data), pattern)
	}
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runTally(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := initRepo(t)
	out, err := runTally(t, "init", dir, "--name", "Again")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestCommands_RequireInit(t *testing.T) {
	out, err := runTally(t, "budget", "report", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "tally init")
}

func TestBudgetSet(t *testing.T) {
	dir := initRepo(t)

	out, err := runTally(t, "budget", "set", "2025-03", "Travel", "500", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Budget for Travel in 2025-03 set to $500.00")

	_, err = runTally(t, "budget", "set", "2025-03", "Travel", "450.5", "--repo", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.Budgets, 1)
	assert.Equal(t, "450.5", cfg.Budgets[0].Limit.String())
}

func TestBudgetSet_RejectsBadInput(t *testing.T) {
	dir := initRepo(t)

	out, err := runTally(t, "budget", "set", "--repo", dir, "--", "2025-03", "Travel", "-5")
	require.Error(t, err)
	assert.Contains(t, out, "invalid limit: -5.00 for Travel in 2025-03 is negative")

	_, err = runTally(t, "budget", "set", "March", "Travel", "5", "--repo", dir)
	require.Error(t, err)

	_, err = runTally(t, "budget", "set", "2025-03", "Travel", "lots", "--repo", dir)
	require.Error(t, err)

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Budgets)
}

func TestBudgetReport(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")
	_, err := runTally(t, "budget", "set", "2025-03", "Food & Dining", "300", "--repo", dir)
	require.NoError(t, err)
	_, err = runTally(t, "budget", "set", "2025-03", "Travel", "500", "--repo", dir)
	require.NoError(t, err)

	out, err := runTally(t, "budget", "report", "--repo", dir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Budget report for 2025-03")
	assert.Contains(t, out, "342.50")
	assert.Contains(t, out, "You exceeded your budget for Food & Dining by $42.50 in 2025-03.")
	assert.NotContains(t, out, "budget for Travel")
}

func TestBudgetReport_EarlierMonth(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")

	out, err := runTally(t, "budget", "report", "--month", "2025-01", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Budget report for 2025-01")
	assert.Contains(t, out, "No budget alerts.")
}

func TestBudgetReport_NoImports(t *testing.T) {
	dir := initRepo(t)
	out, err := runTally(t, "budget", "report", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions found")
}

func TestBills(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")

	out, err := runTally(t, "bills", "--today", "2025-03-31", "--repo", dir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Recurring payments:")
	assert.Contains(t, out, "Netflix")
	rent := strings.Index(out, "Recurring payment: Rent Payment ($1500.00) is due on 2025-04-01.")
	netflix := strings.Index(out, "Recurring payment: Netflix ($15.99) is due on 2025-04-05.")
	require.NotEqual(t, -1, rent, out)
	require.NotEqual(t, -1, netflix, out)
	assert.Less(t, rent, netflix)
}

func TestBills_Horizon(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")

	out, err := runTally(t, "bills", "--today", "2025-04-02", "--days", "2", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recurring bills due in the next 2 days.")

	_, err = runTally(t, "bills", "--today", "2025-04-02", "--days", "0", "--repo", dir)
	assert.Error(t, err)
}

func TestBills_ImportantWithoutKeyWarns(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")

	out, err := runTally(t, "bills", "--today", "2025-03-31", "--important", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "GEMINI_API_KEY not set")
	assert.Contains(t, out, "Rent Payment")
}

func TestBills_SendRequiresRecipient(t *testing.T) {
	dir := initRepo(t, "plaid_transactions.json")

	out, err := runTally(t, "bills", "--today", "2025-03-31", "--send", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no recipient")
}

func TestNormalize_Stdout(t *testing.T) {
	dir := initRepo(t, "chase_checking.csv")

	out, err := runTally(t, "normalize", "--repo", dir)
	require.NoError(t, err, out)
	assert.True(t, strings.HasPrefix(out, "id,date,merchant,amount,category,account\n"), out)
	assert.Contains(t, out, "chase-checking_20250103_GITHUBPROS,2025-01-03,GITHUB *PRO SUBSCRIPTION,4.00,Uncategorized,chase-checking")
}

func TestNormalize_Archive(t *testing.T) {
	dir := initRepo(t, "chase_checking.csv", "plaid_transactions.json")
	outFile := filepath.Join(dir, "import", "transactions.csv")

	out, err := runTally(t, "normalize", "--repo", dir, "--out", outFile, "--archive")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Wrote 18 transactions")
	assert.Contains(t, out, "Archived 2 import file(s)")

	for _, name := range []string{"chase_checking.csv", "plaid_transactions.json"} {
		_, err := os.Stat(filepath.Join(dir, "import", "processed", name))
		assert.NoError(t, err, name)
	}

	// The canonical file alone reproduces the report.
	out, err = runTally(t, "budget", "report", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "342.50")
}

func TestNormalize_ArchiveNeedsOut(t *testing.T) {
	dir := initRepo(t)
	_, err := runTally(t, "normalize", "--repo", dir, "--archive")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runTally(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "tally version dev")
}

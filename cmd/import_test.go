package cmd

import (
	"encoding/csv"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpass/fleetctl/internal/bulk"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/output"
)

const sampleCSV = "vin,make,model,year\n1FTFW1E50NFA00001,Ford,F-150,2023\n"

func TestImportUpload_AllSucceeded(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.bulk = model.BulkUploadResult{Total: 1, Success: 1, VehicleIDs: []string{"v-1"}}
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, orgAcme, env.api.bulkForm["organization_id"])
	assert.Equal(t, locAcme, env.api.bulkForm["location_id"])
	assert.Equal(t, sampleCSV, env.api.bulkFile)
	assert.Contains(t, res.stdout, "All 1 vehicles imported")

	// a complete import continues to the vehicle list
	assert.Equal(t, 1, env.api.count("GET", "/api/vehicles"))
	assert.Contains(t, res.stdout, "2022 Honda Accord")
}

func TestImportUpload_NoRedirect(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.bulk = model.BulkUploadResult{Total: 2, Success: 2}
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "-f", path, "--no-redirect")
	require.NoError(t, res.err, res.stderr)
	assert.Zero(t, env.api.count("GET", "/api/vehicles"))
}

func TestImportUpload_PartialFailure(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.bulk = model.BulkUploadResult{
		Total: 10, Success: 7, Failed: 3,
		Errors: []string{"Row 2: invalid VIN", "Row 5: missing make", "Row 9: invalid year"},
	}
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	mustExitCode(t, res.err, output.ExitValidationError)
	assert.Equal(t, "3 of 10 vehicles failed to import", res.err.Error())

	for _, e := range env.api.bulk.Errors {
		assert.Contains(t, res.stderr, e)
	}
	assert.Zero(t, env.api.count("GET", "/api/vehicles"), "no redirect after a partial failure")
	assert.Equal(t, 1, env.api.count("POST", "/api/vehicles/bulk-upload"))
}

func TestImportUpload_PartialFailureQuiet(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.bulk = model.BulkUploadResult{
		Total: 3, Success: 1, Failed: 2,
		Errors: []string{"Row 2: invalid VIN", "Row 3: missing make"},
	}
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "-q", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	mustExitCode(t, res.err, output.ExitValidationError)
	assert.Equal(t, "2 of 3 vehicles failed to import", res.err.Error())

	var cliErr *output.CLIError
	require.True(t, errors.As(res.err, &cliErr))
	assert.Equal(t, "1 imported, 2 failed", cliErr.Detail)
	for _, e := range env.api.bulk.Errors {
		assert.Contains(t, res.stderr, e)
	}
	assert.NotContains(t, res.stdout, "Upload Results")
}

func TestImportUpload_NotCSV(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	path := writeCSV(t, "fleet.xlsx", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	mustExitCode(t, res.err, output.ExitValidationError)
	assert.Equal(t, bulk.MsgNotCSV, res.err.Error())
	assert.Zero(t, env.api.count("POST", "/api/vehicles/bulk-upload"))
}

func TestImportUpload_MissingInputs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		missing string
	}{
		{"no file", []string{"--org", orgAcme, "--location", locAcme}, "missing --file"},
		{"no location", []string{"--org", orgAcme, "--file", "fleet.csv"}, "missing --location"},
		{"location without org", []string{"--location", locAcme, "--file", "fleet.csv"}, "missing --org"},
		{"nothing", nil, "missing --org, --location, --file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLI(t)
			env.login(t)

			args := append([]string{"import", "upload"}, tt.args...)
			res := env.run(t, "", args...)
			mustExitCode(t, res.err, output.ExitUsageError)
			assert.Equal(t, bulk.MsgMissingInputs, res.err.Error())

			var cliErr *output.CLIError
			require.True(t, errors.As(res.err, &cliErr))
			assert.Equal(t, tt.missing, cliErr.Detail)
			assert.Empty(t, env.api.calls(), "missing inputs are refused before any request")
		})
	}
}

func TestImportUpload_LocationOfOtherOrganization(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locBeta, "--file", path)
	mustExitCode(t, res.err, output.ExitValidationError)
	assert.Equal(t, bulk.MsgUnknownLocation, res.err.Error())
	assert.Zero(t, env.api.count("POST", "/api/vehicles/bulk-upload"))
}

func TestImportUpload_UnknownOrganization(t *testing.T) {
	env := setupCLI(t)
	env.login(t)

	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgGone, "--location", locOrph, "--file", path)
	mustExitCode(t, res.err, output.ExitValidationError)
	assert.Zero(t, env.api.count("POST", "/api/vehicles/bulk-upload"))
}

func TestImportUpload_PrefetchFailure(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.failWith("GET", "/api/locations", 500)

	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	mustExitCode(t, res.err, output.ExitAPIError)
	assert.Equal(t, "Failed to fetch organizations and locations", res.err.Error())
}

func TestImportUpload_ServerRejects(t *testing.T) {
	env := setupCLI(t)
	env.login(t)
	env.api.failWith("POST", "/api/vehicles/bulk-upload", 400)
	path := writeCSV(t, "fleet.csv", sampleCSV)

	res := env.run(t, "", "import", "upload", "--org", orgAcme, "--location", locAcme, "--file", path)
	mustExitCode(t, res.err, output.ExitAPIError)
	assert.Equal(t, "Bad Request", res.err.Error())
}

func TestImportTemplate(t *testing.T) {
	env := setupCLI(t)
	env.login(t)

	res := env.run(t, "", "import", "template")
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(bulk.TemplateFileName)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, bulk.TemplateHeader, records[0])
	assert.Empty(t, env.api.calls(), "the template needs no network")

	res = env.run(t, "", "import", "template")
	mustExitCode(t, res.err, output.ExitUsageError)

	res = env.run(t, "", "import", "template", "--force")
	require.NoError(t, res.err)
}

func TestImportTemplate_Stdout(t *testing.T) {
	env := setupCLI(t)
	env.login(t)

	res := env.run(t, "", "import", "template", "-o", "-")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "vin,make,model,year,"))

	res = env.run(t, "", "-q", "import", "template", "-o", "-")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "vin,make,model,year,"), "quiet mode still writes the template")
}

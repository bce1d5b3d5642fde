package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBatch = `
shifts:
  - id: shift-1
    client_id: client-1
    site_name: Riverside
    date: "2024-03-04"
    start_time: "09:00"
    end_time: "17:00"
    hourly_rate: "30.00"
    assignments:
      - id: a-1
        guard_name: Alice
        check_in_time: "2024-03-04 09:12"
        check_out_time: "2024-03-04 17:00"
        break_minutes: 30
        status: completed
      - id: a-2
        guard_name: Bob
        check_in_time: "2024-03-04 09:00"
        status: checked-in
  - id: shift-2
    client_id: client-1
    site_name: Depot
    date: "2024-03-04"
    start_time: "22:00"
    end_time: "06:00"
    assignments:
      - id: a-3
        guard_name: Cara
        check_in_time: "2024-03-04 22:00"
        check_out_time: "2024-03-05 07:30"
        status: completed
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"evaluate", "invoice", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestLoadBatch(t *testing.T) {
	batch, err := LoadBatch(writeTemp(t, "batch.yaml", testBatch))
	require.NoError(t, err)

	require.Len(t, batch.Shifts, 2)
	assert.Equal(t, "09:00", batch.Shifts[0].StartTime)
	assert.Equal(t, "2024-03-04", batch.Shifts[0].Date)
	require.Len(t, batch.Shifts[0].Assignments, 2)
	assert.Equal(t, 30, batch.Shifts[0].Assignments[0].BreakMinutes)

	shifts, byShift := batch.ToDomain()
	require.Len(t, shifts, 2)
	require.NotNil(t, shifts[0].HourlyRate)
	assert.Equal(t, "30", shifts[0].HourlyRate.String())
	assert.Nil(t, shifts[1].HourlyRate)
	assert.Len(t, byShift["shift-1"], 2)
	assert.Equal(t, "shift-2", byShift["shift-2"][0].ShiftID)
}

func TestLoadBatch_DefaultIDs(t *testing.T) {
	batch, err := LoadBatch(writeTemp(t, "batch.yaml", `
shifts:
  - start_time: "08:00"
    end_time: "12:00"
    assignments:
      - break_minutes: 0
`))
	require.NoError(t, err)

	assert.Equal(t, "shift-1", batch.Shifts[0].ID)
	assert.Equal(t, "shift-1-a1", batch.Shifts[0].Assignments[0].ID)
}

func TestLoadBatch_Errors(t *testing.T) {
	_, err := LoadBatch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadBatch(writeTemp(t, "bad.yaml", "shifts:\n  - hourly_rate: cheap\n"))
	assert.ErrorContains(t, err, "hourly_rate")
}

func TestEvaluate_JSON(t *testing.T) {
	out, err := run(t, "evaluate", "-f", writeTemp(t, "batch.yaml", testBatch), "--format", "json")
	require.NoError(t, err)

	var rows []struct {
		AssignmentID   string   `json:"assignment_id"`
		Status         string   `json:"status"`
		ScheduledHours float64  `json:"scheduled_hours"`
		ActualHours    *float64 `json:"actual_hours"`
		Violations     []struct {
			Kind string `json:"kind"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "a-1", rows[0].AssignmentID)
	assert.Equal(t, "complete", rows[0].Status)
	require.NotNil(t, rows[0].ActualHours)
	assert.Equal(t, 7.8, *rows[0].ActualHours)
	require.Len(t, rows[0].Violations, 1)
	assert.Equal(t, "late", rows[0].Violations[0].Kind)

	assert.Equal(t, "in-progress", rows[1].Status)
	assert.Nil(t, rows[1].ActualHours)
	assert.Empty(t, rows[1].Violations)

	assert.Equal(t, "overtime", rows[2].Status)
	assert.Equal(t, 8.0, rows[2].ScheduledHours)
	kinds := []string{}
	for _, v := range rows[2].Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []string{"overtime", "break"}, kinds)
}

func TestEvaluate_RulesOverride(t *testing.T) {
	rules := writeTemp(t, "rules.yaml", "rules:\n  lateness_grace_minutes: 15\n")

	out, err := run(t, "evaluate", "-f", writeTemp(t, "batch.yaml", testBatch), "--rules", rules)
	require.NoError(t, err)

	assert.Contains(t, out, "SHIFT")
	assert.NotContains(t, out, "Late by")
	assert.Contains(t, out, "Overtime 1.50h")
}

func TestEvaluateBatch_Text(t *testing.T) {
	out, err := run(t, "evaluate", "-f", writeTemp(t, "batch.yaml", testBatch))
	require.NoError(t, err)

	assert.Contains(t, out, "Late by 12m")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "N/A")
}

func TestEvaluateBatch_DirectCall(t *testing.T) {
	batch, err := LoadBatch(writeTemp(t, "batch.yaml", testBatch))
	require.NoError(t, err)

	rows := EvaluateBatch(nil, batch, timesheet.DefaultRuleConfig())

	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0].GuardName)
}

func TestInvoice_JSON(t *testing.T) {
	out, err := run(t, "invoice", "-f", writeTemp(t, "batch.yaml", testBatch), "--format", "json")
	require.NoError(t, err)

	var draft InvoiceDraft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))

	require.Len(t, draft.Items, 2)
	assert.Equal(t, "Alice – Riverside – 2024-03-04", draft.Items[0].Description)
	assert.Equal(t, "7.80", draft.Items[0].Quantity)
	assert.Equal(t, "234.00", draft.Items[0].Amount)
	assert.Equal(t, "a-3", draft.Items[1].AssignmentID)
	assert.Equal(t, "25.00", draft.Items[1].Rate)
	assert.Equal(t, "237.50", draft.Items[1].Amount)

	assert.Equal(t, "471.50", draft.Totals.Subtotal)
	assert.Equal(t, "20", draft.Totals.TaxRatePercent)
	assert.Equal(t, "94.30", draft.Totals.TaxAmount)
	assert.Equal(t, "565.80", draft.Totals.Total)
}

func TestInvoice_TaxFlag(t *testing.T) {
	path := writeTemp(t, "batch.yaml", testBatch)

	out, err := run(t, "invoice", "-f", path, "--tax", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax (0%)")
	assert.Contains(t, out, "471.50")

	_, err = run(t, "invoice", "-f", path, "--tax", "120")
	assert.Error(t, err)

	_, err = run(t, "invoice", "-f", path, "--tax", "lots")
	assert.Error(t, err)
}

func TestInvoice_RequiresFile(t *testing.T) {
	_, err := run(t, "invoice")
	assert.Error(t, err)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := run(t, "evaluate", "-f", writeTemp(t, "batch.yaml", testBatch), "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--secret", "dev-secret", "--company", "company-1", "--role", "guard", "--guard", "guard-1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	svc, err := jwt.NewJWTService("dev-secret", "1h")
	require.NoError(t, err)
	token, err := svc.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	guardID, ok := token.Get("guard_id")
	require.True(t, ok)
	assert.Equal(t, "guard-1", guardID)
}

func TestToken_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := run(t, "token", "--company", "company-1")
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")

	_, err = run(t, "token", "--secret", "s", "--company", "company-1", "--role", "admin")
	assert.ErrorContains(t, err, "invalid role")

	_, err = run(t, "token", "--secret", "s", "--company", "company-1", "--role", "guard")
	assert.Error(t, err)
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	timesheetService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/timesheet"
	"github.com/spf13/cobra"
)

// EvaluationRow is one evaluated assignment of a batch.
type EvaluationRow struct {
	ShiftID        string                `json:"shift_id"`
	AssignmentID   string                `json:"assignment_id"`
	GuardName      string                `json:"guard_name,omitempty"`
	Status         timesheet.Status      `json:"status"`
	StatusLabel    string                `json:"status_label"`
	ScheduledHours float64               `json:"scheduled_hours"`
	ActualHours    timesheet.Hours       `json:"actual_hours"`
	Violations     []timesheet.Violation `json:"violations"`
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "evaluate -f batch.yaml",
		Short: "Print status and violations for every assignment in a batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, _, err := loadSettings(rootOpts)
			if err != nil {
				return err
			}
			batch, err := LoadBatch(file)
			if err != nil {
				return err
			}

			rows := EvaluateBatch(timesheetService.NewRuleEngine(), batch, rules)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return printEvaluation(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// EvaluateBatch runs the rule engine on every assignment in batch order.
func EvaluateBatch(engine *timesheetService.RuleEngine, batch Batch, rules timesheet.RuleConfig) []EvaluationRow {
	if engine == nil {
		engine = timesheetService.NewRuleEngine()
	}
	shifts, byShift := batch.ToDomain()

	rows := make([]EvaluationRow, 0)
	for _, shift := range shifts {
		for _, record := range byShift[shift.ID] {
			eval := engine.Evaluate(record, shift, rules)
			row := EvaluationRow{
				ShiftID:        shift.ID,
				AssignmentID:   record.ID,
				Status:         eval.Status,
				StatusLabel:    eval.Status.Label(),
				ScheduledHours: timesheet.Round2(eval.ScheduledHours),
				ActualHours:    eval.ActualHours,
				Violations:     eval.Violations,
			}
			if row.Violations == nil {
				row.Violations = []timesheet.Violation{}
			}
			if record.GuardName != nil {
				row.GuardName = *record.GuardName
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func printEvaluation(w io.Writer, rows []EvaluationRow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SHIFT\tASSIGNMENT\tGUARD\tSTATUS\tSCHEDULED\tACTUAL\tVIOLATIONS")
	for _, row := range rows {
		violations := strings.Join(timesheet.Messages(row.Violations), "; ")
		if violations == "" {
			violations = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			row.ShiftID, row.AssignmentID, row.GuardName, row.StatusLabel,
			row.ScheduledHours, row.ActualHours, violations)
	}
	return tw.Flush()
}

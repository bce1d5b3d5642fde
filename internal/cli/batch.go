package cli

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/config"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Batch is the YAML input of evaluate and invoice.
type Batch struct {
	Shifts []BatchShift `yaml:"shifts"`
}

type BatchShift struct {
	timesheet.EvaluateShift `yaml:",inline"`

	ID          string            `yaml:"id"`
	ClientID    string            `yaml:"client_id"`
	SiteName    string            `yaml:"site_name"`
	HourlyRate  string            `yaml:"hourly_rate"` // defaults to the billing rate
	Assignments []BatchAssignment `yaml:"assignments"`
}

type BatchAssignment struct {
	timesheet.EvaluateRecord `yaml:",inline"`

	ID        string `yaml:"id"`
	GuardName string `yaml:"guard_name"`
}

// LoadBatch reads a batch file. Shift and assignment ids default to their
// position when left out.
func LoadBatch(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to read batch file: %w", err)
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return Batch{}, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}

	for i := range batch.Shifts {
		shift := &batch.Shifts[i]
		if shift.ID == "" {
			shift.ID = fmt.Sprintf("shift-%d", i+1)
		}
		if shift.HourlyRate != "" {
			if _, err := decimal.NewFromString(shift.HourlyRate); err != nil {
				return Batch{}, fmt.Errorf("shift %s: invalid hourly_rate %q", shift.ID, shift.HourlyRate)
			}
		}
		for j := range shift.Assignments {
			if shift.Assignments[j].ID == "" {
				shift.Assignments[j].ID = fmt.Sprintf("%s-a%d", shift.ID, j+1)
			}
		}
	}

	return batch, nil
}

// ToDomain converts the batch into engine inputs. Malformed times are
// treated as absent, as in ad-hoc evaluation.
func (b Batch) ToDomain() ([]timesheet.ShiftSchedule, map[string][]timesheet.AttendanceRecord) {
	shifts := make([]timesheet.ShiftSchedule, 0, len(b.Shifts))
	byShift := make(map[string][]timesheet.AttendanceRecord, len(b.Shifts))

	for _, bs := range b.Shifts {
		var shift timesheet.ShiftSchedule
		records := make([]timesheet.AttendanceRecord, 0, len(bs.Assignments))

		for _, ba := range bs.Assignments {
			record, s := timesheet.EvaluateRequest{Shift: bs.EvaluateShift, Record: ba.EvaluateRecord}.ToDomain()
			shift = s
			record.ID = ba.ID
			record.ShiftID = bs.ID
			if ba.GuardName != "" {
				name := ba.GuardName
				record.GuardName = &name
			}
			records = append(records, record)
		}
		if len(bs.Assignments) == 0 {
			_, shift = timesheet.EvaluateRequest{Shift: bs.EvaluateShift}.ToDomain()
		}

		shift.ID = bs.ID
		shift.ClientID = bs.ClientID
		if bs.SiteName != "" {
			name := bs.SiteName
			shift.SiteName = &name
		}
		if rate, err := decimal.NewFromString(bs.HourlyRate); err == nil {
			shift.HourlyRate = &rate
		}

		shifts = append(shifts, shift)
		byShift[bs.ID] = records
	}

	return shifts, byShift
}

// loadSettings returns the defaults overlaid with the --rules file.
func loadSettings(opts *RootOptions) (timesheet.RuleConfig, billing.BillingConfig, error) {
	rules := timesheet.DefaultRuleConfig()
	billingCfg := billing.DefaultBillingConfig()

	if opts.RulesFile == "" {
		return rules, billingCfg, nil
	}
	if err := config.LoadRulesFile(opts.RulesFile, &rules, &billingCfg); err != nil {
		return rules, billingCfg, err
	}
	if err := rules.Validate(); err != nil {
		return rules, billingCfg, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, billingCfg, nil
}

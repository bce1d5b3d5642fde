package timesheet

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
)

// RuleConfig holds the compliance thresholds applied to every timesheet.
type RuleConfig struct {
	LatenessGraceMinutes   int     `yaml:"lateness_grace_minutes" json:"lateness_grace_minutes"`
	EarlyGraceMinutes      int     `yaml:"early_grace_minutes" json:"early_grace_minutes"`
	OvertimeSlackHours     float64 `yaml:"overtime_slack_hours" json:"overtime_slack_hours"`
	OvertimeThresholdHours float64 `yaml:"overtime_threshold_hours" json:"overtime_threshold_hours"`
	BreakMinutesRequired   int     `yaml:"break_minutes_required" json:"break_minutes_required"`
	BreakMinHours          float64 `yaml:"break_min_hours" json:"break_min_hours"`
	ShortHoursRatio        float64 `yaml:"short_hours_ratio" json:"short_hours_ratio"`
	OvertimeHoursRatio     float64 `yaml:"overtime_hours_ratio" json:"overtime_hours_ratio"`
}

const (
	DefaultLatenessGraceMinutes   = 5
	DefaultEarlyGraceMinutes      = 5
	DefaultOvertimeSlackHours     = 0.25
	DefaultOvertimeThresholdHours = 12
	DefaultBreakMinutesRequired   = 30
	DefaultBreakMinHours          = 6
	DefaultShortHoursRatio        = 0.9
	DefaultOvertimeHoursRatio     = 1.1
)

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		LatenessGraceMinutes:   DefaultLatenessGraceMinutes,
		EarlyGraceMinutes:      DefaultEarlyGraceMinutes,
		OvertimeSlackHours:     DefaultOvertimeSlackHours,
		OvertimeThresholdHours: DefaultOvertimeThresholdHours,
		BreakMinutesRequired:   DefaultBreakMinutesRequired,
		BreakMinHours:          DefaultBreakMinHours,
		ShortHoursRatio:        DefaultShortHoursRatio,
		OvertimeHoursRatio:     DefaultOvertimeHoursRatio,
	}
}

func (c RuleConfig) Validate() error {
	var errs validator.ValidationErrors

	if c.LatenessGraceMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "lateness_grace_minutes", Message: "must be non-negative"})
	}
	if c.EarlyGraceMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "early_grace_minutes", Message: "must be non-negative"})
	}
	if c.OvertimeSlackHours < 0 {
		errs = append(errs, validator.ValidationError{Field: "overtime_slack_hours", Message: "must be non-negative"})
	}
	if c.OvertimeThresholdHours <= 0 {
		errs = append(errs, validator.ValidationError{Field: "overtime_threshold_hours", Message: "must be greater than 0"})
	}
	if c.BreakMinutesRequired < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes_required", Message: "must be non-negative"})
	}
	if c.BreakMinHours < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_min_hours", Message: "must be non-negative"})
	}
	if c.ShortHoursRatio <= 0 || c.ShortHoursRatio > 1 {
		errs = append(errs, validator.ValidationError{Field: "short_hours_ratio", Message: "must be in (0, 1]"})
	}
	if c.OvertimeHoursRatio < 1 {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours_ratio", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ViolationKind identifies which compliance rule a record broke.
type ViolationKind string

const (
	ViolationLate       ViolationKind = "late"
	ViolationEarlyLeave ViolationKind = "early_leave"
	ViolationOvertime   ViolationKind = "overtime"
	ViolationBreak      ViolationKind = "break"
)

// Violation is one rule breach. Minutes is set for late/early-leave,
// Hours for overtime, BreakTaken/BreakRequired for break shortfalls.
type Violation struct {
	Kind          ViolationKind
	Minutes       int
	Hours         float64
	BreakTaken    int
	BreakRequired int
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationLate:
		return fmt.Sprintf("Late by %dm", v.Minutes)
	case ViolationEarlyLeave:
		return fmt.Sprintf("Left early by %dm", v.Minutes)
	case ViolationOvertime:
		return fmt.Sprintf("Overtime %.2fh", v.Hours)
	case ViolationBreak:
		return fmt.Sprintf("Break short/missing (%d/%dm)", v.BreakTaken, v.BreakRequired)
	}
	return string(v.Kind)
}

func (v Violation) MarshalJSON() ([]byte, error) {
	return json.Marshal(ViolationResponse{
		Kind:    string(v.Kind),
		Message: v.String(),
	})
}

// Messages renders violations in order.
func Messages(violations []Violation) []string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.String())
	}
	return msgs
}

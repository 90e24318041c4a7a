// Package seed loads staff and shifts from CSV exports of agency rotas.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/utils"
)

type StaffCreator interface {
	CreateStaff(ctx context.Context, s *domain.Staff) error
}

type ShiftCreator interface {
	CreateShift(ctx context.Context, shift *domain.Shift) error
}

var (
	StaffHeaders = []string{"first_name", "last_name", "email", "phone", "role"}
	ShiftHeaders = []string{"client_id", "role", "date", "start_time", "end_time", "break_minutes", "pay_rate", "charge_rate", "urgency", "location", "notes"}
)

// Summary counts the rows of one import. Rows are imported one by one, a bad
// row is logged and skipped.
type Summary struct {
	Imported int
	Skipped  int
}

// readRecords reads a CSV with a header row into maps keyed by column name.
// Every required column must be present.
func readRecords(r io.Reader, required []string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	for _, col := range required {
		if !slices.Contains(headers, col) {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []map[string]string
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		record := make(map[string]string, len(headers))
		for i, value := range row {
			if i < len(headers) {
				record[headers[i]] = strings.TrimSpace(value)
			}
		}
		records = append(records, record)
	}

	return records, nil
}

func ImportStaff(ctx context.Context, repo StaffCreator, r io.Reader, agencyID int64) (Summary, error) {
	var sum Summary

	records, err := readRecords(r, StaffHeaders)
	if err != nil {
		return sum, err
	}

	for line, rec := range records {
		role := domain.StaffRole(rec["role"])
		if !slices.Contains(domain.StaffRoles, role) {
			slog.Warn("skipping staff row", "line", line+2, "error", fmt.Sprintf("unknown role %q", rec["role"]))
			sum.Skipped++
			continue
		}
		if rec["first_name"] == "" || rec["email"] == "" {
			slog.Warn("skipping staff row", "line", line+2, "error", "first_name and email are required")
			sum.Skipped++
			continue
		}

		staff := &domain.Staff{
			AgencyID:  agencyID,
			FirstName: rec["first_name"],
			LastName:  rec["last_name"],
			Email:     rec["email"],
			Phone:     rec["phone"],
			Role:      role,
			Status:    domain.StaffStatusActive,
		}
		if err := repo.CreateStaff(ctx, staff); err != nil {
			slog.Warn("skipping staff row", "line", line+2, "email", staff.Email, "error", err)
			sum.Skipped++
			continue
		}
		sum.Imported++
	}

	return sum, nil
}

func ImportShifts(ctx context.Context, repo ShiftCreator, r io.Reader, agencyID int64) (Summary, error) {
	var sum Summary

	records, err := readRecords(r, ShiftHeaders[:8])
	if err != nil {
		return sum, err
	}

	for line, rec := range records {
		shift, err := parseShift(rec, agencyID)
		if err != nil {
			slog.Warn("skipping shift row", "line", line+2, "error", err)
			sum.Skipped++
			continue
		}

		if err := repo.CreateShift(ctx, shift); err != nil {
			slog.Warn("skipping shift row", "line", line+2, "error", err)
			sum.Skipped++
			continue
		}
		sum.Imported++
	}

	return sum, nil
}

func parseShift(rec map[string]string, agencyID int64) (*domain.Shift, error) {
	clientID, err := strconv.ParseInt(rec["client_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id %q", rec["client_id"])
	}

	role := domain.StaffRole(rec["role"])
	if !slices.Contains(domain.StaffRoles, role) {
		return nil, fmt.Errorf("unknown role %q", rec["role"])
	}

	date, err := time.Parse("2006-01-02", rec["date"])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", rec["date"])
	}

	var breakMinutes int64
	if v := rec["break_minutes"]; v != "" {
		if breakMinutes, err = strconv.ParseInt(v, 10, 32); err != nil {
			return nil, fmt.Errorf("invalid break_minutes %q", v)
		}
	}

	payRate, err := strconv.ParseFloat(rec["pay_rate"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid pay_rate %q", rec["pay_rate"])
	}
	chargeRate, err := strconv.ParseFloat(rec["charge_rate"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid charge_rate %q", rec["charge_rate"])
	}

	urgency := domain.Urgency(rec["urgency"])
	switch urgency {
	case "":
		urgency = domain.UrgencyNormal
	case domain.UrgencyNormal, domain.UrgencyUrgent, domain.UrgencyCritical:
	default:
		return nil, fmt.Errorf("unknown urgency %q", rec["urgency"])
	}

	shift := &domain.Shift{
		AgencyID:     agencyID,
		ClientID:     clientID,
		RoleRequired: role,
		Date:         date,
		StartTime:    rec["start_time"],
		EndTime:      rec["end_time"],
		BreakMinutes: int32(breakMinutes),
		PayRate:      payRate,
		ChargeRate:   chargeRate,
		Urgency:      urgency,
		Notes:        rec["notes"],
	}
	if loc := rec["location"]; loc != "" {
		shift.WorkLocation = &loc
	}

	if err := utils.ValidateShiftTimes(shift); err != nil {
		return nil, err
	}
	if err := utils.ValidateRates(payRate, chargeRate); err != nil {
		return nil, err
	}
	shift.DurationHours, _ = domain.SpanHours(shift.StartTime, shift.EndTime)

	return shift, nil
}

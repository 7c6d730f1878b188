package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func (s *Service) financial(ctx context.Context, period model.Period) (*model.ReportTable, error) {
	bills, err := s.store.Bills.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	patients, err := s.patientNames(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count int
		total decimal.Decimal
	}
	statuses := []model.BillStatus{model.BillStatusPaid, model.BillStatusPending, model.BillStatusOverdue}
	byStatus := map[model.BillStatus]*bucket{}
	for _, st := range statuses {
		byStatus[st] = &bucket{total: decimal.Zero}
	}

	var inPeriod []*model.Bill
	grand, tax := decimal.Zero, decimal.Zero
	for _, b := range bills {
		if !period.Contains(b.Date) {
			continue
		}
		inPeriod = append(inPeriod, b)
		if bk, ok := byStatus[b.Status]; ok {
			bk.count++
			bk.total = bk.total.Add(b.Total)
		}
		grand = grand.Add(b.Total)
		tax = tax.Add(b.Tax)
	}
	sort.SliceStable(inPeriod, func(i, j int) bool { return inPeriod[i].Date.Before(inPeriod[j].Date) })

	summary := model.ReportSection{Heading: "Summary by status", Columns: []string{"Status", "Bills", "Amount"}}
	for _, st := range statuses {
		bk := byStatus[st]
		summary.Rows = append(summary.Rows, []string{string(st), strconv.Itoa(bk.count), money(bk.total)})
	}
	summary.Rows = append(summary.Rows,
		[]string{"total", strconv.Itoa(len(inPeriod)), money(grand)},
		[]string{"tax collected", "", money(tax)},
	)

	detail := model.ReportSection{Heading: "Bills", Columns: []string{"Date", "Patient", "Status", "Subtotal", "Tax", "Total"}}
	for _, b := range inPeriod {
		detail.Rows = append(detail.Rows, []string{
			b.Date.Format(model.DateLayout), patients[b.PatientID], string(b.Status),
			money(b.Subtotal), money(b.Tax), money(b.Total),
		})
	}
	return &model.ReportTable{Sections: []model.ReportSection{summary, detail}}, nil
}

func (s *Service) clinical(ctx context.Context, period model.Period) (*model.ReportTable, error) {
	apts, err := s.appointmentsIn(ctx, period)
	if err != nil {
		return nil, err
	}
	labs, err := s.store.LabResults.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}

	byType := map[string]int{}
	byStatus := map[string]int{}
	for _, a := range apts {
		byType[string(a.Type)]++
		byStatus[string(a.Status)]++
	}

	completed := 0
	critical := model.ReportSection{Heading: "Critical findings", Columns: []string{"Date", "Patient", "Test", "Parameter", "Value", "Reference"}}
	for _, r := range labs {
		if r.Status != model.LabStatusCompleted || r.CompletedDate == nil || !period.Contains(*r.CompletedDate) {
			continue
		}
		completed++
		for _, v := range r.Results {
			if v.Flag != model.ResultFlagCritical {
				continue
			}
			critical.Rows = append(critical.Rows, []string{
				r.CompletedDate.In(s.loc).Format(model.DateLayout), r.PatientName, r.TestType,
				v.Parameter, v.Value + " " + v.Unit, v.ReferenceRange,
			})
		}
	}

	summary := model.ReportSection{Heading: "Summary", Columns: []string{"Metric", "Value"}, Rows: [][]string{
		{"appointments", strconv.Itoa(len(apts))},
		{"lab results completed", strconv.Itoa(completed)},
		{"critical findings", strconv.Itoa(len(critical.Rows))},
	}}
	return &model.ReportTable{Sections: []model.ReportSection{
		summary,
		countSection("Appointments by type", "Type", byType),
		countSection("Appointments by status", "Status", byStatus),
		critical,
	}}, nil
}

func (s *Service) inventory(ctx context.Context) (*model.ReportTable, error) {
	items, err := s.store.Inventory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	now := s.now()
	value := decimal.Zero
	low, expiring := 0, 0
	detail := model.ReportSection{Heading: "Items", Columns: []string{"Name", "SKU", "Category", "Quantity", "Min stock", "Value", "Status"}}
	for _, item := range items {
		value = value.Add(item.Value())
		var flags []string
		if item.LowStock() {
			low++
			flags = append(flags, "low stock")
		}
		if item.ExpiringWithin(now, inventory.DefaultExpiryWindow) {
			expiring++
			flags = append(flags, "expiring")
		}
		if label := item.ExpiryLabel(now); label == model.ExpiryLabelExpired {
			flags = append(flags, label)
		}
		status := "ok"
		if len(flags) > 0 {
			status = strings.Join(flags, ", ")
		}
		detail.Rows = append(detail.Rows, []string{
			item.Name, item.SKU, string(item.Category), strconv.Itoa(item.Quantity),
			strconv.Itoa(item.MinStock), money(item.Value()), status,
		})
	}

	summary := model.ReportSection{Heading: "Summary", Columns: []string{"Metric", "Value"}, Rows: [][]string{
		{"items", strconv.Itoa(len(items))},
		{"low stock", strconv.Itoa(low)},
		{"expiring", strconv.Itoa(expiring)},
		{"total value", money(value)},
	}}
	return &model.ReportTable{Sections: []model.ReportSection{summary, detail}}, nil
}

func (s *Service) staff(ctx context.Context, period model.Period) (*model.ReportTable, error) {
	members, err := s.store.Staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	apts, err := s.appointmentsIn(ctx, period)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	total := map[uuid.UUID]int{}
	done := map[uuid.UUID]int{}
	for _, a := range apts {
		total[a.VeterinarianID]++
		if a.Status == model.AppointmentStatusCompleted {
			done[a.VeterinarianID]++
		}
	}

	section := model.ReportSection{
		Heading: "Performance",
		Columns: []string{"Name", "Role", "Status", "Appointments", "Completed", "Completion rate"},
	}
	for _, m := range members {
		section.Rows = append(section.Rows, []string{
			m.Name, string(m.Role), string(m.Status),
			strconv.Itoa(total[m.ID]), strconv.Itoa(done[m.ID]), CompletionRate(done[m.ID], total[m.ID]),
		})
	}
	return &model.ReportTable{Sections: []model.ReportSection{section}}, nil
}

// CompletionRate formats completed/total as a percentage with one decimal.
func CompletionRate(completed, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(completed)*100/float64(total))
}

func (s *Service) appointmentsIn(ctx context.Context, period model.Period) ([]*model.Appointment, error) {
	all, err := s.store.Appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	var out []*model.Appointment
	for _, a := range all {
		day, err := model.ParseDate(a.Date, s.loc)
		if err != nil || !period.Contains(day) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) patientNames(ctx context.Context) (map[uuid.UUID]string, error) {
	patients, err := s.store.Patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	names := make(map[uuid.UUID]string, len(patients))
	for _, p := range patients {
		names[p.ID] = p.Name
	}
	return names, nil
}

func countSection(heading, label string, counts map[string]int) model.ReportSection {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	section := model.ReportSection{Heading: heading, Columns: []string{label, "Count"}}
	for _, k := range keys {
		section.Rows = append(section.Rows, []string{k, strconv.Itoa(counts[k])})
	}
	return section
}

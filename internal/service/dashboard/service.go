package dashboard

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/heva-hub/assistant/backend/internal/service/reply"
	"github.com/xuri/excelize/v2"
)

const (
	SheetOverview   = "Overview"
	SheetMonthly    = "Monthly"
	SheetTopQueries = "Top Queries"
	SheetActivity   = "Activity"
)

// Stat is a headline figure with its month-over-month change.
type Stat struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Change     string `json:"change"`
	ChangeType string `json:"changeType"`
}

// TopQuery is a frequently asked question.
type TopQuery struct {
	Question   string `json:"question"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	User   string `json:"user"`
	Action string `json:"action"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// MonthlyPoint is one month of query and grant volume.
type MonthlyPoint struct {
	Month   string `json:"month"`
	Queries int    `json:"queries"`
	Grants  int    `json:"grants"`
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	Stats          []Stat                `json:"stats"`
	TopQueries     []TopQuery            `json:"topQueries"`
	RecentActivity []Activity            `json:"recentActivity"`
	Monthly        []MonthlyPoint        `json:"monthly"`
	LiveQueries    []reply.CategoryCount `json:"liveQueries"`
	LiveTotal      int                   `json:"liveTotal"`
}

// QueryCounter reports how many utterances were routed to each category.
type QueryCounter interface {
	Counts() []reply.CategoryCount
	Total() int
}

// Service assembles the analytics dashboard.
type Service struct {
	counter QueryCounter
}

// NewService creates a dashboard backed by the live query counter.
func NewService(counter QueryCounter) *Service {
	return &Service{counter: counter}
}

// Snapshot returns the seeded analytics plus live query counts.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	snap := seed()
	if s.counter != nil {
		snap.LiveQueries = s.counter.Counts()
		snap.LiveTotal = s.counter.Total()
	}
	return snap
}

// WriteXLSX writes the snapshot as a workbook with one sheet per section.
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer) error {
	snap := s.Snapshot(ctx)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[dashboard] close workbook: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetTopQueries, SheetActivity} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	overview := [][]interface{}{{"Metric", "Value", "Change"}}
	for _, stat := range snap.Stats {
		overview = append(overview, []interface{}{stat.Name, stat.Value, stat.Change})
	}
	overview = append(overview, []interface{}{"Live Queries", snap.LiveTotal, ""})
	for _, c := range snap.LiveQueries {
		overview = append(overview, []interface{}{"Live: " + c.Category, c.Count, ""})
	}

	monthly := [][]interface{}{{"Month", "Queries", "Grants"}}
	for _, p := range snap.Monthly {
		monthly = append(monthly, []interface{}{p.Month, p.Queries, p.Grants})
	}

	queries := [][]interface{}{{"Question", "Count", "Percentage"}}
	for _, q := range snap.TopQueries {
		queries = append(queries, []interface{}{q.Question, q.Count, q.Percentage})
	}

	activity := [][]interface{}{{"User", "Action", "Time", "Status"}}
	for _, a := range snap.RecentActivity {
		activity = append(activity, []interface{}{a.User, a.Action, a.Time, a.Status})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetOverview, overview},
		{SheetMonthly, monthly},
		{SheetTopQueries, queries},
		{SheetActivity, activity},
	}
	for _, sheet := range sheets {
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, header); err != nil {
			return fmt.Errorf("style header %s: %w", sheet.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func seed() Snapshot {
	return Snapshot{
		Stats: []Stat{
			{Name: "Total Queries", Value: "2,847", Change: "+12.5%", ChangeType: "increase"},
			{Name: "Active Users", Value: "1,234", Change: "+8.2%", ChangeType: "increase"},
			{Name: "Grants Processed", Value: "156", Change: "+23.1%", ChangeType: "increase"},
			{Name: "Funding Distributed", Value: "$2.4M", Change: "+15.3%", ChangeType: "increase"},
		},
		TopQueries: []TopQuery{
			{Question: "How to apply for funding?", Count: 342, Percentage: 12},
			{Question: "Business mentorship programs", Count: 289, Percentage: 10},
			{Question: "Grant eligibility requirements", Count: 245, Percentage: 9},
			{Question: "Application deadlines", Count: 198, Percentage: 7},
			{Question: "Required documents", Count: 167, Percentage: 6},
		},
		RecentActivity: []Activity{
			{User: "Sarah M.", Action: "Applied for Tech Innovation Grant", Time: "2 minutes ago", Status: "success"},
			{User: "James K.", Action: "Submitted business plan review", Time: "15 minutes ago", Status: "pending"},
			{User: "Maria L.", Action: "Completed mentorship session", Time: "1 hour ago", Status: "success"},
			{User: "David R.", Action: "Requested funding information", Time: "2 hours ago", Status: "info"},
			{User: "Lisa T.", Action: "Downloaded application form", Time: "3 hours ago", Status: "info"},
		},
		Monthly: []MonthlyPoint{
			{Month: "Jan", Queries: 1200, Grants: 45},
			{Month: "Feb", Queries: 1400, Grants: 52},
			{Month: "Mar", Queries: 1800, Grants: 68},
			{Month: "Apr", Queries: 2100, Grants: 74},
			{Month: "May", Queries: 2400, Grants: 89},
			{Month: "Jun", Queries: 2847, Grants: 156},
		},
	}
}

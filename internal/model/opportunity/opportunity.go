package opportunity

import (
	"math"
	"time"
)

// Type classifies an opportunity listing.
type Type string

const (
	TypeGrant      Type = "Grant"
	TypeEvent      Type = "Event"
	TypeWorkshop   Type = "Workshop"
	TypeMentorship Type = "Mentorship"
)

// FilterAll disables type filtering in searches.
const FilterAll = "All"

// Filters lists the type filters offered to the frontend, in display order.
func Filters() []string {
	return []string{FilterAll, string(TypeGrant), string(TypeEvent), string(TypeWorkshop), string(TypeMentorship)}
}

// Opportunity is a grant, event, workshop or mentorship listing.
type Opportunity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        Type   `json:"type"`
	Amount      string `json:"amount,omitempty"`
	Deadline    string `json:"deadline"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Eligibility string `json:"eligibility"`
	Category    string `json:"category"`
	Applicants  int    `json:"applicants"`
	Featured    bool   `json:"featured"`
}

const deadlineLayout = "2006-01-02"

// DaysUntilDeadline returns the number of days from now until the deadline,
// rounded up. Past deadlines yield zero or negative values.
func (o Opportunity) DaysUntilDeadline(now time.Time) (int, error) {
	deadline, err := time.ParseInLocation(deadlineLayout, o.Deadline, now.Location())
	if err != nil {
		return 0, err
	}
	days := deadline.Sub(now).Hours() / 24
	return int(math.Ceil(days)), nil
}

// Seed provides the listings shown on the opportunities page.
func Seed() []Opportunity {
	return []Opportunity{
		{
			ID:          "1",
			Title:       "Tech Innovation Grant 2024",
			Type:        TypeGrant,
			Amount:      "$15,000",
			Deadline:    "2024-03-15",
			Location:    "Nationwide",
			Description: "Supporting innovative tech startups with funding for MVP development and market validation.",
			Eligibility: "Early-stage tech companies with less than $100K revenue",
			Category:    "Technology",
			Applicants:  234,
			Featured:    true,
		},
		{
			ID:          "2",
			Title:       "Women in Business Workshop Series",
			Type:        TypeWorkshop,
			Deadline:    "2024-02-20",
			Location:    "Toronto, ON",
			Description: "Comprehensive workshop series covering business planning, marketing, and financial management.",
			Eligibility: "Women entrepreneurs at any stage",
			Category:    "Business Development",
			Applicants:  89,
			Featured:    true,
		},
		{
			ID:          "3",
			Title:       "Creative Arts Fund",
			Type:        TypeGrant,
			Amount:      "$5,000",
			Deadline:    "2024-04-01",
			Location:    "Canada",
			Description: "Supporting artists and creative professionals in developing their craft and reaching new audiences.",
			Eligibility: "Professional artists with portfolio submission",
			Category:    "Arts & Culture",
			Applicants:  156,
		},
		{
			ID:          "4",
			Title:       "Startup Mentorship Program",
			Type:        TypeMentorship,
			Deadline:    "2024-02-28",
			Location:    "Virtual",
			Description: "One-on-one mentorship with successful entrepreneurs and industry experts.",
			Eligibility: "Startups in operation for less than 2 years",
			Category:    "Mentorship",
			Applicants:  67,
		},
		{
			ID:          "5",
			Title:       "Small Business Recovery Grant",
			Type:        TypeGrant,
			Amount:      "$7,500",
			Deadline:    "2024-03-30",
			Location:    "Ontario",
			Description: "Emergency funding to help small businesses recover from economic challenges.",
			Eligibility: "Small businesses with proven revenue loss",
			Category:    "Recovery",
			Applicants:  312,
			Featured:    true,
		},
		{
			ID:          "6",
			Title:       "Digital Marketing Bootcamp",
			Type:        TypeEvent,
			Deadline:    "2024-02-25",
			Location:    "Vancouver, BC",
			Description: "Intensive 3-day bootcamp covering modern digital marketing strategies and tools.",
			Eligibility: "Business owners and marketing professionals",
			Category:    "Marketing",
			Applicants:  145,
		},
	}
}

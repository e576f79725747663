package lead

import (
	"time"

	"leadflow/audit"
)

// Lead is the domain representation of a homeowner record. A purchased lead
// is reclassified as a customer in read views but remains the same entity.
type Lead struct {
	ID                  string
	Name                string
	Phone               string
	Email               string
	Address             string
	FoundationType      string
	SourceOfLead        string
	Notes               string
	InspectionDate      string
	WorkStartDate       string
	WorkEndDate         string
	WorkNotes           string
	AssignedRepID       string
	CreatedBy           string
	CreatedAt           time.Time
	Verified            bool
	InspectionScheduled bool
	Purchased           bool
	Status              string
	History             audit.Trail
}

// Classification names the read view of the lead.
func (l Lead) Classification() string {
	if l.Purchased {
		return "Customer"
	}
	return "Homeowner"
}

// FormData carries the fields a canvasser submits when originating a lead.
type FormData struct {
	Name           string
	Phone          string
	Email          string
	Address        string
	FoundationType string
	SourceOfLead   string
	Notes          string
}

// Filter selects a slice of the visible lead list.
type Filter string

const (
	FilterAll                 Filter = "all"
	FilterUnpurchased         Filter = "unpurchased"
	FilterPurchased           Filter = "purchased"
	FilterMine                Filter = "mine"
	FilterVerified            Filter = "verified"
	FilterInspectionScheduled Filter = "inspection_scheduled"
)

package lead

import "fmt"

// fieldAccessor is one row of the mutable-field registry. Keeping the
// registry as data means the permission table, the audit log, and the update
// path all agree on the same field names.
type fieldAccessor struct {
	get func(*Lead) any
	set func(*Lead, any) error
}

func stringField(ptr func(*Lead) *string) fieldAccessor {
	return fieldAccessor{
		get: func(l *Lead) any { return *ptr(l) },
		set: func(l *Lead, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expects a string value, got %T", v)
			}
			*ptr(l) = s
			return nil
		},
	}
}

func boolField(ptr func(*Lead) *bool) fieldAccessor {
	return fieldAccessor{
		get: func(l *Lead) any { return *ptr(l) },
		set: func(l *Lead, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("expects a bool value, got %T", v)
			}
			*ptr(l) = b
			return nil
		},
	}
}

var leadFields = map[string]fieldAccessor{
	"name":                stringField(func(l *Lead) *string { return &l.Name }),
	"phone":               stringField(func(l *Lead) *string { return &l.Phone }),
	"email":               stringField(func(l *Lead) *string { return &l.Email }),
	"address":             stringField(func(l *Lead) *string { return &l.Address }),
	"foundationType":      stringField(func(l *Lead) *string { return &l.FoundationType }),
	"sourceOfLead":        stringField(func(l *Lead) *string { return &l.SourceOfLead }),
	"notes":               stringField(func(l *Lead) *string { return &l.Notes }),
	"inspectionDate":      stringField(func(l *Lead) *string { return &l.InspectionDate }),
	"workStartDate":       stringField(func(l *Lead) *string { return &l.WorkStartDate }),
	"workEndDate":         stringField(func(l *Lead) *string { return &l.WorkEndDate }),
	"workNotes":           stringField(func(l *Lead) *string { return &l.WorkNotes }),
	"assignedRepId":       stringField(func(l *Lead) *string { return &l.AssignedRepID }),
	"status":              stringField(func(l *Lead) *string { return &l.Status }),
	"verified":            boolField(func(l *Lead) *bool { return &l.Verified }),
	"inspectionScheduled": boolField(func(l *Lead) *bool { return &l.InspectionScheduled }),
	"purchased":           boolField(func(l *Lead) *bool { return &l.Purchased }),
}

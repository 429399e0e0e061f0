package models

// ApplyResult lists, by field name, what an update actually did.
type ApplyResult struct {
	Applied []string
	Skipped []string
}

// ApplyProtected is the conflict resolution policy. It is the only code
// path allowed to write date or budget fields on an entry, whichever
// caller (sync propagation, chat targeting, topology defaulting) asks.
//
// origin=direct applies every present field and marks the touched field
// family's protection flag. origin=auto skips any field whose family
// flag is already set and never sets a flag itself.
func ApplyProtected(entry *Entry, fields EntryFields, origin Origin) ApplyResult {
	var res ApplyResult

	datesAllowed := origin == OriginDirect || !entry.UserModifiedDates
	budgetAllowed := origin == OriginDirect || !entry.UserModifiedBudget

	applyString := func(name string, dst *string, src *string, allowed bool) {
		if src == nil {
			return
		}
		if !allowed {
			res.Skipped = append(res.Skipped, name)
			return
		}
		*dst = *src
		res.Applied = append(res.Applied, name)
	}

	applyString("dateFrom", &entry.DateFrom, fields.DateFrom, datesAllowed)
	applyString("dateTo", &entry.DateTo, fields.DateTo, datesAllowed)

	if fields.BudgetPreset != nil {
		if budgetAllowed {
			entry.BudgetPreset = *fields.BudgetPreset
			res.Applied = append(res.Applied, "budgetPreset")
		} else {
			res.Skipped = append(res.Skipped, "budgetPreset")
		}
	}
	applyInt := func(name string, dst *int, src *int) {
		if src == nil {
			return
		}
		if !budgetAllowed {
			res.Skipped = append(res.Skipped, name)
			return
		}
		*dst = *src
		res.Applied = append(res.Applied, name)
	}
	applyInt("budgetMin", &entry.BudgetMin, fields.BudgetMin)
	applyInt("budgetMax", &entry.BudgetMax, fields.BudgetMax)

	// Types and notes have no protection family.
	if fields.Types != nil {
		entry.Types = append([]string(nil), fields.Types...)
		res.Applied = append(res.Applied, "types")
	}
	if fields.Notes != nil {
		entry.Notes = *fields.Notes
		res.Applied = append(res.Applied, "notes")
	}

	if origin == OriginDirect {
		if fields.TouchesDates() {
			entry.UserModifiedDates = true
		}
		if fields.TouchesBudget() {
			entry.UserModifiedBudget = true
		}
	}

	return res
}

// ClearProtection is the explicit user-initiated unprotect action. It is
// never called from an automated path.
func ClearProtection(entry *Entry, dates, budget bool) {
	if dates {
		entry.UserModifiedDates = false
	}
	if budget {
		entry.UserModifiedBudget = false
	}
}

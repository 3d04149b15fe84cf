package integration

import "strings"

// ExpenseType maps an expense category onto its debit account and, for
// obligations owed to a third party, the liability account credited instead of AP.
type ExpenseType struct {
	ID            string
	Label         string
	AccountCode   string
	LiabilityCode string
}

// DefaultExpenseCode is booked when the document names no known type.
const DefaultExpenseCode = "5110"

var expenseCatalog = []ExpenseType{
	{ID: "food", Label: "Food (meat, vegetables, dairy)", AccountCode: "5110"},
	{ID: "beverages", Label: "Beverages", AccountCode: "5120"},
	{ID: "packaging", Label: "Packaging", AccountCode: "5130"},
	{ID: "cleaning_supplies", Label: "Cleaning supplies", AccountCode: "5140"},
	{ID: "spoilage_waste", Label: "Spoilage & waste", AccountCode: "5160"},
	{ID: "electricity", Label: "Electricity", AccountCode: "5210"},
	{ID: "gas", Label: "Gas", AccountCode: "5215"},
	{ID: "water", Label: "Water", AccountCode: "5220"},
	{ID: "internet", Label: "Internet", AccountCode: "5230"},
	{ID: "equipment_maintenance", Label: "Equipment maintenance", AccountCode: "5242"},
	{ID: "delivery_costs", Label: "Delivery costs", AccountCode: "5260"},
	{ID: "rent", Label: "Rent", AccountCode: "5270"},
	{ID: "salaries", Label: "Salaries & wages", AccountCode: "5310"},
	{ID: "allowances", Label: "Allowances", AccountCode: "5320"},
	{ID: "health_insurance", Label: "Health insurance", AccountCode: "5325"},
	{ID: "gosi", Label: "GOSI", AccountCode: "5340", LiabilityCode: "2131"},
	{ID: "license_fees", Label: "License fees", AccountCode: "5410"},
	{ID: "zakat", Label: "Zakat", AccountCode: "5410", LiabilityCode: "2134"},
	{ID: "advertising", Label: "Advertising", AccountCode: "5510"},
	{ID: "commission_hungerstation", Label: "Commission (Hungerstation)", AccountCode: "5550", LiabilityCode: "2113"},
	{ID: "commission_keeta", Label: "Commission (Keeta)", AccountCode: "5550", LiabilityCode: "2114"},
	{ID: "misc", Label: "Miscellaneous", AccountCode: "5910"},
}

// LookupExpenseType finds a catalog entry by id, ignoring case.
func LookupExpenseType(id string) (ExpenseType, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range expenseCatalog {
		if t.ID == id {
			return t, true
		}
	}
	return ExpenseType{}, false
}

// ExpenseTypes returns a copy of the catalog.
func ExpenseTypes() []ExpenseType {
	out := make([]ExpenseType, len(expenseCatalog))
	copy(out, expenseCatalog)
	return out
}

func liabilityCodes() []string {
	var out []string
	for _, t := range expenseCatalog {
		if t.LiabilityCode != "" {
			out = append(out, t.LiabilityCode)
		}
	}
	return out
}

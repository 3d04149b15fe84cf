package accounts

import "sort"

// Node is one entry of the canonical chart of accounts.
type Node struct {
	Code   string
	Name   string
	Type   AccountType
	Parent string
}

var canonicalNodes = []Node{
	{Code: "1", Name: "Assets", Type: AccountTypeAsset},
	{Code: "11", Name: "Current Assets", Type: AccountTypeAsset, Parent: "1"},
	{Code: "111", Name: "Cash on Hand", Type: AccountTypeAsset, Parent: "11"},
	{Code: "1111", Name: "Main Treasury", Type: AccountTypeAsset, Parent: "111"},
	{Code: "1112", Name: "Sales Cash", Type: AccountTypeAsset, Parent: "111"},
	{Code: "1113", Name: "Petty Cash", Type: AccountTypeAsset, Parent: "111"},
	{Code: "112", Name: "Banks", Type: AccountTypeAsset, Parent: "11"},
	{Code: "1121", Name: "Main Bank Account", Type: AccountTypeAsset, Parent: "112"},
	{Code: "1122", Name: "Secondary Bank Account", Type: AccountTypeAsset, Parent: "112"},
	{Code: "1123", Name: "Card Settlement Account", Type: AccountTypeAsset, Parent: "112"},
	{Code: "114", Name: "Receivables", Type: AccountTypeAsset, Parent: "11"},
	{Code: "1141", Name: "Accounts Receivable", Type: AccountTypeAsset, Parent: "114"},
	{Code: "1144", Name: "Receivable - Hungerstation", Type: AccountTypeAsset, Parent: "114"},
	{Code: "1145", Name: "Receivable - Keeta", Type: AccountTypeAsset, Parent: "114"},
	{Code: "116", Name: "Inventory", Type: AccountTypeAsset, Parent: "11"},
	{Code: "1161", Name: "Food & Beverage Inventory", Type: AccountTypeAsset, Parent: "116"},
	{Code: "117", Name: "Tax Receivable", Type: AccountTypeAsset, Parent: "11"},
	{Code: "1170", Name: "VAT Input", Type: AccountTypeTax, Parent: "117"},
	{Code: "12", Name: "Non-current Assets", Type: AccountTypeAsset, Parent: "1"},
	{Code: "121", Name: "Property & Equipment", Type: AccountTypeAsset, Parent: "12"},
	{Code: "1211", Name: "Kitchen Equipment", Type: AccountTypeAsset, Parent: "121"},
	{Code: "1212", Name: "Furniture & Fixtures", Type: AccountTypeAsset, Parent: "121"},

	{Code: "2", Name: "Liabilities", Type: AccountTypeLiability},
	{Code: "21", Name: "Current Liabilities", Type: AccountTypeLiability, Parent: "2"},
	{Code: "211", Name: "Payables", Type: AccountTypeLiability, Parent: "21"},
	{Code: "2111", Name: "Accounts Payable", Type: AccountTypeLiability, Parent: "211"},
	{Code: "2113", Name: "Payable - Hungerstation", Type: AccountTypeLiability, Parent: "211"},
	{Code: "2114", Name: "Payable - Keeta", Type: AccountTypeLiability, Parent: "211"},
	{Code: "212", Name: "Employee Obligations", Type: AccountTypeLiability, Parent: "21"},
	{Code: "2121", Name: "Salaries Payable", Type: AccountTypeLiability, Parent: "212"},
	{Code: "213", Name: "Government Obligations", Type: AccountTypeLiability, Parent: "21"},
	{Code: "2131", Name: "GOSI Payable", Type: AccountTypeLiability, Parent: "213"},
	{Code: "2134", Name: "Zakat Payable", Type: AccountTypeLiability, Parent: "213"},
	{Code: "214", Name: "Tax Payable", Type: AccountTypeLiability, Parent: "21"},
	{Code: "2141", Name: "VAT Output", Type: AccountTypeLiability, Parent: "214"},

	{Code: "3", Name: "Equity", Type: AccountTypeEquity},
	{Code: "32", Name: "Owners' Equity", Type: AccountTypeEquity, Parent: "3"},
	{Code: "3210", Name: "Paid-in Capital", Type: AccountTypeEquity, Parent: "32"},
	{Code: "3220", Name: "Retained Earnings", Type: AccountTypeEquity, Parent: "32"},

	{Code: "4", Name: "Revenue", Type: AccountTypeRevenue},
	{Code: "41", Name: "Operating Revenue", Type: AccountTypeRevenue, Parent: "4"},
	{Code: "411", Name: "Sales", Type: AccountTypeRevenue, Parent: "41"},
	{Code: "4111", Name: "Sales - Immediate", Type: AccountTypeRevenue, Parent: "411"},
	{Code: "4112", Name: "Sales - On Account", Type: AccountTypeRevenue, Parent: "411"},
	{Code: "42", Name: "Other Income", Type: AccountTypeOtherIncome, Parent: "4"},
	{Code: "4210", Name: "Miscellaneous Income", Type: AccountTypeOtherIncome, Parent: "42"},

	{Code: "5", Name: "Expenses", Type: AccountTypeExpense},
	{Code: "51", Name: "Cost of Sales", Type: AccountTypeCOGS, Parent: "5"},
	{Code: "5110", Name: "Food Purchases", Type: AccountTypeCOGS, Parent: "51"},
	{Code: "5120", Name: "Beverage Purchases", Type: AccountTypeCOGS, Parent: "51"},
	{Code: "5130", Name: "Packaging", Type: AccountTypeCOGS, Parent: "51"},
	{Code: "5140", Name: "Cleaning Supplies", Type: AccountTypeCOGS, Parent: "51"},
	{Code: "5160", Name: "Spoilage & Waste", Type: AccountTypeCOGS, Parent: "51"},
	{Code: "52", Name: "Operating Expenses", Type: AccountTypeExpense, Parent: "5"},
	{Code: "5210", Name: "Electricity", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5215", Name: "Gas", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5220", Name: "Water", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5230", Name: "Internet", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5242", Name: "Equipment Maintenance", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5260", Name: "Delivery Costs", Type: AccountTypeExpense, Parent: "52"},
	{Code: "5270", Name: "Rent", Type: AccountTypeExpense, Parent: "52"},
	{Code: "53", Name: "Labour", Type: AccountTypeExpense, Parent: "5"},
	{Code: "5310", Name: "Salaries & Wages", Type: AccountTypeExpense, Parent: "53"},
	{Code: "5320", Name: "Allowances", Type: AccountTypeExpense, Parent: "53"},
	{Code: "5325", Name: "Health Insurance", Type: AccountTypeExpense, Parent: "53"},
	{Code: "5340", Name: "GOSI", Type: AccountTypeExpense, Parent: "53"},
	{Code: "54", Name: "Government & Licenses", Type: AccountTypeExpense, Parent: "5"},
	{Code: "5410", Name: "Licenses & Fees", Type: AccountTypeExpense, Parent: "54"},
	{Code: "55", Name: "Marketing & Platforms", Type: AccountTypeExpense, Parent: "5"},
	{Code: "5510", Name: "Advertising", Type: AccountTypeExpense, Parent: "55"},
	{Code: "5550", Name: "Platform Commission", Type: AccountTypeExpense, Parent: "55"},
	{Code: "59", Name: "Other Expenses", Type: AccountTypeOtherExpense, Parent: "5"},
	{Code: "5910", Name: "Miscellaneous Expense", Type: AccountTypeOtherExpense, Parent: "59"},
}

// Tree indexes the canonical nodes by code.
type Tree struct {
	nodes    map[string]Node
	children map[string]int
	order    []string
}

var canonical = NewTree(canonicalNodes)

// CanonicalTree returns the seeded chart of accounts.
func CanonicalTree() *Tree {
	return canonical
}

// NewTree indexes nodes; duplicate codes keep the first definition.
func NewTree(nodes []Node) *Tree {
	t := &Tree{nodes: make(map[string]Node, len(nodes)), children: make(map[string]int)}
	for _, n := range nodes {
		if _, ok := t.nodes[n.Code]; ok {
			continue
		}
		t.nodes[n.Code] = n
		t.order = append(t.order, n.Code)
		if n.Parent != "" {
			t.children[n.Parent]++
		}
	}
	sort.Strings(t.order)
	return t
}

// Lookup returns the node for code.
func (t *Tree) Lookup(code string) (Node, bool) {
	n, ok := t.nodes[code]
	return n, ok
}

// IsLeaf reports whether the code exists and has no children.
func (t *Tree) IsLeaf(code string) bool {
	if _, ok := t.nodes[code]; !ok {
		return false
	}
	return t.children[code] == 0
}

// Nodes returns every node ordered by code.
func (t *Tree) Nodes() []Node {
	out := make([]Node, 0, len(t.order))
	for _, code := range t.order {
		out = append(out, t.nodes[code])
	}
	return out
}

// IsHierarchical reports whether code follows the numeric tree pattern.
func IsHierarchical(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

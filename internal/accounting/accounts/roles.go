package accounts

// Role names the business purpose of an account independent of its code.
type Role string

const (
	RoleCashTreasury            Role = "CASH_TREASURY"
	RoleCashSales               Role = "CASH_SALES"
	RoleCashPetty               Role = "CASH_PETTY"
	RoleBank                    Role = "BANK"
	RoleAccountsReceivable      Role = "AR"
	RoleReceivableHungerstation Role = "AR_HUNGERSTATION"
	RoleReceivableKeeta         Role = "AR_KEETA"
	RoleInventory               Role = "INVENTORY"
	RoleVATInput                Role = "VAT_INPUT"
	RoleAccountsPayable         Role = "AP"
	RolePayableHungerstation    Role = "AP_HUNGERSTATION"
	RolePayableKeeta            Role = "AP_KEETA"
	RoleSalariesPayable         Role = "SALARIES_PAYABLE"
	RoleVATOutput               Role = "VAT_OUTPUT"
	RoleRetainedEarnings        Role = "RETAINED_EARNINGS"
	RoleRevenueImmediate        Role = "REVENUE_IMMEDIATE"
	RoleRevenueCredit           Role = "REVENUE_CREDIT"
	RoleOperatingExpense        Role = "EXPENSE"
	RoleSalaryExpense           Role = "SALARY_EXPENSE"
	RolePlatformCommission      Role = "PLATFORM_COMMISSION"
)

// DefaultRoles maps each role to its canonical code.
var DefaultRoles = map[Role]string{
	RoleCashTreasury:            "1111",
	RoleCashSales:               "1112",
	RoleCashPetty:               "1113",
	RoleBank:                    "1121",
	RoleAccountsReceivable:      "1141",
	RoleReceivableHungerstation: "1144",
	RoleReceivableKeeta:         "1145",
	RoleInventory:               "1161",
	RoleVATInput:                "1170",
	RoleAccountsPayable:         "2111",
	RolePayableHungerstation:    "2113",
	RolePayableKeeta:            "2114",
	RoleSalariesPayable:         "2121",
	RoleVATOutput:               "2141",
	RoleRetainedEarnings:        "3220",
	RoleRevenueImmediate:        "4111",
	RoleRevenueCredit:           "4112",
	RoleOperatingExpense:        "5110",
	RoleSalaryExpense:           "5310",
	RolePlatformCommission:      "5550",
}

// ReceivableRoles lists roles that book customer balances.
var ReceivableRoles = []Role{RoleAccountsReceivable, RoleReceivableHungerstation, RoleReceivableKeeta}

// PayableRoles lists roles that book supplier balances.
var PayableRoles = []Role{RoleAccountsPayable, RolePayableHungerstation, RolePayableKeeta}

// CodesFor resolves the codes of roles using the supplied map.
func CodesFor(roles map[Role]string, want ...Role) []string {
	if roles == nil {
		roles = DefaultRoles
	}
	out := make([]string, 0, len(want))
	for _, r := range want {
		if code, ok := roles[r]; ok {
			out = append(out, code)
		}
	}
	return out
}

// Package dictionary holds the static master data the engine is built
// from: the chart of accounts of a condominium management association and
// its accounting divisions. Loaded once at startup, immutable afterwards.
package dictionary

import (
	"time"

	"github.com/kanriworks/ledger/internal/ledger"
)

// acct is the compact row format the curated chart is written in.
type acct struct {
	code, name, short string
	class             ledger.Class
	level             int
	parent            string
	postable          bool
	division          ledger.DivisionCode
}

// Postable accounts sit at level 4; levels 1-3 aggregate only.
var chart = []acct{
	// Assets
	{"1000", "資産", "資産", ledger.ClassAsset, 1, "", false, ledger.DivisionCommon},
	{"1100", "流動資産", "流動資産", ledger.ClassAsset, 2, "1000", false, ledger.DivisionCommon},
	{"1110", "現金預金", "現預金", ledger.ClassAsset, 3, "1100", false, ledger.DivisionCommon},
	{"1101", "現金", "現金", ledger.ClassAsset, 4, "1110", true, ledger.DivisionCommon},
	{"1102", "普通預金", "普通預金", ledger.ClassAsset, 4, "1110", true, ledger.DivisionCommon},
	{"1103", "定期預金", "定期預金", ledger.ClassAsset, 4, "1110", true, ledger.DivisionCommon},
	{"1120", "未収入金", "未収入金", ledger.ClassAsset, 3, "1100", false, ledger.DivisionCommon},
	{"1121", "未収金", "未収金", ledger.ClassAsset, 4, "1120", true, ledger.DivisionCommon},
	{"1130", "前払金", "前払金", ledger.ClassAsset, 3, "1100", false, ledger.DivisionCommon},
	{"1131", "前払費用", "前払費用", ledger.ClassAsset, 4, "1130", true, ledger.DivisionCommon},
	// Liabilities
	{"2000", "負債", "負債", ledger.ClassLiability, 1, "", false, ledger.DivisionCommon},
	{"2100", "流動負債", "流動負債", ledger.ClassLiability, 2, "2000", false, ledger.DivisionCommon},
	{"2110", "未払金", "未払金", ledger.ClassLiability, 3, "2100", false, ledger.DivisionCommon},
	{"2111", "未払金", "未払金", ledger.ClassLiability, 4, "2110", true, ledger.DivisionCommon},
	{"2120", "前受金", "前受金", ledger.ClassLiability, 3, "2100", false, ledger.DivisionCommon},
	{"2121", "前受金", "前受金", ledger.ClassLiability, 4, "2120", true, ledger.DivisionCommon},
	{"2130", "預り金", "預り金", ledger.ClassLiability, 3, "2100", false, ledger.DivisionCommon},
	{"2131", "預り金", "預り金", ledger.ClassLiability, 4, "2130", true, ledger.DivisionCommon},
	// Equity
	{"3000", "純資産", "純資産", ledger.ClassEquity, 1, "", false, ledger.DivisionCommon},
	{"3100", "剰余金", "剰余金", ledger.ClassEquity, 2, "3000", false, ledger.DivisionCommon},
	{"3110", "繰越剰余金", "繰越剰余金", ledger.ClassEquity, 3, "3100", false, ledger.DivisionCommon},
	{"3111", "次期繰越剰余金", "繰越剰余金", ledger.ClassEquity, 4, "3110", true, ledger.DivisionCommon},
	// Revenue
	{"4000", "収入", "収入", ledger.ClassRevenue, 1, "", false, ledger.DivisionCommon},
	{"4100", "事業収入", "事業収入", ledger.ClassRevenue, 2, "4000", false, ledger.DivisionCommon},
	{"4110", "組合費収入", "組合費", ledger.ClassRevenue, 3, "4100", false, ledger.DivisionCommon},
	{"4111", "管理費収入", "管理費", ledger.ClassRevenue, 4, "4110", true, ledger.DivisionKanri},
	{"4112", "修繕積立金収入", "修繕積立金", ledger.ClassRevenue, 4, "4110", true, ledger.DivisionShuzen},
	{"4113", "駐車場使用料収入", "駐車場収入", ledger.ClassRevenue, 4, "4110", true, ledger.DivisionParking},
	{"4114", "専用使用料収入", "専用使用料", ledger.ClassRevenue, 4, "4110", true, ledger.DivisionKanri},
	{"4120", "その他収入", "その他収入", ledger.ClassRevenue, 3, "4100", false, ledger.DivisionCommon},
	{"4121", "受取利息", "受取利息", ledger.ClassRevenue, 4, "4120", true, ledger.DivisionCommon},
	{"4122", "雑収入", "雑収入", ledger.ClassRevenue, 4, "4120", true, ledger.DivisionCommon},
	// Expenses
	{"5000", "支出", "支出", ledger.ClassExpense, 1, "", false, ledger.DivisionCommon},
	{"5100", "事業支出", "事業支出", ledger.ClassExpense, 2, "5000", false, ledger.DivisionCommon},
	{"5110", "管理業務支出", "管理業務", ledger.ClassExpense, 3, "5100", false, ledger.DivisionCommon},
	{"5111", "管理委託費", "管理委託費", ledger.ClassExpense, 4, "5110", true, ledger.DivisionKanri},
	{"5112", "水道光熱費", "水道光熱費", ledger.ClassExpense, 4, "5110", true, ledger.DivisionKanri},
	{"5113", "損害保険料", "保険料", ledger.ClassExpense, 4, "5110", true, ledger.DivisionKanri},
	{"5114", "小修繕費", "小修繕費", ledger.ClassExpense, 4, "5110", true, ledger.DivisionKanri},
	{"5115", "組合運営費", "運営費", ledger.ClassExpense, 4, "5110", true, ledger.DivisionKanri},
	{"5120", "修繕支出", "修繕支出", ledger.ClassExpense, 3, "5100", false, ledger.DivisionCommon},
	{"5121", "計画修繕工事費", "計画修繕", ledger.ClassExpense, 4, "5120", true, ledger.DivisionShuzen},
	{"5122", "大規模修繕工事費", "大規模修繕", ledger.ClassExpense, 4, "5120", true, ledger.DivisionShuzen},
	{"5130", "駐車場支出", "駐車場支出", ledger.ClassExpense, 3, "5100", false, ledger.DivisionCommon},
	{"5131", "駐車場維持費", "駐車場維持", ledger.ClassExpense, 4, "5130", true, ledger.DivisionParking},
	{"5190", "その他支出", "その他支出", ledger.ClassExpense, 3, "5100", false, ledger.DivisionCommon},
	{"5191", "雑支出", "雑支出", ledger.ClassExpense, 4, "5190", true, ledger.DivisionCommon},
	{"5192", "支払手数料", "支払手数料", ledger.ClassExpense, 4, "5190", true, ledger.DivisionCommon},
}

// Chart returns the default chart of accounts in declaration order.
func Chart() []ledger.Account {
	out := make([]ledger.Account, 0, len(chart))
	for _, a := range chart {
		out = append(out, ledger.Account{
			Code:       a.code,
			Name:       a.name,
			ShortName:  a.short,
			Class:      a.class,
			Level:      a.level,
			ParentCode: a.parent,
			Postable:   a.postable,
			Division:   a.division,
		})
	}
	return out
}

// Japanese association books run April through March.
var fyStart = ledger.MonthDay{Month: time.April, Day: 1}
var fyEnd = ledger.MonthDay{Month: time.March, Day: 31}

var divisions = []ledger.Division{
	{
		Code: ledger.DivisionKanri, Name: "管理費会計", Active: true,
		FiscalYearStart: fyStart, FiscalYearEnd: fyEnd,
		Defaults: ledger.DivisionDefaults{Cash: "1101", Bank: "1102", Income: "4111", Expense: "5111", Surplus: "3111"},
	},
	{
		Code: ledger.DivisionShuzen, Name: "修繕積立金会計", Active: true,
		FiscalYearStart: fyStart, FiscalYearEnd: fyEnd,
		Defaults: ledger.DivisionDefaults{Cash: "1101", Bank: "1102", Income: "4112", Expense: "5121", Surplus: "3111"},
	},
	{
		Code: ledger.DivisionParking, Name: "駐車場会計", Active: true,
		FiscalYearStart: fyStart, FiscalYearEnd: fyEnd,
		Defaults: ledger.DivisionDefaults{Cash: "1101", Bank: "1102", Income: "4113", Expense: "5131", Surplus: "3111"},
	},
	{
		Code: ledger.DivisionSpecial, Name: "特別会計", Active: true,
		FiscalYearStart: fyStart, FiscalYearEnd: fyEnd,
		Defaults: ledger.DivisionDefaults{Cash: "1101", Bank: "1102", Income: "4122", Expense: "5191", Surplus: "3111"},
	},
	{
		Code: ledger.DivisionCommon, Name: "共通", Active: true,
		FiscalYearStart: fyStart, FiscalYearEnd: fyEnd,
		Defaults: ledger.DivisionDefaults{Cash: "1101", Bank: "1102", Income: "4121", Expense: "5191", Surplus: "3111"},
	},
}

// Divisions returns the default division masters.
func Divisions() []ledger.Division {
	out := make([]ledger.Division, len(divisions))
	copy(out, divisions)
	return out
}

// Package roles infers the semantic meaning of source column headers.
// Detection is purely lexical: a header claims a role when it contains one of
// the role's keywords, checked in a fixed priority order so results are
// deterministic for any header set.
package roles

import "strings"

// Role names a semantic column meaning recognized by the import pipeline.
type Role string

const (
	Date         Role = "date"
	CreditAmount Role = "creditAmount"
	DebitAmount  Role = "debitAmount"
	Amount       Role = "amount"
	Type         Role = "type"
	Description  Role = "description"
	Category     Role = "category"
	Name         Role = "name"
	Email        Role = "email"
	Phone        Role = "phone"
	Address      Role = "address"
	ID           Role = "id"
)

// priority fixes both the tie-break between roles competing for one header and
// the claim order when several headers could serve the same role. Credit/debit
// come before the plain amount role so "Credit Amount" is not swallowed by the
// "amount" keyword.
var priority = []Role{
	Date,
	CreditAmount,
	DebitAmount,
	Amount,
	Type,
	Description,
	Category,
	Name,
	Email,
	Phone,
	Address,
	ID,
}

var keywords = map[Role][]string{
	Date:         {"date", "time", "when", "period", "day", "month", "year"},
	CreditAmount: {"credit"},
	DebitAmount:  {"debit"},
	Amount:       {"amount", "sum", "value", "price", "cost", "payment", "fee", "expense", "income"},
	Type:         {"type", "transaction", "mode"},
	Description:  {"desc", "narration", "particular", "detail", "memo", "note"},
	Category:     {"category", "tag"},
	Name:         {"name"},
	Email:        {"email", "mail"},
	Phone:        {"phone", "mobile", "contact"},
	Address:      {"address", "city", "location"},
	ID:           {"id", "reference", "ref"},
}

// RoleMap maps a detected role to the originating header string. Roles with no
// matching header are absent.
type RoleMap map[Role]string

// Has reports whether the role was detected.
func (rm RoleMap) Has(role Role) bool {
	_, ok := rm[role]
	return ok
}

// Detect scans headers in file order and assigns each to the first unclaimed
// role whose keyword set matches by case-insensitive substring containment.
// A header claims at most one role; a role keeps the first header that matched
// it. Detection is idempotent: the same headers always yield the same map.
func Detect(headers []string) RoleMap {
	rm := make(RoleMap, len(priority))
	for _, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == "" {
			continue
		}
		for _, role := range priority {
			if rm.Has(role) {
				continue
			}
			if containsAny(h, keywords[role]) {
				rm[role] = header
				break
			}
		}
	}
	return rm
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

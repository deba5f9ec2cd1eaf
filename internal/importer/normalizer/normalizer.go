// Package normalizer converts decoded rows into canonical transactions. It is
// total over its inputs: any row either produces a valid transaction or is
// skipped, never an error.
package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/importer/decoder"
	"github.com/bachatbox/bachatbox/internal/importer/provider"
	"github.com/bachatbox/bachatbox/internal/importer/roles"
)

// Destination selects the transaction-type vocabulary of the target store.
type Destination int

const (
	// DestTransactions produces income/expense records.
	DestTransactions Destination = iota
	// DestWallet produces credit/debit records.
	DestWallet
)

// Transaction type values, per destination.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
	TypeCredit  = "credit"
	TypeDebit   = "debit"
)

// Canonical is the normalized, storage-ready form of one imported row.
type Canonical struct {
	Amount          decimal.Decimal
	TransactionType string
	Description     string
	Category        string
	Date            time.Time
}

// Normalize builds a Canonical transaction from one row. A nil adapter means a
// generic import where only the detected column roles apply; a non-nil adapter
// consults the provider's field names first and remaps the category through
// the keyword classifier. Returns nil when the row carries no usable data.
func Normalize(row decoder.Row, rm roles.RoleMap, adapter *provider.Adapter, dest Destination, now time.Time) *Canonical {
	rawDescription := lookup(row, rm, adapter, adapterDesc, roles.Description)
	rawCategory := lookup(row, rm, adapter, adapterCategory, roles.Category)

	amount, positive := resolveAmount(row, rm, adapter)

	// A zero amount with no surrounding text is a blank or trailing line,
	// not a transaction.
	if amount.IsZero() && rawCategory == "" && rawDescription == "" {
		return nil
	}

	txType := resolveType(row, rm, adapter, amount, positive, dest)

	c := &Canonical{
		Amount:          amount,
		TransactionType: txType,
		Description:     rawDescription,
		Category:        rawCategory,
		Date:            resolveDate(lookup(row, rm, adapter, adapterDate, roles.Date), now),
	}

	if c.Description == "" {
		c.Description = fallbackDescription(row, adapter)
	}
	if adapter != nil {
		text := rawCategory
		if text == "" {
			text = rawDescription
		}
		c.Category = ClassifyCategory(text)
	} else if c.Category == "" {
		if txType == TypeIncome || txType == TypeCredit {
			c.Category = "Income"
		} else {
			c.Category = "Others"
		}
	}
	return c
}

// resolveAmount returns the non-negative amount for the row plus whether the
// raw numeric value was positive before the sign was discarded. The source's
// sign is not trusted for polarity except when no type column exists at all.
func resolveAmount(row decoder.Row, rm roles.RoleMap, adapter *provider.Adapter) (decimal.Decimal, bool) {
	if rm.Has(roles.CreditAmount) && rm.Has(roles.DebitAmount) {
		credit := parseAmount(row.Get(rm[roles.CreditAmount]))
		if credit.IsPositive() {
			return credit, true
		}
		return parseAmount(row.Get(rm[roles.DebitAmount])).Abs(), false
	}
	raw := parseAmount(lookup(row, rm, adapter, adapterAmount, roles.Amount))
	return raw.Abs(), raw.IsPositive()
}

func resolveType(row decoder.Row, rm roles.RoleMap, adapter *provider.Adapter, amount decimal.Decimal, positive bool, dest Destination) string {
	inward := false
	if rm.Has(roles.CreditAmount) && rm.Has(roles.DebitAmount) {
		inward = positive
	} else {
		typeVal := strings.ToLower(lookup(row, rm, adapter, adapterType, roles.Type))
		switch {
		case typeVal == TypeCredit, typeVal == TypeIncome:
			inward = true
		case typeVal == "" && positive:
			inward = true
		}
	}
	if dest == DestWallet {
		if inward {
			return TypeCredit
		}
		return TypeDebit
	}
	if inward {
		return TypeIncome
	}
	return TypeExpense
}

// parseAmount reads a decimal out of free text, tolerating currency symbols
// and thousands separators. Unparseable input counts as zero.
func parseAmount(raw string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return -1
	}, raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// isoLayouts are tried in order for non-slash date strings.
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// resolveDate parses the raw date text. Slash dates are read day-first; a
// two-digit year is taken as 20xx. Anything unparseable falls back to the
// import time so a record always carries a valid instant.
func resolveDate(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return now
		}
		year := strings.TrimSpace(parts[2])
		if len(year) == 2 {
			year = "20" + year
		}
		t, err := time.Parse("2/1/2006", strings.TrimSpace(parts[0])+"/"+strings.TrimSpace(parts[1])+"/"+year)
		if err != nil {
			return now
		}
		return t
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

func fallbackDescription(row decoder.Row, adapter *provider.Adapter) string {
	if adapter != nil && adapter.DescFallback != "" {
		return adapter.DescFallback
	}
	if day := row.Get("day"); day != "" {
		return "Transaction on " + day
	}
	return "Imported transaction"
}

// adapter field selectors, so lookup stays one function instead of five.
type adapterField func(*provider.Adapter) string

func adapterAmount(a *provider.Adapter) string   { return a.AmountField }
func adapterType(a *provider.Adapter) string     { return a.TypeField }
func adapterDate(a *provider.Adapter) string     { return a.DateField }
func adapterDesc(a *provider.Adapter) string     { return a.DescField }
func adapterCategory(a *provider.Adapter) string { return a.CategoryField }

// lookup reads a field preferring the provider's column name, falling back to
// the generically detected role when the provider column is absent or empty.
func lookup(row decoder.Row, rm roles.RoleMap, adapter *provider.Adapter, sel adapterField, role roles.Role) string {
	if adapter != nil {
		if field := sel(adapter); field != "" {
			if v := row.Get(field); v != "" {
				return v
			}
		}
	}
	if header, ok := rm[role]; ok {
		return row.Get(header)
	}
	return ""
}

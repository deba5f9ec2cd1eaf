// Package provider maps known payment-app export formats onto the generic
// import pipeline. Each adapter is a data record naming the provider's column
// spellings; adding a provider means adding one registry entry, not a branch.
package provider

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Adapter describes where a provider's export keeps each transaction field.
// Empty fields fall back to the generically detected column roles, so a file
// missing a provider-specific column still imports (deliberate leniency).
type Adapter struct {
	ID            string
	AmountField   string
	TypeField     string
	DateField     string
	DescField     string
	CategoryField string
	DescFallback  string
}

// Known provider identifiers.
const (
	GooglePay     = "google_pay"
	Paytm         = "paytm"
	PhonePe       = "phonepe"
	AmazonPay     = "amazon_pay"
	BankStatement = "bank_statement"
	Other         = "other"
)

var registry = map[string]Adapter{
	GooglePay: {
		ID:            GooglePay,
		AmountField:   "amount",
		TypeField:     "type",
		DateField:     "date",
		DescField:     "description",
		CategoryField: "category",
		DescFallback:  "Google Pay Transaction",
	},
	Paytm: {
		ID:            Paytm,
		AmountField:   "amount",
		TypeField:     "type",
		DateField:     "date",
		DescField:     "narration",
		CategoryField: "category",
		DescFallback:  "Paytm Transaction",
	},
	PhonePe: {
		ID:            PhonePe,
		AmountField:   "amount",
		TypeField:     "transaction_type",
		DateField:     "transaction_date",
		DescField:     "description",
		CategoryField: "category",
		DescFallback:  "PhonePe Transaction",
	},
	AmazonPay: {
		ID:            AmazonPay,
		AmountField:   "amount",
		TypeField:     "type",
		DateField:     "date",
		DescField:     "description",
		CategoryField: "category",
		DescFallback:  "Amazon Pay Transaction",
	},
	BankStatement: {
		ID:           BankStatement,
		DateField:    "transaction date",
		DescField:    "narration",
		DescFallback: "Bank Transaction",
	},
	// The generic adapter names no columns at all: every field resolves
	// through role detection, which already understands type/transaction_type
	// and date/transaction_date spellings.
	Other: {
		ID:           Other,
		DescFallback: "Imported Transaction",
	},
}

// IDs returns the known provider identifiers in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup resolves a caller-supplied provider hint to an adapter. Exact ids win;
// close spellings ("google pay", "GooglePay") are matched fuzzily against the
// known ids; anything else gets the generic adapter with the hint folded into
// its description fallback.
func Lookup(hint string) Adapter {
	key := normalizeHint(hint)
	if key == "" {
		return registry[Other]
	}
	if a, ok := registry[key]; ok {
		return a
	}
	if id, ok := closestID(key); ok {
		return registry[id]
	}
	a := registry[Other]
	a.ID = key
	a.DescFallback = strings.TrimSpace(hint) + " Transaction"
	return a
}

func normalizeHint(hint string) string {
	key := strings.ToLower(strings.TrimSpace(hint))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}

// closestID fuzzy-matches the hint against known ids and accepts the best
// match only when it is unambiguous and close.
func closestID(key string) (string, bool) {
	compact := strings.ReplaceAll(key, "_", "")
	best := ""
	bestDistance := -1
	for _, id := range IDs() {
		target := strings.ReplaceAll(id, "_", "")
		rank := fuzzy.RankMatchFold(compact, target)
		if rank < 0 {
			continue
		}
		if bestDistance < 0 || rank < bestDistance {
			best = id
			bestDistance = rank
		}
	}
	if bestDistance >= 0 && bestDistance <= 3 {
		return best, true
	}
	return "", false
}

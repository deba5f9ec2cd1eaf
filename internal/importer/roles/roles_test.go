package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    map[Role]string
	}{
		{
			name:    "documented csv shape",
			headers: []string{"Date", "Category", "Description", "Amount", "Type"},
			want: map[Role]string{
				Date:        "Date",
				Category:    "Category",
				Description: "Description",
				Amount:      "Amount",
				Type:        "Type",
			},
		},
		{
			name:    "bank statement shape",
			headers: []string{"Transaction Date", "Narration", "Debit Amount", "Credit Amount"},
			want: map[Role]string{
				Date:         "Transaction Date",
				Description:  "Narration",
				DebitAmount:  "Debit Amount",
				CreditAmount: "Credit Amount",
			},
		},
		{
			name:    "personal info columns",
			headers: []string{"Name", "Email", "Phone", "Address", "Reference"},
			want: map[Role]string{
				Name:    "Name",
				Email:   "Email",
				Phone:   "Phone",
				Address: "Address",
				ID:      "Reference",
			},
		},
		{
			name:    "first matching header wins",
			headers: []string{"Posting Date", "Booking Date", "Amount"},
			want: map[Role]string{
				Date:   "Posting Date",
				Amount: "Amount",
			},
		},
		{
			name:    "no recognizable headers",
			headers: []string{"Foo", "Bar"},
			want:    map[Role]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.headers)
			require.Len(t, got, len(tt.want))
			for role, header := range tt.want {
				assert.Equal(t, header, got[role], "role %s", role)
			}
		})
	}
}

func TestDetectPrefersSpecificAmountRoles(t *testing.T) {
	// A header containing "credit" must claim creditAmount, never the plain
	// amount role, even though it also contains "amount".
	got := Detect([]string{"Credit Amount"})
	assert.Equal(t, "Credit Amount", got[CreditAmount])
	assert.False(t, got.Has(Amount))
}

func TestDetectIdempotent(t *testing.T) {
	headers := []string{"Date", "Debit Amount", "Credit Amount", "Narration", "Type"}
	first := Detect(headers)
	second := Detect(headers)
	assert.Equal(t, first, second)
}

func TestDetectClaimsHeaderOnce(t *testing.T) {
	// "Payment Date" matches both the date and amount keyword sets; date
	// outranks, and the header cannot serve a second role afterwards.
	got := Detect([]string{"Payment Date", "Amount"})
	require.Equal(t, "Payment Date", got[Date])
	assert.Equal(t, "Amount", got[Amount])
}

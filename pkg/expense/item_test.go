package expense

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

var testNow = time.Date(2016, 11, 25, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestNewItem(t *testing.T) {
	item, err := NewItem("bike", "12 Oct", "MIL", "13", "Item 1: My cycle to Paddington and back\n", nil, "R10101-01", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}

	if item.Type() != "bike" {
		t.Errorf("Type() = %q, want %q", item.Type(), "bike")
	}
	if item.Date() != (civil.Date{Year: 2016, Month: time.October, Day: 12}) {
		t.Errorf("Date() = %v", item.Date())
	}
	if item.Currency() != "MIL" {
		t.Errorf("Currency() = %q", item.Currency())
	}
	if item.Amount() != "13" {
		t.Errorf("Amount() = %q", item.Amount())
	}
	if item.Description() != "Item 1: My cycle to Paddington and back" {
		t.Errorf("Description() = %q", item.Description())
	}
	if _, ok := item.Account(); ok {
		t.Error("Account() should be unset")
	}
	if item.Subproject() != "R10101-01" {
		t.Errorf("Subproject() = %q", item.Subproject())
	}
	if !item.IsMileage() {
		t.Error("IsMileage() = false, want true")
	}
}

func TestNewItem_InvalidDate(t *testing.T) {
	_, err := NewItem("food", "someday", "GBP", "10", "lunch", nil, "R1", testNow)
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("NewItem() error = %v, want ErrInvalidDate", err)
	}
}

func TestNewItem_AmountPassesThrough(t *testing.T) {
	tests := []struct {
		amount  string
		line    string
		invalid bool
	}{
		{"007", "food; 12 Oct 2016; GBP 007; lunch", false},
		{"100.", "food; 12 Oct 2016; GBP 100.; lunch", false},
		{".5", "food; 12 Oct 2016; GBP .5; lunch", false},
		{"1.2.3", "food; 12 Oct 2016; GBP 1.2.3; lunch", true},
		{".", "food; 12 Oct 2016; GBP .; lunch", true},
	}

	for _, tt := range tests {
		item, err := NewItem("food", "12 Oct", "GBP", tt.amount, "lunch", nil, "R1", testNow)
		if err != nil {
			t.Fatalf("NewItem(amount=%q) error = %v", tt.amount, err)
		}
		if item.Amount() != tt.amount {
			t.Errorf("Amount() = %q, want %q", item.Amount(), tt.amount)
		}
		if got := item.Line(); got != tt.line {
			t.Errorf("Line() = %q, want %q", got, tt.line)
		}
		if !strings.Contains(item.String(), "amount: "+tt.amount+"\n") {
			t.Errorf("String() = %q", item.String())
		}

		_, err = item.Value()
		if tt.invalid && !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Value(%q) error = %v, want ErrInvalidAmount", tt.amount, err)
		}
		if !tt.invalid && err != nil {
			t.Errorf("Value(%q) error = %v", tt.amount, err)
		}
	}
}

func TestItem_Value(t *testing.T) {
	item, err := NewItem("food", "12 Oct", "GBP", "007.50", "lunch", nil, "R1", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	v, err := item.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if got := FormatAmount(v); got != "7.50" {
		t.Errorf("FormatAmount(Value()) = %q, want 7.50", got)
	}
}

func TestNewItem_AccountIsCopied(t *testing.T) {
	account := "6050"
	item, err := NewItem("plane", "12 Oct", "GBP", "100", "flight", &account, "R1", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	account = "9999"

	got, ok := item.Account()
	if !ok || got != "6050" {
		t.Errorf("Account() = %q, %v; want 6050, true", got, ok)
	}
}

func TestNewItem_EmptyAccountIsNotDefault(t *testing.T) {
	item, err := NewItem("plane", "12 Oct", "GBP", "100", "flight", strPtr(""), "R1", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	got, ok := item.Account()
	if !ok || got != "" {
		t.Errorf("Account() = %q, %v; want \"\", true", got, ok)
	}
}

func TestFormatAmount_PreservesPrecision(t *testing.T) {
	for _, in := range []string{"100", "100.50", "0.05", "13", "1234.000"} {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error = %v", in, err)
		}
		if got := FormatAmount(d); got != in {
			t.Errorf("FormatAmount(ParseAmount(%q)) = %q", in, got)
		}
	}
}

func TestItem_AmountField(t *testing.T) {
	tests := []struct {
		currency string
		want     AmountField
	}{
		{"MIL", AmountFieldMiles},
		{"mil", AmountFieldMiles},
		{"", AmountFieldAmount},
		{"GBP", AmountFieldCurrencyAmount},
	}

	for _, tt := range tests {
		item, err := NewItem("x", "12 Oct", tt.currency, "1", "d", nil, "R1", testNow)
		if err != nil {
			t.Fatalf("NewItem() error = %v", err)
		}
		if got := item.AmountField(); got != tt.want {
			t.Errorf("AmountField(%q) = %q, want %q", tt.currency, got, tt.want)
		}
	}
}

func TestItem_Line(t *testing.T) {
	tests := []struct {
		name    string
		account *string
		curr    string
		sub     string
		desc    string
		want    string
	}{
		{
			name: "no account",
			curr: "GBP",
			want: "plane; 12 Oct 2016; GBP 100.50; Item 1: My flight",
		},
		{
			name:    "with account",
			account: strPtr("6050"),
			curr:    "GBP",
			want:    "plane; 12 Oct 2016; GBP 100.50; 6050; R10101-01; Item 1: My flight",
		},
		{
			name: "default currency",
			curr: "",
			want: "plane; 12 Oct 2016; 100.50; Item 1: My flight",
		},
		{
			name:    "account dropped for subproject with a blank",
			account: strPtr("6050"),
			curr:    "GBP",
			sub:     "R10101 01",
			want:    "plane; 12 Oct 2016; GBP 100.50; Item 1: My flight",
		},
		{
			name:    "leading blanks kept in 4-field form",
			account: strPtr("6050"),
			curr:    "GBP",
			desc:    "  Item 1: My flight",
			want:    "plane; 12 Oct 2016; GBP 100.50;   Item 1: My flight",
		},
		{
			name:    "account not expressible without currency",
			account: strPtr("6050"),
			curr:    "",
			want:    "plane; 12 Oct 2016; 100.50; Item 1: My flight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, desc := tt.sub, tt.desc
			if sub == "" {
				sub = "R10101-01"
			}
			if desc == "" {
				desc = "Item 1: My flight"
			}
			item, err := NewItem("plane", "12 Oct", tt.curr, "100.50", desc, tt.account, sub, testNow)
			if err != nil {
				t.Fatalf("NewItem() error = %v", err)
			}
			if got := item.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItem_String(t *testing.T) {
	item, err := NewItem("plane", "12 Oct", "GBP", "100", "flight", strPtr("6050"), "R10101-01", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}

	s := item.String()
	for _, want := range []string{"type: plane\n", "date: 12/10/2016\n", "account: 6050\n", "subproject: R10101-01\n"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in %q", want, s)
		}
	}
}

func TestItem_MarshalJSON(t *testing.T) {
	item, err := NewItem("food", "12 Oct", "", "7.50", "lunch", nil, "R1", testNow)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["amount"] != "7.50" {
		t.Errorf("amount = %v, want \"7.50\"", got["amount"])
	}
	if got["date"] != "2016-10-12" {
		t.Errorf("date = %v, want 2016-10-12", got["date"])
	}
	if got["account"] != nil {
		t.Errorf("account = %v, want null", got["account"])
	}
	if got["amount_field"] != "amount" {
		t.Errorf("amount_field = %v", got["amount_field"])
	}
}

func TestItem_Equal(t *testing.T) {
	a, _ := NewItem("food", "12 Oct", "GBP", "7.50", "lunch", nil, "R1", testNow)
	b, _ := NewItem("food", "12 Oct 2016", "GBP", "7.50", "lunch", nil, "R1", testNow)
	c, _ := NewItem("food", "12 Oct", "GBP", "7.5", "lunch", nil, "R1", testNow)
	d, _ := NewItem("food", "12 Oct", "GBP", "7.50", "lunch", strPtr("6050"), "R1", testNow)

	if !a.Equal(b) {
		t.Error("Equal() = false for identical values")
	}
	if a.Equal(c) {
		t.Error("Equal() = true for different written precision")
	}
	if a.Equal(d) {
		t.Error("Equal() = true for different account")
	}
}

// Package expense defines a single parsed expense-claim line item.
package expense

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// MileageCode is the currency value meaning the amount is a distance in miles.
const MileageCode = "MIL"

// DisplayDateLayout is the layout used when an item date is shown or sent to a form.
const DisplayDateLayout = "02/01/2006"

// lineDateLayout is the layout used when an item is rendered back to claim-file text.
const lineDateLayout = "2 Jan 2006"

// AmountField names the form field an item amount is entered into.
type AmountField string

const (
	// AmountFieldMiles is used for mileage items.
	AmountFieldMiles AmountField = "miles"
	// AmountFieldAmount is used when the form's default currency is accepted.
	AmountFieldAmount AmountField = "amount"
	// AmountFieldCurrencyAmount is used when an explicit currency is given.
	AmountFieldCurrencyAmount AmountField = "currency_amount"
)

var (
	currencyCodePattern = regexp.MustCompile(`^\w{3}$`)
	accountCodePattern  = regexp.MustCompile(`^\d{4}$`)
	subprojectPattern   = regexp.MustCompile(`^[\w-]+$`)
)

// Item is one expense line. It is immutable once constructed.
type Item struct {
	typ         string
	date        civil.Date
	currency    string
	amount      string
	description string
	account     *string
	subproject  string
}

// NewItem builds an item from the raw fields of a claim line.
//
// A nil account means the external default account is accepted. A date
// without a year takes the year of now. The type code and the amount text
// are passed through unchecked; only the date can fail.
func NewItem(typ, date, currency, amount, description string, account *string, subproject string, now time.Time) (*Item, error) {
	d, err := ParseDate(date, now)
	if err != nil {
		return nil, err
	}

	item := &Item{
		typ:         typ,
		date:        d,
		currency:    currency,
		amount:      amount,
		description: strings.TrimRight(description, "\r\n"),
		subproject:  subproject,
	}
	if account != nil {
		a := *account
		item.account = &a
	}

	return item, nil
}

// Type returns the expense-type code.
func (i *Item) Type() string { return i.typ }

// Date returns the claim date.
func (i *Item) Date() civil.Date { return i.date }

// Currency returns the currency code, MileageCode, or "" for the default currency.
func (i *Item) Currency() string { return i.currency }

// Amount returns the amount exactly as it was written.
func (i *Item) Amount() string { return i.amount }

// Value returns the amount as a decimal, or ErrInvalidAmount when the text
// is not a number, such as "1.2.3".
func (i *Item) Value() (decimal.Decimal, error) { return ParseAmount(i.amount) }

// Description returns the free-text description.
func (i *Item) Description() string { return i.description }

// Subproject returns the resolved subproject code.
func (i *Item) Subproject() string { return i.subproject }

// Account returns the account code and whether one is set. When it is not
// set the external default must be accepted.
func (i *Item) Account() (string, bool) {
	if i.account == nil {
		return "", false
	}
	return *i.account, true
}

// IsMileage reports whether the amount is a distance.
func (i *Item) IsMileage() bool {
	return strings.EqualFold(i.currency, MileageCode)
}

// UsesDefaultCurrency reports whether no currency was given.
func (i *Item) UsesDefaultCurrency() bool {
	return strings.TrimSpace(i.currency) == ""
}

// AmountField returns the form field the amount belongs in.
func (i *Item) AmountField() AmountField {
	switch {
	case i.IsMileage():
		return AmountFieldMiles
	case i.UsesDefaultCurrency():
		return AmountFieldAmount
	default:
		return AmountFieldCurrencyAmount
	}
}

// Line renders the item in claim-file syntax.
//
// Account and subproject are only written when they can be read back: the
// 6-field form needs a 3-letter currency, a 4-digit account, a subproject
// matching [\w-]+ and a description without leading blanks, which that form
// would strip. Otherwise the 4-field form is used, the account is dropped and
// both come from the reader's defaults. Reading the line back with other
// defaults than the item was built with therefore changes those two fields.
func (i *Item) Line() string {
	date := i.date.In(time.UTC).Format(lineDateLayout)
	amount := i.amount

	money := amount
	if i.currency != "" {
		money = i.currency + " " + amount
	}

	if i.account != nil &&
		currencyCodePattern.MatchString(i.currency) &&
		accountCodePattern.MatchString(*i.account) &&
		subprojectPattern.MatchString(i.subproject) &&
		!startsWithBlank(i.description) {
		return fmt.Sprintf("%s; %s; %s; %s; %s; %s", i.typ, date, money, *i.account, i.subproject, i.description)
	}

	return fmt.Sprintf("%s; %s; %s; %s", i.typ, date, money, i.description)
}

// Equal reports whether two items carry the same values.
func (i *Item) Equal(o *Item) bool {
	if i == nil || o == nil {
		return i == o
	}
	ia, iok := i.Account()
	oa, ook := o.Account()
	return i.typ == o.typ &&
		i.date == o.date &&
		i.currency == o.currency &&
		i.amount == o.amount &&
		i.description == o.description &&
		iok == ook && ia == oa &&
		i.subproject == o.subproject
}

func startsWithBlank(s string) bool {
	return strings.TrimLeft(s, " \t\f\r\n") != s
}

func (i *Item) String() string {
	account, _ := i.Account()
	return "type: " + i.typ + "\n" +
		"date: " + i.date.In(time.UTC).Format(DisplayDateLayout) + "\n" +
		"currency: " + i.currency + "\n" +
		"amount: " + i.amount + "\n" +
		"description: " + i.description + "\n" +
		"subproject: " + i.subproject + "\n" +
		"account: " + account + "\n"
}

type itemJSON struct {
	Type        string      `json:"type"`
	Date        civil.Date  `json:"date"`
	Currency    string      `json:"currency"`
	Amount      string      `json:"amount"`
	AmountField AmountField `json:"amount_field"`
	Description string      `json:"description"`
	Account     *string     `json:"account"`
	Subproject  string      `json:"subproject"`
}

// MarshalJSON encodes the item with its amount text as written.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		Type:        i.typ,
		Date:        i.date,
		Currency:    i.currency,
		Amount:      i.amount,
		AmountField: i.AmountField(),
		Description: i.description,
		Account:     i.account,
		Subproject:  i.subproject,
	})
}

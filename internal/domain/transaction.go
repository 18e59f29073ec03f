package domain

import "time"

// Transaction is one bank-reported movement as stored in the transactions
// collection. Monetary fields are persisted exactly as the scraper reported
// them, even when currency and amount are mutually inconsistent.
type Transaction struct {
	AccountNumber string `bson:"accountNumber"`
	CompanyID     string `bson:"companyId"`
	UserCode      string `bson:"userCode"`

	// Date is when the transaction happened; ProcessedDate is when it
	// settled/cleared.
	Date          time.Time `bson:"date"`
	ProcessedDate time.Time `bson:"processedDate"`

	Description           string  `bson:"description"`
	Memo                  *string `bson:"memo"`
	TranslatedDescription *string `bson:"translatedDescription"`

	OriginalAmount   float64 `bson:"originalAmount"`
	OriginalCurrency string  `bson:"originalCurrency"`
	ChargedAmount    float64 `bson:"chargedAmount"`

	Type         string        `bson:"type"`
	Status       string        `bson:"status"`
	Identifier   *string       `bson:"identifier"`
	Installments *Installments `bson:"installments"`

	ChatID int64 `bson:"chatId"`
}

// Installments describes which payment of how many this movement is.
type Installments struct {
	Number int `bson:"number"`
	Count  int `bson:"count"`
}

// IdentityKey matches a transaction to its stored counterpart for upsert.
// Dates are reduced to Unix milliseconds: that is the precision Mongo stores
// them at, and it keeps the key a plain comparable value.
type IdentityKey struct {
	DateMillis    int64
	ChargedAmount float64
	Description   string
}

// SettlementKey decides whether a transaction may be skipped as already
// fully processed. It only counts as settled when the stored record with
// this key also carries a non-null translated description.
type SettlementKey struct {
	IdentityKey
	ProcessedDateMillis int64
	Status              string
}

// IdentityKey returns the identity key of t.
func (t *Transaction) IdentityKey() IdentityKey {
	return IdentityKey{
		DateMillis:    t.Date.UnixMilli(),
		ChargedAmount: t.ChargedAmount,
		Description:   t.Description,
	}
}

// SettlementKey returns the settlement key of t.
func (t *Transaction) SettlementKey() SettlementKey {
	return SettlementKey{
		IdentityKey:         t.IdentityKey(),
		ProcessedDateMillis: t.ProcessedDate.UnixMilli(),
		Status:              t.Status,
	}
}

// TranslationKey returns the text a translation is cached under:
// the description, with the memo appended when one is present.
func (t *Transaction) TranslationKey() string {
	if t.Memo != nil && *t.Memo != "" {
		return t.Description + " - " + *t.Memo
	}
	return t.Description
}

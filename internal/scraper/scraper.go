package scraper

// Types mirroring the scraping service's wire format.

// Request is the body posted to the scraping service for one account.
type Request struct {
	CompanyID   string            `json:"companyId"`
	Credentials map[string]string `json:"credentials"`
	// StartDate is ISO 8601; the service scrapes from it up to now.
	StartDate string `json:"startDate"`
	// CombineInstallments stays false: each installment arrives as its own
	// movement so the identity key stays stable across syncs.
	CombineInstallments bool `json:"combineInstallments"`
}

// Result is the scraping service's response. Success false carries the
// failure classification instead of accounts.
type Result struct {
	Success      bool      `json:"success"`
	Accounts     []Account `json:"accounts"`
	ErrorType    string    `json:"errorType"`
	ErrorMessage string    `json:"errorMessage"`
}

// Account is one scraped account with its raw movements.
type Account struct {
	AccountNumber string        `json:"accountNumber"`
	Transactions  []Transaction `json:"txns"`
}

// Transaction is a raw scraped movement, before normalization.
type Transaction struct {
	Type             string  `json:"type"`
	Date             string  `json:"date"`
	ProcessedDate    string  `json:"processedDate"`
	OriginalAmount   float64 `json:"originalAmount"`
	OriginalCurrency string  `json:"originalCurrency"`
	ChargedAmount    float64 `json:"chargedAmount"`
	Description      string  `json:"description"`
	Memo             *string `json:"memo"`
	Identifier       *string `json:"identifier"`
	Status           string  `json:"status"`
	Installments     *struct {
		Number int `json:"number"`
		Count  int `json:"count"`
	} `json:"installments"`
}

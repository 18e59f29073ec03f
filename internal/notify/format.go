package notify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cneltyn-s/shekel-streamer/internal/domain"
)

// formatMessage renders one transaction as a markdown chat message.
func formatMessage(t domain.Transaction, loc *time.Location) string {
	title := t.Description
	if t.TranslatedDescription != nil && *t.TranslatedDescription != "" {
		title = *t.TranslatedDescription
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*\n", directionMarker(t.ChargedAmount), title)
	if title != t.Description {
		fmt.Fprintf(&b, "_%s_\n", t.Description)
	}
	if t.Memo != nil && *t.Memo != "" {
		fmt.Fprintf(&b, "%s\n", *t.Memo)
	}
	fmt.Fprintf(&b, "Amount: %s\n", formatAmount(t.ChargedAmount, t.OriginalCurrency))
	fmt.Fprintf(&b, "Date: %s\n", formatDate(t.Date, loc))
	fmt.Fprintf(&b, "Processed: %s\n", formatDate(t.ProcessedDate, loc))
	fmt.Fprintf(&b, "Account: %s (%s)\n", t.AccountNumber, t.CompanyID)
	if t.Installments != nil {
		fmt.Fprintf(&b, "Installment: %d of %d\n", t.Installments.Number, t.Installments.Count)
	}
	fmt.Fprintf(&b, "Status: %s", t.Status)
	return b.String()
}

// directionMarker distinguishes credit from debit at a glance.
func directionMarker(amount float64) string {
	if amount < 0 {
		return "➖"
	}
	return "➕"
}

// formatAmount renders the absolute amount in the transaction's original
// currency. Unknown or mislabeled currency codes fall back to a plain
// two-decimal rendering; the value itself is never corrected.
func formatAmount(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", math.Abs(amount), code)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.NarrowSymbol(unit.Amount(math.Abs(amount))))
}

// formatDate renders the timestamp in the display timezone, dropping the
// time of day when it is exactly midnight there.
func formatDate(ts time.Time, loc *time.Location) string {
	local := ts.In(loc)
	if local.Hour() == 0 && local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0 {
		return local.Format("02/01/2006")
	}
	return local.Format("02/01/2006 15:04")
}

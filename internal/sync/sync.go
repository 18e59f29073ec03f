package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cneltyn-s/shekel-streamer/internal/config"
	"github.com/cneltyn-s/shekel-streamer/internal/domain"
	"github.com/cneltyn-s/shekel-streamer/internal/logger"
	"github.com/cneltyn-s/shekel-streamer/internal/scraper"
)

// Scraper fetches raw movements for one account from startDate up to now.
type Scraper interface {
	Scrape(ctx context.Context, companyID string, credentials map[string]string, startDate time.Time) (*scraper.Result, error)
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	SettledKeys(ctx context.Context, candidates []domain.Transaction) ([]domain.SettlementKey, error)
	Upsert(ctx context.Context, t domain.Transaction) (bool, error)
}

// Translator resolves a batch of texts to positionally aligned
// translations; nil entries stay untranslated this run.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]*string, error)
}

// Notifier delivers a best-effort message for a newly inserted transaction.
type Notifier interface {
	Send(ctx context.Context, t domain.Transaction)
}

// Syncer drives one task end to end: fetch, normalize, filter, chunk,
// translate, persist, notify. All steps are strictly sequential.
type Syncer struct {
	scraper    Scraper
	store      Store
	translator Translator
	notifier   Notifier

	lookbackDays int
	chunkSize    int

	now func() time.Time
}

// New wires a syncer from its collaborators.
func New(sc Scraper, st Store, tr Translator, nt Notifier, lookbackDays, chunkSize int) *Syncer {
	return &Syncer{
		scraper:      sc,
		store:        st,
		translator:   tr,
		notifier:     nt,
		lookbackDays: lookbackDays,
		chunkSize:    chunkSize,
		now:          time.Now,
	}
}

// SyncTask syncs one account/company pair. A provider-reported acquisition
// failure ends the task after logging; it is not retried, since those
// failures need human or credential intervention. Store errors propagate
// and abort the task.
func (s *Syncer) SyncTask(ctx context.Context, task config.Task) error {
	log := logger.FromContext(ctx).With().
		Str("user", task.User).Str("company", task.Company).Logger()
	ctx = logger.WithContext(ctx, log)

	start := s.now().AddDate(0, 0, -s.lookbackDays)
	log.Info().Time("start_date", start).Msg("Fetching transactions")

	result, err := s.scraper.Scrape(ctx, task.Company, task.Credentials, start)
	if err != nil {
		return fmt.Errorf("sync: scraping: %w", err)
	}
	if !result.Success {
		log.Error().
			Str("error_type", result.ErrorType).
			Str("error_message", result.ErrorMessage).
			Msg("Scrape failed")
		return nil
	}

	txs, err := normalize(result.Accounts, task)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		log.Info().Msg("No transactions fetched")
		return nil
	}

	// Chronological order makes notification order deterministic.
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })

	settled, err := s.store.SettledKeys(ctx, txs)
	if err != nil {
		return fmt.Errorf("sync: loading settled keys: %w", err)
	}
	pending := filterSettled(txs, settled)
	log.Info().Int("fetched", len(txs)).Int("pending", len(pending)).
		Msg("Filtered settled transactions")
	if len(pending) == 0 {
		return nil
	}

	var inserted, updated int
	for _, chunk := range chunkTransactions(pending, s.chunkSize) {
		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].TranslationKey()
		}
		translations, err := s.translator.Translate(ctx, texts)
		if err != nil {
			return fmt.Errorf("sync: translating: %w", err)
		}

		for i := range chunk {
			chunk[i].TranslatedDescription = translations[i]

			isNew, err := s.store.Upsert(ctx, chunk[i])
			if err != nil {
				return fmt.Errorf("sync: persisting transaction: %w", err)
			}
			if isNew {
				inserted++
				s.notifier.Send(ctx, chunk[i])
			} else {
				updated++
			}
		}
	}

	log.Info().Int("new", inserted).Int("updated", updated).Msg("Sync finished")
	return nil
}

// normalize flattens scraped accounts into canonical transactions carrying
// the task's identity and notification destination.
func normalize(accounts []scraper.Account, task config.Task) ([]domain.Transaction, error) {
	userCode := task.Credentials["userCode"]
	if userCode == "" {
		userCode = task.User
	}

	var txs []domain.Transaction
	for _, acc := range accounts {
		for _, raw := range acc.Transactions {
			date, err := time.Parse(time.RFC3339, raw.Date)
			if err != nil {
				return nil, fmt.Errorf("sync: parsing transaction date %q: %w", raw.Date, err)
			}
			processed := date
			if raw.ProcessedDate != "" {
				processed, err = time.Parse(time.RFC3339, raw.ProcessedDate)
				if err != nil {
					return nil, fmt.Errorf("sync: parsing processed date %q: %w", raw.ProcessedDate, err)
				}
			}

			var installments *domain.Installments
			if raw.Installments != nil {
				installments = &domain.Installments{
					Number: raw.Installments.Number,
					Count:  raw.Installments.Count,
				}
			}

			txs = append(txs, domain.Transaction{
				AccountNumber:    acc.AccountNumber,
				CompanyID:        task.Company,
				UserCode:         userCode,
				Date:             date,
				ProcessedDate:    processed,
				Description:      raw.Description,
				Memo:             raw.Memo,
				OriginalAmount:   raw.OriginalAmount,
				OriginalCurrency: raw.OriginalCurrency,
				ChargedAmount:    raw.ChargedAmount,
				Type:             raw.Type,
				Status:           raw.Status,
				Identifier:       raw.Identifier,
				Installments:     installments,
				ChatID:           task.ChatID,
			})
		}
	}
	return txs, nil
}

// filterSettled drops candidates whose settlement key matches a stored,
// already-translated record. A stored record with a null translation does
// not settle its transaction, so failed enrichment is retried every sync.
func filterSettled(txs []domain.Transaction, settled []domain.SettlementKey) []domain.Transaction {
	if len(settled) == 0 {
		return txs
	}
	skip := make(map[domain.SettlementKey]struct{}, len(settled))
	for _, k := range settled {
		skip[k] = struct{}{}
	}
	var pending []domain.Transaction
	for _, t := range txs {
		if _, ok := skip[t.SettlementKey()]; !ok {
			pending = append(pending, t)
		}
	}
	return pending
}

// chunkTransactions partitions txs into batches of at most size, bounding
// the payload of a single translation call.
func chunkTransactions(txs []domain.Transaction, size int) [][]domain.Transaction {
	var chunks [][]domain.Transaction
	for start := 0; start < len(txs); start += size {
		chunks = append(chunks, txs[start:min(start+size, len(txs))])
	}
	return chunks
}

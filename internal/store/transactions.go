package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cneltyn-s/shekel-streamer/internal/domain"
)

const transactionsCollection = "transactions"

// TransactionRepo persists transactions and answers settlement queries.
type TransactionRepo struct {
	sessions *Sessions
}

// NewTransactionRepo creates a transaction repository over the given
// session factory.
func NewTransactionRepo(sessions *Sessions) *TransactionRepo {
	return &TransactionRepo{sessions: sessions}
}

// SettledKeys returns the settlement keys among the candidates that already
// have a stored record with a non-null translated description. One
// disjunctive query covers the whole batch. A record whose earlier sync
// failed to translate does not count as settled, so it keeps flowing
// through the pipeline until translation succeeds.
func (r *TransactionRepo) SettledKeys(ctx context.Context, candidates []domain.Transaction) ([]domain.SettlementKey, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	db, release, err := r.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ors := make(bson.A, 0, len(candidates))
	for i := range candidates {
		t := &candidates[i]
		ors = append(ors, bson.M{
			"date":                  t.Date,
			"chargedAmount":         t.ChargedAmount,
			"description":           t.Description,
			"processedDate":         t.ProcessedDate,
			"status":                t.Status,
			"translatedDescription": bson.M{"$nin": bson.A{nil, ""}},
		})
	}

	projection := bson.M{
		"date":          1,
		"chargedAmount": 1,
		"description":   1,
		"processedDate": 1,
		"status":        1,
	}

	cur, err := db.Collection(transactionsCollection).
		Find(ctx, bson.M{"$or": ors}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("store: querying settled transactions: %w", err)
	}
	defer cur.Close(ctx)

	var keys []domain.SettlementKey
	for cur.Next(ctx) {
		var doc struct {
			Date          time.Time `bson:"date"`
			ChargedAmount float64   `bson:"chargedAmount"`
			Description   string    `bson:"description"`
			ProcessedDate time.Time `bson:"processedDate"`
			Status        string    `bson:"status"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decoding settled transaction: %w", err)
		}
		keys = append(keys, domain.SettlementKey{
			IdentityKey: domain.IdentityKey{
				DateMillis:    doc.Date.UnixMilli(),
				ChargedAmount: doc.ChargedAmount,
				Description:   doc.Description,
			},
			ProcessedDateMillis: doc.ProcessedDate.UnixMilli(),
			Status:              doc.Status,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating settled transactions: %w", err)
	}

	return keys, nil
}

// Upsert stores t, matching an existing record by the identity key
// (date, chargedAmount, description). It reports true when a new record was
// inserted, false when an existing one was updated. createdAt is stamped
// once on insert; updatedAt on every write.
func (r *TransactionRepo) Upsert(ctx context.Context, t domain.Transaction) (bool, error) {
	db, release, err := r.sessions.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	now := time.Now().UTC()
	filter := bson.M{
		"date":          t.Date,
		"chargedAmount": t.ChargedAmount,
		"description":   t.Description,
	}
	update := bson.M{
		"$set": bson.M{
			"accountNumber":         t.AccountNumber,
			"companyId":             t.CompanyID,
			"userCode":              t.UserCode,
			"date":                  t.Date,
			"processedDate":         t.ProcessedDate,
			"description":           t.Description,
			"memo":                  t.Memo,
			"translatedDescription": t.TranslatedDescription,
			"originalAmount":        t.OriginalAmount,
			"originalCurrency":      t.OriginalCurrency,
			"chargedAmount":         t.ChargedAmount,
			"type":                  t.Type,
			"status":                t.Status,
			"identifier":            t.Identifier,
			"installments":          t.Installments,
			"chatId":                t.ChatID,
			"updatedAt":             now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	res, err := db.Collection(transactionsCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("store: upserting transaction: %w", err)
	}

	return res.UpsertedCount > 0, nil
}

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const translationsCollection = "translations"

// TranslationRepo is the durable side of the translation cache: documents
// keyed by the exact source text. Entries are immutable once written.
type TranslationRepo struct {
	sessions *Sessions
}

// NewTranslationRepo creates a translation repository over the given
// session factory.
func NewTranslationRepo(sessions *Sessions) *TranslationRepo {
	return &TranslationRepo{sessions: sessions}
}

// EnsureIndexes creates the unique index on the source text. Run once at
// startup; duplicate inserts rely on it.
func (r *TranslationRepo) EnsureIndexes(ctx context.Context) error {
	db, release, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = db.Collection(translationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "text", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("store: creating translations index: %w", err)
	}
	return nil
}

// Lookup returns the cached translations for the given texts, keyed by the
// exact source text. Texts with no entry are simply absent from the map.
func (r *TranslationRepo) Lookup(ctx context.Context, texts []string) (map[string]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	db, release, err := r.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	cur, err := db.Collection(translationsCollection).
		Find(ctx, bson.M{"text": bson.M{"$in": texts}})
	if err != nil {
		return nil, fmt.Errorf("store: querying translations: %w", err)
	}
	defer cur.Close(ctx)

	found := make(map[string]string)
	for cur.Next(ctx) {
		var doc struct {
			Text        string `bson:"text"`
			Translation string `bson:"translation"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("store: decoding translation: %w", err)
		}
		found[doc.Text] = doc.Translation
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating translations: %w", err)
	}

	return found, nil
}

// Save caches one text → translation pair. First writer wins: a duplicate
// key error means another run already cached this text and is not an error.
func (r *TranslationRepo) Save(ctx context.Context, text, translation string) error {
	db, release, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = db.Collection(translationsCollection).
		InsertOne(ctx, bson.M{"text": text, "translation": translation})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("store: saving translation: %w", err)
	}
	return nil
}

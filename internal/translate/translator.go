package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cneltyn-s/shekel-streamer/internal/logger"
)

// maxAttempts bounds the batch translation call: one try plus retries.
const maxAttempts = 5

// Cache is the durable lookup behind the translator.
type Cache interface {
	Lookup(ctx context.Context, texts []string) (map[string]string, error)
	Save(ctx context.Context, text, translation string) error
}

// Model is the external translation call: one prompt in, free text out.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service translates batches of transaction descriptions cache-aside:
// cached texts are served from the store, the rest go to the model in a
// single call, and resolved pairs are written back.
type Service struct {
	cache  Cache
	model  Model
	prompt string

	newBackOff func() backoff.BackOff
}

// NewService creates a translation service. A nil model disables
// translation entirely: Translate becomes a no-op returning nil for every
// input, with no cache access.
func NewService(cache Cache, model Model, prompt string) *Service {
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &Service{
		cache:      cache,
		model:      model,
		prompt:     prompt,
		newBackOff: newTranslationBackOff,
	}
}

func newTranslationBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Second
	bo.Multiplier = 2
	bo.MaxInterval = 10 * time.Minute
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, maxAttempts-1)
}

// Translate returns translations positionally aligned with texts. A nil
// entry means the text could not be translated in this run; the caller
// persists it untranslated and it will be retried on the next sync.
// Transport failures degrade to nils; store failures propagate.
func (s *Service) Translate(ctx context.Context, texts []string) ([]*string, error) {
	out := make([]*string, len(texts))
	if s.model == nil || len(texts) == 0 {
		return out, nil
	}

	// Unique texts in first-occurrence order: the same text appearing twice
	// in a batch is looked up and translated exactly once.
	seen := make(map[string]struct{}, len(texts))
	unique := make([]string, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		return out, nil
	}

	resolved, err := s.cache.Lookup(ctx, unique)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		resolved = make(map[string]string)
	}

	var missing []string
	for _, t := range unique {
		if _, ok := resolved[t]; !ok {
			missing = append(missing, t)
		}
	}

	if len(missing) > 0 {
		translations, err := s.translateBatch(ctx, missing)
		if err != nil {
			// Degrade: the affected texts stay nil and are retried on the
			// next sync. Never fail the run over translation.
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Int("texts", len(missing)).
				Msg("Translation failed after retries, leaving descriptions untranslated")
		} else {
			for i, t := range missing {
				resolved[t] = translations[i]
				if err := s.cache.Save(ctx, t, translations[i]); err != nil {
					return nil, err
				}
			}
		}
	}

	for i, t := range texts {
		if v, ok := resolved[t]; ok {
			v := v
			out[i] = &v
		}
	}
	return out, nil
}

// translateBatch sends the unique missing texts to the model in one call
// and retries with exponential backoff on any failure, including a
// malformed response shape.
func (s *Service) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	prompt := strings.ReplaceAll(s.prompt, promptPlaceholder, strings.Join(texts, "\n"))

	op := func() ([]string, error) {
		raw, err := s.model.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return parseBatchResponse(raw, len(texts))
	}
	return backoff.RetryWithData(op, backoff.WithContext(s.newBackOff(), ctx))
}

// parseBatchResponse maps the model's free-text reply onto the input texts.
// The model's first line is its own framing and is discarded; lines 2..N+1
// are the translations for inputs 1..N. Any other line count is a failure,
// never a silent misalignment.
func parseBatchResponse(raw string, count int) ([]string, error) {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	if len(lines) != count+1 {
		return nil, fmt.Errorf("translate: expected %d response lines for %d texts, got %d", count+1, count, len(lines))
	}
	translations := lines[1:]
	for i := range translations {
		translations[i] = strings.TrimSpace(translations[i])
	}
	return translations, nil
}

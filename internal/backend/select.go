package backend

import (
	"context"
	"log"

	"github.com/dshills/cmdrecall/internal/config"
	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/storage"
)

// Select picks the similarity backend for this process. Precedence is
// tfidf, then dense, then none. A pinned backend from cfg.Backend is tried
// first; if it is unavailable, selection falls through the remaining
// precedence order. A nil Backend with a nil error means no vector backend
// is available and lexical fallback scoring applies.
//
// Selection is performed once; callers hold the result for the process
// lifetime.
func Select(ctx context.Context, cfg config.Config, store storage.Store) (Backend, error) {
	order := precedence(cfg.Backend)

	for _, name := range order {
		switch name {
		case config.BackendTFIDF:
			return NewTFIDF(), nil

		case config.BackendDense:
			b, err := tryDense(ctx, cfg, store)
			if err != nil {
				log.Printf("DEBUG: dense backend unavailable: %v", err)
				continue
			}
			return b, nil

		case config.BackendNone:
			return nil, nil
		}
	}
	return nil, nil
}

// precedence returns the backend names to try, pin first.
func precedence(pin string) []string {
	order := []string{config.BackendTFIDF, config.BackendDense, config.BackendNone}
	switch pin {
	case config.BackendTFIDF, config.BackendDense, config.BackendNone:
	default:
		return order
	}

	out := []string{pin}
	for _, name := range order {
		if name != pin {
			out = append(out, name)
		}
	}
	return out
}

func tryDense(ctx context.Context, cfg config.Config, store storage.Store) (*DenseBackend, error) {
	emb, err := embedder.NewFromEnv(cfg.ForceCPUOnly)
	if err != nil {
		return nil, err
	}

	stored, err := store.ListEmbeddingBlobs(ctx)
	if err != nil {
		emb.Close()
		return nil, err
	}

	return NewDense(emb, stored), nil
}

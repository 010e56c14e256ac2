// Package identity manages the anonymous per-browser visitor identifier
// behind the chat widget. The id is generated once and persisted; everything
// visitor-scoped keys off it.
package identity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pawsteps/platform/internal/storage"
	"github.com/pawsteps/platform/pkg/logging"
)

// Provider returns the stable visitor id for this installation.
type Provider struct {
	store  storage.Store
	logger *logging.Logger
}

// NewProvider creates a Provider over the given store.
func NewProvider(store storage.Store, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.Default()
	}
	return &Provider{store: store, logger: logger}
}

// VisitorID returns the persisted visitor id, generating and storing one on
// first access. It returns "" when the store is unavailable; callers must
// treat "" as "do not attempt visitor-scoped requests".
func (p *Provider) VisitorID() string {
	existing, ok, err := p.store.Get(storage.KeyVisitorID)
	if err != nil {
		p.logger.Warn("identity: store read failed", "error", err)
		return ""
	}
	if ok && existing != "" {
		return existing
	}

	id := generate()
	if err := p.store.Set(storage.KeyVisitorID, id); err != nil {
		p.logger.Warn("identity: store write failed", "error", err)
		return ""
	}
	return id
}

func generate() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	// Entropy exhaustion is effectively unreachable, but the widget must
	// still produce an identifier.
	return fmt.Sprintf("visitor-%d-%04x", time.Now().UnixMilli(), rand.Intn(0x10000))
}

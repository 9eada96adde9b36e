package ledger

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// PrefixStore maps guild IDs to their command prefix.
type PrefixStore struct {
	mu       sync.Mutex
	byGuild  map[string]string
	fallback string
	snap     *Snapshotter
	logger   *log.Entry
}

func NewPrefixStore(snap *Snapshotter, fallback string) (*PrefixStore, error) {
	p := &PrefixStore{
		byGuild:  make(map[string]string),
		fallback: fallback,
		snap:     snap,
		logger:   log.WithField("context", "prefix_store"),
	}
	if err := snap.Load(prefixesFile, &p.byGuild); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PrefixStore) Get(guildID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prefix, ok := p.byGuild[guildID]; ok && prefix != "" {
		return prefix
	}
	return p.fallback
}

func (p *PrefixStore) Set(guildID, prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byGuild[guildID] = prefix
	if err := p.snap.Save(prefixesFile, p.byGuild); err != nil {
		p.logger.WithError(err).Error("cant flush prefixes")
	}
}

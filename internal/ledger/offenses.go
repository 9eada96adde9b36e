package ledger

import (
	"sort"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/observability"
)

const offenseTimeLayout = "2006-01-02 15:04:05"

type (
	// Offense is immutable once recorded. The sequence per user is
	// append-only, chronological, and only an explicit administrative
	// reset may empty it.
	Offense struct {
		Time    string `json:"time"`
		Content string `json:"content"`
		Channel string `json:"channel"`
		Link    string `json:"link"`
	}

	OffenseLedger struct {
		mu     sync.Mutex
		byUser map[string][]Offense
		snap   *Snapshotter
		logger *log.Entry
		now    func() time.Time
	}

	OffenderRank struct {
		UserID int64
		Count  int
	}
)

func NewOffenseLedger(snap *Snapshotter) (*OffenseLedger, error) {
	l := &OffenseLedger{
		byUser: make(map[string][]Offense),
		snap:   snap,
		logger: log.WithField("context", "offense_ledger"),
		now:    time.Now,
	}
	if err := snap.Load(offensesFile, &l.byUser); err != nil {
		return nil, err
	}
	return l, nil
}

// Record appends one offense and returns the user's new total. The flush is
// synchronous; on write failure the in-memory state stays authoritative and
// the next mutation rewrites the whole file anyway.
func (l *OffenseLedger) Record(userID int64, content, channel, link string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := strconv.FormatInt(userID, 10)
	l.byUser[key] = append(l.byUser[key], Offense{
		Time:    l.now().UTC().Format(offenseTimeLayout) + " UTC",
		Content: content,
		Channel: channel,
		Link:    link,
	})
	observability.RecordOffense()
	l.flushLocked()
	return len(l.byUser[key])
}

// Reset clears a user's history. Administrative path only.
func (l *OffenseLedger) Reset(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.byUser, strconv.FormatInt(userID, 10))
	l.flushLocked()
}

func (l *OffenseLedger) Count(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byUser[strconv.FormatInt(userID, 10)])
}

func (l *OffenseLedger) List(userID int64) []Offense {
	l.mu.Lock()
	defer l.mu.Unlock()

	offenses := l.byUser[strconv.FormatInt(userID, 10)]
	out := make([]Offense, len(offenses))
	copy(out, offenses)
	return out
}

func (l *OffenseLedger) TopOffenders(limit int) []OffenderRank {
	l.mu.Lock()
	defer l.mu.Unlock()

	ranks := make([]OffenderRank, 0, len(l.byUser))
	for key, offenses := range l.byUser {
		if len(offenses) == 0 {
			continue
		}
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			l.logger.WithField("key", key).Warn("non-numeric user key in offense ledger")
			continue
		}
		ranks = append(ranks, OffenderRank{UserID: userID, Count: len(offenses)})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].UserID < ranks[j].UserID
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

func (l *OffenseLedger) flushLocked() {
	if err := l.snap.Save(offensesFile, l.byUser); err != nil {
		l.logger.WithError(err).Error("cant flush offenses")
	}
}

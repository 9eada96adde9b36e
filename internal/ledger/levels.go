package ledger

import (
	"math"
	"sort"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/config"
)

type (
	// Stats holds the per-user gamification counters. XP stays strictly
	// below the next-level threshold; overflow rolls into level
	// increments.
	Stats struct {
		Points int `json:"points"`
		XP     int `json:"xp"`
		Level  int `json:"level"`
	}

	LevelingLedger struct {
		mu     sync.Mutex
		byUser map[string]*Stats
		policy config.LevelingPolicy
		snap   *Snapshotter
		logger *log.Entry
	}

	LeaderboardEntry struct {
		UserID int64
		Level  int
		XP     int
	}
)

func NewLevelingLedger(snap *Snapshotter, policy config.LevelingPolicy) (*LevelingLedger, error) {
	l := &LevelingLedger{
		byUser: make(map[string]*Stats),
		policy: policy,
		snap:   snap,
		logger: log.WithField("context", "leveling_ledger"),
	}
	if err := snap.Load(userdataFile, &l.byUser); err != nil {
		return nil, err
	}
	return l, nil
}

// Threshold is the XP needed to leave the given level.
func (l *LevelingLedger) Threshold(level int) int {
	return int(float64(l.policy.Base) * math.Pow(l.policy.Multiplier, float64(level)))
}

// Award adds points and XP, rolling XP overflow into levels. A single large
// award can cross several thresholds, hence the loop. Flushes synchronously
// after the mutation; this is the hot path and that cost is deliberate.
func (l *LevelingLedger) Award(userID int64, points, xp int) (leveledUp bool, newLevel int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := l.statsLocked(userID)
	stats.Points += points
	stats.XP += xp
	for {
		threshold := l.Threshold(stats.Level)
		if threshold <= 0 || stats.XP < threshold {
			break
		}
		stats.XP -= threshold
		stats.Level++
		leveledUp = true
	}
	l.flushLocked()
	return leveledUp, stats.Level
}

// Stats is a pure read: querying an unseen user must not materialize them.
func (l *LevelingLedger) Stats(userID int64) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if stats, ok := l.byUser[strconv.FormatInt(userID, 10)]; ok {
		return *stats
	}
	return Stats{}
}

func (l *LevelingLedger) Leaderboard(limit int) []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]LeaderboardEntry, 0, len(l.byUser))
	for key, stats := range l.byUser {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			l.logger.WithField("key", key).Warn("non-numeric user key in leveling ledger")
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: userID, Level: stats.Level, XP: stats.XP})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Level != entries[j].Level {
			return entries[i].Level > entries[j].Level
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (l *LevelingLedger) statsLocked(userID int64) *Stats {
	key := strconv.FormatInt(userID, 10)
	stats, ok := l.byUser[key]
	if !ok {
		stats = &Stats{}
		l.byUser[key] = stats
	}
	return stats
}

func (l *LevelingLedger) flushLocked() {
	if err := l.snap.Save(userdataFile, l.byUser); err != nil {
		l.logger.WithError(err).Error("cant flush userdata")
	}
}

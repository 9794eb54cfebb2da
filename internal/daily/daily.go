package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// Fleet lays out the day's ships. Every player gets the same board for the
// same date, salt and config.
func Fleet(date time.Time, salt string, cfg game.Config) (*game.Fleet, error) {
	return game.GenerateFleet(cfg, game.NewSeededRand(Seed(date, salt)))
}

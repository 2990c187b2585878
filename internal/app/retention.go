package app

import (
	"fmt"
	"time"

	"github.com/dkeye/Whiteboard/internal/domain"
)

// Retention decides what happens to a room once its last member leaves.
type Retention int

const (
	RetainForever Retention = iota
	DeleteWhenEmpty
	DeleteAfterGrace
)

const DefaultGrace = 5 * time.Minute

var retentionNames = map[Retention]string{
	RetainForever:    "retain-forever",
	DeleteWhenEmpty:  "delete-when-empty",
	DeleteAfterGrace: "delete-after-grace-period",
}

func (r Retention) String() string {
	if name, ok := retentionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("retention(%d)", int(r))
}

func ParseRetention(s string) (Retention, error) {
	for r, name := range retentionNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownRetention, s)
}

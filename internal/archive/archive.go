// Package archive writes daily ranking snapshots to object storage.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/fathima-sithara/jungbot/internal/rankcache"
)

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// Snapshot is one group's ranking over [From, To].
type Snapshot struct {
	GroupID int64                   `json:"group_id"`
	Group   *rankcache.GroupDetails `json:"group,omitempty"`
	From    time.Time               `json:"from"`
	To      time.Time               `json:"to"`
	Total   int                     `json:"total"`
	Entries []rankcache.RankEntry   `json:"entries"`
}

func NewSnapshot(r rankcache.Ranking, from, to time.Time) Snapshot {
	return Snapshot{
		GroupID: r.GroupID,
		Group:   r.Group,
		From:    from.UTC(),
		To:      to.UTC(),
		Total:   r.Total,
		Entries: r.Entries,
	}
}

// ObjectKey is <prefix>/<chat id>/<YYYY-MM-DD>.json for the UTC day of at.
func ObjectKey(prefix string, groupID int64, at time.Time) string {
	return path.Join(prefix, strconv.FormatInt(groupID, 10), at.UTC().Format("2006-01-02")+".json")
}

type Archiver struct {
	up     Uploader
	prefix string
}

func NewArchiver(up Uploader, prefix string) *Archiver {
	return &Archiver{up: up, prefix: prefix}
}

func (a *Archiver) Put(ctx context.Context, s Snapshot) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	key := ObjectKey(a.prefix, s.GroupID, s.To)
	if err := a.up.Upload(ctx, key, "application/json", b); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

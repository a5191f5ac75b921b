package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovalev83/ozon-scrap/internal/logx"
)

// Kind classifies a recorded upstream response.
type Kind string

const (
	KindJSON  Kind = "json"
	KindRaw   Kind = "raw"
	KindHTML  Kind = "html"
	KindError Kind = "error"
)

// Archive persists raw upstream responses for offline replay and debugging.
// Recording is fire-and-forget: failures are logged, never surfaced, and a
// disabled archive writes nothing.
type Archive struct {
	dir     string
	enabled bool
	log     zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(dir string, enabled bool) *Archive {
	return &Archive{
		dir:     dir,
		enabled: enabled,
		log:     logx.New("archive"),
		now:     time.Now,
	}
}

// Record writes one response payload under a timestamp-derived name. The
// status argument is only used for error records.
func (a *Archive) Record(url string, kind Kind, status int, payload []byte) {
	if a == nil || !a.enabled {
		return
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		a.log.Warn().Err(err).Str("dir", a.dir).Msg("cannot create archive directory")
		return
	}

	name := a.filename(kind, status)
	if err := os.WriteFile(filepath.Join(a.dir, name), payload, 0o644); err != nil {
		a.log.Warn().Err(err).Str("file", name).Msg("archive write failed")
		return
	}
	a.log.Debug().Str("file", name).Str("url", url).Msg("response archived")
}

func (a *Archive) filename(kind Kind, status int) string {
	ts := a.now().UTC().Format("20060102_150405")
	suffix := uuid.NewString()[:8]
	switch kind {
	case KindJSON:
		return fmt.Sprintf("response_%s_%s.json", ts, suffix)
	case KindHTML:
		return fmt.Sprintf("html_response_%s_%s.html", ts, suffix)
	case KindError:
		return fmt.Sprintf("error_%d_%s_%s.txt", status, ts, suffix)
	default:
		return fmt.Sprintf("raw_response_%s_%s.txt", ts, suffix)
	}
}

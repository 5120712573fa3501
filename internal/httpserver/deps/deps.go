package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/session"
)

// Pinger reports whether a backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedCIDRS   []string // IPs allowed to access readyz and import endpoints
	AllowedOrigins []string // browser origins allowed for CORS and the stream
	TrustProxy     bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Tokens   *auth.Verifier // access token verification
	Sessions *session.Hub   // one live mirror per user
	Store    Pinger         // remote store readiness

	Location         *time.Location // default viewer zone for analytics
	RecentWindowDays int            // default recent window
	ActivityDays     int            // default daily activity length

	RateBurst  int // mutation burst per user
	RatePerMin int // sustained mutations per minute per user

	ImportTrigger chan struct{} // manual import trigger (nil if importer disabled)
}

// Now returns the current time using TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

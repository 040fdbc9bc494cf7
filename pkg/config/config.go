package config

import (
	"time"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/syncer"
)

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[finsync]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Remote is the backend store holding one record per user.
type Remote struct {
	Driver string `envconfig:"DRIVER" default:"postgres"`
	URL    string `envconfig:"URL"`
}

// Local is the on-device key/value store.
type Local struct {
	Path string `envconfig:"FILE" default:"finsync-local.db"`
}

type Redis struct {
	URL    string `envconfig:"URL" default:"redis://localhost:6379/0"`
	Prefix string `envconfig:"PREFIX" default:"finsync:user"`
}

type Kafka struct {
	Brokers      string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic        string `envconfig:"TOPIC" default:"finsync.user-changes"`
	GroupID      string `envconfig:"GROUP_ID"`
	SASLUsername string `envconfig:"SASL_USERNAME"`
	SASLPassword string `envconfig:"SASL_PASSWORD"`
}

// Feed selects the realtime change feed: memory, redis or kafka.
type Feed struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Redis  *Redis `envconfig:"REDIS"`
	Kafka  *Kafka `envconfig:"KAFKA"`
}

type Sync struct {
	CollectionDelay time.Duration `envconfig:"COLLECTION_DELAY" default:"1200ms"`
	FieldDelay      time.Duration `envconfig:"FIELD_DELAY" default:"1500ms"`
	NotepadDelay    time.Duration `envconfig:"NOTEPAD_DELAY" default:"2500ms"`
	RemoteTimeout   time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
}

// Scan schedules the due-today scan.
type Scan struct {
	Schedule             string        `envconfig:"SCHEDULE" default:"@every 5s"`
	StartupDelay         time.Duration `envconfig:"STARTUP_DELAY" default:"3s"`
	NotificationsAllowed bool          `envconfig:"NOTIFICATIONS_ALLOWED" default:"false"`
	IconURL              string        `envconfig:"ICON_URL"`
}

type SMTP struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"1025"`
	Username string `envconfig:"AUTH_USER"`
	Password string `envconfig:"AUTH_PASSWORD"`
	From     string `envconfig:"FROM" default:"FinSync <no-reply@finsync.local>"`
}

// Notify selects the notification dispatcher: log or smtp.
type Notify struct {
	Driver string `envconfig:"DRIVER" default:"log"`
	SMTP   *SMTP  `envconfig:"SMTP"`
}

type App struct {
	Env    string  `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Auth      *Auth      `envconfig:"AUTH"`
	Log    *Log    `envconfig:"LOG"`
	Remote *Remote `envconfig:"REMOTE"`
	Local  *Local  `envconfig:"LOCAL"`
	Feed   *Feed   `envconfig:"FEED"`
	Sync   *Sync   `envconfig:"SYNC"`
	Scan   *Scan   `envconfig:"SCAN"`
	Notify *Notify `envconfig:"NOTIFY"`
}

// SyncConfig converts the debounce settings for the orchestrator.
func (s *Sync) SyncConfig() syncer.Config {
	if s == nil {
		return syncer.DefaultConfig()
	}
	return syncer.Config{
		CollectionDelay: s.CollectionDelay,
		FieldDelay:      s.FieldDelay,
		NotepadDelay:    s.NotepadDelay,
		RemoteTimeout:   s.RemoteTimeout,
	}
}

func (s *Scan) ScanConfig() derived.ScanConfig {
	if s == nil {
		return derived.ScanConfig{}
	}
	return derived.ScanConfig{NotificationsAllowed: s.NotificationsAllowed, IconURL: s.IconURL}
}

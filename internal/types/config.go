package types

type RunMode string

const (
	// ModeLocal runs the API server against local backends
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

// StoreBackend names an Invoice Record Store implementation
type StoreBackend string

const (
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendSupabase StoreBackend = "supabase"
	StoreBackendBolt     StoreBackend = "bolt"
)

// CacheBackend names a Local Cache Store implementation
type CacheBackend string

const (
	CacheBackendBolt   CacheBackend = "bolt"
	CacheBackendMemory CacheBackend = "memory"
)

// SaverKind names where exported files are written
type SaverKind string

const (
	SaverFilesystem SaverKind = "filesystem"
	SaverS3         SaverKind = "s3"
)

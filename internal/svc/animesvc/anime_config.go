package animesvc

// AnimeConfig holds configuration parameters for the anime service.
type AnimeConfig struct {
	// DefaultPageSize is used when a listing request does not name a size.
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" default:"20"`

	// MaxPageSize caps the size a client may request.
	MaxPageSize int `env:"MAX_PAGE_SIZE" default:"2000"`
}

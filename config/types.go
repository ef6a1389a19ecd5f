package config

// ServerConfig contains the HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// APIConfig contains the timetable provider endpoint configuration.
type APIConfig struct {
	BaseURL       string `yaml:"baseURL" validate:"required,url"`
	MinIntervalMS int    `yaml:"minIntervalMS" validate:"gte=0"`
	TimeoutMS     int    `yaml:"timeoutMS" validate:"gte=0"`
}

// StationConfig is one end of the served corridor.
type StationConfig struct {
	Name string `yaml:"name" validate:"required"`
	EVA  string `yaml:"eva" validate:"required,numeric"`
}

// RouteConfig fixes the origin/destination pair and the permitted-direction
// transfer station allow-list.
type RouteConfig struct {
	Origin           StationConfig `yaml:"origin" validate:"required"`
	Destination      StationConfig `yaml:"destination" validate:"required"`
	TransferStations []string      `yaml:"transferStations" validate:"min=1"`
}

// SearchConfig holds the journey search bounds.
type SearchConfig struct {
	MaxTransfers           int `yaml:"maxTransfers" validate:"gte=0"`
	MaxStops               int `yaml:"maxStops" validate:"gte=0"`
	MaxDurationMinutes     int `yaml:"maxDurationMinutes" validate:"gte=0"`
	MaxLookaheadHours      int `yaml:"maxLookaheadHours" validate:"gte=0"`
	MaxTransferWaitMinutes int `yaml:"maxTransferWaitMinutes" validate:"gte=0"`
	MaxResults             int `yaml:"maxResults" validate:"gte=0"`
}

// CacheConfig holds the staleness window and the warm sweep window.
type CacheConfig struct {
	StalenessHours  int `yaml:"stalenessHours" validate:"gte=0"`
	WarmBehindHours int `yaml:"warmBehindHours" validate:"gte=0"`
	WarmAheadHours  int `yaml:"warmAheadHours" validate:"gte=0"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server ServerConfig `yaml:"server" validate:"required"`
	API    APIConfig    `yaml:"api" validate:"required"`
	Route  RouteConfig  `yaml:"route" validate:"required"`
	Search SearchConfig `yaml:"search"`
	Cache  CacheConfig  `yaml:"cache"`
}

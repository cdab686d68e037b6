package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"main/internal/hedge"
	"main/internal/quote"
	"main/internal/risk"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Venue   VenueConfig   `json:"venue"`
	Risk    risk.Config   `json:"risk"`
	Quote   quote.Config  `json:"quote"`
	Hedge   hedge.Config  `json:"hedge"`
	Journal JournalConfig `json:"journal"`
	Record  RecordConfig  `json:"record"`
}

// VenueConfig describes the venue session endpoint and the instrument
// symbols mapped to the primary and secondary roles.
type VenueConfig struct {
	URL       string `json:"url"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// JournalConfig describes the optional execution journal database.
type JournalConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// RecordConfig describes the optional event WAL.
type RecordConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Venue   VenueConfig
	Risk    risk.Config
	Quote   quote.Config
	Hedge   hedge.Config
	Journal JournalConfig
	Record  RecordConfig
}

// Default returns a runnable configuration with conservative venue
// limits: symmetric 100-lot position limit, 10-lot quotes, one hedge
// retry, no journal and no WAL.
func Default() Loaded {
	return Loaded{
		Venue: VenueConfig{
			URL:       "ws://localhost:12345/exchange",
			Primary:   "ETF",
			Secondary: "FUT",
		},
		Risk: risk.Config{
			PositionLimit: 100,
			LotSize:       10,
			TickSize:      100,
			MinBid:        1,
			MaxAsk:        2147483647,
		},
		Quote: quote.Config{
			Volume:             10,
			ImbalanceThreshold: 0.5,
		},
		Hedge: hedge.Config{
			RetryBudget: 1,
		},
	}
}

// Load reads a JSON config file and resolves it against the defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	def := Default()
	cfg := FileConfig{
		Venue: def.Venue,
		Risk:  def.Risk,
		Quote: def.Quote,
		Hedge: def.Hedge,
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{
		Venue:   cfg.Venue,
		Risk:    cfg.Risk,
		Quote:   cfg.Quote,
		Hedge:   cfg.Hedge,
		Journal: cfg.Journal,
		Record:  cfg.Record,
	}
	if err := loaded.validate(); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func (l Loaded) validate() error {
	if l.Venue.URL == "" {
		return fmt.Errorf("venue url is empty")
	}
	if l.Venue.Primary == "" || l.Venue.Secondary == "" {
		return fmt.Errorf("venue instrument symbols are empty")
	}
	if l.Venue.Primary == l.Venue.Secondary {
		return fmt.Errorf("primary and secondary symbols must differ")
	}
	if l.Risk.PositionLimit <= 0 {
		return fmt.Errorf("risk positionLimit must be > 0")
	}
	if l.Risk.LotSize <= 0 {
		return fmt.Errorf("risk lotSize must be > 0")
	}
	if l.Risk.TickSize <= 0 {
		return fmt.Errorf("risk tickSize must be > 0")
	}
	if l.Risk.MinBid < 0 || l.Risk.MaxAsk <= l.Risk.MinBid {
		return fmt.Errorf("risk price band is degenerate")
	}
	if l.Quote.Volume <= 0 {
		return fmt.Errorf("quote volume must be > 0")
	}
	if l.Quote.Volume > l.Risk.PositionLimit {
		return fmt.Errorf("quote volume must not exceed the position limit")
	}
	if l.Quote.ImbalanceThreshold < 0 || l.Quote.ImbalanceThreshold > 1 {
		return fmt.Errorf("quote imbalanceThreshold must be in [0, 1]")
	}
	if l.Hedge.RetryBudget < 0 {
		return fmt.Errorf("hedge retryBudget must be >= 0")
	}
	if l.Journal.Enabled && l.Journal.Database == "" {
		return fmt.Errorf("journal database is empty")
	}
	if l.Record.Enabled && l.Record.Dir == "" {
		return fmt.Errorf("record dir is empty")
	}
	return nil
}

package browser

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/usecase"

	"gopkg.in/yaml.v3"
)

//go:embed default_bindings.yml
var defaultBindings []byte

// Bindings maps form actions to selectors of the target site
type Bindings struct {
	StartURL    string        `yaml:"start_url"`
	AirportsURL string        `yaml:"airports_url"`
	StepDelay   time.Duration `yaml:"step_delay"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	// bound for clicks on elements that may legitimately be absent
	OptionalTimeout time.Duration `yaml:"optional_timeout"`

	Language struct {
		Menu        string `yaml:"menu"`
		Option      string `yaml:"option"`
		RegionInput string `yaml:"region_input"`
		Region      string `yaml:"region"`
	} `yaml:"language"`

	Origin struct {
		Clear string `yaml:"clear"`
		Input string `yaml:"input"`
	} `yaml:"origin"`

	Destination struct {
		Input string `yaml:"input"`
	} `yaml:"destination"`

	Travelers struct {
		Open      string                `yaml:"open"`
		Preset    entity.TravelerCounts `yaml:"preset"`
		Increment []string              `yaml:"increment"`
		Decrement []string              `yaml:"decrement"`
	} `yaml:"travelers"`

	Cabin struct {
		PremiumEconomy string `yaml:"premium_economy"`
		Business       string `yaml:"business"`
		First          string `yaml:"first"`
	} `yaml:"cabin"`

	Calendar struct {
		Open      string `yaml:"open"`
		NextMonth string `yaml:"next_month"`
		Day       string `yaml:"day"`
	} `yaml:"calendar"`

	Search string `yaml:"search"`

	Airports struct {
		Section string `yaml:"section"`
		Marker  string `yaml:"marker"`
	} `yaml:"airports"`

	Listings usecase.ListingSelectors `yaml:"listings"`
}

// LoadBindings returns the embedded bindings, overlaid with the YAML file at
// path when path is not empty
func LoadBindings(path string) (*Bindings, error) {
	var b Bindings
	if err := yaml.Unmarshal(defaultBindings, &b); err != nil {
		return nil, fmt.Errorf("parse default bindings: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read bindings: %w", err)
		}
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse bindings %s: %w", path, err)
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the bindings can drive every form step
func (b *Bindings) Validate() error {
	if b.StartURL == "" {
		return fmt.Errorf("bindings: start_url is empty")
	}
	if n := len(b.Travelers.Increment); n != entity.TravelerGroups {
		return fmt.Errorf("bindings: want %d traveler increment selectors, got %d", entity.TravelerGroups, n)
	}
	if n := len(b.Travelers.Decrement); n != entity.TravelerGroups {
		return fmt.Errorf("bindings: want %d traveler decrement selectors, got %d", entity.TravelerGroups, n)
	}
	if b.OptionalTimeout <= 0 {
		return fmt.Errorf("bindings: optional_timeout must be positive")
	}
	if strings.Count(b.Calendar.Day, "%") != 2 {
		return fmt.Errorf("bindings: calendar day selector needs a month and a day verb")
	}
	if err := b.Listings.Validate(); err != nil {
		return fmt.Errorf("bindings: %w", err)
	}
	return nil
}

// DaySelector returns the calendar cell selector of day
func (b *Bindings) DaySelector(day time.Time) string {
	return fmt.Sprintf(b.Calendar.Day, day.Month().String(), day.Day())
}

// CabinSelector returns the radio of class, empty for economy
func (b *Bindings) CabinSelector(class entity.CabinClass) string {
	switch class {
	case entity.PremiumEconomy:
		return b.Cabin.PremiumEconomy
	case entity.Business:
		return b.Cabin.Business
	case entity.First:
		return b.Cabin.First
	default:
		return ""
	}
}

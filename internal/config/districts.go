package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"school-job-scout/internal/scraper"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoDistricts      = errors.New("no districts configured")
	ErrInvalidDistrict  = errors.New("invalid district")
	errUnknownPortal    = errors.New("unknown portal type")
	errMissingPortalURL = errors.New("missing url")
)

// PortalType selects the adapter for a district. It is trusted as given.
type PortalType string

const (
	AppliTrack   PortalType = "AppliTrack"
	PowerSchool  PortalType = "PowerSchool"
	PAEducator   PortalType = "PAEducator"
	SchoolSpring PortalType = "SchoolSpring"
	Other        PortalType = "Other"
	Multiple     PortalType = "Multiple"
)

// Source maps a single-portal type to the adapter family.
func (p PortalType) Source() (scraper.Source, bool) {
	switch p {
	case AppliTrack:
		return scraper.SourceAppliTrack, true
	case PowerSchool:
		return scraper.SourcePowerSchool, true
	case PAEducator:
		return scraper.SourcePAEducator, true
	case SchoolSpring:
		return scraper.SourceSchoolSpring, true
	case Other:
		return scraper.SourceOther, true
	}
	return "", false
}

type Portal struct {
	Type PortalType `yaml:"type"`
	URL  string     `yaml:"url"`
}

type District struct {
	Name    string     `yaml:"name"`
	Type    PortalType `yaml:"type"`
	URL     string     `yaml:"url"`
	Portals []Portal   `yaml:"urls"`

	FilterHint       string `yaml:"filter_hint"`
	PAEducatorFilter string `yaml:"paeducator_filter"`
}

// Filter is the hint search-driven statewide boards are queried with.
func (d District) Filter() string {
	if d.FilterHint != "" {
		return d.FilterHint
	}
	return d.PAEducatorFilter
}

// Targets expands a district into the portals to scrape, in listed order.
func (d District) Targets() []Portal {
	if d.Type == Multiple {
		return d.Portals
	}
	return []Portal{{Type: d.Type, URL: d.URL}}
}

func (d District) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDistrict)
	}
	if d.Type == Multiple {
		if len(d.Portals) == 0 {
			return fmt.Errorf("%w: %s: Multiple needs at least one portal under urls", ErrInvalidDistrict, d.Name)
		}
		for i, p := range d.Portals {
			if err := validatePortal(p); err != nil {
				return fmt.Errorf("%w: %s: portal %d: %w", ErrInvalidDistrict, d.Name, i, err)
			}
		}
		return nil
	}
	if err := validatePortal(Portal{Type: d.Type, URL: d.URL}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDistrict, d.Name, err)
	}
	return nil
}

func validatePortal(p Portal) error {
	if _, ok := p.Type.Source(); !ok {
		return fmt.Errorf("%w %q", errUnknownPortal, p.Type)
	}
	if strings.TrimSpace(p.URL) == "" {
		return errMissingPortalURL
	}
	return nil
}

type districtFile struct {
	Schools []District `yaml:"schools"`
}

// LoadDistricts reads the district list. JSON is valid YAML, so both work.
func LoadDistricts(path string) ([]District, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read districts: %w", err)
	}
	var f districtFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse districts %s: %w", path, err)
	}
	if err := ValidateDistricts(f.Schools); err != nil {
		return nil, err
	}
	return f.Schools, nil
}

func ValidateDistricts(ds []District) error {
	if len(ds) == 0 {
		return ErrNoDistricts
	}
	var errs []error
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MatchDistricts keeps districts whose name contains substr, ignoring case.
func MatchDistricts(ds []District, substr string) []District {
	substr = strings.ToLower(strings.TrimSpace(substr))
	var out []District
	for _, d := range ds {
		if strings.Contains(strings.ToLower(d.Name), substr) {
			out = append(out, d)
		}
	}
	return out
}

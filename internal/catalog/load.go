package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ngmaloney/reefcast/internal/models"
	"gopkg.in/yaml.v3"
)

// coastOrder is the order coasts appear in the catalog file and in every
// per-coast listing
var coastOrder = []models.Coast{
	models.CoastNorthShore,
	models.CoastWestSide,
	models.CoastSouthShore,
	models.CoastSoutheast,
	models.CoastWindward,
}

const defaultTakeRules = "Standard state regulations"

// document mirrors the on-disk catalog layout
type document struct {
	NorthShore  coastSection            `yaml:"north_shore"`
	WestSide    coastSection            `yaml:"west_side"`
	SouthShore  coastSection            `yaml:"south_shore"`
	Southeast   coastSection            `yaml:"southeast"`
	Windward    coastSection            `yaml:"windward"`
	Buoys       map[string]string       `yaml:"buoys"`
	Streamgages map[string]string       `yaml:"streamgages"`
	MarineZones map[models.Coast]string `yaml:"marine_zones"`
}

type coastSection struct {
	Sites []models.Location `yaml:"sites"`
}

func (d *document) section(c models.Coast) coastSection {
	switch c {
	case models.CoastNorthShore:
		return d.NorthShore
	case models.CoastWestSide:
		return d.WestSide
	case models.CoastSouthShore:
		return d.SouthShore
	case models.CoastSoutheast:
		return d.Southeast
	case models.CoastWindward:
		return d.Windward
	}
	return coastSection{}
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Fields the document leaves out take the
// usual defaults: intermediate skill, activities allowed, north exposure with
// a 6ft limit, any tide, morning, year-round season.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		byID:        make(map[string]*models.Location),
		byCoast:     make(map[models.Coast][]*models.Location),
		buoys:       lowerKeys(doc.Buoys),
		streamgages: lowerKeys(doc.Streamgages),
		zones:       doc.MarineZones,
	}

	for _, coast := range coastOrder {
		sites := doc.section(coast).Sites
		for i := range sites {
			loc := sites[i]
			loc.Coast = coast
			applyDefaults(&loc)

			if err := validate(&loc); err != nil {
				return nil, fmt.Errorf("invalid site %d on %s: %w", i+1, coast, err)
			}
			if _, dup := c.byID[loc.ID]; dup {
				return nil, fmt.Errorf("duplicate site id %q", loc.ID)
			}

			c.byID[loc.ID] = &loc
			c.byCoast[coast] = append(c.byCoast[coast], &loc)
			c.all = append(c.all, &loc)
		}
	}

	return c, nil
}

func applyDefaults(loc *models.Location) {
	if loc.Name == "" {
		loc.Name = "Unknown"
	}
	if loc.SkillLevel == "" {
		loc.SkillLevel = models.SkillIntermediate
	}
	if loc.Season.StartMonth == 0 {
		loc.Season.StartMonth = 1
	}
	if loc.Season.EndMonth == 0 {
		loc.Season.EndMonth = 12
	}
	if loc.Regulations.Spearfishing == "" {
		loc.Regulations.Spearfishing = "allowed"
	}
	if loc.Regulations.NightDiving == "" {
		loc.Regulations.NightDiving = "allowed"
	}
	if loc.Regulations.TakeRules == "" {
		loc.Regulations.TakeRules = defaultTakeRules
	}
	if loc.SwellExposure.Primary == "" {
		loc.SwellExposure.Primary = "N"
	}
	if loc.SwellExposure.MaxSafeHeightFt == 0 {
		loc.SwellExposure.MaxSafeHeightFt = models.DefaultMaxSafeWaveHeightFt
	}
	if loc.OptimalTide == "" {
		loc.OptimalTide = "any"
	}
	if loc.OptimalTime == "" {
		loc.OptimalTime = "morning"
	}
}

func validate(loc *models.Location) error {
	if strings.TrimSpace(loc.ID) == "" {
		return errors.New("missing id")
	}
	if !validMonth(loc.Season.StartMonth) || !validMonth(loc.Season.EndMonth) {
		return fmt.Errorf("%s: seasonal window months must be 1-12, got %d-%d",
			loc.ID, loc.Season.StartMonth, loc.Season.EndMonth)
	}
	switch strings.ToLower(loc.OptimalTide) {
	case "any", "high", "low":
	default:
		return fmt.Errorf("%s: unknown optimal_tide %q", loc.ID, loc.OptimalTide)
	}
	if loc.SwellExposure.MaxSafeHeightFt < 0 {
		return fmt.Errorf("%s: max_safe_height_ft must not be negative", loc.ID)
	}
	return nil
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

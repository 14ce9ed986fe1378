package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/ngmaloney/reefcast/internal/models"
)

// ErrSiteNotFound is returned when a site id is not in the catalog
var ErrSiteNotFound = errors.New("site not found")

// Catalog is the read-only set of dive sites. Lookups return pointers into
// the catalog; callers must not modify them.
type Catalog struct {
	all         []*models.Location // catalog order
	byID        map[string]*models.Location
	byCoast     map[models.Coast][]*models.Location
	buoys       map[string]string // buoy name -> NDBC station id
	streamgages map[string]string // gauge name -> USGS site number
	zones       map[models.Coast]string
}

// Filter narrows a site listing. Zero values disable a criterion.
type Filter struct {
	Coast            models.Coast
	InSeasonMonth    int // 1-12
	MaxSkill         models.SkillLevel
	SpearfishingOnly bool
	NightDivingOnly  bool
	BuoyID           string
}

// New builds a catalog directly from locations, keeping their coast tags.
// Used for fixture catalogs.
func New(locs []models.Location) (*Catalog, error) {
	c := &Catalog{
		byID:        make(map[string]*models.Location),
		byCoast:     make(map[models.Coast][]*models.Location),
		buoys:       map[string]string{},
		streamgages: map[string]string{},
		zones:       map[models.Coast]string{},
	}
	for i := range locs {
		loc := locs[i]
		applyDefaults(&loc)
		if err := validate(&loc); err != nil {
			return nil, err
		}
		if _, dup := c.byID[loc.ID]; dup {
			return nil, errors.New("duplicate site id " + loc.ID)
		}
		c.byID[loc.ID] = &loc
		c.byCoast[loc.Coast] = append(c.byCoast[loc.Coast], &loc)
		c.all = append(c.all, &loc)
	}
	return c, nil
}

// Site returns the site with the given id
func (c *Catalog) Site(id string) (*models.Location, error) {
	loc, ok := c.byID[id]
	if !ok {
		return nil, ErrSiteNotFound
	}
	return loc, nil
}

// SiteByName returns the first site whose name contains name, ignoring case
func (c *Catalog) SiteByName(name string) (*models.Location, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, ErrSiteNotFound
	}
	for _, loc := range c.all {
		if strings.Contains(strings.ToLower(loc.Name), needle) {
			return loc, nil
		}
	}
	return nil, ErrSiteNotFound
}

// All returns every site in catalog order
func (c *Catalog) All() []*models.Location {
	out := make([]*models.Location, len(c.all))
	copy(out, c.all)
	return out
}

// ByCoast returns the sites on a coast
func (c *Catalog) ByCoast(coast models.Coast) []*models.Location {
	sites := c.byCoast[models.Coast(strings.ToLower(string(coast)))]
	out := make([]*models.Location, len(sites))
	copy(out, sites)
	return out
}

// InSeason returns the sites in season for month
func (c *Catalog) InSeason(month int) []*models.Location {
	return c.Filter(Filter{InSeasonMonth: month})
}

// BySkill returns the sites at or below the given skill ceiling
func (c *Catalog) BySkill(max models.SkillLevel) []*models.Location {
	return c.Filter(Filter{MaxSkill: max})
}

// Spearfishing returns the sites where spearfishing is allowed
func (c *Catalog) Spearfishing() []*models.Location {
	return c.Filter(Filter{SpearfishingOnly: true})
}

// ByBuoy returns the sites whose nearest buoy is id
func (c *Catalog) ByBuoy(id string) []*models.Location {
	if id == "" {
		return nil
	}
	return c.Filter(Filter{BuoyID: id})
}

// Filter returns the sites matching every set criterion, in catalog order
func (c *Catalog) Filter(f Filter) []*models.Location {
	coast := models.Coast(strings.ToLower(string(f.Coast)))

	var out []*models.Location
	for _, loc := range c.all {
		if coast != "" && loc.Coast != coast {
			continue
		}
		if f.InSeasonMonth != 0 && !loc.InSeason(f.InSeasonMonth) {
			continue
		}
		if f.MaxSkill != "" && !loc.SkillLevel.WithinCeiling(f.MaxSkill) {
			continue
		}
		if f.SpearfishingOnly && !loc.AllowsSpearfishing() {
			continue
		}
		if f.NightDivingOnly && !loc.AllowsNightDiving() {
			continue
		}
		if f.BuoyID != "" && loc.NearestBuoy != f.BuoyID {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// Coasts returns the coasts that have at least one site, in catalog order
func (c *Catalog) Coasts() []models.Coast {
	var out []models.Coast
	for _, coast := range coastOrder {
		if len(c.byCoast[coast]) > 0 {
			out = append(out, coast)
		}
	}
	var extra []models.Coast
	for coast := range c.byCoast {
		if !knownCoast(coast) {
			extra = append(extra, coast)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Count returns the number of sites
func (c *Catalog) Count() int {
	return len(c.all)
}

// Buoys returns the buoy name to station id reference map
func (c *Catalog) Buoys() map[string]string {
	return copyMap(c.buoys)
}

// Streamgages returns the gauge name to site number reference map
func (c *Catalog) Streamgages() map[string]string {
	return copyMap(c.streamgages)
}

// BuoyID looks up a buoy station id by its reference name
func (c *Catalog) BuoyID(name string) (string, bool) {
	id, ok := c.buoys[strings.ToLower(name)]
	return id, ok
}

// StreamgageID looks up a gauge site number by its reference name
func (c *Catalog) StreamgageID(name string) (string, bool) {
	id, ok := c.streamgages[strings.ToLower(name)]
	return id, ok
}

// MarineZone returns the NWS coastal zone configured for a coast
func (c *Catalog) MarineZone(coast models.Coast) (string, bool) {
	zone, ok := c.zones[coast]
	return zone, ok && zone != ""
}

// SetMarineZone records the zone for a coast, overriding the file
func (c *Catalog) SetMarineZone(coast models.Coast, zone string) {
	if c.zones == nil {
		c.zones = map[models.Coast]string{}
	}
	c.zones[coast] = zone
}

// Centroid returns the mean position of a coast's sites
func (c *Catalog) Centroid(coast models.Coast) (models.Coordinates, bool) {
	sites := c.byCoast[coast]
	if len(sites) == 0 {
		return models.Coordinates{}, false
	}
	var lat, lon float64
	for _, s := range sites {
		lat += s.Coordinates.Lat
		lon += s.Coordinates.Lon
	}
	n := float64(len(sites))
	return models.Coordinates{Lat: lat / n, Lon: lon / n}, true
}

func knownCoast(coast models.Coast) bool {
	for _, c := range coastOrder {
		if c == coast {
			return true
		}
	}
	return false
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

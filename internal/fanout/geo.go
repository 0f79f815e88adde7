package fanout

import (
	"log/slog"
	"sync"

	"github.com/oref-monitor/orefmon/internal/areas"
	"github.com/oref-monitor/orefmon/internal/category"
	"github.com/oref-monitor/orefmon/internal/coordinator"
)

// GeoPoint is a located active alert exposed to the host platform.
type GeoPoint struct {
	Area      string  `json:"area"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
	Category  int     `json:"category"`
	Title     string  `json:"title"`
	Icon      string  `json:"icon"`
	Date      string  `json:"date"`
}

// GeoManager projects each snapshot's active alert records onto a set of
// geo points, one per area. Unlocatable areas are skipped with a log line.
type GeoManager struct {
	homeLat float64
	homeLon float64
	logger  *slog.Logger

	mu     sync.RWMutex
	points []GeoPoint
}

// NewGeoManager creates a geo manager.
func NewGeoManager(homeLat, homeLon float64, logger *slog.Logger) *GeoManager {
	return &GeoManager{
		homeLat: homeLat,
		homeLon: homeLon,
		logger:  logger,
	}
}

// OnSnapshot implements coordinator.Listener. The point set is rebuilt
// from scratch each cycle: a record leaving the active window removes its
// point without any per-point bookkeeping.
func (g *GeoManager) OnSnapshot(snap coordinator.Snapshot) {
	seen := make(map[string]bool)
	points := make([]GeoPoint, 0)

	for _, record := range snap.Active(snap.Taken) {
		if !category.IsAlertCategory(record.Category) {
			continue
		}
		if seen[record.Area] {
			continue
		}

		ref, ok := areas.Lookup(record.Area)
		if !ok {
			g.logger.Debug("No coordinates for area, skipping geo point", "area", record.Area)
			continue
		}

		seen[record.Area] = true
		points = append(points, GeoPoint{
			Area:      record.Area,
			Latitude:  ref.Lat,
			Longitude: ref.Lon,
			Distance:  Distance(g.homeLat, g.homeLon, ref.Lat, ref.Lon),
			Category:  record.Category,
			Title:     record.Title,
			Icon:      category.MetadataFor(record.Category).Icon,
			Date:      record.Date,
		})
	}

	g.mu.Lock()
	g.points = points
	g.mu.Unlock()
}

// Points returns the current geo point set.
func (g *GeoManager) Points() []GeoPoint {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]GeoPoint, len(g.points))
	copy(out, g.points)
	return out
}

package movie

import "context"

// CatalogRecord is the best catalog match for a title.
type CatalogRecord struct {
	id          int64
	title       string
	overview    string
	posterURL   string
	releaseDate string
	rating      float64
}

// NewCatalogRecord creates a CatalogRecord. posterURL is empty when the
// catalog has no poster for the movie.
func NewCatalogRecord(id int64, title, overview, posterURL, releaseDate string, rating float64) CatalogRecord {
	return CatalogRecord{
		id:          id,
		title:       title,
		overview:    overview,
		posterURL:   posterURL,
		releaseDate: releaseDate,
		rating:      rating,
	}
}

// ID returns the catalog identifier.
func (c CatalogRecord) ID() int64 { return c.id }

// Title returns the catalog title.
func (c CatalogRecord) Title() string { return c.title }

// Overview returns the overview, or empty.
func (c CatalogRecord) Overview() string { return c.overview }

// PosterURL returns the absolute poster URL, or empty.
func (c CatalogRecord) PosterURL() string { return c.posterURL }

// ReleaseDate returns the release date, or empty.
func (c CatalogRecord) ReleaseDate() string { return c.releaseDate }

// Rating returns the average vote, or 0.
func (c CatalogRecord) Rating() float64 { return c.rating }

// Resolution is the outcome of resolving a title against the catalog.
// An unresolved Resolution with a nil Err means the search found nothing.
type Resolution struct {
	record   CatalogRecord
	resolved bool
	err      error
}

// Resolved creates a Resolution carrying a catalog match.
func Resolved(record CatalogRecord) Resolution {
	return Resolution{record: record, resolved: true}
}

// Unresolved creates a Resolution with no match. err may be nil.
func Unresolved(err error) Resolution {
	return Resolution{err: err}
}

// Record returns the match and whether there was one.
func (r Resolution) Record() (CatalogRecord, bool) { return r.record, r.resolved }

// Err returns the lookup failure, if any.
func (r Resolution) Err() error { return r.err }

// Availability is the outcome of a streaming-provider lookup.
type Availability struct {
	region    Region
	providers []string
	err       error
}

// NewAvailability creates an Availability for the region that answered.
// Duplicate names are dropped.
func NewAvailability(region Region, providers []string) Availability {
	return Availability{region: region, providers: dedupe(providers)}
}

// Unavailable creates an empty Availability recording the failure.
func Unavailable(err error) Availability {
	return Availability{providers: []string{}, err: err}
}

// Region returns the region whose providers were used, or empty.
func (a Availability) Region() Region { return a.region }

// Providers returns the unique provider names.
func (a Availability) Providers() []string {
	out := make([]string, len(a.providers))
	copy(out, a.providers)
	return out
}

// Err returns the lookup failure, if any.
func (a Availability) Err() error { return a.err }

// Catalog resolves titles and their streaming providers.
// Neither method returns an error: failures are carried in the result.
type Catalog interface {
	ResolveTitle(ctx context.Context, title string) Resolution
	ListProviders(ctx context.Context, catalogID int64, movieType string) Availability
}

// Suggester produces candidate movies for a request.
type Suggester interface {
	Suggest(ctx context.Context, request Request) ([]Suggestion, error)
}

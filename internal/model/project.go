// Package model defines the canonical tables the normalization core
// hands to the warehouse loader.
package model

import "time"

// LocalityType classifies what kind of place the geocoder matched.
type LocalityType string

const (
	LocalityCity   LocalityType = "city"
	LocalityCounty LocalityType = "county"
	LocalityTown   LocalityType = "town"
)

// Project is one canonical interconnection-queue project. Dates carry
// the parsed value plus the vendor's original encoding under *_raw.
type Project struct {
	ProjectID              string     `csv:"project_id"`
	Source                 string     `csv:"source"`
	QueueID                string     `csv:"queue_id"`
	ProjectName            string     `csv:"project_name"`
	Developer              string     `csv:"developer"`
	Utility                string     `csv:"utility"`
	Region                 string     `csv:"region"`
	PointOfInterconnection string     `csv:"point_of_interconnection"`
	CapacityMW             *float64   `csv:"capacity_mw"`
	QueueStatus            string     `csv:"queue_status"`
	InterconnectionStatus  string     `csv:"interconnection_status"`
	QueueDate              *time.Time `csv:"queue_date"`
	QueueDateRaw           string     `csv:"queue_date_raw"`
	ProposedCompletionDate *time.Time `csv:"proposed_completion_date"`
	ProposedCompletionRaw  string     `csv:"proposed_completion_date_raw"`
	WithdrawnDate          *time.Time `csv:"withdrawn_date"`
	WithdrawnDateRaw       string     `csv:"withdrawn_date_raw"`
	OperationalDate        *time.Time `csv:"operational_date"`
	OperationalDateRaw     string     `csv:"operational_date_raw"`
}

// Location ties a project to one reported site. A project reported
// across several counties yields several Locations. Rows that fail
// county resolution keep their raw names and empty resolved fields.
type Location struct {
	ProjectID                string       `csv:"project_id"`
	RawStateName             string       `csv:"raw_state_name"`
	RawCountyName            string       `csv:"raw_county_name"`
	StateIDFIPS              string       `csv:"state_id_fips"`
	CountyIDFIPS             string       `csv:"county_id_fips"`
	GeocodedLocalityName     string       `csv:"geocoded_locality_name"`
	GeocodedLocalityType     LocalityType `csv:"geocoded_locality_type"`
	GeocodedContainingCounty string       `csv:"geocoded_containing_county"`
}

// Resolved reports whether the location landed on an authoritative
// county FIPS code.
func (l *Location) Resolved() bool {
	return l.CountyIDFIPS != ""
}

// ResourceCapacity is one (project, resource) pairing with its share of
// the project's capacity. ResourceRaw preserves the vendor code for
// audit; ResourceClean is always a member of the canonical vocabulary.
type ResourceCapacity struct {
	ProjectID     string   `csv:"project_id"`
	ResourceRaw   string   `csv:"resource_raw"`
	ResourceClean string   `csv:"resource_clean"`
	CapacityMW    *float64 `csv:"capacity_mw"`
}

// County is one row of the authoritative state+county FIPS reference.
type County struct {
	StateIDFIPS  string  `csv:"state_id_fips"`
	CountyIDFIPS string  `csv:"county_id_fips"`
	State        string  `csv:"state"`
	CountyName   string  `csv:"county_name"`
	Latitude     float64 `csv:"latitude,omitempty"`
	Longitude    float64 `csv:"longitude,omitempty"`
}

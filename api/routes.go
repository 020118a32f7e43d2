package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// InfoEndpoint describes the ledger contract and its collaborators
	InfoEndpoint = "/info"

	ExhibitURLParam = "exhibitId"
	AddressURLParam = "address"
	// ScheduleNonceEndpoint returns the schedule nonce of an organizer
	ScheduleNonceEndpoint = "/organizers/{" + AddressURLParam + "}/nonce"
	// ExhibitsEndpoint schedules (POST) and lists (GET) exhibits
	ExhibitsEndpoint = "/exhibits"
	// ExhibitEndpoint returns the full exhibit record
	ExhibitEndpoint = "/exhibits/{" + ExhibitURLParam + "}"
	// ExhibitHeaderEndpoint returns the exhibit without its encrypted counter
	ExhibitHeaderEndpoint = "/exhibits/{" + ExhibitURLParam + "}/header"
	// AttendanceEndpoint returns the encrypted attendance counter handle
	AttendanceEndpoint = "/exhibits/{" + ExhibitURLParam + "}/attendance"
	// CheckInsEndpoint accepts encrypted check-ins
	CheckInsEndpoint = "/exhibits/{" + ExhibitURLParam + "}/checkins"
	// CheckInEndpoint tells whether an address checked in
	CheckInEndpoint = "/exhibits/{" + ExhibitURLParam + "}/checkins/{" + AddressURLParam + "}"
	// PassesEndpoint mints attendance passes
	PassesEndpoint = "/exhibits/{" + ExhibitURLParam + "}/passes"
	// PassEndpoint returns the pass status of an address
	PassEndpoint = "/exhibits/{" + ExhibitURLParam + "}/passes/{" + AddressURLParam + "}"

	// DecryptEndpoint serves user decryption requests
	DecryptEndpoint = "/decrypt"
	// EventsEndpoint streams ledger events as server-sent events
	EventsEndpoint = "/events"
	// MetricsEndpoint exposes prometheus metrics
	MetricsEndpoint = "/metrics"

	// DefaultExhibitsLimit is the page size of exhibit listings.
	DefaultExhibitsLimit = 50
	// MaxExhibitsLimit bounds the page size of exhibit listings.
	MaxExhibitsLimit = 500
)

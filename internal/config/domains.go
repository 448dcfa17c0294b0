package config

// Supported upstream environments.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
)

// Domains groups the base URLs of the three upstream surfaces.
type Domains struct {
	API    string // GraphQL and REST API
	Web    string // web application (payment token endpoint)
	Events string // analytics ingestion
}

var environmentDomains = map[string]Domains{
	EnvProduction: {
		API:    "https://api.varsitytutors.com",
		Web:    "https://www.varsitytutors.com",
		Events: "https://events.varsitytutors.com",
	},
	EnvStaging: {
		API:    "https://api.staging.varsitytutors.com",
		Web:    "https://www.staging.varsitytutors.com",
		Events: "https://events.staging.varsitytutors.com",
	},
}

// DomainsFor returns the default domains for env and whether env is known.
func DomainsFor(env string) (Domains, bool) {
	d, ok := environmentDomains[env]
	return d, ok
}

// Domains returns the resolved upstream base URLs.
func (c *Config) Domains() Domains {
	return Domains{
		API:    c.Upstream.APIBaseURL,
		Web:    c.Upstream.WebBaseURL,
		Events: c.Upstream.EventsBaseURL,
	}
}

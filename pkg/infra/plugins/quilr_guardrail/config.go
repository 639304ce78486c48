package quilr_guardrail

type Config struct {
	Credentials        Credentials `mapstructure:"credentials"`
	AllowedModels      []string    `mapstructure:"allowed_models"`
	AllowedCredentials []string    `mapstructure:"allowed_credentials"`
}

type Credentials struct {
	ApiKey  string `mapstructure:"api_key,omitempty"`
	BaseURL string `mapstructure:"base_url,omitempty"`
}

// withDefaults fills unset fields from the defaults the plugin was built
// with, so per-chain settings only need to carry overrides.
func (c Config) withDefaults(d Config) Config {
	if c.Credentials.ApiKey == "" {
		c.Credentials.ApiKey = d.Credentials.ApiKey
	}
	if c.Credentials.BaseURL == "" {
		c.Credentials.BaseURL = d.Credentials.BaseURL
	}
	if len(c.AllowedModels) == 0 {
		c.AllowedModels = d.AllowedModels
	}
	if len(c.AllowedCredentials) == 0 {
		c.AllowedCredentials = d.AllowedCredentials
	}
	return c
}

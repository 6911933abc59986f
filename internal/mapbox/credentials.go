package mapbox

// Placeholder tokens make unconfigured use obvious in urls and API errors.
const (
	PlaceholderPublicToken = "pk.set-MAPBOXUTIL_PUBLIC_TOKEN"
	PlaceholderSecretToken = "sk.set-MAPBOXUTIL_SECRET_TOKEN"
)

// Credentials holds the access tokens. The public token signs static image
// urls, the secret token is used for the Styles API.
type Credentials struct {
	PublicToken string
	SecretToken string
}

// DefaultCredentials returns the placeholder tokens.
func DefaultCredentials() Credentials {
	return Credentials{
		PublicToken: PlaceholderPublicToken,
		SecretToken: PlaceholderSecretToken,
	}
}

// With returns a copy with every non-empty token replaced.
func (c Credentials) With(publicToken, secretToken string) Credentials {
	if publicToken != "" {
		c.PublicToken = publicToken
	}
	if secretToken != "" {
		c.SecretToken = secretToken
	}
	return c
}

// Configured reports whether both tokens differ from the placeholders.
func (c Credentials) Configured() bool {
	return c.PublicToken != PlaceholderPublicToken && c.PublicToken != "" &&
		c.SecretToken != PlaceholderSecretToken && c.SecretToken != ""
}

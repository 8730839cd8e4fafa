package discovery

import "net/url"

// redactURI hides credentials in a connection string before it is logged.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	if u.User == nil {
		return raw
	}
	return u.Redacted()
}

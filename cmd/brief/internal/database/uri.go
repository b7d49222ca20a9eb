package database

import (
	"net/url"
	"strings"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

// BuildMongoURI composes a mongodb+srv URI for host. Credentials are escaped,
// options is a raw query string and may be empty.
// A missing user or password is a ConfigurationMissing error.
func BuildMongoURI(user, password, host, options string) (string, error) {
	var missing []string
	if user == "" {
		missing = append(missing, "user")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if host == "" {
		missing = append(missing, "host")
	}
	if len(missing) > 0 {
		return "", &BootstrapError{
			Kind: ConfigurationMissing,
			Err:  missingError(missing),
		}
	}

	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, password),
		Host:     host,
		Path:     "/",
		RawQuery: strings.TrimPrefix(options, "?"),
	}
	return u.String(), nil
}

type missingError []string

func (m missingError) Error() string {
	return "missing database " + strings.Join(m, ", ")
}

// Redact replaces the password of a URL-style connection string so it can
// be logged. Anything that does not parse is redacted entirely.
func Redact(connectionString string) string {
	if !strings.Contains(connectionString, "://") {
		if strings.Contains(connectionString, "@") || strings.Contains(connectionString, "password=") {
			return constants.RedactedPlaceholder
		}
		return connectionString
	}

	u, err := url.Parse(connectionString)
	if err != nil {
		return constants.RedactedPlaceholder
	}
	return u.Redacted()
}

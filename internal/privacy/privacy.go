// Package privacy redacts credentials from connection strings before they are
// printed, logged or sent with telemetry.
package privacy

import (
	"net/url"
	"regexp"

	gomysql "github.com/go-sql-driver/mysql"
)

// Redacted replaces secrets.
const Redacted = "***"

var (
	// urlPattern finds URLs with an authority part in free text.
	urlPattern = regexp.MustCompile(`\b[a-z][a-z0-9+.-]*://\S+`)

	// mysqlCredPattern finds user:password@ in go-sql-driver DSNs.
	mysqlCredPattern = regexp.MustCompile(`\b([^\s:/@]+):([^\s@]+)@(tcp|unix)\(`)
)

// RedactURL masks the password of a URL, or the user when it is the only
// credential as in a Sentry DSN. Unparseable input is masked entirely.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Redacted
	}
	if u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), Redacted)
	} else {
		u.User = url.User(Redacted)
	}
	return u.String()
}

// RedactDSN masks the password of a MySQL data source name.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return Redacted
	}
	if cfg.Passwd != "" {
		cfg.Passwd = Redacted
	}
	return cfg.FormatDSN()
}

// ScrubMessage masks credentials embedded in URLs and MySQL DSNs within a
// free-form message, such as a driver error.
func ScrubMessage(message string) string {
	message = urlPattern.ReplaceAllStringFunc(message, RedactURL)
	return mysqlCredPattern.ReplaceAllString(message, "${1}:"+Redacted+"@${3}(")
}

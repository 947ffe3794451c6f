package env

import (
	"net/url"
	"strings"
)

// secretKeyMarkers flag variable names whose values are never shown in
// full. Matching is case-insensitive on substrings.
var secretKeyMarkers = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"PASS",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes identify credentials by their value alone, for variables
// whose names give nothing away.
var tokenPrefixes = []string{
	"ghp_", "gho_", "ghu_", "ghs_", "ghr_", "github_pat_",
	"sk-",
	"AKIA",
	"xoxb-", "xoxp-", "xoxa-", "xoxr-",
	"dp.st.", "dp.pt.", "dp.ct.", "dp.sa.",
}

// labelNames are log attribute names that carry a variable's name rather
// than its value. They are matched exactly, lowercase, after any group
// prefix, so an env variable spelled KEY is still treated as a secret.
var labelNames = map[string]bool{
	"key":   true,
	"keys":  true,
	"var":   true,
	"vars":  true,
	"name":  true,
	"names": true,
}

// IsSecretKey reports whether the variable name marks a credential.
func IsSecretKey(key string) bool {
	if labelNames[key[strings.LastIndex(key, ".")+1:]] {
		return false
	}
	upper := strings.ToUpper(key)
	for _, m := range secretKeyMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// LooksLikeToken reports whether value starts with a known token prefix.
func LooksLikeToken(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// Mask hides all but the last four characters of value. Values of four
// characters or fewer are hidden entirely.
func Mask(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// Redact returns the display form of a variable: masked when the key or
// value looks sensitive, with URL passwords masked, otherwise unchanged.
func Redact(key, value string) string {
	if IsSecretKey(key) || LooksLikeToken(value) {
		return Mask(value)
	}
	return redactURL(value)
}

// RedactVars applies [Redact] to every entry of vars.
func RedactVars(vars map[string]string) map[string]string {
	if vars == nil {
		return nil
	}
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = Redact(k, v)
	}
	return out
}

// redactURL masks the password of a URL such as an n8n instance address
// with embedded credentials. Anything that is not such a URL is returned
// as is.
func redactURL(raw string) string {
	scheme := strings.Index(raw, "://")
	if scheme < 0 {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	pw, ok := u.User.Password()
	if !ok || pw == "" {
		return raw
	}

	rest := raw[scheme+3:]
	authority := rest
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		authority = rest[:end]
	}
	at := strings.LastIndex(authority, "@")
	colon := strings.Index(authority[:at], ":")
	return raw[:scheme+3] + authority[:colon+1] + Mask(pw) + rest[at:]
}

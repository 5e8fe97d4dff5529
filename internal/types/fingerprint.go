package types

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// ComputeFingerprint derives a Fingerprint for a (method, url) pair. Real
// deployments compute fingerprints in the spider, upstream of this worker —
// the worker only ever reads the fingerprint a spider already attached to a
// Request or Response. This function exists so the in-memory bus test
// harness and the reference strategies can derive one consistently.
func ComputeFingerprint(method, rawURL string) Fingerprint {
	canonical := canonicalizeURL(rawURL)
	h := sha256.Sum256([]byte(method + " " + canonical))
	return Fingerprint(hex.EncodeToString(h[:16]))
}

// canonicalizeURL normalizes a URL before fingerprinting:
//   - lowercases scheme and host
//   - removes the fragment
//   - sorts query parameters
//   - removes trailing slash (except root)
//   - removes default ports (80 for http, 443 for https)
func canonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

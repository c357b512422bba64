package cache

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const maxKeyLen = 200

// URLToKey converts a request URL into a stable cache key: host, path and
// query parameters sorted by name. Very long keys are hashed.
func URLToKey(requestURL string) string {
	u, err := url.Parse(requestURL)
	if err != nil {
		return limitKey(requestURL)
	}

	key := u.Host + u.EscapedPath()
	if q := u.Query(); len(q) > 0 {
		names := make([]string, 0, len(q))
		for k := range q {
			names = append(names, k)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, k := range names {
			vals := append([]string(nil), q[k]...)
			sort.Strings(vals)
			for _, v := range vals {
				parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		key += "?" + strings.Join(parts, "&")
	}
	return limitKey(key)
}

func limitKey(key string) string {
	if len(key) <= maxKeyLen {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("long_%x", sum)
}

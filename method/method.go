package method

import (
	"fmt"
	"strings"
)

type Method int

const (
	MethodDHT Method = 0 + iota
	MethodKey
)

var names = map[Method]string{
	MethodDHT: "dht",
	MethodKey: "key",
}

func (m Method) String() string {
	return names[m]
}

// Parse returns the Method of the name. Empty name is did:dht.
func Parse(name string) (Method, error) {
	name = strings.TrimPrefix(strings.ToLower(name), "did:")
	if name == "" {
		return MethodDHT, nil
	}
	for m, n := range names {
		if n == name {
			return m, nil
		}
	}
	return MethodDHT, fmt.Errorf("unknown DID method %q", name)
}

// String returns the method name of the DID, e.g. "key" for did:key:z6M...
func String(did string) string {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) < 3 || parts[0] != "did" {
		return ""
	}
	return parts[1]
}

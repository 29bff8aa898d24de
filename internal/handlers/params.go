package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not. It also supports the
// standard net/http PathValue API available in recent Go versions.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}

// intParam parses a positive integer parameter; 0 means missing or invalid.
func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(getParam(r, name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

const maxBodySize = 1 << 20

// readFields returns the named fields from a JSON object body or a form body.
func readFields(r *http.Request, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if isJSON(r) {
		var body map[string]interface{}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, err
		}
		for _, k := range keys {
			if v, ok := body[k]; ok && v != nil {
				out[k] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return out, nil
	}

	if err := r.ParseMultipartForm(maxBodySize); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}
	for _, k := range keys {
		out[k] = strings.TrimSpace(r.PostFormValue(k))
	}
	return out, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

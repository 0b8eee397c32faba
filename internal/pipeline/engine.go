package pipeline

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
)

// outputPaths are the places completed executions have carried their result,
// most specific first. The upstream flows changed shape several times, so
// every known location is tried in order.
var outputPaths = [][]string{
	{"outputs", "final_output", "finalPlan"},
	{"outputs", "format_output", "agentResponse"},
	{"outputs", "recipe_agent", "text"},
	{"outputs", "agentResponse"},
	{"outputs", "output_result", "result"},
}

// extractOutput returns the first non-empty value found along outputPaths
func extractOutput(body map[string]any) (any, bool) {
	for _, path := range outputPaths {
		if v, ok := lookup(body, path); ok {
			return v, true
		}
	}
	return nil, false
}

func lookup(m map[string]any, path []string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	switch v := cur.(type) {
	case nil:
		return nil, false
	case string:
		return v, strings.TrimSpace(v) != ""
	}
	return cur, true
}

// executionsURL returns {base}/api/v1[/{tenant}]/executions
func executionsURL(cfg config.KestraConfig) string {
	u := strings.TrimRight(cfg.BaseURL, "/") + "/api/v1"
	if cfg.Tenant != "" {
		u += "/" + url.PathEscape(cfg.Tenant)
	}
	return u + "/executions"
}

// authorize attaches the bearer token, else basic credentials, else nothing
func authorize(req *http.Request, cfg config.KestraConfig) {
	switch {
	case cfg.APIToken != "":
		req.Header.Set("Authorization", "Bearer "+cfg.APIToken)
	case cfg.BasicAuth != "":
		req.Header.Set("Authorization", "Basic "+cfg.BasicAuth)
	}
}

func newHTTPClient(cfg config.KestraConfig) *http.Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

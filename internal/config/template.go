package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type templateEntry struct {
	key, value, comment string
}

var templateEntries = []templateEntry{
	{"app_env", EnvDev, "production, development or test"},
	{"issuer", "https://idsvr.example.com/oauth/v2/oauth-anonymous", "Used by `discover` and `login --discover`"},
	{"authorization_uri", "https://idsvr.example.com/oauth/v2/oauth-authorize", ""},
	{"token_uri", "https://idsvr.example.com/oauth/v2/oauth-token", ""},
	{"logout_uri", "https://idsvr.example.com/oauth/v2/oauth-session/logout", ""},
	{"redirect_uri", "http://127.0.0.1:8765/callback", "Must be a loopback URL for the CLI browser flow"},
	{"post_logout_redirect_uri", "http://127.0.0.1:8765/logoutcallback", ""},
	{"client_id", "mobile-client", ""},
	{"client_secret", "", "Optional; prefer APPAUTH_CLIENT_SECRET"},
	{"scope", "openid profile", "Space-delimited"},
	{"log_level", "INFO", "DEBUG, INFO, WARN or ERROR"},
	{"log_format", "text", "text or json"},
}

// Template renders a commented YAML config skeleton.
func Template() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range templateEntries {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: e.key, LineComment: e.comment}
		v := &yaml.Node{Kind: yaml.ScalarNode, Value: e.value}
		if e.value == "" {
			v.Style = yaml.DoubleQuotedStyle
		}
		root.Content = append(root.Content, k, v)
	}
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "appauth configuration",
		Content:     []*yaml.Node{root},
	}
	return yaml.Marshal(doc)
}

// WriteTemplate writes Template to path, refusing to overwrite an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	data, err := Template()
	if err != nil {
		return fmt.Errorf("failed to render config template: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

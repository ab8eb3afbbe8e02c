package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// OAuthClientConfig is a Google OAuth client secrets file as downloaded from the cloud console.
// Desktop clients carry an "installed" section, web clients a "web" section.
type OAuthClientConfig struct {
	Installed *OAuthClient `json:"installed,omitempty"`
	Web       *OAuthClient `json:"web,omitempty"`
}

// OAuthClient holds the fields the hub needs to run the consent flow for gmail.send
type OAuthClient struct {
	ClientID     string   `json:"client_id" validate:"required"`
	ClientSecret string   `json:"client_secret" validate:"required"`
	ProjectID    string   `json:"project_id,omitempty"`
	AuthURI      string   `json:"auth_uri" validate:"required,url"`
	TokenURI     string   `json:"token_uri" validate:"required,url"`
	RedirectURIs []string `json:"redirect_uris,omitempty" validate:"omitempty,dive,uri"`
}

// Client returns whichever section the file carries, preferring installed
func (c *OAuthClientConfig) Client() *OAuthClient {
	if c.Installed != nil {
		return c.Installed
	}
	return c.Web
}

// LoadOAuthClient loads the OAuth client secrets used by the Gmail notifier.
// email.oauthClientPath wins; otherwise oauthClient.<env>.json is looked up in the current
// directory, ~/.volunteer-hub and the home directory.
func LoadOAuthClient(email EmailConfig, env string) (*OAuthClientConfig, error) {
	if email.OAuthClientPath != "" {
		return LoadOAuthClientFromPath(email.OAuthClientPath)
	}

	path, err := findOAuthFile(env)
	if err != nil {
		return nil, err
	}
	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads and validates a client secrets file
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}

	if err := ValidateOAuthClient(&oauthCfg); err != nil {
		return nil, err
	}

	return &oauthCfg, nil
}

func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	client := cfg.Client()
	if client == nil {
		return errors.New("oauth client validation failed: expected an installed or web section")
	}
	if err := validate.Struct(client); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}

func findOAuthFile(env string) (string, error) {
	name := "oauthClient.json"
	if env != "" {
		name = "oauthClient." + env + ".json"
	}

	candidates := []string{name}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".volunteer-hub", name),
			filepath.Join(home, name),
		)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("oauth client file %s not found (set email.oauthClientPath to point at it)", name)
}

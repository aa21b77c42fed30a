package chatsession

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ResolveEnv.
const (
	EnvAPIKey  = "API_KEY"
	EnvBaseURL = "BASE_URL"
)

// ServerConfig is one entry of the servers mapping in a configuration file.
type ServerConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
}

// Resolver populates a Registry by querying backend servers for their model
// listings. The same resolver may be reused; every resolution appends to the
// target registry (see Registry for the additive semantics).
type Resolver struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverHTTPClient sets the HTTP client used for discovery calls.
func WithResolverHTTPClient(hc *http.Client) ResolverOption {
	return func(r *Resolver) { r.httpClient = hc }
}

// WithResolverLogger sets the logger used for discovery diagnostics.
func WithResolverLogger(l *logrus.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFile reads a servers document at path and discovers the models of
// every listed server, in document order, into reg.
//
// The document is YAML (JSON documents parse as well):
//
//	servers:
//	  local:
//	    api_key: sk-xxx
//	    api_url: http://localhost:8000/v1
//
// Failure modes: *ConfigNotFoundError when the path does not exist,
// *ConfigMalformedError when the document does not parse,
// *NoServersDefinedError when the servers mapping is empty. A discovery
// failure against one server aborts resolution; entries already appended
// for earlier servers remain in reg.
func (r *Resolver) ResolveFile(ctx context.Context, path string, reg *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigNotFoundError{
				ClientError: ClientError{Message: fmt.Sprintf("configuration file %s not found", path), Cause: err},
				Path:        path,
			}
		}
		return &ConfigMalformedError{
			ClientError: ClientError{Message: fmt.Sprintf("configuration file %s not readable", path), Cause: err},
			Path:        path,
		}
	}

	// The servers mapping is kept as a yaml.Node so iteration follows
	// document order, not Go map order.
	var doc struct {
		Servers yaml.Node `yaml:"servers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigMalformedError{
			ClientError: ClientError{Message: fmt.Sprintf("configuration file %s does not parse", path), Cause: err},
			Path:        path,
		}
	}

	servers, err := serverEntries(doc.Servers)
	if err != nil {
		return &ConfigMalformedError{
			ClientError: ClientError{Message: fmt.Sprintf("configuration file %s: %v", path, err)},
			Path:        path,
		}
	}
	if len(servers) == 0 {
		return &NoServersDefinedError{
			ClientError: ClientError{Message: fmt.Sprintf("configuration file %s defines no servers", path)},
			Path:        path,
		}
	}

	for _, entry := range servers {
		r.logger.WithFields(logrus.Fields{
			"server": entry.name,
			"url":    entry.cfg.APIURL,
		}).Debug("discovering models")
		if err := r.Discover(ctx, entry.cfg.APIKey, entry.cfg.APIURL, reg); err != nil {
			return err
		}
	}
	return nil
}

// ResolveEnv reads a single credential and base URL from the API_KEY and
// BASE_URL environment variables and discovers that server's models into
// reg. Fails with *MissingEnvCredentialsError when either is absent or empty.
func (r *Resolver) ResolveEnv(ctx context.Context, reg *Registry) error {
	apiKey := os.Getenv(EnvAPIKey)
	baseURL := os.Getenv(EnvBaseURL)
	if apiKey == "" || baseURL == "" {
		return &MissingEnvCredentialsError{
			ClientError: ClientError{Message: fmt.Sprintf("%s or %s is not set in the environment", EnvAPIKey, EnvBaseURL)},
		}
	}
	return r.Discover(ctx, apiKey, baseURL, reg)
}

// Discover queries one server's model-listing endpoint and appends a
// descriptor per listed model, in listing order.
func (r *Resolver) Discover(ctx context.Context, apiKey, baseURL string, reg *Registry) error {
	client := newBackendClient(apiKey, baseURL, r.httpClient)
	list, err := client.ListModels(ctx)
	if err != nil {
		return backendError(baseURL, err)
	}
	for _, m := range list.Models {
		d := reg.Append(ModelDescriptor{
			Name:    m.ID,
			Server:  m.OwnedBy,
			BaseURL: baseURL,
			APIKey:  apiKey,
		})
		r.logger.WithFields(logrus.Fields{
			"model":  d.Name,
			"id":     d.ID,
			"server": d.Server,
		}).Debug("registered model")
	}
	return nil
}

type serverEntry struct {
	name string
	cfg  ServerConfig
}

// serverEntries flattens the servers mapping node into ordered entries.
// The server name itself is only used for diagnostics.
func serverEntries(node yaml.Node) ([]serverEntry, error) {
	switch node.Kind {
	case 0:
		return nil, nil // key absent
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("servers must be a mapping")
	case yaml.MappingNode:
		// handled below
	default:
		return nil, fmt.Errorf("servers must be a mapping")
	}

	entries := make([]serverEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var cfg ServerConfig
		if err := node.Content[i+1].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("server %q: %v", node.Content[i].Value, err)
		}
		entries = append(entries, serverEntry{name: node.Content[i].Value, cfg: cfg})
	}
	return entries, nil
}

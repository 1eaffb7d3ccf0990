package oci

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joshyorko/depclean/common"
)

const (
	manifestMediaType = "application/vnd.oci.image.manifest.v1+json"
	emptyMediaType    = "application/vnd.oci.empty.v1+json"
	titleAnnotation   = "org.opencontainers.image.title"
	createdAnnotation = "org.opencontainers.image.created"
)

// Config holds OCI registry configuration.
type Config struct {
	Registry string // registry and repository, like "ghcr.io/org/sboms"
	Tag      string
	Username string
	Password string
}

type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewClientFromEnv takes credentials from OCI_USERNAME/OCI_PASSWORD, or
// DOCKER_USERNAME/DOCKER_PASSWORD.
func NewClientFromEnv(registry, tag string) *Client {
	username := firstEnv("OCI_USERNAME", "DOCKER_USERNAME")
	password := firstEnv("OCI_PASSWORD", "DOCKER_PASSWORD")
	common.HideSecret(password)
	return NewClient(Config{
		Registry: registry,
		Tag:      tag,
		Username: username,
		Password: password,
	})
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); len(value) > 0 {
			return value
		}
	}
	return ""
}

type PushResult struct {
	Digest    string `json:"digest"`
	Tag       string `json:"tag"`
	Registry  string `json:"registry"`
	MediaType string `json:"mediaType"`
}

type ociManifest struct {
	SchemaVersion int               `json:"schemaVersion"`
	MediaType     string            `json:"mediaType"`
	ArtifactType  string            `json:"artifactType,omitempty"`
	Config        ociDescriptor     `json:"config"`
	Layers        []ociDescriptor   `json:"layers"`
	Annotations   map[string]string `json:"annotations,omitempty"`
}

type ociDescriptor struct {
	MediaType   string            `json:"mediaType"`
	Digest      string            `json:"digest"`
	Size        int64             `json:"size"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Push uploads one document as a single layer artifact and tags it.
func (c *Client) Push(ctx context.Context, content []byte, mediaType, title string) (*PushResult, error) {
	registryBase, repository, err := parseRegistryURL(c.config.Registry)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	if len(c.config.Tag) == 0 {
		return nil, fmt.Errorf("no tag given for %s", c.config.Registry)
	}
	common.Debug("Pushing %s to %s/%s:%s", title, registryBase, repository, c.config.Tag)

	contentDigest := calculateDigest(content)
	emptyConfig := []byte("{}")
	configDigest := calculateDigest(emptyConfig)

	authorization, err := c.authenticate(ctx, registryBase, repository)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if err := c.uploadBlob(ctx, registryBase, repository, emptyConfig, configDigest, authorization); err != nil {
		return nil, fmt.Errorf("failed to upload config blob: %w", err)
	}
	if err := c.uploadBlob(ctx, registryBase, repository, content, contentDigest, authorization); err != nil {
		return nil, fmt.Errorf("failed to upload content blob: %w", err)
	}

	manifest := ociManifest{
		SchemaVersion: 2,
		MediaType:     manifestMediaType,
		ArtifactType:  mediaType,
		Config: ociDescriptor{
			MediaType: emptyMediaType,
			Digest:    configDigest,
			Size:      int64(len(emptyConfig)),
		},
		Layers: []ociDescriptor{
			{
				MediaType:   mediaType,
				Digest:      contentDigest,
				Size:        int64(len(content)),
				Annotations: map[string]string{titleAnnotation: title},
			},
		},
		Annotations: map[string]string{
			createdAnnotation: time.Now().UTC().Format(time.RFC3339),
		},
	}
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	manifestDigest, err := c.pushManifest(ctx, registryBase, repository, manifestBytes, c.config.Tag, authorization)
	if err != nil {
		return nil, fmt.Errorf("failed to push manifest: %w", err)
	}
	return &PushResult{
		Digest:    manifestDigest,
		Tag:       c.config.Tag,
		Registry:  c.config.Registry,
		MediaType: mediaType,
	}, nil
}

// parseRegistryURL splits "host/repository" into a base URL and repository.
func parseRegistryURL(registryURL string) (string, string, error) {
	location := registryURL
	protocol := "https://"
	if strings.HasPrefix(location, "https://") {
		location = strings.TrimPrefix(location, "https://")
	} else if strings.HasPrefix(location, "http://") {
		protocol = "http://"
		location = strings.TrimPrefix(location, "http://")
		common.Debug("WARNING: Using insecure HTTP connection to registry")
	}
	parts := strings.SplitN(strings.Trim(location, "/"), "/", 2)
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return "", "", fmt.Errorf("invalid registry URL format: expected 'registry/repository'")
	}
	return protocol + parts[0], parts[1], nil
}

func calculateDigest(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf("sha256:%x", hash)
}

// authenticate answers the registry challenge and returns the value for
// the Authorization header, empty when the registry is open.
func (c *Client) authenticate(ctx context.Context, registryBase, repository string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, registryBase+"/v2/", nil, "")
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		return "", nil
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return "", fmt.Errorf("unexpected response from registry: %d", resp.StatusCode)
	}
	if len(c.config.Username) == 0 || len(c.config.Password) == 0 {
		return "", fmt.Errorf("registry %s requires credentials (set OCI_USERNAME and OCI_PASSWORD)", registryBase)
	}
	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte(c.config.Username+":"+c.config.Password))
	scheme, params := parseChallenge(resp.Header.Get("WWW-Authenticate"))
	if !strings.EqualFold(scheme, "bearer") {
		return basic, nil
	}
	token, err := c.exchangeToken(ctx, params, repository, basic)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

func (c *Client) exchangeToken(ctx context.Context, params map[string]string, repository, basic string) (string, error) {
	realm := params["realm"]
	if len(realm) == 0 {
		return "", fmt.Errorf("bearer challenge without realm")
	}
	query := url.Values{}
	if service := params["service"]; len(service) > 0 {
		query.Set("service", service)
	}
	scope := params["scope"]
	if len(scope) == 0 {
		scope = fmt.Sprintf("repository:%s:pull,push", repository)
	}
	query.Set("scope", scope)
	link := realm
	if strings.Contains(link, "?") {
		link += "&" + query.Encode()
	} else {
		link += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, link, nil, basic)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}
	var answer struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("token exchange answer: %w", err)
	}
	token := answer.Token
	if len(token) == 0 {
		token = answer.AccessToken
	}
	if len(token) == 0 {
		return "", fmt.Errorf("token exchange gave no token")
	}
	common.HideSecret(token)
	return token, nil
}

// parseChallenge reads `Bearer realm="...",service="..."` into its parts.
func parseChallenge(header string) (string, map[string]string) {
	params := make(map[string]string)
	scheme, rest, _ := strings.Cut(strings.TrimSpace(header), " ")
	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " ,")
		key, value, found := strings.Cut(rest, "=")
		if !found {
			break
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if strings.HasPrefix(value, `"`) {
			end := strings.Index(value[1:], `"`)
			if end < 0 {
				params[key] = value[1:]
				break
			}
			params[key] = value[1 : end+1]
			rest = value[end+2:]
		} else {
			params[key], rest, _ = strings.Cut(value, ",")
		}
	}
	return scheme, params
}

func (c *Client) uploadBlob(ctx context.Context, registryBase, repository string, content []byte, digest, authorization string) error {
	exists, err := c.blobExists(ctx, registryBase, repository, digest, authorization)
	if err != nil {
		return err
	}
	if exists {
		common.Debug("Blob %s already exists, skipping upload", digest)
		return nil
	}

	initURL := fmt.Sprintf("%s/v2/%s/blobs/uploads/", registryBase, repository)
	req, err := c.newRequest(ctx, http.MethodPost, initURL, nil, authorization)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to initiate upload: status %d, body: %s", resp.StatusCode, string(body))
	}

	uploadURL := resp.Header.Get("Location")
	if len(uploadURL) == 0 {
		return fmt.Errorf("no upload location returned")
	}
	if !strings.HasPrefix(uploadURL, "http") {
		uploadURL = registryBase + uploadURL
	}
	if strings.Contains(uploadURL, "?") {
		uploadURL = uploadURL + "&digest=" + url.QueryEscape(digest)
	} else {
		uploadURL = uploadURL + "?digest=" + url.QueryEscape(digest)
	}

	req, err = c.newRequest(ctx, http.MethodPut, uploadURL, bytes.NewReader(content), authorization)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(content))
	put, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer put.Body.Close()
	if put.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(put.Body)
		return fmt.Errorf("failed to upload blob: status %d, body: %s", put.StatusCode, string(body))
	}
	return nil
}

func (c *Client) blobExists(ctx context.Context, registryBase, repository, digest, authorization string) (bool, error) {
	link := fmt.Sprintf("%s/v2/%s/blobs/%s", registryBase, repository, digest)
	req, err := c.newRequest(ctx, http.MethodHead, link, nil, authorization)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) pushManifest(ctx context.Context, registryBase, repository string, manifest []byte, tag, authorization string) (string, error) {
	link := fmt.Sprintf("%s/v2/%s/manifests/%s", registryBase, repository, tag)
	req, err := c.newRequest(ctx, http.MethodPut, link, bytes.NewReader(manifest), authorization)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", manifestMediaType)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to push manifest: status %d, body: %s", resp.StatusCode, string(body))
	}
	digest := resp.Header.Get("Docker-Content-Digest")
	if len(digest) == 0 {
		digest = calculateDigest(manifest)
	}
	return digest, nil
}

func (c *Client) newRequest(ctx context.Context, method, link string, body io.Reader, authorization string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", common.UserAgent())
	if len(authorization) > 0 {
		req.Header.Set("Authorization", authorization)
	}
	return req, nil
}

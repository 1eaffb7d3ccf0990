package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshyorko/depclean/common"
)

const (
	metadataMask = "meta.name,meta.create_time,spec.dependency_data,spec.importer_data"
	mainContext  = "CONTEXT_TYPE_MAIN"
	maxPages     = 10000
)

var (
	ErrUnauthorized = errors.New("not authorized by Endor Labs")
	ErrNoToken      = errors.New("authentication answer did not contain a token")
	ErrEmptyExport  = errors.New("SBOM export did not contain a document")
)

// StatusError is a non-success answer from the remote side.
type StatusError struct {
	Method string
	Url    string
	Status int
	Body   string
}

func (it *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", it.Method, it.Url, it.Status, it.Body)
}

func (it *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && (it.Status == http.StatusUnauthorized || it.Status == http.StatusForbidden)
}

// Endor talks to the Endor Labs REST API on behalf of one namespace.
type Endor struct {
	client    Client
	namespace string
	token     string
}

func NewEndor(client Client, namespace string) *Endor {
	return &Endor{
		client:    client,
		namespace: namespace,
	}
}

func (it *Endor) Namespace() string {
	return it.namespace
}

func (it *Endor) Authenticate(ctx context.Context, key, secret string) error {
	common.HideSecret(secret)
	payload, err := json.Marshal(map[string]string{"key": key, "secret": secret})
	if err != nil {
		return err
	}
	request := it.client.NewRequest("/auth/api-key")
	request.Headers["Content-Type"] = "application/json"
	request.Body = bytes.NewReader(payload)
	response := it.client.Post(ctx, request)
	if err := check(http.MethodPost, request.Url, response); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	var answer struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(response.Body, &answer); err != nil {
		return fmt.Errorf("authentication answer: %w", err)
	}
	if len(answer.Token) == 0 {
		return ErrNoToken
	}
	common.HideSecret(answer.Token)
	it.token = answer.Token
	common.Debug("Authenticated to %s in %s.", it.client.Endpoint(), response.Elapsed)
	return nil
}

// MetadataQuery selects dependency metadata of one project context created
// on or after a cutoff.
type MetadataQuery struct {
	ProjectUuid string
	Since       time.Time
	Branch      string
}

// Filter renders the query in the Endor Labs filter language. Dates are
// compared by day in UTC.
func (it MetadataQuery) Filter() string {
	scope := "context.type==" + mainContext
	if len(it.Branch) > 0 {
		scope = "context.id==" + it.Branch
	}
	since := it.Since.UTC().Format("2006-01-02")
	return fmt.Sprintf("spec.importer_data.project_uuid==%s and meta.create_time>=date(%s) and %s", it.ProjectUuid, since, scope)
}

type MetadataObject struct {
	Uuid string `json:"uuid"`
	Meta struct {
		Name       string `json:"name"`
		CreateTime string `json:"create_time"`
	} `json:"meta"`
	Spec struct {
		DependencyData struct {
			PackageName     string `json:"package_name"`
			ResolvedVersion string `json:"resolved_version"`
		} `json:"dependency_data"`
		ImporterData struct {
			ProjectUuid string `json:"project_uuid"`
		} `json:"importer_data"`
	} `json:"spec"`
}

type metadataPage struct {
	List struct {
		Objects  []MetadataObject `json:"objects"`
		Response struct {
			NextPageId string `json:"next_page_id"`
		} `json:"response"`
	} `json:"list"`
}

// DependencyMetadata lists all pages of matching dependency metadata.
func (it *Endor) DependencyMetadata(ctx context.Context, query MetadataQuery) ([]MetadataObject, error) {
	filter := query.Filter()
	common.Debug("Dependency metadata filter: %s", filter)
	result := make([]MetadataObject, 0, 100)
	seen := make(map[string]bool)
	pageId := ""
	for page := 1; page <= maxPages; page++ {
		request := it.authorized(fmt.Sprintf("/namespaces/%s/dependency-metadata", url.PathEscape(it.namespace)))
		request.Query.Set("list_parameters.filter", filter)
		request.Query.Set("list_parameters.mask", metadataMask)
		if len(pageId) > 0 {
			request.Query.Set("list_parameters.page_id", pageId)
		}
		response := it.client.Get(ctx, request)
		if err := check(http.MethodGet, request.Url, response); err != nil {
			return nil, fmt.Errorf("dependency metadata page %d: %w", page, err)
		}
		var answer metadataPage
		if err := json.Unmarshal(response.Body, &answer); err != nil {
			return nil, fmt.Errorf("dependency metadata page %d: %w", page, err)
		}
		common.Debug("Page %d had %d dependencies.", page, len(answer.List.Objects))
		result = append(result, answer.List.Objects...)
		pageId = answer.List.Response.NextPageId
		if len(pageId) == 0 {
			return result, nil
		}
		if seen[pageId] {
			return nil, fmt.Errorf("dependency metadata paging loops at page id %q", pageId)
		}
		seen[pageId] = true
	}
	return nil, fmt.Errorf("dependency metadata has more than %d pages", maxPages)
}

type exportRequest struct {
	Meta struct {
		Name string `json:"name"`
	} `json:"meta"`
	Spec struct {
		Kind          string `json:"kind"`
		Format        string `json:"format"`
		ComponentType string `json:"component_type"`
		ProjectUuid   string `json:"project_uuid"`
		ContextType   string `json:"context_type,omitempty"`
		ContextId     string `json:"context_id,omitempty"`
	} `json:"spec"`
}

// ExportSbom asks for an SPDX JSON export of one project and returns the
// document bytes exactly as received.
func (it *Endor) ExportSbom(ctx context.Context, projectUuid, branch string) ([]byte, error) {
	order := exportRequest{}
	order.Meta.Name = fmt.Sprintf("depclean export of %s", projectUuid)
	order.Spec.Kind = "SBOM_KIND_SPDX"
	order.Spec.Format = "FORMAT_JSON"
	order.Spec.ComponentType = "COMPONENT_TYPE_APPLICATION"
	order.Spec.ProjectUuid = projectUuid
	if len(branch) > 0 {
		order.Spec.ContextType = "CONTEXT_TYPE_REF"
		order.Spec.ContextId = branch
	} else {
		order.Spec.ContextType = mainContext
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	request := it.authorized(fmt.Sprintf("/namespaces/%s/sbom-export", url.PathEscape(it.namespace)))
	request.Headers["Content-Type"] = "application/json"
	request.Body = bytes.NewReader(payload)
	response := it.client.Post(ctx, request)
	if err := check(http.MethodPost, request.Url, response); err != nil {
		return nil, fmt.Errorf("SBOM export: %w", err)
	}
	var answer struct {
		Spec struct {
			Data json.RawMessage `json:"data"`
		} `json:"spec"`
	}
	if err := json.Unmarshal(response.Body, &answer); err != nil {
		return nil, fmt.Errorf("SBOM export answer: %w", err)
	}
	return exportData(answer.Spec.Data)
}

// exportData accepts the document either embedded as a JSON string or as
// a nested object.
func exportData(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyExport
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrEmptyExport
	}
	return []byte(text), nil
}

func (it *Endor) authorized(link string) *Request {
	request := it.client.NewRequest(link)
	if len(it.token) > 0 {
		request.Headers["Authorization"] = "Bearer " + it.token
	}
	return request
}

func check(method, link string, response *Response) error {
	if response.Err != nil {
		return response.Err
	}
	if response.Status < 200 || response.Status > 299 {
		return &StatusError{
			Method: method,
			Url:    link,
			Status: response.Status,
			Body:   excerpt(response.Body),
		}
	}
	return nil
}

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

// ReadFile reads a local file, a file:// URL or a http(s) resource.
func ReadFile(ctx context.Context, resource string) ([]byte, error) {
	if isFile(resource) {
		return os.ReadFile(resource)
	}
	link, err := url.ParseRequestURI(resource)
	if err != nil {
		return os.ReadFile(resource)
	}
	if link.Scheme == "file" || link.Scheme == "" || isFile(link.Path) {
		return os.ReadFile(link.Path)
	}
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil, fmt.Errorf("Cannot read %q, unsupported scheme %q.", resource, link.Scheme)
	}
	client, err := NewUnsafeClient("")
	if err != nil {
		return nil, err
	}
	sink := &bytes.Buffer{}
	request := client.NewRequest(resource)
	request.Headers["Accept"] = "application/json"
	request.Stream = sink
	response := client.Uncritical().Get(ctx, request)
	if err := check("GET", resource, response); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// ResourceName gives the last path element of a file name or URL, without
// query or fragment.
func ResourceName(resource string) string {
	if link, err := url.Parse(resource); err == nil && len(link.Scheme) > 1 {
		resource = link.Path
	}
	name := path.Base(strings.ReplaceAll(resource, "\\", "/"))
	if name == "." || name == "/" {
		return "document"
	}
	return name
}

func isFile(candidate string) bool {
	stat, err := os.Stat(candidate)
	return err == nil && stat.Mode().IsRegular()
}

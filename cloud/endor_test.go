package cloud_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/hamlet"
)

func endorFixture(t *testing.T, handler http.HandlerFunc) *cloud.Endor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := cloud.NewClient(server.URL + "/v1")
	if err != nil {
		t.Fatal(err)
	}
	return cloud.NewEndor(client.WithTimeout(5*time.Second), "tenant.child")
}

func TestEnsureHttpsRejectsPlainHttp(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	nice, err := cloud.EnsureHttps(" https://api.endorlabs.com/v1/ ")
	must_be.Nil(err)
	must_be.Equal("https://api.endorlabs.com/v1", nice)

	_, err = cloud.EnsureHttps("http://api.endorlabs.com/v1")
	wont_be.Nil(err)

	_, err = cloud.EnsureHttps("http://127.0.0.1:8080/v1")
	must_be.Nil(err)
}

func TestAuthenticationGivesBearerToken(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/api-key":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["key"] != "the-key" || body["secret"] != "the-secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, `{"token":"tok-123"}`)
		case "/v1/namespaces/tenant.child/dependency-metadata":
			if r.Header.Get("Authorization") != "Bearer tok-123" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, `{"list":{"objects":[]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	err := endor.Authenticate(context.Background(), "the-key", "wrong")
	must_be.True(errors.Is(err, cloud.ErrUnauthorized))

	must_be.Nil(endor.Authenticate(context.Background(), "the-key", "the-secret"))
	found, err := endor.DependencyMetadata(context.Background(), cloud.MetadataQuery{ProjectUuid: "p-1"})
	must_be.Nil(err)
	must_be.Length(found, 0)
}

func TestMissingTokenIsAnError(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	must_be.ErrorIs(endor.Authenticate(context.Background(), "key", "secret"), cloud.ErrNoToken)
}

func TestDependencyMetadataFollowsPages(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var filters []string
	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filters = append(filters, query.Get("list_parameters.filter"))
		if query.Get("list_parameters.mask") != "meta.name,meta.create_time,spec.dependency_data,spec.importer_data" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("X-Request-Id") == "" || r.Header.Get("Request-Timeout") != "5" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch query.Get("list_parameters.page_id") {
		case "":
			fmt.Fprint(w, `{"list":{"objects":[{"uuid":"u1","meta":{"name":"a","create_time":"2024-01-02T00:00:00Z"},"spec":{"dependency_data":{"package_name":"npm://merge","resolved_version":"2.1.1"}}}],"response":{"next_page_id":"p2"}}}`)
		case "p2":
			fmt.Fprint(w, `{"list":{"objects":[{"uuid":"u2","meta":{"name":"b"}},{"uuid":"u3","meta":{"name":"c"}}],"response":{}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	since := time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("west", -3*3600))
	found, err := endor.DependencyMetadata(context.Background(), cloud.MetadataQuery{ProjectUuid: "p-1", Since: since, Branch: "feature/x"})
	must_be.Nil(err)
	must_be.Length(found, 3)
	must_be.Equal("npm://merge", found[0].Spec.DependencyData.PackageName)
	must_be.Equal("u3", found[2].Uuid)
	must_be.Length(filters, 2)
	must_be.Equal("spec.importer_data.project_uuid==p-1 and meta.create_time>=date(2024-01-02) and context.id==feature/x", filters[0])
}

func TestMainContextFilter(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	query := cloud.MetadataQuery{ProjectUuid: "p-2", Since: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}
	must_be.Equal("spec.importer_data.project_uuid==p-2 and meta.create_time>=date(2023-12-31) and context.type==CONTEXT_TYPE_MAIN", query.Filter())
}

func TestLoopingPagesAreDetected(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"list":{"objects":[],"response":{"next_page_id":"same"}}}`)
	})
	_, err := endor.DependencyMetadata(context.Background(), cloud.MetadataQuery{ProjectUuid: "p"})
	wont_be.Nil(err)
	must_be.Contains(err.Error(), "loops")
}

func TestSbomExportUnwrapsDocument(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var kinds []string
	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var order map[string]map[string]string
		json.NewDecoder(r.Body).Decode(&order)
		kinds = append(kinds, order["spec"]["kind"]+"/"+order["spec"]["context_type"])
		if order["spec"]["project_uuid"] == "as-object" {
			fmt.Fprint(w, `{"spec":{"data":{"spdxVersion":"SPDX-2.3"}}}`)
			return
		}
		fmt.Fprint(w, `{"spec":{"data":"{\"spdxVersion\":\"SPDX-2.3\",\"packages\":[]}"}}`)
	})

	content, err := endor.ExportSbom(context.Background(), "as-string", "")
	must_be.Nil(err)
	must_be.Equal(`{"spdxVersion":"SPDX-2.3","packages":[]}`, string(content))

	content, err = endor.ExportSbom(context.Background(), "as-object", "main")
	must_be.Nil(err)
	must_be.Equal(`{"spdxVersion":"SPDX-2.3"}`, string(content))
	must_be.Equal([]string{"SBOM_KIND_SPDX/CONTEXT_TYPE_MAIN", "SBOM_KIND_SPDX/CONTEXT_TYPE_REF"}, kinds)
}

func TestEmptySbomExportIsAnError(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"spec":{}}`)
	})
	_, err := endor.ExportSbom(context.Background(), "p", "")
	must_be.ErrorIs(err, cloud.ErrEmptyExport)
}

func TestBreakerOpensOnRepeatedServerFailures(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var calls int32
	endor := endorFixture(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	var last error
	for round := 0; round < 8; round++ {
		_, last = endor.ExportSbom(context.Background(), "p", "")
	}
	must_be.Contains(last.Error(), "not available")
	must_be.Equal(int32(5), atomic.LoadInt32(&calls))
}

func TestReadFileFromDiskAndHttp(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	local := filepath.Join(t.TempDir(), "doc.spdx.json")
	must_be.Nil(os.WriteFile(local, []byte(`{"local":true}`), 0o644))
	content, err := cloud.ReadFile(context.Background(), local)
	must_be.Nil(err)
	must_be.Equal(`{"local":true}`, string(content))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing.json") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"remote":true}`)
	}))
	defer server.Close()

	content, err = cloud.ReadFile(context.Background(), server.URL+"/sboms/remote.json")
	must_be.Nil(err)
	must_be.Equal(`{"remote":true}`, string(content))

	_, err = cloud.ReadFile(context.Background(), server.URL+"/sboms/missing.json")
	wont_be.Nil(err)

	must_be.Equal("remote.json", cloud.ResourceName(server.URL+"/sboms/remote.json?x=1"))
	must_be.Equal("doc.spdx.json", cloud.ResourceName(local))
}

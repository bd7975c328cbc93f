// Package rest is the HTTP client of the ML database service.
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/opst/mldbkit/pkg/configs/profiles"
	xe "github.com/opst/mldbkit/pkg/errors"
	"github.com/opst/mldbkit/pkg/gateway"
	"github.com/opst/mldbkit/pkg/procedures"
)

type client struct {
	httpclient *http.Client
	api        string
}

var _ gateway.Gateway = &client{}

// create new client for Profile
//
// # Args
//
// - *profiles.Profile
//
// # Return
//
// - gateway.Gateway: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *profiles.Profile) (gateway.Gateway, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	return &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
	}, nil
}

// build URL with path. Each segment is escaped.
func (c *client) apipath(path ...string) string {
	segments := make([]string, 0, len(path)+1)
	segments = append(segments, c.api)
	for _, p := range path {
		segments = append(segments, url.PathEscape(strings.Trim(p, "/")))
	}
	return strings.Join(segments, "/")
}

func (c *client) PutProcedure(ctx context.Context, id string, proc procedures.Procedure) (gateway.Response, error) {
	body, err := json.Marshal(proc)
	if err != nil {
		return gateway.Response{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("v1", "procedures", id), bytes.NewReader(body),
	)
	if err != nil {
		return gateway.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return gateway.Response{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return gateway.Response{}, err
	}
	return gateway.Response{StatusCode: resp.StatusCode, Body: payload}, nil
}

func (c *client) DeleteDataset(ctx context.Context, id string) error {
	if id == "" {
		return xe.NewConfigurationError("dataset id is empty")
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("v1", "datasets", id), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("dataset %s cannot be deleted", id),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
		http.StatusNotFound,
	)
}

func (c *client) Query(ctx context.Context, q string) (gateway.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("v1", "query"), nil)
	if err != nil {
		return gateway.Table{}, err
	}
	params := req.URL.Query()
	params.Set("q", q)
	params.Set("format", "table")
	req.URL.RawQuery = params.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return gateway.Table{}, err
	}
	defer resp.Body.Close()

	rows := [][]any{}
	if err := unmarshalJsonResponse(
		resp, &rows,
		MessageFor{
			Status4xx: "query is rejected",
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return gateway.Table{}, err
	}
	return toTable(rows)
}

// toTable converts rows in "table" format, where the first row is the header.
func toTable(rows [][]any) (gateway.Table, error) {
	if len(rows) == 0 {
		return gateway.Table{Columns: []string{}, Rows: [][]any{}}, nil
	}
	columns := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		name, ok := h.(string)
		if !ok {
			return gateway.Table{}, fmt.Errorf("unexpected header: %v", rows[0])
		}
		columns = append(columns, name)
	}
	return gateway.Table{Columns: columns, Rows: rows[1:]}, nil
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}
		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}

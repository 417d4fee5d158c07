package supabase

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Select consulta /rest/v1/<table> con filtros PostgREST en query.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + url.PathEscape(table),
		query:  query,
	}, out)
}

// Insert agrega filas en table. prefer se manda tal cual en el header Prefer.
func (c *Client) Insert(ctx context.Context, table string, rows any, prefer string, out any) error {
	body, err := jsonBody(rows)
	if err != nil {
		return err
	}
	headers := map[string]string{}
	if prefer != "" {
		headers["Prefer"] = prefer
	}
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/rest/v1/" + url.PathEscape(table),
		body:    body,
		headers: headers,
	}, out)
}

// Upload sube un objeto a storage. No sobreescribe objetos existentes.
func (c *Client) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) error {
	segments := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/storage/v1/object/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/"),
		body:    body,
		ctype:   contentType,
		headers: map[string]string{"x-upsert": "false"},
	}, nil)
}

// Eq arma un filtro PostgREST de igualdad.
func Eq(value string) string {
	return "eq." + value
}

// Package sheets is a minimal client for the spreadsheet values API.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/transport"
)

// DefaultBaseURL is the public Sheets v4 endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com/v4"

// ErrSheetNotFound is returned when a sheet title does not exist in the spreadsheet.
var ErrSheetNotFound = errors.New("sheet not found")

// TokenSource supplies bearer tokens.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// SheetInfo identifies one tab of the spreadsheet.
type SheetInfo struct {
	ID    int64  `json:"sheetId"`
	Title string `json:"title"`
}

// Client talks to one spreadsheet.
type Client struct {
	baseURL       string
	spreadsheetID string
	doer          transport.Doer
	tokens        TokenSource
}

// NewClient creates a client for spreadsheetID. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, spreadsheetID string, doer transport.Doer, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		doer:          doer,
		tokens:        tokens,
	}
}

// EscapeRange percent-encodes an A1 range for use as a path segment. Slashes
// in dated sheet titles must be escaped or the API routes the request wrong.
func EscapeRange(a1 string) string {
	return url.PathEscape(a1)
}

func (c *Client) spreadsheetURL() string {
	return c.baseURL + "/spreadsheets/" + url.PathEscape(c.spreadsheetID)
}

func (c *Client) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sheets: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets: access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	respBody, err := transport.Send(c.doer, req)
	if err != nil {
		return nil, fmt.Errorf("sheets: %s %s: %w", method, req.URL.Path, err)
	}
	return respBody, nil
}

// Sheets lists the tabs of the spreadsheet.
func (c *Client) Sheets(ctx context.Context) ([]SheetInfo, error) {
	u := c.spreadsheetURL() + "?fields=" + url.QueryEscape("sheets.properties(sheetId,title)")
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Sheets []struct {
			Properties SheetInfo `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sheets: decode spreadsheet: %w", err)
	}

	out := make([]SheetInfo, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		out = append(out, s.Properties)
	}
	return out, nil
}

// SheetTitles lists tab titles in spreadsheet order.
func (c *Client) SheetTitles(ctx context.Context) ([]string, error) {
	infos, err := c.Sheets(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(infos))
	for i, s := range infos {
		titles[i] = s.Title
	}
	return titles, nil
}

// SheetID returns the numeric ID of the tab with the given title.
func (c *Client) SheetID(ctx context.Context, title string) (int64, error) {
	infos, err := c.Sheets(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range infos {
		if s.Title == title {
			return s.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, title)
}

// Values reads a range as a ragged grid of strings.
func (c *Client) Values(ctx context.Context, a1 string) ([][]string, error) {
	body, err := c.do(ctx, http.MethodGet, c.spreadsheetURL()+"/values/"+EscapeRange(a1), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Values [][]any `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sheets: decode values: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		row := make([]string, len(r))
		for j, v := range r {
			switch x := v.(type) {
			case nil:
			case string:
				row[j] = x
			default:
				row[j] = fmt.Sprint(x)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// UpdateValues overwrites a range with raw (unparsed) values.
func (c *Client) UpdateValues(ctx context.Context, a1 string, values [][]string) error {
	u := c.spreadsheetURL() + "/values/" + EscapeRange(a1) + "?valueInputOption=RAW"
	_, err := c.do(ctx, http.MethodPut, u, map[string]any{"values": values})
	return err
}

// BatchUpdateValues writes several ranges in one request.
func (c *Client) BatchUpdateValues(ctx context.Context, updates []models.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	payload := map[string]any{
		"valueInputOption": "USER_ENTERED",
		"data":             updates,
	}
	_, err := c.do(ctx, http.MethodPost, c.spreadsheetURL()+"/values:batchUpdate", payload)
	return err
}

// ClearValues clears a range, leaving formatting intact.
func (c *Client) ClearValues(ctx context.Context, a1 string) error {
	_, err := c.do(ctx, http.MethodPost, c.spreadsheetURL()+"/values/"+EscapeRange(a1)+":clear", map[string]any{})
	return err
}

// AddSheet creates a new tab and returns its ID.
func (c *Client) AddSheet(ctx context.Context, title string) (int64, error) {
	payload := map[string]any{
		"requests": []any{
			map[string]any{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	}
	body, err := c.do(ctx, http.MethodPost, c.spreadsheetURL()+":batchUpdate", payload)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Replies []struct {
			AddSheet struct {
				Properties SheetInfo `json:"properties"`
			} `json:"addSheet"`
		} `json:"replies"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("sheets: decode add sheet: %w", err)
	}
	if len(resp.Replies) == 0 {
		return 0, fmt.Errorf("sheets: add sheet %q: %w", title, transport.ErrInvalidResponse)
	}
	return resp.Replies[0].AddSheet.Properties.ID, nil
}

// RenameSheet changes the title of the tab with sheetID.
func (c *Client) RenameSheet(ctx context.Context, sheetID int64, title string) error {
	payload := map[string]any{
		"requests": []any{
			map[string]any{"updateSheetProperties": map[string]any{
				"properties": map[string]any{"sheetId": sheetID, "title": title},
				"fields":     "title",
			}},
		},
	}
	_, err := c.do(ctx, http.MethodPost, c.spreadsheetURL()+":batchUpdate", payload)
	return err
}
